package everruns

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientOption configures a Client via the functional options pattern.
type ClientOption func(*clientOptions)

// clientOptions holds all configurable fields set via ClientOption functions.
type clientOptions struct {
	baseURL          string
	httpClient       *http.Client
	timeout          time.Duration
	logger           *slog.Logger
	streamBufferSize int
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (o *clientOptions) applyDefaults() {
	if o.baseURL == "" {
		o.baseURL = DefaultBaseURL
	}
	if o.timeout == 0 {
		o.timeout = DefaultRequestTimeout
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.streamBufferSize == 0 {
		o.streamBufferSize = DefaultStreamBufferSize
	}
}

// resolveClientOptions applies all option functions and fills defaults.
func resolveClientOptions(opts []ClientOption) clientOptions {
	var o clientOptions
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// WithBaseURL overrides the API base URL, e.g. for a staging deployment.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithHTTPClient supplies a custom HTTP client for non-streaming requests.
// The streaming connection always uses a dedicated client without a timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTimeout sets the request timeout for non-streaming calls. Ignored when
// WithHTTPClient is also given.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLogger attaches a structured logger. The default logger discards
// everything; the stream logs dropped frames at Debug and reconnects at Warn.
func WithLogger(l *slog.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithStreamBufferSize sets the event channel buffer used by EventStream.
func WithStreamBufferSize(n int) ClientOption {
	return func(o *clientOptions) { o.streamBufferSize = n }
}
