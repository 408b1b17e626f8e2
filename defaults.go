package everruns

import "time"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://app.everruns.com/api"

// Environment variables consumed by FromEnv.
const (
	EnvAPIKey  = "EVERRUNS_API_KEY"
	EnvOrg     = "EVERRUNS_ORG"
	EnvBaseURL = "EVERRUNS_API_URL"
)

const (
	// DefaultRequestTimeout bounds every non-streaming request. The SSE
	// connection deliberately runs without a timeout.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultStreamBufferSize is the channel buffer between the SSE read
	// loop and the EventStream consumer.
	DefaultStreamBufferSize = 64
)
