package everruns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Client talks to the Everruns API on behalf of one organization. The
// credential and base address are fixed at construction; a Client is safe
// for concurrent use.
type Client struct {
	baseURL string
	org     string
	apiKey  string

	http       *http.Client
	streamHTTP *http.Client
	log        *slog.Logger

	streamBufferSize int
}

// New creates a Client with an explicit API key and organization ID. An
// empty apiKey falls back to the EVERRUNS_API_KEY environment variable;
// an empty org falls back to EVERRUNS_ORG.
func New(apiKey, org string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if org == "" {
		org = os.Getenv(EnvOrg)
	}
	if org == "" {
		return nil, ErrMissingOrg
	}

	o := resolveClientOptions(opts)
	if _, err := url.Parse(o.baseURL); err != nil {
		return nil, fmt.Errorf("everruns: invalid base URL %q: %w", o.baseURL, err)
	}

	return &Client{
		baseURL:          strings.TrimSuffix(o.baseURL, "/"),
		org:              org,
		apiKey:           apiKey,
		http:             o.httpClient,
		streamHTTP:       &http.Client{}, // no timeout: streams are long-lived
		log:              o.logger,
		streamBufferSize: o.streamBufferSize,
	}, nil
}

// FromEnv creates a Client from EVERRUNS_API_KEY, EVERRUNS_ORG and, when
// set, EVERRUNS_API_URL.
func FromEnv(opts ...ClientOption) (*Client, error) {
	if base := os.Getenv(EnvBaseURL); base != "" {
		opts = append([]ClientOption{WithBaseURL(base)}, opts...)
	}
	return New(os.Getenv(EnvAPIKey), os.Getenv(EnvOrg), opts...)
}

// Agents returns the client for agent operations.
func (c *Client) Agents() *AgentsClient { return &AgentsClient{client: c} }

// Sessions returns the client for session operations.
func (c *Client) Sessions() *SessionsClient { return &SessionsClient{client: c} }

// Messages returns the client for message operations.
func (c *Client) Messages() *MessagesClient { return &MessagesClient{client: c} }

// Events returns the client for event operations.
func (c *Client) Events() *EventsClient { return &EventsClient{client: c} }

// Org returns the organization ID the client is scoped to.
func (c *Client) Org() string { return c.org }

// url builds the org-scoped request URL for an API path.
func (c *Client) url(path string) string {
	return c.baseURL + "/v1/orgs/" + c.org + path
}

// streamURL builds the SSE URL for a session with resumption and filter
// query parameters.
func (c *Client) streamURL(sessionID, sinceID string, exclude []string) string {
	u, err := url.Parse(c.url("/sessions/" + sessionID + "/sse"))
	if err != nil {
		// Base URL was validated in New; a session ID that breaks parsing
		// will fail the request instead.
		return c.url("/sessions/" + sessionID + "/sse")
	}
	q := u.Query()
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	for _, e := range exclude {
		q.Add("exclude", e)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// do performs a JSON request against the API and decodes the response into
// result when non-nil. Non-success responses are returned as typed errors.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("everruns: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("everruns: create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("everruns: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return apiErrorFromResponse(resp.StatusCode, raw)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("everruns: decode response: %w", err)
		}
	}
	return nil
}
