package everruns

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// StreamOption configures an EventStream before it connects.
type StreamOption func(*StreamOptions)

// StreamOptions controls stream resumption, filtering and reconnection.
type StreamOptions struct {
	// SinceID resumes the stream after a previously observed event ID. The
	// stream's own cursor takes precedence once events have been decoded.
	SinceID string
	// Exclude lists event types the server should not send at all.
	Exclude []string
	// MaxRetries bounds automatic reconnects after a dropped connection.
	// Zero (the default) disables reconnection: the stream ends on the
	// first disconnect and the caller resumes explicitly via LastEventID.
	MaxRetries int
}

// WithSinceID resumes after the given event ID.
func WithSinceID(id string) StreamOption {
	return func(o *StreamOptions) { o.SinceID = id }
}

// WithExclude suppresses the given event types at the source.
func WithExclude(types ...string) StreamOption {
	return func(o *StreamOptions) { o.Exclude = append(o.Exclude, types...) }
}

// WithoutDeltas excludes the high-volume delta event types.
func WithoutDeltas() StreamOption {
	return WithExclude(EventOutputMessageDelta, EventReasonThinkingDelta)
}

// WithMaxRetries allows up to n reconnects after connection drops, resuming
// from the internal cursor. The budget resets whenever an event is decoded.
func WithMaxRetries(n int) StreamOption {
	return func(o *StreamOptions) { o.MaxRetries = n }
}

// EventStream is a pull iterator over a session's SSE event feed.
//
//	stream := client.Events().Stream(ctx, sessionID)
//	defer stream.Close()
//	for stream.Next() {
//	    handle(stream.Current())
//	}
//	if err := stream.Err(); err != nil {
//	    // connection-level failure
//	}
//
// The iterator ends when the connection closes; that is an invitation to
// resume with WithSinceID(stream.LastEventID()), not a definitive end of the
// session. A closed or exhausted stream cannot be restarted.
type EventStream struct {
	events  chan *Event
	current *Event
	err     error
	done    bool
	cancel  context.CancelFunc

	mu     sync.Mutex
	cursor string
}

// Next advances to the next event. It returns false when the stream has
// ended or been cancelled.
func (s *EventStream) Next() bool {
	if s.done {
		return false
	}
	ev, ok := <-s.events
	if !ok {
		s.done = true
		return false
	}
	s.current = ev
	return true
}

// Current returns the most recent event returned by Next.
func (s *EventStream) Current() *Event { return s.current }

// Err returns the connection-level failure that ended the stream, if any.
// Cancellation and clean EOF are not errors.
func (s *EventStream) Err() error {
	if !s.done {
		return nil
	}
	return s.err
}

// LastEventID returns the ID of the last successfully decoded event. It is
// the cursor to pass as WithSinceID when opening a fresh stream; delivery
// across a resume boundary is at-least-once, so consumers must be
// idempotent per event ID.
func (s *EventStream) LastEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Close cancels the stream and releases the underlying connection. A closed
// stream is not resumable through its own handle.
func (s *EventStream) Close() {
	s.cancel()
	// Drain so the read loop is never blocked on a full channel.
	for range s.events {
	}
	s.done = true
}

func (s *EventStream) setCursor(id string) {
	s.mu.Lock()
	s.cursor = id
	s.mu.Unlock()
}

// run owns the connection lifecycle: connect, decode, reconnect within the
// retry budget, then close the event channel.
func (s *EventStream) run(ctx context.Context, c *Client, sessionID string, opts StreamOptions) {
	defer close(s.events)

	attempts := 0
	for {
		delivered, err := s.consume(ctx, c, sessionID, opts)
		if ctx.Err() != nil {
			return
		}
		if delivered > 0 {
			attempts = 0
		}
		if attempts >= opts.MaxRetries {
			if err != nil {
				s.err = err
			}
			return
		}
		attempts++
		c.log.Warn("event stream reconnecting",
			"session_id", sessionID,
			"attempt", attempts,
			"since_id", s.LastEventID(),
			"error", err)
	}
}

// consume opens one SSE connection and decodes frames until it ends.
// It returns the number of events delivered on this connection and the
// error that ended it (nil on clean EOF).
func (s *EventStream) consume(ctx context.Context, c *Client, sessionID string, opts StreamOptions) (int, error) {
	sinceID := s.LastEventID()
	if sinceID == "" {
		sinceID = opts.SinceID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.streamURL(sessionID, sinceID, opts.Exclude), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return 0, apiErrorFromResponse(resp.StatusCode, raw)
	}

	delivered := 0
	var data []string
	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			// Blank line dispatches the accumulated frame. The SSE event
			// name is not consulted: the server does not reliably set it,
			// and the event type lives inside the JSON payload.
			if len(data) > 0 {
				n, err := s.deliver(ctx, c, strings.Join(data, "\n"))
				delivered += n
				if err != nil {
					return delivered, err
				}
				data = nil
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		default:
			// event:, id:, retry: and comment lines are ignored.
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return delivered, nil
			}
			return delivered, readErr
		}
	}
}

// deliver decodes one frame payload, advances the cursor and yields the
// event. Malformed frames are dropped without advancing the cursor.
func (s *EventStream) deliver(ctx context.Context, c *Client, payload string) (int, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		c.log.Debug("dropping malformed event frame", "error", err)
		return 0, nil
	}
	if !ev.valid() {
		c.log.Debug("dropping event frame with missing fields", "event_id", ev.ID, "event_type", ev.Type)
		return 0, nil
	}

	// IDs are server-monotonic per session; anything at or below the cursor
	// is a duplicate (typically the boundary event after a resume).
	if last := s.LastEventID(); last != "" && ev.ID <= last {
		c.log.Debug("dropping out-of-order event", "event_id", ev.ID, "cursor", last)
		return 0, nil
	}

	// Advance the cursor before yielding so a consumer that fails after
	// observing the event resumes past it.
	s.setCursor(ev.ID)

	select {
	case s.events <- &ev:
		return 1, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
