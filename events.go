package everruns

import (
	"context"
	"net/http"
)

// EventsClient performs event operations. Obtain one via Client.Events.
type EventsClient struct {
	client *Client
}

// List returns a session's recorded events ordered by ID.
func (e *EventsClient) List(ctx context.Context, sessionID string) (*ListResponse[Event], error) {
	var resp ListResponse[Event]
	if err := e.client.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stream opens the session's SSE feed. The returned stream is live until
// the connection drops, the context is cancelled or Close is called; see
// EventStream for resumption semantics.
func (e *EventsClient) Stream(ctx context.Context, sessionID string, opts ...StreamOption) *EventStream {
	var so StreamOptions
	for _, fn := range opts {
		fn(&so)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &EventStream{
		events: make(chan *Event, e.client.streamBufferSize),
		cancel: cancel,
	}
	go s.run(ctx, e.client, sessionID, so)
	return s
}
