// Package everruns provides a typed Go client for the Everruns API.
//
// The client covers agent, session and message management, a resumable
// server-sent-event stream of session activity, and the client-side tool
// round trip: the server asks for a named tool call, the application runs
// it locally and reports the result back as a tool_result message.
//
// # Quick Start
//
//	client, err := everruns.FromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	agent, _ := client.Agents().Create(ctx, "Assistant", "You are helpful.")
//	session, _ := client.Sessions().Create(ctx, agent.ID)
//	client.Messages().Create(ctx, session.ID, "Hello!")
//
//	stream := client.Events().Stream(ctx, session.ID)
//	defer stream.Close()
//	for stream.Next() {
//	    ev := stream.Current()
//	    fmt.Println(ev.Type)
//	    if ev.Terminal() {
//	        break
//	    }
//	}
//
// For conversations that involve tool calls, [RunTurn] drives the whole
// send-stream-dispatch-submit loop against a [ToolRegistry].
package everruns
