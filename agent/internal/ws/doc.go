// Package ws implements the WebSocket hub of the agent: the display side of
// the panels.
//
// Hub manages a set of connected clients and broadcasts the current panel
// views to all of them on a configurable interval (default 5s).
//
// New(store, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker. It blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// views immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "panels",
//	  "data":  { "generated_at": "...", "panels": [ /* GET /api/v1/panels */ ] }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream.
package ws
