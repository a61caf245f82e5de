// Package api serves the read/control REST API of the agent under /api/v1.
//
// Reads come from the view store; control endpoints (refresh, resize,
// viewport) go to the panel board. When the agent's auth mode is "apikey",
// every route requires the configured key in the configured header.
package api
