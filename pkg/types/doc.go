// Package types defines the JSON views of panels shared by the agent's REST
// API and its WebSocket stream. They are the rendered state of a panel, what a
// display needs to draw it, and nothing about how it was computed.
package types
