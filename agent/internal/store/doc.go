// Package store holds the latest rendered view of every panel. Panels write
// to it after each refresh or resize; the REST API and the WebSocket hub read
// from it.
package store
