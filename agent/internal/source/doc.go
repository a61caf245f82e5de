// Package source fetches time-ordered numeric samples for a metric expression
// over a time range. It is the sampling side of the panels: every datasource
// type implements Source and returns one Series per matched time series.
//
// Implemented datasources: Graphite render API (graphite.go), Prometheus
// query_range API (prometheus.go) and a plain Prometheus text exposition
// endpoint (exposition.go). Factory: New(config.Datasource).
//
// Authentication (mTLS, API key, bearer token, basic) is handled by the shared
// authRoundTripper in http.go; datasources receive a pre-configured
// *http.Client from New().
//
// Series.Sample applies the panel sampling rule: with more than one point the
// most recent one is treated as still settling and the second-to-last is used.
package source
