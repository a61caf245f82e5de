// Package panel runs the dashboard panels: it queries a datasource on every
// refresh, feeds the result through the status classifier, the icon fitter or
// the delta tracker, and publishes the rendered view.
//
// Two panel kinds exist. Health shows one status icon per matched series and
// sizes the icons to fit the panel. Numeric shows the value of the first
// series and its change against the previous value.
//
// The host drives panels through two entry points: Refresh (a periodic or
// manual refresh event) and Resize (new container dimensions). A panel
// serializes its own refreshes with a loading flag: a refresh that arrives
// while one is in flight returns ErrBusy. Results of a fetch that started
// before the panel was closed are discarded.
//
// Board owns the panels of one configuration, the viewport width and the
// fullscreen flag, and drives periodic refreshes.
package panel
