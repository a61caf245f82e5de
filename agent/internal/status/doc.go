// Package status classifies a single metric sample into a discrete health
// level (healthy, warning, error) against a threshold configuration.
//
// Classify is pure and total. Direction controls polarity: "asc" means higher
// values are worse, "desc" means lower values are worse. The error test always
// runs before the warning test, so severity wins when misconfigured thresholds
// overlap.
//
// Each Result carries the icon and color tokens configured for its level. The
// tokens are opaque here; the display layer decides what they mean.
package status
