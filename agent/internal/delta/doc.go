// Package delta tracks the latest value of a single numeric series and the
// signed change against the value observed before it.
//
// Tracker.Update accepts the raw sample of a refresh cycle (nil for a missing
// point), resolves it under the configured null-point mode and, when the value
// changed, renders both the value and the delta to a fixed number of decimal
// places. An unchanged value is a no-op: the previous Reading is returned and
// no state moves.
//
// The very first observed value yields a zero delta ("+/- 0"): there is no
// earlier observation to diff against.
package delta
