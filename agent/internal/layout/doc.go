// Package layout sizes the status icons of a multi-metric health panel.
//
// Fit searches for the largest integer font size in [MinFontSize, MaxFontSize]
// at which count icons fit in a width × height body. Every icon occupies a box
// derived from the font size; a row-wrap simulation decides whether the boxes
// fit. The search is a linear descent from the maximum. When nothing fits, Fit
// returns the minimum size with Overflow set and the caller renders clipped.
//
// Fitter adds input validation on top of Fit and remembers the last good
// layout, which it returns when handed non-finite or negative dimensions.
package layout
