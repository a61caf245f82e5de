package layout

import (
	"errors"
	"fmt"
	"math"
)

// Sizing constants, in pixels.
const (
	MaxFontSize = 130
	MinFontSize = 1

	// ChromeHeight is reserved from the panel height for the error bar.
	ChromeHeight = 32

	// PanelPadding is the horizontal padding inside a panel.
	PanelPadding = 20

	// GridColumns is the number of span units across the viewport.
	GridColumns = 12

	boxVerticalPad   = 6    // 1px font margin + 2px padding, top and bottom
	boxAspect        = 0.84 // icon glyph width/height ratio
	boxHorizontalPad = 4    // 2px padding left and right
)

// ErrInvalidDimensions is returned by Fitter for non-finite or negative input.
var ErrInvalidDimensions = errors.New("layout: invalid dimensions")

// Result is the computed style of a health panel body.
type Result struct {
	// ContainerHeight is the usable body height (panel height minus chrome).
	ContainerHeight float64 `json:"container_height_px"`

	// FontSize is the largest size at which every icon fits.
	FontSize float64 `json:"font_size_px"`

	// Overflow is set when not even MinFontSize fits.
	Overflow bool `json:"overflow,omitempty"`
}

// box is the footprint of one icon at a given font size.
type box struct {
	w, h float64
}

func boxFor(fontSize int) box {
	h := float64(fontSize + boxVerticalPad)
	return box{w: h*boxAspect + boxHorizontalPad, h: h}
}

// Fit returns the layout for count icons in a panel of the given width and
// height. It is pure and total over width, height >= 0 and count >= 0.
func Fit(width, height float64, count int) Result {
	usable := BodyHeight(height)
	out := Result{ContainerHeight: usable, FontSize: MaxFontSize}
	if count <= 0 {
		return out
	}

	// Rounding in the box sizes means fit is not strictly monotonic in the
	// font size, so scan every size from the top.
	for fs := MaxFontSize; fs >= MinFontSize; fs-- {
		if fits(width, usable, count, boxFor(fs)) {
			out.FontSize = float64(fs)
			return out
		}
	}

	out.FontSize = MinFontSize
	out.Overflow = true
	return out
}

// fits simulates placing count boxes left to right, wrapping to a new row
// when the current one has no room left, and reports whether the rows stay
// within height.
func fits(width, height float64, count int, b box) bool {
	if height < b.h || width < b.w {
		return false
	}
	rowLeft, heightLeft := width, height
	for placed := 0; placed < count; placed++ {
		if rowLeft < b.w {
			rowLeft = width
			heightLeft -= b.h
			if heightLeft < b.h {
				return false
			}
		}
		rowLeft -= b.w
	}
	return true
}

// BodyHeight is the panel height minus the chrome reserved at the top.
func BodyHeight(height float64) float64 {
	return height - ChromeHeight
}

// PanelWidth converts a viewport width and a 1 to 12 span into the inner width
// of a panel.
func PanelWidth(viewportWidth float64, span int) float64 {
	return math.Ceil(viewportWidth*float64(span)/GridColumns) - PanelPadding
}

// MaxDataPoints is the number of points worth requesting for a panel: one per
// horizontal pixel of its column.
func MaxDataPoints(viewportWidth float64, span int) int {
	return int(math.Ceil(viewportWidth * float64(span) / GridColumns))
}

// Fitter validates dimensions before fitting and keeps the last good layout.
// It is not safe for concurrent use; the owning panel serializes calls.
type Fitter struct {
	last  Result
	valid bool
}

// Fit is Fit with validation. On invalid input it returns the last good
// layout (or the empty-panel layout if there is none) and
// ErrInvalidDimensions.
func (f *Fitter) Fit(width, height float64, count int) (Result, error) {
	if err := Validate(width, height); err != nil {
		return f.Last(), err
	}
	if count < 0 {
		return f.Last(), fmt.Errorf("%w: count %d", ErrInvalidDimensions, count)
	}
	f.last = Fit(width, height, count)
	f.valid = true
	return f.last, nil
}

// Last returns the last good layout.
func (f *Fitter) Last() Result {
	if !f.valid {
		return Result{FontSize: MaxFontSize}
	}
	return f.last
}

// Validate rejects non-finite or negative panel dimensions.
func Validate(width, height float64) error {
	switch {
	case math.IsNaN(width) || math.IsInf(width, 0) || width < 0:
		return fmt.Errorf("%w: width %v", ErrInvalidDimensions, width)
	case math.IsNaN(height) || math.IsInf(height, 0) || height < 0:
		return fmt.Errorf("%w: height %v", ErrInvalidDimensions, height)
	}
	return nil
}
