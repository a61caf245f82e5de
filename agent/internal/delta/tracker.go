package delta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NullPointMode is the policy for a missing sample.
type NullPointMode string

const (
	// Connected carries the last known value forward.
	Connected NullPointMode = "connected"
	// Null substitutes zero.
	Null NullPointMode = "null"
)

// ParseNullPointMode accepts the config spellings of a null-point mode.
func ParseNullPointMode(s string) (NullPointMode, error) {
	switch s {
	case "connected", "Connected", "":
		return Connected, nil
	case "null", "Null":
		return Null, nil
	default:
		return "", fmt.Errorf("delta: unknown null point mode %q", s)
	}
}

// Reading is the rendered output of a Tracker.
type Reading struct {
	Display string `json:"display"`
	Delta   string `json:"delta"`
}

// Tracker holds the delta state of one panel instance. A new panel session
// gets a new Tracker; nothing else resets it.
//
// Tracker is not safe for concurrent use. The owning panel is its only writer.
type Tracker struct {
	mode     NullPointMode
	decimals int32

	current     float64
	previous    float64
	hasPrevious bool
	seen        bool // at least one sample accepted
	last        Reading
}

// New returns a Tracker that renders decimals places (negative means 0).
func New(mode NullPointMode, decimals int) *Tracker {
	if decimals < 0 {
		decimals = 0
	}
	t := &Tracker{mode: mode, decimals: int32(decimals)}
	t.last = Reading{Display: t.format(0), Delta: t.formatDelta(decimal.Zero)}
	return t
}

// Update feeds the raw sample of one cycle. It returns the Reading to display
// and whether anything changed. On no change the previous Reading is returned.
func (t *Tracker) Update(raw *float64) (Reading, bool) {
	v := t.resolve(raw)
	if t.seen && v == t.current {
		return t.last, false
	}

	d := decimal.Zero
	if t.seen {
		d = decimal.NewFromFloat(v).Sub(decimal.NewFromFloat(t.current))
		t.previous = t.current
		t.hasPrevious = true
	}
	t.current = v
	t.seen = true

	t.last = Reading{Display: t.format(v), Delta: t.formatDelta(d)}
	return t.last, true
}

// resolve applies the null-point policy.
func (t *Tracker) resolve(raw *float64) float64 {
	if raw != nil {
		return *raw
	}
	if t.mode == Connected {
		return t.current
	}
	return 0
}

// Current returns the last accepted value.
func (t *Tracker) Current() float64 { return t.current }

// Previous returns the value that preceded Current, if there was one.
func (t *Tracker) Previous() (float64, bool) { return t.previous, t.hasPrevious }

// Last returns the most recent Reading.
func (t *Tracker) Last() Reading { return t.last }

func (t *Tracker) format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(t.decimals)
}

// formatDelta signs the delta after rounding, so a change too small to show
// at this precision renders as no change. The difference is taken in decimal
// space because two finite samples can overflow float64 when subtracted.
func (t *Tracker) formatDelta(d decimal.Decimal) string {
	r := d.Round(t.decimals)
	switch r.Sign() {
	case 1:
		return "+" + r.StringFixed(t.decimals)
	case 0:
		return "+/- " + decimal.Zero.StringFixed(t.decimals)
	default:
		return r.StringFixed(t.decimals)
	}
}
