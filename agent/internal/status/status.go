package status

import "fmt"

// Direction is the polarity convention of a metric.
type Direction string

const (
	// Ascending marks metrics where a rising value is worse (error rates).
	Ascending Direction = "asc"
	// Descending marks metrics where a falling value is worse (free capacity).
	Descending Direction = "desc"
)

// Level is the discrete classification of a metric sample.
type Level string

const (
	LevelHealthy Level = "healthy"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Icon tokens used when no explicit icon is configured.
const (
	IconHealthy = "icon-ok-sign"
	IconWarning = "icon-exclamation-sign"
	IconError   = "icon-remove-sign"
)

// Color tokens used when no explicit color is configured.
const (
	ColorHealthy = "#ADFF2F"
	ColorWarning = "#FFA500"
	ColorError   = "#FF0000"
)

// Style is the icon/color pair rendered for one level.
type Style struct {
	Icon  string
	Color string
}

// Styles maps every level to its rendered style.
type Styles struct {
	Healthy Style
	Warning Style
	Error   Style
}

// DefaultStyles returns the stock icon and color tokens.
func DefaultStyles() Styles {
	return Styles{
		Healthy: Style{Icon: IconHealthy, Color: ColorHealthy},
		Warning: Style{Icon: IconWarning, Color: ColorWarning},
		Error:   Style{Icon: IconError, Color: ColorError},
	}
}

// For returns the style configured for level. Empty tokens fall back to the
// stock ones so a partially configured panel still renders.
func (s Styles) For(level Level) Style {
	def := DefaultStyles()
	var got, fallback Style
	switch level {
	case LevelWarning:
		got, fallback = s.Warning, def.Warning
	case LevelError:
		got, fallback = s.Error, def.Error
	default:
		got, fallback = s.Healthy, def.Healthy
	}
	if got.Icon == "" {
		got.Icon = fallback.Icon
	}
	if got.Color == "" {
		got.Color = fallback.Color
	}
	return got
}

// Config holds the immutable threshold settings of one panel.
type Config struct {
	Direction Direction

	// ErrorThreshold is the boundary of the error test (inclusive).
	ErrorThreshold float64

	// WarningThreshold is the boundary of the warning test (inclusive).
	// Ignored unless IncludeWarning is set.
	WarningThreshold float64

	// IncludeWarning enables the warning level. When false the
	// classification is binary: healthy or error.
	IncludeWarning bool

	Styles Styles
}

// Result is a classified sample. It has no identity and is produced fresh on
// every call.
type Result struct {
	Level Level
	Icon  string
	Color string
}

// Classify maps value to a Result under cfg.
//
// value must be finite; nulls are resolved by the caller.
func Classify(value float64, cfg Config) Result {
	level := levelFor(value, cfg)
	st := cfg.Styles.For(level)
	return Result{Level: level, Icon: st.Icon, Color: st.Color}
}

// levelFor runs the error test, then the warning test. Descending swaps the
// healthy and error outcomes of the outer tests only.
func levelFor(value float64, cfg Config) Level {
	above, below := LevelError, LevelHealthy
	if cfg.Direction == Descending {
		above, below = LevelHealthy, LevelError
	}

	switch {
	case value >= cfg.ErrorThreshold:
		return above
	case cfg.IncludeWarning && value >= cfg.WarningThreshold:
		return LevelWarning
	default:
		return below
	}
}

// ParseDirection accepts the config spellings of a direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "asc", "Asc", "ascending", "":
		return Ascending, nil
	case "desc", "Desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("status: unknown direction %q", s)
	}
}

// Severity orders levels from least to most severe. Unknown levels rank
// below healthy.
func Severity(l Level) int {
	switch l {
	case LevelHealthy:
		return 1
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	default:
		return 0
	}
}
