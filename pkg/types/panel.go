package types

import "time"

// Panel kinds.
const (
	KindHealth  = "health"
	KindNumeric = "numeric"
)

// PanelView is the rendered state of one panel.
type PanelView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Position is the panel's index on the board, used for ordering.
	Position int `json:"position"`

	// Loading is set while a refresh is in flight.
	Loading bool `json:"loading"`

	// Error is the message of the last failed refresh, cleared when the next
	// refresh starts.
	Error string `json:"error,omitempty"`

	// Width and Height are the panel dimensions the layout was computed for.
	Width  float64 `json:"width_px"`
	Height float64 `json:"height_px"`

	Health  *HealthView  `json:"health,omitempty"`
	Numeric *NumericView `json:"numeric,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// HealthView is the body of a health panel.
type HealthView struct {
	Updates []MetricUpdate `json:"updates"`

	// BodyHeight is the usable height of the icon area.
	BodyHeight float64 `json:"body_height_px"`

	// FontSize is the icon size at which every update fits.
	FontSize float64 `json:"font_size_px"`

	// Overflow is set when the icons do not fit even at the minimum size.
	Overflow bool `json:"overflow,omitempty"`
}

// MetricUpdate is the classified sample of one series.
type MetricUpdate struct {
	Label string `json:"label"`
	Level string `json:"level"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// NumericView is the body of a numeric panel.
type NumericView struct {
	Value      string `json:"value"`
	Delta      string `json:"delta"`
	ShowDelta  bool   `json:"show_delta"`
	DeltaColor string `json:"delta_color,omitempty"`

	// BodyHeight is the usable height of the value area.
	BodyHeight float64 `json:"body_height_px"`
}
