package status

import "testing"

func ascCfg(includeWarning bool) Config {
	return Config{
		Direction:        Ascending,
		ErrorThreshold:   1,
		WarningThreshold: 0.5,
		IncludeWarning:   includeWarning,
		Styles:           DefaultStyles(),
	}
}

// --- Classify() table-driven tests ---

func TestClassify_Levels(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		cfg   Config
		want  Level
	}{
		{"asc below both", 0.2, ascCfg(true), LevelHealthy},
		{"asc at warning boundary", 0.5, ascCfg(true), LevelWarning},
		{"asc between thresholds", 0.6, ascCfg(true), LevelWarning},
		{"asc at error boundary", 1.0, ascCfg(true), LevelError},
		{"asc above error", 7, ascCfg(true), LevelError},
		{"asc warning disabled", 0.6, ascCfg(false), LevelHealthy},
		{"asc negative value", -3, ascCfg(true), LevelHealthy},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.value, tc.cfg)
			if got.Level != tc.want {
				t.Errorf("Classify(%v).Level = %q, want %q", tc.value, got.Level, tc.want)
			}
		})
	}
}

func TestClassify_Scenario(t *testing.T) {
	values := []float64{0.2, 0.6, 1.0}
	want := []Level{LevelHealthy, LevelWarning, LevelError}
	for i, v := range values {
		if got := Classify(v, ascCfg(true)).Level; got != want[i] {
			t.Errorf("Classify(%v) = %q, want %q", v, got, want[i])
		}
	}
}

func TestClassify_DescendingSwapsHealthyAndError(t *testing.T) {
	swap := map[Level]Level{
		LevelHealthy: LevelError,
		LevelError:   LevelHealthy,
		LevelWarning: LevelWarning,
	}
	for _, include := range []bool{true, false} {
		asc := ascCfg(include)
		desc := asc
		desc.Direction = Descending
		for _, v := range []float64{-1, 0, 0.49, 0.5, 0.75, 0.99, 1, 1.01, 100} {
			a := Classify(v, asc).Level
			d := Classify(v, desc).Level
			if swap[a] != d {
				t.Errorf("include=%v value=%v: asc=%q desc=%q, want desc=%q", include, v, a, d, swap[a])
			}
		}
	}
}

func TestClassify_ErrorPrecedesWarning(t *testing.T) {
	// Overlapping ranges: warning above error. The error test still wins.
	cfg := Config{Direction: Ascending, ErrorThreshold: 1, WarningThreshold: 5, IncludeWarning: true}
	for _, v := range []float64{1, 3, 5, 10} {
		if got := Classify(v, cfg).Level; got != LevelError {
			t.Errorf("Classify(%v) with overlapping thresholds = %q, want %q", v, got, LevelError)
		}
	}
	if got := Classify(cfg.ErrorThreshold, cfg).Level; got != LevelError {
		t.Errorf("Classify(errorThreshold) = %q, want %q", got, LevelError)
	}
}

func TestClassify_Styles(t *testing.T) {
	cfg := ascCfg(true)
	cfg.Styles.Error = Style{Color: "red"}

	got := Classify(2, cfg)
	if got.Color != "red" {
		t.Errorf("Color = %q, want %q", got.Color, "red")
	}
	if got.Icon != IconError {
		t.Errorf("Icon = %q, want fallback %q", got.Icon, IconError)
	}

	got = Classify(0.7, cfg)
	if got.Icon != IconWarning || got.Color != ColorWarning {
		t.Errorf("warning style = %+v, want %s/%s", got, IconWarning, ColorWarning)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"asc", Ascending, false},
		{"Asc", Ascending, false},
		{"", Ascending, false},
		{"desc", Descending, false},
		{"descending", Descending, false},
		{"sideways", "", true},
	}
	for _, tc := range tests {
		got, err := ParseDirection(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDirection(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSeverity(t *testing.T) {
	if !(Severity(LevelError) > Severity(LevelWarning) &&
		Severity(LevelWarning) > Severity(LevelHealthy) &&
		Severity(LevelHealthy) > Severity("")) {
		t.Error("Severity ordering broken")
	}
}
