package delta

import "testing"

func f(v float64) *float64 { return &v }

func TestTracker_InitialReading(t *testing.T) {
	tests := []struct {
		decimals int
		want     Reading
	}{
		{0, Reading{Display: "0", Delta: "+/- 0"}},
		{2, Reading{Display: "0.00", Delta: "+/- 0.00"}},
		{-3, Reading{Display: "0", Delta: "+/- 0"}},
	}
	for _, tc := range tests {
		if got := New(Connected, tc.decimals).Last(); got != tc.want {
			t.Errorf("decimals=%d: Last() = %+v, want %+v", tc.decimals, got, tc.want)
		}
	}
}

func TestTracker_Sequence(t *testing.T) {
	tr := New(Connected, 0)

	steps := []struct {
		raw         *float64
		want        Reading
		wantChanged bool
	}{
		{f(5), Reading{"5", "+/- 0"}, true}, // first value: zero delta
		{f(8), Reading{"8", "+3"}, true},
		{f(6), Reading{"6", "-2"}, true},
		{f(6), Reading{"6", "-2"}, false}, // unchanged: no-op
		{nil, Reading{"6", "-2"}, false},  // connected null carries 6 forward
		{f(0), Reading{"0", "-6"}, true},
	}

	for i, s := range steps {
		got, changed := tr.Update(s.raw)
		if got != s.want {
			t.Errorf("step %d: Update() = %+v, want %+v", i, got, s.want)
		}
		if changed != s.wantChanged {
			t.Errorf("step %d: changed = %v, want %v", i, changed, s.wantChanged)
		}
	}

	if prev, ok := tr.Previous(); !ok || prev != 6 {
		t.Errorf("Previous() = %v, %v, want 6, true", prev, ok)
	}
	if tr.Current() != 0 {
		t.Errorf("Current() = %v, want 0", tr.Current())
	}
}

func TestTracker_ConnectedNullAfterFive(t *testing.T) {
	tr := New(Connected, 0)
	tr.Update(f(5))

	got, _ := tr.Update(nil)
	if got.Display != "5" || got.Delta != "+/- 0" {
		t.Errorf("Update(nil) = %+v, want display 5 delta +/- 0", got)
	}
}

func TestTracker_NullModeSubstitutesZero(t *testing.T) {
	tr := New(Null, 0)
	tr.Update(f(5))

	got, changed := tr.Update(nil)
	if !changed {
		t.Fatal("null sample in null mode should change the value")
	}
	if got.Display != "0" || got.Delta != "-5" {
		t.Errorf("Update(nil) = %+v, want display 0 delta -5", got)
	}
}

func TestTracker_NullFirstSample(t *testing.T) {
	for _, mode := range []NullPointMode{Connected, Null} {
		tr := New(mode, 1)
		got, changed := tr.Update(nil)
		if !changed {
			t.Errorf("%s: first sample should be accepted", mode)
		}
		if got.Display != "0.0" || got.Delta != "+/- 0.0" {
			t.Errorf("%s: Update(nil) = %+v", mode, got)
		}
		if _, ok := tr.Previous(); ok {
			t.Errorf("%s: Previous() set after first sample", mode)
		}
	}
}

func TestTracker_Idempotent(t *testing.T) {
	tr := New(Connected, 2)
	tr.Update(f(1.5))
	first, _ := tr.Update(f(3.25))
	prevBefore, _ := tr.Previous()

	second, changed := tr.Update(f(3.25))
	if changed {
		t.Error("second identical update reported a change")
	}
	if first != second {
		t.Errorf("second Update() = %+v, want %+v", second, first)
	}
	if prevAfter, _ := tr.Previous(); prevAfter != prevBefore {
		t.Errorf("Previous() moved from %v to %v on a no-op update", prevBefore, prevAfter)
	}
}

func TestTracker_Decimals(t *testing.T) {
	tr := New(Connected, 2)
	tr.Update(f(1.5))
	got, _ := tr.Update(f(1.25))
	if got.Display != "1.25" || got.Delta != "-0.25" {
		t.Errorf("Update() = %+v, want 1.25 / -0.25", got)
	}

	got, _ = tr.Update(f(2))
	if got.Display != "2.00" || got.Delta != "+0.75" {
		t.Errorf("Update() = %+v, want 2.00 / +0.75", got)
	}
}

func TestTracker_DeltaBelowPrecisionIsZero(t *testing.T) {
	tr := New(Connected, 0)
	tr.Update(f(1))
	got, changed := tr.Update(f(1.2))
	if !changed {
		t.Fatal("1 -> 1.2 should be a change")
	}
	if got.Display != "1" || got.Delta != "+/- 0" {
		t.Errorf("Update() = %+v, want 1 / +/- 0", got)
	}
}

func TestTracker_ConnectedNullAfterChangeKeepsDelta(t *testing.T) {
	tr := New(Connected, 0)
	tr.Update(f(3))
	tr.Update(f(5))

	got, changed := tr.Update(nil)
	if changed {
		t.Error("connected null after 5 should not be a change")
	}
	if got.Display != "5" || got.Delta != "+2" {
		t.Errorf("Update(nil) = %+v, want display 5 delta +2", got)
	}
}

func TestTracker_ExtremeFiniteSamples(t *testing.T) {
	tests := []struct {
		name      string
		from, to  float64
		wantSign  string
		wantDigit string
	}{
		{"overflowing rise", -1e308, 1e308, "+", "2"},
		{"overflowing fall", 1e308, -1e308, "-", "2"},
		{"max float", 0, 1.7976931348623157e308, "+", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(Null, 0)
			tr.Update(f(tc.from))

			var got Reading
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("Update panicked: %v", r)
					}
				}()
				got, _ = tr.Update(f(tc.to))
			}()

			prefix := tc.wantSign + tc.wantDigit
			if len(got.Delta) < len(prefix) || got.Delta[:len(prefix)] != prefix {
				t.Errorf("Delta = %.12s..., want prefix %q", got.Delta, prefix)
			}
			if len(got.Delta) != 310 {
				t.Errorf("len(Delta) = %d, want 310", len(got.Delta))
			}
		})
	}
}

func TestParseNullPointMode(t *testing.T) {
	tests := []struct {
		in      string
		want    NullPointMode
		wantErr bool
	}{
		{"connected", Connected, false},
		{"Connected", Connected, false},
		{"", Connected, false},
		{"null", Null, false},
		{"zero", "", true},
	}
	for _, tc := range tests {
		got, err := ParseNullPointMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseNullPointMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}
