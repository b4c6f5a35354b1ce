package timegrid

import (
	"testing"
	"time"
)

func TestSnapMinutesIdempotent(t *testing.T) {
	cfg := DefaultConfig()

	values := []float64{-10, 0, 7, 359, 360, 375, 420.5, 719, 1320, 1333}
	modes := []SnapMode{SnapFloor, SnapNearest}

	for _, mode := range modes {
		for _, m := range values {
			once := SnapMinutes(m, cfg, mode)
			twice := SnapMinutes(float64(once), cfg, mode)

			if once != twice {
				t.Errorf("snap not idempotent: mode=%v m=%v once=%d twice=%d", mode, m, once, twice)
			}
		}
	}
}

func TestSnapMinutes(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		m    float64
		mode SnapMode
		want int
	}{
		{"floor mid-slot", 459, SnapFloor, 450},
		{"floor exact", 450, SnapFloor, 450},
		{"nearest below half", 459, SnapNearest, 450},
		{"nearest above half", 466, SnapNearest, 480},
		{"floor negative", -10, SnapFloor, -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapMinutes(tt.m, cfg, tt.mode)
			if got != tt.want {
				t.Errorf("SnapMinutes(%v, %v) = %d, want %d", tt.m, tt.mode, got, tt.want)
			}
		})
	}
}

func TestClampMinutesBounds(t *testing.T) {
	cfg := DefaultConfig()

	for _, m := range []int{-100, 0, 359, 360, 800, 1320, 1321, 2000} {
		got := ClampMinutes(m, cfg)
		if got < cfg.DayStartMinutes() || got > cfg.DayEndMinutes() {
			t.Errorf("ClampMinutes(%d) = %d, outside [%d, %d]", m, got, cfg.DayStartMinutes(), cfg.DayEndMinutes())
		}
	}

	if got := ClampMinutes(800, cfg); got != 800 {
		t.Errorf("ClampMinutes(800) = %d, want 800", got)
	}
}

func TestPixelMinuteRoundTrip(t *testing.T) {
	cfg := DefaultConfig()

	// Any slot-aligned pixel offset survives the round trip.
	for _, p := range []float64{0, 40, 80, 240, 640} {
		got := MinutesToPixel(PixelToMinutes(p, cfg), cfg)
		if got != p {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestMinutesFromPointerBias(t *testing.T) {
	cfg := DefaultConfig()

	// One pixel above a grid line the +1 bias already selects the later
	// slot: y=79 reads as y=80, the 07:00 line.
	if got := MinutesFromPointer(79, 0, cfg, SnapFloor); got != 420 {
		t.Errorf("MinutesFromPointer(79) = %d, want 420", got)
	}

	// Mid-slot stays in its slot.
	if got := MinutesFromPointer(60, 0, cfg, SnapFloor); got != 390 {
		t.Errorf("MinutesFromPointer(60) = %d, want 390", got)
	}

	// Column offset is subtracted before converting.
	if got := MinutesFromPointer(179, 100, cfg, SnapFloor); got != 420 {
		t.Errorf("MinutesFromPointer(179, top=100) = %d, want 420", got)
	}

	// Clamped to the day bounds when the pointer leaves the grid.
	if got := MinutesFromPointer(-500, 0, cfg, SnapFloor); got != cfg.DayStartMinutes() {
		t.Errorf("below grid = %d, want %d", got, cfg.DayStartMinutes())
	}
	if got := MinutesFromPointer(5000, 0, cfg, SnapFloor); got != cfg.DayEndMinutes() {
		t.Errorf("above grid = %d, want %d", got, cfg.DayEndMinutes())
	}
}

func TestNormalizeRangeSymmetry(t *testing.T) {
	cfg := DefaultConfig()

	pairs := [][2]float64{
		{480, 540},
		{540, 480},
		{360, 360},
		{1000, 372},
		{-50, 2000},
	}

	for _, pair := range pairs {
		s1, e1 := NormalizeRange(pair[0], pair[1], cfg, SnapFloor)
		s2, e2 := NormalizeRange(pair[1], pair[0], cfg, SnapFloor)

		if s1 != s2 || e1 != e2 {
			t.Errorf("NormalizeRange not symmetric for %v: (%d,%d) vs (%d,%d)", pair, s1, e1, s2, e2)
		}
		if s1 > e1 {
			t.Errorf("NormalizeRange(%v) returned inverted range (%d,%d)", pair, s1, e1)
		}
	}

	s, e := NormalizeRange(540, 480, cfg, SnapFloor)
	if s != 480 || e != 540 {
		t.Errorf("upward drag normalized to (%d,%d), want (480,540)", s, e)
	}
}

func TestMinDuration(t *testing.T) {
	if got := MinDuration(EntityAvailability); got != 30 {
		t.Errorf("availability min duration = %d, want 30", got)
	}
	if got := MinDuration(EntityAppointment); got != 15 {
		t.Errorf("appointment min duration = %d, want 15", got)
	}
	if MaxAppointmentDuration != 240 {
		t.Errorf("max appointment duration = %d, want 240", MaxAppointmentDuration)
	}
}

func TestMinutesTimeRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name    string
		base    time.Time
		minutes int
	}{
		{"regular day", time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), 540},
		{"dst spring forward", time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC), 540},
		{"dst fall back", time.Date(2025, 10, 26, 12, 0, 0, 0, time.UTC), 600},
		{"day start", time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs := MinutesToTime(tt.minutes, tt.base, loc)

			if abs.Location() != time.UTC {
				t.Errorf("MinutesToTime returned non-UTC time: %v", abs)
			}

			if got := TimeToMinutes(abs, loc); got != tt.minutes {
				t.Errorf("round trip of %d = %d (abs %v)", tt.minutes, got, abs)
			}
		})
	}
}

func TestISOConversions(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 07:30 UTC in June is 09:30 Paris wall clock.
	if got := ISOToMinutes("2025-06-10T07:30:00Z", loc); got != 570 {
		t.Errorf("ISOToMinutes = %d, want 570", got)
	}

	if got := ISOToMinutes("not-a-timestamp", loc); got != 0 {
		t.Errorf("malformed input = %d, want 0", got)
	}

	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	iso := MinutesToISO(570, base, loc)
	if got := ISOToMinutes(iso, loc); got != 570 {
		t.Errorf("ISO round trip = %d (iso %s), want 570", got, iso)
	}
}
