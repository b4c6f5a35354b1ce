package timegrid

import "testing"

func TestSnapTransform(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		in   Transform
		want Transform
	}{
		{"locks horizontal axis", Transform{X: 120, Y: 40}, Transform{X: 0, Y: 40}},
		{"rounds up past half slot", Transform{X: 0, Y: 47}, Transform{X: 0, Y: 40}},
		{"rounds down below half slot", Transform{X: 0, Y: 15}, Transform{X: 0, Y: 0}},
		{"negative delta", Transform{X: -3, Y: -55}, Transform{X: 0, Y: -40}},
		{"exact slot unchanged", Transform{X: 0, Y: -80}, Transform{X: 0, Y: -80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapTransform(tt.in, cfg)
			if got != tt.want {
				t.Errorf("SnapTransform(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnapTransformIdempotent(t *testing.T) {
	cfg := DefaultConfig()

	for _, y := range []float64{-123, -40, -7, 0, 19, 40, 41, 333} {
		once := SnapTransform(Transform{Y: y}, cfg)
		twice := SnapTransform(once, cfg)

		if once != twice {
			t.Errorf("SnapTransform not idempotent for y=%v: %+v vs %+v", y, once, twice)
		}
	}
}
