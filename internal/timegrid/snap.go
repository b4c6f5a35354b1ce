package timegrid

// Transform is the live visual offset applied to a dragged block, in pixels.
type Transform struct {
	X float64
	Y float64
}

// SnapTransform constrains a drag transform for on-screen feedback: the
// horizontal axis is locked and the vertical axis is quantized to whole
// slots. The quantization round-trips through the same minute math used for
// committed placements, so visual snapping can never disagree with the
// minutes the drop will produce.
func SnapTransform(t Transform, cfg Config) Transform {
	base := float64(cfg.DayStartMinutes())

	deltaMinutes := PixelToMinutes(t.Y, cfg) - base
	snapped := float64(SnapMinutes(base+deltaMinutes, cfg, SnapNearest))

	return Transform{
		X: 0,
		Y: MinutesToPixel(snapped, cfg),
	}
}
