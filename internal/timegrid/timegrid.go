package timegrid

import (
	"math"
	"time"
)

// SnapMode selects how a raw minute value is quantized to the grid.
// Floor is used while a drag is in flight to avoid jitter; Nearest is used
// for discrete one-off adjustments.
type SnapMode int

const (
	SnapFloor SnapMode = iota
	SnapNearest
)

type Entity int

const (
	EntityAvailability Entity = iota
	EntityAppointment
)

// MaxAppointmentDuration is a hard ceiling enforced during resize. It is not
// enforced for service drops, where the service's own duration is trusted.
const MaxAppointmentDuration = 240

// Config describes the visible day grid. All pixel/minute math is relative
// to StartHour*60. EndHour must be greater than StartHour; violating that is
// a caller programming error, not a runtime-checked condition.
type Config struct {
	SlotHeight      float64
	IntervalMinutes int
	StartHour       int
	EndHour         int
}

func DefaultConfig() Config {
	return Config{
		SlotHeight:      40,
		IntervalMinutes: 30,
		StartHour:       6,
		EndHour:         22,
	}
}

func (c Config) DayStartMinutes() int {
	return c.StartHour * 60
}

func (c Config) DayEndMinutes() int {
	return c.EndHour * 60
}

// PixelToMinutes converts a pixel offset within a day column into
// minutes-from-midnight.
func PixelToMinutes(y float64, cfg Config) float64 {
	return y/cfg.SlotHeight*float64(cfg.IntervalMinutes) + float64(cfg.DayStartMinutes())
}

// MinutesToPixel is the inverse of PixelToMinutes.
func MinutesToPixel(minutes float64, cfg Config) float64 {
	return (minutes - float64(cfg.DayStartMinutes())) / float64(cfg.IntervalMinutes) * cfg.SlotHeight
}

// SnapMinutes quantizes a minutes-from-midnight value to the grid interval.
func SnapMinutes(minutes float64, cfg Config, mode SnapMode) int {
	interval := float64(cfg.IntervalMinutes)

	var slots float64
	switch mode {
	case SnapNearest:
		slots = math.Round(minutes / interval)
	default:
		slots = math.Floor(minutes / interval)
	}

	return int(slots) * cfg.IntervalMinutes
}

// ClampMinutes restricts a minute value to the visible day bounds. Dragging
// past the bounds pins to the boundary rather than scrolling.
func ClampMinutes(minutes int, cfg Config) int {
	if minutes < cfg.DayStartMinutes() {
		return cfg.DayStartMinutes()
	}
	if minutes > cfg.DayEndMinutes() {
		return cfg.DayEndMinutes()
	}

	return minutes
}

// MinutesFromPointer converts an absolute pointer Y and the top of a day
// column into clamped, snapped minutes. The +1 pixel biases a pointer
// sitting exactly on a grid line toward the later slot; this tie-break
// prevents flicker and must keep its direction.
func MinutesFromPointer(clientY, columnTop float64, cfg Config, mode SnapMode) int {
	raw := PixelToMinutes(clientY-columnTop+1, cfg)

	return ClampMinutes(SnapMinutes(raw, cfg, mode), cfg)
}

// NormalizeRange snaps and clamps two arbitrary minute values and returns
// them ordered, which makes drag direction irrelevant to the caller.
func NormalizeRange(a, b float64, cfg Config, mode SnapMode) (startMinutes, endMinutes int) {
	first := ClampMinutes(SnapMinutes(a, cfg, mode), cfg)
	second := ClampMinutes(SnapMinutes(b, cfg, mode), cfg)

	if first <= second {
		return first, second
	}

	return second, first
}

// MinDuration returns the shortest span an entity of the given kind may
// occupy on the grid.
func MinDuration(entity Entity) int {
	if entity == EntityAppointment {
		return 15
	}

	return 30
}

// MinutesToTime materializes minutes-from-midnight on the calendar date of
// baseDate in the clinic timezone, returned in UTC. The grid always operates
// in clinic wall-clock time regardless of the viewer's timezone or DST.
func MinutesToTime(minutes int, baseDate time.Time, loc *time.Location) time.Time {
	d := baseDate.In(loc)

	return time.Date(d.Year(), d.Month(), d.Day(), 0, minutes, 0, 0, loc).UTC()
}

// TimeToMinutes extracts minutes-from-midnight from an absolute timestamp,
// read in the clinic timezone.
func TimeToMinutes(t time.Time, loc *time.Location) int {
	lt := t.In(loc)

	return lt.Hour()*60 + lt.Minute()
}

// MinutesToISO renders minutes on baseDate's clinic-zone calendar date as an
// RFC3339 UTC timestamp.
func MinutesToISO(minutes int, baseDate time.Time, loc *time.Location) string {
	return MinutesToTime(minutes, baseDate, loc).Format(time.RFC3339)
}

// ISOToMinutes parses an RFC3339 timestamp and returns its clinic-zone
// minutes-from-midnight. Malformed input yields 0; the transforms stay total.
func ISOToMinutes(iso string, loc *time.Location) int {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0
	}

	return TimeToMinutes(t, loc)
}
