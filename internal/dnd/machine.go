package dnd

import (
	"log/slog"
	"math"

	"agenda-service/internal/timegrid"
)

// BlockSnapshot is an availability block's range as seen at drag start.
type BlockSnapshot struct {
	StartMinutes int
	EndMinutes   int
}

// AppointmentSnapshot is an appointment's placement as seen at drag start.
type AppointmentSnapshot struct {
	StartMinutes    int
	DurationMinutes int
}

// Host supplies read-only snapshots from the surrounding application's data
// layer. Each lookup may return nil ("not found"); the machine then keeps
// the original range at [0,0) and the geometry degenerates to a zero-height
// preview instead of failing.
type Host struct {
	GetAvailabilityBlock func(id string) *BlockSnapshot
	GetAppointment       func(id string) *AppointmentSnapshot
	GetServiceDuration   func(id string) (int, bool)
}

// Callbacks are the six commit hooks, each invoked at most once per
// completed drag with primitive arguments only. Resize callbacks receive the
// moved edge's minute value, not the whole range.
type Callbacks struct {
	OnAvailabilityCreate func(dayIndex, startMinutes, endMinutes int)
	OnAvailabilityMove   func(blockID string, dayIndex, startMinutes, endMinutes int)
	OnAvailabilityResize func(blockID string, dayIndex int, edge Edge, edgeMinutes int)
	OnAppointmentMove    func(appointmentID string, dayIndex, startMinutes int)
	OnAppointmentResize  func(appointmentID string, dayIndex int, edge Edge, edgeMinutes int)
	OnServiceDrop        func(serviceID string, dayIndex, startMinutes int)
}

// MoveEvent carries what the machine needs from a pointer-move: the
// droppable id under the pointer ("" if none) and the cumulative pixel delta
// since drag start.
type MoveEvent struct {
	OverID string
	DeltaY float64
}

// Controller owns the single drag session. All methods run on one logical
// thread (the host event loop); there is no reentrancy and no locking.
type Controller struct {
	cfg       timegrid.Config
	columns   *ColumnRegistry
	host      Host
	callbacks Callbacks
	log       *slog.Logger

	state State

	// serviceDuration is resolved once at drag start for service drops.
	serviceDuration int

	// anchored is false while a create drag still waits for its column rect.
	anchored bool
}

func NewController(cfg timegrid.Config, columns *ColumnRegistry, host Host, callbacks Callbacks, log *slog.Logger) *Controller {
	return &Controller{
		cfg:       cfg,
		columns:   columns,
		host:      host,
		callbacks: callbacks,
		log:       log,
		state:     idleState(),
	}
}

// State returns a copy of the current session record.
func (c *Controller) State() State {
	st := c.state
	if st.Preview != nil {
		pv := *st.Preview
		st.Preview = &pv
	}

	return st
}

// Start classifies the parsed source and opens a session. An unknown source
// or an already-active session leaves the machine untouched.
func (c *Controller) Start(src DragSource, pointerY float64) {
	if c.state.Context != ContextIdle {
		return
	}

	st := idleState()
	st.Source = src
	st.PointerStartY = pointerY

	switch src.Kind {
	case SourceCreateSlot:
		st.Context = ContextCreateAvailability

		// The anchor needs the column's top; if the rect is not registered
		// yet, anchoring waits for the first move over a known column.
		if rect, ok := c.columns.Lookup(src.DayIndex); ok {
			st.OverDayIndex = src.DayIndex
			st.AnchorMinutes = timegrid.MinutesFromPointer(pointerY, rect.Top, c.cfg, timegrid.SnapFloor)
			c.anchored = true
		}

	case SourceAvailability:
		if src.Edge != EdgeNone {
			st.Context = ContextResizeAvailability
		} else {
			st.Context = ContextMoveAvailability
		}

		if c.host.GetAvailabilityBlock != nil {
			if snap := c.host.GetAvailabilityBlock(src.EntityID); snap != nil {
				st.OriginalStartMinutes = snap.StartMinutes
				st.OriginalEndMinutes = snap.EndMinutes
			}
		}

	case SourceAppointment:
		if src.Edge != EdgeNone {
			st.Context = ContextResizeAppointment
		} else {
			st.Context = ContextMoveAppointment
		}

		if c.host.GetAppointment != nil {
			if snap := c.host.GetAppointment(src.EntityID); snap != nil {
				st.OriginalStartMinutes = snap.StartMinutes
				st.OriginalEndMinutes = snap.StartMinutes + snap.DurationMinutes
			}
		}

	case SourceService:
		st.Context = ContextServiceDrop

		c.serviceDuration = 60
		if c.host.GetServiceDuration != nil {
			if d, ok := c.host.GetServiceDuration(src.EntityID); ok && d > 0 {
				c.serviceDuration = d
			}
		}

	default:
		return
	}

	c.state = st

	c.log.Debug("Drag started",
		slog.String("context", st.Context.String()),
		slog.String("entity_id", src.EntityID),
	)
}

// Move recomputes the preview for the column under the pointer. A missing or
// stale column clears the preview but keeps the session alive.
func (c *Controller) Move(ev MoveEvent) {
	if c.state.Context == ContextIdle {
		return
	}

	dayIndex, ok := ParseDroppable(ev.OverID)

	var rect ColumnRect
	if ok {
		rect, ok = c.columns.Lookup(dayIndex)
	}

	if !ok {
		c.state.OverDayIndex = -1
		c.state.Preview = nil
		return
	}

	c.state.OverDayIndex = dayIndex
	pointerY := c.state.PointerStartY + ev.DeltaY

	pv := Preview{DayIndex: dayIndex}

	switch c.state.Context {
	case ContextCreateAvailability:
		if !c.anchored {
			c.state.AnchorMinutes = timegrid.MinutesFromPointer(c.state.PointerStartY, rect.Top, c.cfg, timegrid.SnapFloor)
			c.anchored = true
		}

		current := timegrid.MinutesFromPointer(pointerY, rect.Top, c.cfg, timegrid.SnapFloor)
		start, end := timegrid.NormalizeRange(float64(c.state.AnchorMinutes), float64(current), c.cfg, timegrid.SnapFloor)

		// Too-short drags extend the end to the minimum duration; on the
		// bottom grid line the start is pulled up instead, so the span
		// never collapses to zero.
		if min := timegrid.MinDuration(timegrid.EntityAvailability); end-start < min {
			end = timegrid.ClampMinutes(start+min, c.cfg)
			if end-start < min {
				start = timegrid.ClampMinutes(end-min, c.cfg)
			}
		}

		pv.StartMinutes, pv.EndMinutes = start, end

	case ContextMoveAvailability, ContextMoveAppointment:
		duration := c.state.OriginalEndMinutes - c.state.OriginalStartMinutes

		start := c.state.OriginalStartMinutes + c.snapDelta(ev.DeltaY)
		if start+duration > c.cfg.DayEndMinutes() {
			start = c.cfg.DayEndMinutes() - duration
		}
		if start < c.cfg.DayStartMinutes() {
			start = c.cfg.DayStartMinutes()
		}

		pv.StartMinutes, pv.EndMinutes = start, start+duration

	case ContextResizeAvailability, ContextResizeAppointment:
		pv.StartMinutes, pv.EndMinutes = c.resizeRange(ev.DeltaY)

	case ContextServiceDrop:
		start := timegrid.MinutesFromPointer(pointerY, rect.Top, c.cfg, timegrid.SnapFloor)

		// Near the bottom grid line the full service duration no longer
		// fits below the pointer; keep the duration and pull the start up.
		end := timegrid.ClampMinutes(start+c.serviceDuration, c.cfg)
		if end-start < c.serviceDuration {
			start = timegrid.ClampMinutes(end-c.serviceDuration, c.cfg)
		}

		pv.StartMinutes, pv.EndMinutes = start, end
	}

	c.state.Preview = &pv
}

// End dispatches at most one commit callback from the last computed preview,
// then resets. No valid preview or drop day means the gesture is silently
// discarded; the reset happens either way.
func (c *Controller) End() {
	st := c.state
	defer c.reset()

	if st.Context == ContextIdle || st.Preview == nil || st.OverDayIndex < 0 {
		return
	}

	pv := *st.Preview

	switch st.Context {
	case ContextCreateAvailability:
		if cb := c.callbacks.OnAvailabilityCreate; cb != nil {
			cb(pv.DayIndex, pv.StartMinutes, pv.EndMinutes)
		}
	case ContextMoveAvailability:
		if cb := c.callbacks.OnAvailabilityMove; cb != nil {
			cb(st.Source.EntityID, pv.DayIndex, pv.StartMinutes, pv.EndMinutes)
		}
	case ContextResizeAvailability:
		if cb := c.callbacks.OnAvailabilityResize; cb != nil {
			cb(st.Source.EntityID, pv.DayIndex, st.Source.Edge, edgeMinutes(st.Source.Edge, pv))
		}
	case ContextMoveAppointment:
		if cb := c.callbacks.OnAppointmentMove; cb != nil {
			cb(st.Source.EntityID, pv.DayIndex, pv.StartMinutes)
		}
	case ContextResizeAppointment:
		if cb := c.callbacks.OnAppointmentResize; cb != nil {
			cb(st.Source.EntityID, pv.DayIndex, st.Source.Edge, edgeMinutes(st.Source.Edge, pv))
		}
	case ContextServiceDrop:
		if cb := c.callbacks.OnServiceDrop; cb != nil {
			cb(st.Source.EntityID, pv.DayIndex, pv.StartMinutes)
		}
	}

	c.log.Debug("Drag committed", slog.String("context", st.Context.String()))
}

// Cancel aborts the session without dispatching. Reachable from every
// context.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = idleState()
	c.serviceDuration = 0
	c.anchored = false
}

// snapDelta converts a cumulative pixel delta into whole slots of minutes,
// truncating toward zero so a dragged block rounds toward its original
// position and never overshoots a slot.
func (c *Controller) snapDelta(deltaY float64) int {
	interval := float64(c.cfg.IntervalMinutes)
	rawMinutes := deltaY / c.cfg.SlotHeight * interval

	return int(math.Trunc(rawMinutes/interval)) * c.cfg.IntervalMinutes
}

func (c *Controller) resizeRange(deltaY float64) (int, int) {
	st := &c.state

	entity := timegrid.EntityAvailability
	if st.Context == ContextResizeAppointment {
		entity = timegrid.EntityAppointment
	}
	minDur := timegrid.MinDuration(entity)

	delta := c.snapDelta(deltaY)
	start, end := st.OriginalStartMinutes, st.OriginalEndMinutes

	if st.Source.Edge == EdgeTop {
		start = timegrid.ClampMinutes(st.OriginalStartMinutes+delta, c.cfg)
		if start > end-minDur {
			start = end - minDur
		}
	} else {
		end = timegrid.ClampMinutes(st.OriginalEndMinutes+delta, c.cfg)
		if end < start+minDur {
			end = start + minDur
		}
		if entity == timegrid.EntityAppointment && end-start > timegrid.MaxAppointmentDuration {
			end = start + timegrid.MaxAppointmentDuration
		}
	}

	return start, end
}

func edgeMinutes(edge Edge, pv Preview) int {
	if edge == EdgeTop {
		return pv.StartMinutes
	}

	return pv.EndMinutes
}
