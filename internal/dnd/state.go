package dnd

// Context is the classified intent of the drag in progress. Exactly one is
// active at a time.
type Context int

const (
	ContextIdle Context = iota
	ContextCreateAvailability
	ContextMoveAvailability
	ContextResizeAvailability
	ContextMoveAppointment
	ContextResizeAppointment
	ContextServiceDrop
)

func (c Context) String() string {
	switch c {
	case ContextCreateAvailability:
		return "create-availability"
	case ContextMoveAvailability:
		return "move-availability"
	case ContextResizeAvailability:
		return "resize-availability"
	case ContextMoveAppointment:
		return "move-appointment"
	case ContextResizeAppointment:
		return "resize-appointment"
	case ContextServiceDrop:
		return "service-drop"
	default:
		return "idle"
	}
}

// Preview is the tentative placement implied by the current pointer
// position. StartMinutes < EndMinutes always holds and both values are
// already snapped and clamped.
type Preview struct {
	DayIndex     int `json:"dayIndex"`
	StartMinutes int `json:"startMinutes"`
	EndMinutes   int `json:"endMinutes"`
}

// State is the single drag-session record. It is created at drag start,
// mutated only by drag moves, and reset to the idle sentinel at drag end or
// cancel — unconditionally.
type State struct {
	Context Context
	Source  DragSource

	// OverDayIndex is the day column currently under the pointer, -1 if none.
	OverDayIndex int

	// AnchorMinutes is the fixed reference point of a create drag.
	AnchorMinutes int

	// OriginalStartMinutes/OriginalEndMinutes snapshot the dragged entity's
	// range at drag start. They are the only source of truth for the rest of
	// the session; host-side data changes cannot perturb an in-flight drag.
	OriginalStartMinutes int
	OriginalEndMinutes   int

	// PointerStartY is the absolute pointer Y at drag start.
	PointerStartY float64

	Preview *Preview
}

func idleState() State {
	return State{Context: ContextIdle, OverDayIndex: -1}
}
