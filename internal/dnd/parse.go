package dnd

import (
	"strconv"
	"strings"
)

// SourceKind is the parsed class of a draggable surface.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceAvailability
	SourceAppointment
	SourceService
	SourceCreateSlot
)

type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// DragSource is the tagged form of a draggable identifier. String parsing
// lives here, at the boundary; the state machine only ever sees this value.
type DragSource struct {
	Kind     SourceKind
	EntityID string
	DayIndex int
	Edge     Edge
}

// ParseDraggable decomposes a draggable id assigned by the visual layer:
//
//	avail-{blockId}[:resize-top|:resize-bottom]
//	apt-{appointmentId}[:resize-top|:resize-bottom]
//	service-{serviceId}
//	create-slot-{dayIndex}
//
// Anything else yields SourceUnknown, which the machine treats as a no-op.
func ParseDraggable(id string) DragSource {
	switch {
	case strings.HasPrefix(id, "create-slot-"):
		idx, err := strconv.Atoi(strings.TrimPrefix(id, "create-slot-"))
		if err != nil || idx < 0 {
			return DragSource{}
		}
		return DragSource{Kind: SourceCreateSlot, DayIndex: idx}

	case strings.HasPrefix(id, "avail-"):
		return parseEntity(SourceAvailability, strings.TrimPrefix(id, "avail-"))

	case strings.HasPrefix(id, "apt-"):
		return parseEntity(SourceAppointment, strings.TrimPrefix(id, "apt-"))

	case strings.HasPrefix(id, "service-"):
		entityID := strings.TrimPrefix(id, "service-")
		if entityID == "" {
			return DragSource{}
		}
		return DragSource{Kind: SourceService, EntityID: entityID}
	}

	return DragSource{}
}

func parseEntity(kind SourceKind, rest string) DragSource {
	if entityID, found := strings.CutSuffix(rest, ":resize-top"); found {
		if entityID == "" {
			return DragSource{}
		}
		return DragSource{Kind: kind, EntityID: entityID, Edge: EdgeTop}
	}

	if entityID, found := strings.CutSuffix(rest, ":resize-bottom"); found {
		if entityID == "" {
			return DragSource{}
		}
		return DragSource{Kind: kind, EntityID: entityID, Edge: EdgeBottom}
	}

	if rest == "" {
		return DragSource{}
	}

	return DragSource{Kind: kind, EntityID: rest}
}

// ParseDroppable resolves a droppable target id of the form day-{index}.
func ParseDroppable(id string) (int, bool) {
	rest, found := strings.CutPrefix(id, "day-")
	if !found {
		return 0, false
	}

	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}

	return idx, true
}
