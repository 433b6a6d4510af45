package model

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownEvent is returned when an event or relay name is not recognised.
var ErrUnknownEvent = errors.New("unknown event")

// Event is an individual event name such as "100 Back".
type Event string

// Stroke is one of the four competitive strokes.
type Stroke string

// Strokes.
const (
	Back   Stroke = "Back"
	Breast Stroke = "Breast"
	Fly    Stroke = "Fly"
	Free   Stroke = "Free"
)

// MedleyOrder is the fixed slot order of a medley relay.
var MedleyOrder = [4]Stroke{Back, Breast, Fly, Free}

// medleyDistance is the leg distance of every medley relay slot.
const medleyDistance = 100

// individualEvents are the yard events accepted by the service.
var individualEvents = map[Event]struct{}{
	"50 Free": {}, "100 Free": {}, "200 Free": {}, "500 Free": {}, "1000 Free": {}, "1650 Free": {},
	"100 Back": {}, "200 Back": {},
	"100 Breast": {}, "200 Breast": {},
	"100 Fly": {}, "200 Fly": {},
	"200 IM": {}, "400 IM": {},
}

// IndividualEvents returns the accepted individual events sorted by name.
func IndividualEvents() []Event {
	out := make([]Event, 0, len(individualEvents))
	for ev := range individualEvents {
		out = append(out, ev)
	}
	slices.Sort(out)
	return out
}

// IsIndividual reports whether ev is an accepted individual event.
func IsIndividual(ev Event) bool {
	_, ok := individualEvents[ev]
	return ok
}

// EventFor builds the event name for a distance and stroke.
func EventFor(distance int, stroke Stroke) Event {
	return Event(strconv.Itoa(distance) + " " + string(stroke))
}

// MedleyEvent returns the event swum in the given medley slot.
func MedleyEvent(stroke Stroke) Event {
	return EventFor(medleyDistance, stroke)
}

// NormalizeEvent canonicalises loosely written event names: surrounding
// and repeated whitespace is collapsed, a yard course marker ("100 Y Free")
// is dropped and common stroke spellings are mapped to the canonical ones.
func NormalizeEvent(raw string) (Event, error) {
	parts := strings.Fields(raw)
	if len(parts) == 3 && strings.EqualFold(parts[1], "Y") {
		parts = []string{parts[0], parts[2]}
	}
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, raw)
	}
	stroke := canonicalStroke(parts[1])
	ev := Event(parts[0] + " " + stroke)
	if !IsIndividual(ev) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, raw)
	}
	return ev, nil
}

func canonicalStroke(s string) string {
	switch strings.ToLower(s) {
	case "free", "freestyle":
		return string(Free)
	case "back", "backstroke":
		return string(Back)
	case "breast", "breaststroke":
		return string(Breast)
	case "fly", "butterfly":
		return string(Fly)
	case "im":
		return "IM"
	}
	return s
}
