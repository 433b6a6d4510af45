package model

import "fmt"

// RelayType names a relay event.
type RelayType string

// Relay types.
const (
	Relay200Free RelayType = "relay_200_free"
	Relay400Free RelayType = "relay_400_free"
	Relay800Free RelayType = "relay_800_free"
	RelayMedley  RelayType = "relay_medley"
)

// relayLegDistance maps freestyle relays to their leg distance.
var relayLegDistance = map[RelayType]int{
	Relay200Free: 50,
	Relay400Free: 100,
	Relay800Free: 200,
}

// RelayTypes lists all relay types in display order.
func RelayTypes() []RelayType {
	return []RelayType{Relay200Free, Relay400Free, Relay800Free, RelayMedley}
}

// ParseRelayType returns the relay type named s.
func ParseRelayType(s string) (RelayType, bool) {
	rt := RelayType(s)
	if rt == RelayMedley {
		return rt, true
	}
	_, ok := relayLegDistance[rt]
	return rt, ok
}

// IsMedley reports whether the relay needs four distinct strokes.
func (rt RelayType) IsMedley() bool { return rt == RelayMedley }

// Title returns the display name, e.g. "200 Free Relay".
func (rt RelayType) Title() string {
	if rt.IsMedley() {
		return "Medley Relay"
	}
	return fmt.Sprintf("%d Free Relay", relayLegDistance[rt]*4)
}

// LegEvents returns the individual events whose times feed this relay.
// Freestyle relays draw from a single event; the medley draws from the
// four 100-distance stroke events in slot order.
func (rt RelayType) LegEvents() []Event {
	if rt.IsMedley() {
		out := make([]Event, 0, len(MedleyOrder))
		for _, s := range MedleyOrder {
			out = append(out, MedleyEvent(s))
		}
		return out
	}
	return []Event{EventFor(relayLegDistance[rt], Free)}
}
