package gramps

// EventType is Gramps event type name as stored in XML export. Custom types
// are kept verbatim.
type EventType string

const (
	EventBirth       EventType = "Birth"
	EventBaptism     EventType = "Baptism"
	EventChristening EventType = "Christening"
	EventDeath       EventType = "Death"
	EventBurial      EventType = "Burial"
	EventCremation   EventType = "Cremation"
	EventMarriage    EventType = "Marriage"
	EventMarriageAlt EventType = "Alternate Marriage"
	EventEngagement  EventType = "Engagement"
	EventCensus      EventType = "Census"
	EventResidence   EventType = "Residence"
	EventOccupation  EventType = "Occupation"
	EventElected     EventType = "Elected"
)

func (t EventType) String() string {
	return string(t)
}

func (t EventType) IsBirth() bool {
	return t == EventBirth
}

func (t EventType) IsBirthFallback() bool {
	return t == EventBaptism || t == EventChristening
}

func (t EventType) IsDeath() bool {
	return t == EventDeath
}

func (t EventType) IsDeathFallback() bool {
	return t == EventBurial || t == EventCremation
}

func (t EventType) IsMarriage() bool {
	return t == EventMarriage
}

func (t EventType) IsMarriageFallback() bool {
	return t == EventEngagement || t == EventMarriageAlt
}

// IsResidence is true for events telling where person lived - source of
// the place of origin.
func (t EventType) IsResidence() bool {
	return t == EventCensus || t == EventResidence
}

// IsVocation is true for events describing person's occupation or office.
func (t EventType) IsVocation() bool {
	return t == EventOccupation || t == EventElected
}
