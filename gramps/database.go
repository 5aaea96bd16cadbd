package gramps

import (
	"strings"
	"time"
)

// Database is read-only (after loading) genealogy database. All lookups
// return nil for unknown handles - missing references are normal in real
// data and callers treat them as absent.
type Database struct {
	people   map[string]*Person
	families map[string]*Family
	events   map[string]*Event
	places   map[string]*Place
	notes    map[string]*Note

	// public identifiers to handles
	personIDs map[string]string

	// stored order, for stable iteration
	peopleOrder   []string
	familiesOrder []string
	eventsOrder   []string
	placesOrder   []string
	notesOrder    []string

	placeLevels int
}

func NewDatabase() *Database {
	return &Database{
		people:      make(map[string]*Person),
		families:    make(map[string]*Family),
		events:      make(map[string]*Event),
		places:      make(map[string]*Place),
		notes:       make(map[string]*Note),
		personIDs:   make(map[string]string),
		placeLevels: 1,
	}
}

// SetPlaceLevels sets how many levels of place hierarchy PlaceDisplay joins.
func (db *Database) SetPlaceLevels(levels int) {
	db.placeLevels = max(levels, 1)
}

func (db *Database) PlaceLevels() int {
	return db.placeLevels
}

// AddPerson returns false if person with the same handle already exists.
func (db *Database) AddPerson(p *Person) bool {
	if _, exists := db.people[p.Handle]; exists {
		return false
	}
	db.people[p.Handle] = p
	db.peopleOrder = append(db.peopleOrder, p.Handle)
	if p.ID != "" {
		if _, exists := db.personIDs[p.ID]; !exists {
			db.personIDs[p.ID] = p.Handle
		}
	}
	return true
}

func (db *Database) AddFamily(f *Family) bool {
	if _, exists := db.families[f.Handle]; exists {
		return false
	}
	db.families[f.Handle] = f
	db.familiesOrder = append(db.familiesOrder, f.Handle)
	return true
}

func (db *Database) AddEvent(e *Event) bool {
	if _, exists := db.events[e.Handle]; exists {
		return false
	}
	db.events[e.Handle] = e
	db.eventsOrder = append(db.eventsOrder, e.Handle)
	return true
}

func (db *Database) AddPlace(p *Place) bool {
	if _, exists := db.places[p.Handle]; exists {
		return false
	}
	db.places[p.Handle] = p
	db.placesOrder = append(db.placesOrder, p.Handle)
	return true
}

func (db *Database) AddNote(n *Note) bool {
	if _, exists := db.notes[n.Handle]; exists {
		return false
	}
	db.notes[n.Handle] = n
	db.notesOrder = append(db.notesOrder, n.Handle)
	return true
}

func (db *Database) PersonFromHandle(handle string) *Person {
	return db.people[handle]
}

// PersonFromID looks person up by public identifier.
func (db *Database) PersonFromID(id string) *Person {
	if h, ok := db.personIDs[id]; ok {
		return db.people[h]
	}
	return nil
}

func (db *Database) FamilyFromHandle(handle string) *Family {
	return db.families[handle]
}

func (db *Database) EventFromHandle(handle string) *Event {
	return db.events[handle]
}

func (db *Database) PlaceFromHandle(handle string) *Place {
	return db.places[handle]
}

func (db *Database) NoteFromHandle(handle string) *Note {
	return db.notes[handle]
}

func collect[T any](order []string, m map[string]*T) []*T {
	out := make([]*T, 0, len(order))
	for _, h := range order {
		out = append(out, m[h])
	}
	return out
}

// People returns all persons in stored order.
func (db *Database) People() []*Person { return collect(db.peopleOrder, db.people) }

func (db *Database) Families() []*Family { return collect(db.familiesOrder, db.families) }

func (db *Database) Events() []*Event { return collect(db.eventsOrder, db.events) }

func (db *Database) Places() []*Place { return collect(db.placesOrder, db.places) }

func (db *Database) Notes() []*Note { return collect(db.notesOrder, db.notes) }

// PlaceDisplay returns place text as of given date: name valid at that date
// followed by names of enclosing places up to configured number of levels.
func (db *Database) PlaceDisplay(place *Place, date Date) string {
	if place == nil {
		return ""
	}
	when, dated := date.Time()

	parts := make([]string, 0, db.placeLevels)
	seen := make(map[string]bool)
	for p := place; p != nil && len(parts) < db.placeLevels && !seen[p.Handle]; p = db.places[p.Enclosed] {
		seen[p.Handle] = true
		if name := p.nameAt(when, dated); name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return place.Title
	}
	return strings.Join(parts, ", ")
}

func (p *Place) nameAt(when time.Time, dated bool) string {
	if len(p.Names) == 0 {
		return ""
	}
	if dated {
		for _, n := range p.Names {
			if !n.Date.IsEmpty() && n.Date.Covers(when) {
				return n.Value
			}
		}
	}
	return p.Names[0].Value
}
