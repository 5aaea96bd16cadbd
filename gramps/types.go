// Package gramps holds in-memory genealogy database loaded from Gramps XML
// export or SQLite snapshot and read-only query API over it.
package gramps

// Gender of a person as recorded by Gramps.
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "U"
)

// EventRole is the role person or family plays in referenced event.
type EventRole string

const (
	RolePrimary EventRole = "Primary"
	RoleFamily  EventRole = "Family"
)

// IsOwn reports whether referenced event belongs to the referencing object
// itself rather than naming it as a witness, godparent and such.
func (r EventRole) IsOwn() bool {
	return r == "" || r == RolePrimary || r == RoleFamily
}

// NoteType classifies notes, only person notes are used in reports.
type NoteType string

const (
	NoteTypePerson  NoteType = "Person Note"
	NoteTypeGeneral NoteType = "General"
)

// Name is primary name of a person.
type Name struct {
	First   string
	Surname string
}

// EventRef points to an event from person or family.
type EventRef struct {
	Handle string
	Role   EventRole
}

// Person mirrors Gramps person object. Handles are internal stable keys, ID
// is public identifier (I0001).
type Person struct {
	Handle    string
	ID        string
	Gender    Gender
	Name      Name
	EventRefs []EventRef
	// families this person is parent in, stored order
	ParentIn []string
	// families this person is child of, first one is main
	ChildOf  []string
	NoteRefs []string
}

// MainParents returns handle of the main parents family or empty string.
func (p *Person) MainParents() string {
	if len(p.ChildOf) == 0 {
		return ""
	}
	return p.ChildOf[0]
}

// Family mirrors Gramps family object.
type Family struct {
	Handle    string
	ID        string
	Father    string
	Mother    string
	Children  []string
	EventRefs []EventRef
}

// Event mirrors Gramps event object.
type Event struct {
	Handle      string
	ID          string
	Type        EventType
	Date        Date
	Place       string
	Description string
}

// PlaceName is one of possibly several names place had over time.
type PlaceName struct {
	Value string
	Date  Date
}

// Place mirrors Gramps place object with single enclosing place.
type Place struct {
	Handle   string
	ID       string
	Title    string
	Names    []PlaceName
	Enclosed string
}

// Note mirrors Gramps note object.
type Note struct {
	Handle string
	ID     string
	Type   NoteType
	Text   string
}
