// Package chronicle builds family chronicles: it orders descendant families
// of a person chronologically and writes one table per family head into
// docgen.Document.
package chronicle

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"famchron/docgen"
	"famchron/gramps"
)

// SimpleEvent is an event reduced to what table cells show. Zero value
// means "no event".
type SimpleEvent struct {
	Type   gramps.EventType
	Date   string
	Place  string
	Symbol docgen.Symbol
}

func (e SimpleEvent) Present() bool {
	return e.Type != ""
}

// symbolFor picks marker for event type, primary types win over fallbacks
// by construction of the predicates.
func symbolFor(t gramps.EventType) docgen.Symbol {
	switch {
	case t.IsBirth():
		return docgen.SymbolBorn
	case t.IsBirthFallback():
		return docgen.SymbolBaptized
	case t.IsDeath():
		return docgen.SymbolDied
	case t.IsDeathFallback():
		return docgen.SymbolBuried
	case t.IsMarriage():
		return docgen.SymbolMarried
	case t.IsMarriageFallback():
		return docgen.SymbolEngaged
	default:
		return docgen.SymbolUnknown
	}
}

// Resolver answers event questions about people and families.
type Resolver struct {
	db  *gramps.Database
	log *zap.Logger
}

func NewResolver(db *gramps.Database, log *zap.Logger) *Resolver {
	return &Resolver{db: db, log: log.Named("resolver")}
}

// ownEvents returns events referenced with own role in stored order,
// dangling references are skipped.
func (r *Resolver) ownEvents(refs []gramps.EventRef) []*gramps.Event {
	events := make([]*gramps.Event, 0, len(refs))
	for _, ref := range refs {
		if !ref.Role.IsOwn() {
			continue
		}
		e := r.db.EventFromHandle(ref.Handle)
		if e == nil {
			r.log.Debug("Dangling event reference", zap.String("handle", ref.Handle))
			continue
		}
		events = append(events, e)
	}
	return events
}

func (r *Resolver) firstOwn(refs []gramps.EventRef, match func(gramps.EventType) bool) *gramps.Event {
	for _, e := range r.ownEvents(refs) {
		if match(e.Type) {
			return e
		}
	}
	return nil
}

// FamilyMarriage returns first marriage or marriage substitute of the family
// or nil.
func (r *Resolver) FamilyMarriage(f *gramps.Family) *gramps.Event {
	if f == nil {
		return nil
	}
	return r.firstOwn(f.EventRefs, func(t gramps.EventType) bool {
		return t.IsMarriage() || t.IsMarriageFallback()
	})
}

// PersonResidence returns first census or residence event of the person, its
// place is person's origin.
func (r *Resolver) PersonResidence(p *gramps.Person) *gramps.Event {
	if p == nil {
		return nil
	}
	return r.firstOwn(p.EventRefs, gramps.EventType.IsResidence)
}

// Extract reduces event, nil gives empty SimpleEvent.
func (r *Resolver) Extract(e *gramps.Event) SimpleEvent {
	if e == nil {
		return SimpleEvent{}
	}
	se := SimpleEvent{
		Type:   e.Type,
		Date:   FormatDate(e.Date),
		Symbol: symbolFor(e.Type),
	}
	if e.Place != "" {
		se.Place = r.db.PlaceDisplay(r.db.PlaceFromHandle(e.Place), e.Date)
	}
	return se
}

// PersonSummary returns birth and death of the person. Baptism (burial) is
// used when there is no birth (death) event and to fill date or place
// missing from the primary event.
func (r *Resolver) PersonSummary(p *gramps.Person) (birth, death SimpleEvent) {
	if p == nil {
		return
	}
	var bp, bf, dp, df *gramps.Event
	for _, e := range r.ownEvents(p.EventRefs) {
		switch {
		case e.Type.IsBirth() && bp == nil:
			bp = e
		case e.Type.IsBirthFallback() && bf == nil:
			bf = e
		case e.Type.IsDeath() && dp == nil:
			dp = e
		case e.Type.IsDeathFallback() && df == nil:
			df = e
		}
	}
	return r.merge(bp, bf), r.merge(dp, df)
}

func (r *Resolver) merge(primary, fallback *gramps.Event) SimpleEvent {
	if primary == nil {
		return r.Extract(fallback)
	}
	se := r.Extract(primary)
	if fallback == nil {
		return se
	}
	fb := r.Extract(fallback)
	if se.Date == "" {
		se.Date = fb.Date
	}
	if se.Place == "" {
		se.Place = fb.Place
	}
	return se
}

// Vocation joins distinct descriptions of occupation and office events.
func (r *Resolver) Vocation(p *gramps.Person) string {
	if p == nil {
		return ""
	}
	var parts []string
	for _, e := range r.ownEvents(p.EventRefs) {
		if !e.Type.IsVocation() || e.Description == "" || slices.Contains(parts, e.Description) {
			continue
		}
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, ", ")
}

// PersonNotes returns texts of biographical notes attached to the person.
func (r *Resolver) PersonNotes(p *gramps.Person) []string {
	if p == nil {
		return nil
	}
	var notes []string
	for _, h := range p.NoteRefs {
		n := r.db.NoteFromHandle(h)
		if n == nil || n.Type != gramps.NoteTypePerson || n.Text == "" {
			continue
		}
		notes = append(notes, n.Text)
	}
	return notes
}

// Remarks are lines shown next to the person: biographical notes or, when
// there are none, vocation.
func (r *Resolver) Remarks(p *gramps.Person) []string {
	if notes := r.PersonNotes(p); len(notes) > 0 {
		return notes
	}
	if v := r.Vocation(p); v != "" {
		return []string{v}
	}
	return nil
}
