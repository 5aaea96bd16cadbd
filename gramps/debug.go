package gramps

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"famchron/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
	db *Database
}

// String returns readable dump of the database with people and families
// ordered by public identifiers. It exists solely for debug reports.
func (db *Database) String() string {
	if db == nil {
		return "<nil Database>"
	}
	tw := treeWriter{TreeWriter: debug.NewTreeWriter(), db: db}
	tw.Line(0, "Database people=%d families=%d events=%d places=%d notes=%d",
		len(db.people), len(db.families), len(db.events), len(db.places), len(db.notes))

	tw.Line(1, "People")
	for _, key := range sortedKeys(db.people, func(p *Person) string { return p.ID }) {
		tw.person(2, db.people[key])
	}
	tw.Line(1, "Families")
	for _, key := range sortedKeys(db.families, func(f *Family) string { return f.ID }) {
		tw.family(2, db.families[key])
	}
	return tw.String()
}

// sortedKeys returns handles ordered by natural order of ids, handles are
// used for objects without ids.
func sortedKeys[T any](m map[string]*T, id func(*T) string) []string {
	label := func(handle string) string {
		if key := id(m[handle]); key != "" {
			return key
		}
		return handle
	}
	keys := make([]string, 0, len(m))
	for handle := range m {
		keys = append(keys, handle)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := label(keys[i]), label(keys[j])
		if a == b {
			return keys[i] < keys[j]
		}
		return natural.Less(a, b)
	})
	return keys
}

func (tw treeWriter) person(depth int, p *Person) {
	tw.Line(depth, "Person %s gender=%s", tw.personLabel(p.Handle), p.Gender)
	tw.Field(depth+1, "first", p.Name.First, false)
	tw.Field(depth+1, "surname", p.Name.Surname, false)
	for _, ref := range p.EventRefs {
		tw.event(depth+1, ref)
	}
	if len(p.ChildOf) > 0 {
		tw.List(depth+1, "child of", tw.familyLabels(p.ChildOf))
	}
	if len(p.ParentIn) > 0 {
		tw.List(depth+1, "parent in", tw.familyLabels(p.ParentIn))
	}
	for _, h := range p.NoteRefs {
		if n := tw.db.NoteFromHandle(h); n != nil {
			tw.Field(depth+1, "note "+string(n.Type), n.Text, true)
		} else {
			tw.Line(depth+1, "note <missing %s>", h)
		}
	}
}

func (tw treeWriter) family(depth int, f *Family) {
	tw.Line(depth, "Family %s father=%s mother=%s", tw.familyLabel(f.Handle), tw.personLabel(f.Father), tw.personLabel(f.Mother))
	for _, ref := range f.EventRefs {
		tw.event(depth+1, ref)
	}
	children := make([]string, 0, len(f.Children))
	for _, h := range f.Children {
		children = append(children, tw.personLabel(h))
	}
	tw.List(depth+1, "children", children)
}

func (tw treeWriter) event(depth int, ref EventRef) {
	e := tw.db.EventFromHandle(ref.Handle)
	if e == nil {
		tw.Line(depth, "Event <missing %s> role=%q", ref.Handle, ref.Role)
		return
	}
	tw.Line(depth, "Event %s type=%q role=%q date=%s", e.ID, e.Type, ref.Role, dumpDate(e.Date))
	if pl := tw.db.PlaceFromHandle(e.Place); pl != nil {
		tw.Field(depth+1, "place", tw.db.PlaceDisplay(pl, e.Date), true)
	}
	tw.Field(depth+1, "description", e.Description, false)
}

func (tw treeWriter) personLabel(handle string) string {
	if handle == "" {
		return "-"
	}
	if p := tw.db.PersonFromHandle(handle); p != nil && p.ID != "" {
		return p.ID
	}
	return "<" + handle + ">"
}

func (tw treeWriter) familyLabel(handle string) string {
	if f := tw.db.FamilyFromHandle(handle); f != nil && f.ID != "" {
		return f.ID
	}
	return "<" + handle + ">"
}

func (tw treeWriter) familyLabels(handles []string) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		out = append(out, tw.familyLabel(h))
	}
	return out
}

func dumpDate(d Date) string {
	switch {
	case d.IsEmpty():
		return "-"
	case d.Modifier == ModTextOnly:
		return fmt.Sprintf("%q", d.Text)
	case d.Modifier == ModRange || d.Modifier == ModSpan:
		return fmt.Sprintf("%s(%s..%s)", d.Modifier, FormatDateValue(d.Day, d.Month, d.Year), FormatDateValue(d.StopDay, d.StopMonth, d.StopYear))
	case d.Modifier != ModNone:
		return fmt.Sprintf("%s(%s)", d.Modifier, FormatDateValue(d.Day, d.Month, d.Year))
	default:
		return FormatDateValue(d.Day, d.Month, d.Year)
	}
}
