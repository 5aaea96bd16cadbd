package chronicle

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"famchron/config"
	"famchron/docgen"
	"famchron/gramps"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return cfg
}

// builder assembles small databases, handles are "_" + id.
type builder struct {
	db *gramps.Database
	n  int
}

func newBuilder() *builder {
	return &builder{db: gramps.NewDatabase()}
}

func (b *builder) person(id, first, surname string) *gramps.Person {
	p := &gramps.Person{Handle: "_" + id, ID: id, Gender: gramps.GenderUnknown, Name: gramps.Name{First: first, Surname: surname}}
	b.db.AddPerson(p)
	return p
}

func (b *builder) event(typ gramps.EventType, d gramps.Date, place *gramps.Place) *gramps.Event {
	b.n++
	e := &gramps.Event{Handle: fmt.Sprintf("_e%d", b.n), ID: fmt.Sprintf("E%04d", b.n), Type: typ, Date: d}
	if place != nil {
		e.Place = place.Handle
	}
	b.db.AddEvent(e)
	return e
}

func (b *builder) personEvent(p *gramps.Person, typ gramps.EventType, d gramps.Date, place *gramps.Place) *gramps.Event {
	e := b.event(typ, d, place)
	p.EventRefs = append(p.EventRefs, gramps.EventRef{Handle: e.Handle, Role: gramps.RolePrimary})
	return e
}

func (b *builder) familyEvent(f *gramps.Family, typ gramps.EventType, d gramps.Date, place *gramps.Place) *gramps.Event {
	e := b.event(typ, d, place)
	f.EventRefs = append(f.EventRefs, gramps.EventRef{Handle: e.Handle, Role: gramps.RoleFamily})
	return e
}

func (b *builder) family(id string, father, mother *gramps.Person, children ...*gramps.Person) *gramps.Family {
	f := &gramps.Family{Handle: "_" + id, ID: id}
	if father != nil {
		f.Father = father.Handle
		father.ParentIn = append(father.ParentIn, f.Handle)
	}
	if mother != nil {
		f.Mother = mother.Handle
		mother.ParentIn = append(mother.ParentIn, f.Handle)
	}
	for _, c := range children {
		f.Children = append(f.Children, c.Handle)
		c.ChildOf = append(c.ChildOf, f.Handle)
	}
	b.db.AddFamily(f)
	return f
}

func (b *builder) place(id, name string) *gramps.Place {
	p := &gramps.Place{Handle: "_" + id, ID: id, Title: name, Names: []gramps.PlaceName{{Value: name}}}
	b.db.AddPlace(p)
	return p
}

func (b *builder) note(p *gramps.Person, typ gramps.NoteType, text string) {
	b.n++
	n := &gramps.Note{Handle: fmt.Sprintf("_n%d", b.n), ID: fmt.Sprintf("N%04d", b.n), Type: typ, Text: text}
	b.db.AddNote(n)
	p.NoteRefs = append(p.NoteRefs, n.Handle)
}

func year(y int) gramps.Date {
	return gramps.Date{Year: y}
}

// recorder is docgen.Document keeping structure of emitted tables. Cell
// content is flattened: symbols as <sym:name>, references as <ref:label>,
// bold as <b>...</b>.
type recorder struct {
	t      *testing.T
	tables []*recTable
	table  *recTable
	row    []recCell
	inRow  bool
	cell   *recCell
	breaks []int
	open   bool
	closed bool
}

type recCell struct {
	text  string
	span  int
	align docgen.Align
}

type recTable struct {
	name, style, label string
	rows               [][]recCell
}

var _ docgen.Document = (*recorder)(nil)

func newRecorder(t *testing.T) *recorder {
	return &recorder{t: t, open: true}
}

func (r *recorder) Open(docgen.Sink) error { r.open = true; return nil }

func (r *recorder) Close() error { r.closed = true; return nil }

func (r *recorder) StartTable(name, style string) {
	if r.table != nil {
		r.t.Fatal("nested table")
	}
	r.table = &recTable{name: name, style: style}
}

func (r *recorder) EndTable(label string) {
	if r.table == nil || r.inRow {
		r.t.Fatal("EndTable out of sequence")
	}
	r.table.label = label
	r.tables = append(r.tables, r.table)
	r.table = nil
}

func (r *recorder) StartRow() {
	if r.table == nil || r.inRow {
		r.t.Fatal("StartRow out of sequence")
	}
	r.inRow, r.row = true, nil
}

func (r *recorder) EndRow() {
	if !r.inRow || r.cell != nil {
		r.t.Fatal("EndRow out of sequence")
	}
	r.table.rows = append(r.table.rows, r.row)
	r.inRow = false
}

func (r *recorder) StartCell(_ string, span int, align docgen.Align) {
	if !r.inRow || r.cell != nil {
		r.t.Fatal("StartCell out of sequence")
	}
	r.cell = &recCell{span: span, align: align}
}

func (r *recorder) EndCell() {
	if r.cell == nil {
		r.t.Fatal("EndCell without StartCell")
	}
	r.row = append(r.row, *r.cell)
	r.cell = nil
}

func (r *recorder) put(s string) {
	if r.cell == nil {
		r.t.Fatalf("content %q outside of cell", s)
	}
	r.cell.text += s
}

func (r *recorder) WriteText(text string)         { r.put(text) }
func (r *recorder) WriteSymbol(sym docgen.Symbol) { r.put("<sym:" + sym.String() + ">") }
func (r *recorder) StartBold()                    { r.put("<b>") }
func (r *recorder) EndBold()                      { r.put("</b>") }
func (r *recorder) MakePageRef(label string)      { r.put("<ref:" + label + ">") }
func (r *recorder) PageBreak()                    { r.breaks = append(r.breaks, len(r.tables)) }

// texts returns cell texts of a row.
func texts(row []recCell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.text
	}
	return out
}

func width(row []recCell) int {
	w := 0
	for _, c := range row {
		w += c.span
	}
	return w
}

func checkWidths(t *testing.T, r *recorder) {
	t.Helper()
	for ti, tbl := range r.tables {
		for ri, row := range tbl.rows {
			if w := width(row); w != ColumnCount {
				t.Errorf("table %d (%s) row %d spans %d columns: %q", ti, tbl.label, ri, w, strings.Join(texts(row), "|"))
			}
		}
	}
}

func rowString(row []recCell) string {
	parts := make([]string, len(row))
	for i, c := range row {
		if c.span > 1 {
			parts[i] = fmt.Sprintf("[%d]%s", c.span, c.text)
		} else {
			parts[i] = c.text
		}
	}
	return strings.Join(parts, "|")
}
