package chronicle

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"famchron/config"
	"famchron/docgen"
	"famchron/gramps"
)

const (
	tableName  = "family"
	tableStyle = "family_table"
	cellStyle  = "family_cell"
)

// Writer emits table of a single chronology entry: every family of the
// person with both parents and all children.
//
// Row layout, 15 columns:
//
//	name | sym date place | gap | sym date place | gap | sym date spouse/place origin | gap | ref
type Writer struct {
	doc    docgen.Document
	db     *gramps.Database
	res    *Resolver
	chrono *Chronology
	labels config.LabelsConfig
	log    *zap.Logger
}

func NewWriter(doc docgen.Document, db *gramps.Database, res *Resolver, chrono *Chronology, labels config.LabelsConfig, log *zap.Logger) *Writer {
	return &Writer{
		doc:    doc,
		db:     db,
		res:    res,
		chrono: chrono,
		labels: labels,
		log:    log.Named("writer"),
	}
}

func (w *Writer) cell(span int, fill func()) {
	w.doc.StartCell(cellStyle, span, docgen.AlignLeft)
	if fill != nil {
		fill()
	}
	w.doc.EndCell()
}

func (w *Writer) text(text string) {
	w.cell(1, func() {
		if text != "" {
			w.doc.WriteText(text)
		}
	})
}

func (w *Writer) empty(span int) {
	w.cell(span, nil)
}

func (w *Writer) symbol(e SimpleEvent) {
	w.cell(1, func() {
		if e.Present() {
			w.doc.WriteSymbol(e.Symbol)
		}
	})
}

func (w *Writer) pageRef(p *gramps.Person) {
	w.cell(1, func() {
		if w.chrono.Contains(p) {
			w.doc.MakePageRef(p.ID)
		}
	})
}

func (w *Writer) fullName(p *gramps.Person) string {
	if p == nil {
		return w.labels.Unknown
	}
	return strings.TrimSpace(p.Name.First + " " + p.Name.Surname)
}

func (w *Writer) givenName(p *gramps.Person) string {
	if p == nil {
		return w.labels.Unknown
	}
	return p.Name.First
}

func (w *Writer) origin(p *gramps.Person) string {
	place := w.res.Extract(w.res.PersonResidence(p)).Place
	if place == "" {
		return ""
	}
	return w.labels.From + " " + place
}

// WriteEntry writes one table labeled with person's public id.
func (w *Writer) WriteEntry(p *gramps.Person) {
	w.log.Debug("Writing family table", zap.String("person", p.ID))

	var families []*gramps.Family
	for _, h := range p.ParentIn {
		if f := w.db.FamilyFromHandle(h); f != nil {
			families = append(families, f)
		} else {
			w.log.Debug("Dangling family reference", zap.String("person", p.ID), zap.String("handle", h))
		}
	}

	w.doc.StartTable(tableName, tableStyle)
	for i, f := range families {
		w.family(i, f)
	}
	w.doc.EndTable(p.ID)
}

func (w *Writer) family(i int, f *gramps.Family) {
	father := w.db.PersonFromHandle(f.Father)
	mother := w.db.PersonFromHandle(f.Mother)

	if i == 0 {
		w.parent(father, true, nil)
		w.ancestry(father)
	} else {
		w.doc.StartRow()
		w.cell(ColumnCount, func() {
			w.doc.WriteText(strconv.Itoa(i+1) + ". " + w.labels.Marriage)
		})
		w.doc.EndRow()
	}

	marriage := w.res.FamilyMarriage(f)
	w.parent(mother, marriage == nil, func() {
		w.marriage(w.res.Extract(marriage), true)
		w.text(w.origin(mother))
		w.empty(2)
	})

	for _, h := range f.Children {
		w.child(w.db.PersonFromHandle(h))
	}
}

// ColumnCount is number of logical table columns.
const ColumnCount = 15

// vitals writes 8 cells: name, birth triple, gap, death triple.
func (w *Writer) vitals(p *gramps.Person, name string, bold bool) {
	birth, death := w.res.PersonSummary(p)

	w.cell(1, func() {
		if bold {
			w.doc.StartBold()
		}
		w.doc.WriteText(name)
		if bold {
			w.doc.EndBold()
		}
	})
	w.symbol(birth)
	w.text(birth.Date)
	w.text(birth.Place)
	w.empty(1)
	w.symbol(death)
	w.text(death.Date)
	w.text(death.Place)
}

// marriage writes symbol and date cells and place cell when withPlace is
// set. Known spouse implies marriage so symbol defaults to married.
func (w *Writer) marriage(e SimpleEvent, withPlace bool) {
	w.cell(1, func() {
		if e.Present() {
			w.doc.WriteSymbol(e.Symbol)
		} else {
			w.doc.WriteSymbol(docgen.SymbolMarried)
		}
	})
	w.text(e.Date)
	if withPlace {
		w.text(e.Place)
	}
}

// parent writes parent rows. First row has vitals followed by either
// marriage area (6 cells, when provided) or first remark, every further
// remark gets own row under the remark column.
func (w *Writer) parent(p *gramps.Person, bold bool, marriage func()) {
	remarks := w.res.Remarks(p)

	w.doc.StartRow()
	w.vitals(p, w.fullName(p), bold)
	w.empty(1)
	switch {
	case marriage != nil:
		marriage()
	case len(remarks) > 0:
		w.remark(remarks[0])
		remarks = remarks[1:]
	default:
		w.empty(3)
		w.empty(1)
		w.empty(2)
	}
	w.doc.EndRow()

	for _, r := range remarks {
		w.doc.StartRow()
		w.empty(9)
		w.remark(r)
		w.doc.EndRow()
	}
}

// remark writes note or vocation as paragraphs wrapped to the remark
// columns.
func (w *Writer) remark(text string) {
	w.doc.StartCell(cellStyle, 6, docgen.AlignBlock)
	w.doc.WriteText(text)
	w.doc.EndCell()
}

// ancestry writes row naming parents of the person with reference to their
// table when father has one.
func (w *Writer) ancestry(p *gramps.Person) {
	var father, mother *gramps.Person
	if p != nil {
		if f := w.db.FamilyFromHandle(p.MainParents()); f != nil {
			father = w.db.PersonFromHandle(f.Father)
			mother = w.db.PersonFromHandle(f.Mother)
		}
	}

	w.doc.StartRow()
	w.cell(4, func() {
		w.doc.WriteText(w.fullName(father) + " " + w.labels.And + " " + w.fullName(mother))
	})
	w.empty(10)
	w.pageRef(father)
	w.doc.EndRow()
}

// child writes base row with given name and vitals, then one row per family
// the child is parent in. Reference to child's own table is given only for
// families where the child is the father since only those have tables.
func (w *Writer) child(p *gramps.Person) {
	w.doc.StartRow()
	w.vitals(p, w.givenName(p), false)

	var families []*gramps.Family
	if p != nil {
		for _, h := range p.ParentIn {
			if f := w.db.FamilyFromHandle(h); f != nil {
				families = append(families, f)
			}
		}
	}
	if len(families) == 0 {
		w.empty(7)
		w.doc.EndRow()
		return
	}

	for i, f := range families {
		if i > 0 {
			w.doc.StartRow()
			w.empty(8)
		}
		followup := f.Father == p.Handle
		spouseHandle := f.Father
		if followup {
			spouseHandle = f.Mother
		}
		spouse := w.db.PersonFromHandle(spouseHandle)

		w.empty(1)
		w.marriage(w.res.Extract(w.res.FamilyMarriage(f)), false)
		w.text(w.spouseName(spouse))
		w.text(w.origin(spouse))
		w.empty(1)
		w.cell(1, func() {
			if followup && w.chrono.Contains(p) {
				w.doc.MakePageRef(p.ID)
			}
		})
		w.doc.EndRow()
	}
}

func (w *Writer) spouseName(p *gramps.Person) string {
	if p == nil {
		return ""
	}
	return w.fullName(p)
}
