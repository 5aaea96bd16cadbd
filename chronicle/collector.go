package chronicle

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"famchron/gramps"
)

// Undated entries sort after everything else.
var sentinelDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Entry is a person who gets own table in the chronicle.
type Entry struct {
	Person *gramps.Person
	// earliest date in person's subtree, sentinelDate when unknown
	Date  time.Time
	Dated bool
}

// Chronology is ordered list of entries.
type Chronology struct {
	Entries []Entry
	index   map[string]bool
}

// Contains reports whether person has own table.
func (c *Chronology) Contains(p *gramps.Person) bool {
	return c != nil && p != nil && c.index[p.Handle]
}

func (c *Chronology) IDs() []string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.Person.ID
	}
	return ids
}

// String is used for debug reports.
func (c *Chronology) String() string {
	var b strings.Builder
	for i, e := range c.Entries {
		date := "-"
		if e.Dated {
			date = e.Date.Format(time.DateOnly)
		}
		fmt.Fprintf(&b, "%3d %-10s %s %s %s\n", i+1, e.Person.ID, date, e.Person.Name.First, e.Person.Name.Surname)
	}
	return b.String()
}

type visit int

const (
	visiting visit = iota + 1
	visited
)

// subtreeKey identifies memoized subtree date. The same person may be
// reached below fathers with and without dates, results differ.
type subtreeKey struct {
	handle string
	offset bool
}

type subtreeDate struct {
	date  time.Time
	dated bool
}

// Collector walks descendants of a person through families where they are
// the father.
type Collector struct {
	db     *gramps.Database
	res    *Resolver
	log    *zap.Logger
	offset int

	state   map[string]visit
	dates   map[subtreeKey]subtreeDate
	entries []Entry
}

// NewCollector creates collector, generationOffset is number of years
// subtracted from dates taken from children of a person with no dates.
func NewCollector(db *gramps.Database, res *Resolver, generationOffset int, log *zap.Logger) *Collector {
	return &Collector{
		db:     db,
		res:    res,
		log:    log.Named("collector"),
		offset: generationOffset,
	}
}

// Collect returns chronology of root's descendant families sorted by earliest
// date, stable for equal dates.
func (c *Collector) Collect(root *gramps.Person) *Chronology {
	c.state = make(map[string]visit)
	c.dates = make(map[subtreeKey]subtreeDate)
	c.entries = nil

	if root != nil {
		c.walk(root, false)
	}

	chrono := &Chronology{Entries: c.entries, index: make(map[string]bool, len(c.entries))}
	for i := range chrono.Entries {
		e := &chrono.Entries[i]
		if !e.Dated {
			e.Date = sentinelDate
		}
		chrono.index[e.Person.Handle] = true
	}
	slices.SortStableFunc(chrono.Entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})
	c.log.Debug("Chronology collected", zap.Int("entries", len(chrono.Entries)))
	return chrono
}

// fatherOf returns families person fathers in stored order.
func (c *Collector) fatherOf(p *gramps.Person) []*gramps.Family {
	var families []*gramps.Family
	for _, h := range p.ParentIn {
		if f := c.db.FamilyFromHandle(h); f != nil && f.Father == p.Handle {
			families = append(families, f)
		}
	}
	return families
}

// ownEarliest is minimum over own dated events of the person.
func (c *Collector) ownEarliest(refs []gramps.EventRef, match func(gramps.EventType) bool) (earliest time.Time, ok bool) {
	for _, e := range c.res.ownEvents(refs) {
		if match != nil && !match(e.Type) {
			continue
		}
		if t, dated := e.Date.Time(); dated && (!ok || t.Before(earliest)) {
			earliest, ok = t, true
		}
	}
	return earliest, ok
}

func isFamilyDate(t gramps.EventType) bool {
	return t.IsMarriage() || t.IsMarriageFallback()
}

// walk returns earliest date in person's subtree. Entry slot is reserved
// on first visit before descending so equal dates keep visitation order,
// entry date is the one computed on that visit.
func (c *Collector) walk(p *gramps.Person, offset bool) (time.Time, bool) {
	key := subtreeKey{handle: p.Handle, offset: offset}
	if d, ok := c.dates[key]; ok {
		return d.date, d.dated
	}
	prev := c.state[p.Handle]
	if prev == visiting {
		c.log.Warn("Cycle in family tree, ignoring", zap.String("person", p.ID))
		return time.Time{}, false
	}
	c.state[p.Handle] = visiting
	defer func() { c.state[p.Handle] = visited }()

	earliest, ok := c.ownEarliest(p.EventRefs, nil)
	if !ok {
		offset = true
	}
	consider := func(t time.Time) {
		if !ok || t.Before(earliest) {
			earliest, ok = t, true
		}
	}

	slot := -1
	for _, f := range c.fatherOf(p) {
		if len(f.Children) > 0 && slot < 0 && prev != visited {
			slot = len(c.entries)
			c.entries = append(c.entries, Entry{Person: p})
		}
		if t, dated := c.ownEarliest(f.EventRefs, isFamilyDate); dated {
			consider(t)
		}
		for _, h := range f.Children {
			child := c.db.PersonFromHandle(h)
			if child == nil {
				c.log.Debug("Dangling child reference", zap.String("family", f.ID), zap.String("handle", h))
				continue
			}
			t, dated := c.walk(child, offset)
			if !dated {
				continue
			}
			if offset {
				t = t.AddDate(-c.offset, 0, 0)
			}
			consider(t)
		}
	}

	c.dates[key] = subtreeDate{date: earliest, dated: ok}
	if slot >= 0 {
		c.entries[slot].Date, c.entries[slot].Dated = earliest, ok
	}
	return earliest, ok
}
