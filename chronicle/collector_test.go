package chronicle

import (
	"reflect"
	"testing"
	"time"

	"famchron/gramps"
)

func collect(t *testing.T, b *builder, root *gramps.Person, offset int) *Chronology {
	t.Helper()
	log := testLogger(t)
	return NewCollector(b.db, NewResolver(b.db, log), offset, log).Collect(root)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCollectEntriesAreFathersWithChildren(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Meier")
	m1 := b.person("M1", "Berta", "Huber")
	m2 := b.person("M2", "Clara", "Vogt")
	c1 := b.person("C1", "Dora", "Meier")
	c2 := b.person("C2", "Emil", "Meier")
	c3 := b.person("C3", "Fritz", "Meier")
	g := b.person("G", "Gustav", "Lang")
	b.family("F1", a, m1, c1, c2)
	b.family("F2", a, m2, c3)
	// daughter is mother only, son is childless father
	b.family("F3", g, c1, b.person("K", "Karl", "Lang"))
	b.family("F4", c2, b.person("W", "Wilma", "Roth"))

	chrono := collect(t, b, a, 20)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("IDs() = %v, want [A]", got)
	}
	if !chrono.Contains(a) || chrono.Contains(c1) || chrono.Contains(c2) || chrono.Contains(nil) {
		t.Error("Contains() mismatch")
	}
}

func TestCollectOrdering(t *testing.T) {
	b := newBuilder()
	r := b.person("R", "Rudolf", "Alt")
	x := b.person("X", "Xaver", "Alt")
	y := b.person("Y", "Yvo", "Alt")
	z := b.person("Z", "Zenzi", "Alt")
	w := b.person("W", "Walter", "Alt")
	b.family("F1", r, nil, x)
	b.family("F2", r, nil, y)
	b.family("F3", x, nil, z)
	b.family("F4", y, nil, w)
	b.personEvent(y, gramps.EventBirth, year(1900), nil)

	chrono := collect(t, b, r, 20)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"R", "Y", "X"}) {
		t.Fatalf("IDs() = %v, want [R Y X]", got)
	}

	want := []struct {
		date  time.Time
		dated bool
	}{
		{date(1880, 1, 1), true},
		{date(1900, 1, 1), true},
		{sentinelDate, false},
	}
	for i, e := range chrono.Entries {
		if !e.Date.Equal(want[i].date) || e.Dated != want[i].dated {
			t.Errorf("entry %s: date %v dated %v, want %v %v", e.Person.ID, e.Date, e.Dated, want[i].date, want[i].dated)
		}
	}
	for i := 1; i < len(chrono.Entries); i++ {
		if chrono.Entries[i].Date.Before(chrono.Entries[i-1].Date) {
			t.Errorf("entries not sorted at %d", i)
		}
	}
}

func TestCollectUndatedKeepVisitOrder(t *testing.T) {
	b := newBuilder()
	r := b.person("R", "", "")
	x := b.person("X", "", "")
	y := b.person("Y", "", "")
	b.family("F1", r, nil, x, y)
	b.family("F2", x, nil, b.person("X1", "", ""))
	b.family("F3", y, nil, b.person("Y1", "", ""))

	chrono := collect(t, b, r, 20)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"R", "X", "Y"}) {
		t.Errorf("IDs() = %v, want visitation order", got)
	}
	for _, e := range chrono.Entries {
		if e.Dated || !e.Date.Equal(sentinelDate) {
			t.Errorf("entry %s dated %v at %v", e.Person.ID, e.Dated, e.Date)
		}
	}
}

func TestCollectGenerationOffset(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		ownBirth  int
		wantRoot  time.Time
		wantChild time.Time
	}{
		{name: "root undated", offset: 20, wantRoot: date(1880, 1, 1), wantChild: date(1900, 1, 1)},
		{name: "custom offset", offset: 30, wantRoot: date(1865, 1, 1), wantChild: date(1895, 1, 1)},
		{name: "no offset", offset: 0, wantRoot: date(1900, 1, 1), wantChild: date(1900, 1, 1)},
		{name: "root dated", offset: 20, ownBirth: 1875, wantRoot: date(1875, 1, 1), wantChild: date(1900, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			g := b.person("G", "Georg", "Alt")
			s := b.person("S", "Simon", "Alt")
			k := b.person("K", "Konrad", "Alt")
			b.family("F1", g, nil, s)
			b.family("F2", s, nil, k)
			b.personEvent(s, gramps.EventBirth, year(1900), nil)
			b.personEvent(k, gramps.EventBirth, year(1925), nil)
			if tt.ownBirth != 0 {
				b.personEvent(g, gramps.EventBirth, year(tt.ownBirth), nil)
			}

			chrono := collect(t, b, g, tt.offset)
			if len(chrono.Entries) != 2 {
				t.Fatalf("entries = %v", chrono.IDs())
			}
			if got := chrono.Entries[0].Date; !got.Equal(tt.wantRoot) {
				t.Errorf("root date = %v, want %v", got, tt.wantRoot)
			}
			if got := chrono.Entries[1].Date; !got.Equal(tt.wantChild) {
				t.Errorf("child date = %v, want %v", got, tt.wantChild)
			}
		})
	}
}

func TestCollectFamilyDates(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Meier")
	c := b.person("C", "Carl", "Meier")
	f := b.family("F1", a, nil, c)
	b.familyEvent(f, gramps.EventMarriage, gramps.Date{Month: 6, Year: 1900}, nil)
	b.familyEvent(f, gramps.EventEngagement, gramps.Date{Day: 24, Month: 12, Year: 1899}, nil)
	b.familyEvent(f, gramps.EventCensus, year(1850), nil)
	b.personEvent(c, gramps.EventBirth, year(1925), nil)

	chrono := collect(t, b, a, 20)
	if got := chrono.Entries[0].Date; !got.Equal(date(1899, 12, 24)) {
		t.Errorf("date = %v, want engagement date unshifted", got)
	}
}

func TestCollectCycle(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Kreis")
	c := b.person("C", "Carl", "Kreis")
	b.family("F1", a, nil, c)
	b.family("F2", c, nil, a)
	b.personEvent(c, gramps.EventBirth, year(1900), nil)

	chrono := collect(t, b, a, 20)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("IDs() = %v, want each person once", got)
	}
}

func TestCollectSharedDescendant(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Meier")
	c := b.person("C", "Carl", "Meier")
	k := b.person("K", "Kurt", "Meier")
	b.family("F1", a, nil, c)
	b.family("F2", a, nil, c)
	b.family("F3", c, nil, k)
	b.personEvent(k, gramps.EventBirth, year(1930), nil)

	chrono := collect(t, b, a, 0)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("IDs() = %v", got)
	}
	if !chrono.Entries[0].Dated {
		t.Error("memoized date of repeated child lost")
	}
}

// S is child of undated U and of dated X, dates under S depend on the
// father it is reached through, never on which father comes first.
func TestCollectSharedChildOfTwoFathers(t *testing.T) {
	for _, uFirst := range []bool{true, false} {
		b := newBuilder()
		r := b.person("R", "Rudolf", "Alt")
		u := b.person("U", "Urban", "Alt")
		x := b.person("X", "Xaver", "Alt")
		s := b.person("S", "Simon", "Alt")
		k := b.person("K", "Konrad", "Alt")
		if uFirst {
			b.family("F1", r, nil, u, x)
		} else {
			b.family("F1", r, nil, x, u)
		}
		b.family("F2", u, nil, s)
		b.family("F3", x, nil, s)
		b.family("F4", s, nil, k)
		b.personEvent(r, gramps.EventBirth, year(1850), nil)
		b.personEvent(x, gramps.EventDeath, year(1999), nil)
		b.personEvent(s, gramps.EventDeath, year(1990), nil)
		b.personEvent(k, gramps.EventBirth, year(1935), nil)

		dates := make(map[string]time.Time)
		for _, e := range collect(t, b, r, 20).Entries {
			dates[e.Person.ID] = e.Date
		}
		// U has no dates: K shifted under S, S shifted under U
		if got := dates["U"]; !got.Equal(date(1895, 1, 1)) {
			t.Errorf("U first %v: U date = %v, want 1895", uFirst, got)
		}
		if got := dates["X"]; !got.Equal(date(1935, 1, 1)) {
			t.Errorf("U first %v: X date = %v, want 1935", uFirst, got)
		}
	}
}

func TestCollectNilAndDangling(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Meier")
	a.ParentIn = append(a.ParentIn, "_missing")
	f := b.family("F1", a, nil)
	f.Children = append(f.Children, "_ghost")

	chrono := collect(t, b, a, 20)
	if got := chrono.IDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("IDs() = %v", got)
	}
	if len(collect(t, b, nil, 20).Entries) != 0 {
		t.Error("nil root produced entries")
	}
}

func TestChronologyString(t *testing.T) {
	b := newBuilder()
	a := b.person("A", "Anton", "Meier")
	b.family("F1", a, nil, b.person("C", "Carl", "Meier"))
	b.personEvent(a, gramps.EventBirth, gramps.Date{Day: 2, Month: 3, Year: 1870}, nil)

	if got, want := collect(t, b, a, 20).String(), "  1 A          1870-03-02 Anton Meier\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
