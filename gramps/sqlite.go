package gramps

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLite snapshot keeps exactly what ParseXML extracts, so loading snapshot
// is equivalent to parsing the XML it was exported from. Sequence columns
// preserve stored order of references.

const schemaVersion = 1

const schema = `
CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE people (
	seq INTEGER NOT NULL, handle TEXT PRIMARY KEY, gramps_id TEXT NOT NULL,
	gender TEXT NOT NULL, first_name TEXT NOT NULL, surname TEXT NOT NULL);
CREATE TABLE person_events (person_handle TEXT NOT NULL, seq INTEGER NOT NULL, event_handle TEXT NOT NULL, role TEXT NOT NULL);
CREATE TABLE person_families (person_handle TEXT NOT NULL, seq INTEGER NOT NULL, family_handle TEXT NOT NULL);
CREATE TABLE person_parents (person_handle TEXT NOT NULL, seq INTEGER NOT NULL, family_handle TEXT NOT NULL);
CREATE TABLE person_notes (person_handle TEXT NOT NULL, seq INTEGER NOT NULL, note_handle TEXT NOT NULL);
CREATE TABLE families (
	seq INTEGER NOT NULL, handle TEXT PRIMARY KEY, gramps_id TEXT NOT NULL,
	father_handle TEXT NOT NULL, mother_handle TEXT NOT NULL);
CREATE TABLE family_children (family_handle TEXT NOT NULL, seq INTEGER NOT NULL, child_handle TEXT NOT NULL);
CREATE TABLE family_events (family_handle TEXT NOT NULL, seq INTEGER NOT NULL, event_handle TEXT NOT NULL, role TEXT NOT NULL);
CREATE TABLE events (
	seq INTEGER NOT NULL, handle TEXT PRIMARY KEY, gramps_id TEXT NOT NULL,
	type TEXT NOT NULL, description TEXT NOT NULL, place_handle TEXT NOT NULL,
	modifier TEXT NOT NULL, quality TEXT NOT NULL, day INTEGER NOT NULL, month INTEGER NOT NULL, year INTEGER NOT NULL,
	stop_day INTEGER NOT NULL, stop_month INTEGER NOT NULL, stop_year INTEGER NOT NULL, date_text TEXT NOT NULL);
CREATE TABLE places (
	seq INTEGER NOT NULL, handle TEXT PRIMARY KEY, gramps_id TEXT NOT NULL,
	title TEXT NOT NULL, enclosed_handle TEXT NOT NULL);
CREATE TABLE place_names (
	place_handle TEXT NOT NULL, seq INTEGER NOT NULL, value TEXT NOT NULL,
	modifier TEXT NOT NULL, quality TEXT NOT NULL, day INTEGER NOT NULL, month INTEGER NOT NULL, year INTEGER NOT NULL,
	stop_day INTEGER NOT NULL, stop_month INTEGER NOT NULL, stop_year INTEGER NOT NULL, date_text TEXT NOT NULL);
CREATE TABLE notes (
	seq INTEGER NOT NULL, handle TEXT PRIMARY KEY, gramps_id TEXT NOT NULL,
	type TEXT NOT NULL, text TEXT NOT NULL);
`

// ErrSchemaVersion is returned when snapshot was written by incompatible
// version of the program.
var ErrSchemaVersion = errors.New("unsupported snapshot schema version")

// SaveSQLite writes database snapshot into new SQLite file. The file must not
// exist.
func SaveSQLite(db *Database, path string, log *zap.Logger) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return fmt.Errorf("unable to create snapshot %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, conn.Close())
	}()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("unable to create snapshot schema: %w", err)
	}

	if err := saveAll(conn, db); err != nil {
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	log.Debug("Snapshot written", zap.String("path", path))
	return nil
}

func saveAll(conn *sqlite.Conn, db *Database) (err error) {
	defer sqlitex.Transaction(conn)(&err)

	exec := func(query string, args ...any) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args})
	}

	if err := exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, strconv.Itoa(schemaVersion)); err != nil {
		return err
	}

	for i, p := range db.People() {
		if err := exec(`INSERT INTO people VALUES (?, ?, ?, ?, ?, ?)`,
			i, p.Handle, p.ID, string(p.Gender), p.Name.First, p.Name.Surname); err != nil {
			return err
		}
		for j, ref := range p.EventRefs {
			if err := exec(`INSERT INTO person_events VALUES (?, ?, ?, ?)`, p.Handle, j, ref.Handle, string(ref.Role)); err != nil {
				return err
			}
		}
		for j, h := range p.ParentIn {
			if err := exec(`INSERT INTO person_families VALUES (?, ?, ?)`, p.Handle, j, h); err != nil {
				return err
			}
		}
		for j, h := range p.ChildOf {
			if err := exec(`INSERT INTO person_parents VALUES (?, ?, ?)`, p.Handle, j, h); err != nil {
				return err
			}
		}
		for j, h := range p.NoteRefs {
			if err := exec(`INSERT INTO person_notes VALUES (?, ?, ?)`, p.Handle, j, h); err != nil {
				return err
			}
		}
	}

	for i, f := range db.Families() {
		if err := exec(`INSERT INTO families VALUES (?, ?, ?, ?, ?)`, i, f.Handle, f.ID, f.Father, f.Mother); err != nil {
			return err
		}
		for j, h := range f.Children {
			if err := exec(`INSERT INTO family_children VALUES (?, ?, ?)`, f.Handle, j, h); err != nil {
				return err
			}
		}
		for j, ref := range f.EventRefs {
			if err := exec(`INSERT INTO family_events VALUES (?, ?, ?, ?)`, f.Handle, j, ref.Handle, string(ref.Role)); err != nil {
				return err
			}
		}
	}

	for i, e := range db.Events() {
		args := append([]any{i, e.Handle, e.ID, string(e.Type), e.Description, e.Place}, dateArgs(e.Date)...)
		if err := exec(`INSERT INTO events VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
			return err
		}
	}

	for i, p := range db.Places() {
		if err := exec(`INSERT INTO places VALUES (?, ?, ?, ?, ?)`, i, p.Handle, p.ID, p.Title, p.Enclosed); err != nil {
			return err
		}
		for j, n := range p.Names {
			args := append([]any{p.Handle, j, n.Value}, dateArgs(n.Date)...)
			if err := exec(`INSERT INTO place_names VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
				return err
			}
		}
	}

	for i, n := range db.Notes() {
		if err := exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?)`, i, n.Handle, n.ID, string(n.Type), n.Text); err != nil {
			return err
		}
	}
	return nil
}

func dateArgs(d Date) []any {
	return []any{d.Modifier.String(), string(d.Quality), d.Day, d.Month, d.Year, d.StopDay, d.StopMonth, d.StopYear, d.Text}
}

// readDate reads 9 date columns starting at col.
func readDate(stmt *sqlite.Stmt, col int) (Date, error) {
	mod, err := ParseDateModifier(stmt.ColumnText(col))
	if err != nil {
		return Date{}, err
	}
	return Date{
		Modifier:  mod,
		Quality:   DateQuality(stmt.ColumnText(col + 1)),
		Day:       stmt.ColumnInt(col + 2),
		Month:     stmt.ColumnInt(col + 3),
		Year:      stmt.ColumnInt(col + 4),
		StopDay:   stmt.ColumnInt(col + 5),
		StopMonth: stmt.ColumnInt(col + 6),
		StopYear:  stmt.ColumnInt(col + 7),
		Text:      stmt.ColumnText(col + 8),
	}, nil
}

const dateColumns = `modifier, quality, day, month, year, stop_day, stop_month, stop_year, date_text`

// LoadSQLite reads snapshot written by SaveSQLite.
func LoadSQLite(path string, log *zap.Logger) (_ *Database, err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, conn.Close())
	}()

	version := ""
	if err := sqlitex.Execute(conn, `SELECT value FROM meta WHERE key = 'schema_version'`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnText(0)
			return nil
		}}); err != nil {
		return nil, fmt.Errorf("unable to read snapshot meta: %w", err)
	}
	if version != strconv.Itoa(schemaVersion) {
		return nil, fmt.Errorf("%w: %q", ErrSchemaVersion, version)
	}

	db := NewDatabase()
	if err := loadAll(conn, db); err != nil {
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}
	log.Debug("Snapshot loaded", zap.String("path", path),
		zap.Int("people", len(db.people)), zap.Int("families", len(db.families)), zap.Int("events", len(db.events)))
	return db, nil
}

func loadAll(conn *sqlite.Conn, db *Database) error {
	query := func(q string, fn func(stmt *sqlite.Stmt) error) error {
		return sqlitex.Execute(conn, q, &sqlitex.ExecOptions{ResultFunc: fn})
	}

	people := make(map[string]*Person)
	if err := query(`SELECT handle, gramps_id, gender, first_name, surname FROM people ORDER BY seq`, func(stmt *sqlite.Stmt) error {
		p := &Person{
			Handle: stmt.ColumnText(0),
			ID:     stmt.ColumnText(1),
			Gender: Gender(stmt.ColumnText(2)),
			Name:   Name{First: stmt.ColumnText(3), Surname: stmt.ColumnText(4)},
		}
		people[p.Handle] = p
		db.AddPerson(p)
		return nil
	}); err != nil {
		return err
	}

	personLinks := []struct {
		query string
		add   func(p *Person, stmt *sqlite.Stmt)
	}{
		{`SELECT person_handle, event_handle, role FROM person_events ORDER BY person_handle, seq`, func(p *Person, stmt *sqlite.Stmt) {
			p.EventRefs = append(p.EventRefs, EventRef{Handle: stmt.ColumnText(1), Role: EventRole(stmt.ColumnText(2))})
		}},
		{`SELECT person_handle, family_handle FROM person_families ORDER BY person_handle, seq`, func(p *Person, stmt *sqlite.Stmt) {
			p.ParentIn = append(p.ParentIn, stmt.ColumnText(1))
		}},
		{`SELECT person_handle, family_handle FROM person_parents ORDER BY person_handle, seq`, func(p *Person, stmt *sqlite.Stmt) {
			p.ChildOf = append(p.ChildOf, stmt.ColumnText(1))
		}},
		{`SELECT person_handle, note_handle FROM person_notes ORDER BY person_handle, seq`, func(p *Person, stmt *sqlite.Stmt) {
			p.NoteRefs = append(p.NoteRefs, stmt.ColumnText(1))
		}},
	}
	for _, link := range personLinks {
		if err := query(link.query, func(stmt *sqlite.Stmt) error {
			if p, ok := people[stmt.ColumnText(0)]; ok {
				link.add(p, stmt)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	families := make(map[string]*Family)
	if err := query(`SELECT handle, gramps_id, father_handle, mother_handle FROM families ORDER BY seq`, func(stmt *sqlite.Stmt) error {
		f := &Family{Handle: stmt.ColumnText(0), ID: stmt.ColumnText(1), Father: stmt.ColumnText(2), Mother: stmt.ColumnText(3)}
		families[f.Handle] = f
		db.AddFamily(f)
		return nil
	}); err != nil {
		return err
	}
	if err := query(`SELECT family_handle, child_handle FROM family_children ORDER BY family_handle, seq`, func(stmt *sqlite.Stmt) error {
		if f, ok := families[stmt.ColumnText(0)]; ok {
			f.Children = append(f.Children, stmt.ColumnText(1))
		}
		return nil
	}); err != nil {
		return err
	}
	if err := query(`SELECT family_handle, event_handle, role FROM family_events ORDER BY family_handle, seq`, func(stmt *sqlite.Stmt) error {
		if f, ok := families[stmt.ColumnText(0)]; ok {
			f.EventRefs = append(f.EventRefs, EventRef{Handle: stmt.ColumnText(1), Role: EventRole(stmt.ColumnText(2))})
		}
		return nil
	}); err != nil {
		return err
	}

	if err := query(`SELECT handle, gramps_id, type, description, place_handle, `+dateColumns+` FROM events ORDER BY seq`, func(stmt *sqlite.Stmt) error {
		d, err := readDate(stmt, 5)
		if err != nil {
			return err
		}
		db.AddEvent(&Event{
			Handle:      stmt.ColumnText(0),
			ID:          stmt.ColumnText(1),
			Type:        EventType(stmt.ColumnText(2)),
			Description: stmt.ColumnText(3),
			Place:       stmt.ColumnText(4),
			Date:        d,
		})
		return nil
	}); err != nil {
		return err
	}

	places := make(map[string]*Place)
	if err := query(`SELECT handle, gramps_id, title, enclosed_handle FROM places ORDER BY seq`, func(stmt *sqlite.Stmt) error {
		p := &Place{Handle: stmt.ColumnText(0), ID: stmt.ColumnText(1), Title: stmt.ColumnText(2), Enclosed: stmt.ColumnText(3)}
		places[p.Handle] = p
		db.AddPlace(p)
		return nil
	}); err != nil {
		return err
	}
	if err := query(`SELECT place_handle, value, `+dateColumns+` FROM place_names ORDER BY place_handle, seq`, func(stmt *sqlite.Stmt) error {
		p, ok := places[stmt.ColumnText(0)]
		if !ok {
			return nil
		}
		d, err := readDate(stmt, 2)
		if err != nil {
			return err
		}
		p.Names = append(p.Names, PlaceName{Value: stmt.ColumnText(1), Date: d})
		return nil
	}); err != nil {
		return err
	}

	return query(`SELECT handle, gramps_id, type, text FROM notes ORDER BY seq`, func(stmt *sqlite.Stmt) error {
		db.AddNote(&Note{Handle: stmt.ColumnText(0), ID: stmt.ColumnText(1), Type: NoteType(stmt.ColumnText(2)), Text: stmt.ColumnText(3)})
		return nil
	})
}
