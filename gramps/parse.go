package gramps

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Parsing of Gramps XML export (http://gramps-project.org/xml/1.7.1/).
// Only objects and fields the reports need are extracted, the rest is
// skipped. Sections are processed independently, references are resolved
// lazily at query time so their order in file does not matter.

// sections of the database we do not use
var ignoredSections = map[string]bool{
	"header":       true,
	"name-formats": true,
	"tags":         true,
	"citations":    true,
	"sources":      true,
	"objects":      true,
	"repositories": true,
	"bookmarks":    true,
	"namemaps":     true,
}

// ParseXML walks the etree DOM of Gramps XML export and builds database.
func ParseXML(doc *etree.Document, log *zap.Logger) (*Database, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "database" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	db := NewDatabase()
	for _, section := range root.ChildElements() {
		switch section.Tag {
		case "events":
			eachObject(section, "event", log, func(el *etree.Element, handle, id string) {
				if !db.AddEvent(parseEvent(el, handle, id, log)) {
					log.Warn("Duplicate event handle, ignoring", zap.String("handle", handle))
				}
			})
		case "people":
			eachObject(section, "person", log, func(el *etree.Element, handle, id string) {
				if !db.AddPerson(parsePerson(el, handle, id, log)) {
					log.Warn("Duplicate person handle, ignoring", zap.String("handle", handle))
				}
			})
		case "families":
			eachObject(section, "family", log, func(el *etree.Element, handle, id string) {
				if !db.AddFamily(parseFamily(el, handle, id, log)) {
					log.Warn("Duplicate family handle, ignoring", zap.String("handle", handle))
				}
			})
		case "places":
			eachObject(section, "placeobj", log, func(el *etree.Element, handle, id string) {
				if !db.AddPlace(parsePlace(el, handle, id, log)) {
					log.Warn("Duplicate place handle, ignoring", zap.String("handle", handle))
				}
			})
		case "notes":
			eachObject(section, "note", log, func(el *etree.Element, handle, id string) {
				if !db.AddNote(parseNote(el, handle, id)) {
					log.Warn("Duplicate note handle, ignoring", zap.String("handle", handle))
				}
			})
		default:
			if !ignoredSections[section.Tag] {
				log.Warn("Unexpected tag in database, ignoring", zap.String("parent", root.Tag), zap.String("tag", section.Tag))
			}
		}
	}

	log.Debug("Gramps database parsed",
		zap.Int("people", len(db.people)), zap.Int("families", len(db.families)),
		zap.Int("events", len(db.events)), zap.Int("places", len(db.places)), zap.Int("notes", len(db.notes)))
	return db, nil
}

// eachObject calls fn for every child with expected tag which has a handle.
func eachObject(section *etree.Element, tag string, log *zap.Logger, fn func(el *etree.Element, handle, id string)) {
	for _, el := range section.ChildElements() {
		if el.Tag != tag {
			log.Warn("Unexpected tag in section, ignoring", zap.String("parent", section.Tag), zap.String("tag", el.Tag))
			continue
		}
		handle := el.SelectAttrValue("handle", "")
		if handle == "" {
			log.Warn("Object without handle, skipping", zap.String("tag", tag), zap.String("id", el.SelectAttrValue("id", "")))
			continue
		}
		fn(el, handle, el.SelectAttrValue("id", ""))
	}
}

func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func hlink(el *etree.Element) string {
	return el.SelectAttrValue("hlink", "")
}

func parsePerson(el *etree.Element, handle, id string, log *zap.Logger) *Person {
	p := &Person{Handle: handle, ID: id, Gender: GenderUnknown}
	haveName := false
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "gender":
			switch g := Gender(cleanText(child.Text())); g {
			case GenderMale, GenderFemale:
				p.Gender = g
			}
		case "name":
			// first non alternate name is primary
			if haveName || child.SelectAttrValue("alt", "") == "1" {
				continue
			}
			p.Name = parseName(child)
			haveName = true
		case "eventref":
			p.EventRefs = append(p.EventRefs, EventRef{Handle: hlink(child), Role: EventRole(child.SelectAttrValue("role", ""))})
		case "childof":
			p.ChildOf = append(p.ChildOf, hlink(child))
		case "parentin":
			p.ParentIn = append(p.ParentIn, hlink(child))
		case "noteref":
			p.NoteRefs = append(p.NoteRefs, hlink(child))
		case "lds_ord", "objref", "address", "attribute", "url", "personref", "citationref", "tagref":
			// not used in reports
		default:
			log.Warn("Unexpected tag in person, ignoring", zap.String("id", id), zap.String("tag", child.Tag))
		}
	}
	return p
}

func parseName(el *etree.Element) Name {
	var name Name
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "first":
			name.First = cleanText(child.Text())
		case "surname":
			// primary surname wins, otherwise the first one
			if name.Surname == "" || child.SelectAttrValue("prim", "") == "1" {
				name.Surname = cleanText(child.Text())
			}
		}
	}
	return name
}

func parseFamily(el *etree.Element, handle, id string, log *zap.Logger) *Family {
	f := &Family{Handle: handle, ID: id}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "father":
			f.Father = hlink(child)
		case "mother":
			f.Mother = hlink(child)
		case "childref":
			f.Children = append(f.Children, hlink(child))
		case "eventref":
			f.EventRefs = append(f.EventRefs, EventRef{Handle: hlink(child), Role: EventRole(child.SelectAttrValue("role", ""))})
		case "rel", "lds_ord", "objref", "attribute", "noteref", "citationref", "tagref":
			// not used in reports
		default:
			log.Warn("Unexpected tag in family, ignoring", zap.String("id", id), zap.String("tag", child.Tag))
		}
	}
	return f
}

func parseEvent(el *etree.Element, handle, id string, log *zap.Logger) *Event {
	e := &Event{Handle: handle, ID: id}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "type":
			e.Type = EventType(cleanText(child.Text()))
		case "dateval", "daterange", "datespan", "datestr":
			d, err := parseDate(child)
			if err != nil {
				log.Warn("Bad event date, ignoring", zap.String("id", id), zap.Error(err))
				continue
			}
			e.Date = d
		case "place":
			e.Place = hlink(child)
		case "description":
			e.Description = cleanText(child.Text())
		case "cause", "attribute", "noteref", "citationref", "objref", "tagref":
			// not used in reports
		default:
			log.Warn("Unexpected tag in event, ignoring", zap.String("id", id), zap.String("tag", child.Tag))
		}
	}
	return e
}

// parseDate handles all four Gramps date elements.
func parseDate(el *etree.Element) (Date, error) {
	var (
		d   Date
		err error
	)
	d.Quality = DateQuality(el.SelectAttrValue("quality", ""))

	switch el.Tag {
	case "dateval":
		if d.Modifier, err = ParseDateModifier(el.SelectAttrValue("type", "")); err != nil {
			return Date{}, err
		}
		d.Day, d.Month, d.Year, err = ParseDateValue(el.SelectAttrValue("val", ""))
	case "daterange", "datespan":
		d.Modifier = ModRange
		if el.Tag == "datespan" {
			d.Modifier = ModSpan
		}
		if d.Day, d.Month, d.Year, err = ParseDateValue(el.SelectAttrValue("start", "")); err != nil {
			return Date{}, err
		}
		d.StopDay, d.StopMonth, d.StopYear, err = ParseDateValue(el.SelectAttrValue("stop", ""))
	case "datestr":
		d.Modifier = ModTextOnly
		d.Text = cleanText(el.SelectAttrValue("val", ""))
	}
	if err != nil {
		return Date{}, err
	}
	return d, nil
}

func parsePlace(el *etree.Element, handle, id string, log *zap.Logger) *Place {
	p := &Place{Handle: handle, ID: id}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "ptitle":
			p.Title = cleanText(child.Text())
		case "pname":
			name := PlaceName{Value: cleanText(child.SelectAttrValue("value", ""))}
			for _, del := range child.ChildElements() {
				if d, err := parseDate(del); err == nil {
					name.Date = d
				} else {
					log.Debug("Bad place name date, ignoring", zap.String("id", id), zap.Error(err))
				}
			}
			p.Names = append(p.Names, name)
		case "placeref":
			// only first enclosing place is followed
			if p.Enclosed == "" {
				p.Enclosed = hlink(child)
			}
		case "code", "coord", "location", "alt_loc", "objref", "url", "noteref", "citationref", "tagref":
			// not used in reports
		default:
			log.Warn("Unexpected tag in place, ignoring", zap.String("id", id), zap.String("tag", child.Tag))
		}
	}
	return p
}

func parseNote(el *etree.Element, handle, id string) *Note {
	n := &Note{Handle: handle, ID: id, Type: NoteType(el.SelectAttrValue("type", string(NoteTypeGeneral)))}
	if text := el.SelectElement("text"); text != nil {
		n.Text = cleanText(text.Text())
	}
	return n
}
