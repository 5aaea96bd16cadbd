package config

//go:generate go tool go-enum --marshal --names

// Specification of genealogy source format.
// ENUM(auto, xml, sqlite)
type SourceFmt int

// Ext returns default file extension for the source format.
func (s SourceFmt) Ext() string {
	switch s {
	case SourceFmtXml:
		return ".gramps"
	case SourceFmtSqlite:
		return ".sqlite"
	default:
		return ""
	}
}
