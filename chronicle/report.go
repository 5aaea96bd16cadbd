package chronicle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"famchron/config"
	"famchron/docgen"
	"famchron/gramps"
)

// ErrUnknownPerson is returned when root person cannot be found.
var ErrUnknownPerson = errors.New("person not found")

// Report generates family chronicle of a person descendants.
type Report struct {
	db  *gramps.Database
	cfg *config.ReportConfig
	log *zap.Logger
}

func NewReport(db *gramps.Database, cfg *config.ReportConfig, log *zap.Logger) *Report {
	return &Report{db: db, cfg: cfg, log: log}
}

// Generate writes one table per chronology entry into already opened
// document and returns the chronology. Document is not closed.
func (r *Report) Generate(ctx context.Context, doc docgen.Document, rootID string) (*Chronology, error) {
	root := r.db.PersonFromID(rootID)
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPerson, rootID)
	}

	res := NewResolver(r.db, r.log)
	chrono := NewCollector(r.db, res, r.cfg.GenerationOffset, r.log).Collect(root)
	if len(chrono.Entries) == 0 {
		r.log.Warn("Person has no families with children, nothing to report",
			zap.String("person", rootID))
		return chrono, nil
	}

	w := NewWriter(doc, r.db, res, chrono, r.cfg.Labels, r.log)
	for i, e := range chrono.Entries {
		if err := ctx.Err(); err != nil {
			return chrono, fmt.Errorf("report interrupted: %w", err)
		}
		if i > 0 && r.cfg.PageBreak {
			doc.PageBreak()
		}
		w.WriteEntry(e.Person)
	}
	r.log.Debug("Report generated", zap.String("person", rootID), zap.Int("tables", len(chrono.Entries)))
	return chrono, nil
}
