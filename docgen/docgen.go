// Package docgen defines backend independent table document model used to
// emit family chronicles, and output sinks documents are written into.
package docgen

// Symbol is genealogical marker placed in front of dates. Backends choose
// actual glyphs.
type Symbol int

const (
	SymbolUnknown Symbol = iota
	SymbolBorn
	SymbolBaptized
	SymbolDied
	SymbolBuried
	SymbolMarried
	SymbolEngaged
)

var symbolNames = [...]string{"unknown", "born", "baptized", "died", "buried", "married", "engaged"}

func (s Symbol) String() string {
	if s < 0 || int(s) >= len(symbolNames) {
		return symbolNames[SymbolUnknown]
	}
	return symbolNames[s]
}

// Align is horizontal alignment of a spanning cell. AlignBlock wraps text
// into paragraphs as wide as the spanned columns, blank lines in text
// separate paragraphs.
type Align byte

const (
	AlignLeft   Align = 'l'
	AlignCenter Align = 'c'
	AlignRight  Align = 'r'
	AlignBlock  Align = 'p'
)

func (a Align) String() string {
	switch a {
	case AlignCenter, AlignRight, AlignBlock:
		return string(a)
	default:
		return string(AlignLeft)
	}
}

// Document is a stream of tables. Calls must be properly nested:
// table > row > cell, cells are never nested, and every Start has matching
// End. Breaking this protocol is a programming error and implementations
// panic. Text and bold markers go into the open cell if there is one,
// otherwise directly into output.
type Document interface {
	// Open acquires sink and writes document prologue.
	Open(sink Sink) error
	// Close finalizes document and releases sink on every path, returning
	// first write error encountered during document lifetime, if any.
	Close() error

	StartTable(name, style string)
	// EndTable closes table, non empty label makes it a target for MakePageRef.
	EndTable(label string)

	StartRow()
	EndRow()

	// StartCell opens cell spanning span columns, alignment matters for
	// spans greater than 1 only.
	StartCell(style string, span int, align Align)
	EndCell()

	WriteText(text string)
	WriteSymbol(sym Symbol)
	StartBold()
	EndBold()

	MakePageRef(label string)
	PageBreak()
}
