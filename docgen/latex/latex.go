// Package latex renders docgen documents as LaTeX tables typeset with
// genealogytree symbols.
package latex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"famchron/config"
	"famchron/docgen"
)

type stage int

const (
	stageNew stage = iota
	stageOpen
	stageTable
	stageRow
	stageClosed
)

var stageNames = [...]string{"new", "open", "table", "row", "closed"}

func (s stage) String() string {
	return stageNames[s]
}

// destination receives content. Outside of cells it is the document stream
// itself, inside a cell it is the cell buffer.
type destination interface {
	put(d *Document, s string)
}

type direct struct{}

func (direct) put(d *Document, s string) {
	d.emit(s)
}

type cell struct {
	text  strings.Builder
	col   int
	span  int
	align docgen.Align
	bold  int
}

func (c *cell) put(_ *Document, s string) {
	c.text.WriteString(s)
}

func (c *cell) render() string {
	switch {
	case c.align == docgen.AlignBlock:
		return `\multicolumn{` + strconv.Itoa(c.span) + `}{p{` + spanWidth(c.col, c.span) + `}}{` + paragraphs(c.text.String()) + `}`
	case c.span > 1:
		return `\multicolumn{` + strconv.Itoa(c.span) + `}{` + c.align.String() + `}{` + c.text.String() + `}`
	}
	return c.text.String()
}

// spanWidth is width of columns [col, col+span) including separation
// between them.
func spanWidth(col, span int) string {
	start := min(col, ColumnCount-1)
	widths := columnWidths[start:max(min(col+span, ColumnCount), start+1)]
	if len(widths) == 1 {
		return widths[0]
	}
	return `\dimexpr` + strings.Join(widths, "+") + "+" + strconv.Itoa(2*(len(widths)-1)) + `\tabcolsep\relax`
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n\s*`)

// paragraphs turns blank lines into paragraph breaks, other line breaks
// become spaces.
func paragraphs(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	s = blankLines.ReplaceAllString(s, `\par `)
	return strings.ReplaceAll(s, "\n", " ")
}

// Document is docgen.Document producing LaTeX. It is not safe for concurrent
// use.
type Document struct {
	cfg *config.DocumentConfig
	log *zap.Logger

	sink  docgen.Sink
	err   error
	stage stage
	dest  destination
	row   []string
	col   int
	// bold groups opened outside of cells
	bold int
}

var _ docgen.Document = (*Document)(nil)

func New(cfg *config.DocumentConfig, log *zap.Logger) *Document {
	return &Document{
		cfg:  cfg,
		log:  log.Named("latex"),
		dest: direct{},
	}
}

// Err returns first write error, it is sticky.
func (d *Document) Err() error {
	return d.err
}

func (d *Document) emit(s string) {
	if d.err != nil {
		return
	}
	if err := d.sink.Write(s); err != nil {
		d.err = fmt.Errorf("unable to write document: %w", err)
		d.log.Debug("Write failed, further output dropped", zap.Error(err))
	}
}

// put is the only place where content is routed.
func (d *Document) put(s string) {
	if d.stage != stageTable && d.stage != stageRow {
		panic(fmt.Sprintf("latex: content written in %s state", d.stage))
	}
	d.dest.put(d, s)
}

func (d *Document) expect(op string, states ...stage) {
	for _, s := range states {
		if d.stage == s {
			return
		}
	}
	panic(fmt.Sprintf("latex: %s called in %s state", op, d.stage))
}

func (d *Document) inCell() bool {
	_, ok := d.dest.(*cell)
	return ok
}

func (d *Document) Open(sink docgen.Sink) error {
	d.expect("Open", stageNew)
	if err := sink.Open(); err != nil {
		return fmt.Errorf("unable to open document: %w", err)
	}
	d.sink, d.stage = sink, stageOpen
	d.emit(d.preamble())
	return d.err
}

func (d *Document) preamble() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\\documentclass[%s]{%s}\n", d.cfg.FontSize, d.cfg.Class)

	geometry := []string{d.cfg.Paper}
	if d.cfg.Landscape {
		geometry = append(geometry, "landscape")
	}
	if d.cfg.LeftMargin != "" {
		geometry = append(geometry, "left="+d.cfg.LeftMargin)
	}
	fmt.Fprintf(&b, "\\usepackage[%s]{geometry}\n", strings.Join(geometry, ","))
	b.WriteString("\\usepackage[T1]{fontenc}\n")
	b.WriteString("\\usepackage{array}\n")
	b.WriteString("\\usepackage{genealogytree}\n")

	cols := d.cfg.Columns
	for _, l := range []struct{ name, value string }{
		{"namewidth", cols.Name},
		{"symbolwidth", cols.Symbol},
		{"datewidth", cols.Date},
		{"locationwidth", cols.Location},
		{"gapwidth", cols.Gap},
		{"referencewidth", cols.Reference},
	} {
		fmt.Fprintf(&b, "\\newlength{\\%s}\n\\setlength{\\%s}{%s}\n", l.name, l.name, l.value)
	}
	b.WriteString("\\begin{document}\n")
	return b.String()
}

// name/birth/death/marriage groups, see ColumnCount
const tabularSpec = `\begin{tabular}{
p{\namewidth}
>{\centering}p{\symbolwidth}
>{\raggedleft\arraybackslash}p{\datewidth}
p{\locationwidth}
p{\gapwidth}
>{\centering}p{\symbolwidth}
>{\raggedleft\arraybackslash}p{\datewidth}
p{\locationwidth}
p{\gapwidth}
>{\centering}p{\symbolwidth}
>{\raggedleft\arraybackslash}p{\datewidth}
p{\namewidth}
p{\locationwidth}
p{\gapwidth}
p{\referencewidth}
}
`

// ColumnCount is number of logical columns in every table.
const ColumnCount = 15

// columnWidths follows tabularSpec.
var columnWidths = [ColumnCount]string{
	`\namewidth`, `\symbolwidth`, `\datewidth`, `\locationwidth`, `\gapwidth`,
	`\symbolwidth`, `\datewidth`, `\locationwidth`, `\gapwidth`,
	`\symbolwidth`, `\datewidth`, `\namewidth`, `\locationwidth`, `\gapwidth`,
	`\referencewidth`,
}

func (d *Document) StartTable(name, style string) {
	d.expect("StartTable", stageOpen)
	d.stage = stageTable
	d.log.Debug("Table started", zap.String("name", name), zap.String("style", style))

	if d.cfg.FloatPlacement != "" {
		d.emit(`\begin{table}[` + d.cfg.FloatPlacement + "]\n")
	} else {
		d.emit("\\begin{table}\n")
	}
	d.emit(tabularSpec)
}

func (d *Document) EndTable(label string) {
	d.expect("EndTable", stageTable)
	d.stage = stageOpen

	d.emit("\\end{tabular}\n")
	if label != "" {
		d.emit(`\label{` + labelText(label) + "}\n")
	}
	if d.cfg.TableSkip != "" {
		d.emit(`\vspace{` + d.cfg.TableSkip + "}\n")
	}
	d.emit("\\\\\\\\\\noindent\\rule[0.6ex]{\\linewidth}{1pt}\n")
	d.emit("\\end{table}\n")
}

func (d *Document) StartRow() {
	d.expect("StartRow", stageTable)
	d.stage = stageRow
	d.row, d.col = d.row[:0], 0
}

func (d *Document) EndRow() {
	d.expect("EndRow", stageRow)
	if d.inCell() {
		panic("latex: EndRow called with open cell")
	}
	d.stage = stageTable
	d.emit(strings.Join(d.row, "&") + "\\\\\n")
	d.row = d.row[:0]
}

func (d *Document) StartCell(style string, span int, align docgen.Align) {
	d.expect("StartCell", stageRow)
	if d.inCell() {
		panic("latex: StartCell called with open cell")
	}
	if span < 1 {
		panic(fmt.Sprintf("latex: StartCell with span %d", span))
	}
	d.dest = &cell{col: d.col, span: span, align: align}
}

func (d *Document) EndCell() {
	c, ok := d.dest.(*cell)
	if !ok {
		panic("latex: EndCell called without open cell")
	}
	if c.bold > 0 {
		d.log.Warn("Closing cell with unfinished bold text")
		c.text.WriteString(strings.Repeat("}", c.bold))
		c.bold = 0
	}
	d.row = append(d.row, c.render())
	d.col += c.span
	d.dest = direct{}
}

func (d *Document) WriteText(text string) {
	d.put(escape(text))
}

var symbols = map[docgen.Symbol]string{
	docgen.SymbolBorn:     `\gtrsymBorn`,
	docgen.SymbolBaptized: `\gtrsymBaptized`,
	docgen.SymbolDied:     `\gtrsymDied`,
	docgen.SymbolBuried:   `\gtrsymBuried`,
	docgen.SymbolMarried:  `\gtrsymMarried`,
	docgen.SymbolEngaged:  `\gtrsymEngaged`,
}

func (d *Document) WriteSymbol(sym docgen.Symbol) {
	if s, ok := symbols[sym]; ok {
		d.put(s)
		return
	}
	d.put("?")
}

// boldCount is number of open bold groups of current destination.
func (d *Document) boldCount() *int {
	if c, ok := d.dest.(*cell); ok {
		return &c.bold
	}
	return &d.bold
}

func (d *Document) StartBold() {
	d.put(`\textbf{`)
	*d.boldCount()++
}

func (d *Document) EndBold() {
	d.put("}")
	if n := d.boldCount(); *n > 0 {
		*n--
	}
}

func (d *Document) closeBold() {
	if d.bold > 0 {
		d.log.Warn("Closing document with unfinished bold text")
		d.emit(strings.Repeat("}", d.bold))
		d.bold = 0
	}
}

func (d *Document) MakePageRef(label string) {
	d.put(`\pageref{` + labelText(label) + "}")
}

func (d *Document) PageBreak() {
	d.expect("PageBreak", stageOpen)
	d.emit("\\newpage\n")
}

// Close unwinds whatever is still open, so output is always a complete
// document.
func (d *Document) Close() (err error) {
	switch d.stage {
	case stageNew, stageClosed:
		d.stage = stageClosed
		return nil
	case stageRow:
		d.log.Warn("Closing document with unfinished row")
		if d.inCell() {
			d.EndCell()
		}
		d.closeBold()
		d.EndRow()
		fallthrough
	case stageTable:
		d.closeBold()
		d.log.Warn("Closing document with unfinished table")
		d.EndTable("")
	}
	d.emit("\\end{document}\n")
	d.stage = stageClosed
	return multierr.Append(d.err, d.sink.Close())
}

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func escape(s string) string {
	return escaper.Replace(s)
}

// labelText keeps only characters safe for \label and \pageref.
func labelText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == ':', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
}
