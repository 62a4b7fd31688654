// Package invoice turns an entry into a printable invoice. Build produces a
// Document, a fully resolved description of the page with every style
// already applied; PDFRenderer serializes a Document to PDF bytes.
package invoice

import "github.com/shopspring/decimal"

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Margin values are in points.
type Margin struct {
	Left, Top, Right, Bottom float64
}

type Style struct {
	FontSize  float64
	Bold      bool
	Italic    bool
	Color     string
	FillColor string
	Align     Align
	Margin    Margin
}

type Paragraph struct {
	Text  string
	Style Style
}

type Column struct {
	Align Align
	Lines []Paragraph
}

type Columns struct {
	Columns []Column
	Margin  Margin
}

// Width is either WidthStar (share the remaining space) or WidthAuto (fit content).
type Width string

const (
	WidthStar Width = "*"
	WidthAuto Width = "auto"
)

type RowKind int

const (
	RowHeader RowKind = iota
	RowItem
	RowGrandTotal
)

type Cell struct {
	Text    string
	ColSpan int
	Style   Style
}

// Row is one table row. Amount carries the numeric value of the last column
// for item and grand total rows.
type Row struct {
	Kind   RowKind
	Cells  []Cell
	Amount decimal.Decimal
}

type TableLayout struct {
	HLineWidth float64
	VLineWidth float64
	HLineColor string
	VLineColor string
	Padding    Margin
}

type Table struct {
	Widths []Width
	Rows   []Row
	Layout TableLayout
}

type Document struct {
	Title   Paragraph
	Info    Columns
	Heading Paragraph
	Table   Table
	Footer  []Paragraph
}
