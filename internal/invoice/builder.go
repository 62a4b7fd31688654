package invoice

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

// Options holds the constant branding text and formatting used on every invoice.
type Options struct {
	CompanyName    string
	CompanyTagline string
	ThankYou       string
	Currency       string
	DateLayout     string
}

func DefaultOptions() Options {
	return Options{
		CompanyName:    "Mumtaz Associates",
		CompanyTagline: "Civil, Architecture & Interior Consultancy",
		ThankYou:       "Thank you for choosing us!",
		Currency:       "Rs. ",
		DateLayout:     "1/2/2006",
	}
}

type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	defaults := DefaultOptions()
	if opts.DateLayout == "" {
		opts.DateLayout = defaults.DateLayout
	}
	return &Builder{opts: opts}
}

// Build describes the invoice for entry. The grand total row shows
// entry.Total as stored; it is not recomputed here.
func (b *Builder) Build(entry model.Entry) Document {
	return Document{
		Title:   Paragraph{Text: "INVOICE", Style: styleFor(styleInvoiceTitle)},
		Info:    b.info(entry),
		Heading: Paragraph{Text: "Order Summary", Style: styleFor(styleSectionHeading)},
		Table:   b.table(entry),
		Footer: []Paragraph{
			{Text: b.opts.CompanyName + "\n" + b.opts.CompanyTagline, Style: styleFor(styleCompanyInfo)},
			{Text: b.opts.ThankYou, Style: styleFor(styleFooter)},
		},
	}
}

func (b *Builder) info(entry model.Entry) Columns {
	return Columns{
		Margin: Margin{Top: 20, Bottom: 10},
		Columns: []Column{
			{
				Align: AlignLeft,
				Lines: []Paragraph{
					{Text: "Customer Name:", Style: styleFor(styleLabel)},
					{Text: entry.CustomerName, Style: styleFor(styleValue)},
				},
			},
			{
				Align: AlignRight,
				Lines: []Paragraph{
					{Text: "Booking Date:", Style: styleFor(styleLabel)},
					{Text: entry.BookingDate.UTC().Format(b.opts.DateLayout), Style: styleFor(styleValue)},
				},
			},
		},
	}
}

func (b *Builder) table(entry model.Entry) Table {
	rows := make([]Row, 0, len(entry.Items)+2)

	header := make([]Cell, 0, 4)
	for _, title := range []string{"Item", "Price", "Qty", "Total"} {
		header = append(header, Cell{Text: title, ColSpan: 1, Style: cellStyle(styleTableHeader, 0)})
	}
	rows = append(rows, Row{Kind: RowHeader, Cells: header})

	for _, item := range entry.Items {
		idx := len(rows)
		lineTotal := item.LineTotal()
		rows = append(rows, Row{
			Kind:   RowItem,
			Amount: lineTotal,
			Cells: []Cell{
				{Text: item.Name, ColSpan: 1, Style: cellStyle(styleTableCell, idx)},
				{Text: b.money(item.Price), ColSpan: 1, Style: cellStyle(styleTableCell, idx)},
				{Text: strconv.Itoa(item.Quantity), ColSpan: 1, Style: cellStyle(styleTableCell, idx)},
				{Text: b.money(lineTotal), ColSpan: 1, Style: cellStyle(styleTableCell, idx)},
			},
		})
	}

	idx := len(rows)
	rows = append(rows, Row{
		Kind:   RowGrandTotal,
		Amount: entry.Total,
		Cells: []Cell{
			{Text: "Grand Total", ColSpan: 3, Style: cellStyle(styleTotalLabel, idx)},
			{Text: b.money(entry.Total), ColSpan: 1, Style: cellStyle(styleTotalValue, idx)},
		},
	})

	return Table{
		Widths: []Width{WidthStar, WidthAuto, WidthAuto, WidthAuto},
		Rows:   rows,
		Layout: tableLayout(),
	}
}

func (b *Builder) money(d decimal.Decimal) string {
	return b.opts.Currency + d.String()
}
