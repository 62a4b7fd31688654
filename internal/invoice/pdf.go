package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	ptToMM     = 25.4 / 72
	pageMargin = 15.0
	lineFactor = 1.25

	coreFamily = "Helvetica"
	utf8Family = "Roboto"
)

// fontFiles maps fpdf style strings to the TTF files expected in a font directory.
var fontFiles = map[string]string{
	"":   "Roboto-Regular.ttf",
	"B":  "Roboto-Medium.ttf",
	"I":  "Roboto-Italic.ttf",
	"BI": "Roboto-MediumItalic.ttf",
}

// PDFRenderer serializes a Document to PDF. It is safe for concurrent use:
// every Render call builds its own fpdf instance.
type PDFRenderer struct {
	fonts map[string][]byte
}

// NewPDFRenderer loads the Roboto family from fontDir. With an empty fontDir
// the built-in Helvetica is used and text is translated to cp1252.
func NewPDFRenderer(fontDir string) (*PDFRenderer, error) {
	r := &PDFRenderer{}
	if fontDir == "" {
		return r, nil
	}

	r.fonts = make(map[string][]byte, len(fontFiles))
	for style, file := range fontFiles {
		data, err := os.ReadFile(filepath.Join(fontDir, file))
		if err != nil {
			return nil, fmt.Errorf("loading invoice font: %w", err)
		}
		r.fonts[style] = data
	}
	return r, nil
}

func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	p := &page{pdf: pdf, family: coreFamily, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.fonts != nil {
		for style, data := range r.fonts {
			pdf.AddUTF8FontFromBytes(utf8Family, style, data)
		}
		p.family = utf8Family
		p.tr = func(s string) string { return s }
	}

	pdf.AddPage()
	p.paragraph(doc.Title)
	p.columns(doc.Info)
	p.paragraph(doc.Heading)
	p.table(doc.Table)
	for _, par := range doc.Footer {
		p.paragraph(par)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering invoice: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing invoice: %w", err)
	}
	return nil
}

type page struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (p *page) apply(s Style) {
	fontStyle := ""
	if s.Bold {
		fontStyle += "B"
	}
	if s.Italic {
		fontStyle += "I"
	}
	p.pdf.SetFont(p.family, fontStyle, fontSize(s))
	r, g, b := hexColor(s.Color)
	p.pdf.SetTextColor(r, g, b)
}

func (p *page) contentWidth() (left, width float64) {
	pageW, _ := p.pdf.GetPageSize()
	left, _, right, _ := p.pdf.GetMargins()
	return left, pageW - left - right
}

func (p *page) paragraph(par Paragraph) {
	s := par.Style
	p.pdf.SetY(p.pdf.GetY() + s.Margin.Top*ptToMM)
	p.apply(s)
	p.pdf.MultiCell(0, lineHeight(s), p.tr(par.Text), "", alignment(s.Align), false)
	p.pdf.SetY(p.pdf.GetY() + s.Margin.Bottom*ptToMM)
}

func (p *page) columns(c Columns) {
	if len(c.Columns) == 0 {
		return
	}
	left, width := p.contentWidth()
	colW := width / float64(len(c.Columns))

	top := p.pdf.GetY() + c.Margin.Top*ptToMM
	bottom := top
	for i, col := range c.Columns {
		y := top
		for _, line := range col.Lines {
			p.apply(line.Style)
			p.pdf.SetXY(left+float64(i)*colW, y)
			p.pdf.MultiCell(colW, lineHeight(line.Style), p.tr(line.Text), "", alignment(col.Align), false)
			y = p.pdf.GetY()
		}
		bottom = max(bottom, y)
	}
	p.pdf.SetY(bottom + c.Margin.Bottom*ptToMM)
}

type placedCell struct {
	x, w  float64
	lines []string
	style Style
}

func (p *page) table(t Table) {
	left, width := p.contentWidth()
	widths := p.columnWidths(t, width)
	pad := t.Layout.Padding
	padL, padR := pad.Left*ptToMM, pad.Right*ptToMM
	padT, padB := pad.Top*ptToMM, pad.Bottom*ptToMM
	tableW := 0.0
	for _, w := range widths {
		tableW += w
	}

	for _, row := range t.Rows {
		cells := make([]placedCell, 0, len(row.Cells))
		x, col, rowH := left, 0, 0.0
		for _, c := range row.Cells {
			span := max(c.ColSpan, 1)
			w := 0.0
			for i := col; i < col+span && i < len(widths); i++ {
				w += widths[i]
			}
			col += span

			p.apply(c.Style)
			lines := p.wrap(c.Text, w-padL-padR)
			rowH = max(rowH, float64(len(lines))*lineHeight(c.Style)+padT+padB)
			cells = append(cells, placedCell{x: x, w: w, lines: lines, style: c.Style})
			x += w
		}

		_, pageH := p.pdf.GetPageSize()
		if p.pdf.GetY()+rowH > pageH-pageMargin {
			p.pdf.AddPage()
		}
		y := p.pdf.GetY()

		for _, c := range cells {
			if c.style.FillColor != "" {
				r, g, b := hexColor(c.style.FillColor)
				p.pdf.SetFillColor(r, g, b)
				p.pdf.Rect(c.x, y, c.w, rowH, "F")
			}
			p.apply(c.style)
			lh := lineHeight(c.style)
			for i, line := range c.lines {
				p.pdf.SetXY(c.x+padL, y+padT+float64(i)*lh)
				p.pdf.CellFormat(c.w-padL-padR, lh, p.tr(line), "", 0, alignment(c.style.Align), false, 0, "")
			}
		}

		r, g, b := hexColor(t.Layout.VLineColor)
		p.pdf.SetDrawColor(r, g, b)
		p.pdf.SetLineWidth(t.Layout.VLineWidth * ptToMM)
		p.pdf.Line(left, y, left, y+rowH)
		for _, c := range cells {
			p.pdf.Line(c.x+c.w, y, c.x+c.w, y+rowH)
		}

		r, g, b = hexColor(t.Layout.HLineColor)
		p.pdf.SetDrawColor(r, g, b)
		p.pdf.SetLineWidth(t.Layout.HLineWidth * ptToMM)
		p.pdf.Line(left, y, left+tableW, y)
		p.pdf.Line(left, y+rowH, left+tableW, y+rowH)

		p.pdf.SetY(y + rowH)
	}
}

// columnWidths gives auto columns the width of their widest single-span
// cell and shares what is left between star columns.
func (p *page) columnWidths(t Table, available float64) []float64 {
	pad := (t.Layout.Padding.Left + t.Layout.Padding.Right) * ptToMM
	widths := make([]float64, len(t.Widths))
	stars := 0
	used := 0.0

	for i, kind := range t.Widths {
		if kind != WidthAuto {
			stars++
			continue
		}
		for _, row := range t.Rows {
			col := 0
			for _, c := range row.Cells {
				span := max(c.ColSpan, 1)
				if col == i && span == 1 {
					p.apply(c.Style)
					widths[i] = max(widths[i], p.pdf.GetStringWidth(p.tr(c.Text))+pad)
				}
				col += span
			}
		}
		used += widths[i]
	}

	if stars > 0 {
		share := max((available-used)/float64(stars), 0)
		for i, kind := range t.Widths {
			if kind != WidthAuto {
				widths[i] = share
			}
		}
	}
	return widths
}

// wrap splits text into lines no wider than width using the current font.
// A single word wider than width keeps a line of its own.
func (p *page) wrap(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if p.pdf.GetStringWidth(p.tr(candidate)) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

func fontSize(s Style) float64 {
	if s.FontSize <= 0 {
		return 12
	}
	return s.FontSize
}

func lineHeight(s Style) float64 {
	return fontSize(s) * ptToMM * lineFactor
}

func alignment(a Align) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	}
	return "L"
}

// hexColor parses #rgb or #rrggbb. Anything else is black.
func hexColor(s string) (r, g, b int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
