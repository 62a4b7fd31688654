package invoice

type styleName int

const (
	styleInvoiceTitle styleName = iota
	styleSectionHeading
	styleLabel
	styleValue
	styleTableHeader
	styleTableCell
	styleTotalLabel
	styleTotalValue
	styleCompanyInfo
	styleFooter
)

const (
	colorBrand       = "#003366"
	headerFillColor  = "#d3eafd"
	defaultTextColor = "#000000"
)

func styleFor(name styleName) Style {
	switch name {
	case styleInvoiceTitle:
		return Style{FontSize: 26, Bold: true, Color: colorBrand, Align: AlignCenter, Margin: Margin{Top: 10, Bottom: 20}}
	case styleSectionHeading:
		return Style{FontSize: 16, Bold: true, Color: colorBrand, Margin: Margin{Top: 20, Bottom: 10}}
	case styleLabel:
		return Style{FontSize: 12, Bold: true, Color: "#555555"}
	case styleValue:
		return Style{FontSize: 12, Color: "#111111"}
	case styleTableHeader:
		return Style{FontSize: 13, Bold: true, Color: colorBrand}
	case styleTableCell:
		return Style{FontSize: 12, Color: "#333333"}
	case styleTotalLabel:
		return Style{FontSize: 13, Bold: true, Color: "#222222", Align: AlignRight}
	case styleTotalValue:
		return Style{FontSize: 13, Bold: true, Color: "#007700"}
	case styleCompanyInfo:
		return Style{FontSize: 11, Bold: true, Color: "#555555", Align: AlignCenter, Margin: Margin{Top: 40}}
	case styleFooter:
		return Style{FontSize: 10, Italic: true, Color: "#888888", Align: AlignCenter, Margin: Margin{Top: 20}}
	}
	return Style{FontSize: 12, Color: defaultTextColor}
}

// rowFill is the background colour of table row rowIndex; empty means none.
func rowFill(rowIndex int) string {
	if rowIndex == 0 {
		return headerFillColor
	}
	return ""
}

func cellStyle(name styleName, rowIndex int) Style {
	s := styleFor(name)
	if fill := rowFill(rowIndex); fill != "" {
		s.FillColor = fill
	}
	return s
}

func tableLayout() TableLayout {
	return TableLayout{
		HLineWidth: 0.8,
		VLineWidth: 0.4,
		HLineColor: "#aaaaaa",
		VLineColor: "#cccccc",
		Padding:    Margin{Left: 6, Top: 4, Right: 6, Bottom: 4},
	}
}
