package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/shadequote/internal/pricing"
	"github.com/Simplici0/shadequote/internal/quotes"
)

const lineHeight = 4.0

var (
	headerFill = &props.Color{Red: 240, Green: 240, Blue: 240}
	accent     = &props.Color{Red: 0, Green: 123, Blue: 255}
)

// Filename is the attachment name used for a quote PDF.
func Filename(quoteNumber int64) string {
	return "Quote_" + strconv.FormatInt(quoteNumber, 10) + ".pdf"
}

// QuotePDF renders a printable quote. The customer block comes from the first item.
func QuotePDF(quoteNumber int64, items []quotes.Item, now time.Time) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("render quote %d: %w", quoteNumber, quotes.ErrNotFound)
	}

	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(15).
		WithRightMargin(12).
		WithTitle(fmt.Sprintf("Quote #%d", quoteNumber), true).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, "Quote", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Color: accent}),
		text.NewRow(6, fmt.Sprintf("Quote #%d", quoteNumber), props.Text{Size: 10, Align: align.Center}),
		text.NewRow(8, now.Format("1/2/2006"), props.Text{Size: 10, Align: align.Center}),
	)

	if lines := customerLines(items[0].Customer); len(lines) > 0 {
		for _, line := range lines {
			m.AddRows(text.NewRow(5, line, props.Text{Size: 9}))
		}
		m.AddRows(row.New(4))
	}

	m.AddRows(tableHeader())
	for _, item := range items {
		m.AddRows(itemRow(item))
	}

	m.AddRow(9,
		text.NewCol(11, "Total:", props.Text{Top: 2, Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(1, Money(quotes.GrandTotal(items)), props.Text{Top: 2, Size: 10, Style: fontstyle.Bold, Align: align.Right, Color: accent}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render quote %d: %w", quoteNumber, err)
	}
	return doc.GetBytes(), nil
}

func tableHeader() core.Row {
	cell := func(size int, label string) core.Col {
		return text.NewCol(size, label, props.Text{Top: 1.5, Size: 8, Style: fontstyle.Bold})
	}
	return row.New(7).Add(
		cell(1, "Location"),
		cell(2, "Product"),
		cell(3, "Specifications"),
		cell(3, "Dimensions"),
		cell(1, "Qty"),
		cell(1, "Unit"),
		cell(1, "Total"),
	).WithStyle(&props.Cell{BackgroundColor: headerFill})
}

func itemRow(item quotes.Item) core.Row {
	specs := SpecLines(item)
	small := props.Text{Top: 1, Size: 8}

	location := item.Location
	if location == "" {
		location = "-"
	}

	specCol := col.New(3)
	for i, line := range specs {
		specCol = specCol.Add(text.New(line, props.Text{Top: 1 + float64(i)*lineHeight, Size: 8}))
	}

	return row.New(float64(len(specs))*lineHeight+3).Add(
		text.NewCol(1, location, small),
		text.NewCol(2, item.Product, small),
		specCol,
		text.NewCol(3, FormatDimensions(item), small),
		text.NewCol(1, strconv.Itoa(item.Quantity), small),
		text.NewCol(1, Money(decimal.NewFromInt(item.UnitPrice)), small),
		text.NewCol(1, Money(decimal.NewFromInt(item.TotalPrice)), small),
	)
}

func customerLines(c quotes.Customer) []string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Customer", c.Name)
	add("Phone", c.Phone)
	add("Email", c.Email)
	add("Address", c.Address)
	return lines
}

// SpecLines lists the item specification, including the optional fabric and motor prices.
func SpecLines(item quotes.Item) []string {
	lines := []string{
		"Fabric: " + item.Fabric,
		"Valance: " + item.Valance,
		"Color: " + item.ValanceColor,
		"Rail: " + item.BottomRail,
		"Control: " + item.Control,
	}
	if item.FabricPrice != nil && *item.FabricPrice != 0 {
		lines = append(lines, "Fabric Price: "+Money(decimal.NewFromFloat(*item.FabricPrice)))
	}
	if item.MotorPrice != nil && *item.MotorPrice != 0 {
		lines = append(lines, "Motor: "+Money(decimal.NewFromFloat(*item.MotorPrice)))
	}
	return lines
}

// FormatDimensions prints the stored dimensions with the area in square meters.
// Meters are used when both are stored, otherwise inches; N/A when neither pair is complete.
func FormatDimensions(item quotes.Item) string {
	if positive(item.WidthM) && positive(item.HeightM) {
		w, h := *item.WidthM, *item.HeightM
		return fmt.Sprintf("%.3fm x %.3fm (%.4f m²)", w, h, w*h)
	}
	if positive(item.WidthInch) && positive(item.HeightInch) {
		w, h := *item.WidthInch, *item.HeightInch
		area := w * h * pricing.MetersPerInch * pricing.MetersPerInch
		return fmt.Sprintf("%.3f\" x %.3f\" (%.4f m²)", w, h, area)
	}
	return "N/A"
}

// Money formats an amount as dollars with two decimals.
func Money(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}
