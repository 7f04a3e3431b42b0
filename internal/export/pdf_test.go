package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/shadequote/internal/quotes"
)

func ptr(v float64) *float64 { return &v }

func sampleItems() []quotes.Item {
	return []quotes.Item{
		{
			ID:           1,
			QuoteNumber:  10001,
			Customer:     quotes.Customer{Name: "Ana Ruiz", Phone: "555-0100"},
			Location:     "Kitchen",
			Product:      "Roller",
			Valance:      "Wrapped",
			ValanceColor: "White",
			BottomRail:   "Exposed",
			Control:      "Cordless",
			Fabric:       "Blackout",
			FabricPrice:  ptr(100),
			WidthM:       ptr(2),
			HeightM:      ptr(1),
			Quantity:     3,
			UnitPrice:    125,
			TotalPrice:   375,
		},
		{
			ID:           2,
			QuoteNumber:  10001,
			Product:      "Sheer",
			Valance:      "Square",
			ValanceColor: "Gray",
			BottomRail:   "Wrapped",
			Control:      "Motorized",
			Fabric:       "Linen",
			MotorPrice:   ptr(80.5),
			WidthInch:    ptr(40),
			HeightInch:   ptr(60),
			Quantity:     1,
			UnitPrice:    96,
			TotalPrice:   96,
		},
	}
}

func TestQuotePDFRendersDocument(t *testing.T) {
	out, err := QuotePDF(10001, sampleItems(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 500)
}

func TestQuotePDFRequiresItems(t *testing.T) {
	_, err := QuotePDF(10001, nil, time.Now())
	require.ErrorIs(t, err, quotes.ErrNotFound)
}

func TestFormatDimensions(t *testing.T) {
	items := sampleItems()

	assert.Equal(t, "2.000m x 1.000m (2.0000 m²)", FormatDimensions(items[0]))
	assert.Equal(t, "40.000\" x 60.000\" (1.5484 m²)", FormatDimensions(items[1]))
	assert.Equal(t, "N/A", FormatDimensions(quotes.Item{WidthM: ptr(2)}))
}

func TestSpecLinesIncludeOptionalPrices(t *testing.T) {
	items := sampleItems()

	assert.Equal(t, []string{
		"Fabric: Blackout",
		"Valance: Wrapped",
		"Color: White",
		"Rail: Exposed",
		"Control: Cordless",
		"Fabric Price: $100.00",
	}, SpecLines(items[0]))
	assert.Contains(t, SpecLines(items[1]), "Motor: $80.50")
	assert.Len(t, SpecLines(items[1]), 6)
}

func TestCustomerLinesSkipEmptyFields(t *testing.T) {
	assert.Equal(t, []string{"Customer: Ana Ruiz", "Phone: 555-0100"}, customerLines(sampleItems()[0].Customer))
	assert.Empty(t, customerLines(quotes.Customer{}))
}

func TestMoneyAndFilename(t *testing.T) {
	assert.Equal(t, "$471.00", Money(quotes.GrandTotal(sampleItems())))
	assert.Equal(t, "$0.10", Money(decimal.RequireFromString("0.1")))
	assert.Equal(t, "Quote_10001.pdf", Filename(10001))
}
