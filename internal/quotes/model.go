package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/shadequote/internal/pricing"
)

// FirstQuoteNumber is the number given to the very first quote.
const FirstQuoteNumber int64 = 10001

// Customer holds the contact details shared by every item of a quote.
type Customer struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ItemDraft is an unsaved line item as entered by staff. Zero numeric values mean "not given".
type ItemDraft struct {
	Location         string  `json:"location"`
	Product          string  `json:"product" validate:"required"`
	Valance          string  `json:"valance" validate:"required"`
	ValanceColor     string  `json:"valance_color" validate:"required"`
	BottomRail       string  `json:"bottom_rail" validate:"required"`
	Control          string  `json:"control" validate:"required"`
	Fabric           string  `json:"fabric" validate:"required"`
	FabricPrice      float64 `json:"fabric_price"`
	MotorPrice       float64 `json:"motor_price"`
	WidthInch        float64 `json:"width_inch"`
	HeightInch       float64 `json:"height_inch"`
	WidthM           float64 `json:"width_m"`
	HeightM          float64 `json:"height_m"`
	InstallationType string  `json:"installation_type"`
	Rolling          string  `json:"rolling"`
	Quantity         int     `json:"quantity" validate:"required,min=1"`
}

// LineInput extracts the price-relevant attributes.
func (d ItemDraft) LineInput() pricing.LineInput {
	return pricing.LineInput{
		WidthInches:  d.WidthInch,
		WidthMeters:  d.WidthM,
		HeightInches: d.HeightInch,
		HeightMeters: d.HeightM,
		ValanceColor: d.ValanceColor,
		Control:      d.Control,
		FabricPrice:  d.FabricPrice,
		MotorPrice:   d.MotorPrice,
		Quantity:     d.Quantity,
	}
}

// Item is a persisted quote line item.
type Item struct {
	ID          int64 `json:"id"`
	QuoteNumber int64 `json:"quote_number"`
	Customer
	Location         string   `json:"location"`
	Product          string   `json:"product"`
	Valance          string   `json:"valance"`
	ValanceColor     string   `json:"valance_color"`
	BottomRail       string   `json:"bottom_rail"`
	Control          string   `json:"control"`
	Fabric           string   `json:"fabric"`
	FabricPrice      *float64 `json:"fabric_price"`
	MotorPrice       *float64 `json:"motor_price"`
	WidthInch        *float64 `json:"width_inch"`
	HeightInch       *float64 `json:"height_inch"`
	WidthM           *float64 `json:"width_m"`
	HeightM          *float64 `json:"height_m"`
	InstallationType string   `json:"installation_type"`
	Rolling          string   `json:"rolling"`
	Quantity         int      `json:"quantity"`
	UnitPrice        int64    `json:"unit_price"`
	TotalPrice       int64    `json:"total_price"`
	CreatedAt        string   `json:"created_at"`
}

// Summary is one row of the quote listing: all items of a quote rolled up.
type Summary struct {
	QuoteNumber     int64  `json:"quote_number"`
	CustomerName    string `json:"customer_name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	ItemCount       int    `json:"item_count"`
	TotalAmount     int64  `json:"total_amount"`
	ProductsSummary string `json:"products_summary"`
	CreatedAt       string `json:"created_at"`
}

// Page is one page of quote summaries.
type Page struct {
	Quotes      []Summary `json:"quotes"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalCount  int       `json:"totalCount"`
	HasMore     bool      `json:"hasMore"`
}

// GrandTotal sums the item totals.
func GrandTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromInt(item.TotalPrice))
	}
	return total
}
