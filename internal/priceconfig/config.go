package priceconfig

import (
	"fmt"
	"strings"

	"github.com/Simplici0/shadequote/internal/pricing"
)

const (
	SectionDiscount           = "discount"
	SectionProductPrices      = "productPrices"
	SectionValancePrices      = "valancePrices"
	SectionValanceColorPrices = "valanceColorPrices"
	SectionBottomRailPrices   = "bottomRailPrices"
	SectionControlPrices      = "controlPrices"
)

// Sections lists every configuration section in display order.
var Sections = []string{
	SectionDiscount,
	SectionProductPrices,
	SectionValancePrices,
	SectionValanceColorPrices,
	SectionBottomRailPrices,
	SectionControlPrices,
}

// Config is the full, editable price configuration. Only the discount, valance color and
// control sections feed the price formula; the others populate selection lists.
type Config struct {
	Discount           Table `json:"discount"`
	ProductPrices      Table `json:"productPrices"`
	ValancePrices      Table `json:"valancePrices"`
	ValanceColorPrices Table `json:"valanceColorPrices"`
	BottomRailPrices   Table `json:"bottomRailPrices"`
	ControlPrices      Table `json:"controlPrices"`
}

// Options holds the selectable option names for each section.
type Options struct {
	Products      []string `json:"products"`
	Valances      []string `json:"valances"`
	ValanceColors []string `json:"valanceColors"`
	BottomRails   []string `json:"bottomRails"`
	Controls      []string `json:"controls"`
}

// Default is the configuration the shop ships with.
func Default() Config {
	return Config{
		Discount: Table{{Name: "Discount", Price: 45}},
		ProductPrices: Table{
			{Name: "Roller Shades"},
			{Name: "Zebra Shades"},
			{Name: "Honey Comb Shades"},
		},
		ValancePrices: Table{
			{Name: "V2"},
			{Name: "S2"},
			{Name: "25"},
			{Name: "38"},
			{Name: "45"},
		},
		ValanceColorPrices: Table{
			{Name: "White"},
			{Name: "Gray"},
			{Name: "Black"},
			{Name: "Beige"},
			{Name: "Wrapped", Price: 30},
		},
		BottomRailPrices: Table{
			{Name: "Type A"},
			{Name: "Type C"},
			{Name: "None"},
		},
		ControlPrices: Table{
			{Name: "bead chain", Price: 20},
			{Name: "cordless"},
			{Name: "battery-motorized"},
			{Name: "wired-motorized"},
		},
	}
}

func (c *Config) section(name string) *Table {
	switch name {
	case SectionDiscount:
		return &c.Discount
	case SectionProductPrices:
		return &c.ProductPrices
	case SectionValancePrices:
		return &c.ValancePrices
	case SectionValanceColorPrices:
		return &c.ValanceColorPrices
	case SectionBottomRailPrices:
		return &c.BottomRailPrices
	case SectionControlPrices:
		return &c.ControlPrices
	}
	return nil
}

// ValidationError reports the offending section.
type ValidationError struct {
	Section string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Section, e.Reason)
}

// Validate requires every section to be present and every option to be named.
func (c Config) Validate() error {
	for _, name := range Sections {
		table := *c.section(name)
		if table == nil {
			return &ValidationError{Section: name, Reason: "is required"}
		}
		for _, e := range table {
			if strings.TrimSpace(e.Name) == "" {
				return &ValidationError{Section: name, Reason: "contains an option without a name"}
			}
		}
	}
	return nil
}

// DiscountPercentage is the value of the first discount entry, or 0 when there is none.
func (c Config) DiscountPercentage() float64 {
	if len(c.Discount) == 0 {
		return 0
	}
	return c.Discount[0].Price
}

// Snapshot extracts the parameters consumed by the price formula.
func (c Config) Snapshot() pricing.Snapshot {
	return pricing.Snapshot{
		DiscountPercentage: c.DiscountPercentage(),
		ValanceColorPrices: c.ValanceColorPrices.Map(),
		ControlPrices:      c.ControlPrices.Map(),
	}
}

// Options lists the selectable names of each section.
func (c Config) Options() Options {
	return Options{
		Products:      c.ProductPrices.Names(),
		Valances:      c.ValancePrices.Names(),
		ValanceColors: c.ValanceColorPrices.Names(),
		BottomRails:   c.BottomRailPrices.Names(),
		Controls:      c.ControlPrices.Names(),
	}
}
