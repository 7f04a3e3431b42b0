package pricing

import "math"

// Snapshot is the read-only view of the pricing parameters used by one calculation.
type Snapshot struct {
	DiscountPercentage float64
	ValanceColorPrices map[string]float64
	ControlPrices      map[string]float64
}

// DefaultSnapshot is used whenever no configuration is available: no discount and no surcharges.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		ValanceColorPrices: map[string]float64{},
		ControlPrices:      map[string]float64{},
	}
}

// LineInput represents the price-relevant attributes of one quote line item.
type LineInput struct {
	WidthInches  float64
	WidthMeters  float64
	HeightInches float64
	HeightMeters float64
	ValanceColor string
	Control      string
	FabricPrice  float64
	MotorPrice   float64
	Quantity     int
}

// Breakdown contains the intermediate values of the price formula.
type Breakdown struct {
	WidthMeters         float64 `json:"width_m"`
	HeightMeters        float64 `json:"height_m"`
	RawArea             float64 `json:"raw_area"`
	BillableArea        float64 `json:"billable_area"`
	DiscountMultiplier  float64 `json:"discount_multiplier"`
	FabricWithDiscount  float64 `json:"fabric_with_discount"`
	ValanceColorPrice   float64 `json:"valance_color_price"`
	PricePerSquareMeter float64 `json:"price_per_square_meter"`
	AreaCost            float64 `json:"area_cost"`
	ControlPrice        float64 `json:"control_price"`
	AdditionalCosts     float64 `json:"additional_costs"`
	RawUnitPrice        float64 `json:"raw_unit_price"`
}

// Result groups the rounded unit price with the breakdown that produced it.
type Result struct {
	UnitPrice int64
	Breakdown Breakdown
}

// Evaluate applies the price formula to an already resolved billable area.
// The discount only reduces the fabric price; the valance color surcharge and
// the flat control and motor surcharges are never discounted.
func Evaluate(billableArea float64, snap Snapshot, fabricPrice, motorPrice float64, valanceColor, control string) float64 {
	return evaluate(billableArea, snap, fabricPrice, motorPrice, valanceColor, control).RawUnitPrice
}

func evaluate(billableArea float64, snap Snapshot, fabricPrice, motorPrice float64, valanceColor, control string) Breakdown {
	valanceColorPrice := snap.ValanceColorPrices[valanceColor]
	controlPrice := snap.ControlPrices[control]

	discountMultiplier := snap.DiscountPercentage / 100.0
	fabricWithDiscount := fabricPrice * discountMultiplier
	pricePerSquareMeter := fabricWithDiscount + valanceColorPrice
	areaCost := pricePerSquareMeter * billableArea
	additionalCosts := controlPrice + motorPrice

	return Breakdown{
		BillableArea:        billableArea,
		DiscountMultiplier:  discountMultiplier,
		FabricWithDiscount:  fabricWithDiscount,
		ValanceColorPrice:   valanceColorPrice,
		PricePerSquareMeter: pricePerSquareMeter,
		AreaCost:            areaCost,
		ControlPrice:        controlPrice,
		AdditionalCosts:     additionalCosts,
		RawUnitPrice:        areaCost + additionalCosts,
	}
}

// Round rounds half up (ties go toward positive infinity).
func Round(value float64) int64 {
	floor := math.Floor(value)
	if value-floor >= 0.5 {
		floor++
	}
	return int64(floor)
}
