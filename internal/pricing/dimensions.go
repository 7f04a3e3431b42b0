package pricing

import (
	"errors"
	"fmt"
)

const (
	// MetersPerInch is the fixed conversion factor for imperial dimensions.
	MetersPerInch = 0.0254
	// MinBillableArea is the smallest area, in square meters, an item is billed for.
	MinBillableArea = 1.0
)

// ErrMissingDimension is returned when a side has neither a positive metric nor imperial value.
var ErrMissingDimension = errors.New("missing dimension")

// DimensionError names the side whose dimension could not be resolved.
type DimensionError struct {
	Side string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("missing dimension: %s requires a positive value in meters or inches", e.Side)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrMissingDimension
}

// ResolveDimensions returns width and height in meters. Meters win over inches when both are positive.
func ResolveDimensions(in LineInput) (widthMeters, heightMeters float64, err error) {
	widthMeters, ok := toMeters(in.WidthMeters, in.WidthInches)
	if !ok {
		return 0, 0, &DimensionError{Side: "width"}
	}
	heightMeters, ok = toMeters(in.HeightMeters, in.HeightInches)
	if !ok {
		return 0, 0, &DimensionError{Side: "height"}
	}
	return widthMeters, heightMeters, nil
}

// BillableArea returns the area in square meters, floored at MinBillableArea.
func BillableArea(in LineInput) (float64, error) {
	width, height, err := ResolveDimensions(in)
	if err != nil {
		return 0, err
	}
	return floorArea(width * height), nil
}

func toMeters(meters, inches float64) (float64, bool) {
	if meters > 0 {
		return meters, true
	}
	if inches > 0 {
		return inches * MetersPerInch, true
	}
	return 0, false
}

func floorArea(raw float64) float64 {
	if raw < MinBillableArea {
		return MinBillableArea
	}
	return raw
}
