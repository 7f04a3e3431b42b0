package pricing

import (
	"context"
	"errors"
	"fmt"
)

// ErrConfigUnavailable is returned when the configuration store could not be read.
var ErrConfigUnavailable = errors.New("pricing configuration unavailable")

// ConfigProvider supplies a fresh Snapshot for every calculation.
// A nil snapshot with a nil error means nothing is configured yet.
type ConfigProvider interface {
	PricingSnapshot(ctx context.Context) (*Snapshot, error)
}

// ConfigProviderFunc adapts a function to ConfigProvider.
type ConfigProviderFunc func(ctx context.Context) (*Snapshot, error)

func (f ConfigProviderFunc) PricingSnapshot(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// StaticConfig always returns the same snapshot.
func StaticConfig(snap Snapshot) ConfigProvider {
	return ConfigProviderFunc(func(context.Context) (*Snapshot, error) {
		return &snap, nil
	})
}

// Engine computes unit prices. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config ConfigProvider
}

// NewEngine returns an Engine reading its parameters from provider.
func NewEngine(provider ConfigProvider) *Engine {
	return &Engine{config: provider}
}

// Calculate resolves the billable area, evaluates the formula and rounds the unit price.
// Total price (unit price times quantity) is left to the caller.
func (e *Engine) Calculate(ctx context.Context, in LineInput) (Result, error) {
	snap, err := e.snapshot(ctx)
	if err != nil {
		return Result{}, err
	}

	width, height, err := ResolveDimensions(in)
	if err != nil {
		return Result{}, err
	}
	raw := width * height

	breakdown := evaluate(floorArea(raw), snap, in.FabricPrice, in.MotorPrice, in.ValanceColor, in.Control)
	breakdown.WidthMeters = width
	breakdown.HeightMeters = height
	breakdown.RawArea = raw

	return Result{
		UnitPrice: Round(breakdown.RawUnitPrice),
		Breakdown: breakdown,
	}, nil
}

// UnitPrice is Calculate without the breakdown.
func (e *Engine) UnitPrice(ctx context.Context, in LineInput) (int64, error) {
	res, err := e.Calculate(ctx, in)
	if err != nil {
		return 0, err
	}
	return res.UnitPrice, nil
}

func (e *Engine) snapshot(ctx context.Context) (Snapshot, error) {
	if e == nil || e.config == nil {
		return DefaultSnapshot(), nil
	}
	snap, err := e.config.PricingSnapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	if snap == nil {
		return DefaultSnapshot(), nil
	}
	return *snap, nil
}
