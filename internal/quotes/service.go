package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/shadequote/internal/apperr"
	"github.com/Simplici0/shadequote/internal/logger"
	"github.com/Simplici0/shadequote/internal/metrics"
	"github.com/Simplici0/shadequote/internal/pricing"
)

// ErrNoItems is returned when a quote is submitted without line items.
var ErrNoItems = errors.New("quote has no items")

// Pricer computes unit prices for line items.
type Pricer interface {
	Calculate(ctx context.Context, in pricing.LineInput) (pricing.Result, error)
}

// Draft is a quote about to be saved: the customer plus at least one item.
type Draft struct {
	Customer Customer
	Items    []ItemDraft
}

// Created describes a freshly saved quote.
type Created struct {
	QuoteNumber int64   `json:"quote_number"`
	ItemIDs     []int64 `json:"item_ids"`
	TotalPrice  int64   `json:"total_price"`
	Items       []Item  `json:"items"`
}

type Service struct {
	repo     *Repository
	pricer   Pricer
	metrics  *metrics.Recorder
	log      *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo *Repository, pricer Pricer, rec *metrics.Recorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		pricer:   pricer,
		metrics:  rec,
		log:      log,
		validate: apperr.NewValidator(),
		now:      time.Now,
	}
}

// Price validates a draft and returns its server-side price.
func (s *Service) Price(ctx context.Context, draft ItemDraft) (pricing.Result, error) {
	if err := s.validate.StructCtx(ctx, draft); err != nil {
		return pricing.Result{}, apperr.FromValidation(err)
	}
	res, err := s.pricer.Calculate(ctx, draft.LineInput())
	s.metrics.IncCalculation(outcomeOf(err))
	if err != nil {
		return pricing.Result{}, apperr.FromPricing(err)
	}
	return res, nil
}

// Create prices every draft and stores them under one new quote number.
// Prices sent by clients are never trusted; each item is priced here.
func (s *Service) Create(ctx context.Context, draft Draft) (Created, error) {
	drafts := draft.Items
	if len(drafts) == 0 {
		return Created{}, apperr.Wrap(apperr.CodeValidation, ErrNoItems, "At least one item is required")
	}

	items := make([]Item, 0, len(drafts))
	var total int64
	for i, d := range drafts {
		res, err := s.Price(ctx, d)
		if err != nil {
			return Created{}, itemError(i, err)
		}
		item := itemFromDraft(draft.Customer, d)
		item.UnitPrice = res.UnitPrice
		item.TotalPrice = res.UnitPrice * int64(d.Quantity)
		total += item.TotalPrice
		items = append(items, item)
	}

	createdAt := s.now()
	number, ids, err := s.repo.Insert(ctx, items, createdAt)
	if err != nil {
		return Created{}, apperr.Wrap(apperr.CodeInternal, err, "could not save quote")
	}
	stamp := createdAt.UTC().Format(time.RFC3339)
	for i := range items {
		items[i].ID = ids[i]
		items[i].QuoteNumber = number
		items[i].CreatedAt = stamp
	}
	s.metrics.IncQuoteSaved(len(items))

	ctx = s.log.WithFields(ctx, map[string]any{"quote_number": number, "items": len(items), "total_price": total})
	s.log.Info(ctx, "quote saved")

	return Created{QuoteNumber: number, ItemIDs: ids, TotalPrice: total, Items: items}, nil
}

func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	p, err := s.repo.ListPage(ctx, page, limit)
	if err != nil {
		return Page{}, apperr.Wrap(apperr.CodeInternal, err, "could not list quotes")
	}
	return p, nil
}

func (s *Service) Items(ctx context.Context, quoteNumber int64) ([]Item, error) {
	items, err := s.repo.Items(ctx, quoteNumber)
	return items, lookupError(err)
}

func (s *Service) Item(ctx context.Context, id int64) (Item, error) {
	item, err := s.repo.Item(ctx, id)
	return item, lookupError(err)
}

func (s *Service) Delete(ctx context.Context, quoteNumber int64) error {
	deleted, err := s.repo.Delete(ctx, quoteNumber)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "could not delete quote")
	}
	if !deleted {
		return apperr.Wrap(apperr.CodeNotFound, ErrNotFound, "Quote not found")
	}
	s.log.Info(s.log.WithField(ctx, "quote_number", quoteNumber), "quote deleted")
	return nil
}

// KeepAlive touches the database so hosted instances stay warm.
func (s *Service) KeepAlive(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "database unavailable")
	}
	return nil
}

func itemFromDraft(customer Customer, d ItemDraft) Item {
	return Item{
		Customer:         customer,
		Location:         d.Location,
		Product:          d.Product,
		Valance:          d.Valance,
		ValanceColor:     d.ValanceColor,
		BottomRail:       d.BottomRail,
		Control:          d.Control,
		Fabric:           d.Fabric,
		FabricPrice:      positiveOrNil(d.FabricPrice),
		MotorPrice:       positiveOrNil(d.MotorPrice),
		WidthInch:        positiveOrNil(d.WidthInch),
		HeightInch:       positiveOrNil(d.HeightInch),
		WidthM:           positiveOrNil(d.WidthM),
		HeightM:          positiveOrNil(d.HeightM),
		InstallationType: d.InstallationType,
		Rolling:          d.Rolling,
		Quantity:         d.Quantity,
	}
}

func itemError(index int, err error) error {
	if typed := apperr.As(err); typed != nil {
		return apperr.Wrap(typed.Code(), err, fmt.Sprintf("Item %d: %s", index+1, typed.Message())).
			WithDetails(typed.Details())
	}
	return fmt.Errorf("item %d: %w", index+1, err)
}

func lookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, "Quote not found")
	default:
		return apperr.Wrap(apperr.CodeInternal, err, "could not load quote")
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, pricing.ErrMissingDimension):
		return metrics.OutcomeMissingDimension
	case errors.Is(err, pricing.ErrConfigUnavailable):
		return metrics.OutcomeConfigUnavailable
	default:
		return metrics.OutcomeError
	}
}
