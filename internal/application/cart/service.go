package cart

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/cart"
	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
)

// Cart mutation names used for logging and metrics
const (
	OpAdd    = "add"
	OpSet    = "set"
	OpAdjust = "adjust"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Recorder receives cart activity for metrics
type Recorder interface {
	RecordCartMutation(ctx context.Context, operation string)
	RecordCheckout(ctx context.Context, itemCount int, total decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) RecordCartMutation(context.Context, string)           {}
func (nopRecorder) RecordCheckout(context.Context, int, decimal.Decimal) {}

// Service runs cart operations against a session and persists the ledger
// after every mutation
type Service struct {
	store    cart.SnapshotStore
	logger   *zap.Logger
	recorder Recorder
	locale   string
}

// NewService creates a new cart Service
func NewService(store cart.SnapshotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		logger:   logger,
		recorder: nopRecorder{},
		locale:   valueobject.DefaultLocale,
	}
}

// WithRecorder sets the metrics recorder
func (s *Service) WithRecorder(recorder Recorder) *Service {
	if recorder != nil {
		s.recorder = recorder
	}
	return s
}

// WithLocale sets the locale used for amount labels
func (s *Service) WithLocale(locale string) *Service {
	if locale != "" {
		s.locale = locale
	}
	return s
}

// Cart returns the current cart of a session
func (s *Service) Cart(sess *Session) *CartResponse {
	var resp *CartResponse
	_ = sess.Do(func(l *cart.Ledger) error {
		resp = ToCartResponse(sess.ID, l, s.locale)
		return nil
	})
	return resp
}

// Totals returns the derived totals of a session's cart
func (s *Service) Totals(sess *Session) TotalsResponse {
	var resp TotalsResponse
	_ = sess.Do(func(l *cart.Ledger) error {
		resp = ToTotalsResponse(l.Totals(), s.locale)
		return nil
	})
	return resp
}

// AddItem adds quantity units of a product from the session's catalog.
// Adding a product already in the cart increases its line.
func (s *Service) AddItem(ctx context.Context, sess *Session, productID string, quantity int) (*CartResponse, error) {
	productID = strings.TrimSpace(productID)
	product, ok := sess.Registry.Find(productID)
	if !ok {
		return nil, catalog.NewProductNotFoundError(productID)
	}
	ref := cart.ProductRef{
		ID:          product.ID,
		DisplayName: product.DisplayName,
		UnitPrice:   product.Price,
	}
	return s.mutate(ctx, sess, OpAdd, func(l *cart.Ledger) error {
		_, err := l.Add(ref, quantity)
		return err
	})
}

// SetQuantity sets the quantity of a line, clamped to at least 1
func (s *Service) SetQuantity(ctx context.Context, sess *Session, index, quantity int) (*CartResponse, error) {
	return s.mutate(ctx, sess, OpSet, func(l *cart.Ledger) error {
		_, err := l.SetQuantity(index, quantity)
		return err
	})
}

// SetQuantityInput sets a line quantity from free-form input. Anything that
// does not read as a positive integer becomes 1.
func (s *Service) SetQuantityInput(ctx context.Context, sess *Session, index int, raw string) (*CartResponse, error) {
	return s.SetQuantity(ctx, sess, index, valueobject.ParseQuantityInput(raw))
}

// SetQuantityJSON sets a line quantity from a JSON number or string
func (s *Service) SetQuantityJSON(ctx context.Context, sess *Session, index int, raw json.RawMessage) (*CartResponse, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	return s.SetQuantityInput(ctx, sess, index, text)
}

// AdjustQuantity increments or decrements a line by one. Decrementing a
// line at 1 leaves it at 1.
func (s *Service) AdjustQuantity(ctx context.Context, sess *Session, index, delta int) (*CartResponse, error) {
	return s.mutate(ctx, sess, OpAdjust, func(l *cart.Ledger) error {
		_, err := l.AdjustQuantity(index, delta)
		return err
	})
}

// RemoveLine removes a line from the cart
func (s *Service) RemoveLine(ctx context.Context, sess *Session, index int) (*CartResponse, error) {
	return s.mutate(ctx, sess, OpRemove, func(l *cart.Ledger) error {
		_, err := l.RemoveLine(index)
		return err
	})
}

// Clear empties the cart. Callers are responsible for having obtained the
// visitor's confirmation.
func (s *Service) Clear(ctx context.Context, sess *Session) (*CartResponse, error) {
	return s.mutate(ctx, sess, OpClear, func(l *cart.Ledger) error {
		l.Clear()
		return nil
	})
}

// Checkout completes a simulated purchase and empties the cart
func (s *Service) Checkout(ctx context.Context, sess *Session) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "checkout", telemetry.WithSessionID(sess.ID))
	defer span.End()

	var receipt *cart.Receipt
	err := sess.Do(func(l *cart.Ledger) error {
		var err error
		receipt, err = l.Checkout()
		if err != nil {
			return err
		}
		return s.persist(ctx, sess.ID, l)
	})
	if receipt == nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "cart.item_count", receipt.ItemCount, "cart.total", receipt.Total.String())

	if err != nil {
		// the cart is already empty in memory; only the stored copy is stale
		s.logger.Error("Checkout not persisted",
			zap.String("session_id", sess.ID),
			zap.String("receipt_id", receipt.ID.String()),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.recorder.RecordCheckout(ctx, receipt.ItemCount, receipt.Total)
	s.logger.Info("Checkout completed",
		zap.String("session_id", sess.ID),
		zap.String("receipt_id", receipt.ID.String()),
		zap.Int("item_count", receipt.ItemCount),
		zap.String("total", receipt.Total.String()),
	)
	return ToReceiptResponse(receipt, s.locale), nil
}

func (s *Service) mutate(ctx context.Context, sess *Session, op string, fn func(l *cart.Ledger) error) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", op, telemetry.WithSessionID(sess.ID))
	defer span.End()

	var resp *CartResponse
	err := sess.Do(func(l *cart.Ledger) error {
		if err := fn(l); err != nil {
			return err
		}
		resp = ToCartResponse(sess.ID, l, s.locale)
		s.recorder.RecordCartMutation(ctx, op)
		return s.persist(ctx, sess.ID, l)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// persist writes the full snapshot. A failed write leaves the in-memory
// ledger mutated.
func (s *Service) persist(ctx context.Context, sessionID string, l *cart.Ledger) error {
	data, err := cart.EncodeSnapshot(l)
	if err == nil {
		err = s.store.Set(ctx, cart.SnapshotKey(sessionID), data)
	}
	if err != nil {
		s.logger.Error("Failed to persist cart",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return shared.NewDomainError(shared.CodeInternal, "Failed to save cart")
	}
	return nil
}
