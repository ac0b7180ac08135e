package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrLineNotFound  = errors.New("cart line not found")
	ErrConflict      = errors.New("cart changed concurrently")
	ErrQuantityLimit = fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrLineLimit)
	ErrBadQuantity   = fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
)

// QuantityPolicy decides what an update to zero or a negative quantity does.
type QuantityPolicy string

const (
	// QuantityAccept stores the value as given.
	QuantityAccept QuantityPolicy = "accept"
	// QuantityReject fails with ErrBadQuantity.
	QuantityReject QuantityPolicy = "reject"
	// QuantityRemove drops the line.
	QuantityRemove QuantityPolicy = "remove"
)

type Options struct {
	NonPositive QuantityPolicy

	// MaxLineQuantity caps a single line. Zero leaves lines unbounded.
	MaxLineQuantity int32

	// OnMutation, when set, is told about every successful mutation.
	OnMutation func(op string)
}

type Service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) *Service {
	if opts.NonPositive == "" {
		opts.NonPositive = QuantityAccept
	}
	return &Service{
		store: store,
		opts:  opts,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) ([]domain.Line, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.store.Get(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int32, pkg domain.Package) ([]domain.Line, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	pkg.Name = strings.TrimSpace(pkg.Name)

	if userID == "" || productID == "" {
		return nil, ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, ErrBadQuantity
	}

	out, err := s.store.Add(ctx, userID, productID, quantity, pkg, s.opts.MaxLineQuantity)
	if errors.Is(err, domain.ErrLineLimit) {
		return nil, ErrQuantityLimit
	}
	if err != nil {
		return nil, err
	}
	s.record("add")
	return out, nil
}

// UpdateItem replaces a line's quantity. removed is true when the quantity
// policy turned the update into a removal.
func (s *Service) UpdateItem(ctx context.Context, userID, lineID string, quantity int32) (line domain.Line, removed bool, err error) {
	userID = strings.TrimSpace(userID)
	lineID = strings.TrimSpace(lineID)
	if userID == "" || lineID == "" {
		return domain.Line{}, false, ErrInvalidInput
	}

	if quantity <= 0 {
		switch s.opts.NonPositive {
		case QuantityReject:
			return domain.Line{}, false, ErrBadQuantity
		case QuantityRemove:
			return s.removeForUpdate(ctx, userID, lineID)
		}
	}
	if err := s.checkLimit(int64(quantity)); err != nil {
		return domain.Line{}, false, err
	}

	line, err = s.store.Update(ctx, userID, lineID, quantity)
	if err != nil {
		return domain.Line{}, false, err
	}
	s.record("update")
	return line, false, nil
}

func (s *Service) removeForUpdate(ctx context.Context, userID, lineID string) (domain.Line, bool, error) {
	lines, err := s.store.Get(ctx, userID)
	if err != nil {
		return domain.Line{}, false, err
	}
	line, ok := domain.Find(lines, lineID)
	if !ok {
		return domain.Line{}, false, ErrLineNotFound
	}
	if _, err := s.store.Remove(ctx, userID, lineID); err != nil {
		return domain.Line{}, false, err
	}
	s.record("remove")
	return line, true, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) ([]domain.Line, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	out, err := s.store.Remove(ctx, userID, strings.TrimSpace(lineID))
	if err != nil {
		return nil, err
	}
	s.record("remove")
	return out, nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}
	s.record("clear")
	return nil
}

func (s *Service) checkLimit(total int64) error {
	if total > math.MaxInt32 {
		return ErrQuantityLimit
	}
	if s.opts.MaxLineQuantity > 0 && total > int64(s.opts.MaxLineQuantity) {
		return ErrQuantityLimit
	}
	return nil
}

func (s *Service) record(op string) {
	if s.opts.OnMutation != nil {
		s.opts.OnMutation(op)
	}
}
