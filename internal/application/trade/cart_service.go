package trade

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
)

// CartService manages the pending sale of each session. Carts never move
// stock; availability is checked against the product on every change and
// again at settlement.
type CartService struct {
	store       CartStore
	productRepo catalog.ProductRepository
	settings    SettingsProvider
	display     valueobject.Formatter
}

// NewCartService creates a new CartService
func NewCartService(store CartStore, productRepo catalog.ProductRepository, settings SettingsProvider) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
		settings:    settings,
	}
}

// SetLocalCurrency sets the currency local totals are displayed in
func (s *CartService) SetLocalCurrency(c valueobject.Currency) {
	s.display = valueobject.NewFormatter(c)
}

// Get returns the session's cart
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// AddProduct adds one unit of a product, pricing it if it is new to the cart
func (s *CartService) AddProduct(ctx context.Context, sessionID string, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := cart.AddLine(product, settings); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// SetQuantity changes a line's quantity against the product's current stock
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	available := 0
	if quantity > 0 {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		available = product.Stock
	}
	if err := cart.SetQuantity(productID, quantity, available); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// RemoveLine drops a product from the cart
func (s *CartService) RemoveLine(ctx context.Context, sessionID string, productID uuid.UUID) (*CartResponse, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveLine(productID); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *CartService) load(ctx context.Context, sessionID string) (*trade.Cart, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, sessionID)
}

func (s *CartService) respond(ctx context.Context, cart *trade.Cart) (*CartResponse, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	primaryRate, _ := pricing.EffectiveRates(settings)
	resp := ToCartResponse(cart, primaryRate, s.display)
	return &resp, nil
}

func normalizeSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Session ID is required")
	}
	if len(sessionID) > 128 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Session ID cannot exceed 128 characters")
	}
	return sessionID, nil
}
