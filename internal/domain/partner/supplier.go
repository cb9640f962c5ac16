// Package partner holds suppliers and their price history.
package partner

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CatalogEntry is the last known cost of a SKU from a supplier
type CatalogEntry struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	LastCost  decimal.Decimal `json:"last_cost"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Catalog is stored as a JSON column
type Catalog []CatalogEntry

// Value implements driver.Valuer
func (c Catalog) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (c *Catalog) Scan(value any) error {
	if value == nil {
		*c = Catalog{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan Catalog: unsupported type")
	}
	if len(raw) == 0 {
		*c = Catalog{}
		return nil
	}
	return json.Unmarshal(raw, c)
}

// Supplier is matched by name, case-insensitively
type Supplier struct {
	shared.BaseAggregateRoot
	Name    string
	Phone   string
	Email   string
	Catalog Catalog
}

// NewSupplier creates a supplier with an empty catalog
func NewSupplier(name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier name cannot exceed 200 characters")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Catalog:           Catalog{},
	}, nil
}

// SetContact updates phone and email
func (s *Supplier) SetContact(phone, email string) {
	s.Phone = strings.TrimSpace(phone)
	s.Email = strings.TrimSpace(email)
	s.Touch()
}

// UpsertCatalogEntry records the latest cost of a SKU. An existing entry is
// replaced in place; a new SKU is appended.
func (s *Supplier) UpsertCatalogEntry(sku, name string, cost decimal.Decimal, at time.Time) {
	sku = catalog.NormalizeSKU(sku)
	if at.IsZero() {
		at = time.Now()
	}
	for i := range s.Catalog {
		if s.Catalog[i].SKU == sku {
			s.Catalog[i].LastCost = cost
			if name != "" {
				s.Catalog[i].Name = name
			}
			s.Catalog[i].UpdatedAt = at
			s.Touch()
			return
		}
	}
	s.Catalog = append(s.Catalog, CatalogEntry{SKU: sku, Name: name, LastCost: cost, UpdatedAt: at})
	s.Touch()
}

// CatalogEntryFor returns the entry for a SKU
func (s *Supplier) CatalogEntryFor(sku string) (CatalogEntry, bool) {
	sku = catalog.NormalizeSKU(sku)
	for _, e := range s.Catalog {
		if e.SKU == sku {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// HasName compares names case-insensitively
func (s *Supplier) HasName(name string) bool {
	return strings.EqualFold(s.Name, strings.TrimSpace(name))
}
