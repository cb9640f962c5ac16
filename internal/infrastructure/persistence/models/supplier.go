package models

import (
	"github.com/retailcore/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier aggregate
type SupplierModel struct {
	AggregateModel
	Name    string          `gorm:"type:varchar(200);not null"`
	NameKey string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone   string          `gorm:"type:varchar(50)"`
	Email   string          `gorm:"type:varchar(200)"`
	Catalog partner.Catalog `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	catalog := m.Catalog
	if catalog == nil {
		catalog = partner.Catalog{}
	}
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
		Catalog:           catalog,
	}
}

// FromDomain populates the model from a domain Supplier
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.NameKey = SupplierKey(s.Name)
	m.Phone = s.Phone
	m.Email = s.Email
	m.Catalog = s.Catalog
}

// SupplierModelFromDomain creates a model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
