package persistence

import (
	"strings"

	"github.com/retailcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder returns ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted and
// defaultField otherwise. Column names are never taken from input verbatim.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields are the sortable product columns
var ProductSortFields = map[string]bool{
	"sku":        true,
	"name":       true,
	"category":   true,
	"stock":      true,
	"created_at": true,
	"updated_at": true,
}

// SaleSortFields are the sortable sale columns
var SaleSortFields = map[string]bool{
	"date":       true,
	"number":     true,
	"total_usd":  true,
	"created_at": true,
}

// InvoiceSortFields are the sortable invoice columns
var InvoiceSortFields = map[string]bool{
	"date_issue": true,
	"date_due":   true,
	"number":     true,
	"total_usd":  true,
	"created_at": true,
}

// SupplierSortFields are the sortable supplier columns
var SupplierSortFields = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// paginate applies the whitelisted order and the page window. The id is a
// tie breaker so pages are stable.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir).Order("id " + dir)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern for LOWER(column)
func likePattern(search string) string {
	search = strings.ToLower(strings.TrimSpace(search))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}
