package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/costerbox/backend/internal/domain/shared"
)

// applyFilter applies pagination and sorting to a query. The sort field is
// validated against a per-entity whitelist to keep user input out of SQL.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedSortFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", field, dir))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
