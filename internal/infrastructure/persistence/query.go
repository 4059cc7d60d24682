package persistence

import (
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const maxPageSize = 200

// Allowed sort fields per table. Anything else falls back to created_at.
var (
	orderSortFields = map[string]bool{
		"created_at": true,
		"updated_at": true,
		"status":     true,
		"total":      true,
	}
	productSortFields = map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"category":   true,
		"price":      true,
		"stock":      true,
	}
	postSortFields = map[string]bool{
		"created_at": true,
		"title":      true,
		"category":   true,
	}
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (the default)
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies ordering, offset and limit from the filter. Ties on the
// sort column are broken by id so pages are stable.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id DESC")

	size := filter.PageSize
	if size <= 0 {
		size = shared.DefaultFilter().PageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return query.Offset(filter.Offset()).Limit(size)
}

// likePattern builds a case-insensitive LIKE pattern usable on both
// postgres and sqlite (callers compare against LOWER(column)).
func likePattern(search string) string {
	s := strings.ToLower(strings.TrimSpace(search))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}

func stringFilter(filter shared.Filter, key string) string {
	if filter.Filters == nil {
		return ""
	}
	v, _ := filter.Filters[key].(string)
	return strings.TrimSpace(v)
}
