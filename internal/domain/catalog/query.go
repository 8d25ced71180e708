package catalog

import (
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// Query holds the two filter parameters of a catalog load
type Query struct {
	CategoryID   int `json:"categoryId"`
	ApprovedLine int `json:"approvedLine"`
}

// NewQuery validates both parameters. Zero is never a valid value.
func NewQuery(categoryID, approvedLine int) (Query, error) {
	if categoryID == 0 || approvedLine == 0 {
		return Query{}, NewValidationError("category id and approved line must be non-zero integers")
	}
	return Query{CategoryID: categoryID, ApprovedLine: approvedLine}, nil
}

// ParseQuery builds a Query from raw form or query-string input.
// Each value is read up to its first non-digit, so "5" and "5a" are both 5
// while "" and "abc" are rejected.
func ParseQuery(rawCategoryID, rawApprovedLine string) (Query, error) {
	categoryID, ok := valueobject.ParseLeadingInt(rawCategoryID)
	if !ok {
		return Query{}, NewValidationError("category id must be an integer")
	}
	approvedLine, ok := valueobject.ParseLeadingInt(rawApprovedLine)
	if !ok {
		return Query{}, NewValidationError("approved line must be an integer")
	}
	return NewQuery(categoryID, approvedLine)
}
