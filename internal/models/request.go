package models

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// BatchDeleteRequest selects products for deletion. Confirm must be true for
// anything to happen.
type BatchDeleteRequest struct {
	IDs     []int64 `json:"ids" binding:"required"`
	Confirm bool    `json:"confirm"`
}

// ListingRequest is the query of the product listing route. A filter key
// present with an empty value clears that filter.
type ListingRequest struct {
	ID        *int64  `form:"id"`
	Name      *string `form:"name"`
	Stall     *string `form:"stall"`
	FromDate  *string `form:"fromDate"`
	Source    *string `form:"source"`
	SortBy    *string `form:"sortBy"`
	SortOrder *string `form:"sortOrder"`
	Page      int     `form:"page"`
}

// Filters returns the filter part of the request.
func (r ListingRequest) Filters() FilterUpdate {
	return FilterUpdate{
		ID:        r.ID,
		Name:      r.Name,
		Stall:     r.Stall,
		FromDate:  r.FromDate,
		Source:    r.Source,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}
}
