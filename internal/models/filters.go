package models

// OpportunityFilter holds catalog search criteria. Zero values mean
// "no constraint".
type OpportunityFilter struct {
	// Search is matched against title, description and skills via
	// full-text search when present.
	Search string

	// Substring filters, case-insensitive
	Location string
	Industry string
	Category string

	// Exact filters
	Type            string
	ExperienceLevel string

	// Bounds apply only to listings with a compensation amount
	SalaryMin *float64
	SalaryMax *float64

	// ActiveOnly restricts results to searchable listings; always true
	// for unauthenticated callers.
	ActiveOnly bool

	// IncludeOwnedBy additionally matches this organization's inactive
	// listings when ActiveOnly is set. Zero means no extension.
	IncludeOwnedBy int64
}

// CatalogStats aggregates public counts over the catalog
type CatalogStats struct {
	TotalActive       int64            `json:"total_active"`
	TotalApplications int64            `json:"total_applications"`
	ByType            []StatBucket     `json:"by_type"`
	TopIndustries     []StatBucket     `json:"top_industries"`
	TopLocations      []StatBucket     `json:"top_locations"`
}

// StatBucket is a single grouped count
type StatBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ResourceFilter holds article listing criteria
type ResourceFilter struct {
	Search   string
	Category string
}

// ForumFilter holds forum post listing criteria
type ForumFilter struct {
	Search   string
	Category string
}

// ReviewFilter holds review listing criteria
type ReviewFilter struct {
	OrganizationID *int64
	OpportunityID  *int64
	MinRating      *int
}
