package model

import "time"

// HistoryRecord is a persisted analysis owned by one user
type HistoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	AnalysisResult
}

// Sort fields accepted by history listing
const (
	SortCreatedAt        = "created_at"
	SortCredibilityScore = "credibility_score"
	SortTitle            = "title"
)

// Pagination limits
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// HistoryQuery selects one page of a user's history
type HistoryQuery struct {
	UserID    string
	Page      int
	Limit     int
	SortBy    string
	Ascending bool
}

// Normalize applies defaults and bounds so stores never see invalid paging or sort input
func (q HistoryQuery) Normalize() HistoryQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	switch q.SortBy {
	case SortCreatedAt, SortCredibilityScore, SortTitle:
	default:
		q.SortBy = SortCreatedAt
	}
	return q
}

// Offset returns the number of records to skip
func (q HistoryQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HistoryPage is one page of history with its pagination block
type HistoryPage struct {
	Analyses   []HistoryRecord `json:"analyses"`
	Pagination Pagination      `json:"pagination"`
}

// Pagination describes where a page sits in the full listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit)
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Stats summarizes a user's history by score band
type Stats struct {
	TotalAnalyses           int                     `json:"totalAnalyses"`
	CredibilityDistribution CredibilityDistribution `json:"credibilityDistribution"`
	AverageCredibility      int                     `json:"averageCredibility"`
}

// CredibilityDistribution counts records per band
type CredibilityDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Add counts one score into the distribution
func (d *CredibilityDistribution) Add(score int) {
	switch BandFor(score) {
	case BandCredible:
		d.High++
	case BandMixed:
		d.Medium++
	default:
		d.Low++
	}
}
