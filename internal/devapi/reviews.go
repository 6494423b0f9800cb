package devapi

import (
	"strings"
	"sync"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// ReviewCatalog is the in-memory review list served by GET /reviews.
type ReviewCatalog struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

func NewReviewCatalog(seed []domain.Review) *ReviewCatalog {
	return &ReviewCatalog{reviews: append([]domain.Review(nil), seed...)}
}

// SeedReviews returns the sample reviews a fresh dev API starts with.
func SeedReviews() []domain.Review {
	return []domain.Review{
		{ID: "rev-1", Title: "Quiet riad near the medina", Content: "Rooftop breakfast every morning.", Rating: 5, Category: "hotel", Location: "Marrakech", Status: "approved", CreatedAt: "2024-03-02T09:15:00"},
		{ID: "rev-2", Title: "Best tagine in Gueliz", Content: "Slow cooked lamb with prunes.", Rating: 4, Category: "restaurant", Location: "Marrakech", Status: "approved", CreatedAt: "2024-03-05T19:40:00"},
		{ID: "rev-3", Title: "Atlas day trip", Content: "Guide was late but the valley was worth it.", Rating: 3, Category: "tour", Location: "Ourika", Status: "pending", CreatedAt: "2024-03-09T07:00:00"},
		{ID: "rev-4", Title: "Hammam with a view", Content: "Clean and calm.", Rating: 5, Category: "spa", Location: "Marrakech", Status: "approved", CreatedAt: "2024-03-12T16:20:00"},
	}
}

// List filters by category and a case-insensitive search over title and
// content, then pages the result.
func (c *ReviewCatalog) List(params domain.ListParams) ([]domain.Review, domain.Pagination) {
	page, limit := normalizePage(params.Page, params.Limit)
	search := strings.ToLower(strings.TrimSpace(params.Search))

	c.mu.RLock()
	matched := make([]domain.Review, 0, len(c.reviews))
	for _, r := range c.reviews {
		if params.Category != "" && !strings.EqualFold(r.Category, params.Category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Content), search) {
			continue
		}
		matched = append(matched, r)
	}
	c.mu.RUnlock()

	total := len(matched)
	pages := (total + limit - 1) / limit
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return matched[start:end], domain.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
	}
}

// Counts returns the total and pending review counts.
func (c *ReviewCatalog) Counts() (total, pending int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.reviews {
		if r.Status == "pending" {
			pending++
		}
	}
	return len(c.reviews), pending
}
