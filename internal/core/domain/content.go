package domain

import "encoding/json"

// Review is a user-submitted rating of a place or service.
type Review struct {
	ID           string `json:"_id,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Rating       int    `json:"rating"`
	Category     string `json:"category,omitempty"`
	Location     string `json:"location,omitempty"`
	Status       string `json:"status,omitempty"`
	AuthorID     string `json:"userId,omitempty"`
	Likes        int    `json:"likes,omitempty"`
	HelpfulCount int    `json:"helpfulCount,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// ReviewInput is the body of review create and update calls.
type ReviewInput struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
}

// Article is an editorial post.
type Article struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// ArticleInput is the body of article create and update calls.
type ArticleInput struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Featured bool     `json:"featured,omitempty"`
}

// ContactMessage is submitted through the contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required"`
}

// AdminStats summarises site activity for the dashboards.
type AdminStats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalReviews   int `json:"totalReviews"`
	TotalArticles  int `json:"totalArticles"`
	PendingReviews int `json:"pendingReviews"`
}

// AdminUser is a user row in the admin user listing.
type AdminUser struct {
	Profile   UserProfile `json:"profile"`
	IsActive  bool        `json:"isActive"`
	CreatedAt string      `json:"createdAt,omitempty"`
}

// UnmarshalJSON reads the flat user document the admin endpoints return.
func (a *AdminUser) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.Profile); err != nil {
		return err
	}
	var extra struct {
		IsActive  *bool  `json:"isActive"`
		CreatedAt string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	a.IsActive = extra.IsActive == nil || *extra.IsActive
	a.CreatedAt = extra.CreatedAt
	return nil
}

// ListParams are the query parameters shared by list endpoints.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Featured bool
}
