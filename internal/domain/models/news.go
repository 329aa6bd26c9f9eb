package models

import "time"

// Article is one news item.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsDigest is the article list together with its summarized context.
type NewsDigest struct {
	Articles []Article `json:"articles"`
	Context  string    `json:"context"`
}
