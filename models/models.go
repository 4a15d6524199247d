package models

// Article is a raw news record as supplied by a feed or the local data file.
type Article struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// Metadata is the slimmed-down article descriptor persisted alongside a
// document. The body text is deliberately excluded to bound storage size.
type Metadata struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// Document is an indexed article: the embeddable text plus its metadata,
// immutable once written.
type Document struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// SearchResult pairs a document with its similarity score against a query.
// Scores are cosine similarities normalized to [0,1].
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}
