package news

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/priyanshu2307/Newschat/models"
)

// FeedClient fetches articles from RSS/Atom feeds.
type FeedClient struct {
	parser *gofeed.Parser
	limit  int
}

// NewFeedClient creates a feed client returning at most limit entries per feed.
func NewFeedClient(limit int) *FeedClient {
	if limit <= 0 {
		limit = 50
	}
	return &FeedClient{parser: gofeed.NewParser(), limit: limit}
}

// Fetch downloads and parses the feed at feedURL, converting its entries
// into raw articles. Entry summaries become the article content; callers
// decide whether to enrich short summaries with the full page text.
func (c *FeedClient) Fetch(ctx context.Context, feedURL string) ([]models.Article, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	items := feed.Items
	if len(items) > c.limit {
		items = items[:c.limit]
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		content := item.Description
		if content == "" {
			content = item.Content
		}
		published := item.Published
		if published == "" && item.PublishedParsed != nil {
			published = item.PublishedParsed.Format("2006-01-02T15:04:05Z07:00")
		}
		articles = append(articles, models.Article{
			Title:     item.Title,
			Content:   content,
			URL:       item.Link,
			Published: published,
			Source:    feed.Title,
		})
	}
	return articles, nil
}
