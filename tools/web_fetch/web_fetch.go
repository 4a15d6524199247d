package web_fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/priyanshu2307/Newschat/tools/web_fetch/chromedp"
	"github.com/priyanshu2307/Newschat/tools/web_fetch/httpfetch"
	"github.com/priyanshu2307/Newschat/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 20000
)

// WebFetcher fetches an article page and extracts its readable text.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

// NewWebFetcher builds a fetcher of the requested type. The plain HTTP
// fetcher covers static pages; the chromedp fetcher renders script-heavy
// pages in a headless browser.
func NewWebFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch fetcherType {
	case HTTPFetcherType:
		return httpfetch.New(timeout, maxChars), nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", fetcherType)
	}
}
