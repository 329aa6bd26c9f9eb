// Package news fetches market news and condenses it into advisor context.
package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Monexa/internal/domain/models"
	"Monexa/internal/services/upstream"
	"Monexa/pkg/util"
)

const (
	DefaultBaseURL  = "https://newsapi.org"
	DefaultQuery    = "(stock market OR financial markets OR investing OR finance) AND (analysis OR forecast OR outlook)"
	DefaultPageSize = 10
	DefaultLookback = 48 * time.Hour
	// MaxArticles is the number of cleaned articles kept per fetch.
	MaxArticles = 5
)

// Client reads the NewsAPI everything endpoint.
type Client struct {
	*upstream.HTTPServiceBase
	query    string
	pageSize int
	lookback time.Duration
	now      func() time.Time
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithQuery overrides the search expression.
func WithQuery(q string) ClientOption {
	return func(c *Client) { c.query = q }
}

// WithClock overrides the clock used for the date window.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient creates a NewsAPI client authenticated with apiKey.
func NewClient(apiKey, baseURL string, pageSize int, lookback, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	c := &Client{
		HTTPServiceBase: upstream.NewHTTPServiceBase(baseURL, timeout, map[string]string{"X-Api-Key": apiKey}),
		query:           DefaultQuery,
		pageSize:        pageSize,
		lookback:        lookback,
		now:             time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Articles returns up to MaxArticles distinct articles that carry a title and description.
func (c *Client) Articles(ctx context.Context) ([]models.Article, error) {
	end := c.now().UTC()
	params := url.Values{}
	params.Set("q", c.query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("from", util.FormatDate(end.Add(-c.lookback)))
	params.Set("to", util.FormatDate(end))
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	var resp everythingResponse
	if err := c.GetJSON(ctx, "/v2/everything", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("fetch news: newsapi status %q: %s", resp.Status, msg)
	}

	out := make([]models.Article, 0, MaxArticles)
	seen := make(map[string]bool)
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		desc := strings.TrimSpace(a.Description)
		if title == "" || desc == "" || seen[title] {
			continue
		}
		seen[title] = true

		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		out = append(out, models.Article{
			Title:       title,
			Description: desc,
			Content:     a.Content,
			Source:      source,
			URL:         a.URL,
			PublishedAt: published,
		})
		if len(out) >= MaxArticles {
			break
		}
	}
	return out, nil
}
