package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Monexa/internal/domain/models"
)

func TestClientArticles(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		q := r.URL.Query()
		assert.Equal(t, DefaultQuery, q.Get("q"))
		assert.Equal(t, "2025-05-08", q.Get("from"))
		assert.Equal(t, "2025-05-10", q.Get("to"))
		assert.Equal(t, "10", q.Get("pageSize"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Reuters"},"title":"A","description":"a","publishedAt":"2025-05-09T10:00:00Z"},
			{"source":{"name":"Reuters"},"title":"A","description":"dup"},
			{"source":{"name":""},"title":"B","description":"b"},
			{"source":{"name":"X"},"title":"","description":"no title"},
			{"source":{"name":"X"},"title":"No desc","description":"  "},
			{"source":{"name":"X"},"title":"C","description":"c"},
			{"source":{"name":"X"},"title":"D","description":"d"},
			{"source":{"name":"X"},"title":"E","description":"e"},
			{"source":{"name":"X"},"title":"F","description":"f"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, 0, 0, time.Second, WithClock(func() time.Time { return now }))
	got, err := c.Articles(context.Background())
	require.NoError(t, err)

	require.Len(t, got, MaxArticles)
	titles := make([]string, len(got))
	for i, a := range got {
		titles[i] = a.Title
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, titles)
	assert.Equal(t, "Unknown", got[1].Source)
	assert.Equal(t, time.Date(2025, 5, 9, 10, 0, 0, 0, time.UTC), got[0].PublishedAt)
}

func TestClientArticles_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", srv.URL, 10, time.Hour, time.Second).Articles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your API key is invalid")
}

func TestKeyPoints(t *testing.T) {
	text := "Stocks rallied today. The weather was nice. Inflation cooled to 3%. "
	assert.Equal(t, "Stocks rallied today. Inflation cooled to 3%", KeyPoints(text))
	assert.Empty(t, KeyPoints("Nothing relevant here. Just words."))
}

func TestSummarize(t *testing.T) {
	articles := []models.Article{
		{Title: "Sunny weekend ahead", Description: "Clear skies", Source: "Weather", PublishedAt: time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)},
		{Title: "Markets rose 2% on earnings", Description: "Investors cheered $5 billion buyback", Source: "Reuters", PublishedAt: time.Date(2025, 5, 9, 14, 0, 0, 0, time.UTC)},
	}
	got := Summarize(articles)

	want := "Current Market Context and News Analysis:\n\n" +
		"2. Key Market Insight (Reuters, 2025-05-09):\n" +
		"   Markets rose 2% on earnings. Investors cheered $5 billion buyback\n" +
		"   Relevant Metrics: 2%, $5\n"
	assert.Equal(t, want, got)
}

func TestSummarize_Fallbacks(t *testing.T) {
	assert.Equal(t, NoNewsRetrieved, Summarize(nil))
	assert.Equal(t, NoInsights, Summarize([]models.Article{{Title: "Cats", Description: "Dogs"}}))
}

type stubSource struct {
	articles []models.Article
	err      error
}

func (s stubSource) Articles(context.Context) ([]models.Article, error) { return s.articles, s.err }

func TestServiceContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, NoRecentNews, NewService(nil, nil).Context(ctx))
	assert.Equal(t, NoRecentNews, NewService(stubSource{err: errors.New("down")}, nil).Context(ctx))

	d := NewService(stubSource{articles: []models.Article{{Title: "Stock market outlook", Description: "Steady", Source: "FT"}}}, nil).Digest(ctx)
	require.Len(t, d.Articles, 1)
	assert.Contains(t, d.Context, "1. Key Market Insight (FT, ):")
}
