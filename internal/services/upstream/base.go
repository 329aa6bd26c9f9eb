package upstream

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "strings"
    "time"

    xhttp "Monexa/pkg/http"
)

// HTTPServiceBase provides a shared foundation for third-party JSON APIs.
// It centralizes client construction and GET request handling.
type HTTPServiceBase struct {
    baseURL string
    headers map[string]string
    client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL.
func NewHTTPServiceBase(baseURL string, timeout time.Duration, headers map[string]string) *HTTPServiceBase {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &HTTPServiceBase{
        baseURL: strings.TrimRight(baseURL, "/"),
        headers: headers,
        client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("monexa/1.0")),
    }
}

// BaseURL returns the configured base URL without a trailing slash.
func (b *HTTPServiceBase) BaseURL() string { return b.baseURL }

// GetJSON issues GET `path` under baseURL with query params and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
    if b.client == nil || b.baseURL == "" {
        return fmt.Errorf("upstream http client not initialized")
    }
    u := b.baseURL + path
    if len(params) > 0 {
        u += "?" + params.Encode()
    }
    err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
        Method:  xhttp.MethodGet,
        URL:     u,
        Headers: b.headers,
    }, dest)
    if err != nil {
        // transport errors carry the full URL, query credentials included
        var ue *url.Error
        if errors.As(err, &ue) {
            ue.URL = b.baseURL + path
        }
        return fmt.Errorf("get %s: %w", path, err)
    }
    return nil
}

// GetJSONWithRetry retries GetJSON up to `attempts` times for transient errors.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, params url.Values, dest interface{}, attempts int) error {
    if attempts <= 1 {
        return b.GetJSON(ctx, path, params, dest)
    }
    var err error
    for i := 1; i <= attempts; i++ {
        err = b.GetJSON(ctx, path, params, dest)
        if err == nil || !Transient(err) {
            return err
        }
        if i == attempts {
            break
        }
        // linear backoff
        select {
        case <-time.After(time.Duration(i) * 50 * time.Millisecond):
        case <-ctx.Done():
            return ctx.Err()
        }
    }
    return err
}

// Transient reports whether err is worth retrying.
func Transient(err error) bool {
    if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
        return false
    }
    var se *xhttp.StatusError
    if errors.As(err, &se) {
        return se.Temporary()
    }
    // transport errors
    return true
}
