package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/service/cache"
	"Monexa/internal/services/upstream"
)

// ErrRateNotFound is returned when a provider has no rate for a pair.
var ErrRateNotFound = errors.New("rate not found")

// HTTPRateProvider reads rates from an open exchange-rate API of the form
// GET {base}/latest/{FROM} -> {"result":"success","rates":{"INR":83.1,...}}.
type HTTPRateProvider struct {
	*upstream.HTTPServiceBase
	cache cache.BytesCache
	ttl   time.Duration
}

type ratesResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Base      string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

// NewHTTPRateProvider creates a provider. A nil cache disables caching.
func NewHTTPRateProvider(baseURL string, timeout time.Duration, c cache.BytesCache, ttl time.Duration) *HTTPRateProvider {
	return &HTTPRateProvider{
		HTTPServiceBase: upstream.NewHTTPServiceBase(baseURL, timeout, nil),
		cache:           c,
		ttl:             ttl,
	}
}

// Rate implements RateProvider. One upstream call serves every target of the same base.
func (p *HTTPRateProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = Code(from), Code(to)
	rates, err := p.table(ctx, from)
	if err != nil {
		return 0, err
	}
	r, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%s->%s: %w", from, to, ErrRateNotFound)
	}
	return r, nil
}

func (p *HTTPRateProvider) table(ctx context.Context, base string) (map[string]float64, error) {
	key := "fx:" + base
	if p.cache != nil {
		var cached map[string]float64
		if ok, err := cache.GetJSON(ctx, p.cache, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	var resp ratesResponse
	if err := p.GetJSONWithRetry(ctx, "/latest/"+base, nil, &resp, 2); err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	if resp.Result != "success" {
		return nil, fmt.Errorf("fetch rates for %s: upstream result %q %s", base, resp.Result, resp.ErrorType)
	}
	if p.cache != nil {
		_ = cache.SetJSON(ctx, p.cache, key, resp.Rates, p.ttl)
	}
	return resp.Rates, nil
}

// StaticRateProvider serves fixed rates keyed "FROM:TO". Inverse pairs are derived.
type StaticRateProvider struct {
	rates map[string]float64
}

// NewStaticRateProvider creates a provider over a copy of rates.
func NewStaticRateProvider(rates map[string]float64) *StaticRateProvider {
	m := make(map[string]float64, len(rates))
	for k, v := range rates {
		if v > 0 {
			m[Code(k)] = v
		}
	}
	return &StaticRateProvider{rates: m}
}

func (s *StaticRateProvider) Rate(_ context.Context, from, to string) (float64, error) {
	from, to = Code(from), Code(to)
	if r, ok := s.rates[from+":"+to]; ok {
		return r, nil
	}
	if r, ok := s.rates[to+":"+from]; ok {
		return 1 / r, nil
	}
	return 0, fmt.Errorf("%s->%s: %w", from, to, ErrRateNotFound)
}

// ChainRateProvider asks each provider in order and returns the first rate found.
type ChainRateProvider []domrepo.RateProvider

func (c ChainRateProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	var errs []error
	for _, p := range c {
		if p == nil {
			continue
		}
		r, err := p.Rate(ctx, from, to)
		if err == nil {
			return r, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, fmt.Errorf("%s->%s: %w", from, to, ErrRateNotFound)
	}
	return 0, errors.Join(errs...)
}
