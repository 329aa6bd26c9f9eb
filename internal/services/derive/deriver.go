package derive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"Monexa/internal/domain/models"
	domsvc "Monexa/internal/domain/service"
	"Monexa/internal/services/currency"
	"Monexa/internal/services/returns"
	applogger "Monexa/pkg/logger"
)

var (
	// ErrMissingColumns means the history lacks a required OHLCV field.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrInsufficientData means the history is empty or a field has no value at all.
	ErrInsufficientData = errors.New("insufficient data")
)

// Deriver computes TickerMetrics from a raw history.
type Deriver struct {
	fx  domsvc.CurrencyNormalizer
	log *applogger.Logger
	now func() time.Time
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithClock overrides the timestamp source for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(d *Deriver) { d.now = now }
}

// NewDeriver creates a Deriver. fx may be nil, in which case prices stay native.
func NewDeriver(fx domsvc.CurrencyNormalizer, log *applogger.Logger, opts ...Option) *Deriver {
	if log == nil {
		log = applogger.NewNop()
	}
	d := &Deriver{fx: fx, log: log, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Derive validates and gap-fills raw, converts prices to targetCurrency and computes the snapshot.
func (d *Deriver) Derive(ctx context.Context, raw models.RawHistory, targetCurrency string) (models.TickerMetrics, error) {
	if err := Validate(raw); err != nil {
		return models.TickerMetrics{}, fmt.Errorf("derive %s: %w", raw.Symbol, err)
	}
	bars, err := FillGaps(raw.Bars)
	if err != nil {
		return models.TickerMetrics{}, fmt.Errorf("derive %s: %w", raw.Symbol, err)
	}

	native := currency.NativeCurrency(raw.Symbol, raw.Meta.Currency)
	label := native
	target := currency.Code(targetCurrency)
	if target != "" && target != native && d.fx != nil {
		rate, err := d.fx.Rate(ctx, native, target)
		if err != nil {
			d.log.Warn("price conversion skipped",
				applogger.String("symbol", raw.Symbol),
				applogger.String("from", native),
				applogger.String("to", target),
				applogger.Error(err),
			)
		} else {
			convert(bars, rate)
			label = target
		}
	}

	name := strings.TrimSpace(raw.Meta.Name)
	if name == "" {
		name = raw.Symbol
	}

	start := bars[0].Close
	current := bars[len(bars)-1].Close
	change := 0.0
	if start != 0 {
		change = (current - start) / start * 100
	}

	high, low := bars[0].High, bars[0].Low
	volSum := 0.0
	for _, b := range bars {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
		volSum += b.Volume
	}

	return models.TickerMetrics{
		Symbol:            raw.Symbol,
		Name:              name,
		Currency:          label,
		CurrentPrice:      current,
		PriceChangePct:    change,
		High52W:           high,
		Low52W:            low,
		AvgVolume:         volSum / float64(len(bars)),
		ExpectedReturnPct: returns.Estimate(bars),
		Sector:            raw.Meta.Sector,
		Industry:          raw.Meta.Industry,
		History:           bars,
		UpdatedAt:         d.now().UTC(),
	}, nil
}

// Validate checks that raw has bars and every required column.
func Validate(raw models.RawHistory) error {
	if len(raw.Bars) == 0 {
		return ErrInsufficientData
	}
	if raw.Columns == nil {
		return nil
	}
	have := make(map[string]bool, len(raw.Columns))
	for _, c := range raw.Columns {
		have[strings.ToLower(c)] = true
	}
	var missing []string
	for _, c := range models.RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// FillGaps returns a copy of bars where each missing field takes the nearest prior
// valid value, and leading gaps take the first valid value.
func FillGaps(bars []models.Bar) ([]models.Bar, error) {
	out := make([]models.Bar, len(bars))
	copy(out, bars)
	for _, f := range fields {
		if err := fillColumn(out, f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type field struct {
	name string
	ptr  func(*models.Bar) *float64
}

var fields = []field{
	{models.ColumnOpen, func(b *models.Bar) *float64 { return &b.Open }},
	{models.ColumnHigh, func(b *models.Bar) *float64 { return &b.High }},
	{models.ColumnLow, func(b *models.Bar) *float64 { return &b.Low }},
	{models.ColumnClose, func(b *models.Bar) *float64 { return &b.Close }},
	{models.ColumnVolume, func(b *models.Bar) *float64 { return &b.Volume }},
}

func fillColumn(bars []models.Bar, f field) error {
	first := -1
	last := math.NaN()
	for i := range bars {
		v := f.ptr(&bars[i])
		if isMissing(*v) {
			if first >= 0 {
				*v = last
			}
			continue
		}
		if first < 0 {
			first = i
		}
		last = *v
	}
	if first < 0 {
		return fmt.Errorf("%w: column %s has no values", ErrInsufficientData, f.name)
	}
	lead := *f.ptr(&bars[first])
	for i := 0; i < first; i++ {
		*f.ptr(&bars[i]) = lead
	}
	return nil
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func convert(bars []models.Bar, rate float64) {
	for i := range bars {
		bars[i].Open *= rate
		bars[i].High *= rate
		bars[i].Low *= rate
		bars[i].Close *= rate
	}
}
