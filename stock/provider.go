package stock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oarkflow/errors"
)

var (
	// ErrNoData is returned when a provider holds no bars for an instrument.
	// It is not fatal for a run: the instrument simply contributes nothing.
	ErrNoData = errors.New("no bars for instrument")
)

// Provider fetches the ordered daily bars of one instrument for [start, end]
type Provider interface {
	FetchBars(ctx context.Context, code, exchange string, start, end time.Time) (Bars, error)
}

// Instrument identifies a tradable code on an exchange
type Instrument struct {
	Code     string `json:"code"`
	Exchange string `json:"exchange"`
}

// ParseInstruments parses "CODE:EXCHANGE, CODE2" lists. A missing exchange is left empty.
func ParseInstruments(list string) []Instrument {
	instruments := []Instrument{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		code, exchange, _ := strings.Cut(item, ":")
		instruments = append(instruments, Instrument{
			Code:     strings.TrimSpace(code),
			Exchange: strings.TrimSpace(exchange),
		})
	}
	return instruments
}

// MemoryProvider serves bars held in memory, keyed by code
type MemoryProvider struct {
	mu   sync.RWMutex
	bars map[string]Bars
}

// NewMemoryProvider returns an empty MemoryProvider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{bars: make(map[string]Bars)}
}

// Add stores bars under their code, replacing earlier bars of the same date
func (mp *MemoryProvider) Add(bars ...Bar) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	touched := map[string]bool{}
	for _, bar := range bars {
		mp.bars[bar.Code] = append(mp.bars[bar.Code], bar)
		touched[bar.Code] = true
	}
	for code := range touched {
		mp.bars[code] = Normalize(mp.bars[code])
	}
}

// Codes returns the stored codes in sorted order
func (mp *MemoryProvider) Codes() []string {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	codes := make([]string, 0, len(mp.bars))
	for code := range mp.bars {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns every stored bar, ordered by code then date
func (mp *MemoryProvider) All() Bars {
	out := Bars{}
	for _, code := range mp.Codes() {
		mp.mu.RLock()
		out = append(out, mp.bars[code]...)
		mp.mu.RUnlock()
	}
	return out
}

// FetchBars implements Provider. An empty exchange matches any exchange.
func (mp *MemoryProvider) FetchBars(ctx context.Context, code, exchange string, start, end time.Time) (Bars, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mp.mu.RLock()
	defer mp.mu.RUnlock()

	out := Bars{}
	for _, bar := range mp.bars[code].Between(start, end) {
		if exchange != "" && bar.Exchange != "" && bar.Exchange != exchange {
			continue
		}
		out = append(out, bar)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
