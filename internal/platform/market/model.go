package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
)

// Payload is an unparsed provider response together with where it came from.
// The body is handed to quote.Normalizer as-is.
type Payload struct {
	Symbol    string
	Type      asset.Type
	Market    string
	Source    string
	Synthetic bool
	Body      []byte
	FetchedAt time.Time
}

// Request identifies one symbol to price in a batch
type Request struct {
	Symbol string
	Type   asset.Type
	Market string
}

// Result is the outcome for one symbol of a batch; exactly one field is set
type Result struct {
	Payload *Payload
	Err     error
}

// Period is a history window
type Period string

const (
	Period1D       Period = "1d"
	Period5D       Period = "5d"
	Period1M       Period = "1m"
	Period3M       Period = "3m"
	Period6M       Period = "6m"
	Period1Y       Period = "1y"
	PeriodIntraday Period = "intraday"
)

var periodDays = map[Period]int{
	Period1D:       1,
	Period5D:       5,
	Period1M:       30,
	Period3M:       90,
	Period6M:       180,
	Period1Y:       365,
	PeriodIntraday: 1,
}

// Days returns the number of calendar days the period covers
func (p Period) Days() int {
	return periodDays[p]
}

// ParsePeriod parses a period name; empty means one month
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Period1M, nil
	}
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Interval is the sampling step of an intraday series
type Interval string

const (
	Interval1Min  Interval = "1min"
	Interval5Min  Interval = "5min"
	Interval15Min Interval = "15min"
	Interval30Min Interval = "30min"
	Interval60Min Interval = "60min"
	Interval1Day  Interval = "1day"
)

var intervalSteps = map[Interval]time.Duration{
	Interval1Min:  time.Minute,
	Interval5Min:  5 * time.Minute,
	Interval15Min: 15 * time.Minute,
	Interval30Min: 30 * time.Minute,
	Interval60Min: time.Hour,
	Interval1Day:  24 * time.Hour,
}

// Step returns the duration between two samples
func (i Interval) Step() time.Duration {
	return intervalSteps[i]
}

// ParseInterval parses an interval name; empty means 5min
func ParseInterval(s string) (Interval, error) {
	if s == "" {
		return Interval5Min, nil
	}
	i := Interval(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := intervalSteps[i]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return i, nil
}

// HistoryRequest selects a price history window. Daily periods use Interval1Day;
// PeriodIntraday samples one day at Interval.
type HistoryRequest struct {
	Period   Period
	Interval Interval
}

// Daily builds a daily history request
func Daily(p Period) HistoryRequest {
	return HistoryRequest{Period: p, Interval: Interval1Day}
}

// Intraday builds an intraday history request
func Intraday(i Interval) HistoryRequest {
	return HistoryRequest{Period: PeriodIntraday, Interval: i}
}

// Validate checks period and interval, filling defaults
func (r *HistoryRequest) Validate() error {
	if r.Period == "" {
		r.Period = Period1M
	}
	if _, ok := periodDays[r.Period]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, r.Period)
	}
	if r.Interval == "" {
		if r.Period == PeriodIntraday {
			r.Interval = Interval5Min
		} else {
			r.Interval = Interval1Day
		}
	}
	if _, ok := intervalSteps[r.Interval]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, r.Interval)
	}
	return nil
}

// Points returns how many samples the request spans
func (r HistoryRequest) Points() int {
	step := r.Interval.Step()
	if step == 0 {
		return 0
	}
	n := int(time.Duration(r.Period.Days()) * 24 * time.Hour / step)
	if n < 1 {
		n = 1
	}
	return n
}
