package functions

import (
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// ISOLayout formats timestamps as UTC ISO-8601 with millisecond precision
const ISOLayout = "2006-01-02T15:04:05.000Z"

// FormatUnix selects integer epoch seconds for the timestamp operation
const FormatUnix = "unix"

// Dispatcher maps request parameters to a Result. It holds no mutable state
// and is safe for concurrent use.
type Dispatcher struct {
	// clock returns the current time for the timestamp operation
	clock func() time.Time

	// random returns a uniform value in [0, 1)
	random func() float64
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithClock sets the time source used by the timestamp operation
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// WithRandom sets the uniform [0, 1) source used by the random operation
func WithRandom(random func() float64) Option {
	return func(d *Dispatcher) {
		d.random = random
	}
}

// NewDispatcher creates a dispatcher using the wall clock and a global random source
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		clock:  time.Now,
		random: rand.Float64,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch runs the requested operation. An unknown operation produces a 400
// result; every other input produces a 200 result, however degenerate.
func (d *Dispatcher) Dispatch(params Params) Result {
	body, err := d.run(params)
	if err != nil {
		if errors.Is(err, ErrInvalidOperation) {
			return NewErrorResult(http.StatusBadRequest, InvalidOperationMessage)
		}
		return NewErrorResult(http.StatusInternalServerError, err.Error())
	}

	return Result{Status: http.StatusOK, Body: body}
}

func (d *Dispatcher) run(params Params) (map[string]any, error) {
	switch params.Operation() {
	case OperationReverse:
		return map[string]any{
			"reversed": Reverse(params.Get(ParamText, DefaultText)),
		}, nil

	case OperationRandom:
		lo := parseInt(params.Get(ParamMin, DefaultMin))
		hi := parseInt(params.Get(ParamMax, DefaultMax))
		return map[string]any{
			"random": jsonNumber(RandomBetween(d.random(), lo, hi)),
		}, nil

	case OperationTimestamp:
		now := d.clock()
		if params.Get(ParamFormat, DefaultFormat) == FormatUnix {
			return map[string]any{"timestamp": now.Unix()}, nil
		}
		return map[string]any{"timestamp": now.UTC().Format(ISOLayout)}, nil

	default:
		return nil, ErrInvalidOperation
	}
}

// Reverse returns s with its code points in reverse order
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// RandomBetween applies floor(r * (hi - lo + 1)) + lo for a uniform r in
// [0, 1). With lo > hi the result lands in [hi, lo].
func RandomBetween(r, lo, hi float64) float64 {
	return math.Floor(r*(hi-lo+1)) + lo
}

// jsonNumber makes a float encodable as JSON: non-finite values become null
// and negative zero becomes zero.
func jsonNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f == 0 {
		return 0.0
	}
	return f
}
