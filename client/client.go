// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package client provides a production ready http.Client for calling
// out to other services from request handlers.
package client

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type circuitOptions struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	tripCount    uint32
	isSuccessful func(error) bool
	statusCodes  []int
}

type retryOptions struct {
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

type options struct {
	log       *zap.Logger
	timeout   time.Duration
	transport http.RoundTripper

	co *circuitOptions
	ro *retryOptions
}

// Option represents configurable attributes of the client.
type Option func(*options)

// Logger configures the [zap.Logger] used for logging retry attempts
// and circuit state changes.
func Logger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Timeout sets the overall per request timeout on the client.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Transport sets the base [http.RoundTripper].
//
// Default: [http.DefaultTransport].
func Transport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func withCircuitOption(f func(*circuitOptions)) Option {
	return func(o *options) {
		if o.co == nil {
			o.co = new(circuitOptions)
		}
		f(o.co)
	}
}

// CircuitName names the circuit breaker. The name is attached to all
// circuit state change logs.
func CircuitName(name string) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.name = name
	})
}

// HalfOpenRequests is the maximum number of requests allowed to pass
// through while the circuit is half-open. If zero, only 1 request is allowed.
func HalfOpenRequests(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.maxRequests = n
	})
}

// OpenStateTimeout is the period of the open state, after which the
// circuit becomes half-open. If zero, the timeout defaults to 60 seconds.
func OpenStateTimeout(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.timeout = d
	})
}

// CountResetInterval is the cyclic period of the closed state during
// which the circuits internal counts are cleared. If zero, the counts
// are never cleared while closed.
func CountResetInterval(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.interval = d
	})
}

// TripAfter determines the number of consecutive failures required to
// trip the circuit.
//
// Default: 5.
func TripAfter(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.tripCount = n
	})
}

var errStatusCode = errors.New("status code error")

// ErrorOnStatusCode registers an HTTP response status code which should
// be counted as a failure by the circuit breaker.
//
// Default: 400, 401, 403, 500.
func ErrorOnStatusCode(n int) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.statusCodes = append(co.statusCodes, n)
	})
}

// CountErrorIf overrides the check used to decide whether an error
// counts as a circuit failure. The given func should return true if the
// error should be counted as a success.
func CountErrorIf(f func(error) bool) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.isSuccessful = f
	})
}

// NotConnError reports whether err is not a network connection error.
func NotConnError(err error) bool {
	e := errors.Unwrap(err)
	switch e.(type) {
	case *net.AddrError:
		return false
	case *net.DNSError:
		return false
	case *net.OpError:
		return false
	default:
		return true
	}
}

// NotStatusCodeError reports whether err is not a status code failure
// registered via [ErrorOnStatusCode].
func NotStatusCodeError(err error) bool {
	return err != errStatusCode
}

func composeErrorCheckers(fs ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, f := range fs {
			ok := f(err)
			if ok {
				continue
			}
			return false
		}
		return true
	}
}

func withRetryOption(f func(*retryOptions)) Option {
	return func(o *options) {
		if o.ro == nil {
			o.ro = &retryOptions{
				waitMin:    100 * time.Millisecond,
				waitMax:    5 * time.Second,
				maxRetries: 2,
			}
		}
		f(o.ro)
	}
}

// MinWait sets the minimum wait duration between retry attempts.
func MinWait(d time.Duration) Option {
	return withRetryOption(func(ro *retryOptions) {
		ro.waitMin = d
	})
}

// MaxWait sets the maximum wait duration between retry attempts.
func MaxWait(d time.Duration) Option {
	return withRetryOption(func(ro *retryOptions) {
		ro.waitMax = d
	})
}

// MaxAttempts sets the maximum number of retry attempts per request.
func MaxAttempts(n int) Option {
	return withRetryOption(func(ro *retryOptions) {
		ro.maxRetries = n
	})
}

// New returns an [http.Client] with the configured retry and circuit
// breaking behaviour layered onto its transport.
func New(opts ...Option) *http.Client {
	o := &options{
		log:       zap.NewNop(),
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if o.co != nil {
		transport = circuitBreaker(transport, o.co, o.log)
	}

	c := &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}
	if o.ro == nil {
		return c
	}

	log := o.log
	rc := retryablehttp.Client{
		HTTPClient:   c,
		Logger:       nil,
		RetryWaitMin: o.ro.waitMin,
		RetryWaitMax: o.ro.waitMax,
		RetryMax:     o.ro.maxRetries,
		RequestLogHook: func(l retryablehttp.Logger, req *http.Request, i int) {
			log.Info("sending http request", zap.String("url", req.URL.String()), zap.Int("request_attempt_count", i))
		},
		ResponseLogHook: func(l retryablehttp.Logger, resp *http.Response) {
			log.Info("received http response", zap.String("url", resp.Request.URL.String()), zap.Int("http_status_code", resp.StatusCode))
		},
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	return rc.StandardClient()
}

func circuitBreaker(rt http.RoundTripper, co *circuitOptions, logger *zap.Logger) http.RoundTripper {
	if co.tripCount == 0 {
		co.tripCount = 5
	}
	if co.timeout == 0 {
		co.timeout = 60 * time.Second
	}
	if co.maxRequests == 0 {
		co.maxRequests = 1
	}
	if co.isSuccessful == nil {
		co.isSuccessful = composeErrorCheckers(
			NotStatusCodeError,
			NotConnError,
		)
	}
	if len(co.statusCodes) == 0 {
		co.statusCodes = append(
			co.statusCodes,
			http.StatusBadRequest,          // 400
			http.StatusUnauthorized,        // 401
			http.StatusForbidden,           // 403
			http.StatusInternalServerError, // 500
		)
	}
	codes := map[int]struct{}{}
	for _, code := range co.statusCodes {
		codes[code] = struct{}{}
	}

	log := logger.Named(co.name)

	return &circuitRoundTripper{
		RoundTripper: rt,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        co.name,
			MaxRequests: co.maxRequests,
			Interval:    co.interval,
			Timeout:     co.timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= co.tripCount
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				switch to {
				case gobreaker.StateOpen:
					log.Error("circuit has been opened")
				case gobreaker.StateHalfOpen:
					log.Warn("circuit is now half open and letting some requests through", zap.Uint32("max_requests_allowed_through", co.maxRequests))
				case gobreaker.StateClosed:
					log.Info("circuit has been closed")
				}
			},
			IsSuccessful: co.isSuccessful,
		}),
		onStatusCode: func(n int) error {
			_, ok := codes[n]
			if !ok {
				return nil
			}
			return errStatusCode
		},
	}
}

type circuitRoundTripper struct {
	http.RoundTripper
	cb           *gobreaker.CircuitBreaker
	onStatusCode func(int) error
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := rt.cb.Execute(func() (interface{}, error) {
		resp, err := rt.RoundTripper.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		err = rt.onStatusCode(resp.StatusCode)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
