package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/resilience"
)

// HTTPOptions configure an HTTPLoader.
type HTTPOptions struct {
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	MaxSize      int64
	// RatePerSecond caps outgoing requests; zero disables the limit.
	RatePerSecond float64
	Breaker       resilience.Policy
}

// DefaultHTTPOptions returns the options used by the reader.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:      30 * time.Second,
		Retries:      3,
		RetryWaitMin: time.Second,
		RetryWaitMax: 10 * time.Second,
		UserAgent:    "HTMLReader/1.0",
		MaxSize:       DefaultMaxSize,
		RatePerSecond: 10,
		Breaker:       resilience.DefaultPolicy(),
	}
}

// HTTPLoader fetches remote documents. Transient failures are retried by
// the transport and every host gets its own circuit breaker.
type HTTPLoader struct {
	client  *resty.Client
	hosts   *resilience.Group
	limiter *rate.Limiter
	maxSize int64
	logger  *zap.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// NewHTTPLoader creates a loader.
func NewHTTPLoader(opts HTTPOptions, logger *zap.Logger) *HTTPLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = opts.Retries
	retry.RetryWaitMin = opts.RetryWaitMin
	retry.RetryWaitMax = opts.RetryWaitMax
	retry.Logger = nil
	retry.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(retry.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html, application/xhtml+xml, application/zip, application/gzip, application/zstd, */*;q=0.5").
		SetDoNotParseResponse(true)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), int(opts.RatePerSecond)+1)
	}

	return &HTTPLoader{
		client:  client,
		limiter: limiter,
		hosts:   resilience.NewGroup(opts.Breaker, logger.Named("fetch")),
		maxSize: opts.MaxSize,
		logger:  logger,
	}
}

// Hosts exposes the per-host breakers.
func (l *HTTPLoader) Hosts() *resilience.Group {
	return l.hosts
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, location string) (*Document, error) {
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", location)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	var clientErr error
	data, err := resilience.Call(l.hosts.For(u.Host), func() ([]byte, error) {
		resp, err := l.client.R().SetContext(ctx).Get(u.String())
		if err != nil {
			return nil, err
		}
		body := resp.RawBody()
		defer body.Close()

		if status := resp.StatusCode(); status >= 300 {
			serr := &StatusError{URL: u.String(), Status: status}
			if status < 500 {
				// the host answered; only server failures trip the breaker
				clientErr = serr
				return nil, nil
			}
			return nil, serr
		}
		data, err := io.ReadAll(io.LimitReader(body, l.maxSize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > l.maxSize {
			clientErr = fmt.Errorf("%w: %s", ErrTooLarge, u.Redacted())
			return nil, nil
		}
		return data, nil
	})
	if err == nil {
		err = clientErr
	}
	if err != nil {
		l.logger.Debug("Fetch failed", zap.String("url", u.Redacted()), zap.Error(err))
		return nil, err
	}

	l.logger.Debug("Fetched document",
		zap.String("url", u.Redacted()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return &Document{
		Name:     nameOf(u.Path),
		Location: u.String(),
		Data:     data,
		ModTime:  time.Now(),
		Remote:   true,
	}, nil
}
