// Package clientutil provides http.RoundTripper middleware and the
// disk-backed response cache used by the reference catalog client.
package clientutil

import (
	"encoding/binary"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"golang.org/x/time/rate"
)

type Middleware func(http.RoundTripper) http.RoundTripper

func Chain(middlewares ...Middleware) Middleware {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

func WithRateLimit(interval time.Duration) Middleware {
	if interval == 0 {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

func WithLogging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				return nil, err
			}
			logger.Debug("http request",
				"status", resp.StatusCode, "took", time.Since(start).Truncate(time.Millisecond), "url", r.URL)
			return resp, nil
		})
	}
}

func WithUserAgent(userAgent string) Middleware {
	if userAgent == "" {
		return Passthrough
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r.Header.Add("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

func Passthrough(next http.RoundTripper) http.RoundTripper {
	return next
}

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func Wrap(c *http.Client, mw Middleware) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = mw(c.Transport)
	return c
}

// NewDiskCache returns a file-backed cache whose entries expire after ttl.
// Stale entries are deleted on read.
func NewDiskCache(dir string, ttl time.Duration) httpcache.Cache {
	return &ttlCache{inner: diskcache.New(dir), ttl: ttl, now: time.Now}
}

type ttlCache struct {
	inner httpcache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func (c *ttlCache) Get(key string) ([]byte, bool) {
	data, ok := c.inner.Get(key)
	if !ok || len(data) < 8 {
		return nil, false
	}
	stored := time.Unix(int64(binary.BigEndian.Uint64(data[:8])), 0)
	if c.now().Sub(stored) > c.ttl {
		c.inner.Delete(key)
		return nil, false
	}
	return data[8:], true
}

func (c *ttlCache) Set(key string, data []byte) {
	buf := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(buf[:8], uint64(c.now().Unix()))
	copy(buf[8:], data)
	c.inner.Set(key, buf)
}

func (c *ttlCache) Delete(key string) {
	c.inner.Delete(key)
}
