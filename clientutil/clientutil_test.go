package clientutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/centrifuge/clientutil"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) clientutil.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return clientutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := clientutil.Wrap(nil, clientutil.Chain(mw("outer"), mw("inner")))
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestWithUserAgent(t *testing.T) {
	t.Parallel()

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := clientutil.Wrap(nil, clientutil.WithUserAgent("centrifuge/test"))
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "centrifuge/test", got)
}

func TestDiskCacheTTL(t *testing.T) {
	t.Parallel()

	cache := clientutil.NewDiskCache(t.TempDir(), 50*time.Millisecond)

	cache.Set("k", []byte("hello"))
	data, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestDiskCacheMiss(t *testing.T) {
	t.Parallel()

	cache := clientutil.NewDiskCache(t.TempDir(), time.Hour)
	_, ok := cache.Get("missing")
	assert.False(t, ok)
}
