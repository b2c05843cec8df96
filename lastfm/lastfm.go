// Package lastfm is the reference catalog client used by the tag fixer. It
// scrapes album pages and keeps every response in a disk-backed cache so
// repeat runs over the same library don't hit the network at all.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/gregjones/httpcache"
	"golang.org/x/net/html"

	"go.senan.xyz/centrifuge/clientutil"
)

var ErrAlbumNotFound = errors.New("album not found")

// DefaultCacheTTL keeps cached pages around for five years. Reference data
// for a released album practically never changes.
const DefaultCacheTTL = 5 * 365 * 24 * time.Hour

const DefaultBaseURL = `https://www.last.fm`

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

var (
	selectTitle = cascadia.MustCompile(`h1.header-new-title`)
	selectTags  = cascadia.MustCompile(`ul.tags-list li.tag a`)
	selectMeta  = cascadia.MustCompile(`dl.catalogue-metadata dd.catalogue-metadata-description`)
)

var yearExpr = regexp.MustCompile(`\b(\d{4})\b`)

// Album is the catalog's view of one release.
type Album struct {
	Artist  string
	Title   string
	Year    string
	TopTags []string
}

type Client struct {
	BaseURL    string
	RateLimit  time.Duration
	HTTPClient *http.Client
	Cache      httpcache.Cache

	initOnce sync.Once
}

func (c *Client) init() {
	c.initOnce.Do(func() {
		if c.BaseURL == "" {
			c.BaseURL = DefaultBaseURL
		}
		c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(c.RateLimit),
		))
	})
}

// AlbumInfo fetches (or recalls from cache) the catalog page for an album
// and returns its canonical title, release year, and top tags.
func (c *Client) AlbumInfo(ctx context.Context, artist, album string) (*Album, error) {
	c.init()

	pageURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	pageURL = pageURL.JoinPath("music", artist, album)

	body, err := c.fetch(ctx, pageURL.String())
	if err != nil {
		return nil, err
	}

	node, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var res Album
	res.Artist = artist
	res.Title = nodeText(cascadia.Query(node, selectTitle))
	for _, n := range cascadia.QueryAll(node, selectTags) {
		if tag := nodeText(n); tag != "" {
			res.TopTags = append(res.TopTags, tag)
		}
	}
	for _, n := range cascadia.QueryAll(node, selectMeta) {
		if m := yearExpr.FindString(nodeText(n)); m != "" {
			res.Year = m
			break
		}
	}

	if res.Title == "" {
		return nil, ErrAlbumNotFound
	}
	return &res, nil
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	if c.Cache != nil {
		if data, ok := c.Cache.Get(url); ok {
			return string(data), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("req page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrAlbumNotFound
	}
	if resp.StatusCode/100 != 2 {
		return "", StatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if c.Cache != nil {
		c.Cache.Set(url, body)
	}
	return string(body), nil
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
