// Package scrape pulls product metadata out of a retailer page.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const maxPageBytes = 2 << 20

var ErrNoMetadata = errors.New("page has no usable product metadata")

// Metadata is what a product page advertises about itself.
type Metadata struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	URL         string           `json:"url"`
}

// Parse reads Open Graph tags, falling back to <title> and the description
// meta tag.
func Parse(r io.Reader) (*Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	meta := func(attr, name string) string {
		v, _ := doc.Find(fmt.Sprintf(`meta[%s="%s"]`, attr, name)).First().Attr("content")
		return strings.TrimSpace(v)
	}

	m := &Metadata{
		Title:       meta("property", "og:title"),
		Description: meta("property", "og:description"),
		Image:       meta("property", "og:image"),
		URL:         meta("property", "og:url"),
	}
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if m.Description == "" {
		m.Description = meta("name", "description")
	}
	for _, name := range []string{"product:price:amount", "og:price:amount"} {
		if raw := meta("property", name); raw != "" {
			if p, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "")); err == nil {
				m.Price = &p
				break
			}
		}
	}

	if m.Title == "" {
		return nil, ErrNoMetadata
	}
	return m, nil
}

// Fetcher downloads pages with a bounded timeout.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (compatible; StorefrontBot/1.0)",
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", u.Host, resp.StatusCode)
	}

	m, err := Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	if m.URL == "" {
		m.URL = u.String()
	}
	if m.Image != "" {
		if img, err := u.Parse(m.Image); err == nil {
			m.Image = img.String()
		}
	}
	return m, nil
}
