package storefront

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func (h *Handler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAllProducts()
	if err != nil {
		h.serverError(w, err, "failed to load products for sitemap")
		return
	}
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.serverError(w, err, "failed to load categories for sitemap")
		return
	}

	set := urlSet{XMLNS: sitemapNS}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: h.baseURL + "/", ChangeFreq: "daily", Priority: 1},
		sitemapURL{Loc: h.baseURL + "/products", ChangeFreq: "daily", Priority: 0.8},
	)
	for _, p := range products {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/products/" + p.ID,
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + "/category/" + c.Slug,
			LastMod:    lastMod(c.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.5,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.serverError(w, err, "failed to encode sitemap")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

func (h *Handler) HandleRobots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /go/\n")
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", h.baseURL)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
