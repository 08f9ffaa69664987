package server

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ToolSlugs lists the tool pages published in the sitemap, in order.
var ToolSlugs = []string{
	"pdf-to-jpg", "jpg-to-pdf", "pdf-merge", "pdf-split", "pdf-compress",
	"pdf-rotate", "pdf-protect", "image-compress", "image-resize", "image-crop",
	"image-converter", "image-color-picker", "image-enhance", "word-counter",
	"case-converter", "remove-duplicates", "lorem-ipsum", "grammar-checker",
	"qr-code", "barcode", "password", "username", "html-to-pdf", "image-to-text",
	"percentage-calculator", "loan-calculator", "gpa-calculator", "zakat-calculator",
}

type sitemapPage struct {
	Path       string
	ChangeFreq string
	Priority   string
}

var staticPages = []sitemapPage{
	{"/", "daily", "1.0"},
	{"/tools", "weekly", "0.9"},
	{"/templates", "weekly", "0.8"},
	{"/pricing", "monthly", "0.7"},
	{"/contact", "monthly", "0.6"},
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func buildSitemap(baseURL string) ([]byte, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	set := urlSet{XMLNS: sitemapNamespace}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + p.Path, ChangeFreq: p.ChangeFreq, Priority: p.Priority})
	}
	for _, slug := range ToolSlugs {
		set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + "/tool/" + slug, ChangeFreq: "monthly", Priority: "0.8"})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func robotsTxt(baseURL string) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n",
		strings.TrimSuffix(baseURL, "/"))
}
