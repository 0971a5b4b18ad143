package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pricetracker/internal/domain"
	"pricetracker/internal/ports"
)

var asinExpr = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)

// AmazonScraper extracts product data from an Amazon product page, doing
// the content script's job from outside the browser.
type AmazonScraper struct {
	client *http.Client
}

var _ ports.Scraper = (*AmazonScraper)(nil)

// NewAmazonScraper wires an HTTP client; a nil client gets a 20s timeout.
func NewAmazonScraper(client *http.Client) *AmazonScraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &AmazonScraper{client: client}
}

// Supports reports whether the url points at an Amazon storefront.
func (a *AmazonScraper) Supports(pageURL string) bool {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	return strings.HasPrefix(host, "amazon.")
}

// Scrape fetches the page and pulls out title, price, image, and ASIN.
// A page without a recognizable title is reported as "not a product page"
// rather than returning a half-empty record.
func (a *AmazonScraper) Scrape(ctx context.Context, pageURL string) (domain.ScrapedProduct, error) {
	doc, err := a.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.ScrapedProduct{}, err
	}

	title := strings.TrimSpace(doc.Find("h1 span").First().Text())
	if title == "" {
		return domain.ScrapedProduct{}, fmt.Errorf("no product context on page %s", pageURL)
	}

	product := domain.ScrapedProduct{
		URL:          pageURL,
		Title:        title,
		CurrentPrice: parsePrice(doc.Find("span.a-price-whole").First().Text()),
	}

	if src, exists := doc.Find("#landingImage").First().Attr("src"); exists {
		product.Image = src
	}
	if match := asinExpr.FindStringSubmatch(pageURL); match != nil {
		product.ASIN = match[1]
	}

	return product, nil
}

func (a *AmazonScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "pricetracker/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return doc, nil
}

// parsePrice strips currency symbols and separators the way marketplace
// pages render them ("1,299." and friends) and returns 0 when nothing
// numeric remains.
func parsePrice(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}
