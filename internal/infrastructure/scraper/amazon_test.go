package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const productPage = `
<html><body>
  <h1><span>  Electric Kettle 1.5L  </span></h1>
  <span class="a-price-whole">1,299.</span>
  <img id="landingImage" src="https://img.example.com/kettle.jpg"/>
</body></html>`

func TestAmazonScraperScrape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer server.Close()

	sc := NewAmazonScraper(server.Client())
	product, err := sc.Scrape(context.Background(), server.URL+"/dp/B01KETTLE1")
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	if product.Title != "Electric Kettle 1.5L" {
		t.Fatalf("unexpected title: %q", product.Title)
	}
	if product.CurrentPrice != 1299 {
		t.Fatalf("unexpected price: %v", product.CurrentPrice)
	}
	if product.Image != "https://img.example.com/kettle.jpg" {
		t.Fatalf("unexpected image: %q", product.Image)
	}
	if product.ASIN != "B01KETTLE1" {
		t.Fatalf("unexpected asin: %q", product.ASIN)
	}
}

func TestAmazonScraperNotAProductPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>search results</p></body></html>`))
	}))
	defer server.Close()

	sc := NewAmazonScraper(server.Client())
	if _, err := sc.Scrape(context.Background(), server.URL+"/s?k=kettle"); err == nil {
		t.Fatal("expected an error for a page without product context")
	}
}

func TestAmazonScraperSupports(t *testing.T) {
	t.Parallel()

	sc := NewAmazonScraper(nil)

	for _, u := range []string{"https://www.amazon.com/dp/B000000001", "https://amazon.in/dp/B000000002"} {
		if !sc.Supports(u) {
			t.Fatalf("expected support for %s", u)
		}
	}
	if sc.Supports("https://example.com/product/1") {
		t.Fatal("unexpected support for non-amazon host")
	}
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"1,299.":   1299,
		"₹449.00":  449,
		"$12.50":   12.5,
		"":         0,
		"unpriced": 0,
	}
	for input, want := range cases {
		if got := parsePrice(input); got != want {
			t.Fatalf("parsePrice(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(NewAmazonScraper(nil))

	if _, err := reg.Resolve("https://amazon.in/dp/B000000001"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := reg.Resolve("https://shop.example.com/p/1"); err == nil {
		t.Fatal("expected error for unsupported marketplace")
	}
}
