// Package bookshop adapts a bookshop storefront: paginated category
// listings of product cards, one detail page per book.
package bookshop

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rajtiwarikmw/aethyrtech/adapter"
	"github.com/rajtiwarikmw/aethyrtech/models"
)

func init() { adapter.Register(New()) }

// Bookshop extracts books from listing grids and product detail pages.
type Bookshop struct{}

// New returns the bookshop adapter.
func New() *Bookshop { return &Bookshop{} }

func (b *Bookshop) Config() adapter.PlatformConfig {
	return adapter.PlatformConfig{
		Name:      "bookshop",
		FetchMode: adapter.FetchHTTP,
		Pagination: adapter.Pagination{
			Type:      adapter.PaginationRegular,
			PageParam: "page",
			MaxPages:  50,
		},
	}
}

func (b *Bookshop) ListProductURLs(page *models.PageContent, _ string) (adapter.ListResult, error) {
	doc, err := adapter.ParsePage(page)
	if err != nil {
		return adapter.ListResult{}, fmt.Errorf("bookshop: parse listing: %w", err)
	}

	var res adapter.ListResult
	doc.Find("article.product_pod h3 a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		res.ProductURLs = append(res.ProductURLs, resolveURL(page.URL, href))
	})
	res.HasMore = doc.Find("ul.pager li.next a").Length() > 0
	return res, nil
}

func (b *Bookshop) ExtractProduct(page *models.PageContent, productURL string) (*models.ProductRecord, error) {
	doc, err := adapter.ParsePage(page)
	if err != nil {
		return nil, fmt.Errorf("bookshop: parse product: %w", err)
	}

	title := adapter.First(doc,
		adapter.JSONLD("name"),
		adapter.Selector("div.product_main h1"),
	)
	if title == "" {
		// Not a product page; a listing URL slipped through.
		return nil, nil
	}

	price := adapter.First(doc,
		adapter.JSONLD("offers", "price"),
		adapter.Selector("div.product_main p.price_color"),
	)

	rec := &models.ProductRecord{
		SKU:   upc(doc),
		Title: title,
		Description: adapter.First(doc,
			adapter.JSONLD("description"),
			adapter.Selector("#product_description ~ p"),
		),
		Price:           adapter.ParseFloat(price),
		Currency:        currencyFrom(price),
		InventoryStatus: availability(doc),
		Rating:          starRating(doc),
		ReviewCount:     int(adapter.ParseFloat(adapter.Selector("table.table-striped tr:last-child td")(doc))),
		CategoryPath:    breadcrumb(doc),
		URL:             productURL,
	}
	if img := adapter.First(doc, adapter.Attr("#product_gallery img", "src"), adapter.Attr("div.item.active img", "src")); img != "" {
		rec.Images = []string{resolveURL(productURL, img)}
	}
	return rec, nil
}

// upc reads the product identifier out of the detail table.
func upc(doc *goquery.Document) string {
	var found string
	doc.Find("table.table-striped tr").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Find("th").Text()) == "UPC" {
			found = strings.TrimSpace(s.Find("td").Text())
			return false
		}
		return true
	})
	return found
}

func availability(doc *goquery.Document) string {
	text := adapter.Selector("div.product_main p.availability")(doc)
	if strings.Contains(strings.ToLower(text), "in stock") {
		return "in_stock"
	}
	return "out_of_stock"
}

var starWords = map[string]float64{
	"One": 1, "Two": 2, "Three": 3, "Four": 4, "Five": 5,
}

func starRating(doc *goquery.Document) float64 {
	class, _ := doc.Find("div.product_main p.star-rating").First().Attr("class")
	for _, word := range strings.Fields(class) {
		if v, ok := starWords[word]; ok {
			return v
		}
	}
	return 0
}

func breadcrumb(doc *goquery.Document) []string {
	var path []string
	doc.Find("ul.breadcrumb li a").Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			// Skip the home link.
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			path = append(path, text)
		}
	})
	return path
}

func currencyFrom(price string) string {
	switch {
	case strings.ContainsRune(price, '£'):
		return "GBP"
	case strings.ContainsRune(price, '€'):
		return "EUR"
	case strings.ContainsRune(price, '$'):
		return "USD"
	default:
		return ""
	}
}

func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
