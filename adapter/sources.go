package adapter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Source yields a candidate value for one field from a parsed page.
// Adapters compose sources in priority order; the first non-empty result
// wins. The usual arrangement is structured data first (JSON-LD), then a
// CSS selector fallback.
type Source func(doc *goquery.Document) string

// ParsePage parses fetched page content into a goquery document.
func ParsePage(page *models.PageContent) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
}

// First evaluates sources in order and returns the first non-empty value.
func First(doc *goquery.Document, sources ...Source) string {
	for _, src := range sources {
		if v := strings.TrimSpace(src(doc)); v != "" {
			return v
		}
	}
	return ""
}

// Selector returns the text content of the first element matching sel.
func Selector(sel string) Source {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(sel).First().Text())
	}
}

// Attr returns an attribute of the first element matching sel.
func Attr(sel, attr string) Source {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(sel).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// JSONLD walks the page's application/ld+json blocks along path and returns
// the first scalar found. Arrays at the top level are searched in order.
func JSONLD(path ...string) Source {
	return func(doc *goquery.Document) string {
		var out string
		doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			var raw interface{}
			if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
				return true
			}
			if v := walkJSON(raw, path); v != "" {
				out = v
				return false
			}
			return true
		})
		return out
	}
}

func walkJSON(node interface{}, path []string) string {
	switch v := node.(type) {
	case []interface{}:
		for _, item := range v {
			if s := walkJSON(item, path); s != "" {
				return s
			}
		}
		return ""
	case map[string]interface{}:
		if len(path) == 0 {
			return ""
		}
		next, ok := v[path[0]]
		if !ok {
			return ""
		}
		if len(path) == 1 {
			return scalarString(next)
		}
		return walkJSON(next, path[1:])
	default:
		if len(path) == 0 {
			return scalarString(node)
		}
		return ""
	}
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case []interface{}:
		if len(s) > 0 {
			return scalarString(s[0])
		}
	}
	return ""
}

// ParseFloat converts an extracted value to a float, tolerating currency
// symbols and thousands separators. It returns 0 for unparseable input.
func ParseFloat(v string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, strings.ReplaceAll(v, ",", ""))
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
