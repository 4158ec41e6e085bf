package adapter

import (
	"testing"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

type stubAdapter struct {
	name string
}

func (s stubAdapter) Config() PlatformConfig {
	return PlatformConfig{Name: s.name, FetchMode: FetchHTTP}
}

func (s stubAdapter) ListProductURLs(*models.PageContent, string) (ListResult, error) {
	return ListResult{}, nil
}

func (s stubAdapter) ExtractProduct(*models.PageContent, string) (*models.ProductRecord, error) {
	return nil, nil
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	Register(stubAdapter{name: "ShopMart"})

	if _, ok := Get("shopmart"); !ok {
		t.Fatalf("expected lookup by lowercase name to succeed")
	}
	if _, ok := Get("SHOPMART"); !ok {
		t.Fatalf("expected lookup by uppercase name to succeed")
	}
	if _, ok := Get("unknown-platform"); ok {
		t.Fatalf("unexpected adapter for unregistered platform")
	}
}
