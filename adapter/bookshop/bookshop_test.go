package bookshop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

const listingHTML = `<!DOCTYPE html>
<html><body>
<section>
  <article class="product_pod">
    <h3><a href="catalogue/a-light-in-the-attic_1000/index.html" title="A Light in the Attic">A Light in the ...</a></h3>
    <p class="price_color">£51.77</p>
  </article>
  <article class="product_pod">
    <h3><a href="catalogue/tipping-the-velvet_999/index.html" title="Tipping the Velvet">Tipping the Velvet</a></h3>
    <p class="price_color">£53.74</p>
  </article>
</section>
<ul class="pager">
  <li class="current">Page 1 of 50</li>
  <li class="next"><a href="page-2.html">next</a></li>
</ul>
</body></html>`

const lastListingHTML = `<!DOCTYPE html>
<html><body>
<ul class="pager"><li class="current">Page 50 of 50</li></ul>
</body></html>`

const productHTML = `<!DOCTYPE html>
<html><body>
<ul class="breadcrumb">
  <li><a href="/">Home</a></li>
  <li><a href="/books">Books</a></li>
  <li><a href="/books/poetry">Poetry</a></li>
  <li class="active">A Light in the Attic</li>
</ul>
<div id="product_gallery"><img src="../../media/attic.jpg" alt=""></div>
<div class="product_main">
  <h1>A Light in the Attic</h1>
  <p class="price_color">£51.77</p>
  <p class="availability">In stock (22 available)</p>
  <p class="star-rating Three"></p>
</div>
<div id="product_description"><h2>Product Description</h2></div>
<p>It's hard to imagine a world without A Light in the Attic.</p>
<table class="table table-striped">
  <tr><th>UPC</th><td>a897fe39b1053632</td></tr>
  <tr><th>Product Type</th><td>Books</td></tr>
  <tr><th>Availability</th><td>In stock (22 available)</td></tr>
  <tr><th>Number of reviews</th><td>4</td></tr>
</table>
</body></html>`

func pageFor(url, body string) *models.PageContent {
	return &models.PageContent{URL: url, Body: []byte(body), Status: 200}
}

func TestListProductURLs(t *testing.T) {
	ad := New()
	res, err := ad.ListProductURLs(pageFor("http://bookshop.test/index.html", listingHTML), "")
	require.NoError(t, err)

	require.Equal(t, []string{
		"http://bookshop.test/catalogue/a-light-in-the-attic_1000/index.html",
		"http://bookshop.test/catalogue/tipping-the-velvet_999/index.html",
	}, res.ProductURLs)
	require.True(t, res.HasMore)
}

func TestListLastPageHasNoMore(t *testing.T) {
	ad := New()
	res, err := ad.ListProductURLs(pageFor("http://bookshop.test/page-50.html", lastListingHTML), "")
	require.NoError(t, err)
	require.Empty(t, res.ProductURLs)
	require.False(t, res.HasMore)
}

func TestExtractProduct(t *testing.T) {
	ad := New()
	productURL := "http://bookshop.test/catalogue/a-light-in-the-attic_1000/index.html"
	rec, err := ad.ExtractProduct(pageFor(productURL, productHTML), productURL)
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.Equal(t, "a897fe39b1053632", rec.SKU)
	require.Equal(t, "A Light in the Attic", rec.Title)
	require.Equal(t, 51.77, rec.Price)
	require.Equal(t, "GBP", rec.Currency)
	require.Equal(t, "in_stock", rec.InventoryStatus)
	require.Equal(t, 3.0, rec.Rating)
	require.Equal(t, 4, rec.ReviewCount)
	require.Equal(t, []string{"Books", "Poetry"}, rec.CategoryPath)
	require.Equal(t, []string{"http://bookshop.test/media/attic.jpg"}, rec.Images)
	require.Contains(t, rec.Description, "hard to imagine")
	require.Equal(t, productURL, rec.URL)
}

func TestExtractNonProductPage(t *testing.T) {
	ad := New()
	rec, err := ad.ExtractProduct(pageFor("http://bookshop.test/index.html", listingHTML), "http://bookshop.test/index.html")
	require.NoError(t, err)
	require.Nil(t, rec)
}
