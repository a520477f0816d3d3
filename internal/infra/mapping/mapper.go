// Package mapping converts canonical upstream payloads into stable
// domain entities. Every function is pure: no I/O, no shared state,
// and the only failure mode is a missing required field on the input.
package mapping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"stylemcp/internal/domain"
	"stylemcp/internal/infra/upstream"
)

// SyntheticLookPrefix namespaces generated look ids so they can never
// collide with the upstream id space.
const SyntheticLookPrefix = "synthetic:"

// syntheticLookNamespace seeds name-based ids for looks upstream ships
// without one. The id is a pure function of the look's content, so
// remapping the same payload (e.g. on a cache hit) yields the same id.
var syntheticLookNamespace = uuid.MustParse("f5f9b2a0-52cc-4b2f-8f6e-3d7a1e9c4b58")

// MapProduct converts an upstream product into the domain shape.
// The upstream id key varies by API version; the first non-empty of
// the known candidates wins. A product without any id cannot be
// addressed and is rejected.
func MapProduct(raw upstream.RawProduct) (domain.Product, error) {
	id := firstNonEmpty(raw.ProductID, raw.AltID)
	if id == "" {
		return domain.Product{}, domain.E(domain.CodeInvalidArgument, "mapping.MapProduct", "product id missing", nil)
	}

	p := domain.Product{
		ID:          id,
		ColorID:     raw.ColorID,
		Name:        firstNonEmpty(raw.Name, raw.AltName),
		Description: raw.Description,
		Brand:       raw.Brand,
		Category:    raw.Category,
		InStock:     raw.InStock != nil && *raw.InStock,
		URL:         raw.URL,
		ImageURL:    raw.ImageURL,
		Attributes:  raw.Attributes,
	}

	if raw.Price != nil && *raw.Price >= 0 {
		price := *raw.Price
		p.PriceCents = &price
		p.Price = FormatPrice(price)
	}
	if raw.SalePrice != nil && *raw.SalePrice >= 0 {
		sale := *raw.SalePrice
		p.SaleCents = &sale
		p.SalePrice = FormatPrice(sale)
	}

	// onSale without a sale price violates the sale invariant; the
	// flag is dropped rather than surfaced as an error.
	p.OnSale = raw.OnSale != nil && *raw.OnSale && p.SaleCents != nil

	return p, nil
}

// MapLook converts a canonical upstream look into a domain look plus
// the full products extractable from it. Embedded product objects are
// preferred as the source of the ordered product-id list; a bare
// ordered id list is the fallback. A look exposing neither is a data
// defect.
//
// Products that fail to map are skipped; their count is reported so
// the caller can log the loss without failing the look.
func MapLook(raw upstream.Look) (domain.Look, []domain.Product, error) {
	id := raw.ID
	if id == "" {
		id = syntheticLookID(raw)
	}

	title := raw.Title
	if title == "" {
		title = fmt.Sprintf("Look %s", id)
	}

	var products []domain.Product
	var productIDs []string
	for _, rawProduct := range raw.Products {
		product, err := MapProduct(rawProduct)
		if err != nil {
			continue
		}
		products = append(products, product)
		productIDs = append(productIDs, product.Key())
	}

	if len(productIDs) == 0 {
		productIDs = append(productIDs, raw.ProductIDs...)
	}
	if len(productIDs) == 0 {
		return domain.Look{}, nil, domain.E(domain.CodeInvalidArgument, "mapping.MapLook", "look has no resolvable products", nil)
	}

	look := domain.Look{
		ID:          id,
		Title:       title,
		Description: raw.Description,
		ImageURL:    raw.ImageURL,
		URL:         raw.URL,
		ProductIDs:  productIDs,
		Attributes:  raw.Attributes,
	}
	return look, products, nil
}

// syntheticLookID derives a stable id from the fields that identify a
// look: its descriptive metadata and its ordered member products.
func syntheticLookID(raw upstream.Look) string {
	var b strings.Builder
	b.WriteString(raw.Title)
	b.WriteByte(0)
	b.WriteString(raw.URL)
	b.WriteByte(0)
	b.WriteString(raw.ImageURL)
	b.WriteByte(0)
	for _, p := range raw.Products {
		b.WriteString(firstNonEmpty(p.ProductID, p.AltID))
		b.WriteByte(':')
		b.WriteString(p.ColorID)
		b.WriteByte(0)
	}
	for _, id := range raw.ProductIDs {
		b.WriteString(id)
		b.WriteByte(0)
	}
	return SyntheticLookPrefix + uuid.NewSHA1(syntheticLookNamespace, []byte(b.String())).String()
}

// FormatPrice renders integer minor-currency units as a display
// string. Computed once at mapping time and carried on the entity.
func FormatPrice(cents int64) string {
	if cents < 0 {
		return ""
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
