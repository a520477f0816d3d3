package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// rawLook mirrors the union of every look schema the upstream has
// shipped. The look id arrives as "look_id" or "id"; member products
// arrive as an embedded "products" list, an "items" list or id-keyed
// object, or a bare ordered "order" id list.
type rawLook struct {
	LookID      string          `json:"look_id"`
	AltID       string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	URL         string          `json:"url"`
	Products    []RawProduct    `json:"products"`
	Items       json.RawMessage `json:"items"`
	Order       []string        `json:"order"`
	Attributes  map[string]any  `json:"attributes"`
}

// UnmarshalJSON decodes any historical look schema and rewrites it
// into the canonical shape, so nothing downstream sees the variance.
func (l *Look) UnmarshalJSON(data []byte) error {
	var raw rawLook
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := raw.LookID
	if id == "" {
		id = raw.AltID
	}

	products := raw.Products
	if len(products) == 0 && len(raw.Items) > 0 {
		decoded, err := decodeItems(raw.Items)
		if err != nil {
			return err
		}
		products = decoded
	}

	var productIDs []string
	if len(products) == 0 && len(raw.Order) > 0 {
		productIDs = raw.Order
	}

	*l = Look{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		ImageURL:    raw.ImageURL,
		URL:         raw.URL,
		Products:    products,
		ProductIDs:  productIDs,
		Attributes:  raw.Attributes,
	}
	return nil
}

// decodeItems accepts the two "items" encodings: a plain product list,
// or an object mapping product id to product. Object decoding walks
// the token stream so the document's key order is preserved; losing it
// would reorder the outfit.
func decodeItems(data json.RawMessage) ([]RawProduct, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var products []RawProduct
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, err
		}
		return products, nil
	case '{':
		return decodeItemMap(trimmed)
	default:
		return nil, fmt.Errorf("look items: unsupported shape")
	}
}

func decodeItemMap(data []byte) ([]RawProduct, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var products []RawProduct
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("look items: non-string key")
		}

		var product RawProduct
		if err := dec.Decode(&product); err != nil {
			return nil, err
		}
		if product.ProductID == "" && product.AltID == "" {
			product.ProductID = id
		}
		products = append(products, product)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return products, nil
}
