package domain

// Product is a single purchasable item as exposed to the host.
// Identity is the (ID, ColorID) pair when a color variant is present,
// otherwise ID alone; Key returns the store key for either case.
type Product struct {
	ID          string         `json:"id"`
	ColorID     string         `json:"colorId,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Brand       string         `json:"brand,omitempty"`
	Category    string         `json:"category,omitempty"`
	PriceCents  *int64         `json:"priceCents,omitempty"`
	SaleCents   *int64         `json:"salePriceCents,omitempty"`
	Price       string         `json:"price,omitempty"`
	SalePrice   string         `json:"salePrice,omitempty"`
	InStock     bool           `json:"inStock"`
	OnSale      bool           `json:"onSale"`
	URL         string         `json:"url,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Key returns the identifier products are stored and referenced under.
func (p Product) Key() string {
	if p.ColorID == "" {
		return p.ID
	}
	return p.ID + ":" + p.ColorID
}

// Look is a recommended outfit: an ordered group of product references.
// ProductIDs preserves upstream display order.
type Look struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	URL         string         `json:"url,omitempty"`
	ProductIDs  []string       `json:"productIds"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// CompleteTheLookResult is the outcome of an outfit recommendation call.
type CompleteTheLookResult struct {
	Product *Product `json:"product,omitempty"`
	Looks   []Look   `json:"looks"`
}

// VisuallySimilarResult is the outcome of a similar-items lookup.
type VisuallySimilarResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// TrackEventResult is the outcome of an analytics event submission.
type TrackEventResult struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId,omitempty"`
}

// ItemFailure describes one item rejected by an item-detail update.
type ItemFailure struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason,omitempty"`
}

// UpdateItemsResult is the outcome of an item-detail update batch.
type UpdateItemsResult struct {
	Success      bool          `json:"success"`
	UpdatedCount int           `json:"updatedCount"`
	FailedCount  int           `json:"failedCount"`
	Failures     []ItemFailure `json:"failures,omitempty"`
}
