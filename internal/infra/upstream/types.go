package upstream

// RawProduct is an upstream product payload. Upstream API versions
// disagree on some field names; the alternates are resolved by the
// mapper, not here.
type RawProduct struct {
	ProductID   string         `json:"product_id"`
	AltID       string         `json:"id"`
	ColorID     string         `json:"color_id"`
	Name        string         `json:"name"`
	AltName     string         `json:"title"`
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Category    string         `json:"category"`
	Price       *int64         `json:"price"`
	SalePrice   *int64         `json:"sale_price"`
	InStock     *bool          `json:"in_stock"`
	OnSale      *bool          `json:"on_sale"`
	URL         string         `json:"url"`
	ImageURL    string         `json:"image_url"`
	Attributes  map[string]any `json:"attributes"`
}

// Look is the canonical outfit shape every client method returns,
// regardless of which historical upstream schema was received.
// Products holds embedded product objects when the response carried
// them; ProductIDs holds the bare ordered id list when it did not.
type Look struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	URL         string
	Products    []RawProduct
	ProductIDs  []string
	Attributes  map[string]any
}

// CompleteTheLookResponse is the normalized outfit-recommendation
// payload.
type CompleteTheLookResponse struct {
	PDPItem *RawProduct `json:"pdp_item"`
	Looks   []Look      `json:"looks"`
}

// VisuallySimilarResponse is the similar-items payload. Total is nil
// when upstream omits the field; an explicit zero is preserved.
type VisuallySimilarResponse struct {
	Products []RawProduct `json:"products"`
	Total    *int         `json:"total"`
}

// TrackEventResponse acknowledges an analytics event submission.
type TrackEventResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id"`
}

// UpdateFailure reports one rejected item in an item-detail update.
type UpdateFailure struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// UpdateItemsResponse acknowledges an item-detail update batch.
type UpdateItemsResponse struct {
	Success      bool            `json:"success"`
	UpdatedCount int             `json:"updated_count"`
	FailedCount  int             `json:"failed_count"`
	Failures     []UpdateFailure `json:"failures"`
}

// ItemUpdate is one item in an item-detail update request body.
// Absent optional fields are omitted from the wire entirely; upstream
// treats a missing field differently from an explicit zero value.
type ItemUpdate struct {
	ProductID  string         `json:"product_id"`
	ColorID    string         `json:"color_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Price      *int64         `json:"price,omitempty"`
	SalePrice  *int64         `json:"sale_price,omitempty"`
	InStock    *bool          `json:"in_stock,omitempty"`
	OnSale     *bool          `json:"on_sale,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// CompleteTheLookParams identifies the product to recommend outfits
// for. Nil optional flags are omitted from the request.
type CompleteTheLookParams struct {
	ProductID  string
	ColorID    string
	InStock    *bool
	OnSale     *bool
	Limit      int
	Offset     int
	SessionID  string
	APIVersion string
}

// VisuallySimilarParams identifies the product to find similar items
// for.
type VisuallySimilarParams struct {
	ProductID  string
	Limit      int
	Offset     int
	SessionID  string
	APIVersion string
}

// TrackEventParams describes one analytics event.
type TrackEventParams struct {
	EventType  string
	ProductID  string
	SessionID  string
	Attributes map[string]any
	APIVersion string
}

// UpdateItemsParams carries an item-detail update batch.
type UpdateItemsParams struct {
	Items      []ItemUpdate
	SessionID  string
	APIVersion string
}
