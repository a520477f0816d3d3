// Package app hosts the integration service: the single orchestration
// boundary between the routing layer and the upstream client, cache,
// mapper, and resource store.
package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"stylemcp/internal/domain"
	"stylemcp/internal/infra/mapping"
	"stylemcp/internal/infra/telemetry"
	"stylemcp/internal/infra/upstream"
)

// Upstream is the client surface the service depends on.
// *upstream.Client satisfies it; tests substitute a fake.
type Upstream interface {
	CompleteTheLook(ctx context.Context, p upstream.CompleteTheLookParams) (*upstream.CompleteTheLookResponse, error)
	VisuallySimilar(ctx context.Context, p upstream.VisuallySimilarParams) (*upstream.VisuallySimilarResponse, error)
	TrackEvent(ctx context.Context, p upstream.TrackEventParams) (*upstream.TrackEventResponse, error)
	UpdateItems(ctx context.Context, p upstream.UpdateItemsParams) (*upstream.UpdateItemsResponse, error)
}

// LookRequest asks for outfit recommendations for one product. Nil
// stock/sale flags mean the caller did not filter; they are omitted
// from the upstream request rather than sent as false.
type LookRequest struct {
	ProductID  string
	ColorID    string
	InStock    *bool
	OnSale     *bool
	Limit      int
	Offset     int
	SessionID  string
	APIVersion string
}

// SimilarRequest asks for visually similar products.
type SimilarRequest struct {
	ProductID  string
	Limit      int
	Offset     int
	SessionID  string
	APIVersion string
}

// EventRequest submits one analytics event.
type EventRequest struct {
	EventType  string
	ProductID  string
	SessionID  string
	Attributes map[string]any
	APIVersion string
}

// UpdateRequest submits an item-detail update batch.
type UpdateRequest struct {
	Items      []upstream.ItemUpdate
	SessionID  string
	APIVersion string
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Upstream         Upstream
	Store            *domain.ResourceStore
	Logger           *zap.Logger
	Metrics          *telemetry.Metrics
	CacheEnabled     bool
	CacheTTL         time.Duration
	DefaultSessionID string
}

// Service orchestrates every operation the routing layer exposes. It
// owns the response caches and is the only writer of the resource
// store.
type Service struct {
	upstream         Upstream
	store            *domain.ResourceStore
	logger           *zap.Logger
	metrics          *telemetry.Metrics
	cacheEnabled     bool
	defaultSessionID string

	lookCache    *domain.TTLCache[upstream.CompleteTheLookResponse]
	similarCache *domain.TTLCache[upstream.VisuallySimilarResponse]
}

func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = domain.NewResourceStore(0)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		upstream:         opts.Upstream,
		store:            store,
		logger:           logger.Named("service"),
		metrics:          opts.Metrics,
		cacheEnabled:     opts.CacheEnabled,
		defaultSessionID: opts.DefaultSessionID,
		lookCache:        domain.NewTTLCache[upstream.CompleteTheLookResponse](ttl),
		similarCache:     domain.NewTTLCache[upstream.VisuallySimilarResponse](ttl),
	}
}

// StartSweepers periodically evicts expired cache entries until ctx is
// done.
func (s *Service) StartSweepers(ctx context.Context, interval time.Duration) {
	s.lookCache.StartSweeper(ctx, interval)
	s.similarCache.StartSweeper(ctx, interval)
}

// GetCompleteTheLook returns outfit recommendations for a product,
// serving a live cached response when one exists.
func (s *Service) GetCompleteTheLook(ctx context.Context, req LookRequest) (domain.CompleteTheLookResult, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.CompleteTheLookResult{}, domain.E(domain.CodeInvalidArgument, "service.GetCompleteTheLook", "product id is required", nil)
	}

	// The session id affects only upstream personalization bookkeeping,
	// never the cacheable response, so it stays out of the fingerprint.
	fp := domain.Fingerprint(upstream.OpCompleteTheLook,
		domain.StringPart("product", productID),
		domain.StringPart("color", req.ColorID),
		domain.OptBoolPart("in_stock", req.InStock),
		domain.OptBoolPart("on_sale", req.OnSale),
		domain.IntPart("limit", req.Limit),
		domain.IntPart("offset", req.Offset),
	)

	if s.cacheEnabled {
		if cached, ok := s.lookCache.Get(fp); ok {
			s.metrics.IncCacheHit(upstream.OpCompleteTheLook)
			return s.assembleLookResult(ctx, &cached), nil
		}
		s.metrics.IncCacheMiss(upstream.OpCompleteTheLook)
	}

	resp, err := s.upstream.CompleteTheLook(ctx, upstream.CompleteTheLookParams{
		ProductID:  productID,
		ColorID:    req.ColorID,
		InStock:    req.InStock,
		OnSale:     req.OnSale,
		Limit:      req.Limit,
		Offset:     req.Offset,
		SessionID:  s.session(req.SessionID),
		APIVersion: req.APIVersion,
	})
	if err != nil {
		return domain.CompleteTheLookResult{}, err
	}

	s.lookCache.Set(fp, *resp)
	return s.assembleLookResult(ctx, resp), nil
}

// GetVisuallySimilar returns products visually similar to the given
// one, serving a live cached response when one exists.
func (s *Service) GetVisuallySimilar(ctx context.Context, req SimilarRequest) (domain.VisuallySimilarResult, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.VisuallySimilarResult{}, domain.E(domain.CodeInvalidArgument, "service.GetVisuallySimilar", "product id is required", nil)
	}

	fp := domain.Fingerprint(upstream.OpVisuallySimilar,
		domain.StringPart("product", productID),
		domain.IntPart("limit", req.Limit),
		domain.IntPart("offset", req.Offset),
	)

	if s.cacheEnabled {
		if cached, ok := s.similarCache.Get(fp); ok {
			s.metrics.IncCacheHit(upstream.OpVisuallySimilar)
			return s.assembleSimilarResult(ctx, &cached), nil
		}
		s.metrics.IncCacheMiss(upstream.OpVisuallySimilar)
	}

	resp, err := s.upstream.VisuallySimilar(ctx, upstream.VisuallySimilarParams{
		ProductID:  productID,
		Limit:      req.Limit,
		Offset:     req.Offset,
		SessionID:  s.session(req.SessionID),
		APIVersion: req.APIVersion,
	})
	if err != nil {
		return domain.VisuallySimilarResult{}, err
	}

	s.similarCache.Set(fp, *resp)
	return s.assembleSimilarResult(ctx, resp), nil
}

// TrackEvent submits one analytics event. Write operations are never
// cached and add no retry budget beyond the client's.
func (s *Service) TrackEvent(ctx context.Context, req EventRequest) (domain.TrackEventResult, error) {
	if strings.TrimSpace(req.EventType) == "" {
		return domain.TrackEventResult{}, domain.E(domain.CodeInvalidArgument, "service.TrackEvent", "event type is required", nil)
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.TrackEventResult{}, domain.E(domain.CodeInvalidArgument, "service.TrackEvent", "product id is required", nil)
	}

	resp, err := s.upstream.TrackEvent(ctx, upstream.TrackEventParams{
		EventType:  req.EventType,
		ProductID:  req.ProductID,
		SessionID:  s.session(req.SessionID),
		Attributes: req.Attributes,
		APIVersion: req.APIVersion,
	})
	if err != nil {
		return domain.TrackEventResult{}, err
	}
	return domain.TrackEventResult{
		Success: resp.Success,
		EventID: resp.EventID,
	}, nil
}

// UpdateItemDetails submits an item-detail update batch.
func (s *Service) UpdateItemDetails(ctx context.Context, req UpdateRequest) (domain.UpdateItemsResult, error) {
	if len(req.Items) == 0 {
		return domain.UpdateItemsResult{}, domain.E(domain.CodeInvalidArgument, "service.UpdateItemDetails", "at least one item is required", nil)
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.UpdateItemsResult{}, domain.E(domain.CodeInvalidArgument, "service.UpdateItemDetails", "every item needs a product id", nil)
		}
	}

	resp, err := s.upstream.UpdateItems(ctx, upstream.UpdateItemsParams{
		Items:      req.Items,
		SessionID:  s.session(req.SessionID),
		APIVersion: req.APIVersion,
	})
	if err != nil {
		return domain.UpdateItemsResult{}, err
	}

	result := domain.UpdateItemsResult{
		Success:      resp.Success,
		UpdatedCount: resp.UpdatedCount,
		FailedCount:  resp.FailedCount,
	}
	for _, failure := range resp.Failures {
		result.Failures = append(result.Failures, domain.ItemFailure{
			ProductID: failure.ProductID,
			Reason:    failure.Reason,
		})
	}
	return result, nil
}

// Product reads one product from the resource store; no upstream call.
func (s *Service) Product(id string) (domain.Product, bool) {
	return s.store.Product(id)
}

// Look reads one look from the resource store; no upstream call.
func (s *Service) Look(id string) (domain.Look, bool) {
	return s.store.Look(id)
}

// Products lists every stored product.
func (s *Service) Products() []domain.Product {
	return s.store.Products()
}

// Looks lists every stored look.
func (s *Service) Looks() []domain.Look {
	return s.store.Looks()
}

func (s *Service) session(override string) string {
	if override != "" {
		return override
	}
	return s.defaultSessionID
}

// assembleLookResult maps a normalized upstream response into domain
// entities and publishes them. Individual entities that fail to map
// are logged and skipped; a single bad record never aborts the
// response.
func (s *Service) assembleLookResult(ctx context.Context, resp *upstream.CompleteTheLookResponse) domain.CompleteTheLookResult {
	logger := telemetry.LoggerWithRequest(ctx, s.logger)

	result := domain.CompleteTheLookResult{Looks: []domain.Look{}}
	if resp.PDPItem != nil {
		product, err := mapping.MapProduct(*resp.PDPItem)
		if err != nil {
			logger.Warn("skipping unmappable pdp product", zap.Error(err))
			s.metrics.IncSkippedEntity("product")
		} else {
			s.store.PutProduct(product)
			result.Product = &product
		}
	}

	for _, rawLook := range resp.Looks {
		look, products, err := mapping.MapLook(rawLook)
		if err != nil {
			logger.Warn("skipping unmappable look", zap.String("look_id", rawLook.ID), zap.Error(err))
			s.metrics.IncSkippedEntity("look")
			continue
		}
		for _, product := range products {
			s.store.PutProduct(product)
		}
		s.store.PutLook(look)
		result.Looks = append(result.Looks, look)
	}

	s.publishStoreStats()
	return result
}

func (s *Service) assembleSimilarResult(ctx context.Context, resp *upstream.VisuallySimilarResponse) domain.VisuallySimilarResult {
	logger := telemetry.LoggerWithRequest(ctx, s.logger)

	result := domain.VisuallySimilarResult{Products: []domain.Product{}}
	for _, raw := range resp.Products {
		product, err := mapping.MapProduct(raw)
		if err != nil {
			logger.Warn("skipping unmappable product", zap.Error(err))
			s.metrics.IncSkippedEntity("product")
			continue
		}
		s.store.PutProduct(product)
		result.Products = append(result.Products, product)
	}

	// An absent total falls back to the mapped count; an explicit
	// upstream zero is reported as-is.
	if resp.Total != nil {
		result.Total = *resp.Total
	} else {
		result.Total = len(result.Products)
	}

	s.publishStoreStats()
	return result
}

func (s *Service) publishStoreStats() {
	stats := s.store.Stats()
	s.metrics.SetStoreEntities("product", stats.ProductCount)
	s.metrics.SetStoreEntities("look", stats.LookCount)
}
