// Package gateway exposes the integration service to tool-calling
// hosts over the Model Context Protocol.
package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"stylemcp/internal/app"
	"stylemcp/internal/domain"
	"stylemcp/internal/infra/config"
)

// Recommender is the service surface the gateway routes to.
// *app.Service satisfies it; tests substitute a fake.
type Recommender interface {
	GetCompleteTheLook(ctx context.Context, req app.LookRequest) (domain.CompleteTheLookResult, error)
	GetVisuallySimilar(ctx context.Context, req app.SimilarRequest) (domain.VisuallySimilarResult, error)
	TrackEvent(ctx context.Context, req app.EventRequest) (domain.TrackEventResult, error)
	UpdateItemDetails(ctx context.Context, req app.UpdateRequest) (domain.UpdateItemsResult, error)
	Product(id string) (domain.Product, bool)
	Look(id string) (domain.Look, bool)
	Products() []domain.Product
	Looks() []domain.Look
}

// Options configures a Gateway.
type Options struct {
	Service  Recommender
	Logger   *zap.Logger
	Version  string
	Features config.Features
}

// Gateway owns the MCP server and keeps its registered tool set in
// step with the feature flags.
type Gateway struct {
	service Recommender
	logger  *zap.Logger
	server  *mcp.Server

	mu         sync.Mutex
	registered map[string]struct{}
}

func New(opts Options) (*Gateway, error) {
	if opts.Service == nil {
		return nil, errors.New("service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "0.1.0"
	}

	g := &Gateway{
		service:    opts.Service,
		logger:     logger.Named("gateway"),
		registered: make(map[string]struct{}),
	}
	g.server = mcp.NewServer(&mcp.Implementation{
		Name:    "stylemcp",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
		HasPrompts:   true,
	})

	g.registerResources()
	g.registerPrompts()
	g.ApplyFeatures(opts.Features)
	return g, nil
}

// ApplyFeatures reconciles the registered tool set with the feature
// flags. Safe to call while the server is live; the config watcher
// calls it on every reload.
func (g *Gateway) ApplyFeatures(features config.Features) {
	g.mu.Lock()
	defer g.mu.Unlock()

	want := map[string]bool{
		toolCompleteTheLook:   true,
		toolVisuallySimilar:   true,
		toolTrackEvent:        features.TrackEvent,
		toolUpdateItemDetails: features.UpdateItemDetails,
	}

	for name, enabled := range want {
		_, has := g.registered[name]
		switch {
		case enabled && !has:
			tool, handler := g.toolByName(name)
			g.server.AddTool(tool, handler)
			g.registered[name] = struct{}{}
			g.logger.Info("tool registered", zap.String("tool", name))
		case !enabled && has:
			g.server.RemoveTools(name)
			delete(g.registered, name)
			g.logger.Info("tool removed", zap.String("tool", name))
		}
	}
}

// Run serves the MCP protocol over stdio until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("gateway starting (stdio transport)")
	return g.server.Run(ctx, &mcp.StdioTransport{})
}
