package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stylemcp/internal/domain"
)

const (
	resourceProducts = "style://products"
	resourceLooks    = "style://looks"

	productTemplate = "style://product/{id}"
	lookTemplate    = "style://look/{id}"

	productPrefix = "style://product/"
	lookPrefix    = "style://look/"

	jsonMIME = "application/json"
)

// registerResources publishes the resource store over the protocol.
// Listings are static URIs; individual entities are URI templates so
// hosts can address anything the store has seen.
func (g *Gateway) registerResources() {
	g.server.AddResource(&mcp.Resource{
		URI:         resourceProducts,
		Name:        "products",
		Description: "Every product observed in recommendation responses this session.",
		MIMEType:    jsonMIME,
	}, g.productsHandler)

	g.server.AddResource(&mcp.Resource{
		URI:         resourceLooks,
		Name:        "looks",
		Description: "Every look observed in recommendation responses this session.",
		MIMEType:    jsonMIME,
	}, g.looksHandler)

	g.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: productTemplate,
		Name:        "product",
		Description: "One product by id, as seen in a recommendation response.",
		MIMEType:    jsonMIME,
	}, g.productHandler)

	g.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: lookTemplate,
		Name:        "look",
		Description: "One look by id, as seen in a recommendation response.",
		MIMEType:    jsonMIME,
	}, g.lookHandler)
}

func (g *Gateway) productsHandler(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return resourceJSON(resourceProducts, g.service.Products())
}

func (g *Gateway) looksHandler(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return resourceJSON(resourceLooks, g.service.Looks())
}

func (g *Gateway) productHandler(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := strings.TrimPrefix(req.Params.URI, productPrefix)
	if id == "" || id == req.Params.URI {
		return nil, domain.E(domain.CodeInvalidArgument, "gateway.productHandler", "product uri must be style://product/{id}", nil)
	}
	product, ok := g.service.Product(id)
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "gateway.productHandler", "product "+id+" not in store", nil)
	}
	return resourceJSON(req.Params.URI, product)
}

func (g *Gateway) lookHandler(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := strings.TrimPrefix(req.Params.URI, lookPrefix)
	if id == "" || id == req.Params.URI {
		return nil, domain.E(domain.CodeInvalidArgument, "gateway.lookHandler", "look uri must be style://look/{id}", nil)
	}
	look, ok := g.service.Look(id)
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "gateway.lookHandler", "look "+id+" not in store", nil)
	}
	return resourceJSON(req.Params.URI, look)
}

func resourceJSON(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}
