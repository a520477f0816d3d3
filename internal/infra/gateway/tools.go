package gateway

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stylemcp/internal/app"
	"stylemcp/internal/domain"
	"stylemcp/internal/infra/upstream"
)

const (
	toolCompleteTheLook   = "get_complete_the_look"
	toolVisuallySimilar   = "get_visually_similar"
	toolTrackEvent        = "track_event"
	toolUpdateItemDetails = "update_item_details"
)

// CompleteTheLookTool returns the tool definition for get_complete_the_look.
func CompleteTheLookTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolCompleteTheLook,
		Description: "Get curated outfit recommendations (\"looks\") for a product. Each look groups the anchor product with complementary items; returned products and looks are also published as style:// resources.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"productId": map[string]any{
					"type":        "string",
					"description": "Identifier of the anchor product to build outfits around.",
				},
				"colorId": map[string]any{
					"type":        "string",
					"description": "Optional color variant of the anchor product.",
				},
				"inStock": map[string]any{
					"type":        "boolean",
					"description": "Only recommend items currently in stock.",
				},
				"onSale": map[string]any{
					"type":        "boolean",
					"description": "Only recommend items currently on sale.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of looks to return.",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Number of looks to skip, for paging.",
				},
				"sessionId": map[string]any{
					"type":        "string",
					"description": "Optional session identifier forwarded for personalization.",
				},
			},
			"required": []string{"productId"},
		},
	}
}

// VisuallySimilarTool returns the tool definition for get_visually_similar.
func VisuallySimilarTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolVisuallySimilar,
		Description: "Find products visually similar to a given product. Results are published as style:// resources.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"productId": map[string]any{
					"type":        "string",
					"description": "Identifier of the reference product.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of similar products to return.",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Number of products to skip, for paging.",
				},
				"sessionId": map[string]any{
					"type":        "string",
					"description": "Optional session identifier forwarded for personalization.",
				},
			},
			"required": []string{"productId"},
		},
	}
}

// TrackEventTool returns the tool definition for track_event.
func TrackEventTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolTrackEvent,
		Description: "Record an analytics event (view, click, add-to-cart, purchase) against a product.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"eventType": map[string]any{
					"type":        "string",
					"description": "Event kind, e.g. view, click, add_to_cart, purchase.",
				},
				"productId": map[string]any{
					"type":        "string",
					"description": "Product the event applies to.",
				},
				"sessionId": map[string]any{
					"type":        "string",
					"description": "Optional session identifier for attribution.",
				},
				"attributes": map[string]any{
					"type":        "object",
					"description": "Free-form event attributes.",
				},
			},
			"required": []string{"eventType", "productId"},
		},
	}
}

// UpdateItemDetailsTool returns the tool definition for update_item_details.
func UpdateItemDetailsTool() mcp.Tool {
	return mcp.Tool{
		Name:        toolUpdateItemDetails,
		Description: "Push catalog corrections (price, stock, sale state) for one or more products to the recommendation engine.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"items": map[string]any{
					"type":        "array",
					"description": "Item updates to apply.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"product_id": map[string]any{
								"type":        "string",
								"description": "Product to update.",
							},
							"color_id": map[string]any{
								"type":        "string",
								"description": "Optional color variant.",
							},
							"price": map[string]any{
								"type":        "integer",
								"description": "New price in minor currency units.",
							},
							"sale_price": map[string]any{
								"type":        "integer",
								"description": "New sale price in minor currency units.",
							},
							"in_stock": map[string]any{
								"type":        "boolean",
								"description": "New stock state.",
							},
							"on_sale": map[string]any{
								"type":        "boolean",
								"description": "New sale state.",
							},
						},
						"required": []string{"product_id"},
					},
				},
				"sessionId": map[string]any{
					"type":        "string",
					"description": "Optional session identifier.",
				},
			},
			"required": []string{"items"},
		},
	}
}

func (g *Gateway) toolByName(name string) (*mcp.Tool, mcp.ToolHandler) {
	switch name {
	case toolCompleteTheLook:
		tool := CompleteTheLookTool()
		return &tool, g.completeTheLookHandler
	case toolVisuallySimilar:
		tool := VisuallySimilarTool()
		return &tool, g.visuallySimilarHandler
	case toolTrackEvent:
		tool := TrackEventTool()
		return &tool, g.trackEventHandler
	case toolUpdateItemDetails:
		tool := UpdateItemDetailsTool()
		return &tool, g.updateItemDetailsHandler
	}
	panic("unknown tool " + name)
}

// Stock/sale flags are pointers so an omitted flag stays omitted all
// the way to the upstream wire.
type completeTheLookArgs struct {
	ProductID string `json:"productId"`
	ColorID   string `json:"colorId"`
	InStock   *bool  `json:"inStock"`
	OnSale    *bool  `json:"onSale"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SessionID string `json:"sessionId"`
}

func (g *Gateway) completeTheLookHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args completeTheLookArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	result, err := g.service.GetCompleteTheLook(ctx, app.LookRequest{
		ProductID: args.ProductID,
		ColorID:   args.ColorID,
		InStock:   args.InStock,
		OnSale:    args.OnSale,
		Limit:     args.Limit,
		Offset:    args.Offset,
		SessionID: args.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return toolResult(result)
}

type visuallySimilarArgs struct {
	ProductID string `json:"productId"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SessionID string `json:"sessionId"`
}

func (g *Gateway) visuallySimilarHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args visuallySimilarArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	result, err := g.service.GetVisuallySimilar(ctx, app.SimilarRequest{
		ProductID: args.ProductID,
		Limit:     args.Limit,
		Offset:    args.Offset,
		SessionID: args.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return toolResult(result)
}

type trackEventArgs struct {
	EventType  string         `json:"eventType"`
	ProductID  string         `json:"productId"`
	SessionID  string         `json:"sessionId"`
	Attributes map[string]any `json:"attributes"`
}

func (g *Gateway) trackEventHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args trackEventArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	result, err := g.service.TrackEvent(ctx, app.EventRequest{
		EventType:  args.EventType,
		ProductID:  args.ProductID,
		SessionID:  args.SessionID,
		Attributes: args.Attributes,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return toolResult(result)
}

type updateItemDetailsArgs struct {
	Items     []upstream.ItemUpdate `json:"items"`
	SessionID string                `json:"sessionId"`
}

func (g *Gateway) updateItemDetailsHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateItemDetailsArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	result, err := g.service.UpdateItemDetails(ctx, app.UpdateRequest{
		Items:     args.Items,
		SessionID: args.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return toolResult(result)
}

func decodeArgs(req *mcp.CallToolRequest, into any) error {
	raw := json.RawMessage(req.Params.Arguments)
	if len(raw) == 0 {
		return domain.E(domain.CodeInvalidArgument, "gateway.decodeArgs", "arguments are required", nil)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return domain.E(domain.CodeInvalidArgument, "gateway.decodeArgs", "malformed arguments", err)
	}
	return nil
}

func toolResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: payload,
	}, nil
}

// errorResult renders a service error as a tool-level failure so the
// host sees a structured code instead of a protocol error.
func errorResult(err error) *mcp.CallToolResult {
	code, ok := domain.CodeFrom(err)
	if !ok {
		code = domain.CodeInternal
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		StructuredContent: map[string]any{
			"code":    string(code),
			"message": err.Error(),
		},
	}
}
