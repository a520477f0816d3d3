package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const promptOutfitAdvice = "outfit_advice"

// OutfitAdvicePrompt returns the outfit_advice prompt definition.
func OutfitAdvicePrompt() mcp.Prompt {
	return mcp.Prompt{
		Name:        promptOutfitAdvice,
		Description: "Styling advice workflow: ground outfit suggestions in the recommendation tools instead of inventing products.",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "occasion",
				Description: "The occasion to dress for, e.g. office, wedding guest, weekend.",
				Required:    true,
			},
			{
				Name:        "productId",
				Description: "Optional product to anchor the outfit around.",
			},
		},
	}
}

func (g *Gateway) registerPrompts() {
	prompt := OutfitAdvicePrompt()
	g.server.AddPrompt(&prompt, g.outfitAdviceHandler)
}

func (g *Gateway) outfitAdviceHandler(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	occasion := ""
	productID := ""
	if req != nil && req.Params != nil {
		occasion = strings.TrimSpace(req.Params.Arguments["occasion"])
		productID = strings.TrimSpace(req.Params.Arguments["productId"])
	}
	if occasion == "" {
		occasion = "an everyday outing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Help me put together an outfit for %s.\n\n", occasion)
	if productID != "" {
		fmt.Fprintf(&b, "Start from product %q: call %s with this productId to get curated looks, and %s if I ask for alternatives.\n",
			productID, toolCompleteTheLook, toolVisuallySimilar)
	} else {
		fmt.Fprintf(&b, "When I mention a product, call %s with its productId to get curated looks, and %s if I ask for alternatives.\n",
			toolCompleteTheLook, toolVisuallySimilar)
	}
	b.WriteString("Base every suggestion on products returned by those tools; read style://products and style://looks for anything already retrieved. Mention prices and stock state when they are present.")

	return &mcp.GetPromptResult{
		Description: "Outfit advice for " + occasion,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: b.String()},
			},
		},
	}, nil
}
