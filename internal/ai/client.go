package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Client answers a building-materials query with free-form prose the
// extraction pipeline turns into records.
type Client interface {
	SearchMaterials(ctx context.Context, query string) (Answer, error)
}

// Answer is the raw provider output: unstructured text plus any source URLs
// the provider cited.
type Answer struct {
	Content   string
	Citations []string
}

// NewClient creates an AI client based on the AI_PROVIDER environment
// variable. Supported providers: "perplexity" (default if
// PERPLEXITY_API_KEY is set), "mock".
func NewClient() Client {
	provider := strings.ToLower(os.Getenv("AI_PROVIDER"))
	apiKey := os.Getenv("PERPLEXITY_API_KEY")

	if provider == "" {
		if apiKey != "" {
			provider = "perplexity"
		} else {
			provider = "mock"
		}
	}

	switch provider {
	case "perplexity":
		if apiKey == "" {
			fmt.Println("WARNING: AI_PROVIDER=perplexity but PERPLEXITY_API_KEY not set, falling back to mock")
			return NewMockClient()
		}
		return NewPerplexityClient(apiKey)
	default:
		fmt.Println("Using mock AI client (set PERPLEXITY_API_KEY for real answers)")
		return NewMockClient()
	}
}

// MockClient returns a canned supplier comparison so the demo endpoint and
// offline development exercise the full extraction path.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

const mockAnswer = `Here are the cheapest options from UK suppliers:

1. Buildbase – Kingspan Therma PIR Insulation Board 50mm – £24.99 (£8.33 per m²). In stock. Next day delivery available. Tel: 0330 123 4567. Dimensions: 2400mm x 1200mm x 50mm.

2. Wickes – Celotex GA4050 PIR Board 50mm – £26.50 (£8.83 per m²). In stock. Free delivery on orders over £75. Tel: 0330 123 4321.

3. Trade Insulations – Recticel Eurothane GP 50mm – £23.75. Available to order. Nationwide delivery within 3 days.`

func (m *MockClient) SearchMaterials(ctx context.Context, query string) (Answer, error) {
	return Answer{
		Content: mockAnswer,
		Citations: []string{
			"https://www.buildbase.co.uk",
			"https://www.wickes.co.uk",
			"https://www.tradeinsulations.co.uk",
		},
	}, nil
}
