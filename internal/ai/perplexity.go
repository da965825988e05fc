package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	perplexityBaseURL = "https://api.perplexity.ai/chat/completions"
	defaultModel      = "llama-3.1-sonar-large-128k-online"
)

// PerplexityClient implements Client against Perplexity's online
// chat-completions API, which searches the live web while answering.
type PerplexityClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewPerplexityClient(apiKey string) *PerplexityClient {
	return &PerplexityClient{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: perplexityBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithModel overrides the model.
func (p *PerplexityClient) WithModel(model string) *PerplexityClient {
	p.model = model
	return p
}

// WithBaseURL overrides the API endpoint; used by tests.
func (p *PerplexityClient) WithBaseURL(baseURL string) *PerplexityClient {
	p.baseURL = baseURL
	return p
}

type chatRequest struct {
	Model           string        `json:"model"`
	Messages        []chatMessage `json:"messages"`
	ReturnCitations bool          `json:"return_citations"`
	Temperature     float64       `json:"temperature"`
	MaxTokens       int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Error     *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are a building materials price comparison expert for UK suppliers. " +
	"Provide specific pricing, supplier names, contact details, and product specifications."

// SearchMaterials asks the provider for current prices on a material and
// returns its prose answer with citations.
func (p *PerplexityClient) SearchMaterials(ctx context.Context, query string) (Answer, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: enhanceQuery(query)},
		},
		ReturnCitations: true,
		Temperature:     0.2,
		MaxTokens:       1500,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return Answer{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return Answer{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return Answer{}, fmt.Errorf("perplexity API error: %s (%s)", chatResp.Error.Message, chatResp.Error.Type)
	}
	if resp.StatusCode >= 400 {
		return Answer{}, fmt.Errorf("perplexity API status %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return Answer{}, fmt.Errorf("empty response from perplexity")
	}

	return Answer{
		Content:   chatResp.Choices[0].Message.Content,
		Citations: chatResp.Citations,
	}, nil
}

// enhanceQuery steers the provider toward priced, supplier-attributed
// answers instead of general product advice.
func enhanceQuery(query string) string {
	return fmt.Sprintf("Find the cheapest prices for %s in the UK. "+
		"Include product specifications, pricing per unit, supplier names, "+
		"contact information, and availability. Focus on UK building material "+
		"suppliers like Buildbase, Wickes, Screwfix, Jewson, Travis Perkins.", query)
}
