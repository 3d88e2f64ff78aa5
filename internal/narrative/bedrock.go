package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// Generator produces narrative text for a serialized report.
type Generator interface {
	Generate(ctx context.Context, serialized string) (string, error)
}

const systemPrompt = `You are a marketing analyst writing for a small-business dashboard.
Given the report numbers below, write a short plain-language summary (3-5 sentences)
of how the advertising performed. Mention the overall trend, the strongest performer,
and anything unusual. Do not repeat every number; pick the ones that matter.
Spend figures for local search are in Korean won.`

// BedrockGenerator calls AWS Bedrock's InvokeModel API with a Claude request.
type BedrockGenerator struct {
	client  *bedrockruntime.Client
	modelID string
}

// NewBedrockGenerator loads AWS config for the region and builds a generator
// bound to the given model.
func NewBedrockGenerator(ctx context.Context, region, modelID string) (*BedrockGenerator, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	zap.L().Info("Bedrock narrative generator ready",
		zap.String("model_id", modelID),
		zap.String("region", region))
	return &BedrockGenerator{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
	}, nil
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate invokes the model with the serialized report and returns the text.
func (g *BedrockGenerator) Generate(ctx context.Context, serialized string) (string, error) {
	req := claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        600,
		System:           systemPrompt,
		Messages:         []claudeMessage{{Role: "user", Content: serialized}},
		Temperature:      0.3,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke bedrock model: %w", err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode bedrock response: %w", err)
	}
	var parts []string
	for _, c := range resp.Content {
		if c.Type == "text" && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("bedrock response contained no text")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
