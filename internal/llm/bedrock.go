package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
)

const anthropicVersion = "bedrock-2023-05-31"

// ClaudeService invokes a Bedrock-hosted Claude model with the invoice schema
// embedded in the system prompt. The model replies with raw JSON text; no
// typed response contract exists, so the normalizer parses defensively.
type ClaudeService struct {
	client  *bedrockruntime.Client
	modelID string
	log     zerolog.Logger
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewClaudeService creates a Claude service from the application
// configuration using the default AWS credential chain.
func NewClaudeService(ctx context.Context, cfg *config.Config) (*ClaudeService, error) {
	const op = "NewClaudeService"

	if cfg.AWSRegion == "" {
		return nil, WrapLLMError(op, cfg.ClaudeModelID, ErrMissingCredentials, "AWS_REGION is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, WrapLLMError(op, cfg.ClaudeModelID, err, "failed to load AWS config")
	}

	return &ClaudeService{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ClaudeModelID,
		log:     logger.WithComponent("claude-llm"),
	}, nil
}

// NewClaudeServiceWithClient creates a Claude service with an explicit client
// (for testing).
func NewClaudeServiceWithClient(client *bedrockruntime.Client, modelID string) *ClaudeService {
	return &ClaudeService{
		client:  client,
		modelID: modelID,
		log:     logger.WithComponent("claude-llm"),
	}
}

// ExtractInvoiceJSON sends the page image (and optional supplemental text,
// e.g. a prior OCR or automation pass) to Claude and returns the raw reply
// text, which is expected to contain a JSON invoice object.
func (c *ClaudeService) ExtractInvoiceJSON(ctx context.Context, imageData []byte, mediaType, supplementalText string) (string, error) {
	const op = "ExtractInvoiceJSON"

	if len(imageData) == 0 && supplementalText == "" {
		return "", WrapLLMError(op, c.modelID, ErrRequestFailed, "request carries neither image nor text")
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	var content []claudeContent
	if len(imageData) > 0 {
		content = append(content, claudeContent{
			Type: "image",
			Source: &claudeImageSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}
	text := imageUserPrompt
	if supplementalText != "" {
		text = fmt.Sprintf("Here is the extracted text from the invoice:\n\n%s\n\nPlease extract the information according to the model structure.", supplementalText)
	}
	content = append(content, claudeContent{Type: "text", Text: text})

	body, err := json.Marshal(claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxCompletionTokens,
		System:           systemPrompt + freeformSchemaInstruction + invoiceSchemaJSON,
		Messages: []claudeMessage{
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return "", WrapLLMError(op, c.modelID, err, "failed to marshal request")
	}

	c.log.Debug().
		Str("model_id", c.modelID).
		Bool("has_image", len(imageData) > 0).
		Bool("has_text", supplementalText != "").
		Msg("Invoking Claude")

	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", WrapLLMError(op, c.modelID, ErrRequestFailed, err.Error())
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", WrapLLMError(op, c.modelID, err, "failed to decode response body")
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", WrapLLMError(op, c.modelID, ErrEmptyResponse, "")
}
