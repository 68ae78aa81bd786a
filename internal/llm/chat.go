// Package llm wraps the chat-completion backends used for invoice
// structuring: an Azure OpenAI deployment invoked with a typed JSON-schema
// response contract (the model itself is responsible for schema conformance),
// a smaller instruction deployment that replies with free-form text, and a
// Bedrock-hosted Claude model addressed with the schema embedded in its
// system prompt.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
	"invoiceparser/pkg/models"
)

const maxCompletionTokens = 4096

// ChatRequest describes one structured-extraction call. LayoutText and
// ImageDataURL are each optional, but at least one must be set.
type ChatRequest struct {
	// LayoutText is the markdown output of the layout pass, if it ran.
	LayoutText string

	// ImageDataURL is the base64 data URL of the rasterized page, if the
	// method sends the image.
	ImageDataURL string
}

// ChatService invokes the Azure OpenAI deployments.
type ChatService struct {
	client          *openai.Client
	deployment      string
	smallDeployment string
	schema          *jsonschema.Definition
	log             zerolog.Logger
}

// NewChatService creates a chat service from the application configuration.
func NewChatService(cfg *config.Config) (*ChatService, error) {
	const op = "NewChatService"

	if cfg.OpenAIEndpoint == "" || cfg.OpenAIKey == "" {
		return nil, WrapLLMError(op, cfg.DeploymentName, ErrMissingCredentials, "OPENAI_ENDPOINT and OPENAI_KEY are required")
	}

	azureCfg := openai.DefaultAzureConfig(cfg.OpenAIKey, cfg.OpenAIEndpoint)
	azureCfg.APIVersion = cfg.OpenAIAPIVersion

	schema, err := jsonschema.GenerateSchemaForType(models.Invoice{})
	if err != nil {
		return nil, WrapLLMError(op, cfg.DeploymentName, err, "failed to generate invoice response schema")
	}

	return &ChatService{
		client:          openai.NewClientWithConfig(azureCfg),
		deployment:      cfg.DeploymentName,
		smallDeployment: cfg.SmallDeployment,
		schema:          schema,
		log:             logger.WithComponent("chat-llm"),
	}, nil
}

// NewChatServiceWithClient creates a chat service with an explicit client
// (for testing).
func NewChatServiceWithClient(client *openai.Client, deployment, smallDeployment string) (*ChatService, error) {
	schema, err := jsonschema.GenerateSchemaForType(models.Invoice{})
	if err != nil {
		return nil, err
	}
	return &ChatService{
		client:          client,
		deployment:      deployment,
		smallDeployment: smallDeployment,
		schema:          schema,
		log:             logger.WithComponent("chat-llm"),
	}, nil
}

// ExtractStructured sends the request to the multimodal deployment with a
// JSON-schema response format and decodes the schema-conformant reply.
func (s *ChatService) ExtractStructured(ctx context.Context, req ChatRequest) (*models.Invoice, error) {
	const op = "ExtractStructured"

	if req.LayoutText == "" && req.ImageDataURL == "" {
		return nil, WrapLLMError(op, s.deployment, ErrRequestFailed, "request carries neither text nor image")
	}

	system := systemPrompt
	switch {
	case req.LayoutText != "" && req.ImageDataURL != "":
		system += layoutWithImageSuffix
	case req.LayoutText != "":
		system += layoutTextOnlySuffix
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		s.userMessage(req),
	}

	s.log.Debug().
		Str("deployment", s.deployment).
		Bool("has_layout_text", req.LayoutText != "").
		Bool("has_image", req.ImageDataURL != "").
		Msg("Sending structured extraction request")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.deployment,
		Messages:  messages,
		MaxTokens: maxCompletionTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "invoice",
				Schema: s.schema,
				Strict: false,
			},
		},
	})
	if err != nil {
		return nil, WrapLLMError(op, s.deployment, ErrRequestFailed, err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, WrapLLMError(op, s.deployment, ErrNoChoices, "")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, WrapLLMError(op, s.deployment, ErrEmptyResponse, "")
	}

	var invoice models.Invoice
	if err := json.Unmarshal([]byte(content), &invoice); err != nil {
		// The typed response contract makes this unexpected; surface it with
		// the payload so the failure can be diagnosed.
		return nil, WrapLLMError(op, s.deployment, err, fmt.Sprintf("schema-typed response did not decode: %s", truncate(content, 512)))
	}

	return &invoice, nil
}

// ExtractFreeform sends the layout text to the small instruction deployment
// with the schema embedded in the prompt and returns the raw reply text. The
// reply is expected to be a JSON object but carries no format guarantee; the
// normalizer performs defensive parsing.
func (s *ChatService) ExtractFreeform(ctx context.Context, layoutText string) (string, error) {
	const op = "ExtractFreeform"

	system := systemPrompt + freeformSchemaInstruction + invoiceSchemaJSON

	s.log.Debug().
		Str("deployment", s.smallDeployment).
		Int("text_length", len(layoutText)).
		Msg("Sending freeform extraction request")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.smallDeployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Here is the extracted text from the invoice:\n\n%s\n\nPlease extract the information according to the model structure.", layoutText)},
		},
		MaxTokens:   maxCompletionTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", WrapLLMError(op, s.smallDeployment, ErrRequestFailed, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", WrapLLMError(op, s.smallDeployment, ErrNoChoices, "")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", WrapLLMError(op, s.smallDeployment, ErrEmptyResponse, "")
	}

	return content, nil
}

// userMessage builds the user turn: multi-part content when an image is
// attached, plain text otherwise.
func (s *ChatService) userMessage(req ChatRequest) openai.ChatCompletionMessage {
	text := imageUserPrompt
	if req.LayoutText != "" {
		text = fmt.Sprintf("Here is the extracted text from the invoice:\n\n%s\n\nPlease extract the information according to the model structure.", req.LayoutText)
	}

	if req.ImageDataURL == "" {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
	}

	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: req.ImageDataURL}},
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
