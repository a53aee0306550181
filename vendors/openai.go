package vendors

import (
	"context"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/drishyamitra/drishyamitra/config"
	"github.com/drishyamitra/drishyamitra/log"
	"github.com/drishyamitra/drishyamitra/utils"
)

var (
	openaiClient     *OpenAIClient
	openaiClientOnce sync.Once
)

// OpenAIClient wraps the OpenAI client
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// ChatTurn is one prior message of a conversation, oldest first
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// CompletionOptions holds options for completions
type CompletionOptions struct {
	SystemPrompt string
	History      []ChatTurn
	Prompt       string
	MaxTokens    int
	Temperature  float32
	JSONMode     bool
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        struct {
		PromptTokens     int
		CompletionTokens int
		TotalTokens      int
	}
}

// GetOpenAIClient returns the singleton OpenAI client.
// Returns nil when OPENAI_API_KEY is not configured; all methods
// on a nil receiver are no-ops so callers can degrade gracefully.
func GetOpenAIClient() *OpenAIClient {
	openaiClientOnce.Do(func() {
		cfg := config.Get()

		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not configured, OpenAI disabled")
			return
		}

		clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" && cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
			clientConfig.BaseURL = cfg.OpenAIBaseURL
		}

		openaiClient = &OpenAIClient{
			client: openai.NewClientWithConfig(clientConfig),
			model:  cfg.OpenAIModel,
		}

		log.Info().Str("model", cfg.OpenAIModel).Str("baseURL", cfg.OpenAIBaseURL).Msg("OpenAI initialized")
	})

	return openaiClient
}

// Available reports whether the client is configured
func (o *OpenAIClient) Available() bool {
	return o != nil
}

// Complete performs a chat completion
func (o *OpenAIClient) Complete(ctx context.Context, opts CompletionOptions) (*CompletionResponse, error) {
	if o == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var messages []openai.ChatCompletionMessage

	if opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}

	for _, turn := range opts.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: opts.Prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("completion failed")
		return nil, err
	}

	if len(resp.Choices) == 0 {
		log.Error().Interface("response", resp).Msg("openai response has no choices")
		return &CompletionResponse{}, nil
	}

	content := resp.Choices[0].Message.Content
	finishReason := string(resp.Choices[0].FinishReason)

	log.Debug().
		Str("finishReason", finishReason).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("openai response")

	return &CompletionResponse{
		Content:      content,
		FinishReason: finishReason,
		Usage: struct {
			PromptTokens     int
			CompletionTokens int
			TotalTokens      int
		}{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// GenerateTags generates descriptive tags for a photo from its metadata
func (o *OpenAIClient) GenerateTags(ctx context.Context, description string) ([]string, error) {
	if o == nil {
		return nil, nil
	}

	systemPrompt := `You are a photo library organizer. Generate 3-8 short tags describing the photo.
Tag format: lowercase with spaces (e.g., "golden hour"), but honor conventions for proper nouns.
No hashtags or numbering.
Respond with JSON in format: {"tags": ["tag1", "tag2", ...]}`

	resp, err := o.Complete(ctx, CompletionOptions{
		SystemPrompt: systemPrompt,
		Prompt:       "Produce tags for the following photo.\n\n" + description,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := utils.ParseJSONFromLLMResponse(resp.Content)
	if err != nil {
		log.Error().Err(err).Str("content", resp.Content).Msg("failed to parse tags JSON")
		return []string{}, nil
	}

	return utils.ExtractStringList(parsed, "tags", 10), nil
}
