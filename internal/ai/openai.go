package ai

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// PerplexityBaseURL is the OpenAI-compatible endpoint used when the provider
// is "perplexity" and no base URL is configured.
const PerplexityBaseURL = "https://api.perplexity.ai"

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	provider string
	model    string
	client   openai.Client
}

func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, errors.New("api key missing; set generator.api_key_env")
	}
	if s.Model == "" {
		return nil, errors.New("generator model is required")
	}
	provider := s.Provider
	if provider == "" {
		provider = "openai"
	}
	baseURL := s.BaseURL
	if baseURL == "" && provider == "perplexity" {
		baseURL = PerplexityBaseURL
	}
	// Retries are owned by the conversation layer.
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(s.Timeout))
	}
	return &OpenAI{provider: provider, model: s.Model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	for _, t := range append(append([]Turn{}, req.Prior...), req.Turn) {
		switch t.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, &APIError{Provider: o.provider, Status: apiErr.StatusCode, Kind: classifyStatus(apiErr.StatusCode), Err: err}
		}
		return Response{}, &APIError{Provider: o.provider, Kind: classifyTransport(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return Response{}, &APIError{Provider: o.provider, Kind: classifyStatus(0), Err: errors.New("empty choices")}
	}
	return Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
