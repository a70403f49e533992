package evaluator

import (
	"context"
	"errors"
	"io"

	"evaluate_homework/config"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModel is used when the settings name no model.
	DefaultModel = openai.ChatModelGPT4oMini
	// Temperature keeps grading close to deterministic.
	Temperature = 0.2
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
type OpenAILLM struct {
	Model  string
	client openai.Client
}

// NewOpenAILLMFromConfig builds a client that makes exactly one attempt per
// request. Extra options are appended after the ones derived from cfg.
func NewOpenAILLMFromConfig(cfg *config.LLMSettings, extra ...option.RequestOption) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OpenAI__ApiKey or the OpenAI:ApiKey user secret")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &OpenAILLM{Model: model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
	}
	for _, m := range prompt.Messages {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.Model),
		Messages:    msgs,
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Completion{}, remoteError(apiErr)
		}
		return Completion{}, err
	}

	out := Completion{ID: resp.ID, Model: resp.Model}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Index:   c.Index,
			Message: Message{Role: string(c.Message.Role), Content: c.Message.Content},
		})
	}
	return out, nil
}

func remoteError(apiErr *openai.Error) *RemoteError {
	body := apiErr.RawJSON()
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if b, err := io.ReadAll(apiErr.Response.Body); err == nil && len(b) > 0 {
			body = string(b)
		}
	}
	return &RemoteError{StatusCode: apiErr.StatusCode, Body: body}
}
