package copygen

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// LLM produces copy text for a prompt plus an inline image.
type LLM interface {
	GenerateCopy(ctx context.Context, prompt, imageDataURL string) (string, error)
}

type openAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds an LLM backed by the OpenAI chat completions
// API with vision input.
func NewOpenAIClient(apiKey, model string) LLM {
	return &openAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *openAIClient) GenerateCopy(ctx context.Context, prompt, imageDataURL string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageDataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
