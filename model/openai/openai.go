// Package openai implements the intent classifier and reply generator
// collaborators on the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/model"
)

// Options configure the OpenAI collaborator adapter. Fields mirror a subset
// of Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Collaborator implements core.IntentClassifier and core.ReplyGenerator on a
// single OpenAI client.
type Collaborator struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI collaborator using the default client (API key from
// the environment).
func New(optFns ...func(o *Options)) *Collaborator {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI collaborator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Collaborator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Collaborator{client: client, opts: opts}
}

// ClassifyIntent implements core.IntentClassifier.
func (c *Collaborator) ClassifyIntent(ctx context.Context, text string, history []core.TurnRecord) (core.Intent, error) {
	raw, err := c.complete(ctx, model.ClassifySystemPrompt, model.BuildClassifyInput(text, history))
	if err != nil {
		return core.IntentOther, err
	}
	return model.ParseIntent(raw)
}

// GenerateReply implements core.ReplyGenerator.
func (c *Collaborator) GenerateReply(ctx context.Context, rc core.ReplyContext) (string, error) {
	return c.complete(ctx, model.ReplySystemPrompt, model.BuildReplyInput(rc))
}

func (c *Collaborator) complete(ctx context.Context, system, user string) (string, error) {
	trace := core.TraceFrom(ctx)
	trace.Tool(core.ToolLanguageModel)
	trace.Method(core.MethodExternalAPI)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
