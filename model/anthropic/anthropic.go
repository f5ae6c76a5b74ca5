// Package anthropic implements the intent classifier and reply generator
// collaborators on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/model"
)

// Options configures the Anthropic collaborator adapter (temperature, model
// id, max tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Collaborator implements core.IntentClassifier and core.ReplyGenerator on a
// single Anthropic client.
type Collaborator struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic collaborator using the official client.
func New(optFns ...func(o *Options)) *Collaborator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Collaborator{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic collaborator from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Collaborator {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   512,
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

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content returned")
	}
	return b.String(), nil
}
