package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/utils/logging"
)

// Client adapts a gollem LLM client to the Generator and Encoder contracts
type Client struct {
	llmClient    gollem.LLMClient
	systemPrompt string
	dimension    int
}

var (
	_ interfaces.Generator = &Client{}
	_ interfaces.Encoder   = &Client{}
)

// Option is a functional option for Client configuration
type Option func(*Client)

// WithSystemPrompt sets the session system prompt used by Generate
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithDimension overrides the embedding dimension requested from the model
func WithDimension(dim int) Option {
	return func(c *Client) {
		if dim > 0 {
			c.dimension = dim
		}
	}
}

// New creates a Client with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llmClient: llmClient,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate runs prompt in a fresh session and returns the concatenated text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var sessionOpts []gollem.SessionOption
	if c.systemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(c.systemPrompt))
	}

	session, err := c.llmClient.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text")
	}

	logging.From(ctx).Debug("LLM generated content", "texts", len(resp.Texts))
	return strings.Join(resp.Texts, ""), nil
}

func (c *Client) Dimension() int {
	return c.dimension
}

// Embed returns the model embedding of text converted to float32
func (c *Client) Embed(ctx context.Context, text string) (model.Embedding, error) {
	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make(model.Embedding, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
