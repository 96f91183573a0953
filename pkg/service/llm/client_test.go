package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/service/llm"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"ƒmain() {\n    ⌽(\"hi\");\n}\n\nmain();"}}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn        func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	return nil, nil
}

func TestNew(t *testing.T) {
	_, err := llm.New(nil)
	gt.Value(t, err).NotNil()

	c, err := llm.New(&mockLLMClient{})
	gt.NoError(t, err).Required()
	gt.Value(t, c.Dimension()).Equal(model.EmbeddingDimension)
}

func TestClient_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("joins response texts", func(t *testing.T) {
		var sessions int
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				sessions++
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						gt.Array(t, input).Length(1)
						return &gollem.Response{Texts: []string{"ƒmain() {", " ⌽(1); }"}}, nil
					},
				}, nil
			},
		}

		c, err := llm.New(client, llm.WithSystemPrompt("generate code"))
		gt.NoError(t, err).Required()

		out, err := c.Generate(ctx, "list files")
		gt.NoError(t, err).Required()
		gt.Value(t, out).Equal("ƒmain() { ⌽(1); }")
		gt.Value(t, sessions).Equal(1)
	})

	t.Run("empty response is an error", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{}, nil
					},
				}, nil
			},
		}
		c, err := llm.New(client)
		gt.NoError(t, err).Required()

		_, err = c.Generate(ctx, "task")
		gt.Value(t, err).NotNil()
	})

	t.Run("session error is wrapped", func(t *testing.T) {
		sessionErr := errors.New("quota exceeded")
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, sessionErr
			},
		}
		c, err := llm.New(client)
		gt.NoError(t, err).Required()

		_, err = c.Generate(ctx, "task")
		gt.Error(t, err).Is(sessionErr)
	})
}

func TestClient_Embed(t *testing.T) {
	ctx := context.Background()

	t.Run("converts to float32", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				gt.Value(t, dimension).Equal(4)
				gt.Value(t, input).Equal([]string{"list files"})
				return [][]float64{{0.5, 0.25, 0, -1}}, nil
			},
		}
		c, err := llm.New(client, llm.WithDimension(4))
		gt.NoError(t, err).Required()

		v, err := c.Embed(ctx, "list files")
		gt.NoError(t, err).Required()
		gt.Value(t, v).Equal(model.Embedding{0.5, 0.25, 0, -1})
	})

	t.Run("no embedding is an error", func(t *testing.T) {
		c, err := llm.New(&mockLLMClient{})
		gt.NoError(t, err).Required()

		_, err = c.Embed(ctx, "x")
		gt.Value(t, err).NotNil()
	})
}
