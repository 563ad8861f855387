// Package semantic implements the vector-similarity matcher: request text is
// embedded through an OpenAI-compatible endpoint and searched against the
// document embedding collection in Milvus.
package semantic

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder creates an OpenAIEmbedder from config.  A custom BaseURL
// points the client at a self-hosted compatible service.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
	}
}

// Embed returns the embedding for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeEmbeddingFailed, "embedding request failed")
	}
	if len(resp.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmbeddingFailed, "embedding response was empty")
	}
	return resp.Data[0].Embedding, nil
}
