package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shelver/internal/logging"
	"shelver/internal/plan"
	"shelver/internal/services"
	"shelver/internal/services/llm"
	"shelver/internal/services/tmdb"
)

// maxPromptFiles caps how many paths are sent to the model.
const maxPromptFiles = 200

// LLMClassifier classifies batches with a chat-completion model.
type LLMClassifier struct {
	client   llm.Completer
	searcher tmdb.Searcher
	logger   *slog.Logger
}

// NewLLMClassifier builds an LLMClassifier. searcher may be nil to skip
// search hints.
func NewLLMClassifier(client llm.Completer, searcher tmdb.Searcher, logger *slog.Logger) *LLMClassifier {
	return &LLMClassifier{
		client:   client,
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, "classifier.llm"),
	}
}

type classificationRequest struct {
	Files       []string          `json:"files"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	SearchHints []SearchHint      `json:"search_hints"`
	Truncated   int               `json:"truncated_files,omitempty"`
}

// Classify implements the classifier contract.
func (c *LLMClassifier) Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error) {
	if c.client == nil {
		return plan.RawClassification{}, services.Wrap(services.ErrConfiguration, "classify", "llm", "no LLM client configured", nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	req := classificationRequest{Metadata: batch.Metadata, SearchHints: []SearchHint{}}
	req.Files = batch.Files
	if len(req.Files) > maxPromptFiles {
		req.Truncated = len(req.Files) - maxPromptFiles
		req.Files = req.Files[:maxPromptFiles]
	}

	query := SearchQuery(batch)
	hints, err := searchHints(ctx, c.searcher, query)
	switch {
	case err != nil && ctx.Err() != nil:
		return plan.RawClassification{}, ctx.Err()
	case err != nil:
		logger.Warn("search hints unavailable",
			logging.String("query", query.Title),
			logging.Error(err),
			logging.String(logging.FieldEventType, "search_hints_failed"),
		)
	case len(hints) > 0:
		req.SearchHints = hints
		logger.Debug("search hints", logging.String("query", query.Title), logging.Int("hints", len(hints)))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return plan.RawClassification{}, fmt.Errorf("encode classification request: %w", err)
	}
	raw, err := c.client.CompleteJSON(ctx, ClassificationPrompt, string(payload))
	if err != nil {
		return plan.RawClassification{}, services.Wrap(services.ErrExternalTool, "classify", "llm completion", "model request failed", err)
	}

	var verdict plan.RawClassification
	if err := llm.DecodeLLMJSON(raw, &verdict); err != nil {
		return plan.RawClassification{}, services.Wrap(services.ErrValidation, "classify", "decode verdict", "model returned malformed JSON", err)
	}
	verdict.Category = strings.TrimSpace(verdict.Category)
	verdict.Language = strings.TrimSpace(verdict.Language)
	if verdict.Category == "" {
		return plan.RawClassification{}, services.Wrap(services.ErrValidation, "classify", "decode verdict", "model returned no category", errors.New(raw))
	}
	logger.Debug("model verdict", logging.String("category", verdict.Category), logging.String("language", verdict.Language))
	return verdict, nil
}
