package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shelver/internal/logging"
	"shelver/internal/plan"
)

// Classifier is the contract every classifier in this package satisfies.
type Classifier interface {
	Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error)
}

// Chain tries each classifier in order and returns the first verdict.
type Chain struct {
	classifiers []Classifier
	names       []string
	logger      *slog.Logger
}

// NewChain builds a Chain. Names label each classifier in logs and errors.
func NewChain(logger *slog.Logger) *Chain {
	return &Chain{logger: logging.NewComponentLogger(logger, "classifier.chain")}
}

// Add appends a classifier and returns the chain for chaining.
func (c *Chain) Add(name string, classifier Classifier) *Chain {
	if classifier != nil {
		c.classifiers = append(c.classifiers, classifier)
		c.names = append(c.names, name)
	}
	return c
}

// Len reports how many classifiers the chain holds.
func (c *Chain) Len() int {
	return len(c.classifiers)
}

// Classify implements the classifier contract. Cancellation stops the chain
// immediately; other failures fall through to the next classifier.
func (c *Chain) Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error) {
	if len(c.classifiers) == 0 {
		return plan.RawClassification{}, errors.New("no classifiers configured")
	}
	logger := logging.WithContext(ctx, c.logger)
	var errs []error
	for i, classifier := range c.classifiers {
		verdict, err := classifier.Classify(ctx, batch)
		if err == nil {
			if i > 0 {
				logger.Info("fallback classifier answered", logging.String("classifier", c.names[i]))
			}
			return verdict, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return plan.RawClassification{}, ctxErr
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.names[i], err))
		if i < len(c.classifiers)-1 {
			logger.Warn("classifier failed; trying next",
				logging.String("classifier", c.names[i]),
				logging.String("next", c.names[i+1]),
				logging.Error(err),
				logging.String(logging.FieldEventType, "classifier_fallback"),
			)
		}
	}
	return plan.RawClassification{}, errors.Join(errs...)
}
