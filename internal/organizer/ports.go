package organizer

import (
	"context"

	"shelver/internal/plan"
)

// Classifier decides which category a batch belongs to. The category is
// returned as an unvalidated name; the Orchestrator checks it.
type Classifier interface {
	Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error)
}

// RichPlanner produces per-file plans with canonical library names for the
// categories it is routed.
type RichPlanner interface {
	PlanRich(ctx context.Context, batch plan.Batch, classification plan.Classification) (plan.Response, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, batch plan.Batch) (plan.RawClassification, error)

func (f ClassifierFunc) Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error) {
	return f(ctx, batch)
}

// RichPlannerFunc adapts a function to RichPlanner.
type RichPlannerFunc func(ctx context.Context, batch plan.Batch, classification plan.Classification) (plan.Response, error)

func (f RichPlannerFunc) PlanRich(ctx context.Context, batch plan.Batch, classification plan.Classification) (plan.Response, error) {
	return f(ctx, batch, classification)
}
