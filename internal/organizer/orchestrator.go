package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shelver/internal/logging"
	"shelver/internal/plan"
	"shelver/internal/services"
	"shelver/internal/textutil"
)

// unknownLanguage labels rich-planner targets when the classifier gave none.
const unknownLanguage = "Unknown"

// Outcome is everything a single planning request produced.
type Outcome struct {
	State          State
	Classification plan.Classification
	// Classified is true once a valid category was obtained.
	Classified bool
	Route      Route
	Response   plan.Response
	Duration   time.Duration
}

// Orchestrator routes batches to planners. The zero value is not usable; use
// New.
type Orchestrator struct {
	classifier Classifier
	movie      RichPlanner
	series     RichPlanner
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.NewComponentLogger(logger, "organizer")
	}
}

// New builds an Orchestrator. All collaborators are required.
func New(classifier Classifier, movie, series RichPlanner, opts ...Option) (*Orchestrator, error) {
	if classifier == nil {
		return nil, errors.New("organizer: classifier is required")
	}
	if movie == nil || series == nil {
		return nil, errors.New("organizer: movie and series planners are required")
	}
	o := &Orchestrator{
		classifier: classifier,
		movie:      movie,
		series:     series,
		logger:     logging.NewComponentLogger(nil, "organizer"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Plan returns the validated plan for batch.
func (o *Orchestrator) Plan(ctx context.Context, batch plan.Batch) (plan.Response, error) {
	outcome, err := o.Run(ctx, batch)
	if err != nil {
		return plan.Response{}, err
	}
	return outcome.Response, nil
}

// Run executes the planning state machine and reports how far it got. On
// error the Outcome is in StateFailed and carries no Response.
func (o *Orchestrator) Run(ctx context.Context, batch plan.Batch) (Outcome, error) {
	start := o.now()
	batch = batch.Clone()
	ctx = services.WithBatchDir(ctx, batch.BatchDir())
	logger := logging.WithContext(ctx, o.logger)

	outcome := Outcome{State: StateReceived}
	fail := func(err error) (Outcome, error) {
		outcome.State = StateFailed
		outcome.Response = plan.Response{}
		outcome.Duration = o.now().Sub(start)
		logger.Warn("planning failed",
			logging.String("from_state", lastState(outcome).String()),
			logging.String("route", outcome.Route.String()),
			logging.Error(err),
			logging.String(logging.FieldEventType, "plan_failed"),
		)
		return outcome, err
	}

	logger.Debug("batch received", logging.Int("files", len(batch.Files)))
	if err := batch.Validate(); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	classification, err := o.classify(ctx, batch)
	if err != nil {
		return fail(err)
	}
	outcome.Classified = true
	outcome.Classification = classification
	outcome.State = StateClassified
	outcome.Route = RouteFor(classification.Category)
	if outcome.Route == RouteMovie || outcome.Route == RouteSeries {
		classification.Language = languageSegment(classification.Language)
		outcome.Classification = classification
	}
	attrs := append(logging.DecisionAttrs("route", outcome.Route.String(), "category "+classification.Category.String()),
		logging.String("category", classification.Category.String()),
		logging.String("language", classification.Language),
	)
	logger.Info("batch classified", logging.Args(attrs...)...)

	response, rules, err := o.dispatch(ctx, batch, outcome.Route, classification)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := response.Validate(batch, rules); err != nil {
		return fail(fmt.Errorf("%s planner: %w", outcome.Route, err))
	}

	outcome.State = StatePlanned
	outcome.Response = response
	outcome.Duration = o.now().Sub(start)
	logger.Info("batch planned",
		logging.String("route", outcome.Route.String()),
		logging.Int("actions", len(response.Plan)),
		logging.Int("moves", len(response.Moves())),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome, nil
}

func (o *Orchestrator) classify(ctx context.Context, batch plan.Batch) (plan.Classification, error) {
	raw, err := o.classifier.Classify(services.WithStage(ctx, "classify"), batch)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return plan.Classification{}, ctxErr
		}
		return plan.Classification{}, fmt.Errorf("%w: %w", plan.ErrClassificationFailed, err)
	}
	category, err := plan.ParseCategory(raw.Category)
	if err != nil {
		return plan.Classification{}, err
	}
	return plan.Classification{Category: category, Language: raw.Language}, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, batch plan.Batch, route Route, c plan.Classification) (plan.Response, plan.Rules, error) {
	rules := plan.Rules{Category: c.Category}
	switch route {
	case RouteGrouping:
		return plan.GroupByDirectory(c.Category, batch.Files), rules, nil
	case RouteMovie, RouteSeries:
		planner := o.movie
		if route == RouteSeries {
			planner = o.series
		}
		rules.Language = c.Language
		response, err := planner.PlanRich(services.WithStage(ctx, "plan"), batch.Clone(), c)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return plan.Response{}, rules, ctxErr
			}
			return plan.Response{}, rules, fmt.Errorf("%s planner: %w", route, err)
		}
		return response, rules, nil
	case RouteUnsupported:
		return plan.Response{}, rules, fmt.Errorf("%w: %s", plan.ErrUnroutedCategory, c.Category)
	default:
		return plan.Response{}, rules, fmt.Errorf("%w: %s has no route", plan.ErrUnroutedCategory, c.Category)
	}
}

// languageSegment makes the classifier's language label safe to use as a
// single path segment.
func languageSegment(label string) string {
	label = textutil.SanitizeFileName(strings.TrimSpace(label))
	if label == "" {
		return unknownLanguage
	}
	return label
}

func lastState(o Outcome) State {
	if o.Classified {
		return StateClassified
	}
	return StateReceived
}
