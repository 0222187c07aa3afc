package organizer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"shelver/internal/organizer"
	"shelver/internal/plan"
)

var sortActions = cmpopts.SortSlices(func(a, b plan.PlanAction) bool { return a.File < b.File })

func fixedClassifier(category, language string) organizer.Classifier {
	return organizer.ClassifierFunc(func(context.Context, plan.Batch) (plan.RawClassification, error) {
		return plan.RawClassification{Category: category, Language: language}, nil
	})
}

type recordingPlanner struct {
	calls    atomic.Int32
	response func(plan.Batch, plan.Classification) plan.Response
	err      error
	last     plan.Classification
	mu       sync.Mutex
}

func (p *recordingPlanner) PlanRich(_ context.Context, batch plan.Batch, c plan.Classification) (plan.Response, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.last = c
	p.mu.Unlock()
	if p.err != nil {
		return plan.Response{}, p.err
	}
	if p.response == nil {
		return plan.Response{}, nil
	}
	return p.response(batch, c), nil
}

func mustNew(t *testing.T, classifier organizer.Classifier, movie, series organizer.RichPlanner) *organizer.Orchestrator {
	t.Helper()
	o, err := organizer.New(classifier, movie, series)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func TestGroupingCategoriesUseDirectoryPlanner(t *testing.T) {
	tests := []struct {
		category string
		files    []string
		want     []plan.PlanAction
	}{
		{"book", []string{"h1/c1/p1.pdf", "h1/c1/p2.pdf", "h1/c2/p1.pdf"}, []plan.PlanAction{plan.Move("h1/c1", "book/c1"), plan.Move("h1/c2", "book/c2")}},
		{"music", []string{"h1/song.mp3", "h1/art/cover.jpg"}, []plan.PlanAction{plan.Move("h1", "music/h1")}},
		{"photobook", []string{"h1/set.zip"}, []plan.PlanAction{plan.Move("h1/set.zip", "photobook/set.zip")}},
		{"audio_book", []string{"h1/01.m4a", "h1/02.m4a"}, []plan.PlanAction{plan.Move("h1", "audio_book/h1")}},
		{"music_video", []string{"h1/a/clip.mkv", "h1/b/clip.mkv"}, []plan.PlanAction{plan.Move("h1/a", "music_video/a"), plan.Move("h1/b", "music_video/b")}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			movie, series := &recordingPlanner{}, &recordingPlanner{}
			o := mustNew(t, fixedClassifier(tt.category, "English"), movie, series)
			outcome, err := o.Run(context.Background(), plan.Batch{Files: tt.files})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if outcome.State != organizer.StatePlanned || outcome.Route != organizer.RouteGrouping {
				t.Fatalf("unexpected outcome state=%s route=%s", outcome.State, outcome.Route)
			}
			if diff := cmp.Diff(tt.want, outcome.Response.Plan, sortActions); diff != "" {
				t.Fatalf("plan mismatch (-want +got):\n%s", diff)
			}
			if movie.calls.Load() != 0 || series.calls.Load() != 0 {
				t.Fatal("rich planners must not be called for grouping categories")
			}
		})
	}
}

func TestRichCategoriesDispatchToPlanner(t *testing.T) {
	moviePlan := func(b plan.Batch, c plan.Classification) plan.Response {
		return plan.Response{Plan: []plan.PlanAction{
			plan.Move(b.Files[0], c.Category.String()+"/"+c.Language+"/Heat (1995)/Heat (1995).mkv"),
			plan.Skip(b.Files[1]),
		}}
	}
	tests := []struct {
		category   string
		wantMovie  int32
		wantSeries int32
		route      organizer.Route
	}{
		{"movie", 1, 0, organizer.RouteMovie},
		{"anim_movie", 1, 0, organizer.RouteMovie},
		{"tv_series", 0, 1, organizer.RouteSeries},
		{"anim_tv_series", 0, 1, organizer.RouteSeries},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			movie := &recordingPlanner{response: moviePlan}
			series := &recordingPlanner{response: moviePlan}
			o := mustNew(t, fixedClassifier(tt.category, "English"), movie, series)
			batch := plan.Batch{Files: []string{"h1/heat.mkv", "h1/readme.nfo"}}
			outcome, err := o.Run(context.Background(), batch)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if outcome.Route != tt.route {
				t.Fatalf("route = %s, want %s", outcome.Route, tt.route)
			}
			if movie.calls.Load() != tt.wantMovie || series.calls.Load() != tt.wantSeries {
				t.Fatalf("calls movie=%d series=%d", movie.calls.Load(), series.calls.Load())
			}
			want := []plan.PlanAction{
				plan.Move("h1/heat.mkv", tt.category+"/English/Heat (1995)/Heat (1995).mkv"),
				plan.Skip("h1/readme.nfo"),
			}
			if diff := cmp.Diff(want, outcome.Response.Plan); diff != "" {
				t.Fatalf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyLanguageBecomesUnknownSegment(t *testing.T) {
	for _, label := range []string{"  ", ". .", "... ..", ".."} {
		movie := &recordingPlanner{response: func(b plan.Batch, c plan.Classification) plan.Response {
			return plan.Response{Plan: []plan.PlanAction{plan.Move(b.Files[0], "movie/"+c.Language+"/A (2001)/A (2001).mkv")}}
		}}
		o := mustNew(t, fixedClassifier("movie", label), movie, &recordingPlanner{})
		outcome, err := o.Run(context.Background(), plan.Batch{Files: []string{"h1/a.mkv"}})
		if err != nil {
			t.Fatalf("Run(%q): %v", label, err)
		}
		if movie.last.Language != "Unknown" || outcome.Classification.Language != "Unknown" {
			t.Fatalf("%q: language = %q / %q", label, movie.last.Language, outcome.Classification.Language)
		}
	}
}

func TestInvalidCategoryFails(t *testing.T) {
	for _, raw := range []string{"documentary", "", "Movie", "movies"} {
		t.Run(raw, func(t *testing.T) {
			o := mustNew(t, fixedClassifier(raw, "English"), &recordingPlanner{}, &recordingPlanner{})
			resp, err := o.Plan(context.Background(), plan.Batch{Files: []string{"h1/a.mkv"}})
			if !errors.Is(err, plan.ErrInvalidCategory) {
				t.Fatalf("expected ErrInvalidCategory, got %v", err)
			}
			if resp.Plan != nil {
				t.Fatalf("expected no plan, got %+v", resp)
			}
		})
	}
}

func TestPornIsUnrouted(t *testing.T) {
	o := mustNew(t, fixedClassifier("porn", "English"), &recordingPlanner{}, &recordingPlanner{})
	outcome, err := o.Run(context.Background(), plan.Batch{Files: []string{"h1/a.mp4"}})
	if !errors.Is(err, plan.ErrUnroutedCategory) {
		t.Fatalf("expected ErrUnroutedCategory, got %v", err)
	}
	if outcome.State != organizer.StateFailed || !outcome.Classified || outcome.Classification.Category != plan.Porn {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestClassifierErrorIsClassificationFailed(t *testing.T) {
	cause := errors.New("llm unavailable")
	classifier := organizer.ClassifierFunc(func(context.Context, plan.Batch) (plan.RawClassification, error) {
		return plan.RawClassification{}, cause
	})
	o := mustNew(t, classifier, &recordingPlanner{}, &recordingPlanner{})
	outcome, err := o.Run(context.Background(), plan.Batch{Files: []string{"h1/a.mp4"}})
	if !errors.Is(err, plan.ErrClassificationFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped classification failure, got %v", err)
	}
	if outcome.State != organizer.StateFailed || outcome.Classified {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestEmptyBatchShortCircuits(t *testing.T) {
	called := false
	classifier := organizer.ClassifierFunc(func(context.Context, plan.Batch) (plan.RawClassification, error) {
		called = true
		return plan.RawClassification{Category: "book"}, nil
	})
	o := mustNew(t, classifier, &recordingPlanner{}, &recordingPlanner{})
	if _, err := o.Plan(context.Background(), plan.Batch{}); !errors.Is(err, plan.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if called {
		t.Fatal("classifier must not run for an empty batch")
	}
}

func TestMalformedBatchIsRejected(t *testing.T) {
	tests := map[string][]string{
		"loose files":       {"a.mp3", "b.mp3"},
		"two batch dirs":    {"h1/a.mp3", "h2/b.mp3"},
		"loose after dir":   {"h1/a.mp3", "h1"},
		"parent segment":    {"h1/../b.mp3"},
		"absolute":          {"/h1/a.mp3"},
		"empty segment":     {"h1//a.mp3", "h1/b.mp3"},
		"duplicate entries": {"h1/a.mp3", "h1/a.mp3"},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			classifier := organizer.ClassifierFunc(func(context.Context, plan.Batch) (plan.RawClassification, error) {
				calls.Add(1)
				return plan.RawClassification{Category: "music"}, nil
			})
			o := mustNew(t, classifier, &recordingPlanner{}, &recordingPlanner{})
			outcome, err := o.Run(context.Background(), plan.Batch{Files: files})
			if !errors.Is(err, plan.ErrInvalidBatch) {
				t.Fatalf("expected ErrInvalidBatch, got %v (plan %v)", err, outcome.Response.Plan)
			}
			if outcome.State != organizer.StateFailed || outcome.Classified {
				t.Fatalf("unexpected outcome %+v", outcome)
			}
			if calls.Load() != 0 {
				t.Fatal("classifier must not run for a malformed batch")
			}
		})
	}
}

func TestRichPlannerOutputIsValidated(t *testing.T) {
	tests := []struct {
		name    string
		actions []plan.PlanAction
		wantErr error
	}{
		{
			name:    "overlapping sources",
			actions: []plan.PlanAction{plan.Move("h1", "movie/English/X (2000)"), plan.Move("h1/a.mkv", "movie/English/X (2000)/X (2000).mkv")},
			wantErr: plan.ErrOverlappingPlanPaths,
		},
		{
			name:    "target outside category",
			actions: []plan.PlanAction{plan.Move("h1/a.mkv", "tv_series/English/X (2000)/X (2000).mkv")},
			wantErr: plan.ErrInvalidPlan,
		},
		{
			name:    "target outside language",
			actions: []plan.PlanAction{plan.Move("h1/a.mkv", "movie/Chinese/X (2000)/X (2000).mkv")},
			wantErr: plan.ErrInvalidPlan,
		},
		{
			name:    "unknown source file",
			actions: []plan.PlanAction{plan.Move("h2/a.mkv", "movie/English/X (2000)/X (2000).mkv")},
			wantErr: plan.ErrInvalidPlan,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movie := &recordingPlanner{response: func(plan.Batch, plan.Classification) plan.Response {
				return plan.Response{Plan: tt.actions}
			}}
			o := mustNew(t, fixedClassifier("movie", "English"), movie, &recordingPlanner{})
			resp, err := o.Plan(context.Background(), plan.Batch{Files: []string{"h1/a.mkv"}})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if resp.Plan != nil {
				t.Fatal("invalid plans must not be returned")
			}
		})
	}
}

func TestRichPlannerErrorFails(t *testing.T) {
	cause := errors.New("tmdb down")
	o := mustNew(t, fixedClassifier("tv_series", "English"), &recordingPlanner{}, &recordingPlanner{err: cause})
	if _, err := o.Plan(context.Background(), plan.Batch{Files: []string{"h1/a.mkv"}}); !errors.Is(err, cause) {
		t.Fatalf("expected planner error, got %v", err)
	}
}

func TestCancellationProducesNoPlan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	classifier := organizer.ClassifierFunc(func(ctx context.Context, _ plan.Batch) (plan.RawClassification, error) {
		cancel()
		<-ctx.Done()
		return plan.RawClassification{}, ctx.Err()
	})
	o := mustNew(t, classifier, &recordingPlanner{}, &recordingPlanner{})
	resp, err := o.Plan(ctx, plan.Batch{Files: []string{"h1/a.mkv"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, plan.ErrClassificationFailed) {
		t.Fatal("cancellation must not be reported as a classification failure")
	}
	if resp.Plan != nil {
		t.Fatal("expected no partial plan")
	}
}

func TestCancellationDuringRichPlanning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	movie := &recordingPlanner{response: func(b plan.Batch, c plan.Classification) plan.Response {
		cancel()
		return plan.Response{Plan: []plan.PlanAction{plan.Skip(b.Files[0])}}
	}}
	o := mustNew(t, fixedClassifier("movie", "English"), movie, &recordingPlanner{})
	resp, err := o.Plan(ctx, plan.Batch{Files: []string{"h1/a.mkv"}})
	if !errors.Is(err, context.Canceled) || resp.Plan != nil {
		t.Fatalf("expected cancellation with no plan, got %v %+v", err, resp)
	}
}

func TestRouteTableCoversEveryCategory(t *testing.T) {
	for _, category := range plan.Categories() {
		route := organizer.RouteFor(category)
		if route.String() == "unset" {
			t.Errorf("category %s has no route", category)
		}
	}
	if organizer.RouteFor(plan.Porn) != organizer.RouteUnsupported {
		t.Fatal("porn must be explicitly unsupported")
	}
	if organizer.RouteFor(plan.CategoryCount).String() != "unset" {
		t.Fatal("out-of-range category must not resolve to a route")
	}
}

func TestConcurrentRequestsDoNotShareState(t *testing.T) {
	classifier := organizer.ClassifierFunc(func(_ context.Context, b plan.Batch) (plan.RawClassification, error) {
		return plan.RawClassification{Category: b.Metadata["category"]}, nil
	})
	o := mustNew(t, classifier, &recordingPlanner{}, &recordingPlanner{})
	var wg sync.WaitGroup
	for i := range 32 {
		category := "book"
		if i%2 == 1 {
			category = "music"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := o.Plan(context.Background(), plan.Batch{
				Files:    []string{"h1/a.pdf", "h1/b.pdf"},
				Metadata: map[string]string{"category": category},
			})
			if err != nil {
				t.Errorf("Plan: %v", err)
				return
			}
			if want := category + "/h1"; len(resp.Plan) != 1 || resp.Plan[0].Target != want {
				t.Errorf("got %+v, want target %s", resp.Plan, want)
			}
		}()
	}
	wg.Wait()
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := organizer.New(nil, &recordingPlanner{}, &recordingPlanner{}); err == nil {
		t.Fatal("expected error without classifier")
	}
	if _, err := organizer.New(fixedClassifier("book", ""), nil, &recordingPlanner{}); err == nil {
		t.Fatal("expected error without movie planner")
	}
}
