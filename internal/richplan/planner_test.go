package richplan

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shelver/internal/logging"
	"shelver/internal/plan"
	"shelver/internal/services"
	"shelver/internal/services/tmdb"
)

type fakeCompleter struct {
	response   string
	err        error
	userPrompt string
	system     string
	calls      int
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.system = systemPrompt
	f.userPrompt = userPrompt
	return f.response, f.err
}

type fakeSearcher struct {
	results []tmdb.Result
	err     error
	kind    string
	query   string
	year    int
}

func (f *fakeSearcher) record(kind, query string, year int) (*tmdb.Response, error) {
	f.kind, f.query, f.year = kind, query, year
	if f.err != nil {
		return nil, f.err
	}
	return &tmdb.Response{Results: f.results}, nil
}

func (f *fakeSearcher) SearchMovie(_ context.Context, query string, year int) (*tmdb.Response, error) {
	return f.record("movie", query, year)
}

func (f *fakeSearcher) SearchTV(_ context.Context, query string, year int) (*tmdb.Response, error) {
	return f.record("tv", query, year)
}

func (f *fakeSearcher) SearchMulti(_ context.Context, query string, year int) (*tmdb.Response, error) {
	return f.record("multi", query, year)
}

func identifications(t *testing.T, ids ...Identification) string {
	t.Helper()
	data, err := json.Marshal(identifyResponse{Files: ids})
	if err != nil {
		t.Fatalf("marshal identifications: %v", err)
	}
	return string(data)
}

func TestMoviePlannerNamesVideoAndSubtitles(t *testing.T) {
	batch := plan.Batch{Files: []string{
		"Heat.1995/Heat.1995.1080p.mkv",
		"Heat.1995/Heat.1995.1080p.zh.srt",
		"Heat.1995/Heat.1995.1080p.en.srt",
		"Heat.1995/sample.mkv",
		"Heat.1995/poster.jpg",
	}}
	completer := &fakeCompleter{response: "```json\n" + identifications(t, Identification{File: "Heat.1995/Heat.1995.1080p.mkv", Title: "Heat", Year: 1995}) + "\n```"}
	searcher := &fakeSearcher{results: []tmdb.Result{{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", OriginalLang: "en"}}}
	planner := NewMoviePlanner(completer, searcher, logging.NewNop())

	cls := plan.Classification{Category: plan.Movie, Language: "English"}
	got, err := planner.PlanRich(context.Background(), batch, cls)
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	want := plan.Response{Plan: []plan.PlanAction{
		plan.Move("Heat.1995/Heat.1995.1080p.mkv", "movie/English/Heat (1995)/Heat (1995).mkv"),
		plan.Move("Heat.1995/Heat.1995.1080p.zh.srt", "movie/English/Heat (1995)/Heat (1995).简体中文.chi.srt"),
		plan.Move("Heat.1995/Heat.1995.1080p.en.srt", "movie/English/Heat (1995)/Heat (1995).English.eng.srt"),
		plan.Skip("Heat.1995/sample.mkv"),
		plan.Skip("Heat.1995/poster.jpg"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(batch, plan.Rules{Category: plan.Movie, Language: "English"}); err != nil {
		t.Fatalf("plan does not validate: %v", err)
	}

	if searcher.kind != "movie" || searcher.query != "Heat" || searcher.year != 1995 {
		t.Fatalf("unexpected search %s %q %d", searcher.kind, searcher.query, searcher.year)
	}
	if completer.system != MoviePrompt {
		t.Fatal("movie planner must use the movie prompt")
	}
	var req identifyRequest
	if err := json.Unmarshal([]byte(completer.userPrompt), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Category != "movie" || req.Language != "English" || len(req.Files) != 3 || len(req.Candidates) != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSeriesPlannerNamesEpisodes(t *testing.T) {
	batch := plan.Batch{Files: []string{
		"Dark.S01/Dark.S01E01.mkv",
		"Dark.S01/Dark.S01E02.mkv",
		"Dark.S01/Dark.S01E03.mkv",
		"Dark.S01/Dark.S01E01.chs.srt",
		"Dark.S01/Dark.S01E02.eng.srt",
		"Dark.S01/info.nfo",
	}}
	completer := &fakeCompleter{response: identifications(t,
		Identification{File: "Dark.S01/Dark.S01E01.mkv", Title: "暗黑", Year: 2017, Season: 1, Episode: 1},
		Identification{File: "Dark.S01/Dark.S01E02.mkv", Title: "暗黑", Year: 2017, Season: 1, Episode: 2},
	)}
	searcher := &fakeSearcher{}
	planner := NewSeriesPlanner(completer, searcher, nil)

	got, err := planner.PlanRich(context.Background(), batch, plan.Classification{Category: plan.TVSeries, Language: "German"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	root := "tv_series/German/暗黑 (2017)/Season 01/暗黑 (2017) "
	want := plan.Response{Plan: []plan.PlanAction{
		plan.Move("Dark.S01/Dark.S01E01.mkv", root+"S01E01.mkv"),
		plan.Move("Dark.S01/Dark.S01E02.mkv", root+"S01E02.mkv"),
		plan.Skip("Dark.S01/Dark.S01E03.mkv"),
		plan.Move("Dark.S01/Dark.S01E01.chs.srt", root+"S01E01.简体中文.chi.srt"),
		plan.Move("Dark.S01/Dark.S01E02.eng.srt", root+"S01E02.English.eng.srt"),
		plan.Skip("Dark.S01/info.nfo"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	if searcher.kind != "tv" || searcher.query != "Dark" {
		t.Fatalf("unexpected search %s %q", searcher.kind, searcher.query)
	}
	if completer.system != SeriesPrompt {
		t.Fatal("series planner must use the series prompt")
	}
}

func TestMoviePlannerOfflineUsesSearchCandidate(t *testing.T) {
	batch := plan.Batch{Files: []string{
		"The.Wandering.Earth.2019.1080p.BluRay/The.Wandering.Earth.2019.1080p.BluRay.mkv",
	}}
	searcher := &fakeSearcher{results: []tmdb.Result{
		{ID: 1, Title: "Earth", ReleaseDate: "2007-01-01"},
		{ID: 535167, Title: "The Wandering Earth", OriginalTitle: "流浪地球", ReleaseDate: "2019-02-05", OriginalLang: "zh"},
	}}
	got, err := NewMoviePlanner(nil, searcher, nil).PlanRich(context.Background(), batch, plan.Classification{Category: plan.Movie, Language: "Chinese"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	want := plan.Response{Plan: []plan.PlanAction{
		plan.Move(batch.Files[0], "movie/Chinese/The Wandering Earth (2019)/The Wandering Earth (2019).mkv"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestSeriesPlannerOfflineFansubRelease(t *testing.T) {
	batch := plan.Batch{Files: []string{
		"[SubsPlease] Frieren (2023)/[SubsPlease] Frieren - 01 (1080p).mkv",
		"[SubsPlease] Frieren (2023)/[SubsPlease] Frieren - 02 (1080p).mkv",
		"[SubsPlease] Frieren (2023)/[SubsPlease] Frieren - 01 (1080p).ass",
	}}
	got, err := NewSeriesPlanner(nil, nil, nil).PlanRich(context.Background(), batch, plan.Classification{Category: plan.AnimTVSeries, Language: "Japanese"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	root := "anim_tv_series/Japanese/Frieren (2023)/Season 01/Frieren (2023) "
	want := plan.Response{Plan: []plan.PlanAction{
		plan.Move(batch.Files[0], root+"S01E01.mkv"),
		plan.Move(batch.Files[1], root+"S01E02.mkv"),
		plan.Move(batch.Files[2], root+"S01E01.English.eng.ass"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(batch, plan.Rules{Category: plan.AnimTVSeries, Language: "Japanese"}); err != nil {
		t.Fatalf("plan does not validate: %v", err)
	}
}

func TestPlannerSkipsIncompleteAndDuplicateIdentifications(t *testing.T) {
	batch := plan.Batch{Files: []string{
		"a/Heat.mkv",
		"a/Heat.Remastered.mkv",
		"a/Unknown.mkv",
	}}
	completer := &fakeCompleter{response: identifications(t,
		Identification{File: "a/Heat.mkv", Title: "Heat", Year: 1995},
		Identification{File: "a/Heat.Remastered.mkv", Title: "Heat", Year: 1995},
		Identification{File: "a/Unknown.mkv", Title: "Unknown"},
	)}
	got, err := NewMoviePlanner(completer, nil, nil).PlanRich(context.Background(), batch, plan.Classification{Category: plan.Movie, Language: "English"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	want := plan.Response{Plan: []plan.PlanAction{
		plan.Move("a/Heat.mkv", "movie/English/Heat (1995)/Heat (1995).mkv"),
		plan.Skip("a/Heat.Remastered.mkv"),
		plan.Skip("a/Unknown.mkv"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	series := &fakeCompleter{response: identifications(t, Identification{File: "a/Heat.mkv", Title: "Heat", Year: 1995})}
	got, err = NewSeriesPlanner(series, nil, nil).PlanRich(context.Background(), plan.Batch{Files: []string{"a/Heat.mkv"}}, plan.Classification{Category: plan.TVSeries, Language: "English"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	if moves := got.Moves(); len(moves) != 0 {
		t.Fatalf("episode without season/episode must be skipped, got %+v", moves)
	}
}

func TestPlannerWithoutMediaSkipsModel(t *testing.T) {
	completer := &fakeCompleter{}
	batch := plan.Batch{Files: []string{"a/cover.jpg", "a/readme.txt"}}
	got, err := NewMoviePlanner(completer, nil, nil).PlanRich(context.Background(), batch, plan.Classification{Category: plan.Movie, Language: "English"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	if completer.calls != 0 {
		t.Fatal("model must not be called without media files")
	}
	if len(got.Plan) != 2 || len(got.Moves()) != 0 {
		t.Fatalf("expected two skips, got %+v", got.Plan)
	}
}

func TestPlannerSearchFailureIsNotFatal(t *testing.T) {
	completer := &fakeCompleter{response: identifications(t, Identification{File: "a/Heat.mkv", Title: "Heat", Year: 1995})}
	got, err := NewMoviePlanner(completer, &fakeSearcher{err: errors.New("tmdb down")}, nil).
		PlanRich(context.Background(), plan.Batch{Files: []string{"a/Heat.mkv"}}, plan.Classification{Category: plan.Movie, Language: "English"})
	if err != nil {
		t.Fatalf("PlanRich: %v", err)
	}
	if len(got.Moves()) != 1 {
		t.Fatalf("expected a move, got %+v", got.Plan)
	}
	if !strings.Contains(completer.userPrompt, `"candidates":[]`) {
		t.Fatalf("expected empty candidates in %s", completer.userPrompt)
	}
}

func TestPlannerErrors(t *testing.T) {
	batch := plan.Batch{Files: []string{"a/Heat.mkv"}}
	cls := plan.Classification{Category: plan.Movie, Language: "English"}
	tests := []struct {
		name    string
		client  *fakeCompleter
		wantErr error
	}{
		{"request failure", &fakeCompleter{err: errors.New("boom")}, services.ErrExternalTool},
		{"malformed", &fakeCompleter{response: "Heat, 1995"}, services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMoviePlanner(tt.client, nil, nil).PlanRich(context.Background(), batch, cls); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	completer := &fakeCompleter{}
	if _, err := NewMoviePlanner(completer, nil, nil).PlanRich(ctx, batch, cls); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatal("model must not be called after cancellation")
	}
}

func TestGuessIdentification(t *testing.T) {
	tests := []struct {
		file   string
		series bool
		want   Identification
	}{
		{"Heat.1995.1080p/Heat.1995.1080p.mkv", false, Identification{Title: "Heat", Year: 1995}},
		{"Show.S02/01.mkv", true, Identification{Title: "Show", Season: 2, Episode: 1}},
		{"h1/mr.robot.s01e05.720p.mkv", true, Identification{Title: "Mr Robot", Season: 1, Episode: 5}},
		{"h1/[Group] Frieren - 12v2 (1080p).mkv", true, Identification{Title: "Frieren", Season: 1, Episode: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := guessIdentification(tt.file, plan.Batch{Files: []string{tt.file}}, tt.series, nil)
			tt.want.File = tt.file
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("identification mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
