package richplan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"shelver/internal/logging"
	"shelver/internal/media"
	"shelver/internal/plan"
	"shelver/internal/services"
	"shelver/internal/services/llm"
	"shelver/internal/services/tmdb"
	"shelver/internal/textutil"
)

// Planner names movie or series files. Build one with NewMoviePlanner or
// NewSeriesPlanner.
type Planner struct {
	series   bool
	client   llm.Completer
	searcher tmdb.Searcher
	logger   *slog.Logger
}

// NewMoviePlanner returns a planner for movie and anim_movie batches. A nil
// client identifies files from their names alone; a nil searcher skips
// candidate lookups.
func NewMoviePlanner(client llm.Completer, searcher tmdb.Searcher, logger *slog.Logger) *Planner {
	return &Planner{client: client, searcher: searcher, logger: logging.NewComponentLogger(logger, "richplan.movie")}
}

// NewSeriesPlanner returns a planner for tv_series and anim_tv_series batches.
func NewSeriesPlanner(client llm.Completer, searcher tmdb.Searcher, logger *slog.Logger) *Planner {
	return &Planner{series: true, client: client, searcher: searcher, logger: logging.NewComponentLogger(logger, "richplan.series")}
}

func (p *Planner) name() string {
	if p.series {
		return "series"
	}
	return "movie"
}

// PlanRich returns one action per batch file. Videos and subtitles that can
// be identified move to canonical names; everything else is skipped.
func (p *Planner) PlanRich(ctx context.Context, batch plan.Batch, cls plan.Classification) (plan.Response, error) {
	if err := ctx.Err(); err != nil {
		return plan.Response{}, err
	}
	logger := logging.WithContext(ctx, p.logger)

	var videos, subtitles []string
	for _, f := range batch.Files {
		if media.IsSample(f) {
			continue
		}
		switch media.KindOf(f) {
		case media.KindVideo:
			videos = append(videos, f)
		case media.KindSubtitle:
			subtitles = append(subtitles, f)
		}
	}

	ids := map[string]Identification{}
	if len(videos)+len(subtitles) > 0 {
		query := searchQuery(batch)
		candidates, err := searchCandidates(ctx, p.searcher, p.series, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return plan.Response{}, ctxErr
			}
			logger.Warn("title search failed; continuing without candidates",
				logging.String("query", query.Title),
				logging.Error(err),
				logging.String(logging.FieldEventType, "search_failed"),
			)
		}
		found, err := p.identify(ctx, batch, cls, append(append([]string(nil), videos...), subtitles...), candidates)
		if err != nil {
			return plan.Response{}, err
		}
		for _, id := range found {
			ids[id.File] = id
		}
	}

	root := libraryRoot(cls)
	targets := make(map[string]string, len(batch.Files))
	claimed := make(map[string]string, len(batch.Files))
	claim := func(file, target string) bool {
		if other, dup := claimed[target]; dup {
			logger.Info("duplicate target; skipping file",
				logging.String("file", file),
				logging.String("kept", other),
				logging.String("target", target),
			)
			return false
		}
		claimed[target] = file
		targets[file] = target
		return true
	}

	videoStems := make(map[string]string, len(videos))
	for _, v := range videos {
		id, ok := ids[v]
		if !ok {
			continue
		}
		stem := p.stem(root, id)
		if stem == "" {
			logger.Debug("incomplete identification; skipping file", logging.String("file", v))
			continue
		}
		if claim(v, stem+extension(v)) {
			videoStems[v] = stem
		}
	}
	for _, s := range subtitles {
		stem := ""
		if id, ok := ids[s]; ok {
			stem = p.stem(root, id)
		}
		if stem == "" {
			stem = p.pairSubtitle(s, videos, videoStems, ids)
		}
		if stem == "" {
			logger.Debug("unpaired subtitle; skipping file", logging.String("file", s))
			continue
		}
		claim(s, subtitleTarget(stem, s))
	}

	resp := plan.Response{Plan: make([]plan.PlanAction, 0, len(batch.Files))}
	for _, f := range batch.Files {
		if target, ok := targets[f]; ok {
			resp.Plan = append(resp.Plan, plan.Move(f, target))
		} else {
			resp.Plan = append(resp.Plan, plan.Skip(f))
		}
	}
	logger.Info("rich plan built",
		logging.String("planner", p.name()),
		logging.Int("files", len(batch.Files)),
		logging.Int("moves", len(targets)),
	)
	return resp, nil
}

func (p *Planner) stem(root string, id Identification) string {
	if p.series {
		return episodeStem(root, id)
	}
	return movieStem(root, id)
}

// pairSubtitle finds the video a subtitle belongs to: for series the video
// with the same season and episode, for movies the video whose name prefixes
// the subtitle's name, or the only video in the batch.
func (p *Planner) pairSubtitle(sub string, videos []string, stems map[string]string, ids map[string]Identification) string {
	if p.series {
		rel := textutil.ParseRelease(sub)
		episode := rel.Episode
		if episode == 0 {
			episode = episodeNumber(sub)
		}
		if episode == 0 {
			return ""
		}
		for _, v := range videos {
			id, ok := ids[v]
			if !ok || stems[v] == "" {
				continue
			}
			if id.Episode == episode && (rel.Season == 0 || rel.Season == id.Season) {
				return stems[v]
			}
		}
		return ""
	}
	subStem := strings.ToLower(stemOf(sub))
	var only string
	paired := 0
	for _, v := range videos {
		stem, ok := stems[v]
		if !ok {
			continue
		}
		if strings.HasPrefix(subStem, strings.ToLower(stemOf(v))) {
			return stem
		}
		only = stem
		paired++
	}
	if paired == 1 {
		return only
	}
	return ""
}

// identify asks the model to name each media file, or guesses from file
// names when no model is configured.
func (p *Planner) identify(ctx context.Context, batch plan.Batch, cls plan.Classification, files []string, candidates []Candidate) ([]Identification, error) {
	if p.client == nil {
		out := make([]Identification, 0, len(files))
		for _, f := range files {
			out = append(out, guessIdentification(f, batch, p.series, candidates))
		}
		return out, nil
	}

	req := identifyRequest{
		Category:   cls.Category.String(),
		Language:   cls.Language,
		Files:      files,
		Metadata:   batch.Metadata,
		Candidates: candidates,
	}
	if req.Candidates == nil {
		req.Candidates = []Candidate{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode identify request: %w", err)
	}
	prompt := MoviePrompt
	if p.series {
		prompt = SeriesPrompt
	}
	raw, err := p.client.CompleteJSON(ctx, prompt, string(payload))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrExternalTool, "plan", p.name()+" identify", "model request failed", err)
	}
	var resp identifyResponse
	if err := llm.DecodeLLMJSON(raw, &resp); err != nil {
		return nil, services.Wrap(services.ErrValidation, "plan", p.name()+" identify", "model returned malformed JSON", err)
	}
	for i := range resp.Files {
		resp.Files[i].File = strings.TrimSpace(resp.Files[i].File)
		resp.Files[i].Title = strings.TrimSpace(resp.Files[i].Title)
	}
	return resp.Files, nil
}
