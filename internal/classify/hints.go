package classify

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"shelver/internal/plan"
	"shelver/internal/services/tmdb"
	"shelver/internal/textutil"
)

const maxHints = 5

// SearchHint is a trimmed TMDB result included in the classification prompt.
type SearchHint struct {
	Title            string `json:"title"`
	OriginalTitle    string `json:"original_title,omitempty"`
	Year             int    `json:"year,omitempty"`
	MediaType        string `json:"media_type"`
	OriginalLanguage string `json:"original_language,omitempty"`
}

// SearchQuery derives the title and year to look up for a batch: the
// metadata title when present, otherwise the cleaned batch directory name,
// otherwise the cleaned name of the first file.
func SearchQuery(batch plan.Batch) textutil.Release {
	if title := strings.TrimSpace(batch.Metadata["title"]); title != "" {
		// The trailing dot keeps the last word from being read as an extension.
		return textutil.ParseRelease(title + ".")
	}
	candidates := []string{batch.BatchDir()}
	if len(batch.Files) > 0 {
		candidates = append(candidates, batch.Files[0])
	}
	for _, name := range candidates {
		if rel := textutil.ParseRelease(name); rel.Title != "" {
			return rel
		}
	}
	return textutil.Release{}
}

// searchHints queries TMDB and returns the candidates closest to the query
// title. Search failures yield no hints.
func searchHints(ctx context.Context, searcher tmdb.Searcher, query textutil.Release) ([]SearchHint, error) {
	if searcher == nil || query.Title == "" {
		return nil, nil
	}
	resp, err := searcher.SearchMulti(ctx, query.Title, query.Year)
	if err != nil {
		return nil, err
	}
	type scored struct {
		hint  SearchHint
		score float64
	}
	ranked := make([]scored, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		score := max(
			textutil.TitleSimilarity(query.Title, r.DisplayTitle()),
			textutil.TitleSimilarity(query.Title, firstNonEmpty(r.OriginalTitle, r.OriginalName)),
		)
		ranked = append(ranked, scored{
			hint: SearchHint{
				Title:            r.DisplayTitle(),
				OriginalTitle:    firstNonEmpty(r.OriginalTitle, r.OriginalName),
				Year:             r.Year(),
				MediaType:        r.MediaType,
				OriginalLanguage: r.OriginalLang,
			},
			score: score,
		})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
	hints := make([]SearchHint, 0, min(len(ranked), maxHints))
	for _, s := range ranked[:min(len(ranked), maxHints)] {
		hints = append(hints, s.hint)
	}
	return hints, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
