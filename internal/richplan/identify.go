package richplan

import (
	"cmp"
	"context"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"shelver/internal/plan"
	"shelver/internal/services/tmdb"
	"shelver/internal/textutil"
)

const (
	maxCandidates = 5
	// minCandidateScore is the title similarity above which the offline
	// guesser trusts a search result's title and year over the file name.
	minCandidateScore = 0.6
)

// Identification names the title a single file belongs to.
type Identification struct {
	File    string `json:"file"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
}

// Candidate is a search result offered to the model as a naming reference.
type Candidate struct {
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Year             int     `json:"year,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	score            float64
}

type identifyRequest struct {
	Category   string            `json:"category"`
	Language   string            `json:"language"`
	Files      []string          `json:"files"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Candidates []Candidate       `json:"candidates"`
}

type identifyResponse struct {
	Files []Identification `json:"files"`
}

// fansubEpisode matches the " - 01" episode suffix of fansub releases.
var fansubEpisode = regexp.MustCompile(`(?i)\s-\s(\d{1,3})(?:v\d)?\b`)

// bareEpisode matches episode numbers without a season: "EP05", "E05",
// "第5集", or a file named just "05".
var bareEpisode = regexp.MustCompile(`(?i)(?:\bEP?\s?(\d{1,3})\b|第\s?(\d{1,4})\s?[集话話]|^(\d{1,3})$)`)

// searchQuery derives the title and year to look up for a batch.
func searchQuery(batch plan.Batch) textutil.Release {
	if title := strings.TrimSpace(batch.Metadata["title"]); title != "" {
		return textutil.ParseRelease(title + ".")
	}
	if len(batch.Files) > 0 && strings.Contains(batch.Files[0], "/") {
		if rel := guessFromName(batch.BatchDir()); rel.Title != "" {
			return rel
		}
	}
	for _, f := range batch.Files {
		if rel := guessFromName(f); rel.Title != "" {
			return rel
		}
	}
	return textutil.Release{}
}

// searchCandidates looks the query up with the search kind matching the
// planner and ranks results by title similarity.
func searchCandidates(ctx context.Context, searcher tmdb.Searcher, series bool, query textutil.Release) ([]Candidate, error) {
	if searcher == nil || query.Title == "" {
		return nil, nil
	}
	search := searcher.SearchMovie
	if series {
		search = searcher.SearchTV
	}
	resp, err := search(ctx, query.Title, query.Year)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		original := r.OriginalTitle
		if original == "" {
			original = r.OriginalName
		}
		title := r.DisplayTitle()
		if title == "" {
			continue
		}
		out = append(out, Candidate{
			Title:            title,
			OriginalTitle:    original,
			Year:             r.Year(),
			OriginalLanguage: r.OriginalLang,
			score: max(
				textutil.TitleSimilarity(query.Title, title),
				textutil.TitleSimilarity(query.Title, original),
			),
		})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int { return cmp.Compare(b.score, a.score) })
	return out[:min(len(out), maxCandidates)], nil
}

// guessFromName parses a release name and, for fansub names such as
// "[Group] Title - 05 (1080p).mkv", cuts the title at the episode number.
func guessFromName(name string) textutil.Release {
	base := path.Base(name)
	rel := textutil.ParseRelease(base)
	if m := fansubEpisode.FindStringIndex(base); m != nil && rel.Episode == 0 {
		head := textutil.ParseRelease(base[:m[0]] + ".")
		rel.Title = head.Title
		if rel.Year == 0 {
			rel.Year = head.Year
		}
	}
	return rel
}

// episodeNumber finds an episode number in names that carry no season.
func episodeNumber(name string) int {
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if m := fansubEpisode.FindStringSubmatch(stem); m != nil {
		return atoi(m[1])
	}
	if m := bareEpisode.FindStringSubmatch(strings.TrimSpace(stem)); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return atoi(g)
			}
		}
	}
	return 0
}

// guessIdentification identifies a file offline from its name, the batch
// directory, and the best search candidate.
func guessIdentification(file string, batch plan.Batch, series bool, candidates []Candidate) Identification {
	rel := guessFromName(file)
	var dir textutil.Release
	if strings.Contains(file, "/") {
		dir = guessFromName(batch.BatchDir())
	}
	id := Identification{File: file, Title: rel.Title, Year: rel.Year}
	if id.Title == "" || isNumeric(id.Title) {
		id.Title = dir.Title
	}
	if id.Year == 0 {
		id.Year = dir.Year
	}
	if series {
		id.Season, id.Episode = rel.Season, rel.Episode
		if id.Episode == 0 {
			id.Episode = episodeNumber(file)
		}
		if id.Season == 0 {
			id.Season = max(dir.Season, 1)
		}
	}
	if len(candidates) > 0 && candidates[0].score >= minCandidateScore {
		best := candidates[0]
		id.Title = best.Title
		if best.Year > 0 {
			id.Year = best.Year
		}
		return id
	}
	id.Title = textutil.TitleCase(id.Title)
	return id
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != ' ' {
			return false
		}
	}
	return s != ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
