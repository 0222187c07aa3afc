package classify

import (
	"context"
	"errors"
	"path"
	"strings"
	"unicode"

	"shelver/internal/language"
	"shelver/internal/media"
	"shelver/internal/plan"
	"shelver/internal/textutil"
)

// ErrNoRuleMatched is returned when a batch has no media the rules recognize.
var ErrNoRuleMatched = errors.New("no classification rule matched")

var audiobookWords = []string{"audiobook", "audio book", "有声", "unabridged", "narrated"}

// RulesClassifier classifies batches offline from file names alone.
type RulesClassifier struct{}

// Classify implements the classifier contract.
func (RulesClassifier) Classify(ctx context.Context, batch plan.Batch) (plan.RawClassification, error) {
	if err := ctx.Err(); err != nil {
		return plan.RawClassification{}, err
	}
	category, ok := ruleCategory(batch)
	if !ok {
		return plan.RawClassification{}, ErrNoRuleMatched
	}
	return plan.RawClassification{Category: category.String(), Language: detectLanguage(batch)}, nil
}

func ruleCategory(batch plan.Batch) (plan.Category, bool) {
	files := make([]string, 0, len(batch.Files))
	for _, f := range batch.Files {
		if !media.IsSample(f) {
			files = append(files, f)
		}
	}
	counts := media.Count(files)
	switch counts.Dominant() {
	case media.KindVideo:
		anim := false
		episodes := 0
		for _, f := range files {
			if media.KindOf(f) != media.KindVideo {
				continue
			}
			if media.HasEpisodeMarker(f) {
				episodes++
			}
			if media.HasFansubTag(f) {
				anim = true
			}
		}
		series := episodes >= 2 ||
			episodes == 1 && counts[media.KindVideo] == 1 ||
			textutil.ParseRelease(batch.BatchDir()).Season > 0
		switch {
		case series && anim:
			return plan.AnimTVSeries, true
		case series:
			return plan.TVSeries, true
		case anim:
			return plan.AnimMovie, true
		default:
			return plan.Movie, true
		}
	case media.KindAudio:
		if isAudiobook(batch, files) {
			return plan.AudioBook, true
		}
		return plan.Music, true
	case media.KindEbook:
		return plan.Book, true
	case media.KindImage:
		return plan.Photobook, true
	default:
		return 0, false
	}
}

func isAudiobook(batch plan.Batch, files []string) bool {
	haystack := strings.ToLower(batch.Metadata["title"] + " " + batch.Metadata["description"] + " " + batch.BatchDir())
	for _, word := range audiobookWords {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	for _, f := range files {
		if media.Ext(f) == ".m4b" {
			return true
		}
	}
	return false
}

// detectLanguage guesses the content language from script usage in names and
// metadata. Kana means Japanese, Hangul means Korean, other Han text means
// Chinese. A metadata "language" value wins over all of them.
func detectLanguage(batch plan.Batch) string {
	if lang := strings.TrimSpace(batch.Metadata["language"]); lang != "" {
		if language.Known(lang) {
			return language.DisplayName(lang)
		}
		return lang
	}
	var han, kana, hangul bool
	scan := func(s string) {
		for _, r := range s {
			switch {
			case unicode.In(r, unicode.Hiragana, unicode.Katakana):
				kana = true
			case unicode.Is(unicode.Hangul, r):
				hangul = true
			case unicode.Is(unicode.Han, r):
				han = true
			}
		}
	}
	scan(batch.Metadata["title"])
	for _, f := range batch.Files {
		base := path.Base(f)
		if media.KindOf(base) == media.KindSubtitle {
			continue
		}
		scan(f)
	}
	switch {
	case kana:
		return language.DisplayName("ja")
	case hangul:
		return language.DisplayName("ko")
	case han:
		return language.DisplayName("zh")
	default:
		return language.DisplayName("en")
	}
}
