package classify

import (
	"strings"

	"shelver/internal/plan"
)

const classificationPromptTemplate = `You categorize one download: a set of file paths that arrived together, plus optional metadata from the download source.

The user message is JSON:
{"files": ["dir/file.ext", ...], "metadata": {"title": "...", ...}, "search_hints": [{"title": "...", "year": 2019, "media_type": "movie|tv", "original_language": "zh"}]}

- files: infer content type from extensions (.mkv/.mp4 video, .mp3/.flac audio, .epub/.pdf books, .jpg images) and titles from names.
- metadata: prefer it over file names when present.
- search_hints: TMDB search results for the inferred title. Use them to confirm whether a title is a movie or a series and to detect its original language. They may be empty or wrong.

Pick exactly one category for the whole set from: $CATEGORIES$
Episode numbers (S01E02, EP05, 第5集) suggest a series. Japanese animation belongs in the anim_ categories. Never invent a category; choose the closest match.

Also give the primary language of the content as a broad English label such as Chinese, Japanese, English, or Korean. Choose the dominant one when mixed. Do not distinguish Simplified and Traditional Chinese.

Respond ONLY with JSON: {"category": "<one of the categories>", "language": "<language>"}`

// ClassificationPrompt is the system prompt sent to the model.
var ClassificationPrompt = strings.ReplaceAll(classificationPromptTemplate, "$CATEGORIES$", strings.Join(plan.CategoryNames(), ", "))
