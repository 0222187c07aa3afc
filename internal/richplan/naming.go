package richplan

import (
	"fmt"
	"path"
	"strings"

	"shelver/internal/language"
	"shelver/internal/plan"
	"shelver/internal/textutil"
)

// libraryRoot returns the "<category>/<language>" prefix of every target.
func libraryRoot(cls plan.Classification) string {
	lang := textutil.SanitizeFileName(cls.Language)
	if lang == "" {
		lang = "Unknown"
	}
	return cls.Category.String() + "/" + lang
}

// titleFolder formats "Title (Year)". It returns "" when either part is
// missing.
func titleFolder(id Identification) string {
	title := textutil.SanitizeFileName(id.Title)
	if title == "" || id.Year <= 0 {
		return ""
	}
	return fmt.Sprintf("%s (%d)", title, id.Year)
}

// movieStem returns the extensionless movie target:
// "<root>/Title (Year)/Title (Year)".
func movieStem(root string, id Identification) string {
	folder := titleFolder(id)
	if folder == "" {
		return ""
	}
	return path.Join(root, folder, folder)
}

// episodeStem returns the extensionless episode target:
// "<root>/Title (Year)/Season 01/Title (Year) S01E02".
func episodeStem(root string, id Identification) string {
	folder := titleFolder(id)
	if folder == "" || id.Season <= 0 || id.Episode <= 0 {
		return ""
	}
	return path.Join(root, folder,
		fmt.Sprintf("Season %02d", id.Season),
		fmt.Sprintf("%s S%02dE%02d", folder, id.Season, id.Episode),
	)
}

// subtitleTarget appends the language label and the subtitle's own
// extension to a video stem.
func subtitleTarget(stem, file string) string {
	return stem + "." + language.SubtitleLabel(path.Base(file)) + extension(file)
}

func extension(file string) string {
	return strings.ToLower(path.Ext(file))
}

// stemOf returns a file's base name without its extension. Subtitle
// language suffixes such as ".zh" or ".eng" stay in place.
func stemOf(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}
