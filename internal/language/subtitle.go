package language

import (
	"path"
	"strings"
	"unicode"
)

// Subtitle label constants used in library file names.
const (
	LabelEnglish            = "English.eng"
	LabelChineseSimplified  = "简体中文.chi"
	LabelChineseTraditional = "繁體中文.chi"
)

var simplifiedTokens = map[string]struct{}{
	"chs": {}, "sc": {}, "gb": {}, "zh-cn": {}, "zh-hans": {}, "zh_cn": {}, "zhcn": {},
	"简体": {}, "简": {}, "简中": {}, "简体中文": {}, "simplified": {},
}

var traditionalTokens = map[string]struct{}{
	"cht": {}, "tc": {}, "big5": {}, "zh-tw": {}, "zh-hk": {}, "zh-hant": {}, "zh_tw": {}, "zhtw": {},
	"繁体": {}, "繁體": {}, "繁": {}, "繁中": {}, "繁體中文": {}, "traditional": {},
}

// SubtitleLabel infers the "<Human label>.<iso639-2>" suffix for a subtitle
// file from the tokens in its name. Chinese variants resolve to simplified or
// traditional labels. Anything unidentifiable is English.
func SubtitleLabel(fileName string) string {
	tokens := nameTokens(fileName)
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if _, ok := traditionalTokens[tok]; ok {
			return LabelChineseTraditional
		}
		if _, ok := simplifiedTokens[tok]; ok {
			return LabelChineseSimplified
		}
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if label := labelForToken(tokens[i]); label != "" {
			return label
		}
	}
	if containsHan(fileName) {
		return LabelChineseSimplified
	}
	return LabelEnglish
}

// Label formats the subtitle suffix for a language code or word. Unknown
// values yield the English label.
func Label(code string) string {
	e := lookup(code)
	if e == nil {
		return LabelEnglish
	}
	if e.code2 == "zh" {
		return LabelChineseSimplified
	}
	return e.display + "." + e.code3
}

func labelForToken(tok string) string {
	// Two-letter tokens are too ambiguous in release names ("it", "no", "de")
	// unless they are the Chinese marker.
	if len(tok) == 2 && tok != "zh" && tok != "en" && tok != "ja" && tok != "ko" {
		return ""
	}
	if !Known(tok) {
		return ""
	}
	return Label(tok)
}

// nameTokens splits the file name (without directory and extension) on the
// separators release groups use.
func nameTokens(fileName string) []string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ToLower(base)
	fields := strings.FieldsFunc(base, func(r rune) bool {
		switch r {
		case '.', ' ', '[', ']', '(', ')', '{', '}', '+', '&', ',':
			return true
		}
		return false
	})
	out := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f)
		// "zh-cn" stays whole but "movie_chs" should also yield "chs".
		if strings.ContainsAny(f, "_") && !strings.HasPrefix(f, "zh_") {
			for part := range strings.SplitSeq(f, "_") {
				if part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
