package textutil

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern    = regexp.MustCompile(`(?:^|[\s.\-_(\[])((?:19|20)\d{2})(?:$|[\s.\-_)\]])`)
	episodePattern = regexp.MustCompile(`(?i)\bS(\d{1,2})[\s.\-_]?E(\d{1,3})\b`)
	seasonPattern  = regexp.MustCompile(`(?i)\b(?:S(\d{1,2})|Season[\s.\-_]?(\d{1,2}))\b`)
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]|【[^】]*】`)
	extPattern     = regexp.MustCompile(`^\.[A-Za-z][A-Za-z0-9]{1,4}$`)
	seasonExt      = regexp.MustCompile(`(?i)^\.s\d+$`)
)

// releaseTags are tokens that end the title part of a scene release name.
var releaseTags = map[string]struct{}{
	"2160p": {}, "1080p": {}, "1080i": {}, "720p": {}, "480p": {}, "4k": {}, "uhd": {},
	"bluray": {}, "blu-ray": {}, "bdrip": {}, "brrip": {}, "remux": {}, "webrip": {},
	"web-dl": {}, "webdl": {}, "web": {}, "hdtv": {}, "dvdrip": {}, "hdrip": {},
	"x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {}, "avc": {}, "10bit": {},
	"hdr": {}, "dv": {}, "aac": {}, "ac3": {}, "dts": {}, "ddp5": {}, "atmos": {},
	"proper": {}, "repack": {}, "complete": {}, "extended": {}, "internal": {},
}

// Release is the searchable part of a scene release name.
type Release struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

// ParseRelease extracts a title, year, and season/episode markers from a file
// or directory name such as "The.Wandering.Earth.2019.1080p.BluRay.x264.mkv".
func ParseRelease(name string) Release {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if ext := path.Ext(base); extPattern.MatchString(ext) && !seasonExt.MatchString(ext) {
		base = strings.TrimSuffix(base, ext)
	}
	base = bracketPattern.ReplaceAllString(base, " ")

	var rel Release
	cut := len(base)
	if m := episodePattern.FindStringSubmatchIndex(base); m != nil {
		rel.Season, _ = strconv.Atoi(base[m[2]:m[3]])
		rel.Episode, _ = strconv.Atoi(base[m[4]:m[5]])
		cut = min(cut, m[0])
	} else if m := seasonPattern.FindStringSubmatchIndex(base); m != nil {
		if m[2] >= 0 {
			rel.Season, _ = strconv.Atoi(base[m[2]:m[3]])
		} else {
			rel.Season, _ = strconv.Atoi(base[m[4]:m[5]])
		}
		cut = min(cut, m[0])
	}
	// The last year wins so "Blade Runner 2049 (2017)" keeps 2049 in the title.
	years := yearPattern.FindAllStringSubmatchIndex(base, -1)
	for i := len(years) - 1; i >= 0; i-- {
		if m := years[i]; m[2] > 0 {
			rel.Year, _ = strconv.Atoi(base[m[2]:m[3]])
			cut = min(cut, m[2])
			break
		}
	}

	words := strings.FieldsFunc(base[:cut], func(r rune) bool {
		return r == '.' || r == '_' || r == ' ' || r == '(' || r == ')'
	})
	title := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := releaseTags[strings.ToLower(w)]; ok {
			break
		}
		title = append(title, w)
	}
	rel.Title = strings.Trim(strings.Join(title, " "), " -")
	return rel
}
