package media

import (
	"path"
	"regexp"
	"strings"
)

// Kind is the coarse content type of a file.
type Kind uint8

const (
	KindOther Kind = iota
	KindVideo
	KindSubtitle
	KindAudio
	KindImage
	KindEbook
	KindArchive
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindSubtitle:
		return "subtitle"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	case KindEbook:
		return "ebook"
	case KindArchive:
		return "archive"
	default:
		return "other"
	}
}

var extensionKinds = map[string]Kind{
	".mkv": KindVideo, ".mp4": KindVideo, ".m4v": KindVideo, ".avi": KindVideo,
	".mov": KindVideo, ".wmv": KindVideo, ".flv": KindVideo, ".webm": KindVideo,
	".ts": KindVideo, ".m2ts": KindVideo, ".mpg": KindVideo, ".mpeg": KindVideo,
	".rmvb": KindVideo, ".rm": KindVideo, ".vob": KindVideo,

	".srt": KindSubtitle, ".ass": KindSubtitle, ".ssa": KindSubtitle, ".vtt": KindSubtitle,
	".sub": KindSubtitle, ".idx": KindSubtitle, ".sup": KindSubtitle,

	".mp3": KindAudio, ".flac": KindAudio, ".m4a": KindAudio, ".m4b": KindAudio,
	".aac": KindAudio, ".ogg": KindAudio, ".opus": KindAudio, ".wav": KindAudio,
	".ape": KindAudio, ".wma": KindAudio, ".alac": KindAudio,

	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".bmp": KindImage, ".tif": KindImage, ".tiff": KindImage, ".heic": KindImage,

	".epub": KindEbook, ".mobi": KindEbook, ".azw": KindEbook, ".azw3": KindEbook,
	".pdf": KindEbook, ".djvu": KindEbook, ".cbz": KindEbook, ".cbr": KindEbook, ".fb2": KindEbook,

	".zip": KindArchive, ".rar": KindArchive, ".7z": KindArchive, ".tar": KindArchive, ".gz": KindArchive,
}

// KindOf classifies a path by its extension.
func KindOf(name string) Kind {
	return extensionKinds[Ext(name)]
}

// Ext returns the lowercased extension including the dot.
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

// IsPlayable reports whether a rich planner should name the file: videos and
// their subtitles.
func IsPlayable(name string) bool {
	switch KindOf(name) {
	case KindVideo, KindSubtitle:
		return true
	default:
		return false
	}
}

var (
	episodeMarker = regexp.MustCompile(`(?i)(?:\bS\d{1,2}[\s.\-_]?E\d{1,3}\b|\b\d{1,2}x\d{2}\b|\bEP?\s?\d{2,3}\b|\s-\s\d{2,3}(?:v\d)?\b|第\s?\d{1,4}\s?[集话話])`)
	fansubMarker  = regexp.MustCompile(`^\[[^\]]+\]`)
	sampleMarker  = regexp.MustCompile(`(?i)(?:^|[\s.\-_])sample(?:$|[\s.\-_])`)
)

// HasEpisodeMarker reports whether the name looks like an episode
// (S01E02, 1x02, EP02, 第2集).
func HasEpisodeMarker(name string) bool {
	return episodeMarker.MatchString(path.Base(name))
}

// HasFansubTag reports whether the name starts with a bracketed group tag,
// as anime fansub releases do.
func HasFansubTag(name string) bool {
	return fansubMarker.MatchString(path.Base(name))
}

// IsSample reports whether the name marks a preview sample clip.
func IsSample(name string) bool {
	base := path.Base(name)
	return sampleMarker.MatchString(strings.TrimSuffix(base, path.Ext(base)))
}

// Counts tallies files by kind.
type Counts map[Kind]int

// Count classifies every file.
func Count(files []string) Counts {
	counts := make(Counts)
	for _, f := range files {
		counts[KindOf(f)]++
	}
	return counts
}

// Dominant returns the most common kind among videos, audio, images, and
// ebooks. Subtitles, archives, and other files never dominate. Ties resolve
// in that order. KindOther means none of them is present.
func (c Counts) Dominant() Kind {
	best, bestCount := KindOther, 0
	for _, k := range []Kind{KindVideo, KindAudio, KindImage, KindEbook} {
		if c[k] > bestCount {
			best, bestCount = k, c[k]
		}
	}
	return best
}
