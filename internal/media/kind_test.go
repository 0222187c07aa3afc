package media

import "testing"

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"h1/Movie.2019.MKV":    KindVideo,
		"h1/movie.zh.srt":      KindSubtitle,
		"h1/01 - Track.flac":   KindAudio,
		"h1/book.m4b":          KindAudio,
		"h1/cover.JPG":         KindImage,
		"h1/novel.epub":        KindEbook,
		"h1/scans.cbz":         KindEbook,
		"h1/bundle.rar":        KindArchive,
		"h1/readme.nfo":        KindOther,
		"h1/no-extension":      KindOther,
	}
	for name, want := range tests {
		if got := KindOf(name); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestMarkers(t *testing.T) {
	episodes := []string{"Show.S01E02.mkv", "show s1e2.mkv", "show.1x02.mkv", "Show EP12.mp4", "剧名 第12集.mp4", "[Group] Show - E05.mkv", "[SubsPlease] Frieren - 01 (1080p).mkv", "[Group] Show - 12v2.mkv"}
	for _, name := range episodes {
		if !HasEpisodeMarker(name) {
			t.Errorf("expected episode marker in %q", name)
		}
	}
	for _, name := range []string{"Heat.1995.1080p.mkv", "Blade Runner 2049.mkv", "Sep 2019.mkv"} {
		if HasEpisodeMarker(name) {
			t.Errorf("unexpected episode marker in %q", name)
		}
	}
	if !HasFansubTag("dir/[SubsPlease] Frieren - 01.mkv") || HasFansubTag("Frieren [1080p].mkv") {
		t.Fatal("fansub tag detection mismatch")
	}
	if !IsSample("h1/movie-sample.mkv") || !IsSample("h1/Sample.mkv") || IsSample("h1/Samples of Life.mkv") {
		t.Fatal("sample detection mismatch")
	}
}

func TestDominant(t *testing.T) {
	counts := Count([]string{"a.mkv", "a.srt", "b.srt", "c.srt", "cover.jpg"})
	if counts.Dominant() != KindVideo {
		t.Fatalf("Dominant = %s, want video", counts.Dominant())
	}
	if Count([]string{"a.nfo", "b.srt"}).Dominant() != KindOther {
		t.Fatal("subtitles alone must not dominate")
	}
	if Count([]string{"1.jpg", "2.jpg", "a.mp3"}).Dominant() != KindImage {
		t.Fatal("expected images to dominate")
	}
}
