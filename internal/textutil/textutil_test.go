package textutil

import (
	"math"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mission: Impossible", "Mission - Impossible"},
		{"AC/DC Live", "AC-DC Live"},
		{"What?  Now", "What Now"},
		{"..hidden", "hidden"},
		{"..", ""},
		{". .", ""},
		{"... ..", ""},
		{". .hidden", "hidden"},
		{"Vol. 2.", "Vol. 2."},
		{"  流浪地球  ", "流浪地球"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("the wandering earth"); got != "The Wandering Earth" {
		t.Fatalf("TitleCase = %q", got)
	}
	if got := TitleCase("NASA files"); got != "NASA Files" {
		t.Fatalf("TitleCase kept acronym wrong: %q", got)
	}
	if got := TitleCase("流浪地球"); got != "流浪地球" {
		t.Fatalf("TitleCase changed CJK: %q", got)
	}
}

func TestParseRelease(t *testing.T) {
	tests := []struct {
		in   string
		want Release
	}{
		{"The.Wandering.Earth.2019.1080p.BluRay.x264.mkv", Release{Title: "The Wandering Earth", Year: 2019}},
		{"Game.of.Thrones.S01E02.720p.HDTV.mkv", Release{Title: "Game of Thrones", Season: 1, Episode: 2}},
		{"Game of Thrones Season 3 Complete", Release{Title: "Game of Thrones", Season: 3}},
		{"[Group] Some Anime - S02E10 [1080p].mkv", Release{Title: "Some Anime", Season: 2, Episode: 10}},
		{"Blade Runner 2049 (2017).mkv", Release{Title: "Blade Runner 2049", Year: 2017}},
		{"Heat.1080p.WEB-DL.mkv", Release{Title: "Heat"}},
		{"Some.Show.S01", Release{Title: "Some Show", Season: 1}},
		{"2001.A.Space.Odyssey.1968.mkv", Release{Title: "2001 A Space Odyssey", Year: 1968}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseRelease(tt.in); got != tt.want {
				t.Errorf("ParseRelease(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The Wandering-Earth 流浪地球 a")
	want := []string{"the", "wandering", "earth", "流", "浪", "地", "球"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity(nil, NewFingerprint("hello world")); got != 0 {
		t.Fatalf("nil fingerprint similarity = %v", got)
	}
	if got := TitleSimilarity("Game of Thrones", "game.of.thrones"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical titles similarity = %v", got)
	}
	if got := TitleSimilarity("Game of Thrones", "Heat"); got != 0 {
		t.Fatalf("disjoint titles similarity = %v", got)
	}
	close := TitleSimilarity("The Wandering Earth", "Wandering Earth")
	far := TitleSimilarity("The Wandering Earth", "The Earth Is Flat")
	if close <= far {
		t.Fatalf("expected closer title to score higher: %v <= %v", close, far)
	}
	if NewFingerprint("a").TokenCount() != 0 {
		t.Fatal("single-letter words should be dropped")
	}
}
