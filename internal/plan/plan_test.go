package plan

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	for _, category := range Categories() {
		parsed, err := ParseCategory(category.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q): %v", category, err)
		}
		if parsed != category {
			t.Fatalf("ParseCategory(%q) = %v", category, parsed)
		}
	}
	for _, bad := range []string{"", "Movie", "documentary", "tv series"} {
		if _, err := ParseCategory(bad); !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("ParseCategory(%q) expected ErrInvalidCategory, got %v", bad, err)
		}
	}
}

func TestCategoryNamesMatchEnumeration(t *testing.T) {
	names := CategoryNames()
	if len(names) != int(CategoryCount) {
		t.Fatalf("expected %d names, got %d", CategoryCount, len(names))
	}
	want := []string{"movie", "tv_series", "anim_tv_series", "anim_movie", "photobook", "porn", "audio_book", "book", "music", "music_video"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("category %d: want %q got %q", i, name, names[i])
		}
	}
}

func TestPlanActionJSON(t *testing.T) {
	resp := Response{Plan: []PlanAction{
		Move("h1/a.mkv", "movie/a.mkv"),
		Skip("h1/a.nfo"),
	}}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"plan":[{"file":"h1/a.mkv","action":"move","target":"movie/a.mkv"},{"file":"h1/a.nfo","action":"skip","target":null}]}`
	if string(data) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", data, want)
	}

	empty, err := json.Marshal(Response{})
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if string(empty) != `{"plan":[]}` {
		t.Fatalf("empty plan should encode as array, got %s", empty)
	}
}

func TestPlanActionUnmarshalAcceptsIgnore(t *testing.T) {
	var resp Response
	input := `{"plan":[{"file":"h/a.jpg","action":"ignore"},{"file":"h/b.mkv","action":"MOVE","target":"movie/b.mkv"}]}`
	if err := json.Unmarshal([]byte(input), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Plan[0].Action != ActionSkip || resp.Plan[0].Target != "" {
		t.Fatalf("ignore should decode as skip, got %+v", resp.Plan[0])
	}
	if resp.Plan[1].Action != ActionMove || resp.Plan[1].Target != "movie/b.mkv" {
		t.Fatalf("unexpected move action %+v", resp.Plan[1])
	}

	if err := json.Unmarshal([]byte(`{"plan":[{"file":"h/a","action":"copy"}]}`), &resp); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan for unknown action, got %v", err)
	}
}

func TestClassificationJSONUsesCategoryName(t *testing.T) {
	data, err := json.Marshal(Classification{Category: AnimTVSeries, Language: "Japanese"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"category":"anim_tv_series","language":"Japanese"}` {
		t.Fatalf("unexpected json %s", data)
	}
	var decoded Classification
	if err := json.Unmarshal([]byte(`{"category":"documentary","language":"English"}`), &decoded); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestBatchDirAndClone(t *testing.T) {
	b := Batch{Files: []string{"abc/x/y.mp3"}, Metadata: map[string]string{"title": "t"}}
	if b.BatchDir() != "abc" {
		t.Fatalf("unexpected batch dir %q", b.BatchDir())
	}
	clone := b.Clone()
	clone.Files[0] = "changed"
	clone.Metadata["title"] = "changed"
	if b.Files[0] != "abc/x/y.mp3" || b.Metadata["title"] != "t" {
		t.Fatal("clone shares storage with original")
	}
}
