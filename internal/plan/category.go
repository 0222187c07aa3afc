package plan

import (
	"fmt"
	"strings"
)

// Category is the closed set of library categories a batch can be filed under.
type Category int

const (
	Movie Category = iota
	TVSeries
	AnimTVSeries
	AnimMovie
	Photobook
	Porn
	AudioBook
	Book
	Music
	MusicVideo

	// CategoryCount is the number of categories. Tables indexed by Category
	// are sized against it.
	CategoryCount
)

var categoryNames = [CategoryCount]string{
	Movie:        "movie",
	TVSeries:     "tv_series",
	AnimTVSeries: "anim_tv_series",
	AnimMovie:    "anim_movie",
	Photobook:    "photobook",
	Porn:         "porn",
	AudioBook:    "audio_book",
	Book:         "book",
	Music:        "music",
	MusicVideo:   "music_video",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, CategoryCount)
	for c := Category(0); c < CategoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// CategoryNames returns the wire names of every category in declaration order.
func CategoryNames() []string {
	out := make([]string, len(categoryNames))
	copy(out, categoryNames[:])
	return out
}

// ParseCategory maps a wire name to a Category. Matching is exact after
// trimming surrounding whitespace; anything else is ErrInvalidCategory.
func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	for i, name := range categoryNames {
		if name == trimmed {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, value)
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= 0 && c < CategoryCount
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText encodes the category as its wire name.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText decodes a wire name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
