package plan

import (
	"fmt"
	"strings"
)

// Rules describe the layout a plan's move targets must follow.
type Rules struct {
	Category Category
	// Language, when set, must be the second target segment.
	Language string
}

// Validate checks the batch shape planners rely on. Paths are relative and
// made of non-empty segments other than "." and "..". A single file may sit
// at the download root; otherwise every file must lie below the batch
// directory named by the first segment of Files[0]. Duplicates are rejected.
func (b Batch) Validate() error {
	if len(b.Files) == 0 {
		return ErrEmptyBatch
	}
	dir := b.BatchDir()
	seen := make(map[string]struct{}, len(b.Files))
	for _, f := range b.Files {
		if strings.HasPrefix(f, "/") {
			return fmt.Errorf("%w: %q is absolute", ErrInvalidBatch, f)
		}
		parts := segments(f)
		for _, part := range parts {
			if part == "" || part == "." || part == ".." {
				return fmt.Errorf("%w: %q has an empty or relative segment", ErrInvalidBatch, f)
			}
		}
		if len(b.Files) > 1 {
			if len(parts) < 2 {
				return fmt.Errorf("%w: %q is not inside a batch directory", ErrInvalidBatch, f)
			}
			if parts[0] != dir {
				return fmt.Errorf("%w: %q is outside batch directory %q", ErrInvalidBatch, f, dir)
			}
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: %q is listed twice", ErrInvalidBatch, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// Validate checks r against the action contract for batch b:
// move actions carry a target and skip actions do not, targets are relative
// library paths rooted at the category (and language, if required), every
// source path is an input file or a directory prefix of one, and no source
// path is repeated or nested under another.
func (r Response) Validate(b Batch, rules Rules) error {
	if !rules.Category.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCategory, int(rules.Category))
	}
	known := make(map[string]struct{}, len(b.Files)*2)
	for _, f := range b.Files {
		known[f] = struct{}{}
		for dir := parentDir(f); dir != ""; dir = parentDir(dir) {
			known[dir] = struct{}{}
		}
	}

	sources := make(map[string]int, len(r.Plan))
	targets := make(map[string]string, len(r.Plan))
	for i, action := range r.Plan {
		if strings.TrimSpace(action.File) == "" {
			return fmt.Errorf("%w: action %d has no file", ErrInvalidPlan, i)
		}
		if _, ok := known[action.File]; !ok {
			return fmt.Errorf("%w: %q is not part of the batch", ErrInvalidPlan, action.File)
		}
		if prev, dup := sources[action.File]; dup {
			return fmt.Errorf("%w: %q appears in actions %d and %d", ErrOverlappingPlanPaths, action.File, prev, i)
		}
		sources[action.File] = i

		switch action.Action {
		case ActionMove:
			if err := checkTarget(action.Target, rules); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrInvalidPlan, action.File, err)
			}
			if other, dup := targets[action.Target]; dup {
				return fmt.Errorf("%w: %q and %q both move to %q", ErrInvalidPlan, other, action.File, action.Target)
			}
			targets[action.Target] = action.File
		case ActionSkip:
			if action.Target != "" {
				return fmt.Errorf("%w: skip action for %q has a target", ErrInvalidPlan, action.File)
			}
		default:
			return fmt.Errorf("%w: %q has unknown action %q", ErrInvalidPlan, action.File, action.Action)
		}
	}

	for file, i := range sources {
		for dir := parentDir(file); dir != ""; dir = parentDir(dir) {
			if j, ok := sources[dir]; ok {
				return fmt.Errorf("%w: %q (action %d) is inside %q (action %d)", ErrOverlappingPlanPaths, file, i, dir, j)
			}
		}
	}
	return nil
}

func checkTarget(target string, rules Rules) error {
	if target == "" {
		return fmt.Errorf("move without target")
	}
	if strings.HasPrefix(target, "/") {
		return fmt.Errorf("target %q is absolute", target)
	}
	parts := segments(target)
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("target %q has an empty or relative segment", target)
		}
	}
	if parts[0] != rules.Category.String() {
		return fmt.Errorf("target %q is not under %q", target, rules.Category.String())
	}
	if rules.Language != "" {
		if len(parts) < 3 || parts[1] != rules.Language {
			return fmt.Errorf("target %q is not under %q", target, rules.Category.String()+"/"+rules.Language)
		}
	} else if len(parts) < 2 {
		return fmt.Errorf("target %q names only the category", target)
	}
	return nil
}

func parentDir(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx > 0 {
		return path[:idx]
	}
	return ""
}
