package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Batch is one download: file paths relative to the download root, all sharing
// the same first segment, plus whatever metadata the download source supplied.
type Batch struct {
	Files    []string          `json:"files"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// BatchDir returns the first path segment of the first file.
func (b Batch) BatchDir() string {
	if len(b.Files) == 0 {
		return ""
	}
	return firstSegment(b.Files[0])
}

// Clone returns a deep copy so planners can never mutate the caller's batch.
func (b Batch) Clone() Batch {
	out := Batch{Files: append([]string(nil), b.Files...)}
	if len(b.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// RawClassification is a classifier's answer before the category name has
// been checked against the enumeration.
type RawClassification struct {
	Category string `json:"category"`
	Language string `json:"language"`
}

// Classification is the validated classifier verdict for a batch.
type Classification struct {
	Category Category `json:"category"`
	Language string   `json:"language"`
}

// Action tells the executor what to do with one source path.
type Action string

const (
	ActionMove Action = "move"
	ActionSkip Action = "skip"

	// actionIgnore is accepted on input as a synonym for skip.
	actionIgnore Action = "ignore"
)

// UnmarshalText accepts move, skip and the legacy ignore spelling.
func (a *Action) UnmarshalText(text []byte) error {
	switch Action(strings.ToLower(strings.TrimSpace(string(text)))) {
	case ActionMove:
		*a = ActionMove
	case ActionSkip, actionIgnore:
		*a = ActionSkip
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidPlan, string(text))
	}
	return nil
}

// PlanAction is one instruction in a plan. Target is empty for skip actions.
type PlanAction struct {
	File   string
	Action Action
	Target string
}

// Move builds a move action.
func Move(file, target string) PlanAction {
	return PlanAction{File: file, Action: ActionMove, Target: target}
}

// Skip builds a skip action.
func Skip(file string) PlanAction {
	return PlanAction{File: file, Action: ActionSkip}
}

type wireAction struct {
	File   string  `json:"file"`
	Action Action  `json:"action"`
	Target *string `json:"target"`
}

// MarshalJSON writes target as null for skip actions.
func (a PlanAction) MarshalJSON() ([]byte, error) {
	w := wireAction{File: a.File, Action: a.Action}
	if a.Target != "" {
		target := a.Target
		w.Target = &target
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire shape, treating a missing target as null.
func (a *PlanAction) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.File = w.File
	a.Action = w.Action
	a.Target = ""
	if w.Target != nil {
		a.Target = *w.Target
	}
	return nil
}

// Response is the ordered plan returned for one batch.
type Response struct {
	Plan []PlanAction `json:"plan"`
}

// Moves returns only the move actions, preserving order.
func (r Response) Moves() []PlanAction {
	out := make([]PlanAction, 0, len(r.Plan))
	for _, action := range r.Plan {
		if action.Action == ActionMove {
			out = append(out, action)
		}
	}
	return out
}

// MarshalJSON always writes an array, never null.
func (r Response) MarshalJSON() ([]byte, error) {
	actions := r.Plan
	if actions == nil {
		actions = []PlanAction{}
	}
	return json.Marshal(struct {
		Plan []PlanAction `json:"plan"`
	}{Plan: actions})
}

func segments(path string) []string {
	return strings.Split(path, "/")
}

func firstSegment(path string) string {
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
