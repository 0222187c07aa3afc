package plan

// GroupByDirectory plans a batch by path structure alone, moving the coarsest
// container that does not mix unrelated groups:
//
//   - a single file is moved on its own to <category>/<basename>;
//   - if any file sits directly in the batch directory, the whole batch
//     directory moves to <category>/<batchdir>;
//   - otherwise each distinct immediate subdirectory of the batch directory
//     moves to <category>/<subdir>, in first-seen order.
//
// Files are assumed to share their first segment; this is not re-checked
// here (see Batch.Validate). It never emits skip actions. Callers must not
// pass an empty list.
func GroupByDirectory(category Category, files []string) Response {
	prefix := category.String() + "/"

	if len(files) == 1 {
		f := files[0]
		return Response{Plan: []PlanAction{Move(f, prefix+baseName(f))}}
	}

	hashDir := firstSegment(files[0])

	subdirs := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	for _, f := range files {
		parts := segments(f)
		if len(parts) == 2 {
			return Response{Plan: []PlanAction{Move(hashDir, prefix+hashDir)}}
		}
		if len(parts) < 2 {
			continue
		}
		dir := parts[1]
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		subdirs = append(subdirs, dir)
	}

	actions := make([]PlanAction, 0, len(subdirs))
	for _, dir := range subdirs {
		actions = append(actions, Move(hashDir+"/"+dir, prefix+dir))
	}
	return Response{Plan: actions}
}
