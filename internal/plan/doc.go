// Package plan defines the move-plan data model shared by every planner and
// implements the deterministic directory-grouping planner.
//
// A Batch is the set of paths produced by one download, all rooted at a
// single batch directory. Planners turn a Batch into a Response: an ordered
// list of actions that either move a source path to a library-relative target
// or skip it. Response.Validate enforces the contract every planner output must
// satisfy before it leaves the process, most importantly that no two actions
// refer to overlapping source paths.
//
// GroupByDirectory is the only planner that lives here. It reasons purely over
// path structure and never inspects file contents or calls out to anything.
package plan
