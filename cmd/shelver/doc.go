// Command shelver plans and applies library moves for finished downloads.
//
// Batches are planned with "shelver plan", applied with "shelver execute",
// and served over HTTP with "shelver serve". Every plan is recorded in the
// history database under the configured state directory and can be
// inspected with "shelver history".
package main
