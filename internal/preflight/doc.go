// Package preflight provides readiness checks for the filesystem paths and
// external services shelver depends on.
//
// These checks run in two contexts:
//   - "shelver check" prints every result as a table.
//   - "shelver serve" runs the directory checks at startup and logs
//     failures without refusing to start, since the library may be a
//     network mount that appears later.
//
// Each service check is gated by its config: a missing API key is reported,
// not probed.
package preflight
