// Package textutil provides text helpers for turning release names into
// library names.
//
// The primary use cases are:
//   - Cleaning scene release names into a searchable title and year
//   - Fingerprinting titles so search candidates can be ranked by similarity
//   - Sanitizing and title-casing path segments for safe filesystem use
//
// Tokenization is Unicode aware: Latin words are lowercased and split on
// punctuation, Han characters become one token each so Chinese titles can be
// compared with the same cosine measure.
package textutil
