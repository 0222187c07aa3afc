// Package tmdb provides the minimal TMDB search client used as the external
// lookup for classification and title resolution.
//
// It exposes movie, TV, and multi search with an optional year filter and
// returns typed results that know their display title and release year.
package tmdb
