// Package richplan builds per-file plans with canonical library names for
// movies and series.
//
// A model (or, without one, the release-name parser) identifies each video
// and subtitle as {title, year, season, episode}; this package turns those
// identifications into targets such as
//
//	movie/English/Heat (1995)/Heat (1995).mkv
//	tv_series/English/Dark (2017)/Season 01/Dark (2017) S01E01.mkv
//
// Subtitles follow their video and carry a language suffix such as
// ".简体中文.chi". Anything that is not a video or subtitle is skipped.
package richplan
