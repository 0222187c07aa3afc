// Package language provides language code normalization and the subtitle
// language labels used in library file names.
//
// Codes are accepted as ISO 639-1, ISO 639-2 (including bibliographic
// alternates such as "chi" and "fre"), or English word forms. Subtitle labels
// have the form "<Human label>.<iso639-2>", for example "English.eng" or
// "简体中文.chi", and default to English when nothing in the file name
// identifies a language.
package language
