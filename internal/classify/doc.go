// Package classify implements the classifiers that decide which library
// category a download batch belongs to.
//
// LLMClassifier asks a chat-completion model, optionally primed with TMDB
// search hints. RulesClassifier works offline from file extensions and name
// markers. Chain tries classifiers in order so the rules can back up the model.
// Every classifier returns the category as an unvalidated name; checking it
// against the enumeration is the caller's job.
package classify
