// Package media identifies what kind of content a file holds from its name.
//
// Planners and classifiers never open files; extension and name markers are
// all they have. Kind covers the types a download batch is made of: video,
// subtitle, audio, image, ebook, archive, and everything else.
package media
