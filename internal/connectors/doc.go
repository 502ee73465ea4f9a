// Package connectors holds the document sources tfask can read from.
//
// The filesystem subpackage walks a source directory, loads the files matching
// a doublestar glob and reports later changes through fsnotify.
package connectors
