// Package filesystem reads a local source tree.
//
// Loader walks a root directory in lexical order and turns every file whose
// slash-separated relative path matches a doublestar glob (such as
// "**/*.tf") into a document. Watcher reports changes to matching files
// with fsnotify so that a stale index can be detected while serving.
//
// Hidden files and directories (a path element starting with ".") are
// skipped by both.
package filesystem
