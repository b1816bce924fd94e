// Package file provides filesystem-backed content and metadata stores.
//
// Content is kept as one UTF-8 file per document under content/. Metadata is
// one aggregate JSON file, rewritten whole on every change under an
// in-process mutex and a cross-process file lock, so backing up or removing
// the data directory is a plain filesystem operation.
//
// Both stores write through an afero.Fs; production uses the OS filesystem
// and tests use an in-memory one.
package file
