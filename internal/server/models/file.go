// Package models holds the server-side persistence structs.
package models

import "time"

// FileObject is the metadata row governing one stored ciphertext blob.
//
// The blob itself lives in the object store under StorageKey; this row owns
// the lifecycle: an object is servable only while now < ExpiresAt and
// DownloadCount < MaxDownloads, and DownloadCount never exceeds MaxDownloads.
type FileObject struct {
	ID            string
	StorageKey    string
	OriginalName  string
	SizeBytes     int64
	MimeType      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	DownloadCount int
	MaxDownloads  int
}

// Spent reports whether the download cap has been reached.
func (f *FileObject) Spent() bool {
	return f.DownloadCount >= f.MaxDownloads
}

// Expired reports whether the object's lifetime has passed at the given time.
func (f *FileObject) Expired(now time.Time) bool {
	return !now.Before(f.ExpiresAt)
}

// Servable reports whether the object may still be downloaded at the given
// time. This is the advisory form of the registry's conditional update; the
// database predicate is authoritative.
func (f *FileObject) Servable(now time.Time) bool {
	return !f.Expired(now) && !f.Spent()
}
