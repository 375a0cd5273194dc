// Package store caches export blobs in object storage. The core treats
// blobs as opaque bytes: CSV text on the way in, CSV or workbook bytes on
// the way out.
package store

import "errors"

// ErrNotFound reports a missing blob.
var ErrNotFound = errors.New("blob not found")

// Store lists, downloads and uploads named blobs.
type Store interface {
	List() ([]string, error)
	Download(name string) ([]byte, error)
	Upload(name string, data []byte) error
}
