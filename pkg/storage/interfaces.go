package storage

import "io"

// ObjectStorage holds member photos and QR credential images.
type ObjectStorage interface {
	Upload(key string, src io.Reader) error
	Delete(key string) error
	PublicURL(key string) string
}
