package storage

import (
	"errors"
	"strings"
)

const (
	ModelsDir   = "models"
	MetadataDir = "model_metadata"

	// DefaultName is used for keys that have nothing left after sanitization.
	DefaultName = "model"
)

var (
	// DefaultDir is the root of the file storage.
	DefaultDir = "file-storage"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
	CouldNotSaveErr = errors.New("could not save")
)

// Key is the storage key of a persisted item.
// It is always sanitized so it can be used safely as a file name.
type Key string

// NewKey creates a sanitized key for the given name.
func NewKey(name string) Key {
	return Key(Sanitize(name))
}

// Sanitize strips every character outside [A-Za-z0-9_-].
// An empty result collapses to DefaultName.
func Sanitize(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '-', c == '_':
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return DefaultName
	}
	return b.String()
}

func (k Key) String() string {
	return string(k)
}

// Persistence stores json encodable values under a key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
	// Keys lists the keys currently present in the storage.
	Keys() ([]Key, error)
	Delete(k Key) error
}

