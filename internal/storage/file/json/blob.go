package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drakos74/free-gesture/internal/storage"
	"github.com/rs/zerolog/log"
)

const ext = ".json"

// BlobStorage keeps one json file per key under <path>/<table>.
type BlobStorage struct {
	path   string
	table  string
	suffix string
}

// NewJsonBlob creates the storage and makes sure the table directory exists.
func NewJsonBlob(path, table string) (*BlobStorage, error) {
	s := &BlobStorage{
		path:  path,
		table: table,
	}
	if err := mkdir(s.dir()); err != nil {
		return nil, err
	}
	return s, nil
}

// WithSuffix appends the given suffix to every file name e.g. 'name_metadata.json'.
func (s *BlobStorage) WithSuffix(suffix string) *BlobStorage {
	s.suffix = suffix
	return s
}

func (s *BlobStorage) dir() string {
	return filepath.Join(s.path, s.table)
}

func (s *BlobStorage) fileName(k storage.Key) string {
	return fmt.Sprintf("%s%s%s", k, s.suffix, ext)
}

func (s *BlobStorage) Store(k storage.Key, value interface{}) error {
	err := Save(s.dir(), s.fileName(k), value)
	if err == nil {
		log.Debug().Str("path", s.dir()).Str("file", s.fileName(k)).Msg("stored json file")
	}
	return err
}

func (s *BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(s.dir(), s.fileName(k), value)
}

// Keys lists the keys of all files currently present in the table directory.
func (s *BlobStorage) Keys() ([]storage.Key, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []storage.Key{}, nil
		}
		return nil, fmt.Errorf("could not read dir '%s': %w", s.dir(), err)
	}
	keys := make([]storage.Key, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, s.suffix+ext) {
			continue
		}
		key := strings.TrimSuffix(name, s.suffix+ext)
		if key == "" {
			continue
		}
		keys = append(keys, storage.Key(key))
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys, nil
}

func (s *BlobStorage) Delete(k storage.Key) error {
	p := filepath.Join(s.dir(), s.fileName(k))
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not delete '%s': %w", p, storage.NotFoundErr)
		}
		return fmt.Errorf("could not delete '%s': %w", p, err)
	}
	return nil
}

func mkdir(filePath string) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}
	return nil
}

// Save saves the given json struct into the given path with the provided filename.
func Save(filePath string, fileName string, value interface{}) error {
	if err := mkdir(filePath); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), storage.CouldNotSaveErr)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode '%s': %v: %w", fileName, err, storage.CouldNotSaveErr)
	}

	// create the output file
	p := filepath.Join(filePath, fileName)
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %v: %w", p, err, storage.CouldNotSaveErr)
	}
	defer f.Close()

	// write the file
	_, err = f.Write(b)
	if err != nil {
		return fmt.Errorf("could not write bytes to file '%s': %v: %w", p, err, storage.CouldNotSaveErr)
	}

	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {
	p := filepath.Join(filePath, fileName)

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not find file '%s': %w", p, storage.NotFoundErr)
		}
		return fmt.Errorf("could not read file '%s': %v: %w", p, err, storage.CouldNotLoadErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal '%s': %v: %w", fileName, err, storage.CouldNotLoadErr)
	}

	return nil
}
