package json

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/drakos74/free-gesture/internal/storage"
)

// LocalStorage keeps the json encoded values in memory.
type LocalStorage struct {
	files map[storage.Key][]byte
	mutex *sync.RWMutex
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		files: make(map[storage.Key][]byte),
		mutex: new(sync.RWMutex),
	}
}

func (l LocalStorage) Store(k storage.Key, value interface{}) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value: %v: %w", err, storage.CouldNotSaveErr)
	}

	l.files[k] = bb
	return nil
}

func (l LocalStorage) Load(k storage.Key, value interface{}) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if v, ok := l.files[k]; ok {
		err := json.Unmarshal(v, value)
		if err != nil {
			return fmt.Errorf("could not unmarshal value: %v: %w", err, storage.CouldNotLoadErr)
		}
		return nil
	}
	return fmt.Errorf("file not found '%s': %w", k, storage.NotFoundErr)
}

func (l LocalStorage) Keys() ([]storage.Key, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	keys := make([]storage.Key, 0, len(l.files))
	for k := range l.files {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys, nil
}

func (l LocalStorage) Delete(k storage.Key) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, ok := l.files[k]; !ok {
		return fmt.Errorf("file not found '%s': %w", k, storage.NotFoundErr)
	}
	delete(l.files, k)
	return nil
}
