// Package cache holds tables derived from a board size, such as the
// winning-line masks, so that every engine for that size shares one copy.
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	mu     sync.Mutex
	tables = map[string]any{}
)

// Load returns the table stored under key, calling build the first time
// the key is asked for. A failed build is not stored, so the next Load
// tries again. Asking for a key with a different type than it was built
// with is an error.
func Load[T any](key string, build func() (T, error)) (T, error) {
	mu.Lock()
	defer mu.Unlock()
	if obj, ok := tables[key]; ok {
		t, ok := obj.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("cache key %q holds %T, not %T", key, obj, zero)
		}
		return t, nil
	}
	t, err := build()
	if err != nil {
		return t, err
	}
	log.Debug().Str("key", key).Msg("cache-built")
	tables[key] = t
	return t, nil
}
