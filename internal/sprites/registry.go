package sprites

import (
	"strings"
	"sync"
)

// Registry looks up sprite data URIs by item code, case-insensitively.
type Registry struct {
	entries map[string]string
	once    sync.Once
	index   map[string]string
}

func NewRegistry(entries map[string]string) *Registry {
	return &Registry{entries: entries}
}

var defaultRegistry = NewRegistry(generated)

// Default returns the registry backed by the generated sprite table.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) Lookup(code string) (string, bool) {
	r.once.Do(func() {
		r.index = make(map[string]string, len(r.entries))
		for k, v := range r.entries {
			r.index[strings.ToLower(k)] = v
		}
	})
	uri, ok := r.index[strings.ToLower(strings.TrimSpace(code))]
	return uri, ok
}

func (r *Registry) Len() int {
	return len(r.entries)
}
