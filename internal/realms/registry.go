package realms

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// RealmInfo is one catalog entry from realms.json. ID must match the
// plugin that serves the realm.
type RealmInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Effect      string `json:"effect,omitempty"`
	Premium     bool   `json:"premium"`
}

// Registry holds the realm catalog. Plugins consult it to decide whether
// their realm is premium-gated; the catalog endpoint serves it to clients.
type Registry struct {
	mu     sync.RWMutex
	realms map[string]RealmInfo
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read realm catalog: %w", err)
	}

	var entries []RealmInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse realm catalog: %w", err)
	}

	r := &Registry{realms: make(map[string]RealmInfo, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("realm catalog entry missing id")
		}
		if _, dup := r.realms[e.ID]; dup {
			return nil, fmt.Errorf("duplicate realm id %q", e.ID)
		}
		r.realms[e.ID] = e
	}
	return r, nil
}

func (r *Registry) Get(id string) (RealmInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.realms[id]
	return info, ok
}

func (r *Registry) IsPremium(id string) bool {
	info, ok := r.Get(id)
	return ok && info.Premium
}

// All returns the catalog sorted by ID for stable listing.
func (r *Registry) All() []RealmInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RealmInfo, 0, len(r.realms))
	for _, info := range r.realms {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.realms)
}
