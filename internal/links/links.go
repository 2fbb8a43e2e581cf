// ABOUTME: Link data model and list reconciliation for linkdeck persistence
// ABOUTME: Defines the Link type, the Store interface, and submitted-list filtering

package links

import (
	"context"
	"errors"
	"strings"
)

// StorageKey is the single key under which the serialized link list lives.
// Every backend stores the whole list as one JSON array under this key.
const StorageKey = "all_links"

// ErrNotFound is returned when no link list has been stored yet
var ErrNotFound = errors.New("link list not found")

// Link is one entry in the directory. Name and URL carry no uniqueness
// constraint; display order equals storage order.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Blank reports whether both fields are empty after trimming.
func (l Link) Blank() bool {
	return strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.URL) == ""
}

// Store persists the link list as a single value. The last Put wins; there
// is no read-modify-write transaction, so two concurrent saves race under
// last-writer-wins semantics. That is accepted, not something backends
// should paper over with locking.
type Store interface {
	// Get returns the stored list. Returns ErrNotFound when nothing has
	// been saved yet.
	Get(ctx context.Context) ([]Link, error)

	// Put replaces the stored list atomically. No merging.
	Put(ctx context.Context, list []Link) error

	// Close releases any resources held by the store
	Close() error
}

// Reconcile filters a submitted replacement list: fields are trimmed,
// pairs that are blank on both sides are dropped, and the relative order
// of everything kept is preserved. No sorting, no de-duplication.
func Reconcile(submitted []Link) []Link {
	out := make([]Link, 0, len(submitted))
	for _, l := range submitted {
		l.Name = strings.TrimSpace(l.Name)
		l.URL = strings.TrimSpace(l.URL)
		if l.Name == "" && l.URL == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
