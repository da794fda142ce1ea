package session

import "context"

// PreferenceStore is the persisted key-value store holding client
// preferences, scoped by client.
type PreferenceStore interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	// Set writes value under key
	Set(ctx context.Context, clientID, key, value string) error
}
