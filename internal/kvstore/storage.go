// Package kvstore is the persistent key/value storage every Roamly store writes
// through to. Values are JSON documents stored as strings under flat keys.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable is wrapped by every error a backend returns. Callers treat it as
// "storage cannot be used right now" and offer a retry.
var ErrUnavailable = errors.New("storage unavailable")

type Storage interface {
	// GetItem returns the value stored under key. found is false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key string, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// Change describes a write made through another handle on the same storage scope.
// Key is empty when the backend could not tell which key changed.
type Change struct {
	Key string
}

// Watcher is implemented by backends that can report writes made by other handles
// or processes. Watch returns once the subscription is set up; fn is called until
// ctx is cancelled. A handle's own writes are never reported back to it.
type Watcher interface {
	Watch(ctx context.Context, fn func(Change)) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", key, err)
	}
	return s.SetItem(ctx, key, string(raw))
}

// GetJSON reads key and decodes it into a Result. The returned error is reserved for
// storage failures; malformed content is reported through the Result.
func GetJSON[T any](ctx context.Context, s Storage, key string, validate func(T) error) (Result[T], error) {
	raw, found, err := s.GetItem(ctx, key)
	if err != nil {
		return Result[T]{}, err
	}
	return Decode(raw, found, validate), nil
}
