// Package storage defines the persistence port used for client-persisted
// state: whole-value reads and writes keyed by name, last writer wins.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	CustomCurrenciesKey  = "customCurrencies"
	ConversionHistoryKey = "conversionHistory"
	UserNameKey          = "nombreUsuario"
)

// ErrNotFound is returned by Load when nothing is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// Store persists opaque values by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into out. It reports
// found=false, with a nil error, when the key does not exist.
func LoadJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes value and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Save(ctx, key, data)
}

// LoadString returns the plain string stored under key, or "" if missing.
func LoadString(ctx context.Context, s Store, key string) (string, error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
