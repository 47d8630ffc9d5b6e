// Package snapshot splits a save into named JSON buckets for the SQL-style
// backends, which store one row per bucket.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"quantumassembler/pkg/domain"
)

// Bucket names in write order.
const (
	BucketGrid       = "grid"
	BucketCells      = "cells"
	BucketCurrencies = "currencies"
	BucketMeta       = "meta"
)

// Buckets lists every bucket written by Encode.
var Buckets = []string{BucketGrid, BucketCells, BucketCurrencies, BucketMeta}

type meta struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// Encode marshals state into one JSON payload per bucket.
func Encode(state domain.SaveState) (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	values := map[string]any{
		BucketGrid:       state.Grid,
		BucketCells:      state.Cells,
		BucketCurrencies: state.Currencies,
		BucketMeta:       meta{Version: state.Version, SavedAt: state.SavedAt},
	}
	for _, bucket := range Buckets {
		data, err := json.Marshal(values[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// Decode rebuilds a save from bucket payloads. It reports false when no known
// bucket is present. Unknown buckets and empty payloads are skipped. Cells and
// currencies decode record by record; a record that does not decode is
// dropped and the rest of the bucket is kept.
func Decode(payloads map[string][]byte) (domain.SaveState, bool, error) {
	var state domain.SaveState
	var m meta
	targets := map[string]func([]byte) error{
		BucketGrid: func(p []byte) error { return json.Unmarshal(p, &state.Grid) },
		BucketCells: func(p []byte) (err error) {
			state.Cells, err = decodeRecords[domain.CellRecord](p)
			return err
		},
		BucketCurrencies: func(p []byte) (err error) {
			state.Currencies, err = decodeRecords[domain.DecimalData](p)
			return err
		},
		BucketMeta: func(p []byte) error { return json.Unmarshal(p, &m) },
	}
	found := false
	for bucket, payload := range payloads {
		decode, ok := targets[bucket]
		if !ok || len(payload) == 0 {
			continue
		}
		if err := decode(payload); err != nil {
			return domain.SaveState{}, false, fmt.Errorf("decode %s: %w", bucket, err)
		}
		found = true
	}
	if !found {
		return domain.SaveState{}, false, nil
	}
	state.Version = m.Version
	state.SavedAt = m.SavedAt
	return state, true, nil
}

// decodeRecords decodes a JSON object keyed by record id, skipping values that
// do not decode as T. A payload that is not an object at all is an error.
func decodeRecords[T any](payload []byte) (map[string]T, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	out := make(map[string]T, len(raw))
	for key, value := range raw {
		var rec T
		if err := json.Unmarshal(value, &rec); err != nil {
			continue
		}
		out[key] = rec
	}
	return out, nil
}
