//go:build unit || e2e

// Package testutil turns request DTOs into editable JSON maps for validation tables.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// DtoMap round-trips v through JSON and applies muts in order.
func DtoMap(t *testing.T, v any, muts ...func(map[string]any)) map[string]any {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	for _, mut := range muts {
		if mut != nil {
			mut(out)
		}
	}
	return out
}

// Field sets key to value; a nil value removes the key so required-field checks fire.
func Field(key string, value any) func(map[string]any) {
	if value == nil {
		return func(m map[string]any) { delete(m, key) }
	}
	return func(m map[string]any) { m[key] = value }
}
