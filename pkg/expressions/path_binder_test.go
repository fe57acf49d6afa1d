package expressions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Email      string         `json:"email"`
	Amount     int            `json:"amount"`
	Tags       []string       `json:"tags"`
	Note       string         `json:"note"`
	Properties map[string]any `json:"properties"`
	Raw        any            `json:"raw"`
}

func TestPathBinder_BindToStruct(t *testing.T) {
	binder := NewPathBinder(DefaultPathBinderOptions())

	item := map[string]any{
		"id": "101",
		"properties": map[string]any{
			"email":  "jane@example.com",
			"amount": 1500,
		},
		"tags": []any{"a", "b"},
	}

	tests := []struct {
		name     string
		settings map[string]any
		expected bindTarget
	}{
		{
			name:     "plain values",
			settings: map[string]any{"email": "x@example.com", "amount": "12"},
			expected: bindTarget{Email: "x@example.com", Amount: 12},
		},
		{
			name:     "item prefixed placeholder",
			settings: map[string]any{"email": "{{ item.properties.email }}"},
			expected: bindTarget{Email: "jane@example.com"},
		},
		{
			name:     "placeholder keeps type",
			settings: map[string]any{"amount": "{{properties.amount}}", "raw": "{{ tags }}"},
			expected: bindTarget{Amount: 1500, Raw: []any{"a", "b"}},
		},
		{
			name:     "interpolation",
			settings: map[string]any{"note": "contact {{ id }} <{{ properties.email }}>"},
			expected: bindTarget{Note: "contact 101 <jane@example.com>"},
		},
		{
			name:     "comma separated list",
			settings: map[string]any{"tags": "x,y,z"},
			expected: bindTarget{Tags: []string{"x", "y", "z"}},
		},
		{
			name:     "nested map",
			settings: map[string]any{"properties": map[string]any{"email": "{{ properties.email }}"}},
			expected: bindTarget{Properties: map[string]any{"email": "jane@example.com"}},
		},
		{
			name:     "missing path",
			settings: map[string]any{"note": "{{ properties.nope }}"},
			expected: bindTarget{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target bindTarget

			err := binder.BindToStruct(context.Background(), item, &target, tt.settings)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, target)
		})
	}
}

func TestPathBinder_BindToStruct_Validation(t *testing.T) {
	binder := NewPathBinder(DefaultPathBinderOptions())

	var target bindTarget

	assert.Error(t, binder.BindToStruct(context.Background(), nil, target, map[string]any{}))
	assert.Error(t, binder.BindToStruct(context.Background(), nil, &target, nil))
}

func TestPathBinder_BindString(t *testing.T) {
	binder := NewPathBinder(DefaultPathBinderOptions())

	value, err := binder.BindString(context.Background(), map[string]any{"n": 3}, "{{ n }} items")
	require.NoError(t, err)
	assert.Equal(t, "3 items", value)
}
