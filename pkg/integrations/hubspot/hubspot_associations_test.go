package hubspot

import (
	"errors"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectIDs(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected []string
		wantErr  bool
	}{
		{name: "string slice", raw: []string{"1", " 2 "}, expected: []string{"1", "2"}},
		{name: "any slice with numbers", raw: []any{"1", float64(2)}, expected: []string{"1", "2"}},
		{name: "json array string", raw: `["11","12"]`, expected: []string{"11", "12"}},
		{name: "json array of numbers", raw: `[11, 12]`, expected: []string{"11", "12"}},
		{name: "json array of large ids", raw: `[12345678901234567]`, expected: []string{"12345678901234567"}},
		{name: "comma list", raw: "11, 12,,13", expected: []string{"11", "12", "13"}},
		{name: "single number", raw: 42, expected: []string{"42"}},
		{name: "broken json array", raw: `["11", 12`, wantErr: true},
		{name: "nested objects", raw: []any{map[string]any{"id": "1"}}, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
		{name: "nil", raw: nil, wantErr: true},
		{name: "object literal", raw: `{"id": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := parseObjectIDs("To Object IDs", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsInputError(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestParseObjectIDs_EchoesRawValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "broken json array", raw: `["11", 12`, reason: "expected a JSON array of ids"},
		{name: "trailing data after array", raw: `["11"] ["12"]`, reason: "expected a JSON array of ids"},
		{name: "object element", raw: `[{"id":1}]`, reason: "ids must be strings or integers"},
		{name: "boolean element", raw: `[true]`, reason: "ids must be strings or integers"},
		{name: "null element", raw: `["11", null]`, reason: "ids must be strings or integers"},
		{name: "fractional element", raw: `[1.5]`, reason: "ids must be strings or integers"},
		{name: "element with space", raw: `["a b"]`, reason: "ids cannot contain spaces, brackets or quotes"},
		{name: "blank element", raw: `["  "]`, reason: "at least one id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := parseObjectIDs("To Object IDs", tt.raw)
			require.Error(t, err)
			assert.Nil(t, ids)

			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, "To Object IDs", inputErr.Field)
			assert.Equal(t, tt.raw, inputErr.RawValue)
			assert.Equal(t, tt.reason, inputErr.Reason)
			assert.Contains(t, err.Error(), tt.raw)
		})
	}
}

func TestParseObjectIDs_RejectsNonIntegerScalars(t *testing.T) {
	for _, raw := range []any{true, 2.5, []any{false}, []any{"1", 2.5}} {
		_, err := parseObjectIDs("To Object IDs", raw)
		require.Error(t, err)

		var inputErr *domain.InputError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, raw, inputErr.RawValue)
	}
}

func TestParseAssociationLabel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []AssociationSpec
		wantErr  bool
	}{
		{name: "empty selects default", raw: "", expected: nil},
		{name: "labelled", raw: `{"category":"USER_DEFINED","typeId":36}`, expected: []AssociationSpec{{AssociationCategory: "USER_DEFINED", AssociationTypeID: 36}}},
		{name: "not json", raw: "primary", wantErr: true},
		{name: "missing type id", raw: `{"category":"HUBSPOT_DEFINED"}`, wantErr: true},
		{name: "missing category", raw: `{"typeId":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := parseAssociationLabel(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsInputError(err))
				assert.Contains(t, err.Error(), tt.raw)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, specs)
		})
	}
}

func TestEncodeAssociationLabel_RoundTrips(t *testing.T) {
	encoded := encodeAssociationLabel(AssociationLabel{Category: "HUBSPOT_DEFINED", TypeID: 3, Label: "Primary"})
	assert.Equal(t, `{"category":"HUBSPOT_DEFINED","typeId":3}`, encoded)

	specs, err := parseAssociationLabel(encoded)
	require.NoError(t, err)
	assert.Equal(t, []AssociationSpec{{AssociationCategory: "HUBSPOT_DEFINED", AssociationTypeID: 3}}, specs)
}
