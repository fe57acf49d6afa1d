package hubspot

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/spf13/cast"
)

// parseObjectIDs accepts a list of ids as an array, a JSON array string or a
// comma separated string. Anything else is reported back with the raw value.
func parseObjectIDs(field string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, domain.NewInputError(field, raw, "at least one id is required")
	case []string:
		return normalizeIDs(field, raw, v)
	case []any:
		return idsFromElements(field, raw, v)
	case string:
		s := strings.TrimSpace(v)

		if strings.HasPrefix(s, "[") {
			decoder := json.NewDecoder(strings.NewReader(s))
			decoder.UseNumber()

			var elements []any
			if err := decoder.Decode(&elements); err != nil || decoder.More() {
				return nil, domain.NewInputError(field, raw, "expected a JSON array of ids")
			}

			return idsFromElements(field, raw, elements)
		}

		return normalizeIDs(field, raw, strings.Split(s, ","))
	default:
		id, ok := scalarID(v)
		if !ok {
			return nil, domain.NewInputError(field, raw, "expected a list of ids")
		}
		return normalizeIDs(field, raw, []string{id})
	}
}

// idsFromElements converts decoded array elements. Errors always carry raw,
// the value as the user supplied it.
func idsFromElements(field string, raw any, elements []any) ([]string, error) {
	ids := make([]string, 0, len(elements))

	for _, element := range elements {
		id, ok := scalarID(element)
		if !ok {
			return nil, domain.NewInputError(field, raw, "ids must be strings or integers")
		}
		ids = append(ids, id)
	}

	return normalizeIDs(field, raw, ids)
}

// scalarID accepts strings and integral numbers only.
func scalarID(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return "", false
		}
		return v.String(), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(v), true
	default:
		return "", false
	}
}

func normalizeIDs(field string, raw any, ids []string) ([]string, error) {
	normalized := make([]string, 0, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if strings.ContainsAny(id, " {}[]\"") {
			return nil, domain.NewInputError(field, raw, "ids cannot contain spaces, brackets or quotes")
		}

		normalized = append(normalized, id)
	}

	if len(normalized) == 0 {
		return nil, domain.NewInputError(field, raw, "at least one id is required")
	}

	return normalized, nil
}

type associationLabelValue struct {
	Category string `json:"category"`
	TypeID   *int   `json:"typeId"`
}

// parseAssociationLabel reads the value of the association label dropdown,
// {"category":"HUBSPOT_DEFINED","typeId":3}. An empty value selects the
// default association.
func parseAssociationLabel(raw string) ([]AssociationSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	var value associationLabelValue
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, domain.NewInputError("association label", raw, "expected a JSON object with category and typeId")
	}

	if value.Category == "" || value.TypeID == nil {
		return nil, domain.NewInputError("association label", raw, "category and typeId are required")
	}

	return []AssociationSpec{
		{
			AssociationCategory: value.Category,
			AssociationTypeID:   *value.TypeID,
		},
	}, nil
}

func encodeAssociationLabel(label AssociationLabel) string {
	encoded, err := json.Marshal(map[string]any{
		"category": label.Category,
		"typeId":   label.TypeID,
	})
	if err != nil {
		return ""
	}

	return string(encoded)
}
