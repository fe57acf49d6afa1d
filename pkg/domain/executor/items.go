package executor

import (
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/tidwall/gjson"
)

// ItemsFromJSON turns the raw "items" of an execution request into action
// input items. An object is one item, an array is one item per element, and
// scalars are wrapped as {"value": ...}. A string holding JSON is parsed
// first.
func ItemsFromJSON(raw []byte) ([]domain.Item, error) {
	if len(raw) == 0 {
		return []domain.Item{}, nil
	}

	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("failed to parse items: invalid JSON")
	}

	return itemsFromResult(gjson.ParseBytes(raw)), nil
}

func itemsFromResult(result gjson.Result) []domain.Item {
	switch {
	case result.Type == gjson.Null:
		return []domain.Item{}
	case result.IsArray():
		items := []domain.Item{}
		for _, element := range result.Array() {
			if element.Type == gjson.Null {
				continue
			}
			items = append(items, itemsFromResult(element)...)
		}
		return items
	case result.IsObject():
		return []domain.Item{result.Value()}
	case result.Type == gjson.String && gjson.Valid(result.Str) && (gjson.Parse(result.Str).IsObject() || gjson.Parse(result.Str).IsArray()):
		return itemsFromResult(gjson.Parse(result.Str))
	default:
		return []domain.Item{map[string]any{"value": result.Value()}}
	}
}
