package domain

import (
	"encoding/json"
)

// Item is a single unit of data flowing between workflow nodes.
type Item any

type Payload []byte

func (p Payload) ToItems() ([]Item, error) {
	items := []Item{}

	if len(p) == 0 {
		return items, nil
	}

	err := json.Unmarshal(p, &items)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func NewPayloadFromItems(items []Item) (Payload, error) {
	if items == nil {
		items = []Item{}
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	return Payload(encoded), nil
}
