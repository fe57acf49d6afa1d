package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type ActionFuncPerItem func(ctx context.Context, params IntegrationInput, item Item) (Item, error)
type ActionFuncPerItemMulti func(ctx context.Context, params IntegrationInput, item Item) ([]Item, error)
type PeekFunc func(ctx context.Context, params PeekParams) (PeekResult, error)

// IntegrationActionManager is the registry an integration fills with its
// action implementations. Each action is a pure function of its input and
// the bound settings.
type IntegrationActionManager struct {
	mtx                     sync.RWMutex
	actionFuncsPerItem      map[IntegrationActionType]ActionFuncPerItem
	actionFuncsPerItemMulti map[IntegrationActionType]ActionFuncPerItemMulti
}

func NewIntegrationActionManager() *IntegrationActionManager {
	return &IntegrationActionManager{
		actionFuncsPerItem:      make(map[IntegrationActionType]ActionFuncPerItem),
		actionFuncsPerItemMulti: make(map[IntegrationActionType]ActionFuncPerItemMulti),
	}
}

func (m *IntegrationActionManager) AddPerItem(actionType IntegrationActionType, actionFunc ActionFuncPerItem) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncsPerItem[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) AddPerItemMulti(actionType IntegrationActionType, actionFunc ActionFuncPerItemMulti) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncsPerItemMulti[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) GetPerItem(actionType IntegrationActionType) (ActionFuncPerItem, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncsPerItem[actionType]
	return actionFunc, ok
}

func (m *IntegrationActionManager) GetPerItemMulti(actionType IntegrationActionType) (ActionFuncPerItemMulti, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncsPerItemMulti[actionType]
	return actionFunc, ok
}

// Has reports whether actionType is registered in either form.
func (m *IntegrationActionManager) Has(actionType IntegrationActionType) bool {
	if _, ok := m.GetPerItem(actionType); ok {
		return true
	}

	_, ok := m.GetPerItemMulti(actionType)
	return ok
}

func (m *IntegrationActionManager) Run(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	if _, ok := m.GetPerItem(actionType); ok {
		return m.RunPerItem(ctx, actionType, params)
	}

	return m.RunPerItemMulti(ctx, actionType, params)
}

func (m *IntegrationActionManager) RunPerItem(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	actionFuncPerItem, ok := m.GetPerItem(actionType)
	if !ok {
		return IntegrationOutput{}, fmt.Errorf("%w: %s", ErrActionNotFound, actionType)
	}

	allItems, err := params.GetAllItems()
	if err != nil {
		return IntegrationOutput{}, err
	}

	outputs := make([]Item, 0)

	for _, item := range allItems {
		output, err := actionFuncPerItem(ctx, params, item)
		if err != nil {
			return IntegrationOutput{}, err
		}

		if isEmptyItem(output) {
			continue
		}

		outputs = append(outputs, output)
	}

	return newIntegrationOutput(outputs)
}

func (m *IntegrationActionManager) RunPerItemMulti(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	actionFuncPerItemMulti, ok := m.GetPerItemMulti(actionType)
	if !ok {
		return IntegrationOutput{}, fmt.Errorf("%w: %s", ErrActionNotFound, actionType)
	}

	allItems, err := params.GetAllItems()
	if err != nil {
		return IntegrationOutput{}, err
	}

	outputs := make([]Item, 0)

	for _, item := range allItems {
		outputItems, err := actionFuncPerItemMulti(ctx, params, item)
		if err != nil {
			return IntegrationOutput{}, err
		}

		for _, outputItem := range outputItems {
			if isEmptyItem(outputItem) {
				continue
			}

			outputs = append(outputs, outputItem)
		}
	}

	return newIntegrationOutput(outputs)
}

func isEmptyItem(item Item) bool {
	if item == nil {
		return true
	}

	if array, isArray := item.([]any); isArray {
		return len(array) == 0
	}

	if object, isObject := item.(map[string]any); isObject {
		return len(object) == 0
	}

	return false
}

func newIntegrationOutput(outputs []Item) (IntegrationOutput, error) {
	resultJSON, err := json.Marshal(outputs)
	if err != nil {
		return IntegrationOutput{}, err
	}

	return IntegrationOutput{
		ResultJSONByOutputID: []Payload{
			resultJSON,
		},
	}, nil
}
