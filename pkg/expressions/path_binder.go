package expressions

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// PathBinder resolves {{ path }} placeholders in node settings against the
// current item and decodes the result into a params struct.
//
// Paths use gjson syntax and may be prefixed with "item.", so both
// {{ item.properties.email }} and {{ properties.email }} work.
type PathBinder struct {
	exprRegex *regexp.Regexp
	logger    zerolog.Logger
}

type PathBinderOptions struct {
	Logger zerolog.Logger
}

func DefaultPathBinderOptions() PathBinderOptions {
	return PathBinderOptions{
		Logger: zerolog.Nop(),
	}
}

func NewPathBinder(opts PathBinderOptions) *PathBinder {
	return &PathBinder{
		exprRegex: regexp.MustCompile(`\{\{(.*?)\}\}`),
		logger:    opts.Logger,
	}
}

// BindToStruct binds placeholders in userNodeSettings using item and decodes
// them into target, which must be a pointer.
func (b *PathBinder) BindToStruct(ctx context.Context, item any, target any, userNodeSettings map[string]any) error {
	if err := b.validateInputs(target, userNodeSettings); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	itemJSON, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	boundData, err := b.bindValue(itemJSON, userNodeSettings)
	if err != nil {
		return fmt.Errorf("binding failed: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(boundData); err != nil {
		return fmt.Errorf("failed to decode bound settings: %w", err)
	}

	return nil
}

// BindString resolves the placeholders of a single string.
func (b *PathBinder) BindString(ctx context.Context, item any, str string) (any, error) {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}

	return b.bindString(itemJSON, str)
}

func (b *PathBinder) validateInputs(target any, settings map[string]any) error {
	if target == nil || settings == nil {
		return fmt.Errorf("target and settings cannot be nil")
	}

	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer")
	}

	return nil
}

func (b *PathBinder) bindValue(itemJSON []byte, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return b.bindString(itemJSON, v)
	case map[string]any:
		return b.bindMap(itemJSON, v)
	case []any:
		return b.bindSlice(itemJSON, v)
	default:
		return value, nil
	}
}

func (b *PathBinder) bindString(itemJSON []byte, str string) (any, error) {
	matches := b.exprRegex.FindAllStringSubmatch(str, -1)
	if len(matches) == 0 {
		return str, nil
	}

	// A lone placeholder keeps the type of the referenced value.
	if len(matches) == 1 && matches[0][0] == str {
		return b.lookup(itemJSON, matches[0][1]), nil
	}

	result := str
	for _, match := range matches {
		value := b.lookup(itemJSON, match[1])
		result = strings.ReplaceAll(result, match[0], valueToString(value))
	}

	return result, nil
}

func (b *PathBinder) bindMap(itemJSON []byte, m map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(m))

	for key, value := range m {
		boundValue, err := b.bindValue(itemJSON, value)
		if err != nil {
			return nil, fmt.Errorf("failed to bind key '%s': %w", key, err)
		}
		result[key] = boundValue
	}

	return result, nil
}

func (b *PathBinder) bindSlice(itemJSON []byte, s []any) ([]any, error) {
	result := make([]any, len(s))

	for i, value := range s {
		boundValue, err := b.bindValue(itemJSON, value)
		if err != nil {
			return nil, fmt.Errorf("failed to bind index %d: %w", i, err)
		}
		result[i] = boundValue
	}

	return result, nil
}

func (b *PathBinder) lookup(itemJSON []byte, expression string) any {
	path := strings.TrimSpace(expression)
	path = strings.TrimPrefix(path, "item.")

	if path == "item" || path == "" {
		return gjson.ParseBytes(itemJSON).Value()
	}

	result := gjson.GetBytes(itemJSON, path)
	if !result.Exists() {
		b.logger.Debug().Str("path", path).Msg("Placeholder path not found in item")
		return nil
	}

	return result.Value()
}

func valueToString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return strings.Trim(string(jsonBytes), `"`)
	}
}
