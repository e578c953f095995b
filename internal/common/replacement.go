// -----------------------------------------------------------------------
// Last Modified: Thursday, 14th November 2025 1:00:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

// The {key-name} syntax lets configuration values reference entries in the
// key/value store, e.g. places_api.api_key = "{google_places_api_key}".
// Missing keys are logged and left unchanged.

package common

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ternarybob/arbor"
)

// keyRefPattern matches {key-name} references in strings
// Allows alphanumeric characters, hyphens, and underscores
var keyRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplaceKeyReferences replaces all {key-name} references in input with
// values from kvMap. Unknown keys are left as-is.
func ReplaceKeyReferences(input string, kvMap map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		keyName := match[1 : len(match)-1]
		if value, exists := kvMap[keyName]; exists {
			return value
		}

		logger.Warn().
			Str("reference", match).
			Str("key", keyName).
			Msg("Unresolved key reference - key not found in KV store")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces {key-name} references
// in every exported string field, including nested structs and string slices.
// Values are never logged since they are usually secrets.
func ReplaceInStruct(v interface{}, kvMap map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("ReplaceInStruct requires a non-nil pointer, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	replaceInStructValue(val, "", kvMap, logger)
	return nil
}

func replaceInStructValue(val reflect.Value, path string, kvMap map[string]string, logger arbor.ILogger) {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		fieldPath := path + typ.Field(i).Name

		switch field.Kind() {
		case reflect.String:
			replaceString(field, fieldPath, kvMap, logger)

		case reflect.Struct:
			replaceInStructValue(field, fieldPath+".", kvMap, logger)

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				replaceInStructValue(field.Elem(), fieldPath+".", kvMap, logger)
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					replaceString(field.Index(j), fmt.Sprintf("%s[%d]", fieldPath, j), kvMap, logger)
				}
			}
		}
	}
}

func replaceString(field reflect.Value, path string, kvMap map[string]string, logger arbor.ILogger) {
	oldValue := field.String()
	newValue := ReplaceKeyReferences(oldValue, kvMap, logger)
	if oldValue != newValue {
		field.SetString(newValue)
		logger.Debug().Str("field", path).Msg("Replaced key reference in config field")
	}
}
