package query

import (
	"maps"
	"reflect"
	"strings"
	"time"
)

func resolveDotNotation(obj map[string]any, key string) (any, bool) {
	keys := strings.Split(key, ".")
	current := obj
	for i, k := range keys {
		value, ok := current[k]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return value, true
		}
		switch next := value.(type) {
		case map[string]any:
			current = next
		default:
			v := reflect.ValueOf(value)
			if v.Kind() != reflect.Struct {
				return nil, false
			}
			current = structToMap(value)
		}
	}
	return nil, false
}

// structToMap keys the exported fields of obj by their json name. Nested
// structs stay as values; resolveDotNotation expands them on demand.
func structToMap(obj any) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}
	if _, ok := v.Interface().(time.Time); ok {
		return result
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous {
			embedded := structToMap(v.Field(i).Interface())
			maps.Copy(result, embedded)
			continue
		}

		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}

		result[tag] = v.Field(i).Interface()
	}
	return result
}
