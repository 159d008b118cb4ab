package reconcile

import (
	"reflect"
	"strconv"
	"strings"
)

// normalizeKey maps equal numeric keys of different Go types to one value
// so that Key(1) and Key(int64(1)) identify the same slot. Strings stay
// distinct from numbers.
func normalizeKey(k any) any {
	switch v := k.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return normalizeFloat(float64(v))
	case float64:
		return normalizeFloat(v)
	}
	if k != nil && !reflect.TypeOf(k).Comparable() {
		return stringify(k)
	}
	return k
}

func normalizeFloat(f float64) any {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

// sameValue compares property values. Functions compare by code pointer,
// slices and maps by content.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, " ")
	case interface{ String() string }:
		return t.String()
	}
	return reflectString(v)
}

func reflectString(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return ""
}

// classSet parses the classes property: a space-delimited string or a
// list of such strings.
func classSet(v any) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		for _, c := range strings.Fields(s) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	switch t := v.(type) {
	case string:
		add(t)
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, s := range t {
			if str, ok := s.(string); ok {
				add(str)
			}
		}
	}
	return out
}

// styleMap parses the styles property. ok is false when a value is not a
// string.
func styleMap(v any) (map[string]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case map[string]string:
		return t, true
	case map[string]any:
		out := make(map[string]string, len(t))
		valid := true
		for k, val := range t {
			s, ok := val.(string)
			if !ok {
				valid = false
				continue
			}
			out[k] = s
		}
		return out, valid
	}
	return nil, false
}
