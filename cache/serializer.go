package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ArgSerializer renders call arguments and results as text for the call history.
// The output is meant for audit and does not need to be reversible.
type ArgSerializer interface {
	Serialize(v any) string
}

// defaultArgSerializer walks values with reflection. Maps print with sorted
// keys so the same value always renders the same line.
type defaultArgSerializer struct{}

// NewDefaultArgSerializer creates a new instance of the default argument serializer.
func NewDefaultArgSerializer() ArgSerializer {
	return &defaultArgSerializer{}
}

// Serialize renders v. Basic values print as themselves, so storing "foo"
// is recorded as foo and 42 as 42.
func (s *defaultArgSerializer) Serialize(v any) string {
	if v == nil {
		return "nil"
	}
	if err, ok := v.(error); ok {
		return "error: " + err.Error()
	}
	return s.render(reflect.ValueOf(v))
}

func (s *defaultArgSerializer) render(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Invalid:
		return "nil"
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.Serialize(rv.Elem().Interface())
	case reflect.Func:
		return fmt.Sprintf("func:%#x", rv.Pointer())
	case reflect.Chan:
		return fmt.Sprintf("chan:%#x", rv.Pointer())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return "bytes:" + strconv.Quote(string(rv.Bytes()))
		}
		return s.list("slice", rv)
	case reflect.Array:
		return s.list("array", rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.mapping(rv)
	case reflect.Struct:
		return s.fields(rv)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

// list renders slices and arrays as kind[len]:{a,b}.
func (s *defaultArgSerializer) list(kind string, rv reflect.Value) string {
	items := make([]string, rv.Len())
	for i := range items {
		items[i] = s.Serialize(rv.Index(i).Interface())
	}
	return kind + "[" + strconv.Itoa(len(items)) + "]:{" + strings.Join(items, ",") + "}"
}

func (s *defaultArgSerializer) mapping(rv reflect.Value) string {
	entries := make([]string, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		entries = append(entries, s.Serialize(it.Key().Interface())+"="+s.Serialize(it.Value().Interface()))
	}
	sort.Strings(entries)
	return "map[" + strconv.Itoa(len(entries)) + "]:{" + strings.Join(entries, ",") + "}"
}

// fields renders exported fields only.
func (s *defaultArgSerializer) fields(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		if f := rt.Field(i); f.IsExported() {
			parts = append(parts, f.Name+":"+s.Serialize(rv.Field(i).Interface()))
		}
	}
	return "struct:{" + strings.Join(parts, ",") + "}"
}
