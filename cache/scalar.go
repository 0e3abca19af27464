package cache

import (
	"fmt"
	"reflect"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
)

// EncodeScalar converts a scalar into the bytes written to the store.
// The encoding matches what go-redis sends for the same argument, so a value
// stored through the cache reads back identically from any backend:
// strings and byte slices as is, integers in base 10, floats as the
// shortest float64 representation and booleans as "1" or "0".
func EncodeScalar(value any) ([]byte, error) {
	if value == nil {
		return nil, unsupportedScalar(value)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return []byte(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return append([]byte(nil), rv.Bytes()...), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(nil, rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		// float32 is widened first, as go-redis does
		return strconv.AppendFloat(nil, rv.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		if rv.Bool() {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	}

	return nil, unsupportedScalar(value)
}

func unsupportedScalar(value any) error {
	return goerrors.New(fmt.Sprintf("unsupported scalar type %T", value), goerrors.CategoryValidation).
		WithTextCode(TextCodeUnsupportedScalar)
}
