package cache

import (
	"context"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
)

// Getter is anything that returns raw stored bytes by key.
// Both Cache and the instrumented decorator satisfy it.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Converter turns the raw stored bytes into a typed value.
type Converter[T any] func(raw []byte) (T, error)

// Retrieve is a type-safe read: it fetches key through g and applies conv.
//
// An absent key returns the zero value, found=false and a nil error. A
// converter failure returns found=true with an error in CategoryConversion,
// so callers can tell "no such key" apart from "stored but not convertible".
func Retrieve[T any](ctx context.Context, g Getter, key string, conv Converter[T]) (T, bool, error) {
	var zero T
	if conv == nil {
		return zero, false, goerrors.New("converter is required, use Get for raw values", goerrors.CategoryValidation).
			WithTextCode(TextCodeMissingConverter)
	}

	raw, found, err := g.Get(ctx, key)
	if err != nil || !found {
		return zero, false, err
	}

	value, err := conv(raw)
	if err != nil {
		// not goerrors.Wrap: it would keep the category of a converter
		// that already returns *goerrors.Error
		convErr := goerrors.New("convert stored value", CategoryConversion).
			WithTextCode(TextCodeConversionFailed).
			WithMetadata(map[string]any{"key": key})
		convErr.Source = err
		return zero, true, convErr
	}
	return value, true, nil
}

// RetrieveString reads key as text.
func RetrieveString(ctx context.Context, g Getter, key string) (string, bool, error) {
	return Retrieve(ctx, g, key, BytesToString)
}

// RetrieveInt reads key as a base 10 integer.
func RetrieveInt(ctx context.Context, g Getter, key string) (int64, bool, error) {
	return Retrieve(ctx, g, key, BytesToInt)
}

// RetrieveFloat reads key as a float.
func RetrieveFloat(ctx context.Context, g Getter, key string) (float64, bool, error) {
	return Retrieve(ctx, g, key, BytesToFloat)
}

// BytesToString decodes raw as text. It never fails.
func BytesToString(raw []byte) (string, error) {
	return string(raw), nil
}

// BytesToInt parses raw as a base 10 int64.
func BytesToInt(raw []byte) (int64, error) {
	return strconv.ParseInt(string(raw), 10, 64)
}

// BytesToFloat parses raw as a float64.
func BytesToFloat(raw []byte) (float64, error) {
	return strconv.ParseFloat(string(raw), 64)
}
