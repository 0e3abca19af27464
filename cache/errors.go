package cache

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kvcache/internal/storeinfra"
)

var (
	// CategoryStore tags failures raised by a KeyValueStore adapter.
	CategoryStore = storeinfra.CategoryStore

	// CategoryConversion tags converter failures on read.
	CategoryConversion = goerrors.CategoryBadInput.Extend("conversion")
)

const (
	TextCodeUnsupportedScalar = "UNSUPPORTED_SCALAR"
	TextCodeConversionFailed  = "CONVERSION_FAILED"
	TextCodeMissingConverter  = "MISSING_CONVERTER"
	TextCodeMissingStore      = "MISSING_STORE"
)

// IsConversion reports whether err comes from a converter that could not
// interpret the stored bytes.
func IsConversion(err error) bool {
	return goerrors.HasCategory(err, CategoryConversion)
}

// IsStoreFailure reports whether err was raised by the underlying store.
func IsStoreFailure(err error) bool {
	return goerrors.HasCategory(err, CategoryStore)
}

// IsUnsupportedScalar reports whether err rejected a value Store cannot encode.
func IsUnsupportedScalar(err error) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == TextCodeUnsupportedScalar
}
