package instrument

import (
	"reflect"
	"strings"
	"unicode"
)

// Identity names an instrumented operation. Counters are stored under the
// identity itself and history under InputsKey and OutputsKey.
type Identity string

// IdentityOf derives "<type>.<method>" in snake case from a receiver and a
// method name, so (*cache.Cache, "Store") becomes "cache.store".
// A string receiver is used as the type name.
func IdentityOf(receiver any, method string) Identity {
	var typeName string
	switch r := receiver.(type) {
	case string:
		typeName = r
	case nil:
	default:
		t := reflect.TypeOf(r)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		typeName = t.Name()
	}

	// drop generic instantiation suffixes such as Repo[github.com/x.User]
	if i := strings.IndexByte(typeName, '['); i >= 0 {
		typeName = typeName[:i]
	}

	typeName = toSnake(typeName)
	method = toSnake(method)
	if typeName == "" {
		return Identity(method)
	}
	return Identity(typeName + "." + method)
}

func (id Identity) String() string {
	return string(id)
}

// InputsKey is the sequence holding serialized arguments.
func (id Identity) InputsKey() string {
	return string(id) + ":inputs"
}

// OutputsKey is the sequence holding serialized results.
func (id Identity) OutputsKey() string {
	return string(id) + ":outputs"
}

// toSnake converts s to snake_case. Punctuation from reflected type names
// collapses into a single underscore so identities stay valid store keys.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	sep := false
	underscore := func() {
		if !sep && b.Len() > 0 {
			b.WriteByte('_')
			sep = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					underscore()
				}
			}
			b.WriteRune(unicode.ToLower(r))
			sep = false
		case unicode.IsLower(r):
			b.WriteRune(r)
			sep = false
		case unicode.IsDigit(r):
			if i > 0 && unicode.IsLetter(runes[i-1]) {
				underscore()
			}
			b.WriteRune(r)
			sep = false
		default:
			underscore()
		}
	}

	return strings.Trim(b.String(), "_")
}
