package codec

import "strconv"

// Key is a compact map key: either the numeric key of a registered field
// or the raw field name of an unregistered one. Keys are comparable and
// usable as Go map keys.
type Key struct {
	name    string
	num     int64
	numeric bool
}

// NumKey returns a numeric key for a registered field.
func NumKey(n int64) Key { return Key{num: n, numeric: true} }

// StrKey returns a string key carrying an unregistered field name.
func StrKey(s string) Key { return Key{name: s} }

// Numeric reports whether the key is a registered numeric key.
func (k Key) Numeric() bool { return k.numeric }

// Num returns the numeric key value. Only meaningful when Numeric().
func (k Key) Num() int64 { return k.num }

// Name returns the raw field name. Only meaningful when !Numeric().
func (k Key) Name() string { return k.name }

// String renders the key for text serialization and diagnostics.
func (k Key) String() string {
	if k.numeric {
		return strconv.FormatInt(k.num, 10)
	}
	return k.name
}
