package functions

import "strings"

// Default parameter values applied when a parameter is absent or empty
const (
	DefaultOperation = "reverse"
	DefaultText      = ""
	DefaultMin       = "0"
	DefaultMax       = "100"
	DefaultFormat    = "iso"
)

// Params holds the raw string parameters of a single request
type Params map[string]string

// ParseQuery builds Params from a raw query string using form-urlencoded
// rules: pairs are split on '&' only, each pair at its first '=', '+' is a
// space, and malformed percent escapes are kept as literal text. When a key is
// repeated only the first value is kept. Invalid UTF-8 becomes U+FFFD.
func ParseQuery(rawQuery string) Params {
	params := make(Params)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		name, value, _ := strings.Cut(pair, "=")
		name = decodeComponent(name)
		if _, seen := params[name]; seen {
			continue
		}
		params[name] = decodeComponent(value)
	}
	return params
}

// decodeComponent percent-decodes s leniently after mapping '+' to space
func decodeComponent(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return strings.ToValidUTF8(s, "\uFFFD")
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(byte(digitValue(s[i+1])<<4 | digitValue(s[i+2])))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return digitValue(c) < 16
}

// Get returns the named parameter, or def when it is absent or empty
func (p Params) Get(name, def string) string {
	if v := p[name]; v != "" {
		return v
	}
	return def
}

// Operation returns the requested operation, defaulting to reverse
func (p Params) Operation() Operation {
	return ParseOperation(p.Get(ParamOperation, DefaultOperation))
}
