package auth

import (
	"errors"
	"strings"
)

var ErrBadDirectives = errors.New("malformed digest directives")

// Directives is a parsed DIGEST-MD5 challenge or response. Keys are lower
// case; a directive may repeat (realm).
type Directives map[string][]string

// Get returns the first value of key.
func (T Directives) Get(key string) (string, bool) {
	values := T[key]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func ParseDirectives(value string) (Directives, error) {
	directives := make(Directives)
	for {
		value = strings.TrimLeft(value, " \t\r\n,")
		if value == "" {
			return directives, nil
		}

		key, rest, ok := strings.Cut(value, "=")
		if !ok {
			return nil, ErrBadDirectives
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, ErrBadDirectives
		}
		rest = strings.TrimLeft(rest, " \t")

		var item string
		if strings.HasPrefix(rest, `"`) {
			var b strings.Builder
			i := 1
			closed := false
			for ; i < len(rest); i++ {
				c := rest[i]
				if c == '\\' && i+1 < len(rest) {
					i++
					b.WriteByte(rest[i])
					continue
				}
				if c == '"' {
					closed = true
					break
				}
				b.WriteByte(c)
			}
			if !closed {
				return nil, ErrBadDirectives
			}
			item = b.String()
			value = rest[i+1:]
			value = strings.TrimLeft(value, " \t")
			if value != "" && value[0] != ',' {
				return nil, ErrBadDirectives
			}
		} else {
			item, value, _ = strings.Cut(rest, ",")
			item = strings.TrimSpace(item)
		}

		directives[key] = append(directives[key], item)
	}
}

// QuoteDirective returns value as a quoted-string.
func QuoteDirective(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}
