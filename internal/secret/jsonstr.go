package secret

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrBadJSONString is returned by UnquoteJSON for anything that is not a
// well-formed JSON string literal.
var ErrBadJSONString = errors.New("secret: malformed json string")

const hexDigits = "0123456789abcdef"

// QuotedLen returns the exact number of bytes AppendJSONString writes for
// src, quotes included. Callers use it to size a buffer once.
func QuotedLen(src []byte) int {
	n := 2
	for _, c := range src {
		switch {
		case c == '"', c == '\\', c == '\n', c == '\r', c == '\t':
			n += 2
		case c < 0x20:
			n += 6
		default:
			n++
		}
	}
	return n
}

// AppendJSONString appends src as a quoted JSON string to dst. It never
// grows dst beyond its capacity when the capacity was sized with QuotedLen,
// so no abandoned copy of src is left behind by a reallocation.
func AppendJSONString(dst, src []byte) []byte {
	dst = append(dst, '"')
	for _, c := range src {
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if c < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				continue
			}
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

// UnquoteJSON decodes a JSON string literal, quotes included, into a new
// slice owned by the caller. The output is allocated once at len(raw) bytes,
// which is always enough. On error nothing is returned and the partial
// output is wiped.
func UnquoteJSON(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return nil, ErrBadJSONString
	}
	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))

	fail := func() ([]byte, error) {
		Wipe(out[:cap(out)])
		return nil, ErrBadJSONString
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' || c < 0x20 {
			return fail()
		}
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return fail()
		}
		switch body[i] {
		case '"', '\\', '/':
			out = append(out, body[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, ok := hex4(body[i+1:])
			if !ok {
				return fail()
			}
			i += 4
			if utf16.IsSurrogate(r) {
				r2, ok := lowSurrogate(body[i+1:])
				if dec := utf16.DecodeRune(r, r2); ok && dec != utf8.RuneError {
					r = dec
					i += 6
				} else {
					r = utf8.RuneError
				}
			}
			out = utf8.AppendRune(out, r)
		default:
			return fail()
		}
	}
	return out, nil
}

func lowSurrogate(b []byte) (rune, bool) {
	if len(b) < 6 || b[0] != '\\' || b[1] != 'u' {
		return 0, false
	}
	return hex4(b[2:])
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		switch {
		case '0' <= c && c <= '9':
			c -= '0'
		case 'a' <= c && c <= 'f':
			c = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
