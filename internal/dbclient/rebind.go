package dbclient

import (
	"strconv"
	"strings"
)

// Placeholder is the neutral parameter token queries are written with.
const Placeholder = '?'

// rebind replaces every Placeholder outside quoted literals, identifiers and
// comments with token(n), n counting from 1 in order of appearance.
func rebind(query string, token func(n int) string) string {
	if strings.IndexByte(query, Placeholder) < 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	var quote byte // active quote character, 0 when outside quotes
	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			// Line comment: copy through to end of line.
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				b.WriteString(query[i:])
				return b.String()
			}
			b.WriteString(query[i : i+end])
			i += end - 1
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			// Block comment: copy through to the closing */.
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				b.WriteString(query[i:])
				return b.String()
			}
			stop := i + 2 + end + 2
			b.WriteString(query[i:stop])
			i = stop - 1
		case c == Placeholder:
			n++
			b.WriteString(token(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func dollarToken(n int) string { return "$" + strconv.Itoa(n) }

func atPToken(n int) string { return "@p" + strconv.Itoa(n) }
