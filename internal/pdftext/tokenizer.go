package pdftext

import "strconv"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokOperator
)

type token struct {
	kind tokenKind
	str  string
	num  float64
}

// tokenizer is a minimal scanner for PDF content streams: enough to separate
// numbers, string objects, names, and operators. Inline image data (BI..EI)
// and dictionaries are skipped; they never carry shown text.
type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{data: data}
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func (t *tokenizer) next() (token, bool) {
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		switch {
		case isWhitespace(b):
			t.pos++
		case b == '%':
			t.skipLine()
		case b == '(':
			t.pos++
			return token{kind: tokString, str: t.readLiteralString()}, true
		case b == '<':
			if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
				t.pos += 2 // dictionary open, operands we never use
			} else {
				t.pos++
				return token{kind: tokString, str: t.readHexString()}, true
			}
		case b == '>':
			t.pos++ // dictionary close half; pairs with the branch above
		case b == '[', b == ']', b == '{', b == '}':
			t.pos++
		case b == '/':
			t.pos++
			return token{kind: tokName, str: t.readRegular()}, true
		case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
			raw := t.readRegular()
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				return token{kind: tokNumber, num: n}, true
			}
		default:
			op := t.readRegular()
			if op == "BI" {
				t.skipInlineImage()
				continue
			}
			if op != "" {
				return token{kind: tokOperator, str: op}, true
			}
			t.pos++
		}
	}
	return token{}, false
}

func (t *tokenizer) skipLine() {
	for t.pos < len(t.data) && t.data[t.pos] != '\n' && t.data[t.pos] != '\r' {
		t.pos++
	}
}

// readRegular consumes a run of regular characters (operator, name, number).
func (t *tokenizer) readRegular() string {
	start := t.pos
	for t.pos < len(t.data) && !isWhitespace(t.data[t.pos]) && !isDelimiter(t.data[t.pos]) {
		t.pos++
	}
	return string(t.data[start:t.pos])
}

// readLiteralString consumes a (...) string, honoring escape sequences,
// octal escapes, and balanced nested parentheses. The opening paren is
// already consumed.
func (t *tokenizer) readLiteralString() string {
	var out []byte
	depth := 1
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		switch b {
		case '\\':
			t.pos++
			if t.pos >= len(t.data) {
				return string(out)
			}
			e := t.data[t.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\n':
				// line continuation, emits nothing
			case '\r':
				if t.pos+1 < len(t.data) && t.data[t.pos+1] == '\n' {
					t.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && t.pos+1 < len(t.data); k++ {
						n := t.data[t.pos+1]
						if n < '0' || n > '7' {
							break
						}
						val = val*8 + int(n-'0')
						t.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
			t.pos++
		case '(':
			depth++
			out = append(out, b)
			t.pos++
		case ')':
			depth--
			t.pos++
			if depth == 0 {
				return string(out)
			}
			out = append(out, b)
		default:
			out = append(out, b)
			t.pos++
		}
	}
	return string(out)
}

// readHexString consumes a <...> string. The opening angle bracket is already
// consumed. An odd final digit is padded with zero per the PDF spec.
func (t *tokenizer) readHexString() string {
	var digits []byte
	for t.pos < len(t.data) && t.data[t.pos] != '>' {
		b := t.data[t.pos]
		if (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') {
			digits = append(digits, b)
		}
		t.pos++
	}
	if t.pos < len(t.data) {
		t.pos++ // consume '>'
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		out = append(out, hexVal(digits[i])<<4|hexVal(digits[i+1]))
	}
	return string(out)
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// skipInlineImage advances past BI ... ID <binary> EI.
func (t *tokenizer) skipInlineImage() {
	for t.pos+1 < len(t.data) {
		if t.data[t.pos] == 'E' && t.data[t.pos+1] == 'I' &&
			(t.pos+2 >= len(t.data) || isWhitespace(t.data[t.pos+2])) {
			t.pos += 2
			return
		}
		t.pos++
	}
	t.pos = len(t.data)
}
