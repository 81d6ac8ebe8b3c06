package interp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Braced parameter expansion operators. Only opNone and opPrehash are
// implemented; the rest are recognized so they can be rejected explicitly.
const (
	opNone = iota
	opPrehash
	opHash
	opDhash
	opPercent
	opDpercent
	opHyphen
	opColonHyphen
	opEquals
	opColonEquals
	opPlus
	opColonPlus
	opQuery
	opColonQuery
)

// Expand performs '$' expansions on text. Quotes and escapes are preserved
// in the output so that Split can make its decisions afterwards. Runs of
// unquoted whitespace are collapsed to a single space, and backtick spans
// are replaced by the captured output of the nested command.
func (c *Context) Expand(text string) (string, error) {
	// Nothing to do unless there is a '$' somewhere.
	if !strings.Contains(text, "$") {
		return text, nil
	}

	ci := newCursor(text)
	out := make([]rune, 0, len(text))
	var quote rune
	backtickStart := -1

	for ch := ci.next(); ch != eof; ch = ci.next() {
		switch ch {
		case '"', '\'':
			if quote == 0 {
				quote = ch
			} else if quote == ch {
				quote = 0
			}
			out = append(out, ch)
		case '`':
			if backtickStart == -1 {
				backtickStart = len(out)
			} else {
				captured, err := c.runBacktickCommand(string(out[backtickStart:]))
				if err != nil {
					return "", err
				}
				out = append(out[:backtickStart], []rune(captured)...)
				backtickStart = -1
			}
		case ' ', '\t':
			if quote != 0 {
				out = append(out, ch)
				break
			}
			out = append(out, ' ')
			for p := ci.peek(); p == ' ' || p == '\t'; p = ci.peek() {
				ci.next()
			}
		case '\\':
			out = append(out, ch)
			if next := ci.next(); next != eof {
				out = append(out, next)
			}
		case '$':
			if quote == '\'' {
				out = append(out, '$')
			} else {
				expansion, err := c.dollarExpansion(ci)
				if err != nil {
					return "", err
				}
				out = append(out, []rune(expansion)...)
			}
		default:
			out = append(out, ch)
		}
	}

	if backtickStart != -1 {
		return "", &SyntaxError{Msg: "unmatched '`'"}
	}
	return string(out), nil
}

// runBacktickCommand interprets a captured backtick span and returns its
// output with the trailing newline run stripped.
func (c *Context) runBacktickCommand(commandLine string) (string, error) {
	if c.interp == nil {
		panic("interp: no interpreter bound for command substitution")
	}
	var capture bytes.Buffer
	if _, err := c.interp.Interpret(commandLine, &capture); err != nil {
		return "", err
	}
	return strings.TrimRight(capture.String(), "\n"), nil
}

// dollarExpansion resolves the text immediately following an unquoted '$'.
func (c *Context) dollarExpansion(ci *cursor) (string, error) {
	ch := ci.next()
	switch {
	case ch == eof:
		return "$", nil
	case ch == '{':
		return c.dollarBraceExpansion(ci)
	case ch == '(':
		return "", fmt.Errorf("arithmetic/subshell substitution $(...): %w", ErrUnsupported)
	case isSpecialParam(ch):
		value, _, err := c.specialVariable(ch)
		return value, err
	default:
		name := []rune{ch}
		for p := ci.peek(); isIdentRune(p); p = ci.peek() {
			name = append(name, p)
			ci.next()
		}
		value, _ := c.LookupVar(string(name))
		return value, nil
	}
}

// dollarBraceExpansion handles the ${...} form. The body is scanned to the
// matching '}', honoring nested braces and quotes; a backslash keeps the
// next character uninterpreted.
func (c *Context) dollarBraceExpansion(ci *cursor) (string, error) {
	var body []rune
	braceLevel := 1
	var quote rune
	ch := ci.next()
scan:
	for ch != eof {
		switch ch {
		case '}':
			if quote == 0 {
				braceLevel--
				if braceLevel == 0 {
					break scan
				}
			}
		case '{':
			if quote == 0 {
				braceLevel++
			}
		case '\\':
			body = append(body, ch)
			ch = ci.next()
		case '"', '\'':
			if quote == 0 {
				quote = ch
			} else if quote == ch {
				quote = 0
			}
		}
		if ch != eof {
			body = append(body, ch)
		}
		ch = ci.next()
	}

	if len(body) == 0 {
		return "", nil
	}

	// Find the end of the parameter name, noting a leading '#' operator.
	operator := opNone
	i := 0
nameScan:
	for ; i < len(body); i++ {
		switch body[i] {
		case '#':
			if i == 0 {
				operator = opPrehash
			} else {
				break nameScan
			}
		case '%', ':', '=', '?', '+', '-':
			break nameScan
		}
	}

	nameStart := 0
	if operator == opPrehash {
		nameStart = 1
	}
	parameter := string(body[nameStart:i])

	if i < len(body) {
		// Work out which operator follows the name.
		opch := body[i]
		opch2 := rune(0)
		if i+1 < len(body) {
			opch2 = body[i+1]
		}
		switch opch {
		case '#':
			operator = opHash
			if opch2 == '#' {
				operator = opDhash
			}
		case '%':
			operator = opPercent
			if opch2 == '%' {
				operator = opDpercent
			}
		case ':':
			switch opch2 {
			case '=':
				operator = opColonEquals
			case '+':
				operator = opColonPlus
			case '?':
				operator = opColonQuery
			case '-':
				operator = opColonHyphen
			default:
				return "", &SyntaxError{Msg: "bad substitution"}
			}
		case '=':
			operator = opEquals
		case '?':
			operator = opQuery
		case '+':
			operator = opPlus
		case '-':
			operator = opHyphen
		default:
			panic("interp: inconsistent operator state")
		}
		// Two-character operators consume an extra character.
		switch operator {
		case opEquals, opQuery, opPlus, opHyphen, opHash, opPercent:
		default:
			i++
		}
		// The operator needs an operand; a doubled operator with nothing
		// after it is malformed.
		if i >= len(body) {
			return "", &SyntaxError{Msg: "bad substitution"}
		}
	}

	value, found, err := c.variable(parameter)
	if err != nil {
		return "", err
	}
	switch operator {
	case opNone:
		return value, nil
	case opPrehash:
		if !found {
			return "0", nil
		}
		return strconv.Itoa(len(value)), nil
	default:
		return "", fmt.Errorf("${%s}: %w", string(body), ErrUnsupported)
	}
}

// variable resolves a braced parameter name: a special parameter, a plain
// name, or a positional argument number.
func (c *Context) variable(parameter string) (value string, found bool, err error) {
	if len(parameter) == 1 {
		if v, special, err := c.specialVariable(rune(parameter[0])); special || err != nil {
			return v, true, err
		}
	}
	if isName(parameter) {
		v, ok := c.LookupVar(parameter)
		return v, ok, nil
	}
	argNo, convErr := strconv.Atoi(parameter)
	if convErr != nil {
		return "", false, &SyntaxError{Msg: "bad substitution"}
	}
	return c.argVariable(argNo), true, nil
}

// specialVariable resolves the one-character special parameters. The
// boolean reports whether ch named one at all.
func (c *Context) specialVariable(ch rune) (string, bool, error) {
	switch ch {
	case '$':
		return strconv.Itoa(c.shellPid), true, nil
	case '#':
		return strconv.Itoa(len(c.args)), true, nil
	case '@', '*':
		return "", true, fmt.Errorf("multi-field $%c expansion: %w", ch, ErrUnsupported)
	case '?':
		return strconv.Itoa(c.lastReturnCode), true, nil
	case '!':
		return strconv.Itoa(c.lastAsyncPid), true, nil
	case '-':
		return c.options, true, nil
	}
	if ch >= '0' && ch <= '9' {
		return c.argVariable(int(ch - '0')), true, nil
	}
	return "", false, nil
}

// argVariable resolves $0..$N; out-of-range positions expand to empty.
func (c *Context) argVariable(argNo int) string {
	switch {
	case argNo == 0:
		return c.command
	case argNo <= len(c.args):
		return c.args[argNo-1]
	default:
		return ""
	}
}

func isSpecialParam(ch rune) bool {
	switch ch {
	case '$', '#', '@', '*', '?', '!', '-':
		return true
	}
	return ch >= '0' && ch <= '9'
}

func isIdentRune(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') ||
		(ch >= '0' && ch <= '9') || ch == '_'
}

// isName reports whether s is a valid variable name: a letter or underscore
// followed by letters, digits and underscores.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if i == 0 && ch >= '0' && ch <= '9' {
			return false
		}
		if !isIdentRune(ch) {
			return false
		}
	}
	return true
}
