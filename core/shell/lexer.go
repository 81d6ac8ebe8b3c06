package shell

import (
	"regexp"
	"strings"

	"github.com/gosh-sh/gosh/core/interp"
)

var assignRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Command is one lexed simple command: assignment prefixes, raw word tokens
// with their quoting intact, and redirection descriptors in source order.
type Command struct {
	Assignments []string
	Words       []string
	Redirs      []interp.Redirection
}

// Empty reports whether the command has nothing to do.
func (c *Command) Empty() bool {
	return len(c.Assignments) == 0 && len(c.Words) == 0 && len(c.Redirs) == 0
}

// Lex splits a raw command line into word tokens and redirection
// descriptors. Quotes and escapes are preserved in the word tokens; the
// expansion engine makes the final splitting decisions. A run of digits
// glued to a redirection operator becomes its explicit fd.
func Lex(line string) (*Command, error) {
	var cmd Command
	var words []string
	var cur []rune
	started := false
	var quote rune
	var pending *interp.Redirection

	flush := func() {
		if !started {
			return
		}
		word := string(cur)
		cur, started = nil, false
		if pending != nil {
			pending.Arg = word
			cmd.Redirs = append(cmd.Redirs, *pending)
			pending = nil
			return
		}
		words = append(words, word)
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case quote != 0:
			cur = append(cur, ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			cur = append(cur, ch)
			started = true
		case ch == '\\':
			cur = append(cur, ch)
			if i+1 < len(runes) {
				i++
				cur = append(cur, runes[i])
			}
			started = true
		case ch == ' ' || ch == '\t':
			flush()
		case ch == '<' || ch == '>':
			if pending != nil {
				return nil, &interp.SyntaxError{Msg: "redirection missing its target"}
			}
			fd := ""
			if started && isDigits(string(cur)) {
				fd = string(cur)
				cur, started = nil, false
			}
			flush()
			op, width := lexRedirOp(runes[i:])
			i += width - 1
			pending = &interp.Redirection{Op: op, Fd: fd}
		default:
			cur = append(cur, ch)
			started = true
		}
	}
	if quote != 0 {
		return nil, &interp.SyntaxError{Msg: "unexpected end of line while looking for matching quote"}
	}
	flush()
	if pending != nil {
		return nil, &interp.SyntaxError{Msg: "redirection missing its target"}
	}

	// Leading NAME=VALUE words are assignments for the command to come.
	for len(words) > 0 && assignRegex.MatchString(words[0]) {
		cmd.Assignments = append(cmd.Assignments, words[0])
		words = words[1:]
	}
	cmd.Words = words
	return &cmd, nil
}

// lexRedirOp recognizes the redirection operator starting at runes[0] and
// returns it along with its width in characters.
func lexRedirOp(runes []rune) (interp.RedirOp, int) {
	text := string(runes)
	switch {
	case strings.HasPrefix(text, "<<-"):
		return interp.RedirDLessDash, 3
	case strings.HasPrefix(text, "<<"):
		return interp.RedirDLess, 2
	case strings.HasPrefix(text, "<>"):
		return interp.RedirLessGreat, 2
	case strings.HasPrefix(text, "<&"):
		return interp.RedirLessAnd, 2
	case strings.HasPrefix(text, ">>"):
		return interp.RedirDGreat, 2
	case strings.HasPrefix(text, ">|"):
		return interp.RedirClobber, 2
	case strings.HasPrefix(text, ">&"):
		return interp.RedirGreatAnd, 2
	case text[0] == '<':
		return interp.RedirLess, 1
	default:
		return interp.RedirGreat, 1
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
