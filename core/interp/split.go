package interp

import (
	"strings"

	"github.com/gosh-sh/gosh/core/pattern"
)

// CommandLine is an assembled command: the command name and its arguments.
// An empty Name means the words expanded to nothing at all.
type CommandLine struct {
	Name string
	Args []string
}

// ExpandAndSplitTokens performs expand-and-split processing on a slice of
// raw word tokens, then assembles the result into a command line.
func (c *Context) ExpandAndSplitTokens(tokens []string) (CommandLine, error) {
	var words []string
	for _, token := range tokens {
		expanded, err := c.Expand(token)
		if err != nil {
			return CommandLine{}, err
		}
		words = splitAndAppend(expanded, words)
	}
	return c.makeCommandLine(words), nil
}

// ExpandAndSplit performs expand-and-split processing on a single run of
// characters.
func (c *Context) ExpandAndSplit(text string) (CommandLine, error) {
	expanded, err := c.Expand(text)
	if err != nil {
		return CommandLine{}, err
	}
	return c.makeCommandLine(c.Split(expanded)), nil
}

// Split divides expanded text into words at unquoted whitespace, dealing
// with and removing any non-literal quotes. Empty input yields no words;
// an empty quoted span yields one empty word.
func (c *Context) Split(text string) []string {
	return splitAndAppend(text, nil)
}

func splitAndAppend(text string, words []string) []string {
	var sb []rune
	started := false
	var quote rune
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case '"', '\'':
			if quote == 0 {
				quote = ch
				started = true
			} else if quote == ch {
				quote = 0
			} else {
				sb = append(sb, ch)
			}
		case ' ', '\t':
			if quote == 0 {
				if started {
					words = append(words, string(sb))
					sb, started = nil, false
				}
			} else {
				sb = append(sb, ch)
			}
		case '\\':
			if i+1 < len(runes) {
				i++
				ch = runes[i]
			}
			sb = append(sb, ch)
			started = true
		default:
			sb = append(sb, ch)
			started = true
		}
	}
	if started {
		words = append(words, string(sb))
	}
	return words
}

// makeCommandLine applies per-word tilde and pathname-pattern expansion,
// then assembles the words into a command line.
func (c *Context) makeCommandLine(words []string) CommandLine {
	if c.globbing || c.tildes {
		var processed []string
		for _, word := range words {
			if c.tildes {
				word = c.tildeExpand(word)
			}
			if c.globbing {
				processed = c.globAndAppend(word, processed)
			} else {
				processed = append(processed, word)
			}
		}
		words = processed
	}
	switch len(words) {
	case 0:
		return CommandLine{}
	case 1:
		return CommandLine{Name: words[0]}
	default:
		return CommandLine{Name: words[0], Args: words[1:]}
	}
}

// tildeExpand substitutes a leading '~' with the invoking user's home
// directory. Named users (~fred) are not resolvable here and pass through
// unchanged, as does '~' when no home directory is known.
func (c *Context) tildeExpand(word string) string {
	if !strings.HasPrefix(word, "~") {
		return word
	}
	name, rest := word[1:], ""
	if slash := strings.IndexByte(word, '/'); slash >= 0 {
		name, rest = word[1:slash], word[slash:]
	}
	if name != "" {
		return word
	}
	home, _ := c.LookupVar("HOME")
	if home == "" {
		return word
	}
	return home + rest
}

// globAndAppend appends the pathname expansion of word, or word itself when
// it is not a pattern or matches nothing.
func (c *Context) globAndAppend(word string, words []string) []string {
	// Deal with the 'not-a-pattern' case quickly and cheaply.
	if !pattern.IsPattern(word) {
		return append(words, word)
	}
	paths := pattern.Compile(word).Expand(c.fs, c.dir)
	if len(paths) == 0 {
		// A pattern that matches nothing 'expands' to itself.
		return append(words, word)
	}
	return append(words, paths...)
}
