// Package pattern is the pathname-pattern collaborator of the expansion
// engine. The matching itself is delegated to the filesystem layer; this
// package only decides what counts as a pattern and anchors the expansion
// at a base directory.
package pattern

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// IsPattern reports whether word contains unescaped pathname pattern
// metacharacters.
func IsPattern(word string) bool {
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case '\\':
			i++
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// Pattern is a compiled pathname pattern.
type Pattern struct {
	pat string
}

// Compile prepares word for expansion.
func Compile(word string) *Pattern {
	return &Pattern{pat: word}
}

// Expand matches the pattern against fsys. Relative patterns are anchored
// at baseDir and the results are returned relative again. The result order
// is stable for identical filesystem state; no matches yields nil.
func (p *Pattern) Expand(fsys afero.Fs, baseDir string) []string {
	pat := p.pat
	relative := !path.IsAbs(pat) && baseDir != ""
	if relative {
		pat = path.Join(baseDir, pat)
	}
	matches, err := afero.Glob(fsys, pat)
	if err != nil {
		// A malformed pattern matches nothing; the caller keeps the
		// literal word.
		return nil
	}
	if relative {
		prefix := strings.TrimSuffix(baseDir, "/") + "/"
		for i, m := range matches {
			matches[i] = strings.TrimPrefix(m, prefix)
		}
	}
	sort.Strings(matches)
	return matches
}
