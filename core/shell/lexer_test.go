package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosh-sh/gosh/core/interp"
)

func TestLex_words(t *testing.T) {
	cases := map[string]struct {
		in   string
		want []string
	}{
		"simple":        {"echo hello world", []string{"echo", "hello", "world"}},
		"quotes-kept":   {`echo "a b" 'c d'`, []string{"echo", `"a b"`, `'c d'`}},
		"escapes-kept":  {`echo a\ b`, []string{"echo", `a\ b`}},
		"backtick-span": {"echo `date +%s` x", []string{"echo", "`date +%s`", "x"}},
		"empty":         {"   ", nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cmd, err := Lex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cmd.Words)
		})
	}
}

func TestLex_assignments(t *testing.T) {
	cmd, err := Lex("A=1 B=two echo $A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A=1", "B=two"}, cmd.Assignments)
	assert.Equal(t, []string{"echo", "$A"}, cmd.Words)

	// Assignment-looking words after the command are plain arguments.
	cmd, err = Lex("env A=1")
	require.NoError(t, err)
	assert.Empty(t, cmd.Assignments)
	assert.Equal(t, []string{"env", "A=1"}, cmd.Words)

	// A line of nothing but assignments has no command words.
	cmd, err = Lex("A=1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A=1"}, cmd.Assignments)
	assert.Empty(t, cmd.Words)
}

func TestLex_redirections(t *testing.T) {
	cases := map[string]struct {
		in        string
		wantWords []string
		wantRedir []interp.Redirection
	}{
		"out": {
			"echo hi >out.txt",
			[]string{"echo", "hi"},
			[]interp.Redirection{{Op: interp.RedirGreat, Arg: "out.txt"}},
		},
		"append": {
			"echo hi >> log",
			[]string{"echo", "hi"},
			[]interp.Redirection{{Op: interp.RedirDGreat, Arg: "log"}},
		},
		"clobber": {
			"echo hi >| out",
			[]string{"echo", "hi"},
			[]interp.Redirection{{Op: interp.RedirClobber, Arg: "out"}},
		},
		"in": {
			"wc <data",
			[]string{"wc"},
			[]interp.Redirection{{Op: interp.RedirLess, Arg: "data"}},
		},
		"explicit-fd": {
			"cmd 2>err.log",
			[]string{"cmd"},
			[]interp.Redirection{{Op: interp.RedirGreat, Fd: "2", Arg: "err.log"}},
		},
		"dup": {
			"cmd 2>&1",
			[]string{"cmd"},
			[]interp.Redirection{{Op: interp.RedirGreatAnd, Fd: "2", Arg: "1"}},
		},
		"dup-in": {
			"cmd <&3",
			[]string{"cmd"},
			[]interp.Redirection{{Op: interp.RedirLessAnd, Arg: "3"}},
		},
		"heredoc-recognized": {
			"cmd <<EOF",
			[]string{"cmd"},
			[]interp.Redirection{{Op: interp.RedirDLess, Arg: "EOF"}},
		},
		"read-write": {
			"cmd <>file",
			[]string{"cmd"},
			[]interp.Redirection{{Op: interp.RedirLessGreat, Arg: "file"}},
		},
		"glued-word": {
			"echo a>b",
			[]string{"echo", "a"},
			[]interp.Redirection{{Op: interp.RedirGreat, Arg: "b"}},
		},
		"several-in-order": {
			"cmd <in >out 2>>err",
			[]string{"cmd"},
			[]interp.Redirection{
				{Op: interp.RedirLess, Arg: "in"},
				{Op: interp.RedirGreat, Arg: "out"},
				{Op: interp.RedirDGreat, Fd: "2", Arg: "err"},
			},
		},
		"quoted-not-redir": {
			`echo ">keep"`,
			[]string{"echo", `">keep"`},
			nil,
		},
		"bare-redirection": {
			">touched",
			nil,
			[]interp.Redirection{{Op: interp.RedirGreat, Arg: "touched"}},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cmd, err := Lex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantWords, cmd.Words)
			assert.Equal(t, tc.wantRedir, cmd.Redirs)
		})
	}
}

func TestLex_errors(t *testing.T) {
	for name, in := range map[string]string{
		"missing-target":     "echo >",
		"op-after-op":        "echo > >",
		"unmatched-quote":    `echo "oops`,
		"unmatched-backtick": "echo `oops",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Lex(in)
			require.Error(t, err)
			var syntaxErr *interp.SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}
