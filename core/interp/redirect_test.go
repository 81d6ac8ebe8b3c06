package interp

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStream counts closes so ownership semantics can be asserted.
type countingStream struct {
	closes int
}

func (c *countingStream) Close() error {
	c.closes++
	return nil
}

func (c *countingStream) Write(b []byte) (int, error) {
	return len(b), nil
}

func closeAll(holders []*StreamHolder) {
	for _, holder := range holders {
		holder.Close()
	}
}

func newRedirContext(t *testing.T) *Context {
	t.Helper()
	ctx := NewContext(nil, afero.NewMemMapFs(), StdStreams(nil, nil, nil))
	ctx.SetDir("/work")
	return ctx
}

func TestEvaluateRedirections_writeAndRead(t *testing.T) {
	ctx := newRedirContext(t)

	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirGreat, Arg: "out.txt"},
	})
	require.NoError(t, err)
	require.Len(t, holders, 3)
	assert.True(t, holders[1].Owned())

	_, err = holders[1].Writer().Write([]byte("hello\n"))
	require.NoError(t, err)
	closeAll(holders)

	content, err := afero.ReadFile(ctx.Fs(), "/work/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))

	// Read it back through '<'.
	holders, err = ctx.EvaluateRedirections([]Redirection{
		{Op: RedirLess, Arg: "out.txt"},
	})
	require.NoError(t, err)
	assert.True(t, holders[0].Owned())
	readBack, err := io.ReadAll(holders[0].Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(readBack))
	closeAll(holders)
}

func TestEvaluateRedirections_append(t *testing.T) {
	ctx := newRedirContext(t)
	require.NoError(t, afero.WriteFile(ctx.Fs(), "/work/log", []byte("one\n"), 0644))

	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirDGreat, Arg: "log"},
	})
	require.NoError(t, err)
	_, err = holders[1].Writer().Write([]byte("two\n"))
	require.NoError(t, err)
	closeAll(holders)

	content, err := afero.ReadFile(ctx.Fs(), "/work/log")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(content))
}

func TestEvaluateRedirections_missingInputFile(t *testing.T) {
	ctx := newRedirContext(t)

	_, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirLess, Arg: "missing.txt"},
	})
	require.Error(t, err)
}

func TestEvaluateRedirections_rollbackClosesOwned(t *testing.T) {
	ctx := newRedirContext(t)
	opened := &countingStream{}
	working := CopyStreamHolders(ctx.holders)
	working[1] = NewStreamHolder(opened, true)

	// Second entry fails after the first slot already holds an owned
	// stream; the working copy must be fully unwound.
	_, err := ctx.evaluateRedirections([]Redirection{
		{Op: RedirLess, Arg: "missing.txt"},
	}, working)
	require.Error(t, err)
	assert.Equal(t, 1, opened.closes, "owned holder must be closed exactly once on rollback")

	// The context's own table is untouched by the failed evaluation.
	assert.NotNil(t, ctx.Stream(1))
}

func TestEvaluateRedirections_noClobber(t *testing.T) {
	ctx := newRedirContext(t)
	require.NoError(t, afero.WriteFile(ctx.Fs(), "/work/exists", []byte("precious"), 0644))
	ctx.SetVar("NOCLOBBER", "1")

	_, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirGreat, Arg: "exists"},
	})
	require.Error(t, err)

	// The file must not have been created anew or truncated.
	content, readErr := afero.ReadFile(ctx.Fs(), "/work/exists")
	require.NoError(t, readErr)
	assert.Equal(t, "precious", string(content))

	// '>|' ignores the no-clobber policy.
	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirClobber, Arg: "exists"},
	})
	require.NoError(t, err)
	closeAll(holders)
}

func TestEvaluateRedirections_duplicate(t *testing.T) {
	ctx := newRedirContext(t)

	// 2>&1 aliases fd 1 into fd 2, non-owning.
	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirGreat, Arg: "out.txt"},
		{Op: RedirGreatAnd, Fd: "2", Arg: "1"},
	})
	require.NoError(t, err)
	assert.True(t, holders[1].Owned())
	assert.False(t, holders[2].Owned())
	assert.Equal(t, holders[1].Stream(), holders[2].Stream())
	closeAll(holders)
}

func TestEvaluateRedirections_duplicateOutOfRange(t *testing.T) {
	ctx := newRedirContext(t)

	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirLessAnd, Arg: "7"},
	})
	require.NoError(t, err)
	assert.Nil(t, holders[0], "duplicating an out-of-range fd yields a closed binding")
}

func TestEvaluateRedirections_growsTable(t *testing.T) {
	ctx := newRedirContext(t)

	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirGreat, Fd: "5", Arg: "high.txt"},
	})
	require.NoError(t, err)
	require.Len(t, holders, 6)
	assert.Nil(t, holders[3])
	assert.Nil(t, holders[4])
	assert.True(t, holders[5].Owned())
	closeAll(holders)
}

func TestEvaluateRedirections_badFdTokens(t *testing.T) {
	ctx := newRedirContext(t)

	for name, redir := range map[string]Redirection{
		"non-numeric-target": {Op: RedirGreat, Fd: "x1", Arg: "f"},
		"negative-target":    {Op: RedirGreat, Fd: "-1", Arg: "f"},
		"non-numeric-dup":    {Op: RedirGreatAnd, Arg: "abc"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ctx.EvaluateRedirections([]Redirection{redir})
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestEvaluateRedirections_unsupported(t *testing.T) {
	ctx := newRedirContext(t)

	for name, op := range map[string]RedirOp{
		"heredoc":      RedirDLess,
		"heredoc-dash": RedirDLessDash,
		"read-write":   RedirLessGreat,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ctx.EvaluateRedirections([]Redirection{{Op: op, Arg: "x"}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported), "want ErrUnsupported, got %v", err)
		})
	}
}

func TestEvaluateRedirections_rebindClosesDisplaced(t *testing.T) {
	ctx := newRedirContext(t)

	// The same fd redirected twice: the first opened stream must not leak.
	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirGreat, Arg: "first.txt"},
		{Op: RedirGreat, Arg: "second.txt"},
	})
	require.NoError(t, err)
	assert.True(t, holders[1].Owned())
	closeAll(holders)

	exists, err := afero.Exists(ctx.Fs(), "/work/first.txt")
	require.NoError(t, err)
	assert.True(t, exists, "the displaced redirection still created its file")
}

func TestEvaluateRedirections_defaultFds(t *testing.T) {
	ctx := newRedirContext(t)
	require.NoError(t, afero.WriteFile(ctx.Fs(), "/work/in", nil, 0644))

	holders, err := ctx.EvaluateRedirections([]Redirection{
		{Op: RedirLess, Arg: "in"},
		{Op: RedirGreat, Arg: "out"},
	})
	require.NoError(t, err)
	assert.True(t, holders[0].Owned(), "input operators default to fd 0")
	assert.True(t, holders[1].Owned(), "output operators default to fd 1")
	closeAll(holders)
}
