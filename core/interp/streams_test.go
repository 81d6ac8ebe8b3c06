package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamHolder_ownership(t *testing.T) {
	stream := &countingStream{}
	owner := NewStreamHolder(stream, true)

	alias := owner.Alias()
	assert.False(t, alias.Owned(), "aliasing always drops ownership")
	alias.Close()
	assert.Equal(t, 0, stream.closes, "closing a borrowed holder is a no-op")

	owner.Close()
	owner.Close()
	assert.Equal(t, 1, stream.closes, "double close must not close twice")
}

func TestStreamHolder_nil(t *testing.T) {
	var h *StreamHolder

	assert.Nil(t, h.Alias())
	assert.Nil(t, h.Stream())
	assert.Nil(t, h.Reader())
	assert.Nil(t, h.Writer())
	assert.False(t, h.Owned())
	h.Close() // must not panic
}

func TestCopyStreamHolders(t *testing.T) {
	stream := &countingStream{}
	table := []*StreamHolder{
		NewStreamHolder(stream, true),
		nil,
	}

	copied := CopyStreamHolders(table)
	assert.Len(t, copied, 2)
	assert.Equal(t, stream, copied[0].Stream(), "aliases share the stream")
	assert.False(t, copied[0].Owned())
	assert.Nil(t, copied[1])
}

func TestStdStreams(t *testing.T) {
	in := strings.NewReader("input")
	var out, errOut strings.Builder

	holders := StdStreams(in, &out, &errOut)
	assert.Len(t, holders, 3)
	for i, h := range holders {
		assert.False(t, h.Owned(), "std stream %d is borrowed", i)
	}
	assert.NotNil(t, holders[0].Reader())
	assert.NotNil(t, holders[1].Writer())
	assert.NotNil(t, holders[2].Writer())
}

func TestStdStreams_nilFallbacks(t *testing.T) {
	holders := StdStreams(nil, nil, nil)

	n, err := holders[1].Writer().Write([]byte("dropped"))
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = holders[0].Reader().Read(make([]byte, 1))
	assert.Error(t, err, "reads from a nil stdin fail")
}
