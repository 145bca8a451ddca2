package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     int      `json:"id"`
	Label  string   `json:"label"`
	Tags   []string `json:"tags,omitempty"`
	Nested *sample  `json:"nested,omitempty"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	in := sample{ID: 7, Label: "Sahih", Tags: []string{"a", "b"}, Nested: &sample{ID: 8, Label: "inner"}}

	for _, name := range []string{CodecJSON, CodecMsgpack, CodecCBOR} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName[sample](name)
			require.NoError(t, err)

			raw, err := codec.Encode(in)
			require.NoError(t, err)

			out, err := codec.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName[sample]("")
	require.NoError(t, err)
	assert.IsType(t, JSON[sample]{}, c)

	c, err = CodecByName[sample](" MsgPack ")
	require.NoError(t, err)
	assert.IsType(t, Msgpack[sample]{}, c)

	_, err = CodecByName[sample]("gob")
	assert.Error(t, err)
}

func TestTyped_GetSet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemory(t)
	typed := NewTyped[sample](store, Msgpack[sample]{})

	_, ok, err := typed.Get(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, typed.Set(ctx, "s", sample{ID: 1, Label: "x"}, time.Minute))

	got, ok, err := typed.Get(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample{ID: 1, Label: "x"}, got)
}

func TestTyped_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemory(t)
	typed := NewTyped[sample](store, nil)

	require.NoError(t, store.Set(ctx, "s", []byte("{not json"), time.Minute))

	_, ok, err := typed.Get(ctx, "s")
	assert.Error(t, err)
	assert.False(t, ok)

	_, hit, _ := store.Get(ctx, "s")
	assert.False(t, hit, "corrupt entry should be removed")
}
