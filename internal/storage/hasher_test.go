package storage

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashReader_Deterministic(t *testing.T) {
	data := make([]byte, 100*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	first, err := HashReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, first, 64)

	second, err := HashReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestHashReader_ChunkingIndependent(t *testing.T) {
	data := make([]byte, 70*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	whole, err := HashReader(bytes.NewReader(data))
	require.NoError(t, err)

	// A reader that returns one byte at a time must produce the same digest.
	dribble, err := HashReader(iotest{r: bytes.NewReader(data)})
	require.NoError(t, err)
	require.Equal(t, whole, dribble)
}

// iotest returns at most one byte per Read call.
type iotest struct{ r io.Reader }

func (d iotest) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return d.r.Read(p)
}
