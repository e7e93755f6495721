package volume

import (
	"testing"

	"github.com/rstms/fatx"
	"github.com/stretchr/testify/require"
)

func TestEntryRoundTrip(t *testing.T) {
	e, err := newEntry("BAR.BIN", fatx.AttrArchive, 7, 40000)
	require.Nil(t, err)

	decoded := decodeEntry(e.encode())
	require.Equal(t, e, decoded)
	require.Equal(t, "BAR.BIN", decoded.Name())
	require.True(t, decoded.IsLive())
	require.False(t, decoded.IsDirectory())
}

func TestEntryNameLengthClassification(t *testing.T) {
	live := decodeEntry(mustEntryBytes(t, 5, 0))
	require.True(t, live.IsLive())
	require.False(t, live.IsTombstone())
	require.False(t, live.IsTerminator())

	tomb := decodeEntry(mustEntryBytes(t, nameLenTombstone, 0))
	require.False(t, tomb.IsLive())
	require.True(t, tomb.IsTombstone())

	term := newTerminatorEntry()
	require.True(t, term.IsTerminator())
	require.False(t, term.IsLive())
}

func TestNewEntryRejectsBadNameLength(t *testing.T) {
	_, err := newEntry("", 0, 1, 0)
	require.NotNil(t, err)

	longName := make([]byte, maxNameLen+1)
	for i := range longName {
		longName[i] = 'A'
	}
	_, err = newEntry(string(longName), 0, 1, 0)
	require.NotNil(t, err)
}

func mustEntryBytes(t *testing.T, nameLength byte, attr byte) []byte {
	t.Helper()
	b := make([]byte, EntrySize)
	b[0] = nameLength
	b[1] = attr
	for i := 2; i < 44; i++ {
		b[i] = 0xFF
	}
	return b
}
