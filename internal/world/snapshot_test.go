package world

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	cs := NewChunkStore(testExtents)
	NewGenerator(3).GenerateArea(cs, ChunkCoord{X: -1, Z: 2}, 1)
	chunks := cs.AllChunks()

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, chunks))

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chunks))
	for i, c := range chunks {
		assert.Equal(t, c.Coord, got[i].Coord)
		assert.Equal(t, c.Extents, got[i].Extents)
		assert.Equal(t, c.Blocks, got[i].Blocks)
		assert.True(t, got[i].IsDirty(), "loaded chunks need meshing")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil))
	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func compressed(t *testing.T, raw []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(raw)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return &buf
}

func TestSnapshotRejectsBadHeader(t *testing.T) {
	_, err := ReadSnapshot(compressed(t, []byte("NOPE\x01\x00\x00\x00\x00\x00")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")

	var raw bytes.Buffer
	raw.Write(snapshotMagic[:])
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint16(snapshotVersion+1)))
	_, err = ReadSnapshot(compressed(t, raw.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestSnapshotHugeCount(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(snapshotMagic[:])
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint16(snapshotVersion)))
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint32(0xFFFFFFFF)))

	_, err := ReadSnapshot(compressed(t, raw.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 0 header")
}

func TestSnapshotTruncated(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(snapshotMagic[:])
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint16(snapshotVersion)))
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, uint32(1)))
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, snapshotChunkHeader{Extents: [3]uint16{2, 2, 2}}))
	raw.Write([]byte{1, 2, 3})

	_, err := ReadSnapshot(compressed(t, raw.Bytes()))
	assert.Error(t, err)
}
