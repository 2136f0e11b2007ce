package world

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Snapshot layout (little-endian, zstd-compressed):
//
//	magic   [4]byte "VXMS"
//	version uint16
//	count   uint32
//	per chunk: x int32, z int32, extents [3]uint16, blocks [x*y*z]byte
const snapshotVersion = 1

var snapshotMagic = [4]byte{'V', 'X', 'M', 'S'}

type snapshotChunkHeader struct {
	X, Z    int32
	Extents [3]uint16
}

// WriteSnapshot writes the block data of chunks to w.
func WriteSnapshot(w io.Writer, chunks []*Chunk) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return errors.Wrap(err, "create zstd encoder")
	}
	bw := bufio.NewWriter(enc)

	if _, err := bw.Write(snapshotMagic[:]); err != nil {
		enc.Close()
		return errors.Wrap(err, "write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint16(snapshotVersion)); err != nil {
		enc.Close()
		return errors.Wrap(err, "write version")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(chunks))); err != nil {
		enc.Close()
		return errors.Wrap(err, "write chunk count")
	}

	for _, c := range chunks {
		hdr := snapshotChunkHeader{
			X: int32(c.Coord.X),
			Z: int32(c.Coord.Z),
			Extents: [3]uint16{
				uint16(c.Extents[0]), uint16(c.Extents[1]), uint16(c.Extents[2]),
			},
		}
		if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
			enc.Close()
			return errors.Wrapf(err, "write chunk %v header", c.Coord)
		}
		c.RLock()
		_, err := bw.Write(blocksAsBytes(c.Blocks))
		c.RUnlock()
		if err != nil {
			enc.Close()
			return errors.Wrapf(err, "write chunk %v blocks", c.Coord)
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return errors.Wrap(err, "flush snapshot")
	}
	return errors.Wrap(enc.Close(), "close zstd encoder")
}

// ReadSnapshot reads chunks written by WriteSnapshot.
func ReadSnapshot(r io.Reader) ([]*Chunk, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != snapshotMagic {
		return nil, errors.Errorf("bad snapshot magic %q", magic[:])
	}
	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "read version")
	}
	if version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", version)
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "read chunk count")
	}

	// count is untrusted; a short stream fails on the next header read.
	chunks := make([]*Chunk, 0, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		var hdr snapshotChunkHeader
		if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
			return nil, errors.Wrapf(err, "read chunk %d header", i)
		}
		extents := [3]int{int(hdr.Extents[0]), int(hdr.Extents[1]), int(hdr.Extents[2])}
		for _, e := range extents {
			if e < 1 || e > MaxExtent {
				return nil, errors.Errorf("chunk %d: extents %v out of range", i, extents)
			}
		}
		raw := make([]byte, extents[0]*extents[1]*extents[2])
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, errors.Wrapf(err, "read chunk %d blocks", i)
		}
		coord := ChunkCoord{X: int(hdr.X), Z: int(hdr.Z)}
		chunks = append(chunks, NewChunkFromBlocks(coord, extents, bytesAsBlocks(raw)))
	}
	return chunks, nil
}

func blocksAsBytes(blocks []Block) []byte {
	out := make([]byte, len(blocks))
	for i, b := range blocks {
		out[i] = byte(b)
	}
	return out
}

func bytesAsBlocks(raw []byte) []Block {
	out := make([]Block, len(raw))
	for i, b := range raw {
		out[i] = Block(b)
	}
	return out
}
