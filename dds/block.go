package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// MagicCOPY marks a block stored verbatim.
	MagicCOPY = "COPY"
	// MagicLZ4 marks a block stored as an LZ4 chunk stream.
	MagicLZ4 = "LZ4 "

	// ChunkSize is the uncompressed size of one LZ4 chunk.
	ChunkSize = 64 * 1024

	dictSize        = 64 * 1024
	minCompressSize = 1024
	maxChunkSize    = 0x7fffff
	lastChunkFlag   = 0x80
	// compressRatio is the largest compressed/raw ratio still stored as LZ4.
	compressRatio = 0.85
)

// block is one mip level body. For LZ4 blocks data starts with the
// uncompressed size followed by the chunk stream.
type block struct {
	magic string
	data  []byte
}

// tableEntry is one record of the block table.
type tableEntry struct {
	magic string
	size  int32
}

// encodeBlock wraps a mip payload in a block, compressing it when asked
// and when LZ4 actually shrinks it.
func encodeBlock(data []byte, compress bool) (*block, error) {
	if len(data) > maxInt32 {
		return nil, fmt.Errorf("%w: block of %d bytes", ErrSizeOverflow, len(data))
	}

	raw := &block{magic: MagicCOPY, data: data}
	if !compress || len(data) < minCompressSize {
		return raw, nil
	}

	stream, ok, err := compressChunks(data)
	if err != nil {
		return nil, err
	}
	if !ok || float64(4+len(stream)) > float64(len(data))*compressRatio {
		return raw, nil
	}

	body := make([]byte, 4+len(stream))
	// #nosec G115 -- len(data) checked against maxInt32 above.
	binary.LittleEndian.PutUint32(body, uint32(len(data)))
	copy(body[4:], stream)

	return &block{magic: MagicLZ4, data: body}, nil
}

// compressChunks splits data into ChunkSize pieces, each prefixed with a
// 3-byte compressed size and a flag byte. ok is false when a chunk does not
// compress well enough.
func compressChunks(data []byte) (stream []byte, ok bool, err error) {
	var out bytes.Buffer
	buf := make([]byte, lz4.CompressBlockBound(ChunkSize))

	for start := 0; start < len(data); start += ChunkSize {
		end := min(start+ChunkSize, len(data))
		chunk := data[start:end]

		n, err := lz4.CompressBlockHC(chunk, buf, 0, nil, nil)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrLZ4, err)
		}
		if n == 0 || float64(n) > float64(len(chunk))*compressRatio {
			return nil, false, nil
		}
		if n > maxChunkSize {
			return nil, false, fmt.Errorf("%w: compressed chunk of %d bytes", ErrSizeOverflow, n)
		}

		var flag byte
		if end == len(data) {
			flag = lastChunkFlag
		}
		out.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), flag})
		out.Write(buf[:n])
	}

	return out.Bytes(), true, nil
}

// decodeBlock returns the raw payload of b, which must be size bytes long.
func decodeBlock(b *block, size int) ([]byte, error) {
	switch b.magic {
	case MagicCOPY:
		if len(b.data) != size {
			return nil, fmt.Errorf("%w: COPY block: expected %d, got %d", ErrMipmapSizeMismatch, size, len(b.data))
		}
		out := make([]byte, size)
		copy(out, b.data)
		return out, nil

	case MagicLZ4:
		stream := b.data
		// the size prefix is absent from some legacy single-block files
		if len(stream) >= 8 && int(binary.LittleEndian.Uint32(stream)) == size {
			stream = stream[4:]
		}
		return inflateChunks(stream, size)

	default:
		return nil, fmt.Errorf("%w: unknown magic %q", ErrInvalidBlock, b.magic)
	}
}

// inflateChunks decodes an LZ4 chunk stream. Each chunk may reference the
// previous 64 KiB of output.
func inflateChunks(stream []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: target size %d", ErrInvalidBlock, size)
	}

	out := make([]byte, size)
	written := 0

	for {
		if len(stream) < 4 {
			return nil, fmt.Errorf("%w: truncated chunk header (%d bytes)", ErrInvalidBlock, len(stream))
		}

		n := int(stream[0]) | int(stream[1])<<8 | int(stream[2])<<16
		flags := stream[3]
		stream = stream[4:]

		if flags&^lastChunkFlag != 0 {
			return nil, fmt.Errorf("%w: unknown chunk flags 0x%02x", ErrInvalidBlock, flags)
		}
		if n <= 0 || n > len(stream) {
			return nil, fmt.Errorf("%w: chunk size %d (remaining %d)", ErrInvalidBlock, n, len(stream))
		}
		if written >= size {
			return nil, fmt.Errorf("%w: chunk stream overruns %d bytes", ErrInvalidBlock, size)
		}

		want := min(ChunkSize, size-written)
		dict := out[max(0, written-dictSize):written]
		got, err := lz4.UncompressBlockWithDict(stream[:n], out[written:written+want], dict)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLZ4, err)
		}

		written += got
		stream = stream[n:]

		if flags&lastChunkFlag != 0 {
			break
		}
	}

	if written != size {
		return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrInvalidData, written, size)
	}
	if len(stream) != 0 {
		return nil, fmt.Errorf("%w: %d bytes after last chunk", ErrInvalidBlock, len(stream))
	}

	return out, nil
}

// writeBlocks writes the table and then the bodies, both smallest level
// first. blocks is ordered from the largest level.
func writeBlocks(w io.Writer, blocks []*block) error {
	for i := len(blocks) - 1; i >= 0; i-- {
		size, err := i32FromInt(len(blocks[i].data))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, blocks[i].magic); err != nil {
			return fmt.Errorf("%w: block table %d: %w", ErrIO, i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, size); err != nil {
			return fmt.Errorf("%w: block table %d: %w", ErrIO, i, err)
		}
	}

	for i := len(blocks) - 1; i >= 0; i-- {
		if _, err := w.Write(blocks[i].data); err != nil {
			return fmt.Errorf("%w: block body %d: %w", ErrIO, i, err)
		}
	}

	return nil
}

func readBlockTable(r io.Reader, count int) ([]tableEntry, error) {
	entries := make([]tableEntry, 0, count)
	for i := 0; i < count; i++ {
		var raw [8]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("%w: table entry %d: %w", ErrInvalidBlock, i, err)
		}

		entry := tableEntry{
			magic: string(raw[:4]),
			// #nosec G115 -- sign is checked below.
			size: int32(binary.LittleEndian.Uint32(raw[4:])),
		}
		if entry.magic != MagicCOPY && entry.magic != MagicLZ4 {
			return nil, fmt.Errorf("%w: table entry %d: unknown magic %q", ErrInvalidBlock, i, entry.magic)
		}
		if entry.size < 0 {
			return nil, fmt.Errorf("%w: table entry %d: negative size %d", ErrInvalidBlock, i, entry.size)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func readBlockBody(r io.Reader, entry tableEntry) (*block, error) {
	data := make([]byte, entry.size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: %s body: %w", ErrInvalidBlock, entry.magic, err)
	}

	return &block{magic: entry.magic, data: data}, nil
}
