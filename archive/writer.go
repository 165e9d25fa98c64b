package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/neurlab/tracto/compress"
	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
	"github.com/neurlab/tracto/internal/conv"
	"github.com/neurlab/tracto/internal/hash"
	"github.com/neurlab/tracto/internal/options"
	"github.com/neurlab/tracto/internal/pool"
	"github.com/neurlab/tracto/ragged"
	"github.com/neurlab/tracto/streamline"
)

type writerConfig struct {
	dtype       format.DType
	compression format.CompressionType
	layout      format.Layout
}

// Option configures Create and NewWriter.
type Option = options.Option[*writerConfig]

// WithDType selects the storage width of point coordinates. The default is
// float32.
func WithDType(dtype format.DType) Option {
	return options.New(func(cfg *writerConfig) error {
		if dtype.Size() == 0 {
			return fmt.Errorf("invalid dtype: %s", dtype)
		}
		cfg.dtype = dtype

		return nil
	})
}

// WithCompression selects the codec applied to every member payload. The
// default is zstd.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(cfg *writerConfig) error {
		if _, err := compress.GetCodec(compression); err != nil {
			return err
		}
		cfg.compression = compression

		return nil
	})
}

// WithLayout declares the logical shape the data members are recorded as.
// Both layouts carry identical bytes; the recorded shape is what readers
// report back. The default is the flat scalar layout.
func WithLayout(layout format.Layout) Option {
	return options.New(func(cfg *writerConfig) error {
		switch layout {
		case format.LayoutFlat, format.LayoutRowMajorTriples:
		default:
			return fmt.Errorf("invalid layout: %s", layout)
		}
		cfg.layout = layout

		return nil
	})
}

// Writer builds an archive group by group. Payload members stream to the
// destination as each group is written; the index, names section and final
// header are written on Close.
//
// Writer is not safe for concurrent use.
type Writer struct {
	dst   io.WriteSeeker
	file  *os.File // non-nil when the writer owns the destination
	codec compress.Codec
	cfg   *writerConfig

	pos     uint64
	entries []indexEntry
	names   []byte
	seen    map[string]struct{}
	closed  bool
}

// Create creates path (truncating any existing file) and returns a Writer
// that owns it. Close finalizes and closes the file.
func Create(path string, opts ...Option) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}

	w, err := NewWriter(file, opts...)
	if err != nil {
		file.Close()
		os.Remove(path)

		return nil, err
	}
	w.file = file

	return w, nil
}

// NewWriter returns a Writer targeting dst. The destination must be empty;
// the header is rewritten in place on Close.
func NewWriter(dst io.WriteSeeker, opts ...Option) (*Writer, error) {
	cfg := &writerConfig{
		dtype:       format.DTypeFloat32,
		compression: format.CompressionZstd,
		layout:      format.LayoutFlat,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		dst:   dst,
		codec: codec,
		cfg:   cfg,
		seen:  make(map[string]struct{}),
	}

	// Placeholder header so group payloads can stream right after it.
	if err := w.writeAll(make([]byte, headerSize)); err != nil {
		return nil, fmt.Errorf("write header placeholder: %w", err)
	}

	return w, nil
}

// DefaultGroupKey is the group key of an archive used as a plain store of a
// single collection, without per-connection grouping.
const DefaultGroupKey = "streamlines"

// Write appends the collection under DefaultGroupKey, for archives holding a
// single ungrouped collection.
func (w *Writer) Write(c *streamline.Collection) error {
	return w.WriteGroup(DefaultGroupKey, c)
}

// WriteGroup flattens the collection and appends it under key. Keys must be
// unique within the archive; an empty collection is recorded as a valid
// group with zero streamlines.
func (w *Writer) WriteGroup(key string, c *streamline.Collection) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if len(key) == 0 {
		return fmt.Errorf("group key must not be empty")
	}
	if len(key) > maxKeyLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", errs.ErrKeyTooLong, len(key), maxKeyLen)
	}
	if _, ok := w.seen[key]; ok {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateKey, key)
	}

	count, err := conv.IntToUint32(c.Len())
	if err != nil {
		return fmt.Errorf("group %q: %w", key, err)
	}

	entry := indexEntry{
		keyHash:    hash.GroupID(key),
		count:      count,
		pointCount: uint64(c.TotalPoints()),
		ndim:       1,
	}
	if w.cfg.layout == format.LayoutRowMajorTriples {
		entry.ndim = 2
	}

	buf := pool.GetMemberBuffer()
	defer pool.PutMemberBuffer(buf)

	switch w.cfg.dtype {
	case format.DTypeFloat32:
		enc, err := ragged.Encode[float32](c)
		if err != nil {
			return fmt.Errorf("group %q: %w", key, err)
		}
		buf.B = appendFloat32s(buf.B, enc.Data)
		if entry.dataOffset, entry.dataLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
		buf.Reset()
		buf.B = appendInt64s(buf.B, enc.Offsets)
		if entry.offsetsOffset, entry.offsetsLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
		buf.Reset()
		buf.B = appendInt32s(buf.B, enc.Lengths)
		if entry.lengthsOffset, entry.lengthsLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
	case format.DTypeFloat64:
		enc, err := ragged.Encode[float64](c)
		if err != nil {
			return fmt.Errorf("group %q: %w", key, err)
		}
		buf.B = appendFloat64s(buf.B, enc.Data)
		if entry.dataOffset, entry.dataLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
		buf.Reset()
		buf.B = appendInt64s(buf.B, enc.Offsets)
		if entry.offsetsOffset, entry.offsetsLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
		buf.Reset()
		buf.B = appendInt32s(buf.B, enc.Lengths)
		if entry.lengthsOffset, entry.lengthsLen, err = w.writeMember(buf.B); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid dtype: %s", w.cfg.dtype)
	}

	w.entries = append(w.entries, entry)
	w.names = appendKey(w.names, key)
	w.seen[key] = struct{}{}

	return nil
}

// GroupCount returns the number of groups written so far.
func (w *Writer) GroupCount() int {
	return len(w.entries)
}

// Close writes the index and names sections, rewrites the header with their
// location and checksum, and closes the destination if the writer owns it.
// Further WriteGroup calls fail with errs.ErrWriterClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	indexOffset := w.pos

	tail := make([]byte, 0, len(w.entries)*entrySize+len(w.names))
	for _, entry := range w.entries {
		tail = entry.append(tail)
	}
	tail = append(tail, w.names...)

	if err := w.writeAll(tail); err != nil {
		w.closeFile()
		return fmt.Errorf("write archive index: %w", err)
	}

	hdr := header{
		dtype:       w.cfg.dtype,
		compression: w.cfg.compression,
		groupCount:  uint32(len(w.entries)),
		indexCRC:    sectionCRC(tail),
		indexOffset: indexOffset,
	}

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		w.closeFile()
		return fmt.Errorf("seek to archive header: %w", err)
	}
	if _, err := w.dst.Write(hdr.encode()); err != nil {
		w.closeFile()
		return fmt.Errorf("write archive header: %w", err)
	}

	return w.closeFile()
}

func (w *Writer) writeMember(raw []byte) (offset, size uint64, err error) {
	compressed, err := w.codec.Compress(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("compress member: %w", err)
	}

	offset = w.pos
	if err := w.writeAll(compressed); err != nil {
		return 0, 0, fmt.Errorf("write member: %w", err)
	}

	return offset, uint64(len(compressed)), nil
}

func (w *Writer) writeAll(data []byte) error {
	n, err := w.dst.Write(data)
	w.pos += uint64(n)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}

	return nil
}

func (w *Writer) closeFile() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil

	return err
}
