package archive

import (
	"fmt"

	"github.com/neurlab/tracto/compress"
	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
	"github.com/neurlab/tracto/internal/hash"
	"github.com/neurlab/tracto/internal/mmap"
	"github.com/neurlab/tracto/ragged"
	"github.com/neurlab/tracto/streamline"
)

// Reader provides random access to the groups of a finalized archive. All
// sections are validated up front; ReconstructGroup only touches the members
// of the requested group.
//
// Reader is safe for concurrent use once opened.
type Reader struct {
	data    []byte
	mapping *mmap.Mapping // non-nil when the reader owns a file mapping
	hdr     header
	codec   compress.Codec
	entries []indexEntry
	keys    []string
	byKey   map[string]int
}

// Open memory-maps the archive at path. Close releases the mapping.
func Open(path string) (*Reader, error) {
	mapping, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("map archive file: %w", err)
	}

	r, err := NewReader(mapping.Bytes())
	if err != nil {
		mapping.Close()
		return nil, err
	}
	r.mapping = mapping

	return r, nil
}

// NewReader parses an archive held in memory. The buffer must stay valid for
// the lifetime of the reader.
func NewReader(data []byte) (*Reader, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(hdr.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHeader, err)
	}

	// Overflow-safe form: offset+size may wrap for crafted offsets near
	// MaxUint64, so never add an untrusted offset to an untrusted size.
	indexSize := uint64(hdr.groupCount) * entrySize
	if hdr.indexOffset < headerSize || hdr.indexOffset > uint64(len(data)) ||
		indexSize > uint64(len(data))-hdr.indexOffset {
		return nil, fmt.Errorf("%w: index section at offset %d, size %d outside %d-byte file",
			errs.ErrInvalidIndex, hdr.indexOffset, indexSize, len(data))
	}

	tail := data[hdr.indexOffset:]
	if crc := sectionCRC(tail); crc != hdr.indexCRC {
		return nil, fmt.Errorf("%w: checksum 0x%08x, header says 0x%08x",
			errs.ErrInvalidIndex, crc, hdr.indexCRC)
	}

	r := &Reader{
		data:    data,
		hdr:     hdr,
		codec:   codec,
		entries: make([]indexEntry, 0, hdr.groupCount),
		keys:    make([]string, 0, hdr.groupCount),
		byKey:   make(map[string]int, hdr.groupCount),
	}

	for i := range int(hdr.groupCount) {
		entry, err := decodeEntry(tail[i*entrySize:])
		if err != nil {
			return nil, err
		}
		if err := r.checkEntryBounds(entry); err != nil {
			return nil, err
		}
		r.entries = append(r.entries, entry)
	}

	names := tail[indexSize:]
	for i := range int(hdr.groupCount) {
		key, n, err := readKey(names)
		if err != nil {
			return nil, err
		}
		if hash.GroupID(key) != r.entries[i].keyHash {
			return nil, fmt.Errorf("%w: key %q does not match its index hash",
				errs.ErrInvalidIndex, key)
		}
		r.keys = append(r.keys, key)
		r.byKey[key] = i
		names = names[n:]
	}

	return r, nil
}

// Close releases the file mapping, if any. Collections already reconstructed
// remain valid; they never alias the mapping.
func (r *Reader) Close() error {
	if r.mapping == nil {
		return nil
	}

	err := r.mapping.Close()
	r.mapping = nil

	return err
}

// DType returns the storage width the archive was written with.
func (r *Reader) DType() format.DType {
	return r.hdr.dtype
}

// Compression returns the codec the archive's members are compressed with.
func (r *Reader) Compression() format.CompressionType {
	return r.hdr.compression
}

// Keys returns the group keys in the order they were written. The returned
// slice is shared; callers must not modify it.
func (r *Reader) Keys() []string {
	return r.keys
}

// HasKey reports whether the archive holds a group under key.
func (r *Reader) HasKey(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// GroupCount returns the number of groups in the archive.
func (r *Reader) GroupCount() int {
	return len(r.entries)
}

// Reconstruct rebuilds the streamlines of an ungrouped archive, one written
// under DefaultGroupKey rather than per-connection keys.
func (r *Reader) Reconstruct() (*streamline.Collection, error) {
	return r.ReconstructGroup(DefaultGroupKey)
}

// ReconstructGroup rebuilds the streamlines stored under key.
//
// A key absent from the archive yields an empty collection and a nil error;
// sparse stores are expected to lack most connection labels. The same holds
// for a group whose data member was dropped at write time even though its
// index entry records points.
func (r *Reader) ReconstructGroup(key string) (*streamline.Collection, error) {
	i, ok := r.byKey[key]
	if !ok {
		return streamline.NewCollection(nil), nil
	}

	entry := r.entries[i]
	if entry.dataLen == 0 && entry.pointCount > 0 {
		return streamline.NewCollection(nil), nil
	}

	offsetsRaw, err := r.member(entry.offsetsOffset, entry.offsetsLen)
	if err != nil {
		return nil, fmt.Errorf("group %q offsets: %w", key, err)
	}
	if uint64(len(offsetsRaw)) != uint64(entry.count)*8 {
		return nil, fmt.Errorf("%w: group %q offsets member holds %d bytes for %d streamlines",
			errs.ErrCorruptStore, key, len(offsetsRaw), entry.count)
	}

	lengthsRaw, err := r.member(entry.lengthsOffset, entry.lengthsLen)
	if err != nil {
		return nil, fmt.Errorf("group %q lengths: %w", key, err)
	}
	if uint64(len(lengthsRaw)) != uint64(entry.count)*4 {
		return nil, fmt.Errorf("%w: group %q lengths member holds %d bytes for %d streamlines",
			errs.ErrCorruptStore, key, len(lengthsRaw), entry.count)
	}

	dataRaw, err := r.member(entry.dataOffset, entry.dataLen)
	if err != nil {
		return nil, fmt.Errorf("group %q data: %w", key, err)
	}
	if uint64(len(dataRaw)) != entry.pointCount*3*uint64(r.hdr.dtype.Size()) {
		return nil, fmt.Errorf("%w: group %q data member holds %d bytes for %d points",
			errs.ErrCorruptStore, key, len(dataRaw), entry.pointCount)
	}

	offsets := decodeInt64s(offsetsRaw)
	lengths := decodeInt32s(lengthsRaw)

	c, err := reconstructGroup(r.hdr.dtype, dataRaw, offsets, lengths, entry.layout())
	if err != nil {
		return nil, fmt.Errorf("%w: group %q: %w", errs.ErrCorruptStore, key, err)
	}

	return c, nil
}

func (r *Reader) member(offset, size uint64) ([]byte, error) {
	if offset < headerSize || offset > r.hdr.indexOffset || size > r.hdr.indexOffset-offset {
		return nil, fmt.Errorf("%w: member at offset %d, size %d outside payload section",
			errs.ErrInvalidIndex, offset, size)
	}

	raw, err := r.codec.Decompress(r.data[offset : offset+size])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptStore, err)
	}

	return raw, nil
}

func reconstructGroup(dtype format.DType, dataRaw []byte, offsets []int64, lengths []int32, layout format.Layout) (*streamline.Collection, error) {
	if dtype == format.DTypeFloat64 {
		return reconstruct(decodeFloat64s(dataRaw), offsets, lengths, layout)
	}

	return reconstruct(decodeFloat32s(dataRaw), offsets, lengths, layout)
}

func reconstruct[T ragged.Scalar](data []T, offsets []int64, lengths []int32, layout format.Layout) (*streamline.Collection, error) {
	enc, err := ragged.New(data, offsets, lengths, layout)
	if err != nil {
		return nil, err
	}

	return enc.Reconstruct(nil)
}

func (r *Reader) checkEntryBounds(entry indexEntry) error {
	for _, member := range [][2]uint64{
		{entry.dataOffset, entry.dataLen},
		{entry.offsetsOffset, entry.offsetsLen},
		{entry.lengthsOffset, entry.lengthsLen},
	} {
		offset, size := member[0], member[1]
		if offset < headerSize || offset > r.hdr.indexOffset || size > r.hdr.indexOffset-offset {
			return fmt.Errorf("%w: member at offset %d, size %d outside payload section",
				errs.ErrInvalidIndex, offset, size)
		}
	}

	return nil
}
