package archive

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/neurlab/tracto/endian"
	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
)

const (
	// magicNumber spells "TRX1" when the header is viewed as raw bytes.
	magicNumber uint32 = 'T' | 'R'<<8 | 'X'<<16 | '1'<<24

	formatVersion = 1

	headerSize = 32
	entrySize  = 72

	// maxKeyLen caps group keys; connection labels are short strings.
	maxKeyLen = 4096
)

var (
	engine = endian.GetLittleEndianEngine()

	// Index and names sections are checksummed with CRC32-Castagnoli.
	crcTable = crc32.MakeTable(crc32.Castagnoli)
)

// header is the fixed-size file header.
//
// Layout (32 bytes):
//
//	offset 0:  magic       uint32
//	offset 4:  version     uint8
//	offset 5:  dtype       uint8
//	offset 6:  compression uint8
//	offset 7:  reserved    uint8
//	offset 8:  groupCount  uint32
//	offset 12: indexCRC    uint32
//	offset 16: indexOffset uint64
//	offset 24: reserved    8 bytes
type header struct {
	dtype       format.DType
	compression format.CompressionType
	groupCount  uint32
	indexCRC    uint32
	indexOffset uint64
}

func (h header) encode() []byte {
	buf := make([]byte, headerSize)
	engine.PutUint32(buf[0:4], magicNumber)
	buf[4] = formatVersion
	buf[5] = byte(h.dtype)
	buf[6] = byte(h.compression)
	engine.PutUint32(buf[8:12], h.groupCount)
	engine.PutUint32(buf[12:16], h.indexCRC)
	engine.PutUint64(buf[16:24], h.indexOffset)

	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, fmt.Errorf("%w: %d bytes is shorter than the %d-byte header",
			errs.ErrInvalidHeader, len(buf), headerSize)
	}
	if engine.Uint32(buf[0:4]) != magicNumber {
		return header{}, errs.ErrInvalidMagic
	}
	if buf[4] != formatVersion {
		return header{}, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidHeader, buf[4])
	}

	h := header{
		dtype:       format.DType(buf[5]),
		compression: format.CompressionType(buf[6]),
		groupCount:  engine.Uint32(buf[8:12]),
		indexCRC:    engine.Uint32(buf[12:16]),
		indexOffset: engine.Uint64(buf[16:24]),
	}
	if h.dtype.Size() == 0 {
		return header{}, fmt.Errorf("%w: unknown dtype 0x%02x", errs.ErrInvalidHeader, buf[5])
	}

	return h, nil
}

// indexEntry records one group's members inside the payload section.
// Offsets are absolute file positions; sizes are compressed byte counts.
type indexEntry struct {
	keyHash       uint64
	dataOffset    uint64
	dataLen       uint64
	offsetsOffset uint64
	offsetsLen    uint64
	lengthsOffset uint64
	lengthsLen    uint64
	count         uint32 // streamlines in the group
	pointCount    uint64 // total points in the group
	ndim          uint8  // 1 = flat scalars, 2 = point rows
}

func (e indexEntry) append(buf []byte) []byte {
	buf = engine.AppendUint64(buf, e.keyHash)
	buf = engine.AppendUint64(buf, e.dataOffset)
	buf = engine.AppendUint64(buf, e.dataLen)
	buf = engine.AppendUint64(buf, e.offsetsOffset)
	buf = engine.AppendUint64(buf, e.offsetsLen)
	buf = engine.AppendUint64(buf, e.lengthsOffset)
	buf = engine.AppendUint64(buf, e.lengthsLen)
	buf = engine.AppendUint32(buf, e.count)
	buf = engine.AppendUint64(buf, e.pointCount)
	buf = append(buf, e.ndim, 0, 0, 0)

	return buf
}

func decodeEntry(buf []byte) (indexEntry, error) {
	if len(buf) < entrySize {
		return indexEntry{}, fmt.Errorf("%w: truncated index entry", errs.ErrInvalidIndex)
	}

	e := indexEntry{
		keyHash:       engine.Uint64(buf[0:8]),
		dataOffset:    engine.Uint64(buf[8:16]),
		dataLen:       engine.Uint64(buf[16:24]),
		offsetsOffset: engine.Uint64(buf[24:32]),
		offsetsLen:    engine.Uint64(buf[32:40]),
		lengthsOffset: engine.Uint64(buf[40:48]),
		lengthsLen:    engine.Uint64(buf[48:56]),
		count:         engine.Uint32(buf[56:60]),
		pointCount:    engine.Uint64(buf[60:68]),
		ndim:          buf[68],
	}
	if e.ndim != 1 && e.ndim != 2 {
		return indexEntry{}, fmt.Errorf("%w: data ndim %d", errs.ErrInvalidIndex, e.ndim)
	}

	return e, nil
}

func (e indexEntry) layout() format.Layout {
	if e.ndim == 2 {
		return format.LayoutRowMajorTriples
	}

	return format.LayoutFlat
}

func appendKey(buf []byte, key string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(key)))
	return append(buf, key...)
}

func readKey(buf []byte) (string, int, error) {
	length, n := binary.Uvarint(buf)
	if n <= 0 || length > maxKeyLen || uint64(len(buf)-n) < length {
		return "", 0, fmt.Errorf("%w: malformed key in names section", errs.ErrInvalidIndex)
	}

	return string(buf[n : n+int(length)]), n + int(length), nil
}

func sectionCRC(indexAndNames []byte) uint32 {
	return crc32.Checksum(indexAndNames, crcTable)
}
