// Package errs defines the sentinel errors shared across tracto packages.
//
// Callers should match them with errors.Is; most call sites wrap them with
// fmt.Errorf("...: %w", ...) to add the offending index, key or path.
package errs

import "errors"

var (
	// ErrIndexOutOfRange is returned when a reconstruction index is outside
	// [0, streamline count).
	ErrIndexOutOfRange = errors.New("streamline index out of range")

	// ErrOffsetLengthMismatch is returned when supplied offsets do not satisfy
	// offsets[0] == 0 and offsets[i+1] == offsets[i] + lengths[i].
	ErrOffsetLengthMismatch = errors.New("offsets disagree with lengths")

	// ErrLayoutMismatch is returned when a data array does not fit its declared
	// layout, e.g. a row-major triples array whose scalar count is not a
	// multiple of 3.
	ErrLayoutMismatch = errors.New("data size does not fit declared layout")

	// ErrCorruptStore is returned when the three flat files of a spilled
	// collection disagree with each other (element counts or data size).
	ErrCorruptStore = errors.New("flat files are inconsistent")

	// ErrAttributeSizeMismatch is returned when a dps/dpp table does not have
	// exactly one value per streamline/point.
	ErrAttributeSizeMismatch = errors.New("attribute size mismatch")

	// ErrAttributeExists is returned when attaching an attribute under a key
	// that is already present without requesting overwrite.
	ErrAttributeExists = errors.New("attribute key already exists")

	// ErrUnsupportedFormat is returned for tractogram filenames whose extension
	// is not in the supported set.
	ErrUnsupportedFormat = errors.New("unsupported tractogram format")

	// ErrInvalidMagic is returned when an archive does not start with the
	// expected magic number.
	ErrInvalidMagic = errors.New("invalid archive magic number")

	// ErrInvalidHeader is returned when an archive header is truncated or
	// carries invalid field values.
	ErrInvalidHeader = errors.New("invalid archive header")

	// ErrInvalidIndex is returned when an archive index section is truncated
	// or fails its checksum.
	ErrInvalidIndex = errors.New("invalid archive index section")

	// ErrKeyTooLong is returned when a group key exceeds the maximum encodable
	// length.
	ErrKeyTooLong = errors.New("group key too long")

	// ErrDuplicateKey is returned when writing a group under a key that is
	// already present in the archive.
	ErrDuplicateKey = errors.New("group key already written")

	// ErrWriterClosed is returned when writing a group to a closed archive
	// writer.
	ErrWriterClosed = errors.New("archive writer already closed")

	// ErrChecksumMismatch is returned by the fetcher when a downloaded archive
	// is structurally valid but its digest does not match the expected one.
	ErrChecksumMismatch = errors.New("checksum verification failed")

	// ErrCorruptFetch is returned by the fetcher when the downloaded content is
	// not a valid archive at all.
	ErrCorruptFetch = errors.New("downloaded archive is corrupt")

	// ErrUnsupportedArchive is returned by the fetcher for dataset names that
	// are not zip archives.
	ErrUnsupportedArchive = errors.New("unsupported archive type")
)
