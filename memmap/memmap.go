package memmap

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
	"github.com/neurlab/tracto/internal/conv"
	"github.com/neurlab/tracto/internal/mmap"
	"github.com/neurlab/tracto/internal/options"
	"github.com/neurlab/tracto/ragged"
	"github.com/neurlab/tracto/streamline"
)

const (
	dataFileName    = "data.dat"
	offsetsFileName = "offsets.dat"
	lengthsFileName = "lengths.dat"
)

// Paths locates the three flat files of a spilled collection.
type Paths struct {
	Data    string
	Offsets string
	Lengths string
}

type config struct {
	dtype     format.DType
	parentDir string
}

// Option configures Spill and Load.
type Option = options.Option[*config]

// WithDType selects the storage width of point coordinates. The default is
// float32. Load must be given the same dtype the files were spilled with.
func WithDType(dtype format.DType) Option {
	return options.New(func(cfg *config) error {
		if dtype.Size() == 0 {
			return fmt.Errorf("invalid dtype: %s", dtype)
		}
		cfg.dtype = dtype

		return nil
	})
}

// WithParentDir places the scoped temporary directory under dir instead of
// the system default, e.g. on a node-local scratch disk.
func WithParentDir(dir string) Option {
	return options.NoError(func(cfg *config) {
		cfg.parentDir = dir
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{dtype: format.DTypeFloat32}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Scope owns the temporary directory holding a spilled collection.
type Scope struct {
	dir      string
	paths    Paths
	released atomic.Bool
}

// Paths returns the locations of the data, offsets and lengths files.
func (s *Scope) Paths() Paths {
	return s.paths
}

// Dir returns the scoped temporary directory.
func (s *Scope) Dir() string {
	return s.dir
}

// Close deletes the backing files and their directory. It is idempotent;
// only the first call performs the removal.
func (s *Scope) Close() error {
	if s.released.Swap(true) {
		return nil
	}

	return os.RemoveAll(s.dir)
}

// Spill externalizes the collection's flat encoding into a freshly created
// scoped temporary directory, writing each array through its own write-mode
// mapping. The collection is not mutated. On error no directory is left
// behind.
func Spill(c *streamline.Collection, opts ...Option) (*Scope, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(cfg.parentDir, "tracto-spill-*")
	if err != nil {
		return nil, fmt.Errorf("create spill directory: %w", err)
	}

	scope := &Scope{
		dir: dir,
		paths: Paths{
			Data:    filepath.Join(dir, dataFileName),
			Offsets: filepath.Join(dir, offsetsFileName),
			Lengths: filepath.Join(dir, lengthsFileName),
		},
	}

	if err := writeFlatFiles(c, scope.paths, cfg.dtype); err != nil {
		scope.Close()
		return nil, err
	}

	return scope, nil
}

func writeFlatFiles(c *streamline.Collection, paths Paths, dtype format.DType) error {
	dataMap, err := mmap.Create(paths.Data, c.TotalPoints()*3*dtype.Size())
	if err != nil {
		return fmt.Errorf("map %s: %w", dataFileName, err)
	}
	defer dataMap.Close()

	offsetsMap, err := mmap.Create(paths.Offsets, c.Len()*8)
	if err != nil {
		return fmt.Errorf("map %s: %w", offsetsFileName, err)
	}
	defer offsetsMap.Close()

	lengthsMap, err := mmap.Create(paths.Lengths, c.Len()*4)
	if err != nil {
		return fmt.Errorf("map %s: %w", lengthsFileName, err)
	}
	defer lengthsMap.Close()

	offsets := conv.BytesToInt64s(offsetsMap.Bytes())
	lengths := conv.BytesToInt32s(lengthsMap.Bytes())

	// Encode straight into the mappings; nothing is buffered in between.
	switch dtype {
	case format.DTypeFloat32:
		err = fillData(conv.BytesToFloat32s(dataMap.Bytes()), offsets, lengths, c)
	case format.DTypeFloat64:
		err = fillData(conv.BytesToFloat64s(dataMap.Bytes()), offsets, lengths, c)
	default:
		return fmt.Errorf("invalid dtype: %s", dtype)
	}
	if err != nil {
		return err
	}

	if err := dataMap.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", dataFileName, err)
	}
	if err := offsetsMap.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", offsetsFileName, err)
	}
	if err := lengthsMap.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", lengthsFileName, err)
	}

	return nil
}

func fillData[T ragged.Scalar](data []T, offsets []int64, lengths []int32, c *streamline.Collection) error {
	var offset int64
	pos := 0
	for i, s := range c.All() {
		length, err := conv.IntToInt32(len(s))
		if err != nil {
			return fmt.Errorf("streamline %d: %w", i, err)
		}
		offsets[i] = offset
		lengths[i] = length
		offset += int64(len(s))
		for _, p := range s {
			data[pos] = T(p[0])
			data[pos+1] = T(p[1])
			data[pos+2] = T(p[2])
			pos += 3
		}
	}

	return nil
}

// Load reconstructs streamlines from a spilled file triple.
//
// All three files are opened through read-only mappings and validated
// against each other: offsets and lengths must hold the same element count
// and data must hold exactly 3 scalars per point they describe. A nil
// indices reconstructs everything in storage order; otherwise the result
// follows the given order, with repetition allowed, failing on any index
// outside the stored range.
//
// Load never mutates the backing files, so any number of concurrent callers
// may share them.
func Load(paths Paths, indices []int, opts ...Option) (*streamline.Collection, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	dataMap, err := mmap.Open(paths.Data)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", paths.Data, err)
	}
	defer dataMap.Close()

	offsetsMap, err := mmap.Open(paths.Offsets)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", paths.Offsets, err)
	}
	defer offsetsMap.Close()

	lengthsMap, err := mmap.Open(paths.Lengths)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", paths.Lengths, err)
	}
	defer lengthsMap.Close()

	if offsetsMap.Size()%8 != 0 {
		return nil, fmt.Errorf("%w: offsets file size %d is not a whole number of int64",
			errs.ErrCorruptStore, offsetsMap.Size())
	}
	if lengthsMap.Size()%4 != 0 {
		return nil, fmt.Errorf("%w: lengths file size %d is not a whole number of int32",
			errs.ErrCorruptStore, lengthsMap.Size())
	}
	if dataMap.Size()%cfg.dtype.Size() != 0 {
		return nil, fmt.Errorf("%w: data file size %d is not a whole number of %s",
			errs.ErrCorruptStore, dataMap.Size(), cfg.dtype)
	}

	offsets := conv.BytesToInt64s(offsetsMap.Bytes())
	lengths := conv.BytesToInt32s(lengthsMap.Bytes())

	switch cfg.dtype {
	case format.DTypeFloat32:
		return reconstruct(conv.BytesToFloat32s(dataMap.Bytes()), offsets, lengths, indices)
	case format.DTypeFloat64:
		return reconstruct(conv.BytesToFloat64s(dataMap.Bytes()), offsets, lengths, indices)
	default:
		return nil, fmt.Errorf("invalid dtype: %s", cfg.dtype)
	}
}

func reconstruct[T ragged.Scalar](data []T, offsets []int64, lengths []int32, indices []int) (*streamline.Collection, error) {
	enc, err := ragged.New(data, offsets, lengths, format.LayoutFlat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptStore, err)
	}

	return enc.Reconstruct(indices)
}
