package streamline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kshedden/gonpy"

	"github.com/neurlab/tracto/errs"
)

// SetPerStreamline attaches a per-streamline (dps) attribute table under key.
// values must hold exactly one scalar per streamline. An existing key is
// rejected unless overwrite is set. On error the collection is unmodified.
func (c *Collection) SetPerStreamline(key string, values []float64, overwrite bool) error {
	if len(values) != c.Len() {
		return fmt.Errorf("%w: dps %q expects one value per streamline (%d) but got %d",
			errs.ErrAttributeSizeMismatch, key, c.Len(), len(values))
	}
	if _, exists := c.perStreamline[key]; exists && !overwrite {
		return fmt.Errorf("%w: dps %q", errs.ErrAttributeExists, key)
	}

	if c.perStreamline == nil {
		c.perStreamline = make(map[string][]float64)
	}
	c.perStreamline[key] = values

	return nil
}

// SetPerPoint attaches a per-point (dpp) attribute table under key.
// values must hold exactly one scalar per point of the whole tractogram. An
// existing key is rejected unless overwrite is set. On error the collection
// is unmodified.
func (c *Collection) SetPerPoint(key string, values []float64, overwrite bool) error {
	if len(values) != c.TotalPoints() {
		return fmt.Errorf("%w: dpp %q expects one value per point (%d) but got %d",
			errs.ErrAttributeSizeMismatch, key, c.TotalPoints(), len(values))
	}
	if _, exists := c.perPoint[key]; exists && !overwrite {
		return fmt.Errorf("%w: dpp %q", errs.ErrAttributeExists, key)
	}

	if c.perPoint == nil {
		c.perPoint = make(map[string][]float64)
	}
	c.perPoint[key] = values

	return nil
}

// PerStreamline returns the dps table for key, or false if absent.
func (c *Collection) PerStreamline(key string) ([]float64, bool) {
	values, ok := c.perStreamline[key]
	return values, ok
}

// PerPoint returns the dpp table for key, or false if absent.
func (c *Collection) PerPoint(key string) ([]float64, bool) {
	values, ok := c.perPoint[key]
	return values, ok
}

// PerStreamlineKeys returns the attached dps keys in unspecified order.
func (c *Collection) PerStreamlineKeys() []string {
	keys := make([]string, 0, len(c.perStreamline))
	for key := range c.perStreamline {
		keys = append(keys, key)
	}

	return keys
}

// PerPointKeys returns the attached dpp keys in unspecified order.
func (c *Collection) PerPointKeys() []string {
	keys := make([]string, 0, len(c.perPoint))
	for key := range c.perPoint {
		keys = append(keys, key)
	}

	return keys
}

// LoadAttribute reads a scalar attribute table from a .npy or whitespace
// separated .txt file. Multi-dimensional npy arrays are squeezed to one
// dimension; a table of any other shape is rejected.
func LoadAttribute(path string) ([]float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return loadNpyAttribute(path)
	case ".txt":
		return loadTxtAttribute(path)
	default:
		return nil, fmt.Errorf("attribute file %q: expected .npy or .txt", path)
	}
}

func loadNpyAttribute(path string) ([]float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute file %q: %w", path, err)
	}

	// Squeeze: all but one dimension must be 1.
	effective := 1
	for _, dim := range r.Shape {
		if dim > 1 {
			if effective > 1 {
				return nil, fmt.Errorf("attribute file %q: shape %v is not one-dimensional", path, r.Shape)
			}
			effective = dim
		}
	}

	switch r.Dtype {
	case "f8":
		return r.GetFloat64()
	case "f4":
		values32, err := r.GetFloat32()
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(values32))
		for i, v := range values32 {
			values[i] = float64(v)
		}
		return values, nil
	case "i8":
		ints, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(ints))
		for i, v := range ints {
			values[i] = float64(v)
		}
		return values, nil
	case "i4":
		ints, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(ints))
		for i, v := range ints {
			values[i] = float64(v)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("attribute file %q: unsupported dtype %q", path, r.Dtype)
	}
}

func loadTxtAttribute(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute file %q: %w", path, err)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("attribute file %q: %w", path, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read attribute file %q: %w", path, err)
	}

	return values, nil
}
