package streamline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/neurlab/tracto/errs"
)

// supportedExtensions is the set of tractogram formats handled by the
// external loaders this module collaborates with.
var supportedExtensions = map[string]struct{}{
	".trk": {},
	".tck": {},
	".vtk": {},
	".fib": {},
	".dpy": {},
}

// IsSupportedFormat reports whether the filename has a supported tractogram
// extension.
func IsSupportedFormat(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SameFormat verifies that both filenames use the same supported tractogram
// format. It is a usage check performed before any data is touched.
func SameFormat(path1, path2 string) error {
	if !IsSupportedFormat(path1) {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, path1)
	}
	if !IsSupportedFormat(path2) {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, path2)
	}

	ext1 := strings.ToLower(filepath.Ext(path1))
	ext2 := strings.ToLower(filepath.Ext(path2))
	if ext1 != ext2 {
		return fmt.Errorf("%w: %q and %q must use the same format", errs.ErrUnsupportedFormat, path1, path2)
	}

	return nil
}
