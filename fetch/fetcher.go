// Package fetch downloads and unpacks reference tractography datasets into a
// user-writable home directory.
//
// Datasets are named zip archives addressed by their md5 digest: the archive
// for checksum "c190e6…" lives at <base URL>/c1/90e6…. An archive is
// downloaded once, digest-verified, and extracted next to the zip under a
// directory named after the archive (minus the .zip suffix). A dataset whose
// extraction directory already exists is never re-fetched.
//
// Errors are terminal; the fetcher does not retry.
package fetch

import (
	"archive/zip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/internal/options"
)

// DefaultBaseURL is the content-addressed store datasets are served from.
const DefaultBaseURL = "https://scil.usherbrooke.ca/scil_test_data/dvc-store/files/md5"

// HomeEnvVar overrides the dataset home directory when set.
const HomeEnvVar = "TRACTO_HOME"

type config struct {
	home    string
	baseURL string
	client  *http.Client
}

// Option configures New.
type Option = options.Option[*config]

// WithHome places datasets under dir instead of the default home directory.
func WithHome(dir string) Option {
	return options.NoError(func(cfg *config) {
		cfg.home = dir
	})
}

// WithBaseURL points the fetcher at a different content-addressed store.
func WithBaseURL(baseURL string) Option {
	return options.New(func(cfg *config) error {
		if baseURL == "" {
			return fmt.Errorf("base URL must not be empty")
		}
		cfg.baseURL = strings.TrimRight(baseURL, "/")

		return nil
	})
}

// WithHTTPClient substitutes the http.Client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return options.NoError(func(cfg *config) {
		cfg.client = client
	})
}

// Fetcher downloads datasets into its home directory.
type Fetcher struct {
	home    string
	baseURL string
	client  *http.Client
}

// New builds a Fetcher. The home directory defaults to $TRACTO_HOME, or
// ~/.tracto when the variable is unset.
func New(opts ...Option) (*Fetcher, error) {
	cfg := &config{
		baseURL: DefaultBaseURL,
		client:  http.DefaultClient,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.home == "" {
		if env := os.Getenv(HomeEnvVar); env != "" {
			cfg.home = env
		} else {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home directory: %w", err)
			}
			cfg.home = filepath.Join(userHome, ".tracto")
		}
	}

	return &Fetcher{
		home:    cfg.home,
		baseURL: cfg.baseURL,
		client:  cfg.client,
	}, nil
}

// Home returns the directory datasets are downloaded and extracted into.
func (f *Fetcher) Home() string {
	return f.home
}

// DatasetDir returns the directory a named dataset extracts into.
func (f *Fetcher) DatasetDir(name string) string {
	return filepath.Join(f.home, strings.TrimSuffix(name, ".zip"))
}

// Fetch downloads and extracts the named datasets from files, a map of zip
// archive names to their md5 checksums. With no keys, every dataset in files
// is fetched, in name order. A dataset already extracted on disk is skipped.
//
// A download whose digest does not match yields errs.ErrChecksumMismatch
// when the payload still parses as a zip archive, and errs.ErrCorruptFetch
// when it does not.
func (f *Fetcher) Fetch(ctx context.Context, files map[string]string, keys ...string) error {
	if len(keys) == 0 {
		keys = make([]string, 0, len(files))
		for name := range files {
			keys = append(keys, name)
		}
		sort.Strings(keys)
	}

	if err := os.MkdirAll(f.home, 0o755); err != nil {
		return fmt.Errorf("create dataset home: %w", err)
	}

	for _, name := range keys {
		checksum, ok := files[name]
		if !ok {
			return fmt.Errorf("unknown dataset %q", name)
		}
		if err := f.fetchOne(ctx, name, checksum); err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}
	}

	return nil
}

func (f *Fetcher) fetchOne(ctx context.Context, name, checksum string) error {
	if !strings.HasSuffix(name, ".zip") {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedArchive, name)
	}

	destDir := f.DatasetDir(name)
	if info, err := os.Stat(destDir); err == nil && info.IsDir() {
		return nil
	}

	zipPath := filepath.Join(f.home, name)
	if err := f.download(ctx, f.datasetURL(checksum), zipPath); err != nil {
		return err
	}

	if err := verifyChecksum(zipPath, checksum); err != nil {
		return err
	}

	return extractZip(zipPath, destDir)
}

func (f *Fetcher) datasetURL(checksum string) string {
	return f.baseURL + "/" + checksum[:2] + "/" + checksum[2:]
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)

		return fmt.Errorf("write %s: %w", dest, err)
	}

	return out.Close()
}

func verifyChecksum(zipPath, want string) error {
	file, err := os.Open(zipPath)
	if err != nil {
		return err
	}
	defer file.Close()

	digest := md5.New()
	if _, err := io.Copy(digest, file); err != nil {
		return err
	}

	got := hex.EncodeToString(digest.Sum(nil))
	if got == want {
		return nil
	}

	// Distinguish a wrong file from a truncated or mangled one.
	if _, err := zip.OpenReader(zipPath); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCorruptFetch, err)
	}

	return fmt.Errorf("%w: got %s, want %s", errs.ErrChecksumMismatch, got, want)
}

// extractZip unpacks the archive into destDir. When every entry lives under
// one shared root directory, that level is stripped so datasets packed as
// "bundle/..." and as bare files land in the same place.
func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCorruptFetch, err)
	}
	defer r.Close()

	r.RegisterDecompressor(zip.Deflate, func(src io.Reader) io.ReadCloser {
		return flate.NewReader(src)
	})

	strip := sharedRoot(&r.Reader)

	for _, entry := range r.File {
		name := strings.TrimPrefix(entry.Name, strip)
		if name == "" {
			continue
		}
		if err := extractEntry(entry, destDir, name); err != nil {
			return err
		}
	}

	return nil
}

// sharedRoot returns the "root/" prefix common to every entry, or "" when
// the entries do not share one.
func sharedRoot(r *zip.Reader) string {
	if len(r.File) == 0 {
		return ""
	}

	root, _, found := strings.Cut(r.File[0].Name, "/")
	if !found {
		return ""
	}
	root += "/"

	for _, entry := range r.File {
		if !strings.HasPrefix(entry.Name, root) {
			return ""
		}
	}

	return root
}

func extractEntry(entry *zip.File, destDir, name string) error {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: entry %q escapes the extraction directory",
			errs.ErrCorruptFetch, entry.Name)
	}
	target := filepath.Join(destDir, cleaned)

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCorruptFetch, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}

	return dst.Close()
}
