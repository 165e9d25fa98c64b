package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurlab/tracto/errs"
)

// buildZip packs name/content pairs into an in-memory zip archive.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func checksumOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// serveStore serves payloads at their content-addressed paths.
func serveStore(t *testing.T, payloads map[string][]byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for checksum, payload := range payloads {
			if r.URL.Path == "/"+checksum[:2]+"/"+checksum[2:] {
				w.Write(payload)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchExtractsSharedRoot(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"bundles/af.trk":        "left arcuate",
		"bundles/deep/cst.trk":  "corticospinal",
		"bundles/checksums.txt": "ignored",
	})
	checksum := checksumOf(payload)
	srv := serveStore(t, map[string][]byte{checksum: payload})

	home := t.TempDir()
	f, err := New(WithHome(home), WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.Equal(t, home, f.Home())

	files := map[string]string{"bundles.zip": checksum}
	require.NoError(t, f.Fetch(context.Background(), files, "bundles.zip"))

	// The shared "bundles/" root is stripped.
	got, err := os.ReadFile(filepath.Join(home, "bundles", "af.trk"))
	require.NoError(t, err)
	require.Equal(t, "left arcuate", string(got))

	got, err = os.ReadFile(filepath.Join(home, "bundles", "deep", "cst.trk"))
	require.NoError(t, err)
	require.Equal(t, "corticospinal", string(got))

	// The downloaded archive stays next to the extraction directory.
	_, err = os.Stat(filepath.Join(home, "bundles.zip"))
	require.NoError(t, err)
}

func TestFetchWithoutSharedRoot(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"af.trk":  "left arcuate",
		"cst.trk": "corticospinal",
	})
	checksum := checksumOf(payload)
	srv := serveStore(t, map[string][]byte{checksum: payload})

	home := t.TempDir()
	f, err := New(WithHome(home), WithBaseURL(srv.URL))
	require.NoError(t, err)

	files := map[string]string{"flat.zip": checksum}
	require.NoError(t, f.Fetch(context.Background(), files))

	got, err := os.ReadFile(filepath.Join(home, "flat", "af.trk"))
	require.NoError(t, err)
	require.Equal(t, "left arcuate", string(got))
}

func TestFetchSkipsExtracted(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "bundles"), 0o755))

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, err := New(WithHome(home), WithBaseURL(srv.URL))
	require.NoError(t, err)

	files := map[string]string{"bundles.zip": "00000000000000000000000000000000"}
	require.NoError(t, f.Fetch(context.Background(), files, "bundles.zip"))
	require.Equal(t, 0, hits)
}

func TestFetchChecksumMismatch(t *testing.T) {
	payload := buildZip(t, map[string]string{"af.trk": "left arcuate"})
	wrong := checksumOf([]byte("something else"))
	srv := serveStore(t, map[string][]byte{wrong: payload})

	f, err := New(WithHome(t.TempDir()), WithBaseURL(srv.URL))
	require.NoError(t, err)

	// Valid zip, wrong digest.
	files := map[string]string{"bundles.zip": wrong}
	err = f.Fetch(context.Background(), files, "bundles.zip")
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestFetchCorruptPayload(t *testing.T) {
	payload := []byte("<html>rate limited</html>")
	wrong := checksumOf([]byte("the real archive"))
	srv := serveStore(t, map[string][]byte{wrong: payload})

	f, err := New(WithHome(t.TempDir()), WithBaseURL(srv.URL))
	require.NoError(t, err)

	files := map[string]string{"bundles.zip": wrong}
	err = f.Fetch(context.Background(), files, "bundles.zip")
	require.ErrorIs(t, err, errs.ErrCorruptFetch)
}

func TestFetchUnsupportedArchive(t *testing.T) {
	f, err := New(WithHome(t.TempDir()), WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	files := map[string]string{"bundles.tar.gz": "00000000000000000000000000000000"}
	err = f.Fetch(context.Background(), files, "bundles.tar.gz")
	require.ErrorIs(t, err, errs.ErrUnsupportedArchive)
}

func TestFetchUnknownDataset(t *testing.T) {
	f, err := New(WithHome(t.TempDir()), WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	err = f.Fetch(context.Background(), map[string]string{}, "missing.zip")
	require.Error(t, err)
}

func TestFetchAllByDefault(t *testing.T) {
	one := buildZip(t, map[string]string{"a.trk": "a"})
	two := buildZip(t, map[string]string{"b.trk": "b"})
	srv := serveStore(t, map[string][]byte{
		checksumOf(one): one,
		checksumOf(two): two,
	})

	home := t.TempDir()
	f, err := New(WithHome(home), WithBaseURL(srv.URL))
	require.NoError(t, err)

	files := map[string]string{
		"one.zip": checksumOf(one),
		"two.zip": checksumOf(two),
	}
	require.NoError(t, f.Fetch(context.Background(), files))

	_, err = os.Stat(filepath.Join(home, "one", "a.trk"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "two", "b.trk"))
	require.NoError(t, err)
}

func TestFetchCanceledContext(t *testing.T) {
	payload := buildZip(t, map[string]string{"a.trk": "a"})
	checksum := checksumOf(payload)
	srv := serveStore(t, map[string][]byte{checksum: payload})

	f, err := New(WithHome(t.TempDir()), WithBaseURL(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := map[string]string{"one.zip": checksum}
	require.Error(t, f.Fetch(ctx, files))
}

func TestHomeFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	f, err := New()
	require.NoError(t, err)
	require.Equal(t, home, f.Home())
	require.Equal(t, filepath.Join(home, "bundles"), f.DatasetDir("bundles.zip"))
}

func TestZipSlipRejected(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("ok.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("fine"))
	require.NoError(t, err)
	f, err = w.Create("../escape.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	payload := buf.Bytes()
	checksum := checksumOf(payload)
	srv := serveStore(t, map[string][]byte{checksum: payload})

	home := t.TempDir()
	fetcher, err := New(WithHome(home), WithBaseURL(srv.URL))
	require.NoError(t, err)

	files := map[string]string{"evil.zip": checksum}
	err = fetcher.Fetch(context.Background(), files, "evil.zip")
	require.ErrorIs(t, err, errs.ErrCorruptFetch)
}
