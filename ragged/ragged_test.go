package ragged

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
	"github.com/neurlab/tracto/streamline"
)

func mustEncode[T Scalar](tb testing.TB, c *streamline.Collection) *Encoding[T] {
	tb.Helper()
	enc, err := Encode[T](c)
	require.NoError(tb, err)

	return enc
}

func testCollection() *streamline.Collection {
	return streamline.NewCollection([]streamline.Streamline{
		{{0, 0, 0}, {1, 0, 0}},
		{{2, 2, 2}},
		{{1, 1, 1}, {2, 1, 1}, {3, 1, 1}},
	})
}

func TestEncodeKnownVector(t *testing.T) {
	// Two streamlines of lengths 2 and 1.
	c := streamline.NewCollection([]streamline.Streamline{
		{{0, 0, 0}, {1, 0, 0}},
		{{2, 2, 2}},
	})

	enc := mustEncode[float32](t, c)
	require.Equal(t, []float32{0, 0, 0, 1, 0, 0, 2, 2, 2}, enc.Data)
	require.Equal(t, []int64{0, 2}, enc.Offsets)
	require.Equal(t, []int32{2, 1}, enc.Lengths)
	require.Equal(t, 2, enc.Count())
	require.Equal(t, int64(3), enc.TotalPoints())

	got, err := enc.Reconstruct([]int{1})
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	require.Equal(t, streamline.Streamline{{2, 2, 2}}, got.At(0))
}

func TestEncodeEmptyCollection(t *testing.T) {
	enc := mustEncode[float32](t, streamline.NewCollection(nil))

	require.Zero(t, enc.Count())
	require.Zero(t, enc.TotalPoints())

	got, err := enc.Reconstruct(nil)
	require.NoError(t, err)
	require.Zero(t, got.Len())
}

func TestRoundTrip(t *testing.T) {
	c := testCollection()

	t.Run("Float64", func(t *testing.T) {
		got, err := mustEncode[float64](t, c).Reconstruct(nil)
		require.NoError(t, err)
		require.True(t, c.ApproxEqual(got, 0), "float64 round trip must be exact")
	})

	t.Run("Float32", func(t *testing.T) {
		got, err := mustEncode[float32](t, c).Reconstruct(nil)
		require.NoError(t, err)
		require.True(t, c.ApproxEqual(got, 1e-6), "float32 round trip within storage tolerance")
	})
}

func TestReconstructIndexOrderFidelity(t *testing.T) {
	c := testCollection()
	enc := mustEncode[float64](t, c)

	got, err := enc.Reconstruct([]int{2, 0, 2})
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	require.Equal(t, c.At(2), got.At(0))
	require.Equal(t, c.At(0), got.At(1))
	require.Equal(t, c.At(2), got.At(2))
}

func TestReconstructEmptyIndices(t *testing.T) {
	enc := mustEncode[float64](t, testCollection())

	got, err := enc.Reconstruct([]int{})
	require.NoError(t, err)
	require.Zero(t, got.Len())
}

func TestReconstructOutOfRange(t *testing.T) {
	enc := mustEncode[float64](t, testCollection())

	_, err := enc.Reconstruct([]int{0, 3})
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	_, err = enc.Reconstruct([]int{-1})
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestNewValidates(t *testing.T) {
	data := []float32{0, 0, 0, 1, 0, 0, 2, 2, 2}

	t.Run("valid flat", func(t *testing.T) {
		enc, err := New(data, []int64{0, 2}, []int32{2, 1}, format.LayoutFlat)
		require.NoError(t, err)
		require.Equal(t, 2, enc.Count())
		require.Equal(t, format.LayoutFlat, enc.Layout())
	})

	t.Run("valid triples", func(t *testing.T) {
		enc, err := New(data, []int64{0, 2}, []int32{2, 1}, format.LayoutRowMajorTriples)
		require.NoError(t, err)
		require.Equal(t, format.LayoutRowMajorTriples, enc.Layout())
	})

	t.Run("unknown layout", func(t *testing.T) {
		_, err := New(data, []int64{0, 2}, []int32{2, 1}, format.Layout(0xEE))
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
	})

	t.Run("offsets disagree with lengths", func(t *testing.T) {
		_, err := New(data, []int64{0, 1}, []int32{2, 1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrOffsetLengthMismatch)
	})

	t.Run("offsets not starting at zero", func(t *testing.T) {
		_, err := New(data, []int64{1, 3}, []int32{2, 1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrOffsetLengthMismatch)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := New(data, []int64{0}, []int32{2, 1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrOffsetLengthMismatch)
	})

	t.Run("negative length", func(t *testing.T) {
		_, err := New(data, []int64{0, 2}, []int32{2, -1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrOffsetLengthMismatch)
	})

	t.Run("data not whole points", func(t *testing.T) {
		_, err := New(data[:8], []int64{0, 2}, []int32{2, 1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
	})

	t.Run("data size disagrees with lengths", func(t *testing.T) {
		_, err := New(data[:6], []int64{0, 2}, []int32{2, 1}, format.LayoutFlat)
		require.ErrorIs(t, err, errs.ErrLayoutMismatch)
	})
}

func TestLayoutTolerance(t *testing.T) {
	// The same bytes declared flat and as point rows reconstruct identically.
	data := []float64{0, 0, 0, 1, 0, 0, 2, 2, 2}
	offsets := []int64{0, 2}
	lengths := []int32{2, 1}

	flat, err := New(data, offsets, lengths, format.LayoutFlat)
	require.NoError(t, err)
	triples, err := New(data, offsets, lengths, format.LayoutRowMajorTriples)
	require.NoError(t, err)

	fromFlat, err := flat.Reconstruct(nil)
	require.NoError(t, err)
	fromTriples, err := triples.Reconstruct(nil)
	require.NoError(t, err)

	require.True(t, fromFlat.ApproxEqual(fromTriples, 0))
}

func TestReconstructDoesNotMutateSource(t *testing.T) {
	enc := mustEncode[float64](t, testCollection())
	dataBefore := append([]float64(nil), enc.Data...)

	got, err := enc.Reconstruct([]int{0})
	require.NoError(t, err)

	// Mutating the result must not leak back into the encoding.
	s := got.At(0)
	s[0][0] = 999
	require.Equal(t, dataBefore, enc.Data)
}

func BenchmarkReconstructAll(b *testing.B) {
	streamlines := make([]streamline.Streamline, 1000)
	for i := range streamlines {
		s := make(streamline.Streamline, 50)
		for p := range s {
			s[p] = streamline.Point{float64(i), float64(p), 0}
		}
		streamlines[i] = s
	}
	enc := mustEncode[float32](b, streamline.NewCollection(streamlines))

	b.ResetTimer()
	for b.Loop() {
		_, err := enc.Reconstruct(nil)
		if err != nil {
			b.Fatal(err)
		}
	}
}
