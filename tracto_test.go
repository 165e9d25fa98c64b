package tracto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurlab/tracto/streamline"
)

func TestConnectionKey(t *testing.T) {
	require.Equal(t, "10_42", ConnectionKey("10", "42"))
	require.Equal(t, "42_10", ConnectionKey("42", "10"))
	require.Equal(t, "left-MT_right-MT", ConnectionKey("left-MT", "right-MT"))
}

func TestSpillLoadRoundTrip(t *testing.T) {
	c := streamline.NewCollection([]streamline.Streamline{
		{{0, 0, 0}, {1, 0.5, 0.25}, {2, 1, 0.5}},
		{{-4, 3.5, 9}, {-4.25, 3.75, 9.125}},
		{{12.5, -3.25, 0.75}},
	})

	scope, err := Spill(c)
	require.NoError(t, err)
	defer scope.Close()

	all, err := Load(scope.Paths(), nil)
	require.NoError(t, err)
	require.True(t, all.ApproxEqual(c, 1e-6))

	subset, err := Load(scope.Paths(), []int{2, 0, 2})
	require.NoError(t, err)
	require.Equal(t, 3, subset.Len())
	require.True(t, subset.At(0).ApproxEqual(c.At(2), 1e-6))
	require.True(t, subset.At(1).ApproxEqual(c.At(0), 1e-6))
	require.True(t, subset.At(2).ApproxEqual(c.At(2), 1e-6))
}
