package review

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageStateOffsets(t *testing.T) {
	t.Parallel()

	p := NewPageState(10)
	require.Equal(t, 1, p.Page())
	require.Equal(t, 0, p.Offset())

	p.SetTotal(41)
	require.Equal(t, 5, p.Pages())

	require.True(t, p.Next())
	require.Equal(t, 2, p.Page())
	require.Equal(t, 10, p.Offset())
}

func TestPageStateBounds(t *testing.T) {
	t.Parallel()

	p := NewPageState(10)
	p.SetTotal(15)

	require.False(t, p.Prev(), "page 1 has no previous page")
	require.True(t, p.Next())
	require.False(t, p.Next(), "page 2 of 2 has no next page")
	require.True(t, p.Prev())
	require.Equal(t, 1, p.Page())
}

func TestPageStateClampsAfterShrink(t *testing.T) {
	t.Parallel()

	// deleting the only item on the last page must pull the page back
	p := NewPageState(10)
	p.SetTotal(21)
	p.Next()
	p.Next()
	require.Equal(t, 3, p.Page())

	p.SetTotal(20)
	require.Equal(t, 2, p.Page())
}

func TestPageStateEmptyTotal(t *testing.T) {
	t.Parallel()

	p := NewPageState(10)
	p.SetTotal(0)
	require.Equal(t, 1, p.Pages())
	require.Equal(t, 1, p.Page())
	require.False(t, p.Next())
}

func TestPageStateReset(t *testing.T) {
	t.Parallel()

	p := NewPageState(5)
	p.SetTotal(50)
	p.Next()
	p.Next()
	p.Reset()
	require.Equal(t, 1, p.Page())
	require.Equal(t, 50, p.Total(), "reset keeps the total")
}
