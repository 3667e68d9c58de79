package surface

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
)

func TestBindSingleOwner(t *testing.T) {
	b := New(4, 2)
	require.NoError(t, b.Bind("a"))
	require.NoError(t, b.Bind("a"))

	err := b.Bind("b")
	require.True(t, errors.Is(err, ErrBusy))
	require.Equal(t, "a", b.Owner())

	require.False(t, b.Release("b"))
	require.True(t, b.Release("a"))
	require.False(t, b.Release("a"))
	require.Equal(t, "", b.Owner())
	require.NoError(t, b.Bind("b"))
}

func TestReleaseClearsContent(t *testing.T) {
	b := New(4, 1)
	require.NoError(t, b.Bind("a"))
	b.DrawText(0, 0, 4, "abcd", tcell.StyleDefault)
	require.Equal(t, "abcd", b.Row(0))

	b.Release("a")
	require.Equal(t, "    ", b.Row(0))
}

func TestDrawTextClipsAndHandlesWideRunes(t *testing.T) {
	b := New(5, 1)
	end := b.DrawText(0, 0, 5, "a漢字b", tcell.StyleDefault)
	require.Equal(t, 5, end)
	require.Equal(t, "a漢字", b.Row(0))

	b.Clear()
	end = b.DrawText(0, 0, 2, "abc", tcell.StyleDefault)
	require.Equal(t, 2, end)
	require.True(t, strings.HasPrefix(b.Row(0), "ab "))
}

func TestDrawTextKeepsCombiningMarks(t *testing.T) {
	b := New(3, 1)
	b.DrawText(0, 0, 3, "éx", tcell.StyleDefault)
	require.Equal(t, "éx ", b.Row(0))
}

func TestResizeReportsChange(t *testing.T) {
	b := New(2, 2)
	require.False(t, b.Resize(2, 2))
	require.True(t, b.Resize(3, 1))
	w, h := b.Size()
	require.Equal(t, 3, w)
	require.Equal(t, 1, h)
}

func TestBlitCopiesCells(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(10, 3)

	b := New(3, 1)
	b.DrawText(0, 0, 3, "xyz", tcell.StyleDefault)
	b.Blit(screen, 2, 1, 3, 1)

	mainc, _, _, _ := screen.GetContent(2, 1)
	require.Equal(t, 'x', mainc)
	mainc, _, _, _ = screen.GetContent(4, 1)
	require.Equal(t, 'z', mainc)
}
