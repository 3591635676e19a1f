package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	args  []string
	stdin string
}

func fake(t *testing.T, name, output string, err error) (*launcher, *recorded) {
	t.Helper()
	l, lerr := newLauncher(name)
	require.NoError(t, lerr)
	rec := &recorded{}
	l.run = func(_ string, args []string, stdin string) ([]byte, error) {
		rec.args = args
		rec.stdin = stdin
		return []byte(output), err
	}
	return l, rec
}

var menu = []Item{
	{Label: "Indicators", Header: true},
	{Label: "nm-applet", Value: "nm"},
	{Label: "bluetooth", Value: "bt", Active: true},
}

func TestRofi_ChoosesByIndex(t *testing.T) {
	l, rec := fake(t, "rofi", "2\n", nil)
	item, err := l.Choose("Transfer", menu)
	require.NoError(t, err)
	assert.Equal(t, "bt", item.Value)

	assert.Contains(t, rec.args, "-no-custom")
	assert.Equal(t, "2", argAfter(rec.args, "-a"))
	assert.Equal(t, "2", argAfter(rec.args, "-selected-row"))
	assert.Equal(t, "Transfer", argAfter(rec.args, "-p"))

	lines := strings.Split(rec.stdin, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "<b>Indicators</b>\x00nonselectable\x1ftrue", lines[0])
	assert.Equal(t, 1, strings.Count(lines[0], "\x00"))
}

func TestRofi_EscapesMarkup(t *testing.T) {
	l, rec := fake(t, "rofi", "0", nil)
	_, err := l.Choose("", []Item{{Label: "a<b>&c"}})
	require.NoError(t, err)
	assert.Equal(t, "a&lt;b&gt;&amp;c", rec.stdin)
}

func TestChoose_HeaderNotSelectable(t *testing.T) {
	l, _ := fake(t, "fuzzel", "0", nil)
	_, err := l.Choose("", menu)
	assert.ErrorContains(t, err, "not selectable")
}

func TestDmenu_MatchesTextAndDisambiguates(t *testing.T) {
	items := []Item{{Label: "DP-2", Value: "1"}, {Label: "DP-2", Value: "2"}}
	l, rec := fake(t, "dmenu", "DP-2 (2)\n", nil)
	item, err := l.Choose("Monitor", items)
	require.NoError(t, err)
	assert.Equal(t, "2", item.Value)
	assert.Equal(t, "DP-2\nDP-2 (2)", rec.stdin)
	assert.Equal(t, "DP-2", items[1].Label, "caller's items are not modified")
}

func TestChoose_Cancelled(t *testing.T) {
	l, _ := fake(t, "dmenu", "", nil)
	_, err := l.Choose("", menu)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestChoose_LauncherError(t *testing.T) {
	l, _ := fake(t, "rofi", "", errors.New("rofi failed: cannot open display"))
	_, err := l.Choose("", menu)
	assert.ErrorContains(t, err, "cannot open display")
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestChoose_Empty(t *testing.T) {
	l, _ := fake(t, "rofi", "", nil)
	_, err := l.Choose("", nil)
	assert.Error(t, err)
}

func TestNewLauncher_Unknown(t *testing.T) {
	_, err := newLauncher("wofi")
	assert.ErrorContains(t, err, "unknown launcher")
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
