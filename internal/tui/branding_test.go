package tui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/reel/internal/config"
)

func TestShowBanner(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	ShowBanner("1.0.0-test")

	w.Close()
	os.Stdout = old
	out := <-outC

	assert.Contains(t, out, "Descubra filmes e séries")
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╝")
	assert.Contains(t, out, "◆")
	assert.Contains(t, out, "v1.0.0-test")
}

func TestBanner_DevVersionHasNoSuffix(t *testing.T) {
	out := Banner("dev")
	assert.Contains(t, out, "Descubra filmes e séries")
	assert.NotContains(t, out, "vdev")
}

func TestGetCompactBanner(t *testing.T) {
	result := GetCompactBanner(MsgNoResults)

	assert.Contains(t, result, MsgNoResults)
	assert.Contains(t, result, "█▀▀▄")
}

func TestLogoConstants(t *testing.T) {
	assert.Len(t, LogoLines, 3)
	assert.NotEmpty(t, BannerColors)
	assert.True(t, strings.HasPrefix(CompactLogo, AppName))
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme(config.TestConfig().UI.Colors) })

	colors := config.TestConfig().UI.Colors
	colors.Primary = "#123456"
	ApplyTheme(colors)

	assert.Equal(t, "#123456", string(PrimaryColor))
}
