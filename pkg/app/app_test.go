package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/tour"
)

// Ebitengine only allows one audio context per process.
var testAudioContext *audio.Context

func TestMain(m *testing.M) {
	testAudioContext = audio.NewContext(sampleRate)
	os.Exit(m.Run())
}

const appCatalogYAML = `locations:
  - id: manor
    title: Le manoir
    background: assets/manoir.jpg
    audio: audio_manoir.mp3
    hotspots:
      - {kind: media, position: [0, 0, -100], target: son1}
      - {kind: info, position: [0, 0, 100], message: "Derriere"}
  - id: mill
    background: assets/moulin.jpg
popups:
  - {id: son1, title: Podcast}
`

// 800x600 布局下的按钮位置
const (
	centerX, centerY = 400.0, 300.0
	tutorialX        = 350.0
	panelButtonY     = 410.0
	closeX           = 520.0
	returnX          = 30.0
	returnY          = 30.0
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 90, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	base := t.TempDir()
	for _, p := range []string{"assets/manoir.jpg", "assets/moulin.jpg", "assets/icons/voir.png", "assets/icons/play.png", "assets/icons/doc_icon.png"} {
		writePNG(t, filepath.Join(base, filepath.FromSlash(p)))
	}

	vc, err := config.LoadViewerConfig("")
	require.NoError(t, err)
	vc.AssetBase = base
	vc.AppName = "vtour_app_test"
	vc.Window.Width, vc.Window.Height = 800, 600

	catalog, err := config.ParseCatalog([]byte(appCatalogYAML))
	require.NoError(t, err)

	a, err := NewApp(Config{
		Viewer:       vc,
		Catalog:      catalog,
		Logger:       zerolog.Nop(),
		AudioContext: testAudioContext,
	})
	require.NoError(t, err)
	return a
}

func TestNewApp_Landing(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, tour.ViewportClosed, a.Viewer().Session.Viewport)
	w, h := a.Layout(1920, 1080)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestApp_TourFlow(t *testing.T) {
	a := newTestApp(t)
	session := a.Viewer().Session

	a.OpenLocation("manor")
	require.Equal(t, tour.ViewportTutorialGate, session.Viewport)
	assert.Equal(t, "manor", session.LocationID)

	a.Resources().Flush()
	assert.Equal(t, 1, a.Resources().Refs("assets/manoir.jpg"), "background should be delivered")

	// hotspots are inert behind the tutorial
	a.Click(centerX, centerY)
	assert.Equal(t, tour.OverlayTutorial, session.Overlay.Kind)

	a.Click(tutorialX, panelButtonY)
	require.Equal(t, tour.ViewportInteractive, session.Viewport)
	assert.True(t, session.TutorialSeen)

	// the media hotspot straight ahead opens its popup
	a.Click(centerX, centerY)
	require.Equal(t, tour.OverlayMediaPopup, session.Overlay.Kind)
	assert.Equal(t, "son1", session.Overlay.PopupID())

	a.Click(closeX, panelButtonY)
	assert.Equal(t, tour.OverlayNone, session.Overlay.Kind)

	a.Click(returnX, returnY)
	assert.Equal(t, tour.ViewportClosed, session.Viewport)

	// second visit skips the tutorial and releases the first location
	a.OpenLocation("mill")
	a.Resources().Flush()
	assert.Equal(t, tour.ViewportInteractive, session.Viewport)
	assert.Equal(t, 0, a.Resources().Refs("assets/manoir.jpg"))
	assert.Equal(t, 1, a.Resources().Refs("assets/moulin.jpg"))
}

func TestApp_UnknownLocation(t *testing.T) {
	a := newTestApp(t)

	a.OpenLocation("castle")
	assert.Equal(t, tour.ViewportClosed, a.Viewer().Session.Viewport)
}

func TestApp_SaveOnExit(t *testing.T) {
	a := newTestApp(t)

	a.Settings().SetAmbientVolume(0.25)
	assert.True(t, a.SaveOnExit())

	require.NoError(t, a.Settings().Load())
	assert.InDelta(t, 0.25, a.Settings().GetSettings().AmbientVolume, 1e-9)
}
