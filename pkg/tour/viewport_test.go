package tour

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/vtour/pkg/ui"
)

func TestViewport_FirstOpenShowsTutorial(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.viewer.Viewport.Open("manor"))

	s := h.viewer.Session
	assert.Equal(t, ViewportTutorialGate, s.Viewport)
	assert.Equal(t, OverlayTutorial, s.Overlay.Kind)
	assert.True(t, h.doc.visible(ui.ElemTutorial))
	assert.True(t, h.doc.visible(ui.ElemCanvas))
	assert.False(t, h.doc.visible(ui.ElemReturn))
	assert.False(t, h.doc.visible(ui.ElemAudioToggle))
	assert.False(t, h.scene.ControlsEnabled())
	assert.True(t, h.doc.scrollLocked)
	for _, id := range ui.NavigationChrome {
		assert.False(t, h.doc.visible(id), "navigation %s should be hidden", id)
	}

	// 4 info markers and 1 media trigger, attached in one call
	assert.Equal(t, 5, h.scene.spriteCount())
	require.Len(t, h.scene.addCalls, 1)
	assert.Len(t, h.scene.addCalls[0], 5)
	assert.Equal(t, 5, h.viewer.Registry.Len())

	require.Len(t, h.assets.images, 1)
	assert.Equal(t, "assets/manoir.jpg", h.assets.images[0].path)
	assert.Equal(t, "sound/audio_manoir.mp3", h.doc.ambient.source)
	assert.False(t, h.viewer.Session.AmbientPlaying)
	assert.Positive(t, h.scene.fits)

	// hotspots are inert behind the tutorial
	h.at(100, 100, "info_0")
	h.viewer.Interaction.Click(100, 100, false)
	assert.False(t, h.doc.tooltip.visible)
}

func TestViewport_DismissTutorial(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.viewer.Viewport.Open("manor"))

	h.viewer.Viewport.DismissTutorial()

	s := h.viewer.Session
	assert.Equal(t, ViewportInteractive, s.Viewport)
	assert.Equal(t, OverlayNone, s.Overlay.Kind)
	assert.True(t, s.TutorialSeen)
	assert.False(t, h.doc.visible(ui.ElemTutorial))
	assert.True(t, h.doc.visible(ui.ElemReturn))
	assert.True(t, h.doc.visible(ui.ElemAudioToggle))
	assert.True(t, h.scene.ControlsEnabled())

	// second dismissal is a no-op
	h.viewer.Viewport.DismissTutorial()
	assert.Equal(t, ViewportInteractive, s.Viewport)
}

func TestViewport_ReturnAndReopen(t *testing.T) {
	h := newHarness(t)
	h.openInteractive(t, "manor")
	h.viewer.Viewport.ToggleAudio()
	require.True(t, h.doc.ambient.playing)

	h.viewer.Viewport.Return()

	assert.Equal(t, ViewportClosed, h.viewer.Viewport.State())
	assert.False(t, h.doc.visible(ui.ElemCanvas))
	assert.False(t, h.doc.visible(ui.ElemReturn))
	assert.False(t, h.doc.visible(ui.ElemAudioToggle))
	assert.False(t, h.doc.scrollLocked)
	for _, id := range ui.NavigationChrome {
		assert.True(t, h.doc.visible(id), "navigation %s should be visible", id)
	}
	assert.False(t, h.doc.ambient.playing)
	assert.Zero(t, h.doc.ambient.pos)
	assert.False(t, h.viewer.Session.AmbientPlaying)
	assert.False(t, h.doc.audioIcon)

	// the tutorial is shown once per session
	require.NoError(t, h.viewer.Viewport.Open("mill"))
	assert.Equal(t, ViewportInteractive, h.viewer.Session.Viewport)
	assert.False(t, h.doc.visible(ui.ElemTutorial))
	assert.True(t, h.scene.ControlsEnabled())
}

func TestViewport_ReturnClosesPopup(t *testing.T) {
	h := newHarness(t)
	h.openInteractive(t, "manor")
	require.NoError(t, h.viewer.Interaction.OpenPopup("son1"))
	clip := h.doc.popup("son1").media[0]
	require.NoError(t, clip.Play())

	h.viewer.Viewport.Return()

	assert.False(t, h.doc.popup("son1").visible)
	assert.False(t, clip.playing)
	assert.False(t, h.doc.visible(ui.ElemPopupClose))
	assert.Equal(t, OverlayNone, h.viewer.Session.Overlay.Kind)
}

func TestViewport_ReturnWhenClosedIsNoop(t *testing.T) {
	h := newHarness(t)
	h.viewer.Viewport.Return()
	assert.Equal(t, ViewportClosed, h.viewer.Viewport.State())
	assert.True(t, h.doc.visible(ui.ElemMenu))
}

func TestViewport_UnknownLocation(t *testing.T) {
	h := newHarness(t)
	err := h.viewer.Viewport.Open("castle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLocation))
	assert.Equal(t, ViewportClosed, h.viewer.Viewport.State())
	assert.Empty(t, h.assets.images)
}

func TestViewport_ToggleAudioIgnoredWhenClosed(t *testing.T) {
	h := newHarness(t)
	h.viewer.Viewport.ToggleAudio()
	assert.False(t, h.viewer.Session.AmbientPlaying)
}

func TestViewport_MissingElementIsTolerated(t *testing.T) {
	h := newHarness(t)
	delete(h.doc.elements, ui.ElemTourList)

	require.NoError(t, h.viewer.Viewport.Open("manor"))
	assert.Equal(t, ViewportTutorialGate, h.viewer.Session.Viewport)
}

func TestOverlay_PopupWhileTutorialDismissesTutorial(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.viewer.Viewport.Open("manor"))

	require.NoError(t, h.viewer.Interaction.OpenPopup("son1"))

	s := h.viewer.Session
	assert.Equal(t, OverlayMediaPopup, s.Overlay.Kind)
	assert.Equal(t, "son1", s.Overlay.PopupID())
	assert.Equal(t, ViewportInteractive, s.Viewport)
	assert.True(t, s.TutorialSeen)
	assert.False(t, h.doc.visible(ui.ElemTutorial))
	assert.False(t, h.scene.ControlsEnabled())
}
