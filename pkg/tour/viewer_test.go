package tour

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewer_TickPulsesInfoMarkers(t *testing.T) {
	h := newHarness(t)
	h.openInteractive(t, "manor")

	h.viewer.Tick(0.1)

	want := 10 * (0.8 + 0.13*math.Sin(0.5))
	info := h.scene.sprite("info_0")
	assert.InDelta(t, want, info.scaleX, 1e-9)
	assert.InDelta(t, want, info.scaleY, 1e-9)

	alt := h.scene.sprite("info-alt_3")
	require.NotNil(t, alt)
	assert.InDelta(t, want, alt.scaleX, 1e-9)

	media := h.scene.sprite("sprite_son1")
	assert.Equal(t, 30.0, media.scaleX, "media triggers do not pulse")
}

func TestViewer_TickSpinsModel(t *testing.T) {
	h := newHarness(t)
	h.openInteractive(t, "mill")
	model := newFakeModel(h.log)
	h.assets.models[0].onDone(model)

	// 0.005 rad per 60 Hz frame
	h.viewer.Tick(2)
	assert.InDelta(t, -0.005*60*2, model.rotZ, 1e-9)
}

func TestViewer_TickIdleWhenClosed(t *testing.T) {
	h := newHarness(t)
	h.viewer.Tick(1)
	assert.Zero(t, h.scene.renders)

	h.openInteractive(t, "manor")
	before := h.scene.renders
	h.viewer.Tick(1.0 / 60)
	assert.Equal(t, before+1, h.scene.renders)
}

func TestSession_Generation(t *testing.T) {
	s := NewSession()
	g1 := s.NextGeneration()
	assert.True(t, s.IsCurrent(g1))
	g2 := s.NextGeneration()
	assert.False(t, s.IsCurrent(g1))
	assert.True(t, s.IsCurrent(g2))
	assert.Equal(t, "closed", s.Viewport.String())
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.locationLoaded("manor")
	m.assetFailed("image")
	m.resourceReleased("texture", 2)
	m.playbackRejected()

	metrics, err := NewMetrics()
	require.NoError(t, err)
	metrics.locationLoaded("manor")
}
