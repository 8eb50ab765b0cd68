package tour

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
	"github.com/decker502/vtour/pkg/ui"
)

// Options Viewer 的协作对象
type Options struct {
	Catalog  *config.Catalog
	Scene    render.SceneGraph
	Assets   render.AssetLoader
	UI       ui.Presentation
	SoundDir string
	Logger   zerolog.Logger
	Metrics  *Metrics // 可选
}

// Viewer 围绕同一个 Session 组合各控制器
type Viewer struct {
	Session     *Session
	Registry    *HotspotRegistry
	Resources   *SceneResourceManager
	Audio       *AmbientAudioController
	Overlays    *OverlayManager
	Interaction *InteractionController
	Loader      *LocationLoader
	Viewport    *ViewportSessionController

	scene   render.SceneGraph
	elapsed float64
}

// NewViewer 创建处于关闭状态的浏览器
func NewViewer(opts Options) *Viewer {
	log := opts.Logger
	session := NewSession()

	registry := NewHotspotRegistry(opts.Scene, opts.Catalog.IconFor)
	resources := NewSceneResourceManager(opts.Scene, registry, log, opts.Metrics)
	audio := NewAmbientAudioController(opts.UI, session, opts.SoundDir, log, opts.Metrics)
	overlays := NewOverlayManager(session, opts.Scene, opts.UI, log)
	interaction := NewInteractionController(session, opts.Scene, registry, overlays, opts.UI, log)
	loader := NewLocationLoader(opts.Catalog, opts.Scene, opts.Assets, resources, registry, audio, session, log, opts.Metrics)
	viewport := NewViewportSessionController(session, opts.Scene, opts.UI, loader, overlays, interaction, audio, log)

	return &Viewer{
		Session:     session,
		Registry:    registry,
		Resources:   resources,
		Audio:       audio,
		Overlays:    overlays,
		Interaction: interaction,
		Loader:      loader,
		Viewport:    viewport,
		scene:       opts.Scene,
	}
}

// pulseFactor 信息标记相对目录缩放的倍数
func pulseFactor(elapsed float64) float64 {
	return 0.8 + 0.13*math.Sin(elapsed*5)
}

// Tick 推进 dt 秒动画，视口打开时渲染一帧
func (v *Viewer) Tick(dt float64) {
	v.elapsed += dt
	if v.Session.Viewport == ViewportClosed {
		return
	}

	v.Registry.Animate(v.elapsed)

	if model := v.Resources.Model(); model != nil {
		if loc := v.Loader.Current(); loc != nil && loc.Model != nil && loc.Model.Spin != 0 {
			model.RotateZ(loc.Model.SpinRadians() * dt)
		}
	}

	v.scene.UpdateControls()
	v.scene.Render()
}
