package tour

import (
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/render"
	"github.com/decker502/vtour/pkg/ui"
)

// ViewportSessionController 视口会话控制器
// 在首页、教程和交互视口之间切换
type ViewportSessionController struct {
	session     *Session
	scene       render.SceneGraph
	doc         ui.Presentation
	loader      *LocationLoader
	overlays    *OverlayManager
	interaction *InteractionController
	audio       *AmbientAudioController
	log         zerolog.Logger
}

// NewViewportSessionController 创建控制器
func NewViewportSessionController(
	session *Session,
	scene render.SceneGraph,
	doc ui.Presentation,
	loader *LocationLoader,
	overlays *OverlayManager,
	interaction *InteractionController,
	audio *AmbientAudioController,
	log zerolog.Logger,
) *ViewportSessionController {
	return &ViewportSessionController{
		session:     session,
		scene:       scene,
		doc:         doc,
		loader:      loader,
		overlays:    overlays,
		interaction: interaction,
		audio:       audio,
		log:         log.With().Str("component", "viewport").Logger(),
	}
}

func (v *ViewportSessionController) setVisible(id ui.ElementID, visible bool) {
	el, ok := v.doc.Element(id)
	if !ok {
		v.log.Warn().Str("error_kind", kindMissingDomTarget).Str("element", string(id)).Msg("element missing")
		return
	}
	if visible {
		el.Show()
	} else {
		el.Hide()
	}
}

// Open 加载地点并显示视口
// 只有本次会话第一次打开时显示教程
func (v *ViewportSessionController) Open(id string) error {
	if err := v.loader.Load(id); err != nil {
		return err
	}

	v.setVisible(ui.ElemCanvas, true)
	v.doc.SetScrollLocked(true)
	for _, el := range ui.NavigationChrome {
		v.setVisible(el, false)
	}

	v.overlays.Reset()
	v.doc.Tooltip().Hide()
	v.setVisible(ui.ElemReturn, true)
	v.setVisible(ui.ElemAudioToggle, true)

	if !v.session.TutorialSeen {
		v.overlays.OpenTutorial()
	} else {
		v.scene.SetControlsEnabled(true)
		v.session.Viewport = ViewportInteractive
	}

	v.scene.ResetCamera()
	v.scene.UpdateControls()
	v.scene.FitViewport()

	v.log.Info().Str("location", id).Stringer("state", v.session.Viewport).Msg("viewport opened")
	return nil
}

// DismissTutorial 关闭教程并启用交互
func (v *ViewportSessionController) DismissTutorial() {
	if v.session.Overlay.Kind != OverlayTutorial {
		return
	}
	v.overlays.CloseActive()
}

// Return 返回首页并停止环境音
func (v *ViewportSessionController) Return() {
	if v.session.Viewport == ViewportClosed {
		return
	}
	v.session.Viewport = ViewportClosed

	v.setVisible(ui.ElemCanvas, false)
	v.doc.SetScrollLocked(false)

	v.overlays.Reset()
	v.doc.Tooltip().Hide()
	v.setVisible(ui.ElemReturn, false)
	v.setVisible(ui.ElemAudioToggle, false)

	v.audio.Stop()
	v.interaction.ResetHover()

	for _, el := range ui.NavigationChrome {
		v.setVisible(el, true)
	}
	v.log.Info().Msg("viewport closed")
}

// ToggleAudio 视口打开时切换环境音
func (v *ViewportSessionController) ToggleAudio() {
	if v.session.Viewport == ViewportClosed {
		return
	}
	v.audio.Toggle()
}

// State 返回当前视口状态
func (v *ViewportSessionController) State() ViewportState {
	return v.session.Viewport
}
