package tour

import (
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/render"
	"github.com/decker502/vtour/pkg/ui"
)

// OverlayManager 浮层管理器（教程和媒体弹窗）
// 同一时刻最多一个浮层；打开新浮层前先关闭旧的
type OverlayManager struct {
	session *Session
	scene   render.SceneGraph
	doc     ui.Presentation
	log     zerolog.Logger
}

// NewOverlayManager 创建浮层管理器
func NewOverlayManager(session *Session, scene render.SceneGraph, doc ui.Presentation, log zerolog.Logger) *OverlayManager {
	return &OverlayManager{
		session: session,
		scene:   scene,
		doc:     doc,
		log:     log.With().Str("component", "overlay").Logger(),
	}
}

func (o *OverlayManager) setVisible(id ui.ElementID, visible bool) {
	el, ok := o.doc.Element(id)
	if !ok {
		o.log.Warn().Str("error_kind", kindMissingDomTarget).Str("element", string(id)).Msg("element missing")
		return
	}
	if visible {
		el.Show()
	} else {
		el.Hide()
	}
}

// OpenTutorial 显示教程，关闭前禁止交互
func (o *OverlayManager) OpenTutorial() {
	o.CloseActive()

	o.setVisible(ui.ElemTutorial, true)
	o.setVisible(ui.ElemReturn, false)
	o.setVisible(ui.ElemAudioToggle, false)
	o.scene.SetControlsEnabled(false)

	o.session.Overlay = OverlaySession{Kind: OverlayTutorial}
	o.session.Viewport = ViewportTutorialGate
}

// OpenPopup 显示指定 id 的弹窗
func (o *OverlayManager) OpenPopup(id string) error {
	p, ok := o.doc.Popup(id)
	if !ok {
		o.log.Warn().Str("error_kind", kindMissingDomTarget).Str("popup", id).Msg("popup missing")
		return ErrPopupNotFound
	}

	o.CloseActive()

	p.Show()
	o.setVisible(ui.ElemReturn, false)
	o.setVisible(ui.ElemPopupClose, true)
	o.scene.SetControlsEnabled(false)

	o.session.Overlay = OverlaySession{Kind: OverlayMediaPopup, Popup: p}
	o.log.Debug().Str("popup", id).Msg("popup opened")
	return nil
}

// CloseActive 关闭当前浮层并恢复视口按钮
func (o *OverlayManager) CloseActive() {
	switch o.session.Overlay.Kind {
	case OverlayTutorial:
		o.setVisible(ui.ElemTutorial, false)
		o.setVisible(ui.ElemReturn, true)
		o.setVisible(ui.ElemAudioToggle, true)
		o.scene.SetControlsEnabled(true)
		o.session.TutorialSeen = true
		if o.session.Viewport == ViewportTutorialGate {
			o.session.Viewport = ViewportInteractive
		}

	case OverlayMediaPopup:
		p := o.session.Overlay.Popup
		silence(p)
		p.Hide()
		o.setVisible(ui.ElemPopupClose, false)
		o.setVisible(ui.ElemReturn, true)
		o.scene.SetControlsEnabled(true)
		o.log.Debug().Str("popup", p.ID()).Msg("popup closed")
	}
	o.session.Overlay = OverlaySession{}
}

// Reset 隐藏所有浮层，不恢复按钮
// 视口打开或关闭时使用
func (o *OverlayManager) Reset() {
	if o.session.Overlay.Kind == OverlayMediaPopup {
		silence(o.session.Overlay.Popup)
	}
	o.setVisible(ui.ElemTutorial, false)
	for _, p := range o.doc.Popups() {
		p.Hide()
	}
	o.setVisible(ui.ElemPopupClose, false)
	o.session.Overlay = OverlaySession{}
}

// silence 暂停并回卷弹窗内的媒体
func silence(p ui.Popup) {
	for _, m := range p.Media() {
		m.Pause()
		m.Rewind()
	}
}
