package tour

import (
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/components"
	"github.com/decker502/vtour/pkg/ecs"
	"github.com/decker502/vtour/pkg/render"
	"github.com/decker502/vtour/pkg/ui"
)

// TooltipOffset 提示框相对指针的偏移（像素）
const TooltipOffset = 15.0

// InteractionController 交互控制器
// 把指针事件转换为悬停高亮、提示框和弹窗
type InteractionController struct {
	session  *Session
	scene    render.SceneGraph
	registry *HotspotRegistry
	overlays *OverlayManager
	doc      ui.Presentation
	log      zerolog.Logger
}

// NewInteractionController 创建交互控制器
func NewInteractionController(session *Session, scene render.SceneGraph, registry *HotspotRegistry, overlays *OverlayManager, doc ui.Presentation, log zerolog.Logger) *InteractionController {
	return &InteractionController{
		session:  session,
		scene:    scene,
		registry: registry,
		overlays: overlays,
		doc:      doc,
		log:      log.With().Str("component", "interaction").Logger(),
	}
}

// pick 返回指针下离相机最近的热点
func (c *InteractionController) pick(x, y float64) (ecs.EntityID, bool) {
	if c.registry.Len() == 0 {
		return 0, false
	}
	node, ok := c.scene.Intersect(render.Pointer{X: x, Y: y}, c.registry.Nodes())
	if !ok {
		return 0, false
	}
	return c.registry.Lookup(node)
}

// PointerMove 更新悬停高亮和光标
// 任意时刻最多一个热点处于高亮
func (c *InteractionController) PointerMove(x, y float64) {
	if c.session.Viewport == ViewportClosed {
		return
	}
	id, hit := c.pick(x, y)
	if !hit {
		c.doc.SetPointerCursor(false)
		c.unhover()
		return
	}
	c.doc.SetPointerCursor(true)
	if id != c.session.Hovered {
		c.unhover()
		c.registry.SetHighlight(id, true)
		c.session.Hovered = id
	}
}

func (c *InteractionController) unhover() {
	if c.session.Hovered == 0 {
		return
	}
	c.registry.SetHighlight(c.session.Hovered, false)
	c.session.Hovered = 0
}

// ResetHover 清除高亮并恢复默认光标
func (c *InteractionController) ResetHover() {
	c.unhover()
	c.doc.SetPointerCursor(false)
}

// Click 分发一次主键点击
// 点在界面按钮上、控制被禁用或有浮层打开时忽略
func (c *InteractionController) Click(x, y float64, onChrome bool) {
	if onChrome || !c.scene.ControlsEnabled() {
		return
	}
	if c.session.Viewport != ViewportInteractive || c.session.Overlay.Kind != OverlayNone {
		return
	}

	id, hit := c.pick(x, y)
	if !hit {
		c.doc.Tooltip().Hide()
		return
	}
	if !c.registry.Clickable(id) {
		return
	}
	hs, ok := c.registry.Hotspot(id)
	if !ok {
		return
	}

	switch p := hs.Payload.(type) {
	case components.InfoPayload:
		c.doc.Tooltip().ShowAt(p.Message, x+TooltipOffset, y+TooltipOffset)
	case components.MediaPayload:
		if err := c.OpenPopup(p.TargetID); err != nil {
			c.log.Warn().Err(err).Str("target", p.TargetID).Msg("media hotspot target not opened")
		}
	}
}

// OpenPopup 打开媒体弹窗
func (c *InteractionController) OpenPopup(id string) error {
	return c.overlays.OpenPopup(id)
}

// ClosePopup 关闭当前媒体弹窗并停止其中的媒体
func (c *InteractionController) ClosePopup() {
	if c.session.Overlay.Kind != OverlayMediaPopup {
		return
	}
	c.overlays.CloseActive()
}
