package tour

import (
	"github.com/decker502/vtour/pkg/ecs"
	"github.com/decker502/vtour/pkg/ui"
)

// ViewportState 视口状态
type ViewportState int

const (
	// ViewportClosed 显示首页，渲染面隐藏
	ViewportClosed ViewportState = iota
	// ViewportTutorialGate 首次访问显示教程，热点不响应
	ViewportTutorialGate
	// ViewportInteractive 可以环视和点击热点
	ViewportInteractive
)

func (s ViewportState) String() string {
	switch s {
	case ViewportClosed:
		return "closed"
	case ViewportTutorialGate:
		return "tutorial"
	case ViewportInteractive:
		return "interactive"
	}
	return "unknown"
}

// OverlayKind 当前打开的浮层类型
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayTutorial
	OverlayMediaPopup
)

func (k OverlayKind) String() string {
	switch k {
	case OverlayNone:
		return "none"
	case OverlayTutorial:
		return "tutorial"
	case OverlayMediaPopup:
		return "popup"
	}
	return "unknown"
}

// OverlaySession 记录打开的浮层；Popup 仅在 OverlayMediaPopup 时有值
type OverlaySession struct {
	Kind  OverlayKind
	Popup ui.Popup
}

// PopupID 返回打开的弹窗 id，没有时为空串
func (o OverlaySession) PopupID() string {
	if o.Kind != OverlayMediaPopup || o.Popup == nil {
		return ""
	}
	return o.Popup.ID()
}

// Session 各控制器共享的会话状态
// 只在事件循环中访问，不加锁
type Session struct {
	Viewport       ViewportState
	Overlay        OverlaySession
	Hovered        ecs.EntityID // 0 表示没有悬停
	AmbientPlaying bool
	TutorialSeen   bool // 仅本次会话
	LocationID     string

	generation uint64
}

// NewSession 创建关闭状态的会话，教程尚未显示
func NewSession() *Session {
	return &Session{}
}

// NextGeneration 开始新的地点加载并返回其代数
func (s *Session) NextGeneration() uint64 {
	s.generation++
	return s.generation
}

// Generation 返回最近一次加载的代数
func (s *Session) Generation() uint64 {
	return s.generation
}

// IsCurrent gen 是否属于最近一次加载
func (s *Session) IsCurrent(gen uint64) bool {
	return gen == s.generation
}
