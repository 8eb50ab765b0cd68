package components

import "github.com/decker502/vtour/pkg/render"

// HoverHighlightComponent 悬停高亮组件
// 热点被指针悬停时改用暗色，离开时恢复常态颜色
type HoverHighlightComponent struct {
	// BaseTint 常态颜色
	BaseTint render.Color

	// HoverTint 悬停颜色
	HoverTint render.Color

	// IsActive 是否处于悬停状态
	IsActive bool
}

// NewHoverHighlightComponent 创建处于 Normal 状态的高亮组件
func NewHoverHighlightComponent(base render.Color) *HoverHighlightComponent {
	return &HoverHighlightComponent{
		BaseTint:  base,
		HoverTint: render.ColorDimmed,
	}
}

// Tint 返回当前状态对应的颜色
func (h *HoverHighlightComponent) Tint() render.Color {
	if h.IsActive {
		return h.HoverTint
	}
	return h.BaseTint
}
