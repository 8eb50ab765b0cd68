package components

import (
	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
)

// HotspotKind 热点的视觉类型
type HotspotKind int

const (
	// HotspotInfo 信息标记（显示提示文字）
	HotspotInfo HotspotKind = iota
	// HotspotInfoAlt 信息标记（使用播放图标）
	HotspotInfoAlt
	// HotspotMedia 媒体触发器（打开弹窗）
	HotspotMedia
)

// String 返回目录中的类型写法
func (k HotspotKind) String() string {
	switch k {
	case HotspotInfo:
		return config.HotspotKindInfo
	case HotspotInfoAlt:
		return config.HotspotKindInfoAlt
	case HotspotMedia:
		return config.HotspotKindMedia
	}
	return "unknown"
}

// HotspotPayload 热点的类型相关数据：InfoPayload 或 MediaPayload
type HotspotPayload interface {
	isHotspotPayload()
}

// InfoPayload 信息标记的提示文字
type InfoPayload struct {
	Message string
}

// MediaPayload 媒体触发器的目标弹窗
type MediaPayload struct {
	TargetID string
}

func (InfoPayload) isHotspotPayload()  {}
func (MediaPayload) isHotspotPayload() {}

// HotspotComponent 热点组件
// 由目录中的 HotspotConfig 实例化，随所属地点一起销毁
type HotspotComponent struct {
	Kind     HotspotKind
	Payload  HotspotPayload
	Position config.Vec3
	Index    int // 在地点热点列表中的序号
}

// NewHotspotComponent 由目录条目创建组件
// 目录加载时已校验，未知类型按信息标记处理
func NewHotspotComponent(index int, h config.HotspotConfig) *HotspotComponent {
	c := &HotspotComponent{Position: h.Position, Index: index}
	switch h.Kind {
	case config.HotspotKindMedia:
		c.Kind = HotspotMedia
		c.Payload = MediaPayload{TargetID: h.Target}
	case config.HotspotKindInfoAlt:
		c.Kind = HotspotInfoAlt
		c.Payload = InfoPayload{Message: h.Message}
	default:
		c.Kind = HotspotInfo
		c.Payload = InfoPayload{Message: h.Message}
	}
	return c
}

// BaseTint 返回热点的常态颜色
// 信息标记图标为黑色，其余为白色（不改变贴图颜色）
func (c *HotspotComponent) BaseTint() render.Color {
	if c.Kind == HotspotInfo {
		return render.ColorBlack
	}
	return render.ColorWhite
}

// Pulses 是否逐帧呼吸缩放
func (c *HotspotComponent) Pulses() bool {
	return c.Kind != HotspotMedia
}
