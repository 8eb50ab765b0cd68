// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// GetPointerPosition 获取当前指针位置（触摸或鼠标）
// 优先返回触摸位置，如果没有触摸则返回鼠标位置
func GetPointerPosition() (int, int) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[0])
	}
	return ebiten.CursorPosition()
}

// ============================================================================
// 拖拽状态管理器 - 用于拖拽旋转全景和区分点击
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（释放）
	DragStateEnded
)

// String 返回状态名
func (s DragState) String() string {
	switch s {
	case DragStateStarted:
		return "started"
	case DragStateDragging:
		return "dragging"
	case DragStateEnded:
		return "ended"
	default:
		return "none"
	}
}

// ClickThreshold 按下到释放之间移动不超过此距离（像素）视为点击
const ClickThreshold = 5

// PointerSample 一帧的指针采样
type PointerSample struct {
	Pressed bool
	X, Y    int
	TouchID ebiten.TouchID // -1 表示鼠标
	Touch   bool
}

// DragInfo 拖拽信息
type DragInfo struct {
	// State 当前拖拽状态
	State DragState
	// StartX, StartY 拖拽起始位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标）
	CurrentX, CurrentY int
	// LastX, LastY 上一帧位置
	LastX, LastY int
	// TouchID 当前跟踪的触摸ID（-1表示鼠标）
	TouchID ebiten.TouchID
	// IsTouchInput 是否为触摸输入（区分触摸和鼠标）
	IsTouchInput bool
}

// DragManager 拖拽管理器
// 跟踪触摸/鼠标的拖拽状态；每个 App 持有自己的实例
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	dm := &DragManager{}
	dm.Reset()
	return dm
}

// Update 采样 Ebitengine 输入并推进状态（每帧调用一次）
func (dm *DragManager) Update() {
	dm.Step(dm.sample())
}

// sample 读取当前帧的指针
// 正在跟踪的触摸优先，其次是新的触摸，最后是鼠标
func (dm *DragManager) sample() PointerSample {
	if dm.info.State != DragStateNone && dm.info.IsTouchInput {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == dm.info.TouchID {
				x, y := ebiten.TouchPosition(id)
				return PointerSample{Pressed: true, X: x, Y: y, TouchID: id, Touch: true}
			}
		}
		return PointerSample{X: dm.info.CurrentX, Y: dm.info.CurrentY, TouchID: dm.info.TouchID, Touch: true}
	}

	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 && dm.info.State == DragStateNone {
		x, y := ebiten.TouchPosition(ids[0])
		return PointerSample{Pressed: true, X: x, Y: y, TouchID: ids[0], Touch: true}
	}

	x, y := ebiten.CursorPosition()
	return PointerSample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
		TouchID: -1,
	}
}

// Step 用一帧的采样推进状态机
func (dm *DragManager) Step(s PointerSample) {
	switch dm.info.State {
	case DragStateNone:
		if s.Pressed {
			dm.info = DragInfo{
				State:        DragStateStarted,
				StartX:       s.X,
				StartY:       s.Y,
				CurrentX:     s.X,
				CurrentY:     s.Y,
				LastX:        s.X,
				LastY:        s.Y,
				TouchID:      s.TouchID,
				IsTouchInput: s.Touch,
			}
		}

	case DragStateStarted, DragStateDragging:
		dm.info.LastX, dm.info.LastY = dm.info.CurrentX, dm.info.CurrentY
		if !s.Pressed {
			// 结束状态只持续一帧
			dm.info.State = DragStateEnded
			return
		}
		dm.info.State = DragStateDragging
		dm.info.CurrentX, dm.info.CurrentY = s.X, s.Y

	case DragStateEnded:
		dm.Reset()
		dm.Step(s)
	}
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}

// GetState 获取当前拖拽状态
func (dm *DragManager) GetState() DragState {
	return dm.info.State
}

// GetInfo 获取完整拖拽信息
func (dm *DragManager) GetInfo() DragInfo {
	return dm.info
}

// IsDragging 是否正在拖拽
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

// JustStarted 是否刚开始拖拽（本帧）
func (dm *DragManager) JustStarted() bool {
	return dm.info.State == DragStateStarted
}

// JustEnded 是否刚结束拖拽（本帧）
func (dm *DragManager) JustEnded() bool {
	return dm.info.State == DragStateEnded
}

// GetDragDistance 获取拖拽距离（从起点到当前位置）
func (dm *DragManager) GetDragDistance() (dx, dy int) {
	return dm.info.CurrentX - dm.info.StartX, dm.info.CurrentY - dm.info.StartY
}

// FrameDelta 本帧相对上一帧的移动
func (dm *DragManager) FrameDelta() (dx, dy int) {
	return dm.info.CurrentX - dm.info.LastX, dm.info.CurrentY - dm.info.LastY
}

// IsClick 本帧是否以点击结束（移动不超过 ClickThreshold）
func (dm *DragManager) IsClick() bool {
	if !dm.JustEnded() {
		return false
	}
	dx, dy := dm.GetDragDistance()
	return dx*dx+dy*dy <= ClickThreshold*ClickThreshold
}
