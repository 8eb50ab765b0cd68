// Package ui 声明浏览核心显示和隐藏的界面元素
//
// 核心只切换可见性、设置提示文字、操作媒体元素，不持有界面本身
package ui

// ElementID 界面元素名
type ElementID string

// 界面元素
const (
	ElemCanvas      ElementID = "canvas"     // 渲染面
	ElemReturn      ElementID = "btn-return" // 返回首页
	ElemAudioToggle ElementID = "btn-audio"  // 环境音开关
	ElemPopupClose  ElementID = "btn-back"   // 关闭媒体弹窗
	ElemTutorial    ElementID = "tutorial"   // 首次访问教程
	ElemTitle       ElementID = "title"      // 首页标题
	ElemSubtitle    ElementID = "subtitle"   // 首页副标题
	ElemTourList    ElementID = "tour-list"  // 首页路线说明
	ElemMenu        ElementID = "menu"       // 地点按钮
)

// NavigationChrome 视口打开时隐藏
var NavigationChrome = []ElementID{ElemTitle, ElemSubtitle, ElemTourList, ElemMenu}

// Surface 可显示的元素
type Surface interface {
	Show()
	Hide()
	Visible() bool
}

// MediaElement 音频或视频元素
type MediaElement interface {
	ID() string
	// Play 开始播放，成功后通知播放监听
	Play() error
	Pause()
	Rewind()
	Playing() bool
}

// AmbientTrack 承载地点背景音的媒体元素
type AmbientTrack interface {
	MediaElement
	SetSource(path string)
	Load()
	Source() string
}

// Popup 媒体弹窗
type Popup interface {
	Surface
	ID() string
	Media() []MediaElement
}

// Tooltip 热点提示框
type Tooltip interface {
	ShowAt(text string, x, y float64)
	Hide()
}

// PlayListener 任一媒体元素开始播放时调用
type PlayListener func(started MediaElement)

// Presentation 浏览器驱动的界面
type Presentation interface {
	Element(id ElementID) (Surface, bool)
	Popup(id string) (Popup, bool)
	Popups() []Popup
	Tooltip() Tooltip

	SetScrollLocked(locked bool)
	SetPointerCursor(pointer bool)
	SetAudioIcon(playing bool)

	AmbientTrack() (AmbientTrack, bool)
	MediaElements() []MediaElement
	// OnMediaPlay 注册播放事件的捕获监听
	OnMediaPlay(listener PlayListener)
}
