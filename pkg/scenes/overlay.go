package scenes

import (
	"fmt"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/game"
	"github.com/decker502/vtour/pkg/ui"
)

// 布局常量
const (
	chromeMargin   = 20.0
	chromeButtonW  = 120.0
	chromeButtonH  = 36.0
	menuButtonW    = 260.0
	menuButtonH    = 40.0
	menuTop        = 170.0
	tooltipPadding = 6.0
)

// OverlayCallbacks 界面按钮触发的动作
type OverlayCallbacks struct {
	OpenLocation    func(id string)
	Return          func()
	ToggleAudio     func()
	ClosePopup      func()
	DismissTutorial func()
}

// popupPanel 媒体弹窗
type popupPanel struct {
	surface
	cfg     config.PopupConfig
	clip    *game.MediaPlayer // 可为 nil
	playBtn *button
}

func (p *popupPanel) ID() string { return p.cfg.ID }

func (p *popupPanel) Media() []ui.MediaElement {
	if p.clip == nil {
		return nil
	}
	return []ui.MediaElement{p.clip}
}

// tooltipBox 热点提示
type tooltipBox struct {
	text    string
	x, y    float64
	visible bool
}

func (t *tooltipBox) ShowAt(label string, x, y float64) {
	t.text, t.x, t.y, t.visible = label, x, y, true
}

func (t *tooltipBox) Hide() { t.visible = false }

// Overlay 界面层
// 负责落地页菜单、查看器按钮、教程、媒体弹窗和提示框
type Overlay struct {
	width, height int
	catalog       *config.Catalog
	audio         *game.AudioManager
	callbacks     OverlayCallbacks
	log           zerolog.Logger

	surfaces map[ui.ElementID]*surface

	returnBtn   *button
	audioBtn    *button
	closeBtn    *button
	tutorialBtn *button
	menuButtons []*button
	buttons     []*button // 所有按钮，按命中测试顺序

	popups  []*popupPanel
	tooltip tooltipBox

	face      text.Face // 正文和按钮
	titleFace text.Face // 落地页标题

	scrollLocked bool
	pointer      bool
	audioOn      bool
}

// NewOverlay 创建界面层；落地页初始可见
// 调用 UseFont 之前不绘制文字
//
// 参数：
//   - catalog: 地点、弹窗和教程文字
//   - am: AudioManager（环境音轨和弹窗音频）
//   - soundDir: 弹窗音频所在目录
func NewOverlay(catalog *config.Catalog, am *game.AudioManager, soundDir string, width, height int, cb OverlayCallbacks, log zerolog.Logger) *Overlay {
	o := &Overlay{
		width:     width,
		height:    height,
		catalog:   catalog,
		audio:     am,
		callbacks: cb,
		log:       log.With().Str("component", "overlay").Logger(),
		surfaces:  make(map[ui.ElementID]*surface),
	}

	for _, id := range []ui.ElementID{ui.ElemCanvas, ui.ElemTutorial} {
		o.surfaces[id] = &surface{}
	}
	for _, id := range ui.NavigationChrome {
		o.surfaces[id] = &surface{visible: true}
	}

	w := float64(width)
	o.returnBtn = newButton("Retour", rect{chromeMargin, chromeMargin, chromeButtonW, chromeButtonH}, func() { call(cb.Return) })
	o.audioBtn = newButton("Son: off", rect{w - chromeMargin - chromeButtonW, chromeMargin, chromeButtonW, chromeButtonH}, func() { call(cb.ToggleAudio) })

	panel := o.panelRect()
	o.closeBtn = newButton("Fermer", rect{panel.x + panel.w - chromeButtonW - 12, panel.y + panel.h - chromeButtonH - 12, chromeButtonW, chromeButtonH}, func() { call(cb.ClosePopup) })
	o.tutorialBtn = newButton(catalog.Tutorial.Button, rect{panel.x + (panel.w-chromeButtonW)/2, panel.y + panel.h - chromeButtonH - 12, chromeButtonW, chromeButtonH}, func() { call(cb.DismissTutorial) })

	for i, loc := range catalog.Locations {
		id := loc.ID
		label := loc.Title
		if label == "" {
			label = loc.ID
		}
		b := newButton(label, rect{40, menuTop + float64(i)*(menuButtonH+10), menuButtonW, menuButtonH}, func() {
			if cb.OpenLocation != nil {
				cb.OpenLocation(id)
			}
		})
		b.visible = true
		o.menuButtons = append(o.menuButtons, b)
	}

	for _, pc := range catalog.Popups {
		p := &popupPanel{cfg: pc}
		if pc.Audio != "" {
			p.clip = am.NewClip(pc.ID+"-audio", path.Join(soundDir, pc.Audio))
			clip := p.clip
			p.playBtn = newButton("Lecture", rect{panel.x + 12, panel.y + panel.h - chromeButtonH - 12, chromeButtonW, chromeButtonH}, func() {
				if err := clip.Play(); err != nil {
					o.log.Warn().Err(err).Str("error_kind", "PlaybackBlocked").Str("media", clip.ID()).Msg("popup playback rejected")
				}
			})
		}
		o.popups = append(o.popups, p)
	}

	o.buttons = append(o.buttons, o.returnBtn, o.audioBtn, o.closeBtn, o.tutorialBtn)
	o.buttons = append(o.buttons, o.menuButtons...)
	for _, p := range o.popups {
		if p.playBtn != nil {
			o.buttons = append(o.buttons, p.playBtn)
		}
	}
	return o
}

// UseFont 通过资源管理器加载正文和标题字体；path 为空时使用内置字体
func (o *Overlay) UseFont(rm *game.ResourceManager, path string) error {
	face, err := rm.LoadFont(path, bodyFontSize)
	if err != nil {
		return err
	}
	titleFace, err := rm.LoadFont(path, titleFontSize)
	if err != nil {
		return err
	}
	o.face, o.titleFace = face, titleFace
	return nil
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (o *Overlay) panelRect() rect {
	w := float64(o.width) * 0.6
	h := float64(o.height) * 0.5
	return rect{(float64(o.width) - w) / 2, (float64(o.height) - h) / 2, w, h}
}

// Element 返回界面元素
func (o *Overlay) Element(id ui.ElementID) (ui.Surface, bool) {
	switch id {
	case ui.ElemReturn:
		return &o.returnBtn.surface, true
	case ui.ElemAudioToggle:
		return &o.audioBtn.surface, true
	case ui.ElemPopupClose:
		return &o.closeBtn.surface, true
	}
	s, ok := o.surfaces[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// Popup 返回指定弹窗
func (o *Overlay) Popup(id string) (ui.Popup, bool) {
	for _, p := range o.popups {
		if p.cfg.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Popups 返回所有弹窗
func (o *Overlay) Popups() []ui.Popup {
	out := make([]ui.Popup, 0, len(o.popups))
	for _, p := range o.popups {
		out = append(out, p)
	}
	return out
}

// Tooltip 返回提示框
func (o *Overlay) Tooltip() ui.Tooltip {
	return &o.tooltip
}

// SetScrollLocked 记录滚动锁定（桌面窗口没有页面滚动）
func (o *Overlay) SetScrollLocked(locked bool) {
	o.scrollLocked = locked
}

// ScrollLocked 返回滚动锁定状态
func (o *Overlay) ScrollLocked() bool {
	return o.scrollLocked
}

// SetPointerCursor 切换手型光标
func (o *Overlay) SetPointerCursor(pointer bool) {
	if pointer == o.pointer {
		return
	}
	o.pointer = pointer
	if pointer {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// SetAudioIcon 更新音频按钮文字
func (o *Overlay) SetAudioIcon(playing bool) {
	o.audioOn = playing
	if playing {
		o.audioBtn.label = "Son: on"
	} else {
		o.audioBtn.label = "Son: off"
	}
}

// AmbientTrack 返回环境音轨
func (o *Overlay) AmbientTrack() (ui.AmbientTrack, bool) {
	return o.audio.Ambient(), true
}

// MediaElements 返回所有媒体元素
func (o *Overlay) MediaElements() []ui.MediaElement {
	return o.audio.Elements()
}

// OnMediaPlay 注册播放监听器
func (o *Overlay) OnMediaPlay(listener ui.PlayListener) {
	o.audio.OnPlay(listener)
}

// modal 返回当前遮挡场景的面板
func (o *Overlay) modal() (rect, bool) {
	if o.surfaces[ui.ElemTutorial].visible {
		return o.panelRect(), true
	}
	for _, p := range o.popups {
		if p.visible {
			return o.panelRect(), true
		}
	}
	return rect{}, false
}

// visibleButtons 返回当前可点击的按钮
func (o *Overlay) visibleButtons() []*button {
	menuVisible := o.surfaces[ui.ElemMenu].visible
	tutorialVisible := o.surfaces[ui.ElemTutorial].visible
	var out []*button
	for _, b := range o.buttons {
		switch {
		case b == o.tutorialBtn:
			if tutorialVisible {
				out = append(out, b)
			}
		case o.isMenuButton(b):
			if menuVisible && b.visible {
				out = append(out, b)
			}
		case o.isPlayButton(b):
			if o.playButtonVisible(b) {
				out = append(out, b)
			}
		default:
			if b.visible {
				out = append(out, b)
			}
		}
	}
	return out
}

func (o *Overlay) isMenuButton(b *button) bool {
	for _, m := range o.menuButtons {
		if m == b {
			return true
		}
	}
	return false
}

func (o *Overlay) isPlayButton(b *button) bool {
	for _, p := range o.popups {
		if p.playBtn == b {
			return true
		}
	}
	return false
}

func (o *Overlay) playButtonVisible(b *button) bool {
	for _, p := range o.popups {
		if p.playBtn == b {
			return p.visible
		}
	}
	return false
}

// HitTest 指针是否在界面元素上（可见按钮或模态面板）
func (o *Overlay) HitTest(x, y float64) bool {
	for _, b := range o.visibleButtons() {
		if b.contains(x, y) {
			return true
		}
	}
	if r, ok := o.modal(); ok && r.contains(x, y) {
		return true
	}
	return false
}

// Click 分发点击；返回 true 表示点击落在界面上
func (o *Overlay) Click(x, y float64) bool {
	for _, b := range o.visibleButtons() {
		if b.contains(x, y) {
			b.click()
			return true
		}
	}
	return o.HitTest(x, y)
}

// Hover 更新按钮悬停状态
func (o *Overlay) Hover(x, y float64) {
	visible := o.visibleButtons()
	for _, b := range o.buttons {
		b.hovered = false
	}
	for _, b := range visible {
		b.hovered = b.contains(x, y)
	}
}

// Update 实现 game.Scene
func (o *Overlay) Update(deltaTime float64) {}

// Draw 绘制界面层
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.surfaces[ui.ElemTitle].visible || o.surfaces[ui.ElemMenu].visible {
		o.drawLanding(screen)
	}

	if o.tooltip.visible {
		o.drawTooltip(screen)
	}

	for _, p := range o.popups {
		if p.visible {
			o.drawPopup(screen, p)
		}
	}
	if o.surfaces[ui.ElemTutorial].visible {
		o.drawTutorial(screen)
	}

	for _, b := range o.visibleButtons() {
		b.draw(screen, o.face)
	}
}

func (o *Overlay) drawLanding(screen *ebiten.Image) {
	screen.Fill(panelColor)
	y := 40.0
	if o.surfaces[ui.ElemTitle].visible {
		drawText(screen, o.titleFace, "Visite virtuelle", 40, y)
	}
	y += lineHeight(o.titleFace) + 12
	if o.surfaces[ui.ElemSubtitle].visible {
		drawText(screen, o.face, fmt.Sprintf("%d lieux à découvrir", len(o.catalog.Locations)), 40, y)
	}
	y += 2 * lineHeight(o.face)
	if o.surfaces[ui.ElemTourList].visible {
		ids := make([]string, 0, len(o.catalog.Locations))
		for _, loc := range o.catalog.Locations {
			title := loc.Title
			if title == "" {
				title = loc.ID
			}
			ids = append(ids, title)
		}
		drawText(screen, o.face, "Parcours : "+strings.Join(ids, " › "), 40, y)
	}
}

// tooltipRect 提示框的屏幕矩形，随文字宽度变化
func (o *Overlay) tooltipRect() rect {
	w, h := measureText(o.face, o.tooltip.text)
	return rect{o.tooltip.x, o.tooltip.y, w + 2*tooltipPadding, h + 2*tooltipPadding}
}

func (o *Overlay) drawTooltip(screen *ebiten.Image) {
	drawPanel(screen, o.tooltipRect())
	drawText(screen, o.face, o.tooltip.text, o.tooltip.x+tooltipPadding, o.tooltip.y+tooltipPadding)
}

func (o *Overlay) drawPopup(screen *ebiten.Image, p *popupPanel) {
	r := o.panelRect()
	drawPanel(screen, r)
	lines := []string{p.cfg.Title, ""}
	if p.cfg.Body != "" {
		lines = append(lines, strings.Split(p.cfg.Body, "\n")...)
	}
	if p.cfg.Video != "" {
		lines = append(lines, "", "Video: "+p.cfg.Video)
	}
	drawLines(screen, o.face, lines, r.x+16, r.y+16)
}

func (o *Overlay) drawTutorial(screen *ebiten.Image) {
	r := o.panelRect()
	drawPanel(screen, r)
	lines := append([]string{o.catalog.Tutorial.Title, ""}, o.catalog.Tutorial.Lines...)
	drawLines(screen, o.face, lines, r.x+16, r.y+16)
}
