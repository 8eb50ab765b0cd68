package scenes

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 字号
const (
	bodyFontSize  = 16
	titleFontSize = 28
)

var (
	panelColor       = color.RGBA{R: 16, G: 16, B: 20, A: 220}
	buttonColor      = color.RGBA{R: 60, G: 60, B: 70, A: 230}
	buttonHoverColor = color.RGBA{R: 90, G: 90, B: 110, A: 240}
	borderColor      = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	textColor        = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// surface 可显示/隐藏的界面元素
type surface struct {
	visible bool
}

func (s *surface) Show()         { s.visible = true }
func (s *surface) Hide()         { s.visible = false }
func (s *surface) Visible() bool { return s.visible }

// rect 屏幕矩形
type rect struct {
	x, y, w, h float64
}

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

// button 文字按钮
type button struct {
	surface
	rect
	label   string
	onClick func()
	hovered bool
}

func newButton(label string, r rect, onClick func()) *button {
	return &button{rect: r, label: label, onClick: onClick}
}

func (b *button) hit(x, y float64) bool {
	return b.visible && b.contains(x, y)
}

func (b *button) click() {
	if b.onClick != nil {
		b.onClick()
	}
}

func (b *button) draw(screen *ebiten.Image, face text.Face) {
	if !b.visible {
		return
	}
	fill := buttonColor
	if b.hovered {
		fill = buttonHoverColor
	}
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), fill, false)
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 1, borderColor, false)
	w, h := measureText(face, b.label)
	drawText(screen, face, b.label, b.x+(b.w-w)/2, b.y+(b.h-h)/2)
}

// drawPanel 绘制半透明面板
func drawPanel(screen *ebiten.Image, r rect) {
	vector.DrawFilledRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), panelColor, false)
	vector.StrokeRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, borderColor, false)
}

// lineHeight face 的行高；face 为空时为 0
func lineHeight(face text.Face) float64 {
	if face == nil {
		return 0
	}
	m := face.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// measureText 单行文字的宽高
func measureText(face text.Face, s string) (w, h float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, lineHeight(face))
}

// drawText 绘制一行文字，(x, y) 为行框左上角
func drawText(screen *ebiten.Image, face text.Face, s string, x, y float64) {
	if face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, s, face, op)
}

// drawLines 逐行绘制文字，返回下一行的 y
func drawLines(screen *ebiten.Image, face text.Face, lines []string, x, y float64) float64 {
	step := lineHeight(face) + 2
	for _, line := range lines {
		drawText(screen, face, line, x, y)
		y += step
	}
	return y
}
