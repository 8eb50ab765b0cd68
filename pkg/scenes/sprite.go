package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/game"
	"github.com/decker502/vtour/pkg/render"
)

// spriteMaterial 精灵材质：一张贴图加一个颜色
type spriteMaterial struct {
	tex      *game.Texture // 可为 nil
	color    render.Color
	disposed bool
}

func (m *spriteMaterial) Map() render.Texture {
	if m.tex == nil {
		return nil
	}
	return m.tex
}

func (m *spriteMaterial) SetColor(c render.Color) { m.color = c }
func (m *spriteMaterial) Color() render.Color     { return m.color }
func (m *spriteMaterial) Dispose()                { m.disposed = true }

// modelMaterial 模型统一材质；绘制时只使用颜色
type modelMaterial struct {
	spec     config.MaterialConfig
	color    render.Color
	disposed bool
}

func (m *modelMaterial) Map() render.Texture     { return nil }
func (m *modelMaterial) SetColor(c render.Color) { m.color = c }
func (m *modelMaterial) Color() render.Color     { return m.color }
func (m *modelMaterial) Dispose()                { m.disposed = true }

// spriteNode 始终面向相机的精灵
type spriteNode struct {
	name     string
	position vec3
	scaleX   float32 // 世界单位
	scaleY   float32
	material *spriteMaterial
}

func (s *spriteNode) Name() string              { return s.name }
func (s *spriteNode) Material() render.Material { return s.material }

func (s *spriteNode) SetScale(x, y float64) {
	s.scaleX, s.scaleY = float32(x), float32(y)
}

func (s *spriteNode) image() *ebiten.Image {
	if s.material == nil || s.material.tex == nil || s.material.tex.Released() {
		return nil
	}
	return s.material.tex.Image()
}

// screenRect 返回投影后的精灵矩形
func (s *spriteNode) screenRect(cam *Camera) (x, y, w, h, depth float32, ok bool) {
	sx, sy, z, visible := cam.Project(s.position)
	if !visible {
		return 0, 0, 0, 0, z, false
	}
	w = s.scaleX / z * cam.Focal()
	h = s.scaleY / z * cam.Focal()
	return sx - w/2, sy - h/2, w, h, z, true
}

func toVec3(v config.Vec3) vec3 {
	return vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
