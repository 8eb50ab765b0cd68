package components

import "github.com/decker502/vtour/pkg/render"

// SpriteComponent 热点在场景图中的精灵
type SpriteComponent struct {
	Sprite render.Sprite
	Scale  float64 // 目录中的基础缩放
}
