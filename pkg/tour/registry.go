package tour

import (
	"fmt"

	"github.com/decker502/vtour/pkg/components"
	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/ecs"
	"github.com/decker502/vtour/pkg/render"
)

// HotspotRegistry 热点注册表，持有当前地点的热点实体
//
// 每个热点是一个实体，带有 HotspotComponent、SpriteComponent、
// HoverHighlightComponent 和 ClickableComponent，按目录顺序保存
type HotspotRegistry struct {
	entities *ecs.EntityManager
	scene    render.SceneGraph
	iconFor  func(config.HotspotConfig) string
}

// NewHotspotRegistry 创建空注册表；iconFor 解析条目的精灵图标
func NewHotspotRegistry(scene render.SceneGraph, iconFor func(config.HotspotConfig) string) *HotspotRegistry {
	return &HotspotRegistry{
		entities: ecs.NewEntityManager(),
		scene:    scene,
		iconFor:  iconFor,
	}
}

// Populate 为每个条目创建精灵，并一次性全部挂到交互组
func (r *HotspotRegistry) Populate(specs []config.HotspotConfig) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(specs))
	nodes := make([]render.Node, 0, len(specs))

	for i, spec := range specs {
		hotspot := components.NewHotspotComponent(i, spec)
		sprite := r.scene.NewSprite(render.SpriteSpec{
			Name:     spriteName(hotspot, i),
			Icon:     r.iconFor(spec),
			Position: spec.Position,
			Scale:    spec.Scale,
			Tint:     hotspot.BaseTint(),
		})

		id := r.entities.CreateEntity()
		ecs.AddComponent(r.entities, id, hotspot)
		ecs.AddComponent(r.entities, id, &components.SpriteComponent{Sprite: sprite, Scale: spec.Scale})
		ecs.AddComponent(r.entities, id, components.NewHoverHighlightComponent(hotspot.BaseTint()))
		ecs.AddComponent(r.entities, id, &components.ClickableComponent{IsEnabled: true})

		ids = append(ids, id)
		nodes = append(nodes, sprite)
	}

	if len(nodes) > 0 {
		r.scene.AddToGroup(nodes...)
	}
	return ids
}

func spriteName(h *components.HotspotComponent, index int) string {
	if p, ok := h.Payload.(components.MediaPayload); ok {
		return "sprite_" + p.TargetID
	}
	return fmt.Sprintf("%s_%d", h.Kind, index)
}

// Clear 销毁所有热点实体，按目录顺序返回精灵
// 精灵由调用方释放
func (r *HotspotRegistry) Clear() []render.Sprite {
	ids := r.entities.Entities()
	sprites := make([]render.Sprite, 0, len(ids))
	for _, id := range ids {
		if sc, ok := ecs.GetComponent[*components.SpriteComponent](r.entities, id); ok && sc.Sprite != nil {
			sprites = append(sprites, sc.Sprite)
		}
		r.entities.DestroyEntity(id)
	}
	r.entities.RemoveMarkedEntities()
	return sprites
}

// Len 返回存活热点数量
func (r *HotspotRegistry) Len() int {
	return r.entities.Count()
}

// IDs 按目录顺序返回热点实体
func (r *HotspotRegistry) IDs() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.HotspotComponent, *components.SpriteComponent](r.entities)
}

// Nodes 返回作为射线检测候选的热点精灵
func (r *HotspotRegistry) Nodes() []render.Node {
	ids := r.IDs()
	nodes := make([]render.Node, 0, len(ids))
	for _, id := range ids {
		sc, _ := ecs.GetComponent[*components.SpriteComponent](r.entities, id)
		nodes = append(nodes, sc.Sprite)
	}
	return nodes
}

// Lookup 把命中的节点映射回热点实体
func (r *HotspotRegistry) Lookup(node render.Node) (ecs.EntityID, bool) {
	for _, id := range r.IDs() {
		sc, _ := ecs.GetComponent[*components.SpriteComponent](r.entities, id)
		if render.Node(sc.Sprite) == node {
			return id, true
		}
	}
	return 0, false
}

// Hotspot 获取实体的热点组件
func (r *HotspotRegistry) Hotspot(id ecs.EntityID) (*components.HotspotComponent, bool) {
	return ecs.GetComponent[*components.HotspotComponent](r.entities, id)
}

// Sprite 获取实体的精灵
func (r *HotspotRegistry) Sprite(id ecs.EntityID) (render.Sprite, bool) {
	sc, ok := ecs.GetComponent[*components.SpriteComponent](r.entities, id)
	if !ok {
		return nil, false
	}
	return sc.Sprite, true
}

// Clickable 实体是否可点击
func (r *HotspotRegistry) Clickable(id ecs.EntityID) bool {
	c, ok := ecs.GetComponent[*components.ClickableComponent](r.entities, id)
	return ok && c.IsEnabled
}

// SetHighlight 在悬停色和基础色之间切换
// 未知实体忽略
func (r *HotspotRegistry) SetHighlight(id ecs.EntityID, active bool) {
	h, ok := ecs.GetComponent[*components.HoverHighlightComponent](r.entities, id)
	if !ok {
		return
	}
	h.IsActive = active
	if sprite, ok := r.Sprite(id); ok {
		if mat := sprite.Material(); mat != nil {
			mat.SetColor(h.Tint())
		}
	}
}

// Highlighted 实体当前是否使用悬停色
func (r *HotspotRegistry) Highlighted(id ecs.EntityID) bool {
	h, ok := ecs.GetComponent[*components.HoverHighlightComponent](r.entities, id)
	return ok && h.IsActive
}

// Animate 为所有信息标记应用呼吸缩放
// scale = base * (0.8 + 0.13*sin(t*5))，默认信息标记即 8 ± 1.3
func (r *HotspotRegistry) Animate(elapsed float64) {
	factor := pulseFactor(elapsed)
	for _, id := range r.IDs() {
		hs, _ := r.Hotspot(id)
		if !hs.Pulses() {
			continue
		}
		sc, _ := ecs.GetComponent[*components.SpriteComponent](r.entities, id)
		s := sc.Scale * factor
		sc.Sprite.SetScale(s, s)
	}
}
