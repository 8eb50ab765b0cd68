package tour

import (
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/render"
)

// SceneResourceManager 场景资源管理器
// 释放地点挂到场景上的资源：热点精灵、可选模型以及旧的全景贴图
type SceneResourceManager struct {
	scene    render.SceneGraph
	registry *HotspotRegistry
	log      zerolog.Logger
	metrics  *Metrics

	model      render.Model
	background render.Texture
}

// NewSceneResourceManager 创建管理器，跟踪注册表中的精灵
func NewSceneResourceManager(scene render.SceneGraph, registry *HotspotRegistry, log zerolog.Logger, metrics *Metrics) *SceneResourceManager {
	return &SceneResourceManager{
		scene:    scene,
		registry: registry,
		log:      log.With().Str("component", "resources").Logger(),
		metrics:  metrics,
	}
}

// releaseTally 一次释放过程的统计
type releaseTally struct {
	textures, materials, geometries, sprites int
}

// Clear 释放所有热点精灵（贴图、材质、再移出场景）和当前模型
// 之后注册表为空
func (m *SceneResourceManager) Clear() {
	var tally releaseTally

	for _, sprite := range m.registry.Clear() {
		if mat := sprite.Material(); mat != nil {
			if tex := mat.Map(); tex != nil {
				tex.Dispose()
				tally.textures++
			}
			mat.Dispose()
			tally.materials++
		}
		m.scene.RemoveFromGroup(sprite)
		tally.sprites++
	}

	if m.model != nil {
		m.releaseModel(m.model, &tally)
		m.scene.RemoveFromGroup(m.model)
		m.model = nil
	}

	m.report(tally)
}

// SetModel 记录当前地点挂载的模型
// 旧模型先被释放
func (m *SceneResourceManager) SetModel(model render.Model) {
	if m.model != nil && m.model != model {
		var tally releaseTally
		m.releaseModel(m.model, &tally)
		m.scene.RemoveFromGroup(m.model)
		m.report(tally)
	}
	m.model = model
}

// Model 返回已挂载的模型，没有时为 nil
func (m *SceneResourceManager) Model() render.Model {
	return m.model
}

// DiscardModel 释放从未挂载的模型（过期的加载结果）
func (m *SceneResourceManager) DiscardModel(model render.Model) {
	var tally releaseTally
	m.releaseModel(model, &tally)
	m.report(tally)
}

// ReleaseMaterials 释放材质及其贴图，每个只释放一次
func (m *SceneResourceManager) ReleaseMaterials(materials []render.Material) {
	var tally releaseTally
	m.releaseMaterials(materials, make(map[render.Disposable]bool), &tally)
	m.report(tally)
}

// SwapBackground 安装新的全景贴图并释放旧的
func (m *SceneResourceManager) SwapBackground(tex render.Texture) {
	old := m.background
	m.background = tex
	m.scene.SetBackground(tex)
	if old != nil && old != tex {
		old.Dispose()
		m.report(releaseTally{textures: 1})
	}
}

// Background 返回当前全景贴图，没有时为 nil
func (m *SceneResourceManager) Background() render.Texture {
	return m.background
}

// releaseModel 释放模型的几何体、材质和材质贴图
// 共享资源只释放一次
func (m *SceneResourceManager) releaseModel(model render.Model, tally *releaseTally) {
	seen := make(map[render.Disposable]bool)
	model.Traverse(func(mesh render.Mesh) {
		if g := mesh.Geometry(); g != nil && !seen[g] {
			seen[g] = true
			g.Dispose()
			tally.geometries++
		}
		m.releaseMaterials(mesh.Materials(), seen, tally)
	})
}

func (m *SceneResourceManager) releaseMaterials(materials []render.Material, seen map[render.Disposable]bool, tally *releaseTally) {
	for _, mat := range materials {
		if mat == nil || seen[mat] {
			continue
		}
		seen[mat] = true
		if tex := mat.Map(); tex != nil && !seen[tex] {
			seen[tex] = true
			tex.Dispose()
			tally.textures++
		}
		mat.Dispose()
		tally.materials++
	}
}

func (m *SceneResourceManager) report(t releaseTally) {
	if t == (releaseTally{}) {
		return
	}
	m.log.Debug().
		Int("textures", t.textures).
		Int("materials", t.materials).
		Int("geometries", t.geometries).
		Int("sprites", t.sprites).
		Msg("released scene resources")
	m.metrics.resourceReleased("texture", t.textures)
	m.metrics.resourceReleased("material", t.materials)
	m.metrics.resourceReleased("geometry", t.geometries)
	m.metrics.resourceReleased("sprite", t.sprites)
}
