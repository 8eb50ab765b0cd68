package tour

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
)

// LocationLoader 地点加载器
// 用目录中的地点替换场景内容
//
// 背景和模型异步加载。每次加载记录会话代数（generation），
// 在新地点开始加载之后才到达的结果只释放、不生效。
type LocationLoader struct {
	catalog   *config.Catalog
	scene     render.SceneGraph
	assets    render.AssetLoader
	resources *SceneResourceManager
	registry  *HotspotRegistry
	audio     *AmbientAudioController
	session   *Session
	log       zerolog.Logger
	metrics   *Metrics

	current *config.Location
}

// NewLocationLoader 创建加载器
func NewLocationLoader(
	catalog *config.Catalog,
	scene render.SceneGraph,
	assets render.AssetLoader,
	resources *SceneResourceManager,
	registry *HotspotRegistry,
	audio *AmbientAudioController,
	session *Session,
	log zerolog.Logger,
	metrics *Metrics,
) *LocationLoader {
	return &LocationLoader{
		catalog:   catalog,
		scene:     scene,
		assets:    assets,
		resources: resources,
		registry:  registry,
		audio:     audio,
		session:   session,
		log:       log.With().Str("component", "loader").Logger(),
		metrics:   metrics,
	}
}

// Load 按 id 加载地点
func (l *LocationLoader) Load(id string) error {
	loc, ok := l.catalog.Location(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, id)
	}
	l.LoadLocation(loc)
	return nil
}

// LoadLocation 清理上一个地点并构建新地点
// 步骤：
//  1. 释放精灵和模型
//  2. 请求全景图
//  3. 设置球体旋转
//  4. 创建热点
//  5. 切换环境音
//  6. 如有模型则请求加载
//  7. 重置相机
func (l *LocationLoader) LoadLocation(loc *config.Location) {
	l.resources.Clear()
	l.session.Hovered = 0

	gen := l.session.NextGeneration()
	l.session.LocationID = loc.ID
	l.current = loc
	l.log.Info().Str("location", loc.ID).Uint64("generation", gen).Msg("loading location")

	l.assets.LoadImage(loc.Background, func(tex render.Texture, err error) {
		l.onBackground(gen, loc, tex, err)
	})

	l.scene.SetSphereRotation(loc.SphereRotationRadians())

	l.registry.Populate(loc.Hotspots)

	l.audio.SwitchTrack(loc.Audio)

	if loc.Model != nil {
		l.loadModel(gen, loc)
	}

	l.scene.ResetCamera()
	l.scene.UpdateControls()

	l.metrics.locationLoaded(loc.ID)
}

// Current 返回最近一次请求的地点，没有时为 nil
func (l *LocationLoader) Current() *config.Location {
	return l.current
}

func (l *LocationLoader) onBackground(gen uint64, loc *config.Location, tex render.Texture, err error) {
	if !l.session.IsCurrent(gen) {
		if tex != nil {
			tex.Dispose()
		}
		l.log.Debug().Str("location", loc.ID).Msg("stale panorama dropped")
		return
	}
	if err != nil {
		l.log.Warn().Err(err).Str("error_kind", kindAssetLoadFailure).Str("path", loc.Background).Msg("panorama load failed")
		l.metrics.assetFailed("image")
		return
	}
	l.resources.SwapBackground(tex)
	l.scene.Render()
}

func (l *LocationLoader) loadModel(gen uint64, loc *config.Location) {
	cfg := loc.Model
	log := l.log.With().Str("location", loc.ID).Str("path", cfg.Path).Logger()

	onDone := func(model render.Model) {
		if !l.session.IsCurrent(gen) {
			l.resources.DiscardModel(model)
			log.Debug().Msg("stale model dropped")
			return
		}

		mat := l.scene.NewMaterial(cfg.Material)
		var replaced []render.Material
		model.Traverse(func(mesh render.Mesh) {
			replaced = append(replaced, mesh.Materials()...)
			mesh.SetMaterial(mat)
		})
		l.resources.ReleaseMaterials(replaced)

		model.SetTransform(cfg.Position, cfg.RotationRadians(), cfg.Scale)
		l.resources.SetModel(model)
		l.scene.AddToGroup(model)
		l.scene.Render()
		log.Info().Msg("model attached")
	}

	onProgress := func(loaded, total int64) {
		if total > 0 {
			log.Debug().Float64("percent", float64(loaded)/float64(total)*100).Msg("model loading")
		}
	}

	onError := func(err error) {
		if !l.session.IsCurrent(gen) {
			return
		}
		log.Warn().Err(err).Str("error_kind", kindAssetLoadFailure).Msg("model load failed")
		l.metrics.assetFailed("model")
	}

	l.assets.LoadModel(cfg.Path, onDone, onProgress, onError)
}
