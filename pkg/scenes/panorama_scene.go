package scenes

import (
	_ "embed"
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/game"
	"github.com/decker502/vtour/pkg/render"
)

//go:embed shaders/panorama.kage
var panoramaShaderSrc []byte

// iconSize 备用图标边长（像素）
const iconSize = 32

// PanoramaScene 全景场景
// 在球心放置相机，用 Kage 着色器把等距柱状投影贴图画满屏幕，
// 模型三角形和热点精灵按深度从远到近绘制在上层
type PanoramaScene struct {
	resources *game.ResourceManager
	shader    *ebiten.Shader
	camera    *Camera
	log       zerolog.Logger

	background render.Texture
	sphereRot  float64
	group      []render.Node

	controlsEnabled bool
	frames          int

	width, height int // 逻辑屏幕尺寸
}

// NewPanoramaScene 创建全景场景
//
// 参数：
//   - rm: ResourceManager（加载精灵图标）
//   - width, height: 逻辑屏幕尺寸
func NewPanoramaScene(rm *game.ResourceManager, width, height int, log zerolog.Logger) (*PanoramaScene, error) {
	shader, err := ebiten.NewShader(panoramaShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile panorama shader: %w", err)
	}
	return &PanoramaScene{
		resources: rm,
		shader:    shader,
		camera:    NewCamera(width, height),
		log:       log.With().Str("component", "panorama").Logger(),
		width:     width,
		height:    height,
	}, nil
}

// Camera 返回场景相机
func (s *PanoramaScene) Camera() *Camera {
	return s.camera
}

// NewSprite 创建精灵；图标缺失时使用纯色方块
func (s *PanoramaScene) NewSprite(spec render.SpriteSpec) render.Sprite {
	tex, err := s.resources.AcquireImage(spec.Icon)
	if err != nil {
		s.log.Warn().Err(err).Str("error_kind", "AssetLoadFailure").Str("icon", spec.Icon).Msg("sprite icon missing")
		img := ebiten.NewImage(iconSize, iconSize)
		img.Fill(color.White)
		tex = game.NewStandaloneTexture(img)
	}
	return &spriteNode{
		name:     spec.Name,
		position: toVec3(spec.Position),
		scaleX:   float32(spec.Scale),
		scaleY:   float32(spec.Scale),
		material: &spriteMaterial{tex: tex, color: spec.Tint},
	}
}

// NewMaterial 创建模型统一材质
func (s *PanoramaScene) NewMaterial(spec config.MaterialConfig) render.Material {
	rgb, _ := spec.RGB()
	return &modelMaterial{spec: spec, color: render.Color(rgb)}
}

// AddToGroup 把节点挂到交互组
func (s *PanoramaScene) AddToGroup(nodes ...render.Node) {
	s.group = append(s.group, nodes...)
}

// RemoveFromGroup 移除节点
func (s *PanoramaScene) RemoveFromGroup(node render.Node) {
	for i, n := range s.group {
		if n == node {
			s.group = append(s.group[:i], s.group[i+1:]...)
			return
		}
	}
}

// GroupSize 交互组节点数量
func (s *PanoramaScene) GroupSize() int {
	return len(s.group)
}

// SetBackground 设置全景贴图（场景不持有）
func (s *PanoramaScene) SetBackground(tex render.Texture) {
	s.background = tex
}

// SetSphereRotation 设置全景绕 Y 轴旋转（弧度）
func (s *PanoramaScene) SetSphereRotation(y float64) {
	s.sphereRot = y
}

// ResetCamera 相机回到正前方
func (s *PanoramaScene) ResetCamera() {
	s.camera.Reset()
}

// SetControlsEnabled 开关拖拽旋转
func (s *PanoramaScene) SetControlsEnabled(enabled bool) {
	s.controlsEnabled = enabled
}

// ControlsEnabled 拖拽旋转是否开启
func (s *PanoramaScene) ControlsEnabled() bool {
	return s.controlsEnabled
}

// UpdateControls 应用阻尼旋转
func (s *PanoramaScene) UpdateControls() {
	s.camera.Update()
}

// Drag 按指针位移累积旋转；控制关闭时忽略
func (s *PanoramaScene) Drag(dx, dy float64) {
	if !s.controlsEnabled {
		return
	}
	s.camera.Drag(float32(-dx), float32(dy))
}

// Intersect 返回指针下最近的候选精灵
func (s *PanoramaScene) Intersect(p render.Pointer, candidates []render.Node) (render.Node, bool) {
	px, py := float32(p.X), float32(p.Y)
	var (
		best      render.Node
		bestDepth float32
	)
	for _, c := range candidates {
		sprite, ok := c.(*spriteNode)
		if !ok {
			continue
		}
		x, y, w, h, depth, visible := sprite.screenRect(s.camera)
		if !visible || px < x || px > x+w || py < y || py > y+h {
			continue
		}
		if best == nil || depth < bestDepth {
			best, bestDepth = c, depth
		}
	}
	return best, best != nil
}

// Render 记录一次渲染请求；Ebitengine 每帧都会重绘
func (s *PanoramaScene) Render() {
	s.frames++
}

// Frames 渲染请求次数
func (s *PanoramaScene) Frames() int {
	return s.frames
}

// FitViewport 把逻辑屏幕尺寸重新应用到相机
// 逻辑尺寸固定，窗口缩放由 Ebitengine 的 Layout 处理
func (s *PanoramaScene) FitViewport() {
	s.camera.SetViewport(s.width, s.height)
}

// Update 实现 game.Scene
func (s *PanoramaScene) Update(deltaTime float64) {}

// Draw 绘制全景、模型和精灵
func (s *PanoramaScene) Draw(screen *ebiten.Image) {
	s.drawPanorama(screen)
	s.drawModels(screen)
	s.drawSprites(screen)
}

func (s *PanoramaScene) drawPanorama(screen *ebiten.Image) {
	tex, ok := s.background.(*game.Texture)
	if !ok || tex == nil || tex.Released() {
		screen.Fill(color.RGBA{R: 20, G: 20, B: 24, A: 255})
		return
	}
	src := tex.Image()
	sb := src.Bounds()
	db := screen.Bounds()

	vertices := []ebiten.Vertex{
		{DstX: float32(db.Min.X), DstY: float32(db.Min.Y), SrcX: float32(sb.Min.X), SrcY: float32(sb.Min.Y)},
		{DstX: float32(db.Max.X), DstY: float32(db.Min.Y), SrcX: float32(sb.Max.X), SrcY: float32(sb.Min.Y)},
		{DstX: float32(db.Min.X), DstY: float32(db.Max.Y), SrcX: float32(sb.Min.X), SrcY: float32(sb.Max.Y)},
		{DstX: float32(db.Max.X), DstY: float32(db.Max.Y), SrcX: float32(sb.Max.X), SrcY: float32(sb.Max.Y)},
	}
	for i := range vertices {
		vertices[i].ColorR, vertices[i].ColorG, vertices[i].ColorB, vertices[i].ColorA = 1, 1, 1, 1
	}
	indices := []uint16{0, 1, 2, 1, 2, 3}

	f, r, u := s.camera.Basis()
	cx, cy := s.camera.Center()
	op := &ebiten.DrawTrianglesShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{
		"Forward":  []float32{f[0], f[1], f[2]},
		"Right":    []float32{r[0], r[1], r[2]},
		"Up":       []float32{u[0], u[1], u[2]},
		"Center":   []float32{cx, cy},
		"Focal":    s.camera.Focal(),
		"Rotation": float32(s.sphereRot),
	}
	screen.DrawTrianglesShader(vertices, indices, s.shader, op)
}

type projectedSprite struct {
	sprite     *spriteNode
	x, y, w, h float32
	depth      float32
}

func (s *PanoramaScene) drawSprites(screen *ebiten.Image) {
	var visible []projectedSprite
	for _, n := range s.group {
		sprite, ok := n.(*spriteNode)
		if !ok {
			continue
		}
		x, y, w, h, depth, ok := sprite.screenRect(s.camera)
		if !ok || sprite.image() == nil {
			continue
		}
		visible = append(visible, projectedSprite{sprite, x, y, w, h, depth})
	}
	// 远处先画
	sort.Slice(visible, func(i, j int) bool { return visible[i].depth > visible[j].depth })

	for _, p := range visible {
		img := p.sprite.image()
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(p.w)/float64(b.Dx()), float64(p.h)/float64(b.Dy()))
		op.GeoM.Translate(float64(p.x), float64(p.y))
		cr, cg, cb := p.sprite.material.color.RGB()
		op.ColorScale.Scale(float32(cr)/255, float32(cg)/255, float32(cb)/255, 1)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
	}
}
