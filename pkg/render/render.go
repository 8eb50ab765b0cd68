// Package render 声明浏览核心驱动的 3D 场景和资源加载服务
//
// 核心本身不做渲染：只向交互组添加、移除节点，替换全景贴图，
// 开关环视控制并请求最近命中的射线检测。实现见 pkg/scenes
package render

import "github.com/decker502/vtour/pkg/config"

// Color 0xRRGGBB 颜色
type Color uint32

// 热点使用的颜色
const (
	ColorWhite  Color = 0xFFFFFF
	ColorBlack  Color = 0x000000
	ColorDimmed Color = 0xAAAAAA
)

// RGB 拆分为 8 位通道
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Disposable 需要显式释放的资源
type Disposable interface {
	Dispose()
}

// Texture 用于渲染的图像
type Texture interface {
	Disposable
}

// Material 精灵或网格的材质；Map 可能返回 nil
type Material interface {
	Disposable
	Map() Texture
	SetColor(c Color)
	Color() Color
}

// Node 可挂到交互组的节点
type Node interface {
	Name() string
}

// Sprite 朝向相机的公告板，带一个材质
type Sprite interface {
	Node
	Material() Material
	SetScale(x, y float64)
}

// SpriteSpec 待创建精灵的描述
type SpriteSpec struct {
	Name     string
	Icon     string
	Position config.Vec3
	Scale    float64
	Tint     Color
}

// Mesh 模型中的一个可绘制节点
type Mesh interface {
	Geometry() Disposable // 可能为 nil
	Materials() []Material
	SetMaterial(m Material)
}

// Model 已加载的 3D 模型（场景子树）
type Model interface {
	Node
	Traverse(visit func(Mesh))
	SetTransform(position, rotation, scale config.Vec3)
	RotateZ(delta float64)
}

// Pointer 屏幕像素坐标
type Pointer struct {
	X, Y float64
}

// SceneGraph 3D 场景服务
type SceneGraph interface {
	NewSprite(spec SpriteSpec) Sprite
	NewMaterial(spec config.MaterialConfig) Material

	AddToGroup(nodes ...Node)
	RemoveFromGroup(node Node)

	SetBackground(tex Texture)
	SetSphereRotation(y float64)

	ResetCamera()
	SetControlsEnabled(enabled bool)
	ControlsEnabled() bool
	UpdateControls()

	// Intersect 返回指针下离相机最近的候选节点
	Intersect(p Pointer, candidates []Node) (Node, bool)

	Render()
	FitViewport()
}

// AssetLoader 异步资源加载服务
// 回调在调用方的事件循环中执行，不会并发
type AssetLoader interface {
	LoadImage(path string, onDone func(Texture, error))
	LoadModel(path string, onDone func(Model), onProgress func(loaded, total int64), onError func(error))
}
