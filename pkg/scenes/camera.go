package scenes

import (
	"github.com/chewxy/math32"
)

// 相机参数
const (
	// FieldOfView 垂直视野（度）
	FieldOfView = 75.0
	// MaxPitch 俯仰角上限（弧度，约 85°）
	MaxPitch = 1.4835298
	// RotateSpeed 拖拽灵敏度（弧度/像素）
	RotateSpeed = 0.005
	// DampingFactor 每次 UpdateControls 消化的待处理旋转比例
	DampingFactor = 0.1
)

// vec3 float32 世界坐标向量
type vec3 [3]float32

func (a vec3) dot(b vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a vec3) scale(s float32) vec3 {
	return vec3{a[0] * s, a[1] * s, a[2] * s}
}

func (a vec3) add(b vec3) vec3 {
	return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a vec3) normalize() vec3 {
	l := math32.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return a.scale(1 / l)
}

// Camera 全景相机
// 位于球心，只能旋转；yaw 绕 Y 轴，pitch 上下俯仰
// 拖拽产生的旋转先累积为待处理量，UpdateControls 按阻尼逐步应用
type Camera struct {
	Yaw, Pitch float32

	pendingYaw, pendingPitch float32

	width, height float32
	focal         float32
}

// NewCamera 创建朝向 -Z 的相机
func NewCamera(width, height int) *Camera {
	c := &Camera{}
	c.SetViewport(width, height)
	return c
}

// SetViewport 按视口尺寸重算焦距
func (c *Camera) SetViewport(width, height int) {
	c.width = float32(width)
	c.height = float32(height)
	halfFov := float32(FieldOfView) * math32.Pi / 360
	c.focal = (c.height / 2) / math32.Tan(halfFov)
}

// Reset 回到正前方并丢弃待处理旋转
func (c *Camera) Reset() {
	c.Yaw, c.Pitch = 0, 0
	c.pendingYaw, c.pendingPitch = 0, 0
}

// Drag 按指针位移（像素）累积旋转
func (c *Camera) Drag(dx, dy float32) {
	c.pendingYaw += dx * RotateSpeed
	c.pendingPitch += dy * RotateSpeed
}

// Update 应用一部分待处理旋转
func (c *Camera) Update() {
	dy := c.pendingYaw * DampingFactor
	dp := c.pendingPitch * DampingFactor
	c.pendingYaw -= dy
	c.pendingPitch -= dp
	c.Yaw += dy
	c.Pitch += dp
	if c.Pitch > MaxPitch {
		c.Pitch = MaxPitch
		c.pendingPitch = 0
	}
	if c.Pitch < -MaxPitch {
		c.Pitch = -MaxPitch
		c.pendingPitch = 0
	}
}

// Basis 返回前、右、上三个方向向量
func (c *Camera) Basis() (forward, right, up vec3) {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	forward = vec3{sy * cp, sp, -cy * cp}
	right = vec3{cy, 0, sy}
	up = right.cross(forward)
	return forward, right, up
}

// Focal 焦距（像素）
func (c *Camera) Focal() float32 {
	return c.focal
}

// Center 视口中心（像素）
func (c *Camera) Center() (float32, float32) {
	return c.width / 2, c.height / 2
}

// Project 把世界坐标投影到屏幕像素
// depth 为沿视线方向的距离；点在相机后方时 ok 为 false
func (c *Camera) Project(p vec3) (sx, sy, depth float32, ok bool) {
	f, r, u := c.Basis()
	z := p.dot(f)
	if z <= 1e-3 {
		return 0, 0, z, false
	}
	cx, cy := c.Center()
	sx = cx + p.dot(r)/z*c.focal
	sy = cy - p.dot(u)/z*c.focal
	return sx, sy, z, true
}

// Ray 返回穿过屏幕像素的单位视线方向
func (c *Camera) Ray(sx, sy float32) vec3 {
	f, r, u := c.Basis()
	cx, cy := c.Center()
	return f.scale(c.focal).add(r.scale(sx - cx)).add(u.scale(cy - sy)).normalize()
}
