package game

import (
	"fmt"
	"io/fs"
	"math"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
)

// Model 已加载的 glTF 模型
// 网格顶点已应用节点层级变换（模型空间），位置/旋转/缩放在绘制时再应用
type Model struct {
	name   string
	meshes []*Mesh

	position config.Vec3
	rotation config.Vec3 // 欧拉角 XYZ（弧度）
	scale    config.Vec3
}

// Name 返回模型名（文件名）
func (m *Model) Name() string { return m.name }

// Traverse 按顺序访问每个网格
func (m *Model) Traverse(visit func(render.Mesh)) {
	for _, mesh := range m.meshes {
		visit(mesh)
	}
}

// SetTransform 设置位置、旋转（弧度）和缩放
func (m *Model) SetTransform(position, rotation, scale config.Vec3) {
	m.position, m.rotation, m.scale = position, rotation, scale
}

// RotateZ 绕 Z 轴追加旋转
func (m *Model) RotateZ(delta float64) {
	m.rotation[2] += delta
}

// Rotation 返回当前欧拉角
func (m *Model) Rotation() config.Vec3 {
	return m.rotation
}

// Meshes 返回所有网格
func (m *Model) Meshes() []*Mesh {
	return m.meshes
}

// Apply 把模型空间的点变换到世界空间：先缩放，再按 X·Y·Z 顺序旋转，最后平移
func (m *Model) Apply(p [3]float32) [3]float32 {
	x := float64(p[0]) * m.scale[0]
	y := float64(p[1]) * m.scale[1]
	z := float64(p[2]) * m.scale[2]

	sz, cz := math.Sincos(m.rotation[2])
	x, y = x*cz-y*sz, x*sz+y*cz
	sy, cy := math.Sincos(m.rotation[1])
	x, z = x*cy+z*sy, -x*sy+z*cy
	sx, cx := math.Sincos(m.rotation[0])
	y, z = y*cx-z*sx, y*sx+z*cx

	return [3]float32{
		float32(x + m.position[0]),
		float32(y + m.position[1]),
		float32(z + m.position[2]),
	}
}

// Mesh 一个三角形图元
type Mesh struct {
	geometry  *Geometry
	materials []render.Material
}

// Geometry 返回几何体
func (m *Mesh) Geometry() render.Disposable {
	if m.geometry == nil {
		return nil
	}
	return m.geometry
}

// Triangles 返回顶点和三角形索引；几何体释放后为空
func (m *Mesh) Triangles() ([][3]float32, []uint32) {
	if m.geometry == nil || m.geometry.disposed {
		return nil, nil
	}
	return m.geometry.positions, m.geometry.indices
}

func (m *Mesh) Materials() []render.Material { return m.materials }

func (m *Mesh) SetMaterial(mat render.Material) {
	m.materials = []render.Material{mat}
}

// Geometry CPU 侧的顶点数据
type Geometry struct {
	positions [][3]float32
	indices   []uint32
	disposed  bool
}

// Dispose 丢弃顶点数据
func (g *Geometry) Dispose() {
	g.disposed = true
	g.positions, g.indices = nil, nil
}

// Disposed 是否已释放
func (g *Geometry) Disposed() bool { return g.disposed }

// gltfMaterial 文件自带的材质，只保留基础色
type gltfMaterial struct {
	color    render.Color
	disposed bool
}

func (m *gltfMaterial) Map() render.Texture     { return nil }
func (m *gltfMaterial) SetColor(c render.Color) { m.color = c }
func (m *gltfMaterial) Color() render.Color     { return m.color }
func (m *gltfMaterial) Dispose()                { m.disposed = true }

// isModelPath 是否为支持的模型格式
func isModelPath(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}

// decodeModel 解码 glTF/GLB 文件，外部缓冲按文件所在目录解析
func (rm *ResourceManager) decodeModel(p string) (*Model, int64, error) {
	clean := cleanPath(p)
	f, err := rm.assets.Open(clean)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open model %s: %w", p, err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	dir, err := fs.Sub(rm.assets, path.Dir(clean))
	if err != nil {
		return nil, size, fmt.Errorf("failed to resolve model directory %s: %w", p, err)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, dir).Decode(doc); err != nil {
		return nil, size, fmt.Errorf("failed to decode model %s: %w", p, err)
	}

	model, err := buildModel(path.Base(clean), doc)
	if err != nil {
		return nil, size, fmt.Errorf("model %s: %w", p, err)
	}
	return model, size, nil
}

// buildModel 遍历默认场景的节点树，把每个三角形图元展开成 Mesh
func buildModel(name string, doc *gltf.Document) (*Model, error) {
	model := &Model{name: name, scale: config.Vec3{1, 1, 1}}

	var walk func(idx int, parent mat4) error
	walk = func(idx int, parent mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		node := doc.Nodes[idx]
		world := parent.mul(nodeMatrix(node))
		if node.Mesh != nil {
			if err := appendMeshes(model, doc, *node.Mesh, world); err != nil {
				return err
			}
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	var roots []int
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil {
			scene = *doc.Scene
		}
		if scene < len(doc.Scenes) {
			roots = doc.Scenes[scene].Nodes
		}
	}
	if roots == nil {
		// 没有场景时直接展开所有网格
		for i := range doc.Meshes {
			if err := appendMeshes(model, doc, i, identity()); err != nil {
				return nil, err
			}
		}
	}
	for _, idx := range roots {
		if err := walk(idx, identity()); err != nil {
			return nil, err
		}
	}

	if len(model.meshes) == 0 {
		return nil, fmt.Errorf("no triangle meshes")
	}
	return model, nil
}

func appendMeshes(model *Model, doc *gltf.Document, meshIdx int, world mat4) error {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	for _, prim := range doc.Meshes[meshIdx].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok || posIdx >= len(doc.Accessors) {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("mesh %d: positions: %w", meshIdx, err)
		}
		for i, p := range positions {
			positions[i] = world.apply(p)
		}

		var indices []uint32
		if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("mesh %d: indices: %w", meshIdx, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		model.meshes = append(model.meshes, &Mesh{
			geometry:  &Geometry{positions: positions, indices: indices},
			materials: []render.Material{primitiveMaterial(doc, prim)},
		})
	}
	return nil
}

// primitiveMaterial 读取 baseColorFactor，缺省为白色
func primitiveMaterial(doc *gltf.Document, prim *gltf.Primitive) render.Material {
	mat := &gltfMaterial{color: render.Color(0xFFFFFF)}
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return mat
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return mat
	}
	f := *pbr.BaseColorFactor
	mat.color = render.Color(channel(f[0])<<16 | channel(f[1])<<8 | channel(f[2]))
	return mat
}

func channel(v float64) uint32 {
	return uint32(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// mat4 列主序 4x4 矩阵（与 glTF 一致）
type mat4 [16]float64

func identity() mat4 {
	return mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func (a mat4) mul(b mat4) mat4 {
	var out mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

func (a mat4) apply(p [3]float32) [3]float32 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return [3]float32{
		float32(a[0]*x + a[4]*y + a[8]*z + a[12]),
		float32(a[1]*x + a[5]*y + a[9]*z + a[13]),
		float32(a[2]*x + a[6]*y + a[10]*z + a[14]),
	}
}

// nodeMatrix 节点本地矩阵：显式 matrix 优先，否则由 TRS 组合
func nodeMatrix(node *gltf.Node) mat4 {
	if m := mat4(node.Matrix); m != (mat4{}) && m != identity() {
		return m
	}

	t := node.Translation
	q := node.Rotation
	if q == ([4]float64{}) {
		q = [4]float64{0, 0, 0, 1}
	}
	s := node.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}

	x, y, z, w := q[0], q[1], q[2], q[3]
	return mat4{
		(1 - 2*(y*y+z*z)) * s[0], 2 * (x*y + z*w) * s[0], 2 * (x*z - y*w) * s[0], 0,
		2 * (x*y - z*w) * s[1], (1 - 2*(x*x+z*z)) * s[1], 2 * (y*z + x*w) * s[1], 0,
		2 * (x*z + y*w) * s[2], 2 * (y*z - x*w) * s[2], (1 - 2*(x*x+y*y)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}
