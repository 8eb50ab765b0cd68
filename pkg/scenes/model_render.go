package scenes

import (
	"image"
	"image/color"
	"sort"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/vtour/pkg/game"
	"github.com/decker502/vtour/pkg/render"
)

// 模型光照：环境光 + 一盏方向光
const (
	ambientLight     = 0.45
	directionalLight = 0.55
)

// lightDir 方向光照射方向的反向（指向光源），已归一化
var lightDir = vec3{1, 1, 1}.normalize()

// maxBatchVertices 单次 DrawTriangles 的顶点上限（uint16 索引）
const maxBatchVertices = 65532

var whitePixel = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// modelTriangle 投影到屏幕的三角形
type modelTriangle struct {
	x, y    [3]float32
	depth   float32 // 三个顶点的平均深度
	r, g, b float32
}

// projectModel 把模型三角形变换、着色并投影，按深度从远到近排序
// 任一顶点在相机后方的三角形被丢弃
func projectModel(cam *Camera, model *game.Model) []modelTriangle {
	var tris []modelTriangle
	for _, mesh := range model.Meshes() {
		positions, indices := mesh.Triangles()
		if len(positions) == 0 {
			continue
		}
		cr, cg, cb := meshColor(mesh)

		for i := 0; i+2 < len(indices); i += 3 {
			var (
				world [3]vec3
				tri   modelTriangle
				ok    = true
			)
			for k := 0; k < 3; k++ {
				idx := indices[i+k]
				if int(idx) >= len(positions) {
					ok = false
					break
				}
				world[k] = vec3(model.Apply(positions[idx]))
				sx, sy, depth, visible := cam.Project(world[k])
				if !visible {
					ok = false
					break
				}
				tri.x[k], tri.y[k] = sx, sy
				tri.depth += depth / 3
			}
			if !ok {
				continue
			}

			normal := vec3{
				world[1][0] - world[0][0], world[1][1] - world[0][1], world[1][2] - world[0][2],
			}.cross(vec3{
				world[2][0] - world[0][0], world[2][1] - world[0][1], world[2][2] - world[0][2],
			}).normalize()
			// 双面光照
			shade := float32(ambientLight) + float32(directionalLight)*math32.Abs(normal.dot(lightDir))
			tri.r, tri.g, tri.b = cr*shade, cg*shade, cb*shade
			tris = append(tris, tri)
		}
	}
	sort.Slice(tris, func(i, j int) bool { return tris[i].depth > tris[j].depth })
	return tris
}

// meshColor 取网格第一个材质的颜色，没有材质时为灰色
func meshColor(mesh *game.Mesh) (r, g, b float32) {
	mats := mesh.Materials()
	if len(mats) == 0 || mats[0] == nil {
		return 0.6, 0.6, 0.6
	}
	cr, cg, cb := mats[0].Color().RGB()
	return float32(cr) / 255, float32(cg) / 255, float32(cb) / 255
}

// drawModels 用 DrawTriangles 绘制交互组中的模型
func (s *PanoramaScene) drawModels(screen *ebiten.Image) {
	var tris []modelTriangle
	for _, n := range s.group {
		if model, ok := n.(*game.Model); ok {
			tris = append(tris, projectModel(s.camera, model)...)
		}
	}
	if len(tris) == 0 {
		return
	}
	// 多个模型之间也按深度排序
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth > tris[j].depth })

	vertices := make([]ebiten.Vertex, 0, min(len(tris)*3, maxBatchVertices))
	indices := make([]uint16, 0, cap(vertices))
	flush := func() {
		if len(vertices) == 0 {
			return
		}
		screen.DrawTriangles(vertices, indices, whitePixel, &ebiten.DrawTrianglesOptions{})
		vertices, indices = vertices[:0], indices[:0]
	}

	for _, t := range tris {
		if len(vertices)+3 > maxBatchVertices {
			flush()
		}
		base := uint16(len(vertices))
		for k := 0; k < 3; k++ {
			vertices = append(vertices, ebiten.Vertex{
				DstX:   t.x[k],
				DstY:   t.y[k],
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: t.r,
				ColorG: t.g,
				ColorB: t.b,
				ColorA: 1,
			})
		}
		indices = append(indices, base, base+1, base+2)
	}
	flush()
}

// 确保桌面模型实现核心接口
var _ render.Model = (*game.Model)(nil)
