package tour

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
	"github.com/decker502/vtour/pkg/ui"
)

// eventLog records disposal and detach order across fakes.
type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) { l.events = append(l.events, e) }

type fakeTexture struct {
	name     string
	disposed int
	log      *eventLog
}

func (t *fakeTexture) Dispose() {
	t.disposed++
	t.log.add("texture:" + t.name)
}

type fakeGeometry struct {
	name     string
	disposed int
	log      *eventLog
}

func (g *fakeGeometry) Dispose() {
	g.disposed++
	g.log.add("geometry:" + g.name)
}

type fakeMaterial struct {
	name     string
	tex      *fakeTexture
	color    render.Color
	disposed int
	log      *eventLog
}

func (m *fakeMaterial) Dispose() {
	m.disposed++
	m.log.add("material:" + m.name)
}

func (m *fakeMaterial) Map() render.Texture {
	if m.tex == nil {
		return nil
	}
	return m.tex
}

func (m *fakeMaterial) SetColor(c render.Color) { m.color = c }
func (m *fakeMaterial) Color() render.Color     { return m.color }

type fakeSprite struct {
	spec   render.SpriteSpec
	mat    *fakeMaterial
	scaleX float64
	scaleY float64
}

func (s *fakeSprite) Name() string              { return s.spec.Name }
func (s *fakeSprite) Material() render.Material { return s.mat }
func (s *fakeSprite) SetScale(x, y float64)     { s.scaleX, s.scaleY = x, y }

type fakeMesh struct {
	geom *fakeGeometry
	mats []render.Material
}

func (m *fakeMesh) Geometry() render.Disposable {
	if m.geom == nil {
		return nil
	}
	return m.geom
}
func (m *fakeMesh) Materials() []render.Material { return m.mats }
func (m *fakeMesh) SetMaterial(mat render.Material) {
	m.mats = []render.Material{mat}
}

type fakeModel struct {
	name     string
	meshes   []*fakeMesh
	position config.Vec3
	rotation config.Vec3
	scale    config.Vec3
	rotZ     float64
}

func (m *fakeModel) Name() string { return m.name }
func (m *fakeModel) Traverse(visit func(render.Mesh)) {
	for _, mesh := range m.meshes {
		visit(mesh)
	}
}
func (m *fakeModel) SetTransform(position, rotation, scale config.Vec3) {
	m.position, m.rotation, m.scale = position, rotation, scale
}
func (m *fakeModel) RotateZ(delta float64) { m.rotZ += delta }

// newFakeModel builds a two-mesh model whose meshes share one material.
func newFakeModel(log *eventLog) *fakeModel {
	shared := &fakeMaterial{name: "original", tex: &fakeTexture{name: "original-map", log: log}, log: log}
	return &fakeModel{
		name: "model",
		meshes: []*fakeMesh{
			{geom: &fakeGeometry{name: "g1", log: log}, mats: []render.Material{shared}},
			{geom: &fakeGeometry{name: "g2", log: log}, mats: []render.Material{shared}},
		},
	}
}

type fakeScene struct {
	log *eventLog

	group        []render.Node
	addCalls     [][]render.Node
	background   render.Texture
	sphereRot    float64
	controls     bool
	resets       int
	updates      int
	renders      int
	fits         int
	materials    []*fakeMaterial
	hits         map[render.Pointer]string // pointer -> node name
	intersectLen int                       // candidates seen by the last query
}

func newFakeScene(log *eventLog) *fakeScene {
	return &fakeScene{log: log, hits: make(map[render.Pointer]string)}
}

func (s *fakeScene) NewSprite(spec render.SpriteSpec) render.Sprite {
	mat := &fakeMaterial{
		name:  spec.Name,
		tex:   &fakeTexture{name: spec.Name, log: s.log},
		color: spec.Tint,
		log:   s.log,
	}
	return &fakeSprite{spec: spec, mat: mat, scaleX: spec.Scale, scaleY: spec.Scale}
}

func (s *fakeScene) NewMaterial(spec config.MaterialConfig) render.Material {
	rgb, _ := spec.RGB()
	m := &fakeMaterial{name: "model-material", color: render.Color(rgb), log: s.log}
	s.materials = append(s.materials, m)
	return m
}

func (s *fakeScene) AddToGroup(nodes ...render.Node) {
	s.addCalls = append(s.addCalls, nodes)
	s.group = append(s.group, nodes...)
}

func (s *fakeScene) RemoveFromGroup(node render.Node) {
	s.log.add("detach:" + node.Name())
	for i, n := range s.group {
		if n == node {
			s.group = append(s.group[:i], s.group[i+1:]...)
			return
		}
	}
}

func (s *fakeScene) SetBackground(tex render.Texture) { s.background = tex }
func (s *fakeScene) SetSphereRotation(y float64)      { s.sphereRot = y }
func (s *fakeScene) ResetCamera()                     { s.resets++ }
func (s *fakeScene) SetControlsEnabled(enabled bool)  { s.controls = enabled }
func (s *fakeScene) ControlsEnabled() bool            { return s.controls }
func (s *fakeScene) UpdateControls()                  { s.updates++ }
func (s *fakeScene) Render()                          { s.renders++ }
func (s *fakeScene) FitViewport()                     { s.fits++ }

func (s *fakeScene) Intersect(p render.Pointer, candidates []render.Node) (render.Node, bool) {
	s.intersectLen = len(candidates)
	name, ok := s.hits[p]
	if !ok {
		return nil, false
	}
	for _, c := range candidates {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// sprites returns the group's sprites by name.
func (s *fakeScene) sprite(name string) *fakeSprite {
	for _, n := range s.group {
		if sp, ok := n.(*fakeSprite); ok && sp.Name() == name {
			return sp
		}
	}
	return nil
}

func (s *fakeScene) spriteCount() int {
	n := 0
	for _, node := range s.group {
		if _, ok := node.(*fakeSprite); ok {
			n++
		}
	}
	return n
}

type imageRequest struct {
	path   string
	onDone func(render.Texture, error)
}

type modelRequest struct {
	path    string
	onDone  func(render.Model)
	onError func(error)
}

type fakeAssets struct {
	images []imageRequest
	models []modelRequest
}

func (a *fakeAssets) LoadImage(path string, onDone func(render.Texture, error)) {
	a.images = append(a.images, imageRequest{path: path, onDone: onDone})
}

func (a *fakeAssets) LoadModel(path string, onDone func(render.Model), onProgress func(loaded, total int64), onError func(error)) {
	onProgress(0, 100)
	a.models = append(a.models, modelRequest{path: path, onDone: onDone, onError: onError})
}

type fakeSurface struct {
	visible bool
}

func (s *fakeSurface) Show()         { s.visible = true }
func (s *fakeSurface) Hide()         { s.visible = false }
func (s *fakeSurface) Visible() bool { return s.visible }

type fakeMedia struct {
	id      string
	doc     *fakeUI
	playing bool
	pos     float64
	playErr error
	source  string
	loads   int
}

func (m *fakeMedia) ID() string { return m.id }
func (m *fakeMedia) Play() error {
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	m.pos = 1
	for _, l := range m.doc.listeners {
		l(m)
	}
	return nil
}
func (m *fakeMedia) Pause()                { m.playing = false }
func (m *fakeMedia) Rewind()               { m.pos = 0 }
func (m *fakeMedia) Playing() bool         { return m.playing }
func (m *fakeMedia) SetSource(path string) { m.source = path }
func (m *fakeMedia) Load()                 { m.loads++; m.playing = false; m.pos = 0 }
func (m *fakeMedia) Source() string        { return m.source }

type fakePopup struct {
	fakeSurface
	id    string
	media []*fakeMedia
}

func (p *fakePopup) ID() string { return p.id }
func (p *fakePopup) Media() []ui.MediaElement {
	out := make([]ui.MediaElement, 0, len(p.media))
	for _, m := range p.media {
		out = append(out, m)
	}
	return out
}

type fakeTooltip struct {
	text    string
	x, y    float64
	visible bool
}

func (t *fakeTooltip) ShowAt(text string, x, y float64) {
	t.text, t.x, t.y, t.visible = text, x, y, true
}
func (t *fakeTooltip) Hide() { t.visible = false }

type fakeUI struct {
	elements  map[ui.ElementID]*fakeSurface
	popups    []*fakePopup
	tooltip   fakeTooltip
	ambient   *fakeMedia
	listeners []ui.PlayListener

	scrollLocked bool
	pointer      bool
	audioIcon    bool
}

func newFakeUI(popupIDs ...string) *fakeUI {
	doc := &fakeUI{elements: make(map[ui.ElementID]*fakeSurface)}
	for _, id := range []ui.ElementID{
		ui.ElemCanvas, ui.ElemReturn, ui.ElemAudioToggle, ui.ElemPopupClose, ui.ElemTutorial,
	} {
		doc.elements[id] = &fakeSurface{}
	}
	for _, id := range ui.NavigationChrome {
		doc.elements[id] = &fakeSurface{visible: true}
	}
	doc.ambient = &fakeMedia{id: "ambient", doc: doc}
	for _, id := range popupIDs {
		doc.popups = append(doc.popups, &fakePopup{
			id:    id,
			media: []*fakeMedia{{id: id + "-clip", doc: doc}},
		})
	}
	return doc
}

func (d *fakeUI) Element(id ui.ElementID) (ui.Surface, bool) {
	el, ok := d.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

func (d *fakeUI) visible(id ui.ElementID) bool {
	el, ok := d.elements[id]
	return ok && el.visible
}

func (d *fakeUI) Popup(id string) (ui.Popup, bool) {
	if p := d.popup(id); p != nil {
		return p, true
	}
	return nil, false
}

func (d *fakeUI) popup(id string) *fakePopup {
	for _, p := range d.popups {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (d *fakeUI) Popups() []ui.Popup {
	out := make([]ui.Popup, 0, len(d.popups))
	for _, p := range d.popups {
		out = append(out, p)
	}
	return out
}

func (d *fakeUI) Tooltip() ui.Tooltip { return &d.tooltip }

func (d *fakeUI) SetScrollLocked(locked bool)   { d.scrollLocked = locked }
func (d *fakeUI) SetPointerCursor(pointer bool) { d.pointer = pointer }
func (d *fakeUI) SetAudioIcon(playing bool)     { d.audioIcon = playing }

func (d *fakeUI) AmbientTrack() (ui.AmbientTrack, bool) {
	if d.ambient == nil {
		return nil, false
	}
	return d.ambient, true
}

func (d *fakeUI) MediaElements() []ui.MediaElement {
	var out []ui.MediaElement
	if d.ambient != nil {
		out = append(out, d.ambient)
	}
	for _, p := range d.popups {
		out = append(out, p.Media()...)
	}
	return out
}

func (d *fakeUI) OnMediaPlay(listener ui.PlayListener) {
	d.listeners = append(d.listeners, listener)
}

var errAutoplay = errors.New("autoplay blocked")

const testCatalog = `locations:
  - id: manor
    background: assets/manoir.jpg
    audio: audio_manoir.mp3
    hotspots:
      - {kind: info, position: [-50, 0, -50], message: "Cour du manoir"}
      - {kind: info, position: [50, 0, -50], message: "Grand escalier"}
      - {kind: info, position: [0, 10, 80], message: "Chapelle"}
      - {kind: info-alt, position: [-80, -15, 25], message: "Jardin"}
      - {kind: media, position: [-80, 0, 25], target: son1}
  - id: mill
    background: assets/moulin.jpg
    audio: audio_moulin.mp3
    sphereRotation: -180
    hotspots:
      - {kind: info, position: [25, 15, 75], message: "Roue"}
      - {kind: media, position: [40, 0, -60], target: videos2}
    model:
      path: models/moulin.glb
      position: [-6, 0, 2.5]
      rotation: [0, 60, 0]
      scale: [1.4, 1.4, 1.4]
      spin: -17.188733853924695
      material: {color: "#8B4513", roughness: 0.8, metalness: 0.2}
  - id: weavers
    background: assets/tisserand.jpg
    audio: audio_maison_tisserand.mp3
    hotspots:
      - {kind: info, position: [10, 0, 60], message: "Métier"}
popups:
  - {id: son1, title: "Podcast"}
  - {id: videos2, title: "Vidéo"}
`

type harness struct {
	log    *eventLog
	scene  *fakeScene
	assets *fakeAssets
	doc    *fakeUI
	viewer *Viewer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	catalog, err := config.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return newCatalogHarness(catalog)
}

// newCatalogHarness builds a harness whose UI carries one popup per catalog popup.
func newCatalogHarness(catalog *config.Catalog) *harness {
	popupIDs := make([]string, 0, len(catalog.Popups))
	for _, p := range catalog.Popups {
		popupIDs = append(popupIDs, p.ID)
	}

	log := &eventLog{}
	h := &harness{
		log:    log,
		scene:  newFakeScene(log),
		assets: &fakeAssets{},
		doc:    newFakeUI(popupIDs...),
	}
	h.viewer = NewViewer(Options{
		Catalog:  catalog,
		Scene:    h.scene,
		Assets:   h.assets,
		UI:       h.doc,
		SoundDir: "sound",
		Logger:   zerolog.Nop(),
	})
	return h
}

// openInteractive opens a location with the tutorial already dismissed.
func (h *harness) openInteractive(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, h.viewer.Viewport.Open(id))
	h.viewer.Viewport.DismissTutorial()
	require.Equal(t, ViewportInteractive, h.viewer.Session.Viewport)
}

// at registers a ray hit on the named sprite.
func (h *harness) at(x, y float64, name string) {
	h.scene.hits[render.Pointer{X: x, Y: y}] = name
}
