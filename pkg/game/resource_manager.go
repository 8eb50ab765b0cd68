package game

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/vtour/pkg/render"
)

// ErrModelUnsupported 模型格式不受支持（只支持 .glb / .gltf）
var ErrModelUnsupported = errors.New("model format not supported by the desktop renderer")

// ResourceManager 资源管理器
// 负责加载和缓存图片、音频片段、字体和模型
//
// 图片按引用计数：每个 Texture 持有一个引用，最后一个引用释放时回收 GPU 图像
//
// 线程安全说明：
// 解码在后台 goroutine 中进行，但缓存和回调只在 Pump 中访问，
// Pump 必须在 update goroutine 中调用
//
// 使用示例：
//
//	rm := NewResourceManager(os.DirFS("."), audioContext, log)
//	rm.LoadImage("assets/manoir.jpg", func(tex render.Texture, err error) { ... })
//	// 每帧：
//	rm.Pump()
type ResourceManager struct {
	assets       fs.FS                   // 资源根目录
	audioContext *audio.Context          // 可为 nil（禁用音频）
	imageCache   map[string]*cachedImage // 规范路径 -> 带引用计数的图片
	fontSources  map[string]*text.GoTextFaceSource
	fontCache    map[string]*text.GoTextFace // "路径:字号" -> face
	log          zerolog.Logger

	completions chan func() // 后台加载完成的回调
	deferred    []func()    // update goroutine 中排队的回调
	inflight    sync.WaitGroup
}

type cachedImage struct {
	img  *ebiten.Image
	refs int
}

// NewResourceManager 创建从 assets 读取的资源管理器
func NewResourceManager(assets fs.FS, audioContext *audio.Context, log zerolog.Logger) *ResourceManager {
	return &ResourceManager{
		assets:       assets,
		audioContext: audioContext,
		imageCache:   make(map[string]*cachedImage),
		fontSources:  make(map[string]*text.GoTextFaceSource),
		fontCache:    make(map[string]*text.GoTextFace),
		log:          log.With().Str("component", "resources").Logger(),
		completions:  make(chan func(), 64),
	}
}

// cleanPath 把目录路径规范为 fs.FS 路径（"./a/b" -> "a/b"）
func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
}

func (rm *ResourceManager) readFile(p string) ([]byte, error) {
	data, err := fs.ReadFile(rm.assets, cleanPath(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", p, err)
	}
	return data, nil
}

func (rm *ResourceManager) decodeImage(p string) (image.Image, error) {
	data, err := rm.readFile(p)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", p, err)
	}
	return img, nil
}

// adopt 为 p 的缓存图片增加一个引用，必要时上传 src
func (rm *ResourceManager) adopt(p string, src image.Image) *Texture {
	p = cleanPath(p)
	entry, ok := rm.imageCache[p]
	if !ok {
		entry = &cachedImage{img: ebiten.NewImageFromImage(src)}
		rm.imageCache[p] = entry
	}
	entry.refs++
	return &Texture{rm: rm, path: p, img: entry.img}
}

// AcquireImage 同步加载图片并返回新的引用
func (rm *ResourceManager) AcquireImage(p string) (*Texture, error) {
	p = cleanPath(p)
	if entry, ok := rm.imageCache[p]; ok {
		entry.refs++
		return &Texture{rm: rm, path: p, img: entry.img}, nil
	}
	img, err := rm.decodeImage(p)
	if err != nil {
		return nil, err
	}
	return rm.adopt(p, img), nil
}

func (rm *ResourceManager) release(p string) {
	entry, ok := rm.imageCache[p]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	entry.img.Deallocate()
	delete(rm.imageCache, p)
	rm.log.Debug().Str("path", p).Msg("image released")
}

// Refs 返回缓存图片的引用数（未缓存时为 0）
func (rm *ResourceManager) Refs(p string) int {
	if entry, ok := rm.imageCache[cleanPath(p)]; ok {
		return entry.refs
	}
	return 0
}

// CachedImages 返回当前缓存的图片数量
func (rm *ResourceManager) CachedImages() int {
	return len(rm.imageCache)
}

// LoadImage 在后台解码图片，onDone 在 Pump 中执行
func (rm *ResourceManager) LoadImage(p string, onDone func(render.Texture, error)) {
	if _, ok := rm.imageCache[cleanPath(p)]; ok {
		rm.deferred = append(rm.deferred, func() {
			tex, err := rm.AcquireImage(p)
			if err != nil {
				onDone(nil, err)
				return
			}
			onDone(tex, nil)
		})
		return
	}

	rm.inflight.Add(1)
	go func() {
		defer rm.inflight.Done()
		img, err := rm.decodeImage(p)
		rm.completions <- func() {
			if err != nil {
				onDone(nil, err)
				return
			}
			onDone(rm.adopt(p, img), nil)
		}
	}()
}

// LoadModel 在后台解码 glTF/GLB 模型，回调在 Pump 中执行
// 其他格式通过 onError 报告 ErrModelUnsupported
func (rm *ResourceManager) LoadModel(p string, onDone func(render.Model), onProgress func(loaded, total int64), onError func(error)) {
	if !isModelPath(p) {
		rm.deferred = append(rm.deferred, func() {
			onError(fmt.Errorf("%w: %s", ErrModelUnsupported, p))
		})
		return
	}

	rm.inflight.Add(1)
	go func() {
		defer rm.inflight.Done()
		model, size, err := rm.decodeModel(p)
		rm.completions <- func() {
			if err != nil {
				onError(err)
				return
			}
			onProgress(size, size)
			rm.log.Debug().Str("path", p).Int("meshes", len(model.meshes)).Msg("model decoded")
			onDone(model)
		}
	}()
}

// Pump 在当前 goroutine 执行已完成的加载回调，返回执行数量
func (rm *ResourceManager) Pump() int {
	n := 0
	for len(rm.deferred) > 0 {
		queued := rm.deferred
		rm.deferred = nil
		for _, fn := range queued {
			fn()
			n++
		}
	}
	for {
		select {
		case fn := <-rm.completions:
			fn()
			n++
		default:
			return n
		}
	}
}

// Flush 等待所有后台加载并执行全部回调
func (rm *ResourceManager) Flush() int {
	done := make(chan struct{})
	go func() {
		rm.inflight.Wait()
		close(done)
	}()

	n := 0
	for {
		select {
		case <-done:
			return n + rm.Pump()
		case fn := <-rm.completions:
			fn()
			n++
		}
	}
}

// LoadClip 解码音频文件并创建播放器
// 支持格式：MP3 (.mp3)、OGG Vorbis (.ogg)、WAV (.wav)；loop 为 true 时无限循环
func (rm *ResourceManager) LoadClip(p string, loop bool) (*audio.Player, error) {
	if rm.audioContext == nil {
		return nil, fmt.Errorf("audio context unavailable for %s", p)
	}

	audioData, err := rm.readFile(p)
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(audioData)

	var stream interface {
		io.ReadSeeker
		Length() int64
	}
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".mp3":
		decoded, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", p, err)
		}
		stream = decoded
	case ".ogg":
		decoded, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", p, err)
		}
		stream = decoded
	case ".wav":
		decoded, err := wav.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", p, err)
		}
		stream = decoded
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .wav)", ext)
	}

	var src io.Reader = stream
	if loop {
		src = audio.NewInfiniteLoop(stream, stream.Length())
	}

	player, err := rm.audioContext.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", p, err)
	}
	return player, nil
}

// LoadFont 加载字体文件并创建指定字号的 face
// path 为空时使用内置的 Go Regular 字体；结果按 "路径:字号" 缓存
// 只能在 update goroutine 中调用
func (rm *ResourceManager) LoadFont(p string, size float64) (*text.GoTextFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %.1f", size)
	}
	key := fmt.Sprintf("%s:%.1f", p, size)
	if face, ok := rm.fontCache[key]; ok {
		return face, nil
	}

	source, ok := rm.fontSources[p]
	if !ok {
		var fontData []byte
		if p == "" {
			fontData = goregular.TTF
		} else {
			data, err := rm.readFile(p)
			if err != nil {
				return nil, err
			}
			fontData = data
		}

		var err error
		source, err = text.NewGoTextFaceSource(bytes.NewReader(fontData))
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", p, err)
		}
		rm.fontSources[p] = source
	}

	face := &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontCache[key] = face
	return face, nil
}

// Texture 缓存图片的一个引用
type Texture struct {
	rm       *ResourceManager // 独立贴图为 nil
	path     string
	img      *ebiten.Image
	released bool
}

// NewStandaloneTexture 包装不进缓存的生成图片
func NewStandaloneTexture(img *ebiten.Image) *Texture {
	return &Texture{img: img}
}

// Image 返回 GPU 图像
func (t *Texture) Image() *ebiten.Image {
	return t.img
}

// Path 返回资源路径，独立贴图为空串
func (t *Texture) Path() string {
	return t.path
}

// Released 是否已调用 Dispose
func (t *Texture) Released() bool {
	return t.released
}

// Dispose 释放此引用，重复调用无副作用
func (t *Texture) Dispose() {
	if t.released {
		return
	}
	t.released = true
	if t.rm == nil {
		t.img.Deallocate()
		return
	}
	t.rm.release(t.path)
}
