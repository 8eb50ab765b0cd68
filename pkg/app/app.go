// Package app 提供查看器应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：创建资源、音频、设置管理器，
// 组装全景场景、界面层和 tour.Viewer，并把 Ebitengine 输入转发给它们。
package app

import (
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/game"
	"github.com/decker502/vtour/pkg/scenes"
	"github.com/decker502/vtour/pkg/tour"
	"github.com/decker502/vtour/pkg/utils"
)

const (
	sampleRate  = 48000
	volumeStep  = 0.1
	tickSeconds = 1.0 / 60.0
)

// Config 定义应用启动配置
type Config struct {
	Viewer  *config.ViewerConfig
	Catalog *config.Catalog
	Logger  zerolog.Logger
	// AudioContext 可选；为 nil 时新建（Ebitengine 每个进程只允许一个）
	AudioContext *audio.Context
}

// App 是查看器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg *config.ViewerConfig
	log zerolog.Logger

	resources *game.ResourceManager
	settings  *game.SettingsManager
	audio     *game.AudioManager
	panorama  *scenes.PanoramaScene
	overlay   *scenes.Overlay
	viewer    *tour.Viewer
	drag      *utils.DragManager

	layers    []game.Scene
	saveables []game.Saveable

	dragFromChrome           bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器
func NewApp(cfg Config) (*App, error) {
	vc := cfg.Viewer
	log := cfg.Logger.With().Str("component", "app").Logger()

	audioContext := cfg.AudioContext
	if audioContext == nil {
		audioContext = audio.NewContext(sampleRate)
	}

	resources := game.NewResourceManager(os.DirFS(vc.AssetBase), audioContext, cfg.Logger)

	storage, err := game.OpenSettingsStorage(vc.AppName)
	if err != nil {
		// 降级模式：设置只保存在内存
		log.Warn().Err(err).Msg("settings storage unavailable")
		storage = nil
	}
	settings, err := game.NewSettingsManager(storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings manager: %w", err)
	}
	audioManager := game.NewAudioManager(resources, settings, cfg.Logger)

	panorama, err := scenes.NewPanoramaScene(resources, vc.Window.Width, vc.Window.Height, cfg.Logger)
	if err != nil {
		return nil, err
	}

	metrics, err := tour.NewMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
		metrics = nil
	}

	a := &App{
		cfg:       vc,
		log:       log,
		resources: resources,
		settings:  settings,
		audio:     audioManager,
		panorama:  panorama,
		drag:      utils.NewDragManager(),
	}

	a.overlay = scenes.NewOverlay(cfg.Catalog, audioManager, vc.SoundDir, vc.Window.Width, vc.Window.Height, scenes.OverlayCallbacks{
		OpenLocation:    a.OpenLocation,
		Return:          func() { a.viewer.Viewport.Return() },
		ToggleAudio:     func() { a.viewer.Viewport.ToggleAudio() },
		ClosePopup:      func() { a.viewer.Interaction.ClosePopup() },
		DismissTutorial: func() { a.viewer.Viewport.DismissTutorial() },
	}, cfg.Logger)
	if err := a.overlay.UseFont(resources, vc.FontPath); err != nil {
		log.Warn().Err(err).Str("font", vc.FontPath).Msg("font unavailable, using built-in face")
		if err := a.overlay.UseFont(resources, ""); err != nil {
			return nil, fmt.Errorf("failed to load built-in font: %w", err)
		}
	}

	a.viewer = tour.NewViewer(tour.Options{
		Catalog:  cfg.Catalog,
		Scene:    panorama,
		Assets:   resources,
		UI:       a.overlay,
		SoundDir: vc.SoundDir,
		Logger:   cfg.Logger,
		Metrics:  metrics,
	})

	a.layers = []game.Scene{panorama, a.overlay}
	a.saveables = []game.Saveable{settings}

	if vc.StartLocation != "" {
		a.OpenLocation(vc.StartLocation)
	}

	log.Info().Int("locations", len(cfg.Catalog.Locations)).Msg("viewer ready")
	return a, nil
}

// Viewer 返回查看器核心
func (a *App) Viewer() *tour.Viewer {
	return a.viewer
}

// Settings 返回设置管理器
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}

// Resources 返回资源管理器
func (a *App) Resources() *game.ResourceManager {
	return a.resources
}

// OpenLocation 打开查看器并加载地点
func (a *App) OpenLocation(id string) {
	if err := a.viewer.Viewport.Open(id); err != nil {
		a.log.Error().Err(err).Str("location", id).Msg("failed to open location")
	}
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.SaveOnExit()
		return ebiten.Termination
	}

	a.updateWindow()

	// 异步加载的资源在这里交付，和输入处理同一个 goroutine
	a.resources.Pump()

	a.handlePointer()
	a.handleKeys()

	for _, layer := range a.layers {
		layer.Update(tickSeconds)
	}
	a.viewer.Tick(tickSeconds)
	return nil
}

// updateWindow 处理 F11 全屏切换
func (a *App) updateWindow() {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	if !inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		return
	}
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
		a.log.Debug().Msg("exit fullscreen, window size reset in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
		a.settings.SetFullscreen(true)
	}
}

// handlePointer 分发拖拽、悬停和点击
func (a *App) handlePointer() {
	a.drag.Update()

	px, py := utils.GetPointerPosition()
	x, y := float64(px), float64(py)
	onChrome := a.overlay.HitTest(x, y)
	a.overlay.Hover(x, y)

	if a.drag.JustStarted() {
		a.dragFromChrome = onChrome
	}

	open := a.viewer.Session.Viewport != tour.ViewportClosed
	if open && a.drag.IsDragging() && !a.dragFromChrome {
		dx, dy := a.drag.FrameDelta()
		a.panorama.Drag(float64(dx), float64(dy))
	}
	if open && !a.drag.IsDragging() && !onChrome {
		a.viewer.Interaction.PointerMove(x, y)
	}

	if a.drag.IsClick() {
		a.Click(float64(a.drag.GetInfo().CurrentX), float64(a.drag.GetInfo().CurrentY))
	}
}

// Click 把一次点击先交给界面层，再交给场景
func (a *App) Click(x, y float64) {
	handled := a.overlay.Click(x, y)
	if a.viewer.Session.Viewport == tour.ViewportClosed {
		return
	}
	a.viewer.Interaction.Click(x, y, handled)
}

// handleKeys 处理键盘：Esc 关闭弹窗，上下键调节环境音量
func (a *App) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && a.viewer.Session.Overlay.Kind == tour.OverlayMediaPopup {
		a.viewer.Interaction.ClosePopup()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		a.audio.SetAmbientVolume(a.settings.GetSettings().AmbientVolume + volumeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.audio.SetAmbientVolume(a.settings.GetSettings().AmbientVolume - volumeStep)
	}
}

// SaveOnExit 保存所有需要持久化的状态并释放音频
func (a *App) SaveOnExit() bool {
	ok := true
	for _, s := range a.saveables {
		if !s.SaveOnExit() {
			ok = false
		}
	}
	a.audio.Close()
	a.log.Info().Bool("saved", ok).Msg("viewer closing")
	return ok
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	if a.viewer.Session.Viewport != tour.ViewportClosed {
		a.panorama.Draw(screen)
	} else {
		screen.Fill(color.Black)
	}
	a.overlay.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Window.Width, a.cfg.Window.Height
}
