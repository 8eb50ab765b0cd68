package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/ui"
)

// playerLoader 把音频解码为播放器
type playerLoader interface {
	LoadClip(path string, loop bool) (*audio.Player, error)
}

// AudioManager 音频管理器
// 职责：
//   - 管理环境音轨（循环）和弹窗内的音频片段（单次）
//   - 从 SettingsManager 读取音量
//   - 任一媒体开始播放时通知监听器
type AudioManager struct {
	loader    playerLoader
	settings  *SettingsManager // 可为 nil
	ambient   *MediaPlayer
	clips     []*MediaPlayer
	listeners []ui.PlayListener
	log       zerolog.Logger
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - loader: 音频加载器（通常是 ResourceManager）
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
func NewAudioManager(loader playerLoader, sm *SettingsManager, log zerolog.Logger) *AudioManager {
	am := &AudioManager{
		loader:   loader,
		settings: sm,
		log:      log.With().Str("component", "audio").Logger(),
	}
	am.ambient = &MediaPlayer{id: "ambient", manager: am, loop: true}
	return am
}

// Ambient 返回环境音轨
func (am *AudioManager) Ambient() *MediaPlayer {
	return am.ambient
}

// NewClip 注册一个弹窗音频片段
func (am *AudioManager) NewClip(id, source string) *MediaPlayer {
	clip := &MediaPlayer{id: id, manager: am, source: source}
	am.clips = append(am.clips, clip)
	return clip
}

// Elements 返回所有媒体元素（环境音轨在前）
func (am *AudioManager) Elements() []ui.MediaElement {
	out := make([]ui.MediaElement, 0, len(am.clips)+1)
	out = append(out, am.ambient)
	for _, c := range am.clips {
		out = append(out, c)
	}
	return out
}

// OnPlay 注册播放监听器
func (am *AudioManager) OnPlay(listener ui.PlayListener) {
	am.listeners = append(am.listeners, listener)
}

func (am *AudioManager) notifyPlay(started *MediaPlayer) {
	for _, l := range am.listeners {
		l(started)
	}
}

func (am *AudioManager) volumeFor(m *MediaPlayer) float64 {
	if am.settings == nil {
		return 1
	}
	s := am.settings.GetSettings()
	if m == am.ambient {
		return s.AmbientVolume
	}
	return s.ClipVolume
}

// SetAmbientVolume 设置环境音量并立即应用
func (am *AudioManager) SetAmbientVolume(volume float64) {
	if am.settings != nil {
		am.settings.SetAmbientVolume(volume)
	}
	am.ambient.applyVolume()
}

// SetClipVolume 设置片段音量并立即应用
func (am *AudioManager) SetClipVolume(volume float64) {
	if am.settings != nil {
		am.settings.SetClipVolume(volume)
	}
	for _, c := range am.clips {
		c.applyVolume()
	}
}

// Close 释放所有播放器
func (am *AudioManager) Close() {
	am.ambient.closePlayer()
	for _, c := range am.clips {
		c.closePlayer()
	}
}

// MediaPlayer 基于 Ebitengine 音频播放器的 ui.MediaElement
// 播放器在 Load 或首次 Play 时按 source 懒创建
type MediaPlayer struct {
	id      string
	manager *AudioManager
	source  string
	loop    bool
	player  *audio.Player
}

// ID 元素 id
func (m *MediaPlayer) ID() string { return m.id }

// Source 当前音源路径
func (m *MediaPlayer) Source() string { return m.source }

// SetSource 更换音源并关闭旧播放器
func (m *MediaPlayer) SetSource(path string) {
	if path == m.source {
		return
	}
	m.closePlayer()
	m.source = path
}

// Load 从头重新打开音源
func (m *MediaPlayer) Load() {
	m.closePlayer()
	if m.source == "" {
		return
	}
	if err := m.open(); err != nil {
		m.manager.log.Warn().Err(err).Str("media", m.id).Msg("media load failed")
	}
}

func (m *MediaPlayer) open() error {
	if m.source == "" {
		return fmt.Errorf("media %s has no source", m.id)
	}
	player, err := m.manager.loader.LoadClip(m.source, m.loop)
	if err != nil {
		return err
	}
	m.player = player
	m.applyVolume()
	return nil
}

// Play 开始播放并通知播放监听
func (m *MediaPlayer) Play() error {
	if m.player == nil {
		if err := m.open(); err != nil {
			return fmt.Errorf("play %s: %w", m.id, err)
		}
	}
	m.player.Play()
	m.manager.notifyPlay(m)
	return nil
}

// Pause 暂停
func (m *MediaPlayer) Pause() {
	if m.player != nil {
		m.player.Pause()
	}
}

// Rewind 回到开头
func (m *MediaPlayer) Rewind() {
	if m.player == nil {
		return
	}
	if err := m.player.Rewind(); err != nil {
		m.manager.log.Warn().Err(err).Str("media", m.id).Msg("rewind failed")
	}
}

// Playing 是否正在播放
func (m *MediaPlayer) Playing() bool {
	return m.player != nil && m.player.IsPlaying()
}

func (m *MediaPlayer) applyVolume() {
	if m.player != nil {
		m.player.SetVolume(m.manager.volumeFor(m))
	}
}

func (m *MediaPlayer) closePlayer() {
	if m.player == nil {
		return
	}
	m.player.Pause()
	if err := m.player.Close(); err != nil {
		m.manager.log.Debug().Err(err).Str("media", m.id).Msg("player close failed")
	}
	m.player = nil
}
