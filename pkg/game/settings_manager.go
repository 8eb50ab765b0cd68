package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 查看器偏好设置
// 注意：教程是否已看过不在此保存，每次启动都会重新显示
type ViewerSettings struct {
	// 音频设置
	AmbientVolume float64 `yaml:"ambientVolume"` // 环境音量 0.0 ~ 1.0
	ClipVolume    float64 `yaml:"clipVolume"`    // 弹窗音频音量 0.0 ~ 1.0

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		AmbientVolume: 0.7,
		ClipVolume:    1.0,
		Fullscreen:    false,
	}
}

// SettingsManager 设置管理器
// 负责偏好设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方（加载失败不影响创建）
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Warn().Err(err).Str("component", "settings").Msg("failed to load settings, using defaults")
	}

	return sm, nil
}

// OpenSettingsStorage 打开应用的 gdata 存储
func OpenSettingsStorage(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings storage: %w", err)
	}
	return m, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 缺失字段保留默认值
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.AmbientVolume = clampVolume(loaded.AmbientVolume)
	loaded.ClipVolume = clampVolume(loaded.ClipVolume)

	sm.settings = loaded
	log.Debug().Str("component", "settings").Msg("settings loaded")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Debug().Str("component", "settings").Msg("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetAmbientVolume 设置环境音量
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetAmbientVolume(volume float64) {
	sm.settings.AmbientVolume = clampVolume(volume)
}

// SetClipVolume 设置弹窗音频音量
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetClipVolume(volume float64) {
	sm.settings.ClipVolume = clampVolume(volume)
}

// SetFullscreen 设置全屏模式
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}

// SaveOnExit 实现 Saveable：窗口关闭时持久化设置
func (sm *SettingsManager) SaveOnExit() bool {
	if err := sm.Save(); err != nil {
		log.Warn().Err(err).Str("component", "settings").Msg("failed to save settings on exit")
		return false
	}
	return true
}
