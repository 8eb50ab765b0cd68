package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 窗口默认尺寸
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
)

// ViewerConfig 桌面浏览器运行配置
// 来源：默认值、可选配置文件、VTOUR_* 环境变量
type ViewerConfig struct {
	LogLevel      string       `mapstructure:"logLevel"`
	LogFile       string       `mapstructure:"logFile"`
	CatalogPath   string       `mapstructure:"catalogPath"` // 为空时使用内嵌 data/catalog.yaml
	AssetBase     string       `mapstructure:"assetBase"`   // 拼接在目录资源路径前
	SoundDir      string       `mapstructure:"soundDir"`    // 环境音和弹窗音频
	FontPath      string       `mapstructure:"fontPath"`    // 界面字体（TTF/OTF），为空时使用内置字体
	AppName       string       `mapstructure:"appName"`     // 偏好设置存储命名空间
	StartLocation string       `mapstructure:"startLocation"`
	Window        WindowConfig `mapstructure:"window"`
}

// WindowConfig 逻辑屏幕尺寸
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

func setViewerDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("catalogPath", "")
	v.SetDefault("assetBase", ".")
	v.SetDefault("soundDir", "assets/sound")
	v.SetDefault("fontPath", "")
	v.SetDefault("appName", "vtour")
	v.SetDefault("startLocation", "")

	v.SetDefault("window.width", DefaultWindowWidth)
	v.SetDefault("window.height", DefaultWindowHeight)
	v.SetDefault("window.title", "Visite virtuelle")
}

// LoadViewerConfig 构建浏览器配置
// path 为空时只用默认值和环境变量；非空时文件必须存在
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	v := viper.New()
	setViewerDefaults(v)

	v.SetEnvPrefix("VTOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ViewerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	return &cfg, nil
}
