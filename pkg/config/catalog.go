package config

import (
	"fmt"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 热点类型（目录 YAML 中的写法）
const (
	HotspotKindInfo    = "info"     // 提示标记
	HotspotKindInfoAlt = "info-alt" // 使用播放图标的提示标记
	HotspotKindMedia   = "media"    // 打开 Target 指定的弹窗
)

// 默认精灵缩放（世界单位）
const (
	DefaultInfoScale  = 10.0
	DefaultMediaScale = 30.0
)

// Vec3 位置/旋转/缩放三元组，YAML 写作 [x, y, z]
type Vec3 [3]float64

// X 第一个分量
func (v Vec3) X() float64 { return v[0] }

// Y 第二个分量
func (v Vec3) Y() float64 { return v[1] }

// Z 第三个分量
func (v Vec3) Z() float64 { return v[2] }

// Catalog 游览目录，从 data/catalog.yaml 加载
//
// 结构：
//
//	version: "1.0"
//	icons: {info: ..., infoAlt: ..., media: ...}
//	locations: [...]
//	popups: [...]
//	tutorial: {title: ..., lines: [...], button: ...}
type Catalog struct {
	Version   string         `yaml:"version"`
	Icons     IconSet        `yaml:"icons"`
	Locations []Location     `yaml:"locations"`
	Popups    []PopupConfig  `yaml:"popups"`
	Tutorial  TutorialConfig `yaml:"tutorial"`
}

// IconSet 各热点类型的默认图标
type IconSet struct {
	Info    string `yaml:"info"`
	InfoAlt string `yaml:"infoAlt"`
	Media   string `yaml:"media"`
}

// Location 一个全景观察点，加载后不可变
type Location struct {
	ID             string          `yaml:"id"`             // "manor", "mill", "weavers"
	Title          string          `yaml:"title"`          // 菜单标签
	Background     string          `yaml:"background"`     // 等距柱状投影全景图路径
	Audio          string          `yaml:"audio"`          // 环境音文件名，相对声音目录
	SphereRotation float64         `yaml:"sphereRotation"` // 绕 Y 轴角度（度）
	Hotspots       []HotspotConfig `yaml:"hotspots"`
	Model          *ModelConfig    `yaml:"model,omitempty"`
}

// SphereRotationRadians 返回球体 Y 轴偏移（弧度）
func (l *Location) SphereRotationRadians() float64 {
	return degreesToRadians(l.SphereRotation)
}

// HotspotConfig 地点中的一个热点
type HotspotConfig struct {
	Kind     string  `yaml:"kind"`              // info | info-alt | media
	Position Vec3    `yaml:"position"`          // 全景球上的世界坐标
	Message  string  `yaml:"message,omitempty"` // 提示文字（信息类）
	Target   string  `yaml:"target,omitempty"`  // 弹窗 id（媒体类）
	Icon     string  `yaml:"icon,omitempty"`    // 覆盖类型默认图标
	Scale    float64 `yaml:"scale,omitempty"`   // 精灵尺寸，0 使用类型默认值
}

// ModelConfig 地点的可选 3D 模型
type ModelConfig struct {
	Path     string         `yaml:"path"`
	Position Vec3           `yaml:"position"`
	Rotation Vec3           `yaml:"rotation"` // 度
	Scale    Vec3           `yaml:"scale"`
	Material MaterialConfig `yaml:"material"`
	Spin     float64        `yaml:"spin,omitempty"` // 绕 Z 轴角速度（度/秒）
}

// RotationRadians 返回模型旋转（弧度）
func (m *ModelConfig) RotationRadians() Vec3 {
	return Vec3{
		degreesToRadians(m.Rotation[0]),
		degreesToRadians(m.Rotation[1]),
		degreesToRadians(m.Rotation[2]),
	}
}

// SpinRadians 返回自转速度（弧度/秒）
func (m *ModelConfig) SpinRadians() float64 {
	return degreesToRadians(m.Spin)
}

// MaterialConfig 应用到模型所有网格的统一材质
type MaterialConfig struct {
	Color     string  `yaml:"color"`             // "#RRGGBB"
	Texture   string  `yaml:"texture,omitempty"` // 可选贴图
	Roughness float64 `yaml:"roughness"`
	Metalness float64 `yaml:"metalness"`
}

// RGB 把 Color 解析为 0xRRGGBB
func (m MaterialConfig) RGB() (uint32, error) {
	return ParseHexColor(m.Color)
}

// PopupConfig 媒体热点打开的弹窗
type PopupConfig struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body,omitempty"`
	Audio string `yaml:"audio,omitempty"` // 弹窗内播放的可选音频
	Video string `yaml:"video,omitempty"` // 视频引用，桌面端显示为说明文字
}

// TutorialConfig 首次访问教程文字
type TutorialConfig struct {
	Title  string   `yaml:"title"`
	Lines  []string `yaml:"lines"`
	Button string   `yaml:"button"`
}

// LoadCatalog 读取并校验目录 YAML 文件
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog 解析目录 YAML，填充默认值并校验
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	applyCatalogDefaults(&catalog)

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}

// Location 按 id 查找地点
func (c *Catalog) Location(id string) (*Location, bool) {
	for i := range c.Locations {
		if c.Locations[i].ID == id {
			return &c.Locations[i], true
		}
	}
	return nil, false
}

// Popup 按 id 查找弹窗
func (c *Catalog) Popup(id string) (*PopupConfig, bool) {
	for i := range c.Popups {
		if c.Popups[i].ID == id {
			return &c.Popups[i], true
		}
	}
	return nil, false
}

// LocationIDs 按目录顺序返回地点 id
func (c *Catalog) LocationIDs() []string {
	ids := make([]string, 0, len(c.Locations))
	for _, loc := range c.Locations {
		ids = append(ids, loc.ID)
	}
	return ids
}

// IconFor 返回热点图标：自身配置或类型默认值
func (c *Catalog) IconFor(h HotspotConfig) string {
	if h.Icon != "" {
		return h.Icon
	}
	switch h.Kind {
	case HotspotKindInfoAlt:
		return c.Icons.InfoAlt
	case HotspotKindMedia:
		return c.Icons.Media
	default:
		return c.Icons.Info
	}
}

// AssetPaths 返回目录引用的所有文件（排序、去重）
// 音频文件名拼接 soundDir
func (c *Catalog) AssetPaths(soundDir string) []string {
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" {
			seen[p] = true
		}
	}
	sound := func(file string) {
		if file != "" {
			add(path.Join(soundDir, file))
		}
	}

	add(c.Icons.Info)
	add(c.Icons.InfoAlt)
	add(c.Icons.Media)
	for _, loc := range c.Locations {
		add(loc.Background)
		sound(loc.Audio)
		for _, h := range loc.Hotspots {
			add(h.Icon)
		}
		if loc.Model != nil {
			add(loc.Model.Path)
			add(loc.Model.Material.Texture)
		}
	}
	for _, p := range c.Popups {
		sound(p.Audio)
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// applyCatalogDefaults 填充可选字段的默认值
func applyCatalogDefaults(c *Catalog) {
	if c.Icons.Info == "" {
		c.Icons.Info = "assets/icons/voir.png"
	}
	if c.Icons.InfoAlt == "" {
		c.Icons.InfoAlt = "assets/icons/play.png"
	}
	if c.Icons.Media == "" {
		c.Icons.Media = "assets/icons/doc_icon.png"
	}
	if c.Tutorial.Button == "" {
		c.Tutorial.Button = "OK"
	}

	for i := range c.Locations {
		loc := &c.Locations[i]
		for j := range loc.Hotspots {
			h := &loc.Hotspots[j]
			if h.Scale == 0 {
				if h.Kind == HotspotKindMedia {
					h.Scale = DefaultMediaScale
				} else {
					h.Scale = DefaultInfoScale
				}
			}
		}
		if loc.Model != nil && loc.Model.Scale == (Vec3{}) {
			loc.Model.Scale = Vec3{1, 1, 1}
		}
	}
}

// validateCatalog 校验 id、类型、载荷和弹窗引用
func validateCatalog(c *Catalog) error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("at least one location is required")
	}

	popups := make(map[string]bool, len(c.Popups))
	for i, p := range c.Popups {
		if p.ID == "" {
			return fmt.Errorf("popups[%d]: id is required", i)
		}
		if popups[p.ID] {
			return fmt.Errorf("popups[%d]: duplicate id %q", i, p.ID)
		}
		popups[p.ID] = true
	}

	seen := make(map[string]bool, len(c.Locations))
	for i, loc := range c.Locations {
		if loc.ID == "" {
			return fmt.Errorf("locations[%d]: id is required", i)
		}
		if seen[loc.ID] {
			return fmt.Errorf("locations[%d]: duplicate id %q", i, loc.ID)
		}
		seen[loc.ID] = true

		if loc.Background == "" {
			return fmt.Errorf("location %q: background is required", loc.ID)
		}

		for j, h := range loc.Hotspots {
			switch h.Kind {
			case HotspotKindInfo, HotspotKindInfoAlt:
				if h.Message == "" {
					return fmt.Errorf("location %q, hotspot %d: message is required for kind %q", loc.ID, j, h.Kind)
				}
			case HotspotKindMedia:
				if h.Target == "" {
					return fmt.Errorf("location %q, hotspot %d: target is required for kind %q", loc.ID, j, h.Kind)
				}
				if len(popups) > 0 && !popups[h.Target] {
					return fmt.Errorf("location %q, hotspot %d: unknown popup %q", loc.ID, j, h.Target)
				}
			default:
				return fmt.Errorf("location %q, hotspot %d: kind must be one of: info, info-alt, media, got %q", loc.ID, j, h.Kind)
			}
			if h.Scale < 0 {
				return fmt.Errorf("location %q, hotspot %d: scale cannot be negative", loc.ID, j)
			}
		}

		if loc.Model != nil {
			if loc.Model.Path == "" {
				return fmt.Errorf("location %q: model path is required", loc.ID)
			}
			if loc.Model.Material.Color != "" {
				if _, err := loc.Model.Material.RGB(); err != nil {
					return fmt.Errorf("location %q: model material: %w", loc.ID, err)
				}
			}
		}
	}

	return nil
}

// ParseHexColor 把 "#RRGGBB"（或 "RRGGBB"）解析为 0xRRGGBB
func ParseHexColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must have the form #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

func degreesToRadians(deg float64) float64 {
	return deg / 180 * math.Pi
}
