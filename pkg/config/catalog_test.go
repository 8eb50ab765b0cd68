package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalogYAML = `version: "1.0"
locations:
  - id: manor
    background: assets/manoir.jpg
    audio: audio_manoir.mp3
    hotspots:
      - {kind: info, position: [-50, 0, -50], message: "Voir"}
      - {kind: media, position: [-80, 0, 25], target: son1}
  - id: mill
    background: assets/moulin.jpg
    audio: audio_moulin.mp3
    sphereRotation: -180
    hotspots:
      - {kind: info-alt, position: [25, 15, 75], message: "Voir", scale: 12}
    model:
      path: models/moulin.glb
      rotation: [0, 60, 0]
      material: {color: "#8B4513", roughness: 0.8, metalness: 0.2}
popups:
  - {id: son1, title: "Podcast", audio: podcast.mp3}
`

// TestParseCatalog 测试目录解析与默认值
func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog() failed: %v", err)
	}

	if len(catalog.Locations) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(catalog.Locations))
	}

	manor, ok := catalog.Location("manor")
	if !ok {
		t.Fatal("Expected location 'manor'")
	}
	if len(manor.Hotspots) != 2 {
		t.Fatalf("Expected 2 hotspots, got %d", len(manor.Hotspots))
	}
	if manor.Hotspots[0].Scale != DefaultInfoScale {
		t.Errorf("Expected info default scale %.1f, got %.1f", DefaultInfoScale, manor.Hotspots[0].Scale)
	}
	if manor.Hotspots[1].Scale != DefaultMediaScale {
		t.Errorf("Expected media default scale %.1f, got %.1f", DefaultMediaScale, manor.Hotspots[1].Scale)
	}
	if manor.Hotspots[0].Position != (Vec3{-50, 0, -50}) {
		t.Errorf("Unexpected position %v", manor.Hotspots[0].Position)
	}
	if manor.SphereRotationRadians() != 0 {
		t.Errorf("Expected manor rotation 0, got %f", manor.SphereRotationRadians())
	}

	mill, _ := catalog.Location("mill")
	if mill.SphereRotationRadians() != -math.Pi {
		t.Errorf("Expected mill rotation -π, got %f", mill.SphereRotationRadians())
	}
	if mill.Hotspots[0].Scale != 12 {
		t.Errorf("Expected explicit scale to survive, got %.1f", mill.Hotspots[0].Scale)
	}
	if mill.Model == nil {
		t.Fatal("Expected mill model")
	}
	if mill.Model.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("Expected default model scale 1, got %v", mill.Model.Scale)
	}
	if got := mill.Model.RotationRadians().Y(); math.Abs(got-math.Pi/3) > 1e-9 {
		t.Errorf("Expected model yaw π/3, got %f", got)
	}
	rgb, err := mill.Model.Material.RGB()
	if err != nil || rgb != 0x8B4513 {
		t.Errorf("Expected material color 0x8B4513, got %#x (%v)", rgb, err)
	}

	if _, ok := catalog.Location("castle"); ok {
		t.Error("Unknown location should not be found")
	}
	if ids := catalog.LocationIDs(); strings.Join(ids, ",") != "manor,mill" {
		t.Errorf("Unexpected location order %v", ids)
	}
}

// TestCatalogIconFor 测试图标默认值
func TestCatalogIconFor(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog() failed: %v", err)
	}

	tests := []struct {
		hotspot HotspotConfig
		want    string
	}{
		{HotspotConfig{Kind: HotspotKindInfo}, catalog.Icons.Info},
		{HotspotConfig{Kind: HotspotKindInfoAlt}, catalog.Icons.InfoAlt},
		{HotspotConfig{Kind: HotspotKindMedia}, catalog.Icons.Media},
		{HotspotConfig{Kind: HotspotKindMedia, Icon: "custom.png"}, "custom.png"},
	}
	for _, tt := range tests {
		if got := catalog.IconFor(tt.hotspot); got != tt.want {
			t.Errorf("IconFor(%+v) = %q, want %q", tt.hotspot, got, tt.want)
		}
	}
}

// TestParseCatalogInvalid 测试非法目录
func TestParseCatalogInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no locations",
			yaml:    "version: \"1.0\"\n",
			wantErr: "at least one location",
		},
		{
			name:    "missing background",
			yaml:    "locations:\n  - id: manor\n",
			wantErr: "background is required",
		},
		{
			name: "duplicate id",
			yaml: `locations:
  - {id: manor, background: a.jpg}
  - {id: manor, background: b.jpg}
`,
			wantErr: "duplicate id",
		},
		{
			name: "unknown kind",
			yaml: `locations:
  - id: manor
    background: a.jpg
    hotspots:
      - {kind: door, position: [0, 0, 0]}
`,
			wantErr: "kind must be one of",
		},
		{
			name: "info without message",
			yaml: `locations:
  - id: manor
    background: a.jpg
    hotspots:
      - {kind: info, position: [0, 0, 0]}
`,
			wantErr: "message is required",
		},
		{
			name: "media without target",
			yaml: `locations:
  - id: manor
    background: a.jpg
    hotspots:
      - {kind: media, position: [0, 0, 0]}
`,
			wantErr: "target is required",
		},
		{
			name: "unknown popup",
			yaml: `locations:
  - id: manor
    background: a.jpg
    hotspots:
      - {kind: media, position: [0, 0, 0], target: nope}
popups:
  - {id: son1}
`,
			wantErr: "unknown popup",
		},
		{
			name: "bad material color",
			yaml: `locations:
  - id: mill
    background: a.jpg
    model: {path: m.glb, material: {color: "brown"}}
`,
			wantErr: "#RRGGBB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadCatalogFile 测试从文件加载
func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}
	if _, ok := catalog.Popup("son1"); !ok {
		t.Error("Expected popup son1")
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestShippedCatalog 验证仓库自带的目录
func TestShippedCatalog(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "data", "catalog.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}

	counts := map[string]int{"manor": 5, "mill": 5, "weavers": 5}
	for id, want := range counts {
		loc, ok := catalog.Location(id)
		if !ok {
			t.Fatalf("Missing location %q", id)
		}
		if len(loc.Hotspots) != want {
			t.Errorf("Location %q: expected %d hotspots, got %d", id, want, len(loc.Hotspots))
		}
	}

	mill, _ := catalog.Location("mill")
	if mill.Model == nil {
		t.Fatal("Expected the mill to carry a model")
	}
	// 每帧 0.005 弧度（60Hz）
	if perFrame := mill.Model.SpinRadians() / 60; math.Abs(perFrame-(-0.005)) > 1e-9 {
		t.Errorf("Expected mill spin -0.005 rad per frame, got %f", perFrame)
	}
	if len(catalog.Tutorial.Lines) == 0 {
		t.Error("Expected tutorial lines")
	}
}

func TestParseHexColor(t *testing.T) {
	if v, err := ParseHexColor("#aaaaaa"); err != nil || v != 0xAAAAAA {
		t.Errorf("ParseHexColor(#aaaaaa) = %#x, %v", v, err)
	}
	if v, err := ParseHexColor("FFFFFF"); err != nil || v != 0xFFFFFF {
		t.Errorf("ParseHexColor(FFFFFF) = %#x, %v", v, err)
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Error("Expected error for short color")
	}
	if _, err := ParseHexColor("#GGGGGG"); err == nil {
		t.Error("Expected error for non-hex color")
	}
}

func TestCatalogAssetPaths(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalog() failed: %v", err)
	}

	got := strings.Join(catalog.AssetPaths("sound"), ",")
	want := strings.Join([]string{
		"assets/icons/doc_icon.png",
		"assets/icons/play.png",
		"assets/icons/voir.png",
		"assets/manoir.jpg",
		"assets/moulin.jpg",
		"models/moulin.glb",
		"sound/audio_manoir.mp3",
		"sound/audio_moulin.mp3",
		"sound/podcast.mp3",
	}, ",")
	if got != want {
		t.Errorf("AssetPaths() =\n%s\nwant\n%s", got, want)
	}
}
