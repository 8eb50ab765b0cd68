package components

import (
	"testing"

	"github.com/decker502/vtour/pkg/config"
	"github.com/decker502/vtour/pkg/render"
)

// TestNewHotspotComponent 测试目录条目到组件的转换
func TestNewHotspotComponent(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.HotspotConfig
		wantKind  HotspotKind
		wantTint  render.Color
		wantPulse bool
	}{
		{"info", config.HotspotConfig{Kind: config.HotspotKindInfo, Message: "Voir"}, HotspotInfo, render.ColorBlack, true},
		{"info-alt", config.HotspotConfig{Kind: config.HotspotKindInfoAlt, Message: "Voir"}, HotspotInfoAlt, render.ColorWhite, true},
		{"media", config.HotspotConfig{Kind: config.HotspotKindMedia, Target: "son1"}, HotspotMedia, render.ColorWhite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewHotspotComponent(2, tt.cfg)
			if c.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v", tt.wantKind, c.Kind)
			}
			if c.Kind.String() != tt.cfg.Kind {
				t.Errorf("Expected kind string %q, got %q", tt.cfg.Kind, c.Kind.String())
			}
			if c.BaseTint() != tt.wantTint {
				t.Errorf("Expected base tint %#x, got %#x", tt.wantTint, c.BaseTint())
			}
			if c.Pulses() != tt.wantPulse {
				t.Errorf("Expected pulses=%v, got %v", tt.wantPulse, c.Pulses())
			}
			if c.Index != 2 {
				t.Errorf("Expected index 2, got %d", c.Index)
			}
		})
	}
}

// TestHotspotPayload 测试负载变体
func TestHotspotPayload(t *testing.T) {
	info := NewHotspotComponent(0, config.HotspotConfig{Kind: config.HotspotKindInfo, Message: "Le puits"})
	if p, ok := info.Payload.(InfoPayload); !ok || p.Message != "Le puits" {
		t.Errorf("Expected InfoPayload with message, got %#v", info.Payload)
	}

	media := NewHotspotComponent(1, config.HotspotConfig{Kind: config.HotspotKindMedia, Target: "videos2"})
	if p, ok := media.Payload.(MediaPayload); !ok || p.TargetID != "videos2" {
		t.Errorf("Expected MediaPayload with target, got %#v", media.Payload)
	}
}

// TestHoverHighlight 测试悬停颜色切换
func TestHoverHighlight(t *testing.T) {
	h := NewHoverHighlightComponent(render.ColorBlack)
	if h.Tint() != render.ColorBlack {
		t.Errorf("Expected base tint, got %#x", h.Tint())
	}
	h.IsActive = true
	if h.Tint() != render.ColorDimmed {
		t.Errorf("Expected dimmed tint while hovered, got %#x", h.Tint())
	}
	h.IsActive = false
	if h.Tint() != render.ColorBlack {
		t.Errorf("Expected base tint restored, got %#x", h.Tint())
	}
}
