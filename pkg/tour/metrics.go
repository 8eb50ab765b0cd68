package tour

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/decker502/vtour/pkg/tour"

// Metrics 通过全局 OTel meter 统计浏览活动
// 宿主未安装 provider 时为空操作；nil *Metrics 可以直接使用
type Metrics struct {
	loads           metric.Int64Counter
	assetFailures   metric.Int64Counter
	released        metric.Int64Counter
	playbackBlocked metric.Int64Counter
}

// NewMetrics 创建计数器
func NewMetrics() (*Metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out Metrics
		err error
	)

	out.loads, err = m.Int64Counter(
		"tour.location.loads",
		metric.WithDescription("Location loads started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loads counter: %w", err)
	}

	out.assetFailures, err = m.Int64Counter(
		"tour.assets.failures",
		metric.WithDescription("Image or model loads that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset failure counter: %w", err)
	}

	out.released, err = m.Int64Counter(
		"tour.resources.released",
		metric.WithDescription("Textures, materials, geometries and sprites released"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating released counter: %w", err)
	}

	out.playbackBlocked, err = m.Int64Counter(
		"tour.playback.blocked",
		metric.WithDescription("Play requests rejected by the media backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating playback counter: %w", err)
	}

	return &out, nil
}

func (m *Metrics) locationLoaded(id string) {
	if m == nil {
		return
	}
	m.loads.Add(context.Background(), 1, metric.WithAttributes(attribute.String("location", id)))
}

func (m *Metrics) assetFailed(asset string) {
	if m == nil {
		return
	}
	m.assetFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("asset", asset)))
}

func (m *Metrics) resourceReleased(resource string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.released.Add(context.Background(), int64(n), metric.WithAttributes(attribute.String("resource", resource)))
}

func (m *Metrics) playbackRejected() {
	if m == nil {
		return
	}
	m.playbackBlocked.Add(context.Background(), 1)
}
