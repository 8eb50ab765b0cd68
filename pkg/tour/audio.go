package tour

import (
	"path"

	"github.com/rs/zerolog"

	"github.com/decker502/vtour/pkg/ui"
)

// AmbientAudioController 环境音控制器
// 播放当前地点的背景音，并保证同一时刻最多只有一个媒体元素在发声
type AmbientAudioController struct {
	doc      ui.Presentation
	session  *Session
	soundDir string
	log      zerolog.Logger
	metrics  *Metrics
}

// NewAmbientAudioController 创建控制器并注册播放监听
func NewAmbientAudioController(doc ui.Presentation, session *Session, soundDir string, log zerolog.Logger, metrics *Metrics) *AmbientAudioController {
	c := &AmbientAudioController{
		doc:      doc,
		session:  session,
		soundDir: soundDir,
		log:      log.With().Str("component", "audio").Logger(),
		metrics:  metrics,
	}
	doc.OnMediaPlay(c.onMediaPlay)
	return c
}

func (c *AmbientAudioController) track() (ui.AmbientTrack, bool) {
	t, ok := c.doc.AmbientTrack()
	if !ok {
		c.log.Warn().Str("error_kind", kindMissingDomTarget).Msg("ambient track element missing")
	}
	return t, ok
}

// SwitchTrack 切换环境音文件并重新加载
// 只有切换前正在播放时才会继续播放
func (c *AmbientAudioController) SwitchTrack(file string) {
	t, ok := c.track()
	if !ok {
		return
	}
	src := file
	if c.soundDir != "" && file != "" {
		src = path.Join(c.soundDir, file)
	}
	t.SetSource(src)
	t.Load()
	c.log.Debug().Str("source", src).Bool("resume", c.session.AmbientPlaying).Msg("ambient track switched")

	if c.session.AmbientPlaying {
		c.play(t)
	}
}

// Toggle 切换环境音播放状态
func (c *AmbientAudioController) Toggle() {
	t, ok := c.track()
	if !ok {
		return
	}
	if c.session.AmbientPlaying {
		t.Pause()
		c.setPlaying(false)
		return
	}
	c.play(t)
}

// Stop 暂停并回到开头
func (c *AmbientAudioController) Stop() {
	if t, ok := c.track(); ok {
		t.Pause()
		t.Rewind()
	}
	c.setPlaying(false)
}

// Playing 环境音是否开启
func (c *AmbientAudioController) Playing() bool {
	return c.session.AmbientPlaying
}

func (c *AmbientAudioController) play(t ui.AmbientTrack) {
	if err := t.Play(); err != nil {
		c.log.Warn().Err(err).Str("error_kind", kindPlaybackBlocked).Str("source", t.Source()).Msg("ambient playback rejected")
		c.metrics.playbackRejected()
		c.setPlaying(false)
		return
	}
	c.setPlaying(true)
}

func (c *AmbientAudioController) setPlaying(playing bool) {
	c.session.AmbientPlaying = playing
	c.doc.SetAudioIcon(playing)
}

// onMediaPlay 暂停并回卷其他所有媒体元素
// 环境音被这样静音时同时清除播放标记
func (c *AmbientAudioController) onMediaPlay(started ui.MediaElement) {
	ambient, hasAmbient := c.doc.AmbientTrack()
	for _, el := range c.doc.MediaElements() {
		if el == started {
			continue
		}
		el.Pause()
		el.Rewind()
		if hasAmbient && el == ui.MediaElement(ambient) {
			c.setPlaying(false)
		}
	}
}
