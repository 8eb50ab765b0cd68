package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 浏览器的一个绘制层（全景、界面）
// 每层有自己的更新和绘制逻辑
type Scene interface {
	// Update 按经过时间更新
	// deltaTime 为距上次更新的秒数
	Update(deltaTime float64)

	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 是一个可选接口，用于在窗口关闭时保存状态
//
// 实现此接口的对象会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 用户通过 OS 命令关闭程序
type Saveable interface {
	// SaveOnExit 在退出时保存状态
	// 返回 true 表示保存成功或无需保存
	SaveOnExit() bool
}
