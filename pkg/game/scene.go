package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one steppable, drawable execution context.
type Scene interface {
	// Update advances the scene by one step.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Saveable 是一个可选接口，用于支持场景在退出时保存状态
//
// 实现此接口的场景会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 用户通过 OS 命令关闭程序
type Saveable interface {
	// SaveOnExit 在场景退出时保存状态
	// 返回 true 表示保存成功或无需保存
	// 返回 false 表示保存失败（但程序仍会正常退出）
	SaveOnExit() bool
}

// Focusable 是一个可选接口，场景在被切换为显示或隐藏时收到通知
//
// 只有当前显示的场景会读取本地指针，隐藏的场景不应对光标做出反应。
type Focusable interface {
	SetFocused(focused bool)
}
