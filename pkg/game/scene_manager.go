package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager steps every registered scene and draws the active one.
//
// 进程内的多个执行上下文（一个权威端 + 若干观察端）都注册在这里，
// 每帧按注册顺序依次更新；窗口只显示当前选中的那一个。
type SceneManager struct {
	scenes  []Scene
	current int
}

// NewSceneManager creates an empty SceneManager.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// Add registers a scene. The first scene added becomes the active one.
func (sm *SceneManager) Add(scene Scene) {
	sm.scenes = append(sm.scenes, scene)
	setFocused(scene, len(sm.scenes)-1 == sm.current)
}

// SwitchTo 切换显示的场景
// 索引越界时不做任何事
func (sm *SceneManager) SwitchTo(index int) {
	if index < 0 || index >= len(sm.scenes) {
		log.Printf("[SceneManager] scene index %d out of range", index)
		return
	}
	sm.setCurrent(index)
}

// Cycle 切换到下一个场景
func (sm *SceneManager) Cycle() {
	if len(sm.scenes) == 0 {
		return
	}
	sm.setCurrent((sm.current + 1) % len(sm.scenes))
}

// setCurrent 切换当前场景，并通知前后两个场景焦点变化
func (sm *SceneManager) setCurrent(index int) {
	if index == sm.current {
		return
	}
	setFocused(sm.scenes[sm.current], false)
	sm.current = index
	setFocused(sm.scenes[sm.current], true)
}

func setFocused(scene Scene, focused bool) {
	if f, ok := scene.(Focusable); ok {
		f.SetFocused(focused)
	}
}

// GetCurrentScene 返回当前显示的场景，没有场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	if len(sm.scenes) == 0 {
		return nil
	}
	return sm.scenes[sm.current]
}

// Scenes 返回全部场景
func (sm *SceneManager) Scenes() []Scene {
	return sm.scenes
}

// Update updates every registered scene.
func (sm *SceneManager) Update(deltaTime float64) {
	for _, scene := range sm.scenes {
		scene.Update(deltaTime)
	}
}

// Draw renders the active scene.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if scene := sm.GetCurrentScene(); scene != nil {
		scene.Draw(screen)
	}
}

// SaveAll 对所有实现 Saveable 的场景调用 SaveOnExit
// 返回 false 表示至少一个场景保存失败
func (sm *SceneManager) SaveAll() bool {
	ok := true
	for _, scene := range sm.scenes {
		if saveable, is := scene.(Saveable); is {
			if !saveable.SaveOnExit() {
				ok = false
			}
		}
	}
	return ok
}
