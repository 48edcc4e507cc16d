// Package utils 提供通用工具函数
package utils

import (
	"log"
	"strings"

	"github.com/decker502/aura/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenPointer 基于 ebiten 的指针位置来源
// 同时支持鼠标和触摸输入，优先使用触摸
type EbitenPointer struct{}

// PointerPosition 返回当前指针的屏幕坐标
// 窗口未获得焦点时视为没有指针
func (EbitenPointer) PointerPosition() (x, y int, ok bool) {
	if !ebiten.IsFocused() {
		return 0, 0, false
	}
	x, y = GetPointerPosition()
	return x, y, true
}

// GetPointerPosition 获取当前指针位置（触摸或鼠标）
// 优先返回触摸位置，如果没有触摸则返回鼠标位置
func GetPointerPosition() (int, int) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[0])
	}
	return ebiten.CursorPosition()
}

// EbitenAxes 键盘移动输入（WASD 与方向键）
type EbitenAxes struct {
	// pressed 按键状态来源，测试中替换
	pressed func(ebiten.Key) bool
}

// NewEbitenAxes 创建读取真实键盘状态的移动输入
func NewEbitenAxes() *EbitenAxes {
	return &EbitenAxes{pressed: ebiten.IsKeyPressed}
}

// Axes 返回 x（右为正）和 y（前为正）
func (a *EbitenAxes) Axes() (x, y float64) {
	if a.pressed == nil {
		return 0, 0
	}
	if a.anyPressed(ebiten.KeyD, ebiten.KeyArrowRight) {
		x++
	}
	if a.anyPressed(ebiten.KeyA, ebiten.KeyArrowLeft) {
		x--
	}
	if a.anyPressed(ebiten.KeyW, ebiten.KeyArrowUp) {
		y++
	}
	if a.anyPressed(ebiten.KeyS, ebiten.KeyArrowDown) {
		y--
	}
	return x, y
}

func (a *EbitenAxes) anyPressed(keys ...ebiten.Key) bool {
	for _, key := range keys {
		if a.pressed(key) {
			return true
		}
	}
	return false
}

// CursorShapeFromName 把配置中的光标形状名称转换为 ebiten 光标形状
// 未知名称回退到默认形状
func CursorShapeFromName(name string) ebiten.CursorShapeType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pointer":
		return ebiten.CursorShapePointer
	case "crosshair":
		return ebiten.CursorShapeCrosshair
	case "text":
		return ebiten.CursorShapeText
	case "", "default":
		return ebiten.CursorShapeDefault
	default:
		log.Printf("[Input] unknown cursor shape %q, using default", name)
		return ebiten.CursorShapeDefault
	}
}

// CursorModeFor 根据输入配置计算光标模式
//
// 锁定到窗口且捕获时隐藏 → Captured；否则按 HideMouseCursor 决定显示或隐藏。
// 默认配置下光标可见且可以移出窗口。
func CursorModeFor(cfg config.InputConfig) ebiten.CursorModeType {
	if cfg.LockMouseToViewport && cfg.HideCursorDuringCapture {
		return ebiten.CursorModeCaptured
	}
	if cfg.HideMouseCursor {
		return ebiten.CursorModeHidden
	}
	return ebiten.CursorModeVisible
}

// ApplyInputMode 把输入配置应用到窗口
// 在 ebiten.RunGame 之前调用
func ApplyInputMode(cfg config.InputConfig) {
	ebiten.SetCursorMode(CursorModeFor(cfg))
	ebiten.SetCursorShape(CursorShapeFromName(cfg.CursorShape))
	log.Printf("[Input] cursor mode=%v shape=%s", CursorModeFor(cfg), cfg.CursorShape)
}
