package components

import "image/color"

// HoverHighlightComponent 悬停高亮组件
// 用于实体被光标指向时的持续描边效果（不闪烁）
//
// 由可高亮实体的 Highlight/Unhighlight 维护，RenderSystem 只读取。
type HoverHighlightComponent struct {
	// Intensity 高亮强度（0.0 - 1.0）
	// 1.0 = 最亮，0.0 = 无效果
	Intensity float64

	// Outline 描边颜色
	Outline color.RGBA

	// IsActive 是否激活
	IsActive bool
}
