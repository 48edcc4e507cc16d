package components

// Targetable 可被光标高亮的能力
//
// 任何世界实体只要有一个组件实现此接口，就可以成为光标目标。
// Highlight 和 Unhighlight 都必须幂等：连续调用两次与调用一次效果相同。
type Targetable interface {
	Highlight()
	Unhighlight()
}

// CustomDepthRed 敌人描边使用的自定义深度模板值
const CustomDepthRed = 250

// EnemyComponent 标识实体为敌人，并实现 Targetable
type EnemyComponent struct {
	// Name 敌人名称（调试日志用）
	Name string

	// Highlighted 当前是否处于高亮状态
	Highlighted bool

	// CustomDepthStencil 高亮时写入的模板值，未高亮时为 0
	CustomDepthStencil int

	// StencilValue 高亮使用的模板值，0 表示使用 CustomDepthRed
	StencilValue int

	// HoverEffect 描边效果，nil 表示不需要渲染
	HoverEffect *HoverHighlightComponent
}

// Highlight 开启描边（幂等）
func (e *EnemyComponent) Highlight() {
	e.Highlighted = true
	e.CustomDepthStencil = e.stencil()
	if e.HoverEffect != nil {
		e.HoverEffect.IsActive = true
	}
}

// Unhighlight 关闭描边（幂等）
func (e *EnemyComponent) Unhighlight() {
	e.Highlighted = false
	e.CustomDepthStencil = 0
	if e.HoverEffect != nil {
		e.HoverEffect.IsActive = false
	}
}

func (e *EnemyComponent) stencil() int {
	if e.StencilValue != 0 {
		return e.StencilValue
	}
	return CustomDepthRed
}
