package systems

import (
	"log"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
)

// hoverSlot 单个目标槽位
type hoverSlot struct {
	entity ecs.EntityID
	target components.Targetable
}

func (s hoverSlot) isSet() bool {
	return s.entity != ecs.InvalidEntity && s.target != nil
}

// CursorTraceSystem 光标目标追踪系统
//
// 每帧只在拥有本地指针输入的上下文中运行一次：查询光标下的实体，
// 维护"本帧目标"和"上一帧目标"两个槽位，并对实现了 Targetable
// 的实体发出高亮/取消高亮。
//
// 状态转换（previous → 本帧解析结果）：
//
//	A. 无 → 无：不做任何事
//	B. 无 → T：T.Highlight()
//	C. P → 无：P.Unhighlight()
//	D. P → T（T ≠ P）：P.Unhighlight()，T.Highlight()
//	E. P → P：不做任何事
//
// 射线没有击中任何表面时整帧跳过，状态保持不变。
// 同一时刻此系统最多让一个实体处于高亮状态。
type CursorTraceSystem struct {
	entityManager *ecs.EntityManager
	query         SpatialQuery

	current  hoverSlot
	previous hoverSlot

	// Enabled 为 false 时 Update 不做任何事（设置中关闭悬停高亮）
	Enabled bool
	// Verbose 输出每次状态转换的日志
	Verbose bool
}

// NewCursorTraceSystem 创建光标目标追踪系统
//
// 参数：
//   - em: 实体管理器
//   - query: 光标空间查询
func NewCursorTraceSystem(em *ecs.EntityManager, query SpatialQuery) *CursorTraceSystem {
	return &CursorTraceSystem{
		entityManager: em,
		query:         query,
		Enabled:       true,
	}
}

// Update 执行一帧光标追踪
func (s *CursorTraceSystem) Update(deltaTime float64) {
	if !s.Enabled || s.query == nil {
		return
	}

	hit := s.query.QueryUnderPointer()
	if !hit.BlockingHit {
		return
	}

	// 上一帧的目标已被销毁时视为无目标，无需取消高亮
	last := s.current
	if last.isSet() && !s.entityManager.Exists(last.entity) {
		last = hoverSlot{}
	}
	this := s.resolve(hit.Entity)

	s.previous = last
	s.current = this

	switch {
	case !last.isSet() && !this.isSet():
		// A: 无 → 无
	case !last.isSet():
		// B: 无 → T
		this.target.Highlight()
		s.logTransition("highlight", this.entity)
	case !this.isSet():
		// C: P → 无
		last.target.Unhighlight()
		s.logTransition("unhighlight", last.entity)
	case last.entity != this.entity:
		// D: P → T
		last.target.Unhighlight()
		this.target.Highlight()
		s.logTransition("unhighlight", last.entity)
		s.logTransition("highlight", this.entity)
	default:
		// E: P → P
	}
}

// resolve 把命中实体解析为可高亮目标
// 实体为 0、已不存在或不具备 Targetable 能力时返回空槽位
func (s *CursorTraceSystem) resolve(entity ecs.EntityID) hoverSlot {
	if entity == ecs.InvalidEntity || !s.entityManager.Exists(entity) {
		return hoverSlot{}
	}
	target, ok := ecs.GetCapability[components.Targetable](s.entityManager, entity)
	if !ok {
		return hoverSlot{}
	}
	return hoverSlot{entity: entity, target: target}
}

// CurrentTarget 返回本帧目标实体，没有时返回 0
func (s *CursorTraceSystem) CurrentTarget() ecs.EntityID {
	return s.current.entity
}

// PreviousTarget 返回上一帧目标实体，没有时返回 0
func (s *CursorTraceSystem) PreviousTarget() ecs.EntityID {
	return s.previous.entity
}

// Reset 取消当前目标的高亮并清空状态
// 在关闭悬停高亮或上下文销毁时调用，避免残留高亮
func (s *CursorTraceSystem) Reset() {
	if s.current.isSet() && s.entityManager.Exists(s.current.entity) {
		s.current.target.Unhighlight()
		s.logTransition("unhighlight", s.current.entity)
	}
	s.current = hoverSlot{}
	s.previous = hoverSlot{}
}

// SetEnabled 开关悬停高亮，关闭时清除残留高亮
func (s *CursorTraceSystem) SetEnabled(enabled bool) {
	if s.Enabled && !enabled {
		s.Reset()
	}
	s.Enabled = enabled
}

func (s *CursorTraceSystem) logTransition(action string, entity ecs.EntityID) {
	if s.Verbose {
		log.Printf("[CursorTraceSystem] %s entity %d", action, entity)
	}
}
