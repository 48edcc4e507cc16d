package components

import (
	"github.com/decker502/aura/pkg/ability"
	"github.com/google/uuid"
)

// PlayerStateComponent 玩家的持久身份
//
// 拥有玩家的 CapabilityBundle。身份在角色死亡、重生时保持不变，
// 因此能力和属性跨身体存活。每个执行上下文中同一 PlayerID 只有一个实体。
type PlayerStateComponent struct {
	// PlayerID 跨执行上下文的玩家标识
	PlayerID uuid.UUID

	// Bundle 玩家的能力包（拥有）
	Bundle *ability.CapabilityBundle

	// NetUpdateFrequency 权威端向观察端推送状态的频率（次/秒）
	NetUpdateFrequency float64
}

// GetAbilitySystemComponent 实现 ability.AbilitySystemInterface
func (p *PlayerStateComponent) GetAbilitySystemComponent() *ability.AbilitySystemComponent {
	if p.Bundle == nil {
		return nil
	}
	return p.Bundle.AbilitySystem
}

// GetAttributeSet 返回玩家属性集
func (p *PlayerStateComponent) GetAttributeSet() *ability.AttributeSet {
	if p.Bundle == nil {
		return nil
	}
	return p.Bundle.Attributes
}
