package components

import (
	"github.com/decker502/aura/pkg/ability"
	"github.com/decker502/aura/pkg/ecs"
)

// CharacterComponent 可被控制的角色身体
//
// AbilitySystem 和 AttributeSet 是对控制者玩家能力包的非拥有引用，
// 每次建立控制时由 CapabilityBindingSystem 覆盖写入，无需显式清理。
type CharacterComponent struct {
	// AbilitySystem 当前绑定的能力处理单元（非拥有）
	AbilitySystem *ability.AbilitySystemComponent
	// AttributeSet 当前绑定的属性集（非拥有）
	AttributeSet *ability.AttributeSet

	// PlayerStateEntity 拥有此身体的玩家身份实体（本上下文内的ID）
	// 权威端在被控制时写入，观察端在收到复制的归属信息时写入
	PlayerStateEntity ecs.EntityID

	// ControllerEntity 当前控制者实体，观察端上总是 0
	ControllerEntity ecs.EntityID
}

// GetAbilitySystemComponent 实现 ability.AbilitySystemInterface
func (c *CharacterComponent) GetAbilitySystemComponent() *ability.AbilitySystemComponent {
	return c.AbilitySystem
}

// GetAttributeSet 实现 ability.HasCapabilityBundle
func (c *CharacterComponent) GetAttributeSet() *ability.AttributeSet {
	return c.AttributeSet
}

// IsBound 身体是否已绑定能力包
func (c *CharacterComponent) IsBound() bool {
	return c.AbilitySystem != nil && c.AttributeSet != nil
}

// MovementComponent 角色移动参数
type MovementComponent struct {
	// Speed 最大移动速度（像素/秒）
	Speed float64
	// Yaw 当前朝向（度，0 = +X 方向）
	Yaw float64
	// RotationRate 转向速度（度/秒）
	RotationRate float64
	// OrientRotationToMovement 是否转向移动方向
	OrientRotationToMovement bool
	// ConstrainToPlane 是否限制在平面内（忽略竖直方向输入）
	ConstrainToPlane bool
	// VelocityX, VelocityY 本帧速度
	VelocityX float64
	VelocityY float64
}
