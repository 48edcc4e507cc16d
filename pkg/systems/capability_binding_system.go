package systems

import (
	"log"

	"github.com/decker502/aura/pkg/ability"
	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/google/uuid"
)

// PlayerIdentity 本上下文中的玩家身份
type PlayerIdentity struct {
	Entity   ecs.EntityID
	PlayerID uuid.UUID
}

// IdentityRegistry 身份登记：身体属于哪个玩家、玩家的能力包是什么
type IdentityRegistry interface {
	OwnerOf(body ecs.EntityID) (PlayerIdentity, bool)
	BundleOf(identity PlayerIdentity) (*ability.CapabilityBundle, bool)
}

// EntityIdentityRegistry 基于 ECS 组件的身份登记
//
// 身体的归属来自 CharacterComponent.PlayerStateEntity，
// 能力包来自 PlayerStateComponent.Bundle。
type EntityIdentityRegistry struct {
	entityManager *ecs.EntityManager
}

// NewEntityIdentityRegistry 创建身份登记
func NewEntityIdentityRegistry(em *ecs.EntityManager) *EntityIdentityRegistry {
	return &EntityIdentityRegistry{entityManager: em}
}

// OwnerOf 实现 IdentityRegistry
func (r *EntityIdentityRegistry) OwnerOf(body ecs.EntityID) (PlayerIdentity, bool) {
	character, ok := ecs.GetComponent[*components.CharacterComponent](r.entityManager, body)
	if !ok || character.PlayerStateEntity == ecs.InvalidEntity {
		return PlayerIdentity{}, false
	}
	state, ok := ecs.GetComponent[*components.PlayerStateComponent](r.entityManager, character.PlayerStateEntity)
	if !ok {
		return PlayerIdentity{}, false
	}
	return PlayerIdentity{Entity: character.PlayerStateEntity, PlayerID: state.PlayerID}, true
}

// BundleOf 实现 IdentityRegistry
func (r *EntityIdentityRegistry) BundleOf(identity PlayerIdentity) (*ability.CapabilityBundle, bool) {
	state, ok := ecs.GetComponent[*components.PlayerStateComponent](r.entityManager, identity.Entity)
	if !ok || !state.Bundle.IsComplete() {
		return nil, false
	}
	return state.Bundle, true
}

// FindPlayerState 按 PlayerID 查找本上下文中的玩家身份实体
func (r *EntityIdentityRegistry) FindPlayerState(playerID uuid.UUID) (ecs.EntityID, bool) {
	for _, entity := range ecs.GetEntitiesWith1[*components.PlayerStateComponent](r.entityManager) {
		state, _ := ecs.GetComponent[*components.PlayerStateComponent](r.entityManager, entity)
		if state.PlayerID == playerID {
			return entity, true
		}
	}
	return ecs.InvalidEntity, false
}

// CapabilityBindingSystem 把玩家的能力包绑定到其当前控制的身体
//
// 有两个相互独立的触发入口，都调用同一个绑定例程：
//   - OnPossessed: 权威端，控制器接管身体时
//   - OnPlayerStateReplicated: 每个观察端，本地镜像的归属信息到达或更新时
//
// 两个入口在各上下文中的先后顺序不确定，绑定例程对同一 (身份, 身体)
// 重复执行结果不变，因此无需协调。
type CapabilityBindingSystem struct {
	entityManager *ecs.EntityManager
	registry      IdentityRegistry

	// bindCount 绑定例程执行次数（诊断用）
	bindCount int
	// Verbose 输出每次绑定的日志
	Verbose bool
}

// NewCapabilityBindingSystem 创建能力绑定系统
//
// 参数：
//   - em: 实体管理器
//   - registry: 身份登记
func NewCapabilityBindingSystem(em *ecs.EntityManager, registry IdentityRegistry) *CapabilityBindingSystem {
	return &CapabilityBindingSystem{
		entityManager: em,
		registry:      registry,
	}
}

// OnPossessed 权威端触发入口：控制器接管身体
func (s *CapabilityBindingSystem) OnPossessed(controller, body ecs.EntityID) {
	if s.Verbose {
		log.Printf("[CapabilityBindingSystem] possessed: controller=%d body=%d", controller, body)
	}
	s.BindCapabilities(body)
}

// OnPlayerStateReplicated 观察端触发入口：身体的归属镜像已同步
func (s *CapabilityBindingSystem) OnPlayerStateReplicated(body ecs.EntityID) {
	if s.Verbose {
		log.Printf("[CapabilityBindingSystem] player state replicated: body=%d", body)
	}
	s.BindCapabilities(body)
}

// BindCapabilities 绑定例程
//
// 身体必须有归属身份，身份必须有完整的能力包；否则是前置条件被破坏，
// 直接 panic，而不是留下半绑定的身体让能力逻辑读到空属性集。
func (s *CapabilityBindingSystem) BindCapabilities(body ecs.EntityID) {
	character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body)
	if !ok {
		log.Panicf("[CapabilityBindingSystem] entity %d is not a character body", body)
	}

	identity, ok := s.registry.OwnerOf(body)
	if !ok {
		log.Panicf("[CapabilityBindingSystem] body %d has no owning player identity", body)
	}

	bundle, ok := s.registry.BundleOf(identity)
	if !ok || !bundle.IsComplete() {
		log.Panicf("[CapabilityBindingSystem] player %s (entity %d) has no capability bundle", identity.PlayerID, identity.Entity)
	}

	bundle.AbilitySystem.InitAbilityActorInfo(identity.Entity, body)
	character.AbilitySystem = bundle.AbilitySystem
	character.AttributeSet = bundle.Attributes
	s.bindCount++

	if s.Verbose {
		log.Printf("[CapabilityBindingSystem] bound body %d to player %s", body, identity.PlayerID)
	}
}

// BindCount 绑定例程执行次数
func (s *CapabilityBindingSystem) BindCount() int {
	return s.bindCount
}
