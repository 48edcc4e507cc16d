package systems

import (
	"fmt"
	"log"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
)

// PossessionListener 控制关系变化的监听者（如复制发布系统）
type PossessionListener interface {
	OnPossessionChanged(controller, body ecs.EntityID)
}

// ControllerSystem 控制器系统（仅权威端）
//
// 负责控制器与身体之间的接管/释放，并在接管时触发能力绑定的权威端入口。
// 观察端不运行此系统，它们通过复制的归属信息得知身体的主人。
type ControllerSystem struct {
	entityManager *ecs.EntityManager
	binding       *CapabilityBindingSystem
	listeners     []PossessionListener
}

// NewControllerSystem 创建控制器系统
func NewControllerSystem(em *ecs.EntityManager, binding *CapabilityBindingSystem) *ControllerSystem {
	return &ControllerSystem{
		entityManager: em,
		binding:       binding,
	}
}

// AddListener 注册控制关系监听者
func (s *ControllerSystem) AddListener(listener PossessionListener) {
	s.listeners = append(s.listeners, listener)
}

// Possess 控制器接管身体
//
// 控制器原先控制的身体会被释放；身体原先的控制者也会失去它。
// 身体的归属身份被设为控制器的玩家身份，然后触发能力绑定。
//
// 返回：
//   - error: 控制器或身体不存在时返回错误
func (s *ControllerSystem) Possess(controller, body ecs.EntityID) error {
	ctrl, ok := ecs.GetComponent[*components.PlayerControllerComponent](s.entityManager, controller)
	if !ok {
		return fmt.Errorf("entity %d is not a player controller", controller)
	}
	character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body)
	if !ok {
		return fmt.Errorf("entity %d is not a character body", body)
	}

	// 同一对控制关系重复接管时仍然重新绑定（幂等）
	if ctrl.PawnEntity != ecs.InvalidEntity && ctrl.PawnEntity != body {
		s.releasePawn(ctrl.PawnEntity, controller)
	}
	if character.ControllerEntity != ecs.InvalidEntity && character.ControllerEntity != controller {
		if other, ok := ecs.GetComponent[*components.PlayerControllerComponent](s.entityManager, character.ControllerEntity); ok {
			other.PawnEntity = ecs.InvalidEntity
			s.notify(character.ControllerEntity, ecs.InvalidEntity)
		}
	}

	ctrl.PawnEntity = body
	character.ControllerEntity = controller
	character.PlayerStateEntity = ctrl.PlayerStateEntity

	log.Printf("[ControllerSystem] controller %d possessed body %d", controller, body)

	if s.binding != nil {
		s.binding.OnPossessed(controller, body)
	}
	s.notify(controller, body)
	return nil
}

// UnPossess 控制器释放当前身体
// 身体保留最后一次绑定的能力引用（非拥有引用，无需清理）
func (s *ControllerSystem) UnPossess(controller ecs.EntityID) error {
	ctrl, ok := ecs.GetComponent[*components.PlayerControllerComponent](s.entityManager, controller)
	if !ok {
		return fmt.Errorf("entity %d is not a player controller", controller)
	}
	if ctrl.PawnEntity == ecs.InvalidEntity {
		return nil
	}

	s.releasePawn(ctrl.PawnEntity, controller)
	ctrl.PawnEntity = ecs.InvalidEntity
	log.Printf("[ControllerSystem] controller %d released its body", controller)
	s.notify(controller, ecs.InvalidEntity)
	return nil
}

// PawnOf 返回控制器当前控制的身体
func (s *ControllerSystem) PawnOf(controller ecs.EntityID) ecs.EntityID {
	ctrl, ok := ecs.GetComponent[*components.PlayerControllerComponent](s.entityManager, controller)
	if !ok {
		return ecs.InvalidEntity
	}
	return ctrl.PawnEntity
}

func (s *ControllerSystem) releasePawn(body, controller ecs.EntityID) {
	if character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body); ok {
		if character.ControllerEntity == controller {
			character.ControllerEntity = ecs.InvalidEntity
		}
	}
}

func (s *ControllerSystem) notify(controller, body ecs.EntityID) {
	for _, listener := range s.listeners {
		listener.OnPossessionChanged(controller, body)
	}
}
