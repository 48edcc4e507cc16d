package entities

import (
	"fmt"
	"log"

	"github.com/decker502/aura/pkg/ability"
	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/google/uuid"
)

// NewPlayerStateEntity 创建玩家身份实体
// 能力包在这里创建，且只创建这一次：之后无论身体如何更换，能力包都随身份存活
//
// 参数:
//   - em: 实体管理器
//   - cfg: 玩家身份配置（复制模式、属性上限、初始能力）
//   - playerID: 跨上下文的玩家标识，uuid.Nil 时自动生成
//
// 返回:
//   - ecs.EntityID: 创建的身份实体ID，失败时返回 0
//   - error: 配置非法时返回错误
func NewPlayerStateEntity(em *ecs.EntityManager, cfg config.PlayerStateConfig, playerID uuid.UUID) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}

	mode, err := ability.ParseReplicationMode(cfg.ReplicationMode)
	if err != nil {
		return 0, fmt.Errorf("player state: %w", err)
	}
	if playerID == uuid.Nil {
		playerID = uuid.New()
	}

	bundle := ability.NewCapabilityBundle(mode, ability.NewAttributeSet(cfg.MaxHealth, cfg.MaxMana))
	for _, tag := range cfg.StartingAbilities {
		bundle.AbilitySystem.GiveAbility(tag)
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.PlayerStateComponent{
		PlayerID:           playerID,
		Bundle:             bundle,
		NetUpdateFrequency: cfg.NetUpdateFrequency,
	})

	log.Printf("[PlayerFactory] player state created: entity=%d player=%s mode=%s", entityID, playerID, mode)
	return entityID, nil
}

// NewPlayerControllerEntity 创建玩家控制器实体
//
// 参数:
//   - em: 实体管理器
//   - playerState: 控制器所属的玩家身份实体
//   - isLocal: 是否由本地输入驱动
func NewPlayerControllerEntity(em *ecs.EntityManager, playerState ecs.EntityID, isLocal bool) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if !ecs.HasComponent[*components.PlayerStateComponent](em, playerState) {
		return 0, fmt.Errorf("entity %d is not a player state", playerState)
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.PlayerControllerComponent{
		PlayerStateEntity: playerState,
		ControlYaw:        -90, // 屏幕上方为前
		IsLocal:           isLocal,
	})
	return entityID, nil
}

// NewCharacterEntity 创建可被控制的角色身体
// 新身体未绑定能力包，等待控制建立（或归属镜像到达）后由绑定系统写入
//
// 参数:
//   - em: 实体管理器
//   - cfg: 角色配置
//   - netID: 跨上下文的复制标识，uuid.Nil 时自动生成
//   - x, y: 初始世界坐标
func NewCharacterEntity(em *ecs.EntityManager, cfg config.CharacterConfig, netID uuid.UUID, x, y float64) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if netID == uuid.Nil {
		netID = uuid.New()
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.PositionComponent{X: x, Y: y})
	em.AddComponent(entityID, &components.CollisionComponent{
		Width:  cfg.Width,
		Height: cfg.Height,
		// 身体挡住光标，但不是可高亮目标
		BlocksVisibility: true,
	})
	em.AddComponent(entityID, &components.CharacterComponent{})
	em.AddComponent(entityID, &components.MovementComponent{
		Speed:                    cfg.MoveSpeed,
		Yaw:                      -90,
		RotationRate:             cfg.RotationRate,
		OrientRotationToMovement: cfg.OrientRotationToMovement,
		ConstrainToPlane:         cfg.ConstrainToPlane,
	})
	em.AddComponent(entityID, &components.NetIdentityComponent{NetID: netID})

	return entityID, nil
}
