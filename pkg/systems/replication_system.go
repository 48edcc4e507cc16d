package systems

import (
	"log"
	"time"

	"github.com/decker502/aura/pkg/ability"
	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/decker502/aura/pkg/entities"
	"github.com/decker502/aura/pkg/replication"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ReplicationPublishSystem 权威端复制发布系统
//
// 控制关系建立时立即发布归属事实；之后按玩家的 NetUpdateFrequency
// 限频发布属性与身体状态。
type ReplicationPublishSystem struct {
	entityManager *ecs.EntityManager
	publisher     replication.Publisher

	limiters map[uuid.UUID]*rate.Limiter
	// now 时间来源，测试中替换
	now func() time.Time
}

// NewReplicationPublishSystem 创建复制发布系统
func NewReplicationPublishSystem(em *ecs.EntityManager, publisher replication.Publisher) *ReplicationPublishSystem {
	return &ReplicationPublishSystem{
		entityManager: em,
		publisher:     publisher,
		limiters:      make(map[uuid.UUID]*rate.Limiter),
		now:           time.Now,
	}
}

// OnPossessionChanged 实现 PossessionListener
func (s *ReplicationPublishSystem) OnPossessionChanged(controller, body ecs.EntityID) {
	if body == ecs.InvalidEntity {
		return
	}
	s.PublishOwnership(body)
}

// PublishOwnership 发布身体的归属事实
func (s *ReplicationPublishSystem) PublishOwnership(body ecs.EntityID) {
	netID, state, ok := s.replicatedBody(body)
	if !ok {
		return
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, body)

	fact := replication.OwnershipFact{
		BodyNetID:       netID,
		PlayerID:        state.PlayerID,
		ReplicationMode: state.Bundle.AbilitySystem.Mode.String(),
		Attributes:      state.Bundle.Attributes.Snapshot(),
		Abilities:       state.Bundle.AbilitySystem.Abilities(),
	}
	if pos != nil {
		fact.X, fact.Y = pos.X, pos.Y
	}

	if err := s.publisher.Publish(replication.NewOwnershipEnvelope(fact)); err != nil {
		log.Printf("[ReplicationPublishSystem] failed to publish ownership of body %d: %v", body, err)
	}
}

// Update 限频发布属性与身体状态
//
// 只发布当前被控制的身体：玩家换身体后，旧身体仍保留对玩家身份的引用，
// 但不再占用该玩家的限频额度。
func (s *ReplicationPublishSystem) Update(deltaTime float64) {
	now := s.now()
	for _, body := range ecs.GetEntitiesWith2[*components.CharacterComponent, *components.NetIdentityComponent](s.entityManager) {
		character, _ := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body)
		if character.ControllerEntity == ecs.InvalidEntity {
			continue
		}
		netID, state, ok := s.replicatedBody(body)
		if !ok {
			continue
		}
		if !s.limiterFor(state).AllowN(now, 1) {
			continue
		}

		attrs := replication.NewAttributeEnvelope(replication.AttributeFact{
			PlayerID:   state.PlayerID,
			Attributes: state.Bundle.Attributes.Snapshot(),
		})
		if err := s.publisher.Publish(attrs); err != nil {
			log.Printf("[ReplicationPublishSystem] failed to publish attributes: %v", err)
			continue
		}

		pos, hasPos := ecs.GetComponent[*components.PositionComponent](s.entityManager, body)
		move, hasMove := ecs.GetComponent[*components.MovementComponent](s.entityManager, body)
		if !hasPos {
			continue
		}
		fact := replication.BodyStateFact{BodyNetID: netID, X: pos.X, Y: pos.Y}
		if hasMove {
			fact.Yaw = move.Yaw
		}
		if err := s.publisher.Publish(replication.NewBodyStateEnvelope(fact)); err != nil {
			log.Printf("[ReplicationPublishSystem] failed to publish body state: %v", err)
		}
	}
}

// replicatedBody 返回有归属、有复制标识的身体的 NetID 和玩家身份
func (s *ReplicationPublishSystem) replicatedBody(body ecs.EntityID) (uuid.UUID, *components.PlayerStateComponent, bool) {
	character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body)
	if !ok || character.PlayerStateEntity == ecs.InvalidEntity {
		return uuid.Nil, nil, false
	}
	identity, ok := ecs.GetComponent[*components.NetIdentityComponent](s.entityManager, body)
	if !ok {
		return uuid.Nil, nil, false
	}
	state, ok := ecs.GetComponent[*components.PlayerStateComponent](s.entityManager, character.PlayerStateEntity)
	if !ok || !state.Bundle.IsComplete() {
		return uuid.Nil, nil, false
	}
	return identity.NetID, state, true
}

// limiterFor 每个玩家一个限频器，突发为 1
func (s *ReplicationPublishSystem) limiterFor(state *components.PlayerStateComponent) *rate.Limiter {
	limiter, ok := s.limiters[state.PlayerID]
	if !ok {
		limit := rate.Inf
		if state.NetUpdateFrequency > 0 {
			limit = rate.Limit(state.NetUpdateFrequency)
		}
		limiter = rate.NewLimiter(limit, 1)
		s.limiters[state.PlayerID] = limiter
	}
	return limiter
}

// ReplicationReceiveSystem 观察端复制接收系统
//
// 每帧取空收件箱，把归属事实应用到本地镜像：确保玩家身份镜像（能力包副本
// 只在首次见到该玩家时创建）和身体镜像存在，写入身体的归属，
// 然后触发能力绑定的观察端入口。事实可以重复、可以迟到，应用是幂等的。
type ReplicationReceiveSystem struct {
	entityManager *ecs.EntityManager
	inbox         *replication.Inbox
	binding       *CapabilityBindingSystem
	registry      *EntityIdentityRegistry
	cfg           *config.AuraConfig

	bodies map[uuid.UUID]ecs.EntityID

	// Verbose 输出每条消息的日志
	Verbose bool
}

// NewReplicationReceiveSystem 创建复制接收系统
//
// 参数：
//   - em: 本上下文的实体管理器
//   - inbox: 复制通道收件箱
//   - binding: 能力绑定系统
//   - registry: 身份登记
//   - cfg: 创建镜像实体时使用的配置
func NewReplicationReceiveSystem(
	em *ecs.EntityManager,
	inbox *replication.Inbox,
	binding *CapabilityBindingSystem,
	registry *EntityIdentityRegistry,
	cfg *config.AuraConfig,
) *ReplicationReceiveSystem {
	return &ReplicationReceiveSystem{
		entityManager: em,
		inbox:         inbox,
		binding:       binding,
		registry:      registry,
		cfg:           cfg,
		bodies:        make(map[uuid.UUID]ecs.EntityID),
	}
}

// Update 应用本帧收到的所有消息
func (s *ReplicationReceiveSystem) Update(deltaTime float64) {
	if s.inbox == nil {
		return
	}
	for _, env := range s.inbox.Drain() {
		s.Apply(env)
	}
}

// Apply 应用一条消息
func (s *ReplicationReceiveSystem) Apply(env replication.Envelope) {
	if err := env.Validate(); err != nil {
		log.Printf("[ReplicationReceiveSystem] ignoring envelope %d: %v", env.Seq, err)
		return
	}
	if s.Verbose {
		log.Printf("[ReplicationReceiveSystem] applying %s #%d", env.Type, env.Seq)
	}

	switch env.Type {
	case replication.MsgOwnership:
		s.applyOwnership(env.Ownership)
	case replication.MsgAttributes:
		s.applyAttributes(env.Attributes)
	case replication.MsgBodyState:
		s.applyBodyState(env.BodyState)
	}
}

func (s *ReplicationReceiveSystem) applyOwnership(fact *replication.OwnershipFact) {
	playerEntity, ok := s.ensurePlayerState(fact)
	if !ok {
		return
	}
	body, ok := s.ensureBody(fact.BodyNetID, fact.X, fact.Y)
	if !ok {
		return
	}

	character, _ := ecs.GetComponent[*components.CharacterComponent](s.entityManager, body)
	character.PlayerStateEntity = playerEntity

	s.binding.OnPlayerStateReplicated(body)
}

// ensurePlayerState 找到或创建玩家身份镜像，并同步属性与能力
func (s *ReplicationReceiveSystem) ensurePlayerState(fact *replication.OwnershipFact) (ecs.EntityID, bool) {
	entity, found := s.registry.FindPlayerState(fact.PlayerID)
	if !found {
		stateCfg := s.cfg.PlayerState
		stateCfg.ReplicationMode = fact.ReplicationMode
		stateCfg.StartingAbilities = nil
		var err error
		entity, err = entities.NewPlayerStateEntity(s.entityManager, stateCfg, fact.PlayerID)
		if err != nil {
			log.Printf("[ReplicationReceiveSystem] cannot mirror player %s: %v", fact.PlayerID, err)
			return ecs.InvalidEntity, false
		}
	}

	state, _ := ecs.GetComponent[*components.PlayerStateComponent](s.entityManager, entity)
	state.Bundle.Attributes.Apply(fact.Attributes)
	for _, tag := range fact.Abilities {
		state.Bundle.AbilitySystem.GiveAbility(tag)
	}
	return entity, true
}

// ensureBody 找到或创建身体镜像
func (s *ReplicationReceiveSystem) ensureBody(netID uuid.UUID, x, y float64) (ecs.EntityID, bool) {
	if body, ok := s.findBody(netID); ok {
		return body, true
	}

	body, err := entities.NewCharacterEntity(s.entityManager, s.cfg.Character, netID, x, y)
	if err != nil {
		log.Printf("[ReplicationReceiveSystem] cannot mirror body %s: %v", netID, err)
		return ecs.InvalidEntity, false
	}
	s.bodies[netID] = body
	return body, true
}

// findBody 按 NetID 查找身体镜像
func (s *ReplicationReceiveSystem) findBody(netID uuid.UUID) (ecs.EntityID, bool) {
	if body, ok := s.bodies[netID]; ok && s.entityManager.Exists(body) {
		return body, true
	}
	for _, body := range ecs.GetEntitiesWith2[*components.CharacterComponent, *components.NetIdentityComponent](s.entityManager) {
		identity, _ := ecs.GetComponent[*components.NetIdentityComponent](s.entityManager, body)
		if identity.NetID == netID {
			s.bodies[netID] = body
			return body, true
		}
	}
	delete(s.bodies, netID)
	return ecs.InvalidEntity, false
}

func (s *ReplicationReceiveSystem) applyAttributes(fact *replication.AttributeFact) {
	entity, ok := s.registry.FindPlayerState(fact.PlayerID)
	if !ok {
		// 归属事实总是先于属性到达；找不到说明该玩家已不在本上下文
		return
	}
	state, _ := ecs.GetComponent[*components.PlayerStateComponent](s.entityManager, entity)
	state.Bundle.Attributes.Apply(fact.Attributes)
}

func (s *ReplicationReceiveSystem) applyBodyState(fact *replication.BodyStateFact) {
	body, ok := s.findBody(fact.BodyNetID)
	if !ok {
		return
	}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, body); ok {
		pos.X, pos.Y = fact.X, fact.Y
	}
	if move, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, body); ok {
		move.Yaw = fact.Yaw
	}
}

// MirroredAttributes 返回本地镜像中某玩家的属性集（测试与调试用）
func (s *ReplicationReceiveSystem) MirroredAttributes(playerID uuid.UUID) (*ability.AttributeSet, bool) {
	entity, ok := s.registry.FindPlayerState(playerID)
	if !ok {
		return nil, false
	}
	state, _ := ecs.GetComponent[*components.PlayerStateComponent](s.entityManager, entity)
	return state.Bundle.Attributes, true
}
