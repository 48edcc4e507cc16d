package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/decker502/aura/pkg/ability"
	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/decker502/aura/pkg/entities"
	"github.com/decker502/aura/pkg/replication"
	"github.com/google/uuid"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// createTestAuthority 创建已接管身体的权威端
func createTestAuthority(t *testing.T) (*ecs.EntityManager, testPlayer, *ReplicationPublishSystem, *recordingPublisher, *fakeClock) {
	t.Helper()
	em := ecs.NewEntityManager()
	player := createTestPlayer(t, em)

	publisher := &recordingPublisher{}
	publish := NewReplicationPublishSystem(em, publisher)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	publish.now = clock.now

	binding := NewCapabilityBindingSystem(em, NewEntityIdentityRegistry(em))
	controllers := NewControllerSystem(em, binding)
	controllers.AddListener(publish)
	if err := controllers.Possess(player.controller, player.body); err != nil {
		t.Fatalf("Possess() error: %v", err)
	}
	return em, player, publish, publisher, clock
}

// createTestObserver 创建观察端接收系统
func createTestObserver() (*ecs.EntityManager, *ReplicationReceiveSystem, *CapabilityBindingSystem) {
	em := ecs.NewEntityManager()
	inbox := replication.NewInbox()
	registry := NewEntityIdentityRegistry(em)
	binding := NewCapabilityBindingSystem(em, registry)
	return em, NewReplicationReceiveSystem(em, inbox, binding, registry, config.DefaultAuraConfig()), binding
}

// TestPublishOwnershipOnPossession 测试接管时立即发布归属事实
func TestPublishOwnershipOnPossession(t *testing.T) {
	em, player, _, publisher, _ := createTestAuthority(t)

	ownership := publisher.ofType(replication.MsgOwnership)
	if len(ownership) != 1 {
		t.Fatalf("ownership envelopes = %d, want 1", len(ownership))
	}
	fact := ownership[0].Ownership
	netID, _ := ecs.GetComponent[*components.NetIdentityComponent](em, player.body)
	if fact.PlayerID != player.playerID || fact.BodyNetID != netID.NetID {
		t.Errorf("fact = %+v", fact)
	}
	if fact.ReplicationMode != "mixed" {
		t.Errorf("ReplicationMode = %q, want mixed", fact.ReplicationMode)
	}
	if fact.X != 100 || fact.Y != 100 {
		t.Errorf("position = (%v, %v), want (100, 100)", fact.X, fact.Y)
	}
}

// TestPublishRateLimited 测试属性按 NetUpdateFrequency 限频
func TestPublishRateLimited(t *testing.T) {
	em, player, publish, publisher, clock := createTestAuthority(t)
	state, _ := ecs.GetComponent[*components.PlayerStateComponent](em, player.state)
	state.NetUpdateFrequency = 10 // 每 100ms 一次

	publish.Update(0.016)
	publish.Update(0.016) // 同一时刻，被限频
	if n := len(publisher.ofType(replication.MsgAttributes)); n != 1 {
		t.Fatalf("attributes after burst = %d, want 1", n)
	}

	clock.advance(50 * time.Millisecond)
	publish.Update(0.016)
	if n := len(publisher.ofType(replication.MsgAttributes)); n != 1 {
		t.Errorf("attributes after 50ms = %d, want 1", n)
	}

	clock.advance(60 * time.Millisecond)
	publish.Update(0.016)
	if n := len(publisher.ofType(replication.MsgAttributes)); n != 2 {
		t.Errorf("attributes after 110ms = %d, want 2", n)
	}
	if n := len(publisher.ofType(replication.MsgBodyState)); n != 2 {
		t.Errorf("body states = %d, want 2", n)
	}
}

// TestPublishFollowsRepossessedBody 测试换身体后身体状态跟随新身体发布
func TestPublishFollowsRepossessedBody(t *testing.T) {
	em := ecs.NewEntityManager()
	player := createTestPlayer(t, em)
	state, _ := ecs.GetComponent[*components.PlayerStateComponent](em, player.state)
	state.NetUpdateFrequency = 20 // 每 50ms 一次

	publisher := &recordingPublisher{}
	publish := NewReplicationPublishSystem(em, publisher)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	publish.now = clock.now

	controllers := NewControllerSystem(em, NewCapabilityBindingSystem(em, NewEntityIdentityRegistry(em)))
	controllers.AddListener(publish)
	if err := controllers.Possess(player.controller, player.body); err != nil {
		t.Fatalf("Possess(body1) error: %v", err)
	}
	body2, err := entities.NewCharacterEntity(em, config.DefaultAuraConfig().Character, uuid.Nil, 300, 200)
	if err != nil {
		t.Fatalf("NewCharacterEntity() error: %v", err)
	}
	if err := controllers.Possess(player.controller, body2); err != nil {
		t.Fatalf("Possess(body2) error: %v", err)
	}

	const steps = 20
	for i := 0; i < steps; i++ {
		publish.Update(0.05)
		clock.advance(60 * time.Millisecond)
	}

	oldNetID, _ := ecs.GetComponent[*components.NetIdentityComponent](em, player.body)
	newNetID, _ := ecs.GetComponent[*components.NetIdentityComponent](em, body2)
	forNew := 0
	for _, env := range publisher.ofType(replication.MsgBodyState) {
		switch env.BodyState.BodyNetID {
		case newNetID.NetID:
			forNew++
		case oldNetID.NetID:
			t.Errorf("released body %d still publishes body state", player.body)
		}
	}
	if forNew != steps {
		t.Errorf("body states for possessed body = %d, want %d", forNew, steps)
	}
	if n := len(publisher.ofType(replication.MsgAttributes)); n != steps {
		t.Errorf("attributes = %d, want %d (once per player per allowed step)", n, steps)
	}
}

// TestPublishSkipsUnownedBodies 测试没有归属的身体不发布
func TestPublishSkipsUnownedBodies(t *testing.T) {
	em := ecs.NewEntityManager()
	createTestPlayer(t, em)
	publisher := &recordingPublisher{}
	NewReplicationPublishSystem(em, publisher).Update(0.016)

	if len(publisher.envelopes) != 0 {
		t.Errorf("published %d envelopes for an unowned body", len(publisher.envelopes))
	}
}

// TestPublishErrorIsNotFatal 测试发布失败只记录日志
func TestPublishErrorIsNotFatal(t *testing.T) {
	_, player, publish, publisher, _ := createTestAuthority(t)
	publisher.err = errors.New("channel closed")

	publish.Update(0.016)
	publish.PublishOwnership(player.body)
}

// TestReceiveOwnershipBindsMirror 测试观察端收到归属事实后创建镜像并绑定
func TestReceiveOwnershipBindsMirror(t *testing.T) {
	_, player, publish, publisher, _ := createTestAuthority(t)
	publish.Update(0.016)

	em, receive, binding := createTestObserver()
	for _, env := range publisher.envelopes {
		receive.Apply(env)
	}

	stateEntity, ok := receive.registry.FindPlayerState(player.playerID)
	if !ok {
		t.Fatal("player state not mirrored")
	}
	bodies := ecs.GetEntitiesWith1[*components.CharacterComponent](em)
	if len(bodies) != 1 {
		t.Fatalf("body mirrors = %d, want 1", len(bodies))
	}
	character, _ := ecs.GetComponent[*components.CharacterComponent](em, bodies[0])
	if character.PlayerStateEntity != stateEntity || !character.IsBound() {
		t.Errorf("mirror body not bound: %+v", character)
	}
	if character.ControllerEntity != ecs.InvalidEntity {
		t.Error("observer bodies have no controller")
	}
	if binding.BindCount() != 1 {
		t.Errorf("BindCount() = %d, want 1", binding.BindCount())
	}
}

// TestReceiveOutOfOrder 测试先收到属性和身体状态、后收到归属事实
func TestReceiveOutOfOrder(t *testing.T) {
	em, receive, _ := createTestObserver()
	playerID, bodyID := uuid.New(), uuid.New()

	receive.Apply(replication.NewAttributeEnvelope(replication.AttributeFact{PlayerID: playerID}))
	receive.Apply(replication.NewBodyStateEnvelope(replication.BodyStateFact{BodyNetID: bodyID, X: 5}))
	if em.EntityCount() != 0 {
		t.Fatalf("facts for unknown entities should be ignored, got %d entities", em.EntityCount())
	}

	ownership := replication.NewOwnershipEnvelope(replication.OwnershipFact{
		BodyNetID: bodyID,
		PlayerID:  playerID,
		X:         10,
		Y:         20,
	})
	receive.Apply(ownership)
	receive.Apply(ownership)

	if n := len(ecs.GetEntitiesWith1[*components.PlayerStateComponent](em)); n != 1 {
		t.Errorf("player state mirrors = %d, want 1", n)
	}
	if n := len(ecs.GetEntitiesWith1[*components.CharacterComponent](em)); n != 1 {
		t.Errorf("body mirrors = %d, want 1", n)
	}
}

// TestReceiveAppliesAttributesAndBodyState 测试经 LocalHub 投递的属性与身体状态更新到已有镜像
func TestReceiveAppliesAttributesAndBodyState(t *testing.T) {
	hub := replication.NewLocalHub()
	defer hub.Close()
	inbox, err := hub.Join()
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	em := ecs.NewEntityManager()
	registry := NewEntityIdentityRegistry(em)
	binding := NewCapabilityBindingSystem(em, registry)
	receive := NewReplicationReceiveSystem(em, inbox, binding, registry, config.DefaultAuraConfig())

	playerID, bodyID := uuid.New(), uuid.New()
	hub.Publish(replication.NewOwnershipEnvelope(replication.OwnershipFact{BodyNetID: bodyID, PlayerID: playerID}))
	hub.Publish(replication.NewAttributeEnvelope(replication.AttributeFact{
		PlayerID:   playerID,
		Attributes: ability.AttributeSnapshot{Health: 30, MaxHealth: 100, Mana: 5, MaxMana: 50},
	}))
	hub.Publish(replication.NewBodyStateEnvelope(replication.BodyStateFact{BodyNetID: bodyID, X: 64, Y: 32, Yaw: 45}))
	receive.Update(0.016)

	if inbox.Len() != 0 {
		t.Errorf("inbox not drained: %d left", inbox.Len())
	}
	attrs, ok := receive.MirroredAttributes(playerID)
	if !ok {
		t.Fatal("attributes not mirrored")
	}
	if attrs.Health != 30 || attrs.Mana != 5 {
		t.Errorf("attributes = %+v", attrs.Snapshot())
	}
	body, ok := receive.findBody(bodyID)
	if !ok {
		t.Fatal("body not mirrored")
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, body)
	move, _ := ecs.GetComponent[*components.MovementComponent](em, body)
	if pos.X != 64 || pos.Y != 32 || move.Yaw != 45 {
		t.Errorf("body state = (%v, %v, %v)", pos.X, pos.Y, move.Yaw)
	}
}

// TestReceiveIgnoresInvalidEnvelope 测试非法消息被忽略
func TestReceiveIgnoresInvalidEnvelope(t *testing.T) {
	em, receive, binding := createTestObserver()
	receive.Apply(replication.Envelope{Type: replication.MsgOwnership})
	receive.Apply(replication.Envelope{Type: "bogus"})

	if em.EntityCount() != 0 || binding.BindCount() != 0 {
		t.Error("invalid envelopes must not create entities or bind")
	}
}
