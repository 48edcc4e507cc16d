package systems

import (
	"testing"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/decker502/aura/pkg/entities"
	"github.com/decker502/aura/pkg/replication"
	"github.com/google/uuid"
)

// scriptedQuery 按脚本依次返回命中结果，脚本用完后返回"未命中"
type scriptedQuery struct {
	results []HitResult
	calls   int
}

func (q *scriptedQuery) QueryUnderPointer() HitResult {
	if q.calls >= len(q.results) {
		q.calls++
		return HitResult{}
	}
	r := q.results[q.calls]
	q.calls++
	return r
}

// hitEntity 命中指定实体
func hitEntity(id ecs.EntityID) HitResult {
	return HitResult{BlockingHit: true, Entity: id}
}

// hitNothing 命中了表面但不是对象
func hitNothing() HitResult {
	return HitResult{BlockingHit: true}
}

// miss 没有命中任何表面
func miss() HitResult {
	return HitResult{}
}

// countingTarget 记录高亮调用次数的 Targetable 组件
type countingTarget struct {
	name         string
	calls        *[]string
	highlights   int
	unhighlights int
}

func (c *countingTarget) Highlight() {
	c.highlights++
	if c.calls != nil {
		*c.calls = append(*c.calls, c.name+".highlight")
	}
}

func (c *countingTarget) Unhighlight() {
	c.unhighlights++
	if c.calls != nil {
		*c.calls = append(*c.calls, c.name+".unhighlight")
	}
}

// balance 高亮次数减去取消高亮次数
func (c *countingTarget) balance() int {
	return c.highlights - c.unhighlights
}

// createTestTarget 创建一个带计数 Targetable 组件的实体
func createTestTarget(em *ecs.EntityManager, name string, calls *[]string) (ecs.EntityID, *countingTarget) {
	id := em.CreateEntity()
	target := &countingTarget{name: name, calls: calls}
	em.AddComponent(id, &components.PositionComponent{})
	em.AddComponent(id, target)
	return id, target
}

// fixedPointer 固定位置的指针
type fixedPointer struct {
	x, y int
	ok   bool
}

func (p *fixedPointer) PointerPosition() (int, int, bool) {
	return p.x, p.y, p.ok
}

// fakeAxes 固定的移动输入
type fakeAxes struct {
	x, y float64
}

func (a *fakeAxes) Axes() (float64, float64) {
	return a.x, a.y
}

// recordingPublisher 记录发布的消息
type recordingPublisher struct {
	envelopes []replication.Envelope
	err       error
}

func (p *recordingPublisher) Publish(env replication.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *recordingPublisher) ofType(t replication.MessageType) []replication.Envelope {
	var result []replication.Envelope
	for _, env := range p.envelopes {
		if env.Type == t {
			result = append(result, env)
		}
	}
	return result
}

// testPlayer 权威端测试玩家
type testPlayer struct {
	state      ecs.EntityID
	controller ecs.EntityID
	body       ecs.EntityID
	playerID   uuid.UUID
}

// createTestPlayer 创建玩家身份、控制器和未被控制的身体
func createTestPlayer(t *testing.T, em *ecs.EntityManager) testPlayer {
	t.Helper()
	cfg := config.DefaultAuraConfig()

	playerID := uuid.New()
	state, err := entities.NewPlayerStateEntity(em, cfg.PlayerState, playerID)
	if err != nil {
		t.Fatalf("NewPlayerStateEntity() error: %v", err)
	}
	controller, err := entities.NewPlayerControllerEntity(em, state, true)
	if err != nil {
		t.Fatalf("NewPlayerControllerEntity() error: %v", err)
	}
	body, err := entities.NewCharacterEntity(em, cfg.Character, uuid.Nil, 100, 100)
	if err != nil {
		t.Fatalf("NewCharacterEntity() error: %v", err)
	}
	return testPlayer{state: state, controller: controller, body: body, playerID: playerID}
}

// expectPanic 断言 fn 发生 panic
func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic, got none", name)
		}
	}()
	fn()
}
