package systems

import (
	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
)

// HitResult 光标射线检测结果
//
// BlockingHit 为 false 表示射线没有击中任何表面（如光标在世界之外），
// 这与"击中了地面但地面不是对象"（BlockingHit=true, Entity=0）是不同的输入。
type HitResult struct {
	BlockingHit bool
	Entity      ecs.EntityID
	// X, Y 命中点世界坐标
	X float64
	Y float64
}

// SpatialQuery 光标下的空间查询，每帧调用一次
type SpatialQuery interface {
	QueryUnderPointer() HitResult
}

// PointerSource 指针位置来源（屏幕坐标）
// ok 为 false 表示当前没有可用的指针
type PointerSource interface {
	PointerPosition() (x, y int, ok bool)
}

// CursorSpatialQuery 基于碰撞盒的光标空间查询
//
// 把屏幕坐标加上摄像机偏移换算为世界坐标，然后在可见性通道上
// 查找包含该点的实体。多个实体重叠时选择最靠前的（Y 最大，其次 ID 最大），
// 与 RenderSystem 的绘制顺序一致。
type CursorSpatialQuery struct {
	entityManager *ecs.EntityManager
	pointer       PointerSource
	worldWidth    float64
	worldHeight   float64

	// CameraX, CameraY 摄像机偏移（世界坐标 = 屏幕坐标 + 偏移）
	CameraX float64
	CameraY float64
}

// NewCursorSpatialQuery 创建光标空间查询
//
// 参数：
//   - em: 实体管理器
//   - pointer: 指针位置来源
//   - worldWidth, worldHeight: 世界边界，边界外视为没有击中任何表面
func NewCursorSpatialQuery(em *ecs.EntityManager, pointer PointerSource, worldWidth, worldHeight float64) *CursorSpatialQuery {
	return &CursorSpatialQuery{
		entityManager: em,
		pointer:       pointer,
		worldWidth:    worldWidth,
		worldHeight:   worldHeight,
	}
}

// QueryUnderPointer 实现 SpatialQuery
func (q *CursorSpatialQuery) QueryUnderPointer() HitResult {
	if q.pointer == nil {
		return HitResult{}
	}
	screenX, screenY, ok := q.pointer.PointerPosition()
	if !ok {
		return HitResult{}
	}

	worldX := float64(screenX) + q.CameraX
	worldY := float64(screenY) + q.CameraY
	if worldX < 0 || worldY < 0 || worldX > q.worldWidth || worldY > q.worldHeight {
		return HitResult{}
	}

	return HitResult{
		BlockingHit: true,
		Entity:      q.entityAt(worldX, worldY),
		X:           worldX,
		Y:           worldY,
	}
}

// entityAt 返回包含世界坐标点的最靠前实体，没有时返回 0
func (q *CursorSpatialQuery) entityAt(worldX, worldY float64) ecs.EntityID {
	best := ecs.InvalidEntity
	bestY := 0.0

	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.CollisionComponent](q.entityManager)
	for _, entity := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](q.entityManager, entity)
		box, _ := ecs.GetComponent[*components.CollisionComponent](q.entityManager, entity)
		if !box.BlocksVisibility || !box.Contains(pos, worldX, worldY) {
			continue
		}
		// 实体按ID升序遍历，Y 相同时后者（ID 更大）胜出
		if best == ecs.InvalidEntity || pos.Y >= bestY {
			best = entity
			bestY = pos.Y
		}
	}

	return best
}
