package entities

import (
	"fmt"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
)

// 敌人碰撞盒尺寸（像素）
const (
	enemyWidth  = 48.0
	enemyHeight = 56.0
)

// NewEnemyEntity 创建可被光标高亮的敌人
//
// 参数:
//   - em: 实体管理器
//   - cfg: 高亮配置（强度、模板值、描边颜色）
//   - name: 敌人名称
//   - x, y: 世界坐标
func NewEnemyEntity(em *ecs.EntityManager, cfg config.HighlightConfig, name string, x, y float64) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}

	effect := &components.HoverHighlightComponent{
		Intensity: cfg.Intensity,
		Outline:   cfg.OutlineRGBA(),
	}

	entityID := em.CreateEntity()
	em.AddComponent(entityID, &components.PositionComponent{X: x, Y: y})
	em.AddComponent(entityID, &components.CollisionComponent{
		Width:            enemyWidth,
		Height:           enemyHeight,
		BlocksVisibility: true,
	})
	em.AddComponent(entityID, effect)
	em.AddComponent(entityID, &components.EnemyComponent{
		Name:         name,
		StencilValue: cfg.StencilValue,
		HoverEffect:  effect,
	})

	return entityID, nil
}

// SpawnEnemyRow 在世界中横向均匀排列 count 个敌人
// 各上下文用相同参数调用会得到相同布局
func SpawnEnemyRow(em *ecs.EntityManager, cfg config.HighlightConfig, count int, worldWidth, y float64) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, count)
	spacing := worldWidth / float64(count+1)
	for i := 0; i < count; i++ {
		id, err := NewEnemyEntity(em, cfg, fmt.Sprintf("Goblin_%d", i+1), spacing*float64(i+1), y)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
