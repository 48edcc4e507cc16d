package entities

import (
	"testing"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
)

// TestNewEnemyEntity 测试敌人实体创建
func TestNewEnemyEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultAuraConfig().Highlight

	id, err := NewEnemyEntity(em, cfg, "Goblin", 100, 200)
	if err != nil {
		t.Fatalf("NewEnemyEntity() error: %v", err)
	}

	enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !ok {
		t.Fatal("EnemyComponent missing")
	}
	effect, ok := ecs.GetComponent[*components.HoverHighlightComponent](em, id)
	if !ok {
		t.Fatal("HoverHighlightComponent missing")
	}
	if enemy.HoverEffect != effect {
		t.Error("enemy should drive the entity's own hover effect")
	}
	if effect.IsActive {
		t.Error("new enemy should not be highlighted")
	}
	if effect.Outline != cfg.OutlineRGBA() {
		t.Errorf("Outline = %v, want %v", effect.Outline, cfg.OutlineRGBA())
	}

	target, ok := ecs.GetCapability[components.Targetable](em, id)
	if !ok {
		t.Fatal("enemy should be Targetable")
	}
	target.Highlight()
	if !effect.IsActive || enemy.CustomDepthStencil != cfg.StencilValue {
		t.Error("Highlight() through the capability should activate the effect")
	}
}

// TestNewEnemyEntityNilManager 测试空实体管理器
func TestNewEnemyEntityNilManager(t *testing.T) {
	if _, err := NewEnemyEntity(nil, config.HighlightConfig{}, "x", 0, 0); err == nil {
		t.Error("expected error for nil entity manager")
	}
}

// TestSpawnEnemyRow 测试横向均匀排列
func TestSpawnEnemyRow(t *testing.T) {
	em := ecs.NewEntityManager()
	ids, err := SpawnEnemyRow(em, config.DefaultAuraConfig().Highlight, 3, 400, 50)
	if err != nil {
		t.Fatalf("SpawnEnemyRow() error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}

	wantX := []float64{100, 200, 300}
	for i, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if pos.X != wantX[i] || pos.Y != 50 {
			t.Errorf("enemy %d at (%v, %v), want (%v, 50)", i, pos.X, pos.Y, wantX[i])
		}
	}

	// 相同参数得到相同布局
	other := ecs.NewEntityManager()
	otherIDs, _ := SpawnEnemyRow(other, config.DefaultAuraConfig().Highlight, 3, 400, 50)
	for i := range ids {
		if ids[i] != otherIDs[i] {
			t.Errorf("entity ids differ between contexts: %d vs %d", ids[i], otherIDs[i])
		}
	}
}
