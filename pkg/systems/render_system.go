package systems

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	enemyFillColor     = color.RGBA{R: 90, G: 140, B: 90, A: 255}
	characterFillColor = color.RGBA{R: 70, G: 110, B: 200, A: 255}
	unboundFillColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	headingColor       = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	backgroundColor    = color.RGBA{R: 24, G: 26, B: 30, A: 255}
)

// RenderSystem 以矩形绘制世界中的实体
//
// 绘制顺序与 CursorSpatialQuery 选择最靠前实体的规则一致：
// 按 Y 升序，Y 相同按 ID 升序，后绘制的在上层。
// 敌人在悬停高亮激活时额外绘制描边。
type RenderSystem struct {
	entityManager *ecs.EntityManager

	// ShowDebug 在左上角显示调试信息
	ShowDebug bool
	// DebugText 附加的调试信息（由 World 每帧写入）
	DebugText string

	// CameraX, CameraY 摄像机偏移
	CameraX float64
	CameraY float64
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{entityManager: em}
}

// Draw 绘制所有拥有位置和碰撞盒的实体
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	for _, id := range s.drawOrder() {
		s.drawEntity(screen, id)
	}

	if s.ShowDebug {
		ebitenutil.DebugPrintAt(screen, s.DebugText, 10, 10)
	}
}

// drawOrder 返回从底到顶的绘制顺序
func (s *RenderSystem) drawOrder() []ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.PositionComponent, *components.CollisionComponent](s.entityManager)
	sort.SliceStable(ids, func(i, j int) bool {
		pi, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, ids[i])
		pj, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, ids[j])
		if pi.Y != pj.Y {
			return pi.Y < pj.Y
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (s *RenderSystem) drawEntity(screen *ebiten.Image, id ecs.EntityID) {
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	box, _ := ecs.GetComponent[*components.CollisionComponent](s.entityManager, id)

	left, top := box.Bounds(pos)
	x := float32(left - s.CameraX)
	y := float32(top - s.CameraY)
	w := float32(box.Width)
	h := float32(box.Height)

	fill := unboundFillColor
	if character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, id); ok {
		if character.IsBound() {
			fill = characterFillColor
		}
		vector.DrawFilledRect(screen, x, y, w, h, fill, false)
		s.drawHeading(screen, pos, id)
		return
	}

	if _, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, id); ok {
		fill = enemyFillColor
	}

	highlight, hasHighlight := ecs.GetComponent[*components.HoverHighlightComponent](s.entityManager, id)
	if hasHighlight && highlight.IsActive {
		fill = brighten(fill, highlight.Intensity)
	}
	vector.DrawFilledRect(screen, x, y, w, h, fill, false)

	if hasHighlight && highlight.IsActive {
		vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 3, highlight.Outline, false)
	}
}

// drawHeading 绘制身体朝向指示线
func (s *RenderSystem) drawHeading(screen *ebiten.Image, pos *components.PositionComponent, id ecs.EntityID) {
	move, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, id)
	if !ok {
		return
	}
	rad := move.Yaw * math.Pi / 180
	cx := float32(pos.X - s.CameraX)
	cy := float32(pos.Y - s.CameraY)
	vector.StrokeLine(screen, cx, cy, cx+float32(math.Cos(rad)*24), cy+float32(math.Sin(rad)*24), 2, headingColor, false)
}

// brighten 按强度向白色插值
func brighten(c color.RGBA, intensity float64) color.RGBA {
	if intensity <= 0 {
		return c
	}
	if intensity > 1 {
		intensity = 1
	}
	lerp := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*intensity)
	}
	return color.RGBA{R: lerp(c.R), G: lerp(c.G), B: lerp(c.B), A: c.A}
}

// DebugSummary 生成调试信息文本
func DebugSummary(role string, hovered ecs.EntityID, binds int, entityCount int) string {
	return fmt.Sprintf("role: %s\nhovered: %d\nbinds: %d\nentities: %d", role, hovered, binds, entityCount)
}
