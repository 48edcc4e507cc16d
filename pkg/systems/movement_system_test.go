package systems

import (
	"math"
	"testing"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// createTestMovement 创建已被本地控制器接管的身体和移动系统
func createTestMovement(t *testing.T, axes *fakeAxes) (*ecs.EntityManager, testPlayer, *MovementSystem) {
	t.Helper()
	em := ecs.NewEntityManager()
	player := createTestPlayer(t, em)
	controllers, _, _ := createTestControllerSystem(em)
	if err := controllers.Possess(player.controller, player.body); err != nil {
		t.Fatalf("Possess() error: %v", err)
	}
	return em, player, NewMovementSystem(em, axes, 1280, 720)
}

// TestBasisFromYaw 测试偏航角到基向量
func TestBasisFromYaw(t *testing.T) {
	fx, fy, rx, ry := BasisFromYaw(-90)
	if !almostEqual(fx, 0) || !almostEqual(fy, -1) {
		t.Errorf("forward = (%v, %v), want (0, -1)", fx, fy)
	}
	if !almostEqual(rx, 1) || !almostEqual(ry, 0) {
		t.Errorf("right = (%v, %v), want (1, 0)", rx, ry)
	}
}

// TestMovementForward 测试前进输入沿控制器朝向移动
func TestMovementForward(t *testing.T) {
	em, player, system := createTestMovement(t, &fakeAxes{y: 1})
	system.Update(0.5)

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, player.body)
	// 默认速度 200，朝向屏幕上方
	if !almostEqual(pos.X, 100) || !almostEqual(pos.Y, 0) {
		t.Errorf("position = (%v, %v), want (100, 0)", pos.X, pos.Y)
	}
}

// TestMovementDiagonalNormalized 测试斜向输入不超过最大速度
func TestMovementDiagonalNormalized(t *testing.T) {
	em, player, system := createTestMovement(t, &fakeAxes{x: 1, y: 1})
	system.Update(0.1)

	move, _ := ecs.GetComponent[*components.MovementComponent](em, player.body)
	speed := math.Hypot(move.VelocityX, move.VelocityY)
	if !almostEqual(speed, move.Speed) {
		t.Errorf("speed = %v, want %v", speed, move.Speed)
	}
}

// TestMovementConstrainedToWorld 测试身体不会离开世界
func TestMovementConstrainedToWorld(t *testing.T) {
	em, player, system := createTestMovement(t, &fakeAxes{x: -1})
	for i := 0; i < 100; i++ {
		system.Update(0.1)
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, player.body)
	if pos.X != 0 {
		t.Errorf("X = %v, want clamped to 0", pos.X)
	}
}

// TestMovementOrientsToMovement 测试身体转向移动方向
func TestMovementOrientsToMovement(t *testing.T) {
	em, player, system := createTestMovement(t, &fakeAxes{x: 1})
	move, _ := ecs.GetComponent[*components.MovementComponent](em, player.body)

	system.Update(0.1) // 最多转 40 度
	if !almostEqual(move.Yaw, -50) {
		t.Errorf("Yaw after one step = %v, want -50", move.Yaw)
	}
	system.Update(1)
	if !almostEqual(move.Yaw, 0) {
		t.Errorf("Yaw = %v, want 0", move.Yaw)
	}
}

// TestMovementIgnoresRemoteControllers 测试非本地控制器的身体不受本地输入影响
func TestMovementIgnoresRemoteControllers(t *testing.T) {
	em, player, system := createTestMovement(t, &fakeAxes{y: 1})
	ctrl, _ := ecs.GetComponent[*components.PlayerControllerComponent](em, player.controller)
	ctrl.IsLocal = false

	system.Update(1)
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, player.body)
	if pos.X != 100 || pos.Y != 100 {
		t.Errorf("remote body moved to (%v, %v)", pos.X, pos.Y)
	}
}

// TestRotateTowards 测试最短方向旋转
func TestRotateTowards(t *testing.T) {
	tests := []struct {
		current, target, maxDelta, want float64
	}{
		{0, 90, 45, 45},
		{0, 90, 180, 90},
		{170, -170, 10, 180},
		{-170, 170, 5, -175},
		{0, 0, 10, 0},
	}
	for _, tt := range tests {
		if got := RotateTowards(tt.current, tt.target, tt.maxDelta); math.Abs(got-tt.want) > epsilon {
			t.Errorf("RotateTowards(%v, %v, %v) = %v, want %v", tt.current, tt.target, tt.maxDelta, got, tt.want)
		}
	}
}
