package systems

import (
	"math"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/ecs"
)

// AxisSource 二维移动输入来源
// x: 右为正，y: 前为正，取值范围 [-1, 1]
type AxisSource interface {
	Axes() (x, y float64)
}

// MovementSystem 本地控制器驱动身体移动
//
// 以控制器视角朝向的偏航角构造前/右基向量，把二维输入映射为平面速度。
// 只移动本地控制器控制的身体；观察端的身体位置来自复制。
type MovementSystem struct {
	entityManager *ecs.EntityManager
	axes          AxisSource
	worldWidth    float64
	worldHeight   float64
}

// NewMovementSystem 创建移动系统
func NewMovementSystem(em *ecs.EntityManager, axes AxisSource, worldWidth, worldHeight float64) *MovementSystem {
	return &MovementSystem{
		entityManager: em,
		axes:          axes,
		worldWidth:    worldWidth,
		worldHeight:   worldHeight,
	}
}

// Update 更新本地控制的身体位置
func (s *MovementSystem) Update(deltaTime float64) {
	if s.axes == nil {
		return
	}
	axisX, axisY := s.axes.Axes()

	for _, controller := range ecs.GetEntitiesWith1[*components.PlayerControllerComponent](s.entityManager) {
		ctrl, _ := ecs.GetComponent[*components.PlayerControllerComponent](s.entityManager, controller)
		if !ctrl.IsLocal || ctrl.PawnEntity == ecs.InvalidEntity {
			continue
		}
		pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, ctrl.PawnEntity)
		if !ok {
			continue
		}
		move, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, ctrl.PawnEntity)
		if !ok {
			continue
		}

		forwardX, forwardY, rightX, rightY := BasisFromYaw(ctrl.ControlYaw)
		vx := forwardX*axisY + rightX*axisX
		vy := forwardY*axisY + rightY*axisX

		// 斜向输入不叠加速度
		if length := math.Hypot(vx, vy); length > 1 {
			vx /= length
			vy /= length
		}
		move.VelocityX = vx * move.Speed
		move.VelocityY = vy * move.Speed

		pos.X += move.VelocityX * deltaTime
		pos.Y += move.VelocityY * deltaTime
		if move.ConstrainToPlane {
			pos.X = math.Max(0, math.Min(s.worldWidth, pos.X))
			pos.Y = math.Max(0, math.Min(s.worldHeight, pos.Y))
		}

		if move.OrientRotationToMovement && (vx != 0 || vy != 0) {
			desired := math.Atan2(vy, vx) * 180 / math.Pi
			move.Yaw = RotateTowards(move.Yaw, desired, move.RotationRate*deltaTime)
		}
	}
}

// BasisFromYaw 返回偏航角（度）对应的前向和右向单位向量（屏幕坐标系，Y 向下）
func BasisFromYaw(yaw float64) (forwardX, forwardY, rightX, rightY float64) {
	rad := yaw * math.Pi / 180
	forwardX, forwardY = math.Cos(rad), math.Sin(rad)
	rightX, rightY = -forwardY, forwardX
	return
}

// RotateTowards 从 current 向 target 旋转，最多 maxDelta 度，走最短方向
func RotateTowards(current, target, maxDelta float64) float64 {
	delta := math.Mod(target-current+540, 360) - 180
	if math.Abs(delta) <= maxDelta {
		return normalizeAngle(target)
	}
	if delta > 0 {
		return normalizeAngle(current + maxDelta)
	}
	return normalizeAngle(current - maxDelta)
}

// normalizeAngle 把角度规范到 (-180, 180]
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
