package components

import (
	"github.com/decker502/aura/pkg/ecs"
	"github.com/google/uuid"
)

// PlayerControllerComponent 玩家控制器
//
// 控制器只存在于权威端和本地玩家所在的上下文；观察端通过复制的
// 归属信息得知身体属于哪个玩家，而不是通过控制器。
type PlayerControllerComponent struct {
	// PlayerStateEntity 控制器对应的玩家身份
	PlayerStateEntity ecs.EntityID
	// PawnEntity 当前控制的身体，0 表示未控制
	PawnEntity ecs.EntityID
	// ControlYaw 视角朝向（度），移动输入以它为基准
	ControlYaw float64
	// IsLocal 是否由本地输入驱动（只有本地控制器运行光标追踪）
	IsLocal bool
}

// NetIdentityComponent 跨执行上下文的复制标识
// 各上下文的 EntityID 互不相关，复制通道用 NetID 定位同一个 Actor
type NetIdentityComponent struct {
	NetID uuid.UUID
}
