package ability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/decker502/aura/pkg/ecs"
)

// ReplicationMode 能力系统的复制模式
type ReplicationMode int

const (
	// ReplicationFull 所有游戏效果复制给所有客户端
	ReplicationFull ReplicationMode = iota
	// ReplicationMixed 游戏效果只复制给拥有者，属性和标签复制给所有客户端（玩家默认）
	ReplicationMixed
	// ReplicationMinimal 只复制属性和标签（AI 控制的角色使用）
	ReplicationMinimal
)

// String 返回复制模式名称
func (m ReplicationMode) String() string {
	switch m {
	case ReplicationFull:
		return "full"
	case ReplicationMixed:
		return "mixed"
	case ReplicationMinimal:
		return "minimal"
	default:
		return fmt.Sprintf("ReplicationMode(%d)", int(m))
	}
}

// ParseReplicationMode 解析配置中的复制模式名称（大小写不敏感）
func ParseReplicationMode(name string) (ReplicationMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "full":
		return ReplicationFull, nil
	case "mixed", "":
		return ReplicationMixed, nil
	case "minimal":
		return ReplicationMinimal, nil
	default:
		return ReplicationMixed, fmt.Errorf("unknown replication mode %q", name)
	}
}

// ActorInfo 能力系统的 Actor 信息
//
// OwnerActor 是逻辑上拥有能力系统的实体（玩家身份 PlayerState），
// AvatarActor 是能力在世界中作用的实体（当前控制的角色身体）。
type ActorInfo struct {
	OwnerActor  ecs.EntityID
	AvatarActor ecs.EntityID
}

// AbilitySystemComponent 能力处理单元
//
// 由玩家身份持有，生命周期与身份相同。角色身体只保存对它的非拥有引用。
type AbilitySystemComponent struct {
	// Replicated 是否参与网络复制
	Replicated bool
	// Mode 复制模式
	Mode ReplicationMode

	actorInfo ActorInfo
	// initCount InitAbilityActorInfo 被调用次数（诊断用）
	initCount int
	abilities map[string]struct{}
}

// NewAbilitySystemComponent 创建能力处理单元
func NewAbilitySystemComponent(mode ReplicationMode) *AbilitySystemComponent {
	return &AbilitySystemComponent{
		Replicated: true,
		Mode:       mode,
		abilities:  make(map[string]struct{}),
	}
}

// InitAbilityActorInfo 设置 Owner/Avatar
//
// 直接覆盖旧值：对同一 (owner, avatar) 重复调用结果与调用一次相同，
// 换到新身体时旧的 Avatar 被替换。
func (asc *AbilitySystemComponent) InitAbilityActorInfo(owner, avatar ecs.EntityID) {
	asc.actorInfo = ActorInfo{OwnerActor: owner, AvatarActor: avatar}
	asc.initCount++
}

// ActorInfo 返回当前 Actor 信息
func (asc *AbilitySystemComponent) ActorInfo() ActorInfo {
	return asc.actorInfo
}

// IsInitialized 是否已设置过 Avatar
func (asc *AbilitySystemComponent) IsInitialized() bool {
	return asc.actorInfo.AvatarActor != ecs.InvalidEntity
}

// InitCount 返回 InitAbilityActorInfo 调用次数
func (asc *AbilitySystemComponent) InitCount() int {
	return asc.initCount
}

// GiveAbility 授予能力（按标签去重）
func (asc *AbilitySystemComponent) GiveAbility(tag string) {
	if asc.abilities == nil {
		asc.abilities = make(map[string]struct{})
	}
	asc.abilities[tag] = struct{}{}
}

// HasAbility 是否拥有某个能力
func (asc *AbilitySystemComponent) HasAbility(tag string) bool {
	_, ok := asc.abilities[tag]
	return ok
}

// Abilities 返回已授予能力的标签（升序）
func (asc *AbilitySystemComponent) Abilities() []string {
	tags := make([]string, 0, len(asc.abilities))
	for tag := range asc.abilities {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
