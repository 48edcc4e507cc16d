// Package replication 把权威端的归属与属性事实投递到观察端。
//
// 通道只保证"同一个发布者发出的消息按顺序到达每个订阅者"，
// 不保证各订阅者何时收到。观察端依靠幂等应用收敛到同一状态。
package replication

import (
	"errors"

	"github.com/decker502/aura/pkg/ability"
	"github.com/google/uuid"
)

// MessageType 消息类型
type MessageType string

const (
	// MsgOwnership 身体归属：哪个玩家身份拥有哪个身体（可靠，保留给迟到的订阅者）
	MsgOwnership MessageType = "ownership"
	// MsgAttributes 属性快照（按 NetUpdateFrequency 限频）
	MsgAttributes MessageType = "attributes"
	// MsgBodyState 身体位置与朝向（按 NetUpdateFrequency 限频）
	MsgBodyState MessageType = "body_state"
)

// ErrChannelClosed 通道已关闭
var ErrChannelClosed = errors.New("replication channel closed")

// OwnershipFact 身体归属事实
type OwnershipFact struct {
	BodyNetID       uuid.UUID                 `json:"bodyNetId"`
	PlayerID        uuid.UUID                 `json:"playerId"`
	ReplicationMode string                    `json:"replicationMode"`
	Attributes      ability.AttributeSnapshot `json:"attributes"`
	Abilities       []string                  `json:"abilities,omitempty"`
	X               float64                   `json:"x"`
	Y               float64                   `json:"y"`
}

// AttributeFact 玩家属性快照
type AttributeFact struct {
	PlayerID   uuid.UUID                 `json:"playerId"`
	Attributes ability.AttributeSnapshot `json:"attributes"`
}

// BodyStateFact 身体运动状态
type BodyStateFact struct {
	BodyNetID uuid.UUID `json:"bodyNetId"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Yaw       float64   `json:"yaw"`
}

// Envelope 通道上传输的消息
type Envelope struct {
	Type       MessageType    `json:"type"`
	Seq        uint64         `json:"seq"`
	Ownership  *OwnershipFact `json:"ownership,omitempty"`
	Attributes *AttributeFact `json:"attributes,omitempty"`
	BodyState  *BodyStateFact `json:"bodyState,omitempty"`
}

// NewOwnershipEnvelope 创建归属消息
func NewOwnershipEnvelope(fact OwnershipFact) Envelope {
	return Envelope{Type: MsgOwnership, Ownership: &fact}
}

// NewAttributeEnvelope 创建属性消息
func NewAttributeEnvelope(fact AttributeFact) Envelope {
	return Envelope{Type: MsgAttributes, Attributes: &fact}
}

// NewBodyStateEnvelope 创建身体状态消息
func NewBodyStateEnvelope(fact BodyStateFact) Envelope {
	return Envelope{Type: MsgBodyState, BodyState: &fact}
}

// Validate 检查消息类型与负载是否匹配
func (e Envelope) Validate() error {
	switch e.Type {
	case MsgOwnership:
		if e.Ownership == nil {
			return errors.New("ownership envelope without payload")
		}
		if e.Ownership.BodyNetID == uuid.Nil || e.Ownership.PlayerID == uuid.Nil {
			return errors.New("ownership envelope with nil id")
		}
	case MsgAttributes:
		if e.Attributes == nil {
			return errors.New("attributes envelope without payload")
		}
	case MsgBodyState:
		if e.BodyState == nil {
			return errors.New("body_state envelope without payload")
		}
	default:
		return errors.New("unknown envelope type " + string(e.Type))
	}
	return nil
}

// Publisher 权威端发布接口
type Publisher interface {
	Publish(env Envelope) error
}
