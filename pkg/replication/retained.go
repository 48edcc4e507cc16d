package replication

import (
	"sort"

	"github.com/google/uuid"
)

// retainedFacts 保留每个身体最新的归属消息，以及每个玩家最新的属性消息，
// 用于给迟到的订阅者回放。调用方负责加锁。
type retainedFacts struct {
	ownership  map[uuid.UUID]Envelope
	attributes map[uuid.UUID]Envelope
}

func newRetainedFacts() *retainedFacts {
	return &retainedFacts{
		ownership:  make(map[uuid.UUID]Envelope),
		attributes: make(map[uuid.UUID]Envelope),
	}
}

func (r *retainedFacts) remember(env Envelope) {
	switch env.Type {
	case MsgOwnership:
		r.ownership[env.Ownership.BodyNetID] = env
	case MsgAttributes:
		r.attributes[env.Attributes.PlayerID] = env
	}
}

// replay 按原始发布顺序返回保留的消息
func (r *retainedFacts) replay() []Envelope {
	out := make([]Envelope, 0, len(r.ownership)+len(r.attributes))
	for _, env := range r.ownership {
		out = append(out, env)
	}
	for _, env := range r.attributes {
		out = append(out, env)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
