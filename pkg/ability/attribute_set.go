package ability

// AttributeSet 玩家属性集
//
// 随 CapabilityBundle 一起由玩家身份（PlayerState）持有，角色死亡、重生不影响属性集。
// 观察端持有的是权威端属性集的副本，通过 Apply 接收复制过来的快照。
type AttributeSet struct {
	Health    float64
	MaxHealth float64
	Mana      float64
	MaxMana   float64
}

// AttributeSnapshot 属性集快照（复制通道传输的数据）
type AttributeSnapshot struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Mana      float64 `json:"mana"`
	MaxMana   float64 `json:"maxMana"`
}

// NewAttributeSet 创建属性集
//
// 参数：
//   - maxHealth: 最大生命值，当前生命值初始为满
//   - maxMana: 最大法力值，当前法力值初始为满
func NewAttributeSet(maxHealth, maxMana float64) *AttributeSet {
	return &AttributeSet{
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Mana:      maxMana,
		MaxMana:   maxMana,
	}
}

// Clamp 将当前值限制在 [0, 最大值] 范围内
func (a *AttributeSet) Clamp() {
	a.Health = clamp(a.Health, 0, a.MaxHealth)
	a.Mana = clamp(a.Mana, 0, a.MaxMana)
}

// Snapshot 生成用于复制的快照
func (a *AttributeSet) Snapshot() AttributeSnapshot {
	return AttributeSnapshot{
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		Mana:      a.Mana,
		MaxMana:   a.MaxMana,
	}
}

// Apply 用快照覆盖属性值（观察端使用）
// 重复应用同一快照结果不变
func (a *AttributeSet) Apply(s AttributeSnapshot) {
	a.MaxHealth = s.MaxHealth
	a.MaxMana = s.MaxMana
	a.Health = s.Health
	a.Mana = s.Mana
	a.Clamp()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
