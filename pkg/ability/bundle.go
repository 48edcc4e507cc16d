package ability

// CapabilityBundle 玩家的持久能力包：能力处理单元 + 属性集
//
// 每个玩家身份恰好一个，随身份创建，身份存在期间不销毁。
type CapabilityBundle struct {
	AbilitySystem *AbilitySystemComponent
	Attributes    *AttributeSet
}

// NewCapabilityBundle 创建能力包
func NewCapabilityBundle(mode ReplicationMode, attributes *AttributeSet) *CapabilityBundle {
	return &CapabilityBundle{
		AbilitySystem: NewAbilitySystemComponent(mode),
		Attributes:    attributes,
	}
}

// IsComplete 能力处理单元和属性集是否都存在
func (b *CapabilityBundle) IsComplete() bool {
	return b != nil && b.AbilitySystem != nil && b.Attributes != nil
}

// AbilitySystemInterface 暴露能力处理单元的能力接口
// 玩家身份和角色身体都实现它
type AbilitySystemInterface interface {
	GetAbilitySystemComponent() *AbilitySystemComponent
}

// HasCapabilityBundle 持有（或引用）能力包的能力接口
type HasCapabilityBundle interface {
	AbilitySystemInterface
	GetAttributeSet() *AttributeSet
}
