package components

// PositionComponent 实体在世界中的位置（世界坐标，像素）
type PositionComponent struct {
	X float64
	Y float64
}

// CollisionComponent 定义实体的碰撞检测边界框
// 以实体位置为中心，光标检测（可见性通道）只命中 BlocksVisibility 为 true 的实体
type CollisionComponent struct {
	Width   float64 // 碰撞盒宽度（像素）
	Height  float64 // 碰撞盒高度（像素）
	OffsetX float64 // 碰撞盒相对于实体位置的X偏移量（像素），正值向右偏移
	OffsetY float64 // 碰撞盒相对于实体位置的Y偏移量（像素），正值向下偏移

	// BlocksVisibility 是否阻挡可见性通道（光标射线）
	// 武器等附属物不阻挡，避免抢走身体的命中
	BlocksVisibility bool
}

// Contains 判断世界坐标点是否落在碰撞盒内（含边界）
func (c *CollisionComponent) Contains(pos *PositionComponent, x, y float64) bool {
	centerX := pos.X + c.OffsetX
	centerY := pos.Y + c.OffsetY
	return x >= centerX-c.Width/2 && x <= centerX+c.Width/2 &&
		y >= centerY-c.Height/2 && y <= centerY+c.Height/2
}

// Bounds 返回碰撞盒左上角的世界坐标
func (c *CollisionComponent) Bounds(pos *PositionComponent) (left, top float64) {
	return pos.X + c.OffsetX - c.Width/2, pos.Y + c.OffsetY - c.Height/2
}
