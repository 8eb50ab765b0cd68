package components

// ClickableComponent 标记实体可以被指针点击
type ClickableComponent struct {
	IsEnabled bool // 是否可以被点击
}
