package model

// View 画廊的三种视图
type View string

const (
	ViewAll        View = "all"
	ViewHallOfFame View = "hallOfFame"
	ViewMyWorks    View = "myWorks"
)

// ParseView 未知取值一律回落到 all
func ParseView(s string) View {
	switch View(s) {
	case ViewHallOfFame:
		return ViewHallOfFame
	case ViewMyWorks:
		return ViewMyWorks
	default:
		return ViewAll
	}
}
