package service

import (
	"fmt"
	"sort"

	"github.com/d60-Lab/pixelpals/internal/model"
)

// HallOfFameMinLikes 进入名人堂的最低点赞数
const HallOfFameMinLikes = 10

// Derive 由完整列表、当前视图、当前用户得出展示列表（纯函数，不修改入参）
func Derive(entries []model.ArtEntry, view model.View, user string) []model.ArtEntry {
	switch view {
	case model.ViewHallOfFame:
		out := make([]model.ArtEntry, 0, len(entries))
		for _, e := range entries {
			if e.Likes >= HallOfFameMinLikes {
				out = append(out, e)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
		return out
	case model.ViewMyWorks:
		out := make([]model.ArtEntry, 0)
		if user == "" {
			return out
		}
		for _, e := range entries {
			if e.Creator == user {
				out = append(out, e)
			}
		}
		return out
	default:
		return append([]model.ArtEntry{}, entries...)
	}
}

// Title 页面标题
func Title(view model.View, user string) string {
	switch view {
	case model.ViewHallOfFame:
		return "🏆 Hall of Fame"
	case model.ViewMyWorks:
		return fmt.Sprintf("🎨 %s's gallery", user)
	default:
		return "Pixel Artist Plaza 🎨"
	}
}
