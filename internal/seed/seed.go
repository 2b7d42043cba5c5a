// Package seed holds the built-in entries that are shown even when the
// realtime store is empty or unreachable.
package seed

import "github.com/d60-Lab/pixelpals/internal/model"

var entries = []model.ArtEntry{
	{
		ID:        "seed-1",
		URL:       "https://picsum.photos/seed/pixel-cat/400/400",
		Title:     "Pixel Cat",
		Creator:   "PixelPals",
		Likes:     15,
		LikedBy:   []string{},
		Comments:  []model.Comment{},
		Timestamp: 1704067200000,
	},
	{
		ID:        "seed-2",
		URL:       "https://picsum.photos/seed/space-ship/400/400",
		Title:     "8-bit Spaceship",
		Creator:   "PixelPals",
		Likes:     12,
		LikedBy:   []string{},
		Comments:  []model.Comment{},
		Timestamp: 1703980800000,
	},
	{
		ID:        "seed-3",
		URL:       "https://picsum.photos/seed/forest/400/400",
		Title:     "Tiny Forest",
		Creator:   "PixelPals",
		Likes:     4,
		LikedBy:   []string{},
		Comments:  []model.Comment{},
		Timestamp: 1703894400000,
	},
	{
		ID:        "seed-4",
		URL:       "https://picsum.photos/seed/castle/400/400",
		Title:     "Castle at Dusk",
		Creator:   "PixelPals",
		Likes:     0,
		LikedBy:   []string{},
		Comments:  []model.Comment{},
		Timestamp: 1703808000000,
	},
}

// Entries 返回种子数据的副本
func Entries() []model.ArtEntry {
	return model.CloneAll(entries)
}
