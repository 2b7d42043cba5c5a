package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/pixelpals/internal/model"
)

func TestDeriveHallOfFame(t *testing.T) {
	entries := []model.ArtEntry{
		{ID: "a", Likes: 12},
		{ID: "b", Likes: 3},
		{ID: "c", Likes: 15},
		{ID: "d", Likes: 10},
		{ID: "e", Likes: 9},
	}
	got := Derive(entries, model.ViewHallOfFame, "")
	assert.Equal(t, []string{"c", "a", "d"}, ids(got))
	for _, e := range got {
		assert.GreaterOrEqual(t, e.Likes, HallOfFameMinLikes)
	}
	assert.Equal(t, "a", entries[0].ID, "input must not be reordered")
}

func TestDeriveHallOfFameTiesKeepStoreOrder(t *testing.T) {
	entries := []model.ArtEntry{{ID: "x", Likes: 11}, {ID: "y", Likes: 11}, {ID: "z", Likes: 30}}
	assert.Equal(t, []string{"z", "x", "y"}, ids(Derive(entries, model.ViewHallOfFame, "")))
}

func TestDeriveMyWorks(t *testing.T) {
	entries := []model.ArtEntry{
		{ID: "1", Creator: "Nari"},
		{ID: "2", Creator: "Bo"},
		{ID: "3", Creator: "Nari"},
		{ID: "4", Creator: "nari"},
	}
	assert.Equal(t, []string{"1", "3"}, ids(Derive(entries, model.ViewMyWorks, "Nari")))
	assert.Empty(t, Derive(entries, model.ViewMyWorks, ""))
}

func TestDeriveAllKeepsOrder(t *testing.T) {
	entries := []model.ArtEntry{{ID: "b"}, {ID: "a"}}
	got := Derive(entries, model.ViewAll, "")
	assert.Equal(t, []string{"b", "a"}, ids(got))
	got[0].ID = "changed"
	assert.Equal(t, "b", entries[0].ID)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "🏆 Hall of Fame", Title(model.ViewHallOfFame, "Nari"))
	assert.Equal(t, "🎨 Nari's gallery", Title(model.ViewMyWorks, "Nari"))
	assert.Equal(t, "Pixel Artist Plaza 🎨", Title(model.ViewAll, ""))
}
