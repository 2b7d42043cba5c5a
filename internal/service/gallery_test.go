package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/seed"
)

var seedIDs = []string{"seed-1", "seed-2", "seed-3", "seed-4"}

func newLiveGallery(t *testing.T) (*Gallery, *fakeStore) {
	t.Helper()
	fs := &fakeStore{}
	w := NewRemoteWriter(fs, 16, 0)
	stop := w.Start(1)
	t.Cleanup(func() { _ = stop(context.Background()) })

	g := NewGallery(fs, w, WithClock(newFakeClock().Now))
	g.Start(context.Background())
	t.Cleanup(g.Close)
	return g, fs
}

func TestGalleryWithoutStoreServesSeed(t *testing.T) {
	g := NewGallery(nil, nil)
	g.Start(context.Background())

	assert.Equal(t, seedIDs, ids(g.Entries()))
	assert.False(t, g.Live())
	assert.False(t, g.Remote())
}

func TestGalleryEmptySnapshotKeepsSeed(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{})

	assert.Equal(t, seedIDs, ids(g.Entries()))
	assert.True(t, g.Live())
}

func TestGallerySnapshotMergeAndSort(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{
		"k1": map[string]any{"id": "a", "title": "A", "creator": "Nari", "timestamp": 1_800_000_000_000},
		"k2": map[string]any{"id": "seed-2", "title": "Remote seed", "likes": 20, "likedBy": []string{"x", "x"}, "timestamp": 1_703_980_800_000},
		"k3": map[string]any{"id": "b", "title": "no timestamp"},
		"k4": map[string]any{"title": "keyless", "timestamp": 1_750_000_000_000},
		"k5": map[string]any{"id": "a", "title": "duplicate", "timestamp": 1_900_000_000_000},
	})

	entries := g.Entries()
	assert.Equal(t, []string{"a", "k4", "seed-1", "seed-2", "seed-3", "seed-4", "b"}, ids(entries))

	assert.Equal(t, "A", entries[0].Title)
	assert.Equal(t, "k1", entries[0].ExternalID)

	remoteSeed := entries[3]
	assert.Equal(t, "Remote seed", remoteSeed.Title)
	assert.Equal(t, "k2", remoteSeed.ExternalID)
	assert.Equal(t, []string{"x"}, remoteSeed.LikedBy)

	last := entries[6]
	assert.Equal(t, 0, last.Likes)
	assert.NotNil(t, last.LikedBy)
	assert.Empty(t, last.LikedBy)
	assert.NotNil(t, last.Comments)
	assert.Empty(t, last.Comments)
}

func TestGallerySubscriptionErrorRevertsToSeed(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{"k1": map[string]any{"id": "a", "timestamp": 1}})
	require.True(t, g.Live())

	fs.fail(errors.New("permission denied"))
	assert.False(t, g.Live())
	assert.Equal(t, seedIDs, ids(g.Entries()))
	assert.True(t, g.Remote(), "the store handle stays usable for writes")
}

func TestGallerySubscribeFailureIsPermanent(t *testing.T) {
	fs := &fakeStore{subscribeErr: errors.New("dial tcp: connection refused")}
	w := NewRemoteWriter(fs, 16, 0)
	g := NewGallery(fs, w)
	g.Start(context.Background())

	assert.False(t, g.Remote())
	g.Upload(context.Background(), "Sunset", "Bo", "https://example.com/s.png", nil)
	assert.Equal(t, 0, w.QueueLen())
}

func TestGalleryLikeIsIdempotentPerUser(t *testing.T) {
	g := NewGallery(nil, nil)
	actor := &recordingActor{}
	ctx := context.Background()

	require.NoError(t, g.Like(ctx, "seed-4", "Nari", actor))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, g.Like(ctx, "seed-4", "Nari", actor), ErrAlreadyLiked)
	}

	e, ok := g.Find("seed-4")
	require.True(t, ok)
	assert.Equal(t, []string{"Nari"}, e.LikedBy)
	assert.Equal(t, 1, e.Likes)
	notices := actor.Notices()
	require.Len(t, notices, 4)
	assert.Contains(t, notices[0], "Castle at Dusk")
	assert.Equal(t, noticeAlreadyLiked, notices[1])
}

func TestGalleryLikeUnknownEntry(t *testing.T) {
	g := NewGallery(nil, nil)
	assert.ErrorIs(t, g.Like(context.Background(), "nope", "Nari", nil), ErrNotFound)
}

func TestGalleryLikeWritesRemote(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{"k1": map[string]any{"id": "a", "likes": 2, "likedBy": []string{"Bo", "Mi"}}})

	require.NoError(t, g.Like(context.Background(), "a", "Nari", nil))

	e, _ := g.Find("a")
	assert.Equal(t, 3, e.Likes)

	require.Eventually(t, func() bool { return len(fs.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	c := fs.Calls()[0]
	assert.Equal(t, "update", c.op)
	assert.Equal(t, "images", c.path)
	assert.Equal(t, "k1", c.key)
	assert.Equal(t, map[string]any{"likes": 3, "likedBy": []string{"Bo", "Mi", "Nari"}}, c.fields)
}

func TestGalleryLikeSeedEntryStaysLocal(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{})

	require.NoError(t, g.Like(context.Background(), "seed-1", "Nari", nil))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, fs.Calls())
}

func TestGalleryCommentPrepends(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{"k1": map[string]any{"id": "a", "comments": []model.Comment{{ID: "old", Text: "first", Author: "Bo"}}}})

	c, err := g.Comment(context.Background(), "a", "  nice!  ", "Nari")
	require.NoError(t, err)
	assert.Equal(t, "  nice!  ", c.Text)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, int64(1_700_000_000_000), c.Timestamp)

	e, _ := g.Find("a")
	require.Len(t, e.Comments, 2)
	assert.Equal(t, c.ID, e.Comments[0].ID)
	assert.Equal(t, "old", e.Comments[1].ID)

	require.Eventually(t, func() bool { return len(fs.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"comments"}, keysOf(fs.Calls()[0].fields))

	_, err = g.Comment(context.Background(), "nope", "hi", "Nari")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGalleryDeleteWithoutExternalID(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{})
	actor := &recordingActor{}

	g.Delete(context.Background(), "seed-3", "", actor)

	assert.Equal(t, []string{"seed-1", "seed-2", "seed-4"}, ids(g.Entries()))
	assert.Equal(t, []string{noticeRemovedLocally}, actor.Notices())
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, fs.Calls())
}

func TestGalleryDeleteWithExternalID(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{"k1": map[string]any{"id": "a"}})
	actor := &recordingActor{}

	g.Delete(context.Background(), "a", "k1", actor)
	_, ok := g.Find("a")
	assert.False(t, ok)

	require.Eventually(t, func() bool { return len(actor.Notices()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, noticeRemovedRemote, actor.Notices()[0])
	assert.Equal(t, "remove", fs.Calls()[0].op)
	assert.Equal(t, "k1", fs.Calls()[0].key)
}

func TestGalleryDeleteRemoteFailureNotifies(t *testing.T) {
	g, fs := newLiveGallery(t)
	fs.emit(t, map[string]any{"k1": map[string]any{"id": "a"}})
	fs.writeErr = errors.New("boom")
	actor := &recordingActor{}

	g.Delete(context.Background(), "a", "k1", actor)

	require.Eventually(t, func() bool { return len(actor.Notices()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, noticeRemoveFailed, actor.Notices()[0])
	_, ok := g.Find("a")
	assert.False(t, ok, "local removal is not rolled back")
}

func TestGalleryUploadVisibleBeforeRemoteConfirmation(t *testing.T) {
	fs := &fakeStore{}
	w := NewRemoteWriter(fs, 16, 0) // 尚未启动 worker：远端不会确认
	g := NewGallery(fs, w, WithClock(newFakeClock().Now))
	g.Start(context.Background())
	fs.emit(t, map[string]any{})
	actor := &recordingActor{view: model.ViewHallOfFame}

	e := g.Upload(context.Background(), "Sunset", "Bo", "https://example.com/s.png", actor)

	all := Derive(g.Entries(), model.ViewAll, "")
	require.NotEmpty(t, all)
	assert.Equal(t, e.ID, all[0].ID)
	assert.Equal(t, "Sunset", all[0].Title)
	assert.Equal(t, "Bo", all[0].Creator)
	assert.Equal(t, 0, all[0].Likes)
	assert.Empty(t, all[0].ExternalID)
	assert.Equal(t, model.ViewAll, actor.view)
	assert.Empty(t, fs.Calls())
	assert.Equal(t, 1, w.QueueLen())

	stop := w.Start(1)
	defer func() { _ = stop(context.Background()) }()
	require.Eventually(t, func() bool { return len(fs.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	pushed, ok := fs.Calls()[0].value.(remoteImage)
	require.True(t, ok)
	assert.Equal(t, e.ID, pushed.ID)
	assert.Equal(t, int64(1_700_000_000_000), pushed.Timestamp)

	local, _ := g.Find(e.ID)
	assert.Empty(t, local.ExternalID, "store key is never patched back")
}

func TestGalleryLastSnapshotWins(t *testing.T) {
	g, fs := newLiveGallery(t)
	stale := map[string]any{"k1": map[string]any{"id": "a", "likes": 0}}
	fs.emit(t, stale)

	require.NoError(t, g.Like(context.Background(), "a", "Nari", nil))
	fs.emit(t, stale)

	e, _ := g.Find("a")
	assert.Equal(t, 0, e.Likes)
	assert.Empty(t, e.LikedBy)
}

func TestGalleryOnChange(t *testing.T) {
	g, fs := newLiveGallery(t)
	var n int
	g.OnChange(func() { n++ })

	fs.emit(t, map[string]any{})
	g.Upload(context.Background(), "x", "Bo", "u", nil)
	g.Delete(context.Background(), "seed-1", "", nil)
	assert.Equal(t, 3, n)
}

func TestGalleryCloseCancelsSubscription(t *testing.T) {
	fs := &fakeStore{}
	g := NewGallery(fs, nil)
	g.Start(context.Background())
	g.Close()
	assert.True(t, fs.canceled)
}

func TestGalleryEntriesAreCopies(t *testing.T) {
	g := NewGallery(nil, nil)
	entries := g.Entries()
	entries[0].LikedBy = append(entries[0].LikedBy, "Nari")
	entries[0].Title = "changed"

	assert.Equal(t, seed.Entries()[0], g.Entries()[0])
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
