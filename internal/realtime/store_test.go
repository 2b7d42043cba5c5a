package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

// latest 记录订阅收到的最后一个快照
type latest struct {
	mu    sync.Mutex
	snap  Snapshot
	count int
	err   error
}

func (l *latest) onChange(s Snapshot) {
	l.mu.Lock()
	l.snap = s
	l.count++
	l.mu.Unlock()
}

func (l *latest) onError(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *latest) get() (Snapshot, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap, l.count
}

func (l *latest) decode(t *testing.T, key string) (record, bool) {
	snap, _ := l.get()
	raw, ok := snap[key]
	if !ok {
		return record{}, false
	}
	var r record
	require.NoError(t, json.Unmarshal(raw, &r))
	return r, true
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	var l latest

	cancel, err := store.Subscribe(ctx, "images", l.onChange, l.onError)
	require.NoError(t, err)
	defer cancel()

	require.Eventually(t, func() bool { _, n := l.get(); return n >= 1 }, 2*time.Second, 10*time.Millisecond)
	snap, _ := l.get()
	assert.Empty(t, snap)

	key, err := store.Push(ctx, "images", record{ID: "local-1", Title: "Sunset", LikedBy: []string{}})
	require.NoError(t, err)
	require.NotEmpty(t, key)

	require.Eventually(t, func() bool {
		r, ok := l.decode(t, key)
		return ok && r.Title == "Sunset"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, store.Update(ctx, "images", key, map[string]any{"likes": 1, "likedBy": []string{"Nari"}}))
	require.Eventually(t, func() bool {
		r, ok := l.decode(t, key)
		return ok && r.Likes == 1
	}, 2*time.Second, 10*time.Millisecond)

	r, _ := l.decode(t, key)
	assert.Equal(t, "Sunset", r.Title, "update must merge, not replace")
	assert.Equal(t, "local-1", r.ID)
	assert.Equal(t, []string{"Nari"}, r.LikedBy)

	require.NoError(t, store.Remove(ctx, "images", key))
	require.Eventually(t, func() bool {
		_, ok := l.decode(t, key)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, l.err)
}

func TestSnapshotKeysSorted(t *testing.T) {
	s := Snapshot{"b": nil, "a": nil, "c": nil}
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestPushKeysAreTimeOrdered(t *testing.T) {
	a := newKey()
	time.Sleep(2 * time.Millisecond)
	b := newKey()
	assert.Less(t, a, b)
}

func TestEncodeDocumentRejectsNonObject(t *testing.T) {
	_, err := encodeDocument([]int{1, 2})
	assert.Error(t, err)
}
