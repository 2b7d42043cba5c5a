package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/realtime"
)

type storeCall struct {
	op     string
	path   string
	key    string
	value  any
	fields map[string]any
}

// fakeStore 记录所有调用；快照由测试通过 emit 同步推送
type fakeStore struct {
	mu           sync.Mutex
	calls        []storeCall
	subscribeErr error
	writeErr     error
	onChange     func(realtime.Snapshot)
	onError      func(error)
	canceled     bool
}

func (f *fakeStore) Subscribe(ctx context.Context, path string, onChange func(realtime.Snapshot), onError func(error)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.onChange, f.onError = onChange, onError
	return func() {
		f.mu.Lock()
		f.canceled = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) Push(ctx context.Context, path string, value any) (string, error) {
	f.record(storeCall{op: "push", path: path, value: value})
	return "pushed-key", f.err()
}

func (f *fakeStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	f.record(storeCall{op: "update", path: path, key: key, fields: fields})
	return f.err()
}

func (f *fakeStore) Remove(ctx context.Context, path, key string) error {
	f.record(storeCall{op: "remove", path: path, key: key})
	return f.err()
}

func (f *fakeStore) record(c storeCall) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeStore) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeErr
}

func (f *fakeStore) Calls() []storeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storeCall{}, f.calls...)
}

func (f *fakeStore) emit(t *testing.T, records map[string]any) {
	t.Helper()
	snap := realtime.Snapshot{}
	for k, v := range records {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		snap[k] = raw
	}
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	require.NotNil(t, fn, "not subscribed")
	fn(snap)
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	fn := f.onError
	f.mu.Unlock()
	fn(err)
}

// recordingActor 记录提示与视图切换
type recordingActor struct {
	mu      sync.Mutex
	notices []string
	view    model.View
}

func (a *recordingActor) Notify(text string) {
	a.mu.Lock()
	a.notices = append(a.notices, text)
	a.mu.Unlock()
}

func (a *recordingActor) SetView(v model.View) {
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
}

func (a *recordingActor) Notices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.notices...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.UnixMilli(1_700_000_000_000)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func ids(entries []model.ArtEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
