package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/realtime"
	"github.com/d60-Lab/pixelpals/internal/seed"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

var (
	ErrNotFound     = errors.New("art entry not found")
	ErrAlreadyLiked = errors.New("already liked")
)

const (
	noticeAlreadyLiked   = "You already sent a heart to this work! ❤️"
	noticeRemovedRemote  = "The work was removed from the gallery for good. 🗑️"
	noticeRemoveFailed   = "Could not remove the work from the gallery. Please try again."
	noticeRemovedLocally = "The work was removed from the list."
)

var tracer = otel.Tracer("github.com/d60-Lab/pixelpals/internal/service")

// Actor 发起操作的客户端：接收提示并可被切换视图
type Actor interface {
	Notify(text string)
	SetView(v model.View)
}

type noopActor struct{}

func (noopActor) Notify(string)       {}
func (noopActor) SetView(model.View) {}

// remoteImage 外部存储中的记录格式
type remoteImage struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	Creator   string          `json:"creator"`
	Likes     int             `json:"likes"`
	LikedBy   []string        `json:"likedBy"`
	Comments  []model.Comment `json:"comments"`
	Timestamp int64           `json:"timestamp"`
}

// Gallery 作品列表的进程内权威副本，与外部实时存储松散同步。
// 本地变更先乐观生效，再异步写远端；之后到达的快照整体覆盖本地列表。
type Gallery struct {
	mu      sync.RWMutex
	entries []model.ArtEntry
	store   realtime.Store // nil 表示只读种子模式
	writer  *RemoteWriter
	path    string
	cancel  func()
	live    atomic.Bool
	now     func() time.Time

	listenMu  sync.Mutex
	listeners []func()
}

type Option func(*Gallery)

func WithClock(now func() time.Time) Option { return func(g *Gallery) { g.now = now } }

func WithPath(path string) Option { return func(g *Gallery) { g.path = path } }

// NewGallery store 为 nil 时直接运行在种子数据上
func NewGallery(store realtime.Store, writer *RemoteWriter, opts ...Option) *Gallery {
	g := &Gallery{
		entries: seed.Entries(),
		store:   store,
		writer:  writer,
		path:    "images",
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Start 订阅外部存储；失败则本次进程永久回落到种子数据，不重试
func (g *Gallery) Start(ctx context.Context) {
	g.mu.RLock()
	store := g.store
	g.mu.RUnlock()
	if store == nil {
		logger.Warn("realtime store not configured, serving seed data")
		return
	}

	cancel, err := store.Subscribe(ctx, g.path, g.applySnapshot, g.subscriptionFailed)
	if err != nil {
		logger.Error("subscribe realtime store failed, serving seed data", zap.String("path", g.path), zap.Error(err))
		g.mu.Lock()
		g.store = nil
		g.mu.Unlock()
		return
	}
	g.mu.Lock()
	g.cancel = cancel
	g.mu.Unlock()
}

// Close 取消订阅
func (g *Gallery) Close() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OnChange 注册列表变更回调（在变更方的 goroutine 中调用，不持锁）
func (g *Gallery) OnChange(fn func()) {
	g.listenMu.Lock()
	g.listeners = append(g.listeners, fn)
	g.listenMu.Unlock()
}

func (g *Gallery) changed() {
	g.listenMu.Lock()
	fns := append([]func(){}, g.listeners...)
	g.listenMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Live 是否已收到过远端快照且订阅未出错
func (g *Gallery) Live() bool { return g.live.Load() }

// Remote 外部存储是否可用（可写）
func (g *Gallery) Remote() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store != nil
}

// Entries 按当前顺序返回副本
func (g *Gallery) Entries() []model.ArtEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return model.CloneAll(g.entries)
}

func (g *Gallery) Find(id string) (model.ArtEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i := g.indexLocked(id); i >= 0 {
		return g.entries[i].Clone(), true
	}
	return model.ArtEntry{}, false
}

func (g *Gallery) indexLocked(id string) int {
	for i := range g.entries {
		if g.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Gallery) applySnapshot(snap realtime.Snapshot) {
	merged := mergeWithSeed(decodeSnapshot(snap))
	g.mu.Lock()
	g.entries = merged
	g.mu.Unlock()
	if !g.live.Swap(true) {
		logger.Info("realtime store live", zap.String("path", g.path), zap.Int("records", len(snap)))
	}
	g.changed()
}

func (g *Gallery) subscriptionFailed(err error) {
	logger.Error("realtime subscription failed, reverting to seed data", zap.String("path", g.path), zap.Error(err))
	g.mu.Lock()
	g.entries = seed.Entries()
	g.mu.Unlock()
	g.live.Store(false)
	g.changed()
}

// decodeSnapshot 按 key 升序解码；缺失字段取空值，本地 id 缺失时用 key，重复的本地 id 只保留第一条
func decodeSnapshot(snap realtime.Snapshot) []model.ArtEntry {
	out := make([]model.ArtEntry, 0, len(snap))
	seen := make(map[string]bool, len(snap))
	for _, key := range snap.Keys() {
		var r remoteImage
		if err := json.Unmarshal(snap[key], &r); err != nil {
			logger.Warn("skip malformed record", zap.String("key", key), zap.Error(err))
			continue
		}
		id := r.ID
		if id == "" {
			id = key
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		e := model.ArtEntry{
			ID:         id,
			ExternalID: key,
			URL:        r.URL,
			Title:      r.Title,
			Creator:    r.Creator,
			Likes:      max(r.Likes, 0),
			LikedBy:    uniqueNames(r.LikedBy),
			Comments:   r.Comments,
			Timestamp:  r.Timestamp,
		}
		if e.Comments == nil {
			e.Comments = []model.Comment{}
		}
		out = append(out, e)
	}
	return out
}

func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// mergeWithSeed 追加远端没有的种子作品，再按时间戳倒序稳定排序
func mergeWithSeed(remote []model.ArtEntry) []model.ArtEntry {
	present := make(map[string]bool, len(remote))
	for _, e := range remote {
		present[e.ID] = true
	}
	for _, s := range seed.Entries() {
		if !present[s.ID] {
			remote = append(remote, s)
		}
	}
	sort.SliceStable(remote, func(i, j int) bool { return remote[i].Timestamp > remote[j].Timestamp })
	return remote
}

// remoteLocked 存储可写且记录有外部 id
func (g *Gallery) remoteLocked(externalID string) bool {
	return g.store != nil && g.writer != nil && externalID != ""
}

// Like 同一用户重复点赞不生效，只给出提示
func (g *Gallery) Like(ctx context.Context, entryID, user string, actor Actor) error {
	_, span := tracer.Start(ctx, "gallery.Like")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", entryID))
	if actor == nil {
		actor = noopActor{}
	}

	g.mu.Lock()
	i := g.indexLocked(entryID)
	if i < 0 {
		g.mu.Unlock()
		return ErrNotFound
	}
	e := &g.entries[i]
	if e.HasLiked(user) {
		g.mu.Unlock()
		actor.Notify(noticeAlreadyLiked)
		return ErrAlreadyLiked
	}
	likedBy := append(append(make([]string, 0, len(e.LikedBy)+1), e.LikedBy...), user)
	likes := e.Likes + 1
	e.LikedBy = likedBy
	e.Likes = likes
	title, ext := e.Title, e.ExternalID
	remote := g.remoteLocked(ext)
	g.mu.Unlock()

	g.changed()
	if remote {
		g.writer.EnqueueUpdate(g.path, ext, map[string]any{"likes": likes, "likedBy": likedBy}, nil)
	}
	actor.Notify(fmt.Sprintf("Sent a heart to '%s'! ❤️", title))
	return nil
}

// Comment 新评论放在最前；text 原样保存
func (g *Gallery) Comment(ctx context.Context, entryID, text, author string) (model.Comment, error) {
	_, span := tracer.Start(ctx, "gallery.Comment")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", entryID))

	c := model.Comment{ID: uuid.NewString(), Text: text, Author: author, Timestamp: g.now().UnixMilli()}

	g.mu.Lock()
	i := g.indexLocked(entryID)
	if i < 0 {
		g.mu.Unlock()
		return model.Comment{}, ErrNotFound
	}
	e := &g.entries[i]
	comments := append(append(make([]model.Comment, 0, len(e.Comments)+1), c), e.Comments...)
	e.Comments = comments
	ext := e.ExternalID
	remote := g.remoteLocked(ext)
	g.mu.Unlock()

	g.changed()
	if remote {
		g.writer.EnqueueUpdate(g.path, ext, map[string]any{"comments": comments}, nil)
	}
	return c, nil
}

// Delete 本地无条件移除；有外部 id 时异步删除远端并在完成后提示结果
func (g *Gallery) Delete(ctx context.Context, entryID, externalID string, actor Actor) {
	_, span := tracer.Start(ctx, "gallery.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("entry.id", entryID), attribute.String("entry.external_id", externalID))
	if actor == nil {
		actor = noopActor{}
	}

	g.mu.Lock()
	if i := g.indexLocked(entryID); i >= 0 {
		g.entries = append(g.entries[:i:i], g.entries[i+1:]...)
	}
	remote := g.remoteLocked(externalID)
	g.mu.Unlock()
	g.changed()

	if !remote {
		actor.Notify(noticeRemovedLocally)
		return
	}
	g.writer.EnqueueRemove(g.path, externalID, func(err error) {
		if err != nil {
			logger.Error("remove art entry failed", zap.String("id", entryID), zap.String("external_id", externalID), zap.Error(err))
			actor.Notify(noticeRemoveFailed)
			return
		}
		actor.Notify(noticeRemovedRemote)
	})
}

// Upload 新作品放在最前并切回 all 视图。存储分配的 key 不会回填到本地条目，
// 所以在下一次快照到达前删除它只会删掉本地副本。
func (g *Gallery) Upload(ctx context.Context, title, creator, url string, actor Actor) model.ArtEntry {
	_, span := tracer.Start(ctx, "gallery.Upload")
	defer span.End()
	if actor == nil {
		actor = noopActor{}
	}

	e := model.ArtEntry{
		ID:        uuid.NewString(),
		URL:       url,
		Title:     title,
		Creator:   creator,
		Likes:     0,
		LikedBy:   []string{},
		Comments:  []model.Comment{},
		Timestamp: g.now().UnixMilli(),
	}
	span.SetAttributes(attribute.String("entry.id", e.ID))

	g.mu.Lock()
	g.entries = append([]model.ArtEntry{e.Clone()}, g.entries...)
	remote := g.store != nil && g.writer != nil
	g.mu.Unlock()

	g.changed()
	actor.SetView(model.ViewAll)
	actor.Notify(fmt.Sprintf("Wow! New work '%s' is up! 🚀", title))
	if remote {
		g.writer.EnqueuePush(g.path, remoteImage{
			ID:        e.ID,
			URL:       e.URL,
			Title:     e.Title,
			Creator:   e.Creator,
			Likes:     0,
			LikedBy:   []string{},
			Comments:  []model.Comment{},
			Timestamp: e.Timestamp,
		}, nil)
	}
	return e
}
