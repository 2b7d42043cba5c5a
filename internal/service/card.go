package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/d60-Lab/pixelpals/internal/model"
)

const (
	likeAnimation = 500 * time.Millisecond
	statusPop     = time.Second

	noticeAlreadyLoved = "You already love this work! ❤️"
)

// Badge 由点赞数决定的状态徽章
type Badge struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Color string `json:"color"`
}

func BadgeFor(likes int) Badge {
	switch {
	case likes >= 20:
		return Badge{Icon: "👑", Label: "Legend", Color: "bg-yellow-400 text-indigo-900"}
	case likes >= 10:
		return Badge{Icon: "🔥", Label: "Popular", Color: "bg-pink-500 text-white"}
	case likes >= 3:
		return Badge{Icon: "⭐", Label: "Rising", Color: "bg-indigo-500 text-white"}
	default:
		return Badge{Icon: "🌱", Label: "Newbie", Color: "bg-green-100 text-green-700"}
	}
}

// Outcome 卡片交互的结果
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeLoginRequired
	OutcomeAlreadyLiked
	OutcomeConfirmRequired
	OutcomeEmptyComment
	OutcomeNotOwner
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeLoginRequired:
		return "login_required"
	case OutcomeAlreadyLiked:
		return "already_liked"
	case OutcomeConfirmRequired:
		return "confirm_required"
	case OutcomeEmptyComment:
		return "empty_comment"
	case OutcomeNotOwner:
		return "not_owner"
	}
	return "unknown"
}

// Card 面向某个观看者渲染出的卡片
type Card struct {
	model.ArtEntry
	HasLiked  bool  `json:"has_liked"`
	CanDelete bool  `json:"can_delete"`
	Status    Badge `json:"status"`
	Liking    bool  `json:"liking"`
	StatusPop bool  `json:"status_pop"`
}

type cardState struct {
	likingUntil time.Time
	label       string
	popUntil    time.Time
}

// CardDeck 一个客户端所有卡片的展示状态
type CardDeck struct {
	mu    sync.Mutex
	cards map[string]*cardState
	now   func() time.Time
}

func NewCardDeck(now func() time.Time) *CardDeck {
	if now == nil {
		now = time.Now
	}
	return &CardDeck{cards: make(map[string]*cardState), now: now}
}

func (d *CardDeck) stateLocked(id string) *cardState {
	st, ok := d.cards[id]
	if !ok {
		st = &cardState{}
		d.cards[id] = st
	}
	return st
}

// CanDelete 仅比较显示名，任何人改个名字就能"成为"作者
func CanDelete(e model.ArtEntry, user string) bool {
	return user != "" && user == e.Creator
}

// Render 徽章标签变化（含首次渲染）时进入 1 秒的弹跳状态
func (d *CardDeck) Render(e model.ArtEntry, user string) Card {
	badge := BadgeFor(e.Likes)
	now := d.now()

	d.mu.Lock()
	st := d.stateLocked(e.ID)
	if st.label != badge.Label {
		st.label = badge.Label
		st.popUntil = now.Add(statusPop)
	}
	liking := now.Before(st.likingUntil)
	pop := now.Before(st.popUntil)
	d.mu.Unlock()

	return Card{
		ArtEntry:  e,
		HasLiked:  e.HasLiked(user),
		CanDelete: CanDelete(e, user),
		Status:    badge,
		Liking:    liking,
		StatusPop: pop,
	}
}

// RenderAll 渲染列表
func (d *CardDeck) RenderAll(entries []model.ArtEntry, user string) []Card {
	out := make([]Card, len(entries))
	for i, e := range entries {
		out[i] = d.Render(e, user)
	}
	return out
}

// Like 点赞按钮：未登录提示登录；已点过只提示；成功后进入短暂动画，动画不阻止后续点击
func (d *CardDeck) Like(ctx context.Context, g *Gallery, entryID, user string, actor Actor) (Outcome, error) {
	if user == "" {
		return OutcomeLoginRequired, nil
	}
	if actor == nil {
		actor = noopActor{}
	}
	e, ok := g.Find(entryID)
	if !ok {
		return OutcomeDone, ErrNotFound
	}
	if e.HasLiked(user) {
		actor.Notify(noticeAlreadyLoved)
		return OutcomeAlreadyLiked, nil
	}
	if err := g.Like(ctx, entryID, user, actor); err != nil {
		if errors.Is(err, ErrAlreadyLiked) {
			return OutcomeAlreadyLiked, nil
		}
		return OutcomeDone, err
	}
	d.mu.Lock()
	d.stateLocked(entryID).likingUntil = d.now().Add(likeAnimation)
	d.mu.Unlock()
	return OutcomeDone, nil
}

// Delete 只有作者可见；必须显式确认后才真正删除
func (d *CardDeck) Delete(ctx context.Context, g *Gallery, entryID, user string, confirmed bool, actor Actor) (Outcome, error) {
	e, ok := g.Find(entryID)
	if !ok {
		return OutcomeDone, ErrNotFound
	}
	if !CanDelete(e, user) {
		return OutcomeNotOwner, nil
	}
	if !confirmed {
		return OutcomeConfirmRequired, nil
	}
	g.Delete(ctx, e.ID, e.ExternalID, actor)
	d.mu.Lock()
	delete(d.cards, entryID)
	d.mu.Unlock()
	return OutcomeDone, nil
}

// Comment 评论表单：需要登录且去空白后非空；保存的是原始文本
func (d *CardDeck) Comment(ctx context.Context, g *Gallery, entryID, text, user string) (Outcome, *model.Comment, error) {
	if user == "" {
		return OutcomeLoginRequired, nil, nil
	}
	if strings.TrimSpace(text) == "" {
		return OutcomeEmptyComment, nil, nil
	}
	c, err := g.Comment(ctx, entryID, text, user)
	if err != nil {
		return OutcomeDone, nil, err
	}
	return OutcomeDone, &c, nil
}
