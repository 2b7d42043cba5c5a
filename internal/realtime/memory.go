package realtime

import (
	"context"
	"sync"
)

// MemoryStore 进程内实现，用于开发、测试与压测
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]string // path -> key -> field -> JSON
	subs map[string]map[*memorySub]struct{}
}

type memorySub struct {
	dirty chan struct{}
	stop  chan struct{}
	done  chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]map[string]string),
		subs: make(map[string]map[*memorySub]struct{}),
	}
}

func (m *MemoryStore) Subscribe(ctx context.Context, path string, onChange func(Snapshot), onError func(error)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := &memorySub{dirty: make(chan struct{}, 1), stop: make(chan struct{}), done: make(chan struct{})}
	sub.dirty <- struct{}{}

	m.mu.Lock()
	if m.subs[path] == nil {
		m.subs[path] = make(map[*memorySub]struct{})
	}
	m.subs[path][sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-sub.stop:
				return
			case <-sub.dirty:
				snap, err := m.snapshot(path)
				if err != nil {
					onError(err)
					return
				}
				onChange(snap)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[path], sub)
			m.mu.Unlock()
			close(sub.stop)
			<-sub.done
		})
	}, nil
}

func (m *MemoryStore) Push(ctx context.Context, path string, value any) (string, error) {
	fields, err := encodeDocument(value)
	if err != nil {
		return "", err
	}
	key := newKey()
	m.mu.Lock()
	if m.docs[path] == nil {
		m.docs[path] = make(map[string]map[string]string)
	}
	m.docs[path][key] = fields
	m.notifyLocked(path)
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	enc, err := encodeFields(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[path] == nil {
		m.docs[path] = make(map[string]map[string]string)
	}
	doc := m.docs[path][key]
	if doc == nil {
		doc = make(map[string]string, len(enc))
		m.docs[path][key] = doc
	}
	for k, v := range enc {
		doc[k] = v
	}
	m.notifyLocked(path)
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, path, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[path], key)
	m.notifyLocked(path)
	return nil
}

// Len 返回 path 下的记录数
func (m *MemoryStore) Len(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[path])
}

func (m *MemoryStore) notifyLocked(path string) {
	for sub := range m.subs[path] {
		select {
		case sub.dirty <- struct{}{}:
		default: // 已有待推送的快照，合并
		}
	}
}

func (m *MemoryStore) snapshot(path string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(Snapshot, len(m.docs[path]))
	for key, fields := range m.docs[path] {
		raw, err := assemble(fields)
		if err != nil {
			return nil, err
		}
		snap[key] = raw
	}
	return snap, nil
}
