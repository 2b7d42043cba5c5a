// Package realtime talks to the hosted realtime document store that holds the
// canonical gallery data. A Store delivers full snapshots of a path to its
// subscribers and accepts push/update/remove writes keyed by store-assigned ids.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ErrUnavailable 存储无法连接或初始化
var ErrUnavailable = errors.New("realtime store unavailable")

// Snapshot 某个 path 的完整快照：key -> JSON 对象
type Snapshot map[string]json.RawMessage

// Keys 按升序返回快照中的 key
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store 外部实时存储
type Store interface {
	// Subscribe 立即推送一次快照，之后每次变更再推送；订阅出错时调用 onError 并结束订阅
	Subscribe(ctx context.Context, path string, onChange func(Snapshot), onError func(error)) (cancel func(), err error)
	// Push 以生成的、按时间有序的 key 新建记录
	Push(ctx context.Context, path string, value any) (string, error)
	// Update 按字段部分合并
	Update(ctx context.Context, path, key string, fields map[string]any) error
	Remove(ctx context.Context, path, key string) error
}

func newKey() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// encodeDocument 把一条记录拆成 field -> JSON 值
func encodeDocument(value any) (map[string]string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("document must be an object: %w", err)
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		out[k] = string(v)
	}
	return out, nil
}

func encodeFields(fields map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		out[k] = string(raw)
	}
	return out, nil
}

// assemble 把 field -> JSON 值 重新拼成一个 JSON 对象
func assemble(fields map[string]string) (json.RawMessage, error) {
	obj := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		obj[k] = json.RawMessage(v)
	}
	return json.Marshal(obj)
}
