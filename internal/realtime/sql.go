package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/d60-Lab/pixelpals/internal/repository"
)

// SQLStore 基于 gorm 的实现：字段行 + revision 轮询
type SQLStore struct {
	repo         repository.DocumentRepository
	pollInterval time.Duration
}

func NewSQLStore(repo repository.DocumentRepository, pollInterval time.Duration) *SQLStore {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &SQLStore{repo: repo, pollInterval: pollInterval}
}

func (s *SQLStore) Subscribe(ctx context.Context, path string, onChange func(Snapshot), onError func(error)) (func(), error) {
	rev, err := s.repo.Revision(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: revision %s: %v", ErrUnavailable, path, err)
	}
	first, err := s.snapshot(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		onChange(first)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				cur, err := s.repo.Revision(context.Background(), path)
				if err != nil {
					onError(err)
					return
				}
				if cur == rev {
					continue
				}
				snap, err := s.snapshot(context.Background(), path)
				if err != nil {
					onError(err)
					return
				}
				rev = cur
				onChange(snap)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}, nil
}

func (s *SQLStore) Push(ctx context.Context, path string, value any) (string, error) {
	fields, err := encodeDocument(value)
	if err != nil {
		return "", err
	}
	key := newKey()
	if err := s.repo.SetFields(ctx, path, key, fields); err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	return key, nil
}

func (s *SQLStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	enc, err := encodeFields(fields)
	if err != nil {
		return err
	}
	if err := s.repo.SetFields(ctx, path, key, enc); err != nil {
		return fmt.Errorf("update %s/%s: %w", path, key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, path, key string) error {
	if err := s.repo.DeleteDocument(ctx, path, key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", path, key, err)
	}
	return nil
}

func (s *SQLStore) snapshot(ctx context.Context, path string) (Snapshot, error) {
	rows, err := s.repo.ListFields(ctx, path)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string]map[string]string)
	for _, r := range rows {
		if grouped[r.DocKey] == nil {
			grouped[r.DocKey] = make(map[string]string)
		}
		grouped[r.DocKey][r.Field] = r.Value
	}
	snap := make(Snapshot, len(grouped))
	for key, fields := range grouped {
		raw, err := assemble(fields)
		if err != nil {
			return nil, err
		}
		snap[key] = raw
	}
	return snap, nil
}
