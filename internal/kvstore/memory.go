package kvstore

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
)

// MemoryStore 是进程内实现，用于本地开发和测试。
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	zsets  map[string]map[string]float64
}

// NewMemoryStore 创建空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		zsets:  make(map[string]map[string]float64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.zsets, key)
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if raw, ok := s.values[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = parsed
	}
	current++
	s.values[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
		delete(s.zsets, key)
	}
	return nil
}

func (s *MemoryStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.zsets[key]
	if !ok {
		set = make(map[string]float64)
		s.zsets[key] = set
	}
	set[member] = score
	return nil
}

func (s *MemoryStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := s.sortedMembers(key)
	from, to, ok := normalizeRange(int64(len(ordered)), start, stop)
	if !ok {
		return []string{}, nil
	}
	return slices.Clone(ordered[from : to+1]), nil
}

func (s *MemoryStore) ZRemRangeByRank(_ context.Context, key string, start, stop int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := s.sortedMembers(key)
	from, to, ok := normalizeRange(int64(len(ordered)), start, stop)
	if !ok {
		return 0, nil
	}

	set := s.zsets[key]
	for _, member := range ordered[from : to+1] {
		delete(set, member)
	}
	if len(set) == 0 {
		delete(s.zsets, key)
	}
	return to - from + 1, nil
}

func (s *MemoryStore) ZCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.zsets[key])), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }
func (s *MemoryStore) Name() string               { return "memory" }

// sortedMembers 调用方需持有锁。
func (s *MemoryStore) sortedMembers(key string) []string {
	set := s.zsets[key]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	slices.SortFunc(members, func(a, b string) int {
		if diff := cmp.Compare(set[a], set[b]); diff != 0 {
			return diff
		}
		return cmp.Compare(a, b)
	})
	return members
}
