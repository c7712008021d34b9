package kvstore

import "context"

// NopStore 是存储不可用时的空实现：读返回零值，写静默丢弃，从不报错。
type NopStore struct{}

// NewNopStore 创建空实现。
func NewNopStore() NopStore {
	return NopStore{}
}

func (NopStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NopStore) Set(context.Context, string, string) error         { return nil }
func (NopStore) Incr(context.Context, string) (int64, error)       { return 0, nil }
func (NopStore) Del(context.Context, ...string) error              { return nil }

func (NopStore) ZAdd(context.Context, string, float64, string) error { return nil }

func (NopStore) ZRange(context.Context, string, int64, int64) ([]string, error) {
	return []string{}, nil
}

func (NopStore) ZRemRangeByRank(context.Context, string, int64, int64) (int64, error) {
	return 0, nil
}

func (NopStore) ZCard(context.Context, string) (int64, error) { return 0, nil }
func (NopStore) Ping(context.Context) error                   { return nil }
func (NopStore) Close() error                                 { return nil }
func (NopStore) Name() string                                 { return "nop" }
