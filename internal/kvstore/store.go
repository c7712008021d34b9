// Package kvstore 提供统计数据所依赖的键值/有序集合存储抽象。
//
// 所有实现都遵循 Redis 的语义：读取不存在的键返回零值而不是错误，
// INCR 在键不存在时先初始化为 0，有序集合按分数升序排列，
// 排名区间为闭区间且支持负数下标（-1 表示最后一个成员）。
package kvstore

import (
	"context"
	"errors"
)

// ErrNotInteger 表示对非整数值执行了自增。
var ErrNotInteger = errors.New("kvstore: value is not an integer")

// Store 是统计层唯一会产生持久化网络 I/O 的依赖。
type Store interface {
	// Get 返回键对应的值；键不存在时 found 为 false 且 err 为 nil。
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Incr 原子自增并返回自增后的值，原子性由存储端保证。
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error

	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRange 按排名闭区间返回成员，分数升序，分数相同时按成员字典序。
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// ZRemRangeByRank 删除排名位于闭区间内的成员并返回删除数量。
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error)
	ZCard(ctx context.Context, key string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
	// Name 返回后端名称，用于日志与指标标签。
	Name() string
}

// normalizeRange 按 Redis 规则把可能为负数的排名区间换算成 [0, n) 内的下标。
// ok 为 false 表示区间为空。
func normalizeRange(n, start, stop int64) (from, to int64, ok bool) {
	if n <= 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
