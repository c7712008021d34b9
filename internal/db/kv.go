package db

import "time"

// KVEntry 保存字符串键值，计数器以十进制字符串存放。
type KVEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:255"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (KVEntry) TableName() string {
	return "kv_entries"
}

// SortedSetMember 表示有序集合中的一个成员。
type SortedSetMember struct {
	ID        uint    `gorm:"primaryKey"`
	SetKey    string  `gorm:"size:255;uniqueIndex:idx_zset_member;index:idx_zset_score,priority:1"`
	Member    string  `gorm:"uniqueIndex:idx_zset_member"`
	Score     float64 `gorm:"index:idx_zset_score,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (SortedSetMember) TableName() string {
	return "sorted_set_members"
}
