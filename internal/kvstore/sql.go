package kvstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore 用 gorm 在关系库（默认 sqlite）上模拟键值与有序集合。
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore 创建 SQLStore，调用方需保证表已迁移（见 db.Migrate）。
func NewSQLStore(gdb *gorm.DB) *SQLStore {
	return &SQLStore{db: gdb}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry db.KVEntry
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_key = ?", key).Delete(&db.SortedSetMember{}).Error; err != nil {
			return err
		}
		entry := db.KVEntry{Key: key, Value: value}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kv_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
	})
}

func (s *SQLStore) Incr(ctx context.Context, key string) (int64, error) {
	var next int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry db.KVEntry
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kv_key = ?", key).
			First(&entry)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			next = 1
			return tx.Create(&db.KVEntry{Key: key, Value: "1"}).Error
		case result.Error != nil:
			return result.Error
		}

		current, err := strconv.ParseInt(entry.Value, 10, 64)
		if err != nil {
			return ErrNotInteger
		}
		next = current + 1
		entry.Value = strconv.FormatInt(next, 10)
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *SQLStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kv_key IN ?", keys).Delete(&db.KVEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("set_key IN ?", keys).Delete(&db.SortedSetMember{}).Error
	})
}

func (s *SQLStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	row := db.SortedSetMember{SetKey: key, Member: member, Score: score}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "set_key"}, {Name: "member"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	gdb := s.db.WithContext(ctx)

	n, err := s.card(gdb, key)
	if err != nil {
		return nil, err
	}
	from, to, ok := normalizeRange(n, start, stop)
	if !ok {
		return []string{}, nil
	}

	members := make([]string, 0, to-from+1)
	err = s.ranked(gdb, key, from, to).Pluck("member", &members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *SQLStore) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	var removed int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.card(tx, key)
		if err != nil {
			return err
		}
		from, to, ok := normalizeRange(n, start, stop)
		if !ok {
			return nil
		}

		var ids []uint
		if err := s.ranked(tx, key, from, to).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		result := tx.Where("id IN ?", ids).Delete(&db.SortedSetMember{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *SQLStore) ZCard(ctx context.Context, key string) (int64, error) {
	return s.card(s.db.WithContext(ctx), key)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Name() string { return "sqlite" }

func (s *SQLStore) card(gdb *gorm.DB, key string) (int64, error) {
	var n int64
	err := gdb.Model(&db.SortedSetMember{}).Where("set_key = ?", key).Count(&n).Error
	return n, err
}

// ranked 返回按排名截取 [from, to] 的查询，下标必须已归一化。
func (s *SQLStore) ranked(gdb *gorm.DB, key string, from, to int64) *gorm.DB {
	return gdb.Model(&db.SortedSetMember{}).
		Where("set_key = ?", key).
		Order("score ASC").
		Order("member ASC").
		Offset(int(from)).
		Limit(int(to - from + 1))
}
