package content

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

const (
	columnID         = "id"
	columnUserID     = "user_id"
	queryOwner       = columnUserID + " = ?"
	queryID          = columnID + " = ?"
	orderNewestFirst = "created_at DESC, id DESC"
)

var errOwnerMismatch = errors.New("record owner does not match scope")

// ownedRecord is the closed set of per-user record tables.
type ownedRecord interface {
	ContentStrategy | ArchetypeResult | VoicePost | CaseStudy
	ownerID() string
}

// scopedTable is the only path to a record table. Every statement it builds carries the
// owner predicate, so a handler cannot read or delete another user's rows by omission.
type scopedTable[T ownedRecord] struct {
	db    *gorm.DB
	owner UserID
}

func scoped[T ownedRecord](ctx context.Context, db *gorm.DB, owner UserID) scopedTable[T] {
	return scopedTable[T]{db: db.WithContext(ctx), owner: owner}
}

func (t scopedTable[T]) query() *gorm.DB {
	return t.db.Model(new(T)).Where(queryOwner, t.owner.String())
}

func (t scopedTable[T]) list() ([]T, error) {
	records := make([]T, 0)
	if err := t.query().Order(orderNewestFirst).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (t scopedTable[T]) filter(condition string, args ...any) ([]T, error) {
	records := make([]T, 0)
	if err := t.query().Where(condition, args...).Order(orderNewestFirst).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (t scopedTable[T]) get(id string) (T, bool, error) {
	var record T
	err := t.query().Where(queryID, id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}
	return record, true, nil
}

func (t scopedTable[T]) latest() (T, bool, error) {
	var record T
	err := t.query().Order(orderNewestFirst).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}
	return record, true, nil
}

func (t scopedTable[T]) insert(record *T) error {
	if (*record).ownerID() != t.owner.String() {
		return errOwnerMismatch
	}
	return t.db.Create(record).Error
}

// remove deletes at most one row. Missing or foreign ids affect nothing and are not errors.
func (t scopedTable[T]) remove(id string) error {
	return t.query().Where(queryID, id).Delete(new(T)).Error
}
