package publish

import (
	"context"
	"errors"

	"github.com/warp-contracts/publisher/src/utils/model"

	"gorm.io/gorm"
)

// Keeps records in the publications table
type DBJournal struct {
	db *gorm.DB
}

func NewDBJournal(db *gorm.DB) *DBJournal {
	return &DBJournal{db: db}
}

func (self *DBJournal) Save(ctx context.Context, record *model.Publication) error {
	return self.db.WithContext(ctx).Save(record).Error
}

func (self *DBJournal) Load(ctx context.Context, id string) (*model.Publication, error) {
	var record model.Publication
	err := self.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
