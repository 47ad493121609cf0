package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/model"

	"github.com/patrickmn/go-cache"
)

// Persists publication progress, so failed publications can be resumed
type Journal interface {
	Save(ctx context.Context, record *model.Publication) error
	Load(ctx context.Context, id string) (*model.Publication, error)
}

// Keeps records in memory, they're lost on restart
type MemoryJournal struct {
	cache *cache.Cache
}

func NewMemoryJournal(expiration time.Duration) *MemoryJournal {
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &MemoryJournal{
		cache: cache.New(expiration, time.Hour),
	}
}

func (self *MemoryJournal) Save(ctx context.Context, record *model.Publication) error {
	stored := *record
	stored.UpdatedAt = time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	self.cache.SetDefault(record.ID, &stored)
	return nil
}

func (self *MemoryJournal) Load(ctx context.Context, id string) (*model.Publication, error) {
	value, ok := self.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	record := *value.(*model.Publication)
	return &record, nil
}

func newJournal(ctx context.Context, cfg *config.Config) (Journal, error) {
	switch cfg.Journal.Driver {
	case config.JournalDriverMemory:
		return NewMemoryJournal(cfg.Journal.MemoryExpiration), nil
	case config.JournalDriverPostgres:
		db, err := model.NewConnection(ctx, cfg, "publisher")
		if err != nil {
			return nil, err
		}
		return NewDBJournal(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown journal driver %q", config.ErrConfig, cfg.Journal.Driver)
	}
}
