package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/memora/internal/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a repository.Store backed by db.
func NewStore(db *sql.DB) repository.Store {
	return &store{db: db}
}

func newRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Items:   NewItemRepository(q),
		States:  NewLearnerStateRepository(q),
		Reviews: NewReviewLogRepository(q),
		Decks:   NewDeckRepository(q),
	}
}

func (s *store) Repositories() repository.Repositories {
	return newRepositories(s.db)
}

func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return tx(ctx, s.db, func(t *sql.Tx) error {
		return fn(ctx, newRepositories(t))
	})
}
