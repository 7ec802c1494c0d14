package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
	"github.com/vytor/memora/internal/repository/sqlite"
	"github.com/vytor/memora/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	db    *sql.DB
	store repository.Store
}

func (s *StoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewStore(s.db)
}

func (s *StoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StoreSuite) TestWithinTx_Commits() {
	ctx := context.Background()
	now := time.Now().UTC()

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		deck, err := repos.Decks.GetOrCreate(ctx, 1, "Glossary", now)
		if err != nil {
			return err
		}
		return repos.States.Upsert(ctx, models.LearnerDeckState{
			LearnerID: 1, DeckID: deck.ID, Mode: models.ModeComfortable, NewItemDailyLimit: 15,
			CreatedAt: now, UpdatedAt: now,
		})
	})
	s.Require().NoError(err)

	decks, err := s.store.Repositories().Decks.List(ctx, 1)
	s.Require().NoError(err)
	s.Len(decks, 1)
}

func (s *StoreSuite) TestWithinTx_RollsBackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Decks.GetOrCreate(ctx, 1, "Glossary", time.Now().UTC()); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.NotErrorIs(err, repository.ErrContention)

	decks, err := s.store.Repositories().Decks.List(ctx, 1)
	s.Require().NoError(err)
	s.Empty(decks)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
