package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
	"github.com/vytor/memora/internal/repository/sqlite"
	"github.com/vytor/memora/internal/testutil"
)

type ReviewLogRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	repo   repository.ReviewLogRepository
	deckID int64
	itemID int64
}

func (s *ReviewLogRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewLogRepository(s.db)
	s.deckID = testutil.InsertDeck(s.T(), s.db, 1, "Glossary")

	now := time.Now().UTC()
	_, err := sqlite.NewItemRepository(s.db).InsertIfAbsent(context.Background(), models.Item{
		LearnerID: 1, DeckID: s.deckID, FrontText: "y", BackText: "water",
		DueAt: now, EaseFactor: 2.5, HalfLifeDays: 1.5, CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.QueryRow(`SELECT id FROM items`).Scan(&s.itemID))
}

func (s *ReviewLogRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewLogRepositorySuite) entry(rating int, at time.Time) models.ReviewLogEntry {
	return models.ReviewLogEntry{
		LearnerID: 1, DeckID: s.deckID, ItemID: s.itemID, Rating: rating,
		IntervalBefore: 0, IntervalAfter: 1,
		HalfLifeBefore: 1.5, HalfLifeAfter: 2.25,
		EaseFactorBefore: 2.5, EaseFactorAfter: 2.5,
		PredictedMastery: 0.5, ReviewedAt: at,
	}
}

func (s *ReviewLogRepositorySuite) TestAppendAndList_NewestFirst() {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, rating := range []int{5, 2, 4} {
		id, err := s.repo.Append(ctx, s.entry(rating, base.Add(time.Duration(i)*time.Hour)))
		s.Require().NoError(err)
		s.Positive(id)
	}

	all, err := s.repo.ListByItem(ctx, 1, s.itemID, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]int{4, 2, 5}, []int{all[0].Rating, all[1].Rating, all[2].Rating})
	s.InDelta(2.25, all[0].HalfLifeAfter, 1e-9)

	limited, err := s.repo.ListByItem(ctx, 1, s.itemID, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)

	other, err := s.repo.ListByItem(ctx, 2, s.itemID, 0)
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *ReviewLogRepositorySuite) TestAppend_RejectsInvalidRating() {
	_, err := s.repo.Append(context.Background(), s.entry(9, time.Now().UTC()))
	s.Error(err)
}

func TestReviewLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewLogRepositorySuite))
}
