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

type ItemRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	repo   repository.ItemRepository
	deckID int64
	now    time.Time
}

func (s *ItemRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewItemRepository(s.db)
	s.deckID = testutil.InsertDeck(s.T(), s.db, 1, "Glossary")
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *ItemRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ItemRepositorySuite) newItem(front string, createdAt time.Time) models.Item {
	return models.Item{
		LearnerID:    1,
		DeckID:       s.deckID,
		FrontText:    front,
		BackText:     front + "-back",
		DueAt:        createdAt,
		EaseFactor:   2.5,
		HalfLifeDays: 1.5,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func (s *ItemRepositorySuite) insert(it models.Item) int64 {
	created, err := s.repo.InsertIfAbsent(context.Background(), it)
	s.Require().NoError(err)
	s.Require().True(created)
	var id int64
	s.Require().NoError(s.db.QueryRow(`SELECT id FROM items WHERE front_text = ? AND deck_id = ?`, it.FrontText, it.DeckID).Scan(&id))
	return id
}

func (s *ItemRepositorySuite) TestInsertIfAbsent_Idempotent() {
	ctx := context.Background()
	it := s.newItem("mba'éichapa", s.now)

	created, err := s.repo.InsertIfAbsent(ctx, it)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.repo.InsertIfAbsent(ctx, it)
	s.Require().NoError(err)
	s.False(created)

	n, err := s.repo.CountNew(ctx, 1, s.deckID)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ItemRepositorySuite) TestGet_RoundTripAndOwnership() {
	ctx := context.Background()
	id := s.insert(s.newItem("jagua", s.now))

	got, err := s.repo.Get(ctx, 1, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("jagua", got.FrontText)
	s.Equal("jagua-back", got.BackText)
	s.True(got.DueAt.Equal(s.now))
	s.Equal(1.5, got.HalfLifeDays)
	s.True(got.IsNew())

	other, err := s.repo.Get(ctx, 2, id)
	s.Require().NoError(err)
	s.Nil(other)

	missing, err := s.repo.Get(ctx, 1, 9999)
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *ItemRepositorySuite) TestUpdateSchedule() {
	ctx := context.Background()
	id := s.insert(s.newItem("kuarahy", s.now))

	it, err := s.repo.Get(ctx, 1, id)
	s.Require().NoError(err)
	it.IntervalDays = 4
	it.DueAt = s.now.Add(96 * time.Hour)
	it.Repetitions = 1
	it.Difficulty = -0.05
	it.HalfLifeDays = 2.25
	it.UpdatedAt = s.now
	s.Require().NoError(s.repo.UpdateSchedule(ctx, *it))

	got, err := s.repo.Get(ctx, 1, id)
	s.Require().NoError(err)
	s.Equal(4, got.IntervalDays)
	s.Equal(1, got.Repetitions)
	s.InDelta(-0.05, got.Difficulty, 1e-9)
	s.InDelta(2.25, got.HalfLifeDays, 1e-9)
	s.True(got.DueAt.Equal(s.now.Add(96 * time.Hour)))
	s.False(got.IsNew())
}

func (s *ItemRepositorySuite) TestNextDueReview_OrderAndFilters() {
	ctx := context.Background()

	// new items are never reviews even when due
	s.insert(s.newItem("new", s.now.Add(-72*time.Hour)))

	later := s.newItem("later", s.now)
	later.Repetitions = 2
	later.DueAt = s.now.Add(-1 * time.Hour)
	s.insert(later)

	earliest := s.newItem("earliest", s.now)
	earliest.Repetitions = 1
	earliest.DueAt = s.now.Add(-48 * time.Hour)
	earliestID := s.insert(earliest)

	future := s.newItem("future", s.now)
	future.Repetitions = 3
	future.DueAt = s.now.Add(24 * time.Hour)
	s.insert(future)

	got, err := s.repo.NextDueReview(ctx, 1, s.deckID, s.now)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(earliestID, got.ID)

	n, err := s.repo.CountDueReviews(ctx, 1, s.deckID, s.now)
	s.Require().NoError(err)
	s.Equal(2, n)

	ok, err := s.repo.SetSuspended(ctx, 1, earliestID, true, s.now)
	s.Require().NoError(err)
	s.True(ok)

	got, err = s.repo.NextDueReview(ctx, 1, s.deckID, s.now)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("later", got.FrontText)
}

func (s *ItemRepositorySuite) TestNextDueReview_IncludesLapsedItems() {
	ctx := context.Background()
	lapsed := s.newItem("lapsed", s.now)
	lapsed.Lapses = 1
	lapsed.DueAt = s.now.Add(-time.Minute)
	id := s.insert(lapsed)

	got, err := s.repo.NextDueReview(ctx, 1, s.deckID, s.now)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(id, got.ID)

	fresh, err := s.repo.NextNewItem(ctx, 1, s.deckID)
	s.Require().NoError(err)
	s.Nil(fresh)
}

func (s *ItemRepositorySuite) TestNextDueReview_TieBreaksOnID() {
	ctx := context.Background()
	var ids []int64
	for _, front := range []string{"a", "b"} {
		it := s.newItem(front, s.now)
		it.Repetitions = 1
		it.DueAt = s.now.Add(-time.Hour)
		ids = append(ids, s.insert(it))
	}

	got, err := s.repo.NextDueReview(ctx, 1, s.deckID, s.now)
	s.Require().NoError(err)
	s.Equal(ids[0], got.ID)
}

func (s *ItemRepositorySuite) TestNextNewItem_OldestFirst() {
	ctx := context.Background()
	s.insert(s.newItem("second", s.now.Add(-time.Hour)))
	firstID := s.insert(s.newItem("first", s.now.Add(-2*time.Hour)))

	got, err := s.repo.NextNewItem(ctx, 1, s.deckID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(firstID, got.ID)

	n, err := s.repo.CountNew(ctx, 1, s.deckID)
	s.Require().NoError(err)
	s.Equal(2, n)

	none, err := s.repo.NextNewItem(ctx, 2, s.deckID)
	s.Require().NoError(err)
	s.Nil(none)
}

func (s *ItemRepositorySuite) TestSetSuspended_UnknownItem() {
	ok, err := s.repo.SetSuspended(context.Background(), 1, 4242, true, s.now)
	s.Require().NoError(err)
	s.False(ok)
}

func TestItemRepositorySuite(t *testing.T) {
	suite.Run(t, new(ItemRepositorySuite))
}
