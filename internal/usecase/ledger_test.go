package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleGate/internal/domain"
)

func statusPtr(s domain.ReadingStatus) *domain.ReadingStatus { return &s }

func intPtr(v int) *int { return &v }

func TestGetOrCreateReadingState_ReturnsExistingUntouched(t *testing.T) {
	f := newEngineFixture(t)

	first, created, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{PageLeftOff: intPtr(3)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.StatusReading, first.Status)

	second, created, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr(domain.StatusRead), PageLeftOff: intPtr(9)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusReading, second.Status)
	assert.Equal(t, 3, second.PageLeftOff)
}

func TestGetOrCreateReadingState_Validation(t *testing.T) {
	f := newEngineFixture(t)

	_, _, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, 999, ReadingUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{PageLeftOff: intPtr(21)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr("skimmed")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateReadingState_ForwardOnly(t *testing.T) {
	f := newEngineFixture(t)
	f.finish(t, f.open)

	_, err := f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr(domain.StatusReading)})
	require.ErrorIs(t, err, domain.ErrValidation)

	same, err := f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr(domain.StatusRead), PageLeftOff: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, same.Status)
	assert.Equal(t, 20, same.PageLeftOff)

	_, err = f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{PageLeftOff: intPtr(-1)})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.gated.ID, ReadingUpdate{Status: statusPtr(domain.StatusRead)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitReview_RequiresReadStatus(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, 7)
	require.ErrorIs(t, err, domain.ErrValidation, "no reading state yet")

	_, _, err = f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{})
	require.NoError(t, err)
	_, err = f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, 7)
	require.ErrorIs(t, err, domain.ErrValidation, "still reading")

	_, err = f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr(domain.StatusRead)})
	require.NoError(t, err)

	review, err := f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, review.Score)

	again, err := f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, review.ID, again.ID)
	assert.Equal(t, 9, again.Score)

	reviews, err := f.engine.Ledger.ListReviews(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	state, err := f.engine.Ledger.GetReadingState(f.ctx, f.user.UserID, f.open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, state.Status)
}

func TestSubmitReview_ReviewedStatusRejected(t *testing.T) {
	f := newEngineFixture(t)

	_, _, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: statusPtr(domain.StatusReviewed)})
	require.NoError(t, err)

	_, err = f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, 5)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitReview_ScoreRange(t *testing.T) {
	f := newEngineFixture(t)
	f.finish(t, f.open)

	for _, score := range []int{-1, 11} {
		_, err := f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, score)
		assert.ErrorIs(t, err, domain.ErrValidation, "score %d", score)
	}
	for _, score := range []int{0, 10} {
		_, err := f.engine.Ledger.SubmitReview(f.ctx, f.user.UserID, f.open.ID, score)
		assert.NoError(t, err, "score %d", score)
	}
}

func TestDeleteReadingState_RemovesPoints(t *testing.T) {
	f := newEngineFixture(t)
	f.finish(t, f.open)

	require.NoError(t, f.engine.Ledger.DeleteReadingState(f.ctx, f.user.UserID, f.open.ID))
	points, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	assert.Zero(t, points)

	require.ErrorIs(t, f.engine.Ledger.DeleteReadingState(f.ctx, f.user.UserID, f.open.ID), domain.ErrNotFound)
}
