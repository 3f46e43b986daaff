package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/infrastructure/storage/memory"
)

func progressNames(progress []domain.DomainProgress) []string {
	names := make([]string, 0, len(progress))
	for _, p := range progress {
		names = append(names, p.Domain.Name)
	}
	return names
}

func TestSetInterests_ReplacesActiveSet(t *testing.T) {
	f := newEngineFixture(t)

	active := f.interests(t, "Physics", "Biology", "Physics")
	assert.Equal(t, []string{"Biology", "Physics"}, progressNames(active))

	active = f.interests(t, "Biology")
	assert.Equal(t, []string{"Biology"}, progressNames(active))

	view, err := f.engine.Progress.Profile(f.ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Biology"}, view.Interests)
	require.Len(t, view.Progress, 2)
	assert.False(t, view.Progress[1].Active, "Physics kept as inactive history")

	active = f.interests(t)
	assert.Empty(t, active)
}

func TestSetInterests_UnknownDomainChangesNothing(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")

	_, err := f.engine.Progress.SetInterests(f.ctx, f.user.UserID, []string{"Biology", "Alchemy"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	active, err := f.engine.Progress.ListActive(f.ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics"}, progressNames(active))
}

type failingDeactivate struct {
	*memory.Store
}

func (failingDeactivate) DeactivateProgress(context.Context, uuid.UUID, []int64) error {
	return errors.New("disk full")
}

func TestSetInterests_RollsBackPartialActivation(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")

	broken := failingDeactivate{Store: f.store}
	tracker := NewProgressTracker(ProgressDeps{
		Tx:       f.store,
		Domains:  f.engine.Domains,
		Profiles: f.store,
		Progress: broken,
		Points:   f.store,
	})

	_, err := tracker.SetInterests(f.ctx, f.user.UserID, []string{"Biology"})
	require.Error(t, err)

	active, err := f.engine.Progress.ListActive(f.ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics"}, progressNames(active), "Biology activation must be rolled back")
}

func TestSetInterests_RequiresProfile(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Progress.SetInterests(f.ctx, uuid.New(), []string{"Physics"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	f := newEngineFixture(t)

	again, err := f.engine.Progress.EnsureProfile(f.ctx, f.user.UserID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	_, err = f.engine.Progress.EnsureProfile(f.ctx, uuid.Nil, "x")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestReactivation_KeepsEarnedPoints(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")
	f.finish(t, f.open)

	f.interests(t)
	visible, err := f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	active := f.interests(t, "Physics")
	require.Len(t, active, 1)
	assert.Equal(t, 10, active[0].CurrentPoints)

	allowed, err := f.engine.Eligibility.CanAccess(f.ctx, f.user, f.gated)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDeactivateVersusPurge(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")
	f.finish(t, f.open)

	require.NoError(t, f.engine.Progress.Deactivate(f.ctx, f.user.UserID, f.physics.ID))
	rec, err := f.store.GetProgress(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	assert.False(t, rec.Active)

	require.NoError(t, f.engine.Progress.Purge(f.ctx, f.user.UserID, f.physics.ID))
	_, err = f.store.GetProgress(f.ctx, f.user.UserID, f.physics.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Reading history survives a purge, so re-adding the domain restores the points.
	points, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, points)

	require.ErrorIs(t, f.engine.Progress.Purge(f.ctx, f.user.UserID, f.physics.ID), domain.ErrNotFound)
	require.ErrorIs(t, f.engine.Progress.Deactivate(f.ctx, f.user.UserID, f.biology.ID), domain.ErrNotFound)
}

func TestRegister_ProvisionsProfileAndInterests(t *testing.T) {
	f := newEngineFixture(t)
	newcomer := uuid.New()

	view, err := f.engine.Progress.Register(f.ctx, newcomer, " bob ", []string{"Physics"})
	require.NoError(t, err)
	assert.Equal(t, "bob", view.Profile.Username)
	assert.Equal(t, []string{"Physics"}, view.Interests)

	again, err := f.engine.Progress.Register(f.ctx, newcomer, "robert", []string{"Biology"})
	require.NoError(t, err)
	assert.Equal(t, "bob", again.Profile.Username)
	assert.Equal(t, []string{"Biology"}, again.Interests)
}

func TestRegister_UnknownDomainLeavesNoProfile(t *testing.T) {
	f := newEngineFixture(t)
	newcomer := uuid.New()

	_, err := f.engine.Progress.Register(f.ctx, newcomer, "carol", []string{"Physics", "Alchemy"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.store.GetProfile(f.ctx, newcomer)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetProgress(f.ctx, newcomer, f.physics.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
