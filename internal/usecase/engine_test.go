package usecase

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/infrastructure/storage/memory"
)

type recordedCatalog struct {
	mode domain.CatalogMode
	size int
}

type stubMetrics struct {
	access  []bool
	catalog []recordedCatalog
}

func (m *stubMetrics) ObserveAccess(allowed bool) { m.access = append(m.access, allowed) }

func (m *stubMetrics) ObserveCatalog(mode domain.CatalogMode, size int) {
	m.catalog = append(m.catalog, recordedCatalog{mode: mode, size: size})
}

type engineFixture struct {
	ctx     context.Context
	store   *memory.Store
	engine  *Engine
	metrics *stubMetrics
	physics domain.ScientificDomain
	biology domain.ScientificDomain
	// open has 10 points and no threshold; gated has 5 points and needs 10.
	open  domain.Article
	gated domain.Article
	user  domain.Principal
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	physics, err := store.CreateDomain(ctx, "Physics")
	require.NoError(t, err)
	biology, err := store.CreateDomain(ctx, "Biology")
	require.NoError(t, err)

	threshold := 10
	open, err := store.CreateArticle(ctx, domain.Article{DomainID: physics.ID, Title: "A", PageCount: 20, Points: 10})
	require.NoError(t, err)
	gated, err := store.CreateArticle(ctx, domain.Article{DomainID: physics.ID, Title: "B", PageCount: 5, Points: 5, MinimumPoints: &threshold})
	require.NoError(t, err)

	m := &stubMetrics{}
	engine := NewEngine(EngineDeps{Store: store, Metrics: m})

	user := domain.Principal{UserID: uuid.New(), Username: "alice"}
	_, err = engine.Progress.EnsureProfile(ctx, user.UserID, user.Username)
	require.NoError(t, err)

	return &engineFixture{
		ctx:     ctx,
		store:   store,
		engine:  engine,
		metrics: m,
		physics: physics,
		biology: biology,
		open:    open,
		gated:   gated,
		user:    user,
	}
}

func (f *engineFixture) interests(t *testing.T, names ...string) []domain.DomainProgress {
	t.Helper()
	progress, err := f.engine.Progress.SetInterests(f.ctx, f.user.UserID, names)
	require.NoError(t, err)
	return progress
}

func (f *engineFixture) finish(t *testing.T, article domain.Article) {
	t.Helper()
	read := domain.StatusRead
	_, _, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, article.ID, ReadingUpdate{Status: &read})
	require.NoError(t, err)
}

func articleIDs(articles []domain.Article) []int64 {
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestEngine_ReadingUnlocksGatedArticle(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")

	visible, err := f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.Equal(t, []int64{f.open.ID}, articleIDs(visible))

	locked, err := f.engine.Eligibility.LockedCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.Equal(t, []int64{f.gated.ID}, articleIDs(locked))

	allowed, err := f.engine.Eligibility.CanAccess(f.ctx, f.user, f.gated)
	require.NoError(t, err)
	require.False(t, allowed)

	f.finish(t, f.open)

	points, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	require.Equal(t, 10, points)

	visible, err = f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{f.open.ID, f.gated.ID}, articleIDs(visible))

	locked, err = f.engine.Eligibility.LockedCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.Empty(t, locked)

	allowed, err = f.engine.Eligibility.CanAccess(f.ctx, f.user, f.gated)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, []bool{false, true}, f.metrics.access)
}

func TestEngine_CurrentPointsCountsOnlyFinishedStates(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")

	reading := domain.StatusReading
	_, _, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: &reading})
	require.NoError(t, err)

	points, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	require.Zero(t, points)

	read := domain.StatusRead
	_, err = f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, f.open.ID, ReadingUpdate{Status: &read})
	require.NoError(t, err)

	reviewed := domain.StatusReviewed
	_, _, err = f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, f.gated.ID, ReadingUpdate{Status: &reviewed})
	require.NoError(t, err)

	points, err = f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.physics.ID)
	require.NoError(t, err)
	require.Equal(t, 15, points)

	other, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, f.biology.ID)
	require.NoError(t, err)
	require.Zero(t, other)
}

func TestEngine_NoInterestsMeansEmptyCatalog(t *testing.T) {
	f := newEngineFixture(t)

	visible, err := f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
	require.NoError(t, err)
	require.Empty(t, visible)

	allowed, err := f.engine.Eligibility.CanAccess(f.ctx, f.user, f.open)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, []recordedCatalog{{mode: domain.CatalogUnlocked, size: 0}}, f.metrics.catalog)
}

func TestEngine_AnonymousIsDenied(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics")

	allowed, err := f.engine.Eligibility.CanAccess(f.ctx, domain.Anonymous, f.open)
	require.NoError(t, err)
	require.False(t, allowed)

	_, err = f.engine.Catalog.Get(f.ctx, domain.Anonymous, f.open.ID)
	require.ErrorIs(t, err, domain.ErrPermission)
}

func TestEngine_CanAccessAgreesWithVisibleCatalog(t *testing.T) {
	f := newEngineFixture(t)
	f.interests(t, "Physics", "Biology")

	zero := 0
	bio, err := f.store.CreateArticle(f.ctx, domain.Article{DomainID: f.biology.ID, Title: "Cells", Points: 1, MinimumPoints: &zero})
	require.NoError(t, err)

	check := func() {
		visible, err := f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
		require.NoError(t, err)
		ids := make(map[int64]bool)
		for _, id := range articleIDs(visible) {
			ids[id] = true
		}
		for _, a := range []domain.Article{f.open, f.gated, bio} {
			allowed, err := f.engine.Eligibility.CanAccess(f.ctx, f.user, a)
			require.NoError(t, err)
			require.Equal(t, ids[a.ID], allowed, "article %d", a.ID)
		}
	}

	check()
	f.finish(t, f.open)
	check()
	f.interests(t, "Biology")
	check()
}

func TestEngine_CanAccessAgreesWithVisibleCatalogOverRandomHistories(t *testing.T) {
	f := newEngineFixture(t)

	threshold := func(v int) *int { return &v }
	articles := []domain.Article{f.open, f.gated}
	for _, a := range []domain.Article{
		{DomainID: f.biology.ID, Title: "Cells", PageCount: 3, Points: 4},
		{DomainID: f.biology.ID, Title: "Genes", PageCount: 3, Points: 6, MinimumPoints: threshold(4)},
		{DomainID: f.biology.ID, Title: "Proteins", PageCount: 3, Points: 2, MinimumPoints: threshold(10)},
		{DomainID: f.physics.ID, Title: "Optics", PageCount: 3, Points: 1, MinimumPoints: threshold(0)},
		{DomainID: f.physics.ID, Title: "Quanta", PageCount: 3, Points: 3, MinimumPoints: threshold(16)},
	} {
		created, err := f.store.CreateArticle(f.ctx, a)
		require.NoError(t, err)
		articles = append(articles, created)
	}
	domainNames := []string{"Physics", "Biology"}
	domainIDs := []int64{f.physics.ID, f.biology.ID}

	rng := rand.New(rand.NewPCG(7, 42))
	earned := map[int64]int{}
	finished := map[int64]bool{}
	statuses := []domain.ReadingStatus{domain.StatusReading, domain.StatusRead, domain.StatusReviewed}

	for step := 0; step < 60; step++ {
		switch rng.IntN(4) {
		case 0, 1:
			a := articles[rng.IntN(len(articles))]
			status := statuses[rng.IntN(len(statuses))]
			state, _, err := f.engine.Ledger.GetOrCreateReadingState(f.ctx, f.user.UserID, a.ID, ReadingUpdate{Status: &status})
			require.NoError(t, err)
			if state.Status.CanAdvanceTo(status) {
				_, err = f.engine.Ledger.UpdateReadingState(f.ctx, f.user.UserID, a.ID, ReadingUpdate{Status: &status})
				require.NoError(t, err)
				if status.Finished() && !finished[a.ID] {
					finished[a.ID] = true
					earned[a.DomainID] += a.Points
				}
			}
		case 2:
			var names []string
			for _, name := range domainNames {
				if rng.IntN(2) == 0 {
					names = append(names, name)
				}
			}
			f.interests(t, names...)
		case 3:
			id := domainIDs[rng.IntN(len(domainIDs))]
			if _, err := f.store.GetProgress(f.ctx, f.user.UserID, id); err == nil {
				require.NoError(t, f.engine.Progress.Deactivate(f.ctx, f.user.UserID, id))
			}
		}

		for _, id := range domainIDs {
			points, err := f.engine.Progress.CurrentPoints(f.ctx, f.user.UserID, id)
			require.NoError(t, err)
			require.Equal(t, earned[id], points, "step %d domain %d", step, id)
		}

		visible, err := f.engine.Eligibility.VisibleCatalog(f.ctx, f.user.UserID)
		require.NoError(t, err)
		ids := make(map[int64]bool)
		for _, id := range articleIDs(visible) {
			ids[id] = true
		}
		for _, a := range articles {
			allowed, err := f.engine.Eligibility.CanAccess(f.ctx, f.user, a)
			require.NoError(t, err)
			require.Equal(t, ids[a.ID], allowed, "step %d article %d", step, a.ID)
		}
	}
}
