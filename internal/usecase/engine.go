package usecase

import (
	"log/slog"

	"ArticleGate/internal/ports"
)

// EngineDeps wires every use case to one store.
type EngineDeps struct {
	Store   ports.Store
	Blobs   ports.BlobResolver
	Content ports.ContentPolicy
	Metrics ports.EligibilityMetrics
	Logger  *slog.Logger
}

// Engine groups the four components sharing one store.
type Engine struct {
	Domains     *DomainRegistry
	Progress    *ProgressTracker
	Eligibility *Eligibility
	Ledger      *Ledger
	Catalog     *Catalog
}

// NewEngine builds the components in dependency order.
func NewEngine(deps EngineDeps) *Engine {
	logger := orDiscard(deps.Logger)
	store := deps.Store

	domains := NewDomainRegistry(store, logger.With("component", "domains"))
	progress := NewProgressTracker(ProgressDeps{
		Tx:       store,
		Domains:  domains,
		Profiles: store,
		Progress: store,
		Points:   store,
		Logger:   logger.With("component", "progress"),
	})
	eligibility := NewEligibility(EligibilityDeps{
		Progress: progress,
		Records:  store,
		Articles: store,
		Metrics:  deps.Metrics,
		Logger:   logger.With("component", "eligibility"),
	})
	ledger := NewLedger(LedgerDeps{
		Tx:       store,
		Ledger:   store,
		Articles: store,
		Logger:   logger.With("component", "ledger"),
	})
	catalog := NewCatalog(CatalogDeps{
		Articles:    store,
		Domains:     domains,
		Eligibility: eligibility,
		Blobs:       deps.Blobs,
		Content:     deps.Content,
		Logger:      logger.With("component", "catalog"),
	})

	return &Engine{
		Domains:     domains,
		Progress:    progress,
		Eligibility: eligibility,
		Ledger:      ledger,
		Catalog:     catalog,
	}
}
