package session

import (
	"context"
	"errors"

	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/models"

	"github.com/google/uuid"
)

const defaultMaxAttempts = 3

// Manager loads a snapshot, applies one transition and saves the result. A version
// conflict reloads and reapplies the transition, so a stale response is still
// detected against the newest state.
type Manager struct {
	store       Store
	analyzer    Analyzer
	log         logger.Logger
	maxAttempts int
}

func NewManager(store Store, analyzer Analyzer, log logger.Logger) *Manager {
	return &Manager{
		store:       store,
		analyzer:    analyzer,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// Create starts a new session in AwaitingSiteData.
func (m *Manager) Create(ctx context.Context) (Snapshot, error) {
	snap := New(uuid.New().String())
	if err := m.store.Save(ctx, snap); err != nil {
		return Snapshot{}, m.wrapStoreError(snap.id, err)
	}
	m.log.Debug("session created", map[string]interface{}{"sessionId": snap.id})
	return snap, nil
}

func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	snap, err := m.store.Get(ctx, id)
	if err != nil {
		return Snapshot{}, m.wrapStoreError(id, err)
	}
	return snap, nil
}

// BeginLookup starts a lookup on an existing session, or on a new one when id is
// empty. Invalid sites are rejected before anything is stored.
func (m *Manager) BeginLookup(ctx context.Context, id string, site models.SiteParameters) (Snapshot, error) {
	if err := site.Validate(); err != nil {
		return Snapshot{}, err
	}
	if id == "" {
		created, err := m.Create(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		id = created.id
	}
	return m.apply(ctx, id, "beginLookup", func(s Snapshot) (Snapshot, error) {
		return s.BeginLookup(site)
	})
}

func (m *Manager) CompleteLookup(ctx context.Context, id, requestID string, estimate models.GenerationEstimate) (Snapshot, error) {
	return m.apply(ctx, id, "completeLookup", func(s Snapshot) (Snapshot, error) {
		return s.CompleteLookup(requestID, estimate)
	})
}

func (m *Manager) FailLookup(ctx context.Context, id, requestID string) (Snapshot, error) {
	return m.apply(ctx, id, "failLookup", func(s Snapshot) (Snapshot, error) {
		return s.FailLookup(requestID)
	})
}

func (m *Manager) Back(ctx context.Context, id string) (Snapshot, error) {
	return m.apply(ctx, id, "back", func(s Snapshot) (Snapshot, error) {
		return s.Back(), nil
	})
}

func (m *Manager) Compute(ctx context.Context, id string, fin models.FinancialParameters) (Snapshot, error) {
	return m.apply(ctx, id, "compute", func(s Snapshot) (Snapshot, error) {
		return s.Compute(fin, m.analyzer)
	})
}

func (m *Manager) apply(ctx context.Context, id, action string, transition func(Snapshot) (Snapshot, error)) (Snapshot, error) {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		current, err := m.store.Get(ctx, id)
		if err != nil {
			return Snapshot{}, m.wrapStoreError(id, err)
		}

		next, err := transition(current)
		if err != nil {
			return Snapshot{}, err
		}

		err = m.store.Save(ctx, next)
		if errors.Is(err, ErrVersionConflict) {
			m.log.Warn("session version conflict, retrying", map[string]interface{}{
				"sessionId": id,
				"action":    action,
				"attempt":   attempt,
			})
			continue
		}
		if err != nil {
			return Snapshot{}, m.wrapStoreError(id, err)
		}

		m.log.Debug("session transition applied", map[string]interface{}{
			"sessionId": id,
			"action":    action,
			"from":      string(current.state),
			"to":        string(next.state),
			"version":   next.version,
		})
		return next, nil
	}
	return Snapshot{}, versionConflict(id)
}

func (m *Manager) wrapStoreError(id string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return notFound(id)
	case errors.Is(err, ErrVersionConflict):
		return versionConflict(id)
	}
	return storeFailure(err)
}
