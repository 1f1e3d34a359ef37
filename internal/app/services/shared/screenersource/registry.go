package screenersource

import (
	"context"
	"os"
	"sync"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/screener"

	"go.uber.org/zap"
)

type cacheEntry struct {
	screener *screener.Screener
	profile  screener.Profile
	loadedAt time.Time
}

// Registry parses screeners from a source and caches them. Unknown screener
// types are served the default screener with the default profile.
type Registry struct {
	source contracts.ScreenerSource
	table  *screener.RuleTable
	log    *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewRegistry caches parsed screeners for ttl; a zero ttl caches until
// Invalidate is called.
func NewRegistry(source contracts.ScreenerSource, table *screener.RuleTable, ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		source: source,
		table:  table,
		log:    log,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// LoadRuleTable reads a YAML rule table from path, or returns the embedded
// one when path is empty.
func LoadRuleTable(path string) (*screener.RuleTable, error) {
	if path == "" {
		return screener.DefaultRuleTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, exceptions.ErrRuleTableConfiguration(err)
	}
	table, err := screener.LoadRuleTable(raw)
	if err != nil {
		return nil, exceptions.ErrRuleTableConfiguration(err)
	}
	return table, nil
}

func (r *Registry) RuleTable() *screener.RuleTable {
	return r.table
}

func (r *Registry) Get(ctx context.Context, screenerType string) (*screener.Screener, screener.Profile, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	key, err := NormalizeType(screenerType)
	if err != nil {
		return nil, screener.Profile{}, err
	}

	r.mu.RLock()
	entry, cached := r.cache[key]
	r.mu.RUnlock()
	if cached && r.fresh(entry) {
		return entry.screener, entry.profile, nil
	}

	raw, err := r.source.Fetch(ctx, key)
	switch {
	case IsNotFound(err):
		r.log.Warn("Registry.Get screener not configured, serving default screener",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingScreenerTypeKey, key),
			zap.String(constvars.LoggingScreenerSourceKey, r.source.Name()),
		)
		sc := screener.DefaultScreener()
		profile, _ := r.table.Profile(screener.DefaultScreenerType)
		r.store(key, cacheEntry{screener: sc, profile: profile, loadedAt: r.now()})
		return sc, profile, nil
	case err != nil:
		if cached {
			r.log.Warn("Registry.Get source unavailable, serving cached screener",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingScreenerTypeKey, key),
				zap.Error(err),
			)
			return entry.screener, entry.profile, nil
		}
		r.log.Error("Registry.Get error fetching screener",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingScreenerTypeKey, key),
			zap.Error(err),
		)
		return nil, screener.Profile{}, err
	}

	sc, err := screener.ParseSchema(raw)
	if err != nil {
		r.log.Error("Registry.Get screener definition is invalid",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingScreenerTypeKey, key),
			zap.Error(err),
		)
		return nil, screener.Profile{}, exceptions.ErrScreenerConfiguration(err)
	}
	if sc.Type == "" {
		sc.Type = key
	}
	for _, cerr := range sc.ConfigurationErrors() {
		r.log.Warn("Registry.Get screener question is misconfigured",
			zap.String(constvars.LoggingScreenerTypeKey, key),
			zap.String(constvars.LoggingQuestionIDKey, string(cerr.QuestionID)),
			zap.String("reason", cerr.Reason),
		)
	}

	profile, known := r.table.Profile(sc.Type)
	if !known {
		r.log.Info("Registry.Get no rule profile for screener, using default profile",
			zap.String(constvars.LoggingScreenerTypeKey, sc.Type),
		)
	}
	r.store(key, cacheEntry{screener: sc, profile: profile, loadedAt: r.now()})
	return sc, profile, nil
}

// Invalidate drops the cached copy of screenerType.
func (r *Registry) Invalidate(screenerType string) {
	key, err := NormalizeType(screenerType)
	if err != nil {
		return
	}
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}

func (r *Registry) fresh(e cacheEntry) bool {
	return r.ttl <= 0 || r.now().Sub(e.loadedAt) < r.ttl
}

func (r *Registry) store(key string, e cacheEntry) {
	r.mu.Lock()
	r.cache[key] = e
	r.mu.Unlock()
}
