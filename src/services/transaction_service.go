package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

// Cache tuning shared by the read-path caches.
const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

type transactionServiceImpl struct {
	repo         repository.TransactionRepository
	machine      *engine.StateMachine
	clock        engine.Clock
	dedupWindow  time.Duration
	historyCache *cache.Cache

	// Per-portfolio locks make the duplicate check plus persist a single
	// logical unit, closing the check-then-act race between two concurrent
	// submissions of the same logical trade.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTransactionService wires the state machine to a repository. The
// historyCache may be shared with other services; it is invalidated on
// every write.
func NewTransactionService(
	repo repository.TransactionRepository,
	machine *engine.StateMachine,
	clock engine.Clock,
	dedupWindow time.Duration,
	historyCache *cache.Cache,
) TransactionService {
	if dedupWindow <= 0 {
		dedupWindow = engine.DefaultDedupWindow
	}
	return &transactionServiceImpl{
		repo:         repo,
		machine:      machine,
		clock:        clock,
		dedupWindow:  dedupWindow,
		historyCache: historyCache,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (s *transactionServiceImpl) portfolioLock(portfolioID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[portfolioID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[portfolioID] = lock
	}
	return lock
}

func (s *transactionServiceImpl) Submit(ctx context.Context, candidate models.Transaction) (models.Transaction, error) {
	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	if candidate.ExecutedAt.IsZero() {
		candidate.ExecutedAt = s.clock.Now()
	}

	lock := s.portfolioLock(candidate.PortfolioID)
	lock.Lock()
	defer lock.Unlock()

	// Recent history spans the dedup window on both sides of the candidate's
	// execution time, so backdated submissions still collide with what they
	// should.
	from := candidate.ExecutedAt.Add(-s.dedupWindow)
	to := candidate.ExecutedAt.Add(s.dedupWindow)
	recent, err := s.repo.ListByPortfolio(ctx, candidate.PortfolioID, from, to)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("loading recent history for %s: %w", candidate.PortfolioID, err)
	}

	accepted, err := s.machine.Submit(candidate, recent)
	if err != nil {
		return models.Transaction{}, err
	}

	if err := s.repo.Create(ctx, accepted); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Same id retried after a persisted first attempt: the stored
			// transaction is authoritative.
			existing, getErr := s.repo.GetByID(ctx, accepted.ID)
			if getErr != nil {
				return models.Transaction{}, fmt.Errorf("fetching existing transaction %s: %w", accepted.ID, getErr)
			}
			logger.L.Info("Submit retried for persisted transaction", "transactionID", accepted.ID, "portfolioID", accepted.PortfolioID)
			return existing, nil
		}
		return models.Transaction{}, fmt.Errorf("persisting transaction %s: %w", accepted.ID, err)
	}

	s.InvalidatePortfolioCache(accepted.PortfolioID)
	logger.L.Info("Transaction accepted",
		"transactionID", accepted.ID,
		"portfolioID", accepted.PortfolioID,
		"symbol", accepted.Symbol,
		"total", accepted.Total,
		"fees", accepted.Fees,
	)
	return accepted, nil
}

func (s *transactionServiceImpl) Transition(ctx context.Context, id string, target models.TransactionStatus) (models.Transaction, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	lock := s.portfolioLock(current.PortfolioID)
	lock.Lock()
	defer lock.Unlock()

	next, err := s.machine.Transition(current, target)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return models.Transaction{}, fmt.Errorf("persisting transition of %s: %w", id, err)
	}

	s.InvalidatePortfolioCache(next.PortfolioID)
	logger.L.Info("Transaction transitioned", "transactionID", id, "from", current.Status, "to", target)
	return next, nil
}

func (s *transactionServiceImpl) History(ctx context.Context, portfolioID string, from, to time.Time) ([]models.Transaction, error) {
	key := historyCacheKey(portfolioID, from, to)
	if s.historyCache != nil {
		if cached, found := s.historyCache.Get(key); found {
			return cached.([]models.Transaction), nil
		}
	}

	txs, err := s.repo.ListByPortfolio(ctx, portfolioID, from, to)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		s.historyCache.Set(key, txs, cache.DefaultExpiration)
	}
	return txs, nil
}

func (s *transactionServiceImpl) InvalidatePortfolioCache(portfolioID string) {
	if s.historyCache == nil {
		return
	}
	prefix := cachePrefix(portfolioID)
	for key := range s.historyCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.historyCache.Delete(key)
		}
	}
}

func cachePrefix(portfolioID string) string {
	return "history:" + portfolioID + ":"
}

func historyCacheKey(portfolioID string, from, to time.Time) string {
	return fmt.Sprintf("%s%d:%d", cachePrefix(portfolioID), from.UnixNano(), to.UnixNano())
}
