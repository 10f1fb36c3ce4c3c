// Package portfolio keeps per-session coin holdings in memory.
package portfolio

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kjannette/coinchat/internal/models"
)

// Store is the holdings backend used by the dispatcher and the API.
type Store interface {
	AddHolding(sessionID, coin string, amount float64)
	GetPortfolio(sessionID string) []models.Holding
	RemoveHolding(sessionID, coin string)
	ClearPortfolio(sessionID string)
	Sessions() int
}

type holding struct {
	coin   string
	amount decimal.Decimal
}

type session struct {
	mu       sync.Mutex
	holdings []holding
}

// MemoryStore lives for the process lifetime. Amounts are accumulated as
// decimals so repeated additions do not drift.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*session)}
}

func (s *MemoryStore) lookup(sessionID string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

func (s *MemoryStore) getOrCreate(sessionID string) *session {
	if sess := s.lookup(sessionID); sess != nil {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	return sess
}

// AddHolding increments an existing holding of coin or appends a new one.
func (s *MemoryStore) AddHolding(sessionID, coin string, amount float64) {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	delta := decimal.NewFromFloat(amount)
	for i := range sess.holdings {
		if sess.holdings[i].coin == coin {
			sess.holdings[i].amount = sess.holdings[i].amount.Add(delta)
			return
		}
	}
	sess.holdings = append(sess.holdings, holding{coin: coin, amount: delta})
}

// GetPortfolio returns a copy of the session's holdings in insertion order.
func (s *MemoryStore) GetPortfolio(sessionID string) []models.Holding {
	out := []models.Holding{}
	sess := s.lookup(sessionID)
	if sess == nil {
		return out
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, h := range sess.holdings {
		out = append(out, models.Holding{Coin: h.coin, Amount: h.amount.InexactFloat64()})
	}
	return out
}

func (s *MemoryStore) RemoveHolding(sessionID, coin string) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i := range sess.holdings {
		if sess.holdings[i].coin == coin {
			sess.holdings = append(sess.holdings[:i], sess.holdings[i+1:]...)
			return
		}
	}
}

func (s *MemoryStore) ClearPortfolio(sessionID string) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.holdings = nil
}

// Sessions reports how many sessions have been created.
func (s *MemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
