package storage

import (
	"context"
	"sync"

	"tally/internal/core"
)

// MemoryStore keeps all collections in process memory. It is the default
// backend for local runs and the store tests exercise services against.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	recurring    []core.RecurringTransaction
	budgets      []core.Budget
	categories   []core.Category
	settings     *core.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

func (s *MemoryStore) SaveTransactions(_ context.Context, transactions []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]core.Transaction(nil), transactions...)
	return nil
}

func (s *MemoryStore) RecurringTransactions(_ context.Context) ([]core.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.RecurringTransaction(nil), s.recurring...), nil
}

func (s *MemoryStore) SaveRecurringTransactions(_ context.Context, templates []core.RecurringTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recurring = append([]core.RecurringTransaction(nil), templates...)
	return nil
}

func (s *MemoryStore) Budgets(_ context.Context) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *MemoryStore) SaveBudgets(_ context.Context, budgets []core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append([]core.Budget(nil), budgets...)
	return nil
}

func (s *MemoryStore) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *MemoryStore) SaveCategories(_ context.Context, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]core.Category(nil), categories...)
	return nil
}

func (s *MemoryStore) Settings(_ context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *MemoryStore) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}
