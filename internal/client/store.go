package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const (
	pageCacheSize = 64
	dashboardKey  = "dashboard"
)

// Store is an optional caching layer over the API client. It remembers
// the most recent filtered pages and the dashboard snapshot, invalidates
// both on every write, and tracks the latest fetch error per view.
type Store struct {
	client    *Client
	pages     *cache.LRUCache[core.Page]
	dashboard *cache.LRUCache[core.DashboardStats]

	mu           sync.Mutex
	listErr      string
	dashboardErr string
}

// NewStore wraps the client with page and dashboard caches sharing ttl.
func NewStore(c *Client, ttl time.Duration) *Store {
	return &Store{
		client:    c,
		pages:     cache.NewLRUCache[core.Page](pageCacheSize, ttl),
		dashboard: cache.NewLRUCache[core.DashboardStats](1, ttl),
	}
}

// Transactions returns the page for the filter, from cache when fresh.
func (s *Store) Transactions(ctx context.Context, f core.Filter) (core.Page, error) {
	f = f.Normalize()
	key := filterKey(f)

	if page, ok := s.pages.Get(key); ok {
		return page, nil
	}

	page, err := s.client.ListTransactions(ctx, f)
	if err != nil {
		s.setListError(err)
		return core.Page{}, err
	}

	s.pages.Set(key, page)
	s.setListError(nil)
	return page, nil
}

// Dashboard returns the aggregate snapshot, from cache when fresh.
func (s *Store) Dashboard(ctx context.Context) (core.DashboardStats, error) {
	if stats, ok := s.dashboard.Get(dashboardKey); ok {
		return stats, nil
	}

	stats, err := s.client.DashboardData(ctx)
	if err != nil {
		s.setDashboardError(err)
		return core.DashboardStats{}, err
	}

	s.dashboard.Set(dashboardKey, stats)
	s.setDashboardError(nil)
	return stats, nil
}

// Create adds a transaction and drops every cached view.
func (s *Store) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.client.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidate()
	return created, nil
}

// Update patches a transaction and drops every cached view.
func (s *Store) Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := s.client.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidate()
	return updated, nil
}

// Delete removes a transaction and drops every cached view.
func (s *Store) Delete(ctx context.Context, id int64) (core.Transaction, error) {
	deleted, err := s.client.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidate()
	return deleted, nil
}

// LastListError is the message of the most recent failed page fetch, or
// empty after a successful one.
func (s *Store) LastListError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

// LastDashboardError is the message of the most recent failed dashboard
// fetch, or empty after a successful one.
func (s *Store) LastDashboardError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboardErr
}

func (s *Store) invalidate() {
	s.pages.Clear()
	s.dashboard.Clear()
}

func (s *Store) setListError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = errorMessage(err)
}

func (s *Store) setDashboardError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboardErr = errorMessage(err)
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func filterKey(f core.Filter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d",
		f.Type, f.Category, dateKey(f.StartDate), dateKey(f.EndDate),
		f.Search, f.Page, f.PageSize)
}

func dateKey(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
