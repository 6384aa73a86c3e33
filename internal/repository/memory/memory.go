// Package memory provides in-memory implementations of the linking store
// contracts. They back the server when no database is configured (local
// development) and double as fakes in service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/service/linking"
)

// ListingStore is a map-backed linking.ListingStore.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

// NewListingStore creates an empty listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing)}
}

// Add seeds a listing, overwriting any previous record with the same id.
func (s *ListingStore) Add(l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

func (s *ListingStore) Get(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, linking.ErrNotFound
	}
	cp := l
	return &cp, nil
}

func (s *ListingStore) ByAuthor(_ context.Context, accountID string, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Listing
	for _, l := range s.listings {
		if l.AuthorAccountID == accountID && statusMatch(l.Status, statuses) {
			out = append(out, l)
		}
	}
	sortListings(out)
	return out, nil
}

func (s *ListingStore) ByIDs(_ context.Context, ids []string, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Listing
	for _, id := range ids {
		l, ok := s.listings[id]
		if ok && statusMatch(l.Status, statuses) {
			out = append(out, l)
		}
	}
	sortListings(out)
	return out, nil
}

func (s *ListingStore) SetAuthor(_ context.Context, listingID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return linking.ErrNotFound
	}
	l.AuthorAccountID = accountID
	l.UpdatedAt = time.Now()
	s.listings[listingID] = l
	return nil
}

func statusMatch(st domain.ListingStatus, statuses []domain.ListingStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if want == domain.ListingAny || want == st {
			return true
		}
	}
	return false
}

// sortListings keeps store-native order deterministic across runs.
func sortListings(list []domain.Listing) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// Directory is a map-backed linking.Directory with unique emails and logins.
type Directory struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	passwords map[string]string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		accounts:  make(map[string]domain.Account),
		passwords: make(map[string]string),
	}
}

// Add seeds an account directly, bypassing uniqueness checks.
func (d *Directory) Add(a domain.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[a.ID] = a
}

// Password returns the stored credential for an account id. Test helper.
func (d *Directory) Password(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.passwords[id]
}

func (d *Directory) Account(_ context.Context, id string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[id]
	if !ok {
		return nil, linking.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (d *Directory) AccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := a
			return &cp, nil
		}
	}
	return nil, linking.ErrNotFound
}

func (d *Directory) AccountByLogin(_ context.Context, login string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.accounts {
		if a.Login == login {
			cp := a
			return &cp, nil
		}
	}
	return nil, linking.ErrNotFound
}

func (d *Directory) Create(_ context.Context, a *domain.Account, password string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return "", fmt.Errorf("email %s already registered", a.Email)
		}
		if existing.Login == a.Login {
			return "", fmt.Errorf("login %s already taken", a.Login)
		}
	}
	cp := *a
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	d.accounts[cp.ID] = cp
	d.passwords[cp.ID] = password
	return cp.ID, nil
}

func (d *Directory) Update(_ context.Context, a *domain.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.accounts[a.ID]
	if !ok {
		return linking.ErrNotFound
	}
	existing.DisplayName = a.DisplayName
	existing.Role = a.Role
	existing.UpdatedAt = time.Now()
	d.accounts[a.ID] = existing
	return nil
}

func (d *Directory) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[id]; !ok {
		return linking.ErrNotFound
	}
	delete(d.accounts, id)
	delete(d.passwords, id)
	return nil
}

// AttributeStore is a map-backed linking.AttributeStore.
type AttributeStore struct {
	mu    sync.RWMutex
	attrs map[attrKey]string
}

type attrKey struct {
	entityType string
	entityID   string
	name       string
}

// NewAttributeStore creates an empty attribute store.
func NewAttributeStore() *AttributeStore {
	return &AttributeStore{attrs: make(map[attrKey]string)}
}

func (s *AttributeStore) Get(_ context.Context, entityType, entityID, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[attrKey{entityType, entityID, name}]
	if !ok {
		return "", linking.ErrNotFound
	}
	return v, nil
}

func (s *AttributeStore) Set(_ context.Context, entityType, entityID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[attrKey{entityType, entityID, name}] = value
	return nil
}

func (s *AttributeStore) Delete(_ context.Context, entityType, entityID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, attrKey{entityType, entityID, name})
	return nil
}

func (s *AttributeStore) Find(_ context.Context, entityType, name string) ([]domain.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attribute
	for k, v := range s.attrs {
		if k.entityType == entityType && k.name == name {
			out = append(out, domain.Attribute{
				EntityType: k.entityType,
				EntityID:   k.entityID,
				Name:       k.name,
				Value:      v,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}
