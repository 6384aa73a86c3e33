package linking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ignite/trader-link/internal/cache"
	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/errlog"
	"github.com/ignite/trader-link/internal/repository/memory"
	"github.com/ignite/trader-link/internal/service/linking"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fixture wires a service over in-memory stores with a fixed clock.
type fixture struct {
	listings *memory.ListingStore
	accounts *memory.Directory
	attrs    linking.AttributeStore
	cache    *cache.Memory
	notifier *fakeNotifier
	events   *eventRecorder
	errs     *errlog.Log
	svc      *linking.Service
}

type fixtureOpt func(*fixture)

// withAttrs swaps the attribute store, typically for failure injection.
func withAttrs(attrs linking.AttributeStore) fixtureOpt {
	return func(f *fixture) { f.attrs = attrs }
}

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	f := &fixture{
		listings: memory.NewListingStore(),
		accounts: memory.NewDirectory(),
		attrs:    memory.NewAttributeStore(),
		cache:    cache.NewMemory(0, nil),
		notifier: &fakeNotifier{},
		events:   &eventRecorder{},
		errs:     errlog.NewLog(50, nil),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.svc = linking.NewService(linking.Deps{
		Listings: f.listings,
		Accounts: f.accounts,
		Attrs:    f.attrs,
		Cache:    f.cache,
		Notifier: f.notifier,
		Events:   f.events,
		Errors:   f.errs,
		Clock:    func() time.Time { return testEpoch },
		LoginURL: "https://portal.example.com/login",
	})
	return f
}

func (f *fixture) addListing(t *testing.T, id, title string, status domain.ListingStatus, author, contactEmail string, age time.Duration) {
	t.Helper()
	f.listings.Add(domain.Listing{
		ID:              id,
		Title:           title,
		Status:          status,
		AuthorAccountID: author,
		CreatedAt:       testEpoch.Add(-age),
	})
	if contactEmail != "" {
		if err := f.attrs.Set(context.Background(), domain.EntityListing, id, domain.AttrContactEmail, contactEmail); err != nil {
			t.Fatalf("seed contact email: %v", err)
		}
	}
}

func (f *fixture) addAccount(t *testing.T, id, login, email, displayName string, role domain.AccountRole) {
	t.Helper()
	f.accounts.Add(domain.Account{
		ID: id, Login: login, Email: email, DisplayName: displayName, Role: role,
	})
}

func (f *fixture) attr(t *testing.T, entityType, entityID, name string) string {
	t.Helper()
	v, err := f.attrs.Get(context.Background(), entityType, entityID, name)
	if err != nil && !errors.Is(err, linking.ErrNotFound) {
		t.Fatalf("read attribute %s: %v", name, err)
	}
	return v
}

// fakeNotifier records credential sends and can fail on demand.
type fakeNotifier struct {
	mu    sync.Mutex
	sends []credentialSend
	err   error
}

type credentialSend struct {
	to    string
	creds domain.Credentials
}

func (n *fakeNotifier) SendCredentials(_ context.Context, to string, creds domain.Credentials) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, credentialSend{to: to, creds: creds})
	return nil
}

func (n *fakeNotifier) sent() []credentialSend {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]credentialSend(nil), n.sends...)
}

// eventRecorder captures published connection events synchronously.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.ConnectionEvent
}

func (r *eventRecorder) Publish(_ context.Context, evt domain.ConnectionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) all() []domain.ConnectionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ConnectionEvent(nil), r.events...)
}

// failingAttrs wraps an attribute store and fails writes matching a
// (entityType, name) pair.
type failingAttrs struct {
	linking.AttributeStore
	failType string
	failName string
}

var errInjected = errors.New("injected attribute failure")

func (f *failingAttrs) Set(ctx context.Context, entityType, entityID, name, value string) error {
	if entityType == f.failType && name == f.failName {
		return errInjected
	}
	return f.AttributeStore.Set(ctx, entityType, entityID, name, value)
}
