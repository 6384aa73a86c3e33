package linking

import (
	"context"
	"time"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/errlog"
)

// Deps bundles the collaborators the service is constructed with. Listings,
// Accounts, Attrs and Cache are required; Notifier and Events may be nil
// (credential mails are then recorded as failures, events are only handed
// to in-process observers).
type Deps struct {
	Listings ListingStore
	Accounts Directory
	Attrs    AttributeStore
	Cache    ResolutionCache
	Notifier Notifier
	Events   EventPublisher
	Errors   *errlog.Log
	Clock    func() time.Time

	// LoginURL is embedded in credential notifications.
	LoginURL string
}

// Service implements ownership resolution, connection mutation, auto-linking
// and batch provisioning. All public methods are safe for concurrent use if
// the underlying stores are concurrency-safe; the service itself holds no
// mutable state beyond the injected cache and error log.
type Service struct {
	listings  ListingStore
	accounts  Directory
	attrs     AttributeStore
	cache     ResolutionCache
	notifier  Notifier
	events    EventPublisher
	errs      *errlog.Log
	now       func() time.Time
	loginURL  string
	observers []func(domain.ConnectionEvent)
}

// NewService creates the linking service. A nil Errors log is replaced with
// a default-capacity one; a nil Clock falls back to time.Now.
func NewService(d Deps) *Service {
	if d.Errors == nil {
		d.Errors = errlog.NewLog(0, nil)
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Service{
		listings: d.Listings,
		accounts: d.Accounts,
		attrs:    d.Attrs,
		cache:    d.Cache,
		notifier: d.Notifier,
		events:   d.Events,
		errs:     d.Errors,
		now:      d.Clock,
		loginURL: d.LoginURL,
	}
}

// ErrorLog exposes the operational error ring for the admin surface.
func (s *Service) ErrorLog() *errlog.Log {
	return s.errs
}

// OnConnectionEvent registers an in-process observer for connection events.
// Observers must be registered during wiring, before the service starts
// handling requests.
func (s *Service) OnConnectionEvent(fn func(domain.ConnectionEvent)) {
	s.observers = append(s.observers, fn)
}

func (s *Service) emit(ctx context.Context, evt domain.ConnectionEvent) {
	if s.events != nil {
		s.events.Publish(ctx, evt)
	}
	for _, fn := range s.observers {
		fn(evt)
	}
}
