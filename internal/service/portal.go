package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/query"
	"github.com/iliyamo/job-portal-manager/internal/queue"
)

// PortalService applies the portal rules on top of any PortalStore.
type PortalService struct {
	store  PortalStore
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewPortalService wires a PortalService over store.
func NewPortalService(store PortalStore, events EventPublisher, log *slog.Logger) *PortalService {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &PortalService{store: store, events: events, log: log, now: time.Now}
}

// WithClock replaces the time source used by Search.
func (s *PortalService) WithClock(now func() time.Time) *PortalService {
	s.now = now
	return s
}

// Create validates and stores a new portal.
func (s *PortalService) Create(ctx context.Context, userID uint64, category, link string) (uint64, error) {
	category = strings.TrimSpace(category)
	link = strings.TrimSpace(link)
	if category == "" || link == "" {
		return 0, apperr.Validation("Category and link are required")
	}
	id, err := s.store.Create(ctx, userID, category, link)
	if err != nil {
		return 0, err
	}
	if err := flush(ctx, s.store); err != nil {
		return 0, err
	}
	publish(ctx, s.events, s.log, queue.PortalEvent{
		Type: queue.EventPortalCreated, UserID: userID, PortalID: id, Category: category, Link: link,
	})
	return id, nil
}

// List returns every portal of the user, grouped by category.
func (s *PortalService) List(ctx context.Context, userID uint64) ([]model.Portal, error) {
	return s.store.List(ctx, userID)
}

// Get returns one portal of the user.
func (s *PortalService) Get(ctx context.Context, userID, id uint64) (model.Portal, error) {
	return s.store.Get(ctx, userID, id)
}

// Update applies a partial patch. Blank fields count as not supplied.
func (s *PortalService) Update(ctx context.Context, userID, id uint64, patch model.PortalPatch) error {
	patch.Category = trimmedOrNil(patch.Category)
	patch.Link = trimmedOrNil(patch.Link)
	if err := s.store.Update(ctx, userID, id, patch); err != nil {
		return err
	}
	if err := flush(ctx, s.store); err != nil {
		return err
	}
	ev := queue.PortalEvent{Type: queue.EventPortalUpdated, UserID: userID, PortalID: id}
	if patch.Category != nil {
		ev.Category = *patch.Category
	}
	if patch.Link != nil {
		ev.Link = *patch.Link
	}
	publish(ctx, s.events, s.log, ev)
	return nil
}

// Delete removes one portal of the user.
func (s *PortalService) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := flush(ctx, s.store); err != nil {
		return err
	}
	publish(ctx, s.events, s.log, queue.PortalEvent{Type: queue.EventPortalDeleted, UserID: userID, PortalID: id})
	return nil
}

// Categories returns the user's distinct categories, ascending.
func (s *PortalService) Categories(ctx context.Context, userID uint64) ([]string, error) {
	return s.store.Categories(ctx, userID)
}

// Sites returns the links of the user's portals in list order, restricted
// to category unless it is empty.
func (s *PortalService) Sites(ctx context.Context, userID uint64, category string) ([]string, error) {
	portals, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sites := make([]string, 0, len(portals))
	for _, p := range portals {
		if category == "" || p.Category == category {
			sites = append(sites, p.Link)
		}
	}
	return sites, nil
}

// SearchRequest selects the portals and options of a search.
type SearchRequest struct {
	Keyword       string
	Category      string
	DateRange     query.DateRange
	ExcludeHybrid bool
	ExcludeOnsite bool
}

// SearchResult is the generated query and the URL that runs it.
type SearchResult struct {
	Query string `json:"query"`
	URL   string `json:"url"`
}

// Search builds the site-restricted query over the user's portals.
func (s *PortalService) Search(ctx context.Context, userID uint64, req SearchRequest) (SearchResult, error) {
	if strings.TrimSpace(req.Keyword) == "" {
		return SearchResult{}, apperr.Validation("Keyword is required")
	}
	sites, err := s.Sites(ctx, userID, req.Category)
	if err != nil {
		return SearchResult{}, err
	}
	q, err := query.Build(query.Params{
		Keyword:       strings.TrimSpace(req.Keyword),
		DateRange:     req.DateRange,
		Sites:         sites,
		ExcludeHybrid: req.ExcludeHybrid,
		ExcludeOnsite: req.ExcludeOnsite,
	}, s.now())
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Query: q, URL: query.SearchURL(q)}, nil
}

// ResetDefaults deletes every portal of the user and installs
// model.DefaultPortals. The embedded store is flushed once, after the batch.
func (s *PortalService) ResetDefaults(ctx context.Context, userID uint64) error {
	existing, err := s.store.List(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if err := s.store.Delete(ctx, userID, p.ID); err != nil {
			return err
		}
	}
	for _, p := range model.DefaultPortals {
		if _, err := s.store.Create(ctx, userID, p.Category, p.Link); err != nil {
			return err
		}
	}
	if err := flush(ctx, s.store); err != nil {
		return err
	}
	s.log.Info("portals reset to defaults", "user_id", userID, "removed", len(existing))
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
