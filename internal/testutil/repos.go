// Package testutil holds in-memory repository fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

// Companies is an in-memory CompanyRepository.
type Companies struct {
	mu     sync.Mutex
	nextID int64
	Rows   []models.Company
	Err    error
}

var _ repositories.CompanyRepository = (*Companies)(nil)

func (r *Companies) List(_ context.Context, filter models.CompanyFilter) ([]models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	filter.ApplyDefaults()
	var out []models.Company
	for _, c := range r.Rows {
		if filter.TherapeuticAreaID != "" && !contains(c.TherapeuticAreaIDs, filter.TherapeuticAreaID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ActiveOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *Companies) GetByID(_ context.Context, id int64) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Rows {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("company not found: %d", id)}
}

func (r *Companies) GetBySlug(_ context.Context, slug string) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Rows {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("company not found: %s", slug)}
}

func (r *Companies) LastUpdatedBySymbol(_ context.Context, symbols []string) (map[string]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := map[string]time.Time{}
	for _, c := range r.Rows {
		if c.StockSymbol != nil && contains(symbols, *c.StockSymbol) {
			out[*c.StockSymbol] = c.UpdatedAt
		}
	}
	return out, nil
}

func (r *Companies) LatestUpdate(_ context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest time.Time
	for _, c := range r.Rows {
		if c.UpdatedAt.After(latest) {
			latest = c.UpdatedAt
		}
	}
	return latest, nil
}

func (r *Companies) Insert(_ context.Context, c *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Rows {
		if existing.Slug == c.Slug {
			return &domain.ConflictError{Message: "company exists", ResourceType: "company", ResourceID: c.Slug}
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.Rows = append(r.Rows, *c)
	return nil
}

func (r *Companies) UpdateBySymbol(_ context.Context, c *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Rows {
		if existing.StockSymbol != nil && c.StockSymbol != nil && *existing.StockSymbol == *c.StockSymbol {
			c.ID = existing.ID
			c.Slug = existing.Slug
			c.CreatedAt = existing.CreatedAt
			c.TherapeuticAreaIDs = existing.TherapeuticAreaIDs
			r.Rows[i] = *c
			return nil
		}
	}
	return &domain.NotFoundError{Message: "company not found"}
}

func (r *Companies) UpdateFinancials(_ context.Context, symbol string, f models.CompanyFinancials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i, existing := range r.Rows {
		if existing.StockSymbol == nil || *existing.StockSymbol != symbol {
			continue
		}
		if f.RevenueUSD != nil {
			r.Rows[i].RevenueUSD = f.RevenueUSD
		}
		if f.EmployeeCount != nil {
			r.Rows[i].EmployeeCount = f.EmployeeCount
		}
		r.Rows[i].UpdatedAt = f.UpdatedAt
		return nil
	}
	return &domain.NotFoundError{Message: fmt.Sprintf("company not found: %s", symbol)}
}

func (r *Companies) UpsertBySlug(_ context.Context, c *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Rows {
		if existing.Slug == c.Slug {
			c.ID = existing.ID
			r.Rows[i] = *c
			return nil
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.Rows = append(r.Rows, *c)
	return nil
}

func (r *Companies) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.Rows)), nil
}

// Products is an in-memory ProductRepository.
type Products struct {
	mu     sync.Mutex
	nextID int64
	Rows   []models.Product
}

var _ repositories.ProductRepository = (*Products)(nil)

func (r *Products) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filter.ApplyDefaults()
	var out []models.Product
	for _, p := range r.Rows {
		if filter.CompanyID != 0 && p.CompanyID != filter.CompanyID {
			continue
		}
		if filter.TherapeuticAreaID != "" && !contains(p.TherapeuticAreaIDs, filter.TherapeuticAreaID) {
			continue
		}
		if filter.Stage != "" && p.Stage != filter.Stage {
			continue
		}
		out = append(out, p)
	}
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *Products) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Rows {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("product not found: %s", slug)}
}

func (r *Products) UpsertBySlug(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Rows {
		if existing.Slug == p.Slug {
			p.ID = existing.ID
			r.Rows[i] = *p
			return nil
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.Rows = append(r.Rows, *p)
	return nil
}

// TherapeuticAreas is an in-memory TherapeuticAreaRepository.
type TherapeuticAreas struct {
	mu   sync.Mutex
	Rows []models.TherapeuticArea
}

var _ repositories.TherapeuticAreaRepository = (*TherapeuticAreas)(nil)

func (r *TherapeuticAreas) List(_ context.Context) ([]models.TherapeuticArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TherapeuticArea(nil), r.Rows...), nil
}

func (r *TherapeuticAreas) GetBySlug(_ context.Context, slug string) (*models.TherapeuticArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Rows {
		if a.Slug == slug {
			a := a
			return &a, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("therapeutic area not found: %s", slug)}
}

func (r *TherapeuticAreas) GetByID(_ context.Context, id string) (*models.TherapeuticArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Rows {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("therapeutic area not found: %s", id)}
}

func (r *TherapeuticAreas) Upsert(_ context.Context, a *models.TherapeuticArea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Rows {
		if existing.ID == a.ID {
			r.Rows[i] = *a
			return nil
		}
	}
	r.Rows = append(r.Rows, *a)
	return nil
}

// Websites is an in-memory WebsiteRepository.
type Websites struct {
	mu     sync.Mutex
	nextID int64
	Rows   []models.Website
}

var _ repositories.WebsiteRepository = (*Websites)(nil)

func (r *Websites) List(_ context.Context, companyID *int64) ([]models.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Website
	for _, w := range r.Rows {
		if companyID != nil && (w.CompanyID == nil || *w.CompanyID != *companyID) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *Websites) GetByID(_ context.Context, id int64) (*models.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.Rows {
		if w.ID == id {
			w := w
			return &w, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("website not found: %d", id)}
}

func (r *Websites) UpsertByURL(_ context.Context, w *models.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Rows {
		if existing.URL == w.URL {
			w.ID = existing.ID
			r.Rows[i] = *w
			return nil
		}
	}
	r.nextID++
	w.ID = r.nextID
	r.Rows = append(r.Rows, *w)
	return nil
}

// Phases is an in-memory DevelopmentPhaseRepository.
type Phases struct {
	Rows []models.DevelopmentPhase
}

func (r *Phases) List(_ context.Context) ([]models.DevelopmentPhase, error) {
	return r.Rows, nil
}

// History is an in-memory ImportHistoryRepository.
type History struct {
	mu      sync.Mutex
	Entries map[uuid.UUID]models.ImportHistoryEntry
	Updates int
}

var _ repositories.ImportHistoryRepository = (*History)(nil)

func (r *History) Create(_ context.Context, e *models.ImportHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Entries == nil {
		r.Entries = map[uuid.UUID]models.ImportHistoryEntry{}
	}
	r.Entries[e.ID] = *e
	return nil
}

func (r *History) Update(_ context.Context, e *models.ImportHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Entries[e.ID]; !ok {
		return &domain.NotFoundError{Message: "import not found"}
	}
	r.Entries[e.ID] = *e
	r.Updates++
	return nil
}

func (r *History) GetByID(_ context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Entries[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "import not found"}
	}
	return &e, nil
}

func (r *History) List(_ context.Context, limit int) ([]models.ImportHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ImportHistoryEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return page(out, 0, limit), nil
}

// Follows is an in-memory FollowRepository.
type Follows struct {
	mu   sync.Mutex
	Rows []models.UserFollowedEntity
}

var _ repositories.FollowRepository = (*Follows)(nil)

func (r *Follows) ListByUser(_ context.Context, userID uuid.UUID) ([]models.UserFollowedEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserFollowedEntity
	for _, f := range r.Rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *Follows) Create(_ context.Context, f *models.UserFollowedEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Rows {
		if existing.UserID == f.UserID && existing.EntityType == f.EntityType && existing.EntityID == f.EntityID {
			return &domain.ConflictError{Message: "already following", ResourceType: "follow", ResourceID: existing.ID.String()}
		}
	}
	r.Rows = append(r.Rows, *f)
	return nil
}

func (r *Follows) Get(_ context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) (*models.UserFollowedEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Rows {
		if f.UserID == userID && f.EntityType == entityType && f.EntityID == entityID {
			f := f
			return &f, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "follow not found"}
}

func (r *Follows) Delete(_ context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.Rows {
		if f.UserID == userID && f.EntityType == entityType && f.EntityID == entityID {
			r.Rows = append(r.Rows[:i], r.Rows[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Message: "follow not found"}
}

func (r *Follows) ListFollowers(_ context.Context, entityType models.EntityType, entityID string) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for _, f := range r.Rows {
		if f.EntityType == entityType && f.EntityID == entityID && f.NotifyChanges {
			out = append(out, f.UserID)
		}
	}
	return out, nil
}

// Notifications is an in-memory NotificationRepository.
type Notifications struct {
	mu   sync.Mutex
	Rows []models.UserNotification
}

var _ repositories.NotificationRepository = (*Notifications)(nil)

func (r *Notifications) List(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.UserNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserNotification
	for _, n := range r.Rows {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return page(out, 0, limit), nil
}

func (r *Notifications) Create(_ context.Context, n *models.UserNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rows = append(r.Rows, *n)
	return nil
}

func (r *Notifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.Rows {
		if n.ID == id && n.UserID == userID {
			r.Rows[i].Read = true
			return nil
		}
	}
	return &domain.NotFoundError{Message: "notification not found"}
}

func (r *Notifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.Rows {
		if r.Rows[i].UserID == userID && !r.Rows[i].Read {
			r.Rows[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *Notifications) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.Rows {
		if n.ID == id && n.UserID == userID {
			r.Rows = append(r.Rows[:i], r.Rows[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Message: "notification not found"}
}

func (r *Notifications) UnreadCount(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.Rows {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

// Preferences is an in-memory UserPreferencesRepository.
type Preferences struct {
	mu   sync.Mutex
	Rows map[uuid.UUID]models.UserPreferences
}

var _ repositories.UserPreferencesRepository = (*Preferences)(nil)

func (r *Preferences) GetByUserID(_ context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Rows[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Preferences) Upsert(_ context.Context, p *models.UserPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Rows == nil {
		r.Rows = map[uuid.UUID]models.UserPreferences{}
	}
	r.Rows[p.UserID] = *p
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
