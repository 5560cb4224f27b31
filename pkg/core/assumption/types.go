// Package assumption implements the backend book of growth-rate assumptions.
// Syncs with the frontend growth-rate editor for bidirectional data flow.
// Integrates with schedule.StepStore for variant editing.
package assumption

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"land_proforma/pkg/core/schedule"
)

// =============================================================================
// ASSUMPTION (Named Rate Policy)
// =============================================================================

// Category groups assumptions by what they escalate
type Category string

const (
	CategoryDevelopmentCosts  Category = "DEVELOPMENT_COSTS"
	CategoryPriceAppreciation Category = "PRICE_APPRECIATION"
	CategorySalesAbsorption   Category = "SALES_ABSORPTION"
)

// Categories lists every valid category in display order
func Categories() []Category {
	return []Category{
		CategoryDevelopmentCosts,
		CategoryPriceAppreciation,
		CategorySalesAbsorption,
	}
}

// IsValid reports whether the category is one of the known values
func (c Category) IsValid() bool {
	switch c {
	case CategoryDevelopmentCosts, CategoryPriceAppreciation, CategorySalesAbsorption:
		return true
	}
	return false
}

// Assumption is a named, categorized rate policy: a global fallback rate plus
// an ordered base step schedule. Persisted rows carry the period bounds
// computed at save time (maps to the frontend's growthRateAssumption records)
type Assumption struct {
	ID         string              `json:"id"`
	ProjectID  string              `json:"project_id"`
	Name       string              `json:"name"`
	Category   Category            `json:"category"`
	GlobalRate string              `json:"global_rate,omitempty"` // fallback when no step covers a period
	Steps      []schedule.BaseStep `json:"steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds a persisted assumption from validated parts. Step bounds are
// resolved here so the base variant can fall back to them later.
func New(projectID, name string, category Category, globalRate string, steps []schedule.Step) (*Assumption, error) {
	if projectID == "" {
		return nil, fmt.Errorf("assumption requires a project ID")
	}
	if name == "" {
		return nil, fmt.Errorf("assumption requires a name")
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown category '%s'", category)
	}

	base := make([]schedule.BaseStep, len(steps))
	for i, s := range steps {
		if s.Periods.IsZero() {
			return nil, fmt.Errorf("step %d has no duration", i+1)
		}
		base[i] = schedule.BaseStep{Step: s}
	}

	now := time.Now()
	return &Assumption{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Name:       name,
		Category:   category,
		GlobalRate: globalRate,
		Steps:      schedule.ResolveBaseBounds(base, schedule.HorizonPeriods),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ReplaceSteps swaps the base schedule and recomputes the persisted bounds
func (a *Assumption) ReplaceSteps(steps []schedule.Step) error {
	base := make([]schedule.BaseStep, len(steps))
	for i, s := range steps {
		if s.Periods.IsZero() {
			return fmt.Errorf("step %d has no duration", i+1)
		}
		base[i] = schedule.BaseStep{Step: s}
	}
	a.Steps = schedule.ResolveBaseBounds(base, schedule.HorizonPeriods)
	a.UpdatedAt = time.Now()
	return nil
}

// Validate checks a record parsed off the wire
func (a *Assumption) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("assumption ID cannot be empty")
	}
	if a.ProjectID == "" {
		return fmt.Errorf("assumption '%s' has no project ID", a.ID)
	}
	if a.Name == "" {
		return fmt.Errorf("assumption '%s' has no name", a.ID)
	}
	if !a.Category.IsValid() {
		return fmt.Errorf("assumption '%s' has unknown category '%s'", a.ID, a.Category)
	}
	for i, s := range a.Steps {
		if s.Periods.IsZero() {
			return fmt.Errorf("assumption '%s' step %d has no duration", a.ID, i+1)
		}
	}
	return nil
}

// ToJSON serializes the assumption for frontend sync
func (a *Assumption) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// Parse deserializes and validates an assumption record. Malformed steps are
// rejected here, at the data boundary, so nothing downstream needs to
// re-check them.
func Parse(data []byte) (*Assumption, error) {
	var a Assumption
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("malformed assumption record: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// =============================================================================
// BOOK (Container for All Assumptions Across Projects)
// =============================================================================

// Book holds the loaded assumptions, keyed by ID. It is the base-data
// provider behind the step store: handlers load records here and push their
// step rows into schedule.StepStore via SetBase.
type Book struct {
	mu      sync.RWMutex
	records map[string]*Assumption
}

// NewBook creates an empty book
func NewBook() *Book {
	return &Book{records: make(map[string]*Assumption)}
}

// Add inserts a new assumption
func (b *Book) Add(a *Assumption) error {
	if a.ID == "" {
		return fmt.Errorf("assumption ID cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.records[a.ID]; exists {
		return fmt.Errorf("assumption '%s' already exists", a.ID)
	}
	b.records[a.ID] = a
	return nil
}

// Get retrieves an assumption by ID
func (b *Book) Get(id string) (*Assumption, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.records[id]
	if !ok {
		return nil, fmt.Errorf("assumption '%s' not found", id)
	}
	return a, nil
}

// Update replaces an existing assumption
func (b *Book) Update(a *Assumption) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.records[a.ID]; !exists {
		return fmt.Errorf("assumption '%s' not found", a.ID)
	}
	a.UpdatedAt = time.Now()
	b.records[a.ID] = a
	return nil
}

// Delete removes an assumption
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.records[id]; !exists {
		return fmt.Errorf("assumption '%s' not found", id)
	}
	delete(b.records, id)
	return nil
}

// ByProject lists a project's assumptions, oldest first
func (b *Book) ByProject(projectID string) []*Assumption {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Assumption
	for _, a := range b.records {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sortAssumptions(out)
	return out
}

// ByCategory lists a project's assumptions within one category, oldest first
func (b *Book) ByCategory(projectID string, category Category) []*Assumption {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Assumption
	for _, a := range b.records {
		if a.ProjectID == projectID && a.Category == category {
			out = append(out, a)
		}
	}
	sortAssumptions(out)
	return out
}

// Replace swaps the whole book, used when reloading from persistence
func (b *Book) Replace(records []*Assumption) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = make(map[string]*Assumption, len(records))
	for _, a := range records {
		b.records[a.ID] = a
	}
}

func sortAssumptions(out []*Assumption) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
