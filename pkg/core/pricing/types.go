// Package pricing implements the land pricing table: base prices and
// premiums per container and product, and escalation of those prices along a
// growth-rate schedule. All money math runs on decimals, never floats.
package pricing

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRICE LINES
// =============================================================================

// PriceLine prices one product within one container: a base price plus a lot
// premium. EffectivePrice is what the pro-forma and escalation consume.
type PriceLine struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	ContainerID string          `json:"container_id,omitempty"`
	Product     string          `json:"product"` // e.g. "50' Lot", "Townhome"
	BasePrice   decimal.Decimal `json:"base_price"`
	Premium     decimal.Decimal `json:"premium"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPriceLine builds a validated price line. The container is optional:
// imported pricing often lands before the land plan does, and unattached
// lines link up later.
func NewPriceLine(projectID, containerID, product string, basePrice, premium decimal.Decimal) (*PriceLine, error) {
	if projectID == "" {
		return nil, fmt.Errorf("price line requires a project ID")
	}
	if product == "" {
		return nil, fmt.Errorf("price line requires a product")
	}
	if basePrice.IsNegative() {
		return nil, fmt.Errorf("base price cannot be negative")
	}

	now := time.Now()
	return &PriceLine{
		ID:          ulid.Make().String(),
		ProjectID:   projectID,
		ContainerID: containerID,
		Product:     product,
		BasePrice:   basePrice,
		Premium:     premium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EffectivePrice is the base price plus the premium.
func (l *PriceLine) EffectivePrice() decimal.Decimal {
	return l.BasePrice.Add(l.Premium)
}

// =============================================================================
// PRICE TABLE
// =============================================================================

// Table holds the loaded price lines, keyed by ID.
type Table struct {
	mu    sync.RWMutex
	lines map[string]*PriceLine
}

// NewTable creates an empty price table.
func NewTable() *Table {
	return &Table{lines: make(map[string]*PriceLine)}
}

// Add inserts a new price line.
func (t *Table) Add(l *PriceLine) error {
	if l.ID == "" {
		return fmt.Errorf("price line ID cannot be empty")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.lines[l.ID]; exists {
		return fmt.Errorf("price line '%s' already exists", l.ID)
	}
	t.lines[l.ID] = l
	return nil
}

// Get retrieves a price line by ID.
func (t *Table) Get(id string) (*PriceLine, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.lines[id]
	if !ok {
		return nil, fmt.Errorf("price line '%s' not found", id)
	}
	return l, nil
}

// Update replaces an existing price line.
func (t *Table) Update(l *PriceLine) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.lines[l.ID]; !exists {
		return fmt.Errorf("price line '%s' not found", l.ID)
	}
	l.UpdatedAt = time.Now()
	t.lines[l.ID] = l
	return nil
}

// Delete removes a price line.
func (t *Table) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.lines[id]; !exists {
		return fmt.Errorf("price line '%s' not found", id)
	}
	delete(t.lines, id)
	return nil
}

// ByProject lists a project's price lines, IDs ascending (ULIDs sort by
// creation time).
func (t *Table) ByProject(projectID string) []*PriceLine {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*PriceLine
	for _, l := range t.lines {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByContainer lists the price lines attached to one container.
func (t *Table) ByContainer(containerID string) []*PriceLine {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*PriceLine
	for _, l := range t.lines {
		if l.ContainerID == containerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Replace swaps the whole table, used when reloading from persistence.
func (t *Table) Replace(lines []*PriceLine) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = make(map[string]*PriceLine, len(lines))
	for _, l := range lines {
		t.lines[l.ID] = l
	}
}
