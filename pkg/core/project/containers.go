package project

import (
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

// =============================================================================
// CONTAINER HIERARCHY
// Land plans nest strictly: AREA > PHASE > PARCEL > UNIT. Each container
// points at its parent and lists its children, so the frontend tree and the
// pricing table can both walk the plan without re-deriving structure.
// =============================================================================

// ContainerKind is one level of the plan hierarchy
type ContainerKind string

const (
	KindArea   ContainerKind = "AREA"
	KindPhase  ContainerKind = "PHASE"
	KindParcel ContainerKind = "PARCEL"
	KindUnit   ContainerKind = "UNIT"
)

// kindRank orders the hierarchy top-down. A child's rank is always exactly
// one below its parent's.
var kindRank = map[ContainerKind]int{
	KindArea:   0,
	KindPhase:  1,
	KindParcel: 2,
	KindUnit:   3,
}

func (k ContainerKind) IsValid() bool {
	_, ok := kindRank[k]
	return ok
}

// Container is one node of a project's plan. IDs are ULIDs so siblings sort
// by creation time.
type Container struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Name      string        `json:"name"`
	Kind      ContainerKind `json:"kind"`
	ParentID  *string       `json:"parent_id,omitempty"` // nil for areas
	ChildIDs  []string      `json:"child_ids,omitempty"`
	Acres     float64       `json:"acres,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContainer builds a validated container. parentID is empty for areas.
func NewContainer(projectID, name string, kind ContainerKind, parentID string) (*Container, error) {
	if projectID == "" {
		return nil, fmt.Errorf("container requires a project ID")
	}
	if name == "" {
		return nil, fmt.Errorf("container requires a name")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown container kind '%s'", kind)
	}
	if kind == KindArea && parentID != "" {
		return nil, fmt.Errorf("areas cannot have a parent")
	}
	if kind != KindArea && parentID == "" {
		return nil, fmt.Errorf("%s requires a parent", kind)
	}

	c := &Container{
		ID:        ulid.Make().String(),
		ProjectID: projectID,
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if parentID != "" {
		c.ParentID = &parentID
	}
	return c, nil
}

// =============================================================================
// TREE (Assembled Plan)
// =============================================================================

// Tree is a validated, navigable view over one project's containers.
type Tree struct {
	byID     map[string]*Container
	children map[string][]string
	roots    []string
}

// BuildTree assembles and validates a container tree from flat records:
// every non-area must point at an existing parent exactly one level up, and
// the child lists are rebuilt from the parent pointers so the two can never
// disagree.
func BuildTree(containers []*Container) (*Tree, error) {
	t := &Tree{
		byID:     make(map[string]*Container, len(containers)),
		children: make(map[string][]string),
	}

	for _, c := range containers {
		if !c.Kind.IsValid() {
			return nil, fmt.Errorf("container '%s' has unknown kind '%s'", c.ID, c.Kind)
		}
		if _, dup := t.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate container '%s'", c.ID)
		}
		t.byID[c.ID] = c
	}

	for _, c := range containers {
		if c.ParentID == nil {
			if c.Kind != KindArea {
				return nil, fmt.Errorf("%s '%s' has no parent", c.Kind, c.ID)
			}
			t.roots = append(t.roots, c.ID)
			continue
		}
		parent, ok := t.byID[*c.ParentID]
		if !ok {
			return nil, fmt.Errorf("container '%s' is orphaned: parent '%s' not found", c.ID, *c.ParentID)
		}
		if kindRank[c.Kind] != kindRank[parent.Kind]+1 {
			return nil, fmt.Errorf("%s '%s' cannot nest under %s '%s'", c.Kind, c.ID, parent.Kind, parent.ID)
		}
		t.children[parent.ID] = append(t.children[parent.ID], c.ID)
	}

	sort.Strings(t.roots)
	for id := range t.children {
		sort.Strings(t.children[id])
	}

	// Mirror the computed child lists back onto the records
	for _, c := range containers {
		c.ChildIDs = append([]string(nil), t.children[c.ID]...)
	}
	return t, nil
}

// Get returns a container by ID
func (t *Tree) Get(id string) (*Container, error) {
	c, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("container '%s' not found", id)
	}
	return c, nil
}

// Roots returns the area IDs, sorted
func (t *Tree) Roots() []string {
	return append([]string(nil), t.roots...)
}

// Children returns a container's direct child IDs, sorted
func (t *Tree) Children(id string) []string {
	return append([]string(nil), t.children[id]...)
}

// Descendants walks the subtree below a container, depth-first
func (t *Tree) Descendants(id string) []string {
	var out []string
	for _, child := range t.children[id] {
		out = append(out, child)
		out = append(out, t.Descendants(child)...)
	}
	return out
}

// Count returns how many containers the tree holds
func (t *Tree) Count() int {
	return len(t.byID)
}
