// Package models defines the wire shapes shared by the importer, the report
// generator, the planner CLI, and the e2e tests. These mirror what the
// frontend exports, so field names track the dashboard, not the core types.
package models

import (
	"time"

	"land_proforma/pkg/core/schedule"
)

// ExportVersion is the current ProformaExport schema version.
const ExportVersion = 2

// ProformaExport is one project in a single document: setup, land plan,
// growth-rate assumptions, and pricing.
type ProformaExport struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`

	Project     ProjectExport      `json:"project"`
	Containers  []ContainerExport  `json:"containers,omitempty"`
	Assumptions []AssumptionExport `json:"assumptions,omitempty"`
	PriceLines  []PriceLineExport  `json:"price_lines,omitempty"`
	Documents   []DocumentExport   `json:"documents,omitempty"`
}

type ProjectExport struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`          // 'LAND_DEVELOPMENT', 'INCOME_PROPERTY', 'MIXED_USE'
	AnalysisType   string `json:"analysis_type"` // 'FEASIBILITY', 'ACQUISITION', 'DISPOSITION'
	Purpose        string `json:"purpose"`       // 'INTERNAL', 'LENDER', 'INVESTOR'
	HorizonPeriods int    `json:"horizon_periods"`
	StartYear      int    `json:"start_year"`
}

type ContainerExport struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"` // 'AREA', 'PHASE', 'PARCEL', 'UNIT'
	ParentID  string  `json:"parent_id,omitempty"`
	Acres     float64 `json:"acres,omitempty"`
}

// AssumptionExport carries steps in the schedule package's lenient form, so
// legacy exports with numeric or "E" durations both load.
type AssumptionExport struct {
	ID         string              `json:"id"`
	ProjectID  string              `json:"project_id"`
	Name       string              `json:"name"`
	Category   string              `json:"category"` // 'PRICE_APPRECIATION', 'DEVELOPMENT_COSTS', ...
	GlobalRate string              `json:"global_rate,omitempty"`
	Steps      []schedule.BaseStep `json:"steps,omitempty"`
}

// PriceLineExport keeps money as strings; the importer parses them into
// decimals and rejects what it cannot read.
type PriceLineExport struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	ContainerID string `json:"container_id,omitempty"`
	Product     string `json:"product"`
	BasePrice   string `json:"base_price"`
	Premium     string `json:"premium,omitempty"`
}

// DocumentExport carries document metadata only. The blobs themselves live in
// object storage and do not travel with the snapshot.
type DocumentExport struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	ObjectKey   string `json:"object_key,omitempty"`
}
