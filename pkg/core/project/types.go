// Package project implements the backend project record and its container
// hierarchy (areas, phases, parcels, units). Syncs with the frontend project
// dashboard and drives which folder tabs are visible.
package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"land_proforma/pkg/core/schedule"
)

// =============================================================================
// PROJECT (Top-Level Planning Record)
// =============================================================================

// ProjectType describes what is being planned
type ProjectType string

const (
	TypeLandDevelopment ProjectType = "LAND_DEVELOPMENT"
	TypeIncomeProperty  ProjectType = "INCOME_PROPERTY"
	TypeMixedUse        ProjectType = "MIXED_USE"
)

// AnalysisType describes the stage of the deal
type AnalysisType string

const (
	AnalysisFeasibility AnalysisType = "FEASIBILITY"
	AnalysisAcquisition AnalysisType = "ACQUISITION"
	AnalysisDisposition AnalysisType = "DISPOSITION"
)

// Purpose describes who the analysis is prepared for
type Purpose string

const (
	PurposeInternal Purpose = "INTERNAL"
	PurposeLender   Purpose = "LENDER"
	PurposeInvestor Purpose = "INVESTOR"
)

func (t ProjectType) IsValid() bool {
	switch t {
	case TypeLandDevelopment, TypeIncomeProperty, TypeMixedUse:
		return true
	}
	return false
}

func (t AnalysisType) IsValid() bool {
	switch t {
	case AnalysisFeasibility, AnalysisAcquisition, AnalysisDisposition:
		return true
	}
	return false
}

func (p Purpose) IsValid() bool {
	switch p {
	case PurposeInternal, PurposeLender, PurposeInvestor:
		return true
	}
	return false
}

// Project is the top-level planning record. HorizonPeriods bounds every
// schedule in the project; sentinel durations resolve to it.
type Project struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           ProjectType  `json:"type"`
	AnalysisType   AnalysisType `json:"analysis_type"`
	Purpose        Purpose      `json:"purpose"`
	HorizonPeriods int          `json:"horizon_periods"`
	StartYear      int          `json:"start_year"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds a validated project. A horizon of 0 takes the default analysis
// horizon.
func New(name string, ptype ProjectType, analysis AnalysisType, purpose Purpose, horizon, startYear int) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project requires a name")
	}
	if !ptype.IsValid() {
		return nil, fmt.Errorf("unknown project type '%s'", ptype)
	}
	if !analysis.IsValid() {
		return nil, fmt.Errorf("unknown analysis type '%s'", analysis)
	}
	if !purpose.IsValid() {
		return nil, fmt.Errorf("unknown purpose '%s'", purpose)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("horizon cannot be negative")
	}
	if horizon == 0 {
		horizon = schedule.HorizonPeriods
	}

	now := time.Now()
	return &Project{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           ptype,
		AnalysisType:   analysis,
		Purpose:        purpose,
		HorizonPeriods: horizon,
		StartYear:      startYear,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Validate checks a record parsed off the wire
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project ID cannot be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("project '%s' has no name", p.ID)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("project '%s' has unknown type '%s'", p.ID, p.Type)
	}
	if !p.AnalysisType.IsValid() {
		return fmt.Errorf("project '%s' has unknown analysis type '%s'", p.ID, p.AnalysisType)
	}
	if !p.Purpose.IsValid() {
		return fmt.Errorf("project '%s' has unknown purpose '%s'", p.ID, p.Purpose)
	}
	if p.HorizonPeriods <= 0 {
		return fmt.Errorf("project '%s' has no analysis horizon", p.ID)
	}
	return nil
}

// ToJSON serializes the project for frontend sync
func (p *Project) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// Parse deserializes and validates a project record
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("malformed project record: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
