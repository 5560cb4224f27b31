package projects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/store"
	"land_proforma/pkg/models"
)

func fileHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(store.NewProjectRepo(), store.NewProjectVault(nil, t.TempDir()))
}

func createProject(t *testing.T, h *Handler, name string) *project.Project {
	t.Helper()
	body, _ := json.Marshal(CreateRequest{
		Name:           name,
		Type:           "LAND_DEVELOPMENT",
		AnalysisType:   "FEASIBILITY",
		Purpose:        "INTERNAL",
		HorizonPeriods: 180,
		StartYear:      2027,
	})
	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("POST", "/api/projects", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Create returned %d: %s", rec.Code, rec.Body.String())
	}
	var proj project.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("Create decode: %v", err)
	}
	if proj.ID == "" {
		t.Fatal("Created project has no ID")
	}
	return &proj
}

// TestCreateBootstrapsSnapshot covers the poolless first run: creating a
// project must mint its snapshot so every later call has something to read.
func TestCreateBootstrapsSnapshot(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("GET", "/api/projects?id="+proj.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Get returned %d: %s", rec.Code, rec.Body.String())
	}
	var got project.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Get decode: %v", err)
	}
	if got.Name != "Willow Bend" || got.Type != project.TypeLandDevelopment {
		t.Errorf("Fetched wrong project: %+v", got)
	}

	rec = httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("GET", "/api/projects", nil))
	var list []*project.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("List decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != proj.ID {
		t.Errorf("Listing should show the new project, got %d entries", len(list))
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	h := fileHandler(t)

	body, _ := json.Marshal(CreateRequest{Name: "X", Type: "CASINO", AnalysisType: "FEASIBILITY", Purpose: "INTERNAL", HorizonPeriods: 10})
	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("POST", "/api/projects", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestUpdateKeepsUntouchedFields(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	body, _ := json.Marshal(UpdateRequest{ID: proj.ID, Name: "Willow Bend II", StartYear: 2028})
	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("PUT", "/api/projects", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", rec.Code, rec.Body.String())
	}
	var got project.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Update decode: %v", err)
	}
	if got.Name != "Willow Bend II" || got.StartYear != 2028 {
		t.Errorf("Update did not apply: %+v", got)
	}
	if got.Type != project.TypeLandDevelopment || got.HorizonPeriods != 180 {
		t.Errorf("Update clobbered untouched fields: %+v", got)
	}
}

func TestUpdateValidatesEnums(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	body, _ := json.Marshal(UpdateRequest{ID: proj.ID, Purpose: "VIBES"})
	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("PUT", "/api/projects", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad purpose, got %d", rec.Code)
	}
}

func TestReplaceLandPlan(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	body, _ := json.Marshal(ContainersRequest{
		ProjectID: proj.ID,
		Containers: []models.ContainerExport{
			{ID: "area-1", Name: "Master Plan", Kind: "AREA"},
			{ID: "phase-1", Name: "Phase 1", Kind: "PHASE", ParentID: "area-1", Acres: 30.5},
		},
	})
	rec := httptest.NewRecorder()
	h.HandleContainers(rec, httptest.NewRequest("POST", "/api/projects/containers", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Replace returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleContainers(rec, httptest.NewRequest("GET", "/api/projects/containers?project_id="+proj.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Get containers returned %d: %s", rec.Code, rec.Body.String())
	}
	var got []*project.Container
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Containers decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 containers, got %d", len(got))
	}
	if got[1].ParentID == nil || *got[1].ParentID != "area-1" {
		t.Errorf("Phase lost its parent: %+v", got[1])
	}
	if got[1].Acres != 30.5 {
		t.Errorf("Acres did not round-trip: %v", got[1].Acres)
	}
}

func TestReplaceLandPlanRejectsOrphans(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	body, _ := json.Marshal(ContainersRequest{
		ProjectID: proj.ID,
		Containers: []models.ContainerExport{
			{ID: "phase-1", Name: "Phase 1", Kind: "PHASE", ParentID: "missing"},
		},
	})
	rec := httptest.NewRecorder()
	h.HandleContainers(rec, httptest.NewRequest("POST", "/api/projects/containers", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for orphaned phase, got %d", rec.Code)
	}
}

func TestDeleteDropsProject(t *testing.T) {
	h := fileHandler(t)
	proj := createProject(t, h, "Willow Bend")

	rec := httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("DELETE", "/api/projects?id="+proj.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleProjects(rec, httptest.NewRequest("GET", "/api/projects?id="+proj.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}
