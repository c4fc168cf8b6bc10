package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleSections() []*checklist.Section {
	return []*checklist.Section{
		{
			ID:    "sec-drivetrain",
			Title: "Drivetrain",
			Order: 1,
			Elements: []checklist.Element{
				&checklist.Item{
					ID:        "item-bolts",
					Title:     "Bolts torqued",
					Order:     1,
					Required:  true,
					InputType: checklist.InputBoolean,
					Critical:  true,
				},
			},
		},
	}
}

func sampleTemplate(id string) *models.ChecklistTemplate {
	now := time.Now().UTC()
	return &models.ChecklistTemplate{
		ID:        id,
		Name:      "Pre-Match " + id,
		Version:   "1.0.0",
		Year:      2025,
		Type:      models.TemplateMatch,
		Elements:  sampleSections(),
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "uid-1",
	}
}

func sampleSession(id, teamID, matchKey, battery string) *models.InspectionSession {
	now := time.Now().UTC()
	return &models.InspectionSession{
		ID:            id,
		TeamID:        teamID,
		TemplateID:    "tpl-1",
		EventKey:      "2025casd",
		MatchKey:      matchKey,
		BatteryNumber: battery,
		Inspector:     "inspector-1",
		StartTime:     now,
		Status:        models.StatusInProgress,
		IsLatest:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestTemplateCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tpl := sampleTemplate("tpl-1")
	if err := repo.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	got, err := repo.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Name != tpl.Name || got.Version != "1.0.0" || got.Year != 2025 {
		t.Errorf("unexpected template: %+v", got)
	}
	if len(got.Elements) != 1 || got.Elements[0].ID != "sec-drivetrain" {
		t.Errorf("elements did not survive round trip: %+v", got.Elements)
	}
	item, ok := got.Elements[0].Elements[0].(*checklist.Item)
	if !ok {
		t.Fatalf("expected *checklist.Item, got %T", got.Elements[0].Elements[0])
	}
	if !item.Critical || !item.Required {
		t.Errorf("item flags lost: %+v", item)
	}
}

func TestTemplateGetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.GetTemplate(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetActiveTemplate(context.Background()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for no active template, got %v", err)
	}
}

func TestSetActiveTemplateSingleActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"tpl-1", "tpl-2", "tpl-3"} {
		if err := repo.CreateTemplate(ctx, sampleTemplate(id)); err != nil {
			t.Fatalf("CreateTemplate(%s) failed: %v", id, err)
		}
	}

	if err := repo.SetActiveTemplate(ctx, "tpl-1"); err != nil {
		t.Fatalf("SetActiveTemplate failed: %v", err)
	}
	if err := repo.SetActiveTemplate(ctx, "tpl-2"); err != nil {
		t.Fatalf("SetActiveTemplate failed: %v", err)
	}

	active, err := repo.GetActiveTemplate(ctx)
	if err != nil {
		t.Fatalf("GetActiveTemplate failed: %v", err)
	}
	if active.ID != "tpl-2" {
		t.Errorf("expected tpl-2 active, got %s", active.ID)
	}
	if active.ActivatedAt == nil {
		t.Error("expected ActivatedAt to be set")
	}

	// Exactly one row may carry the flag
	all, err := repo.ListTemplates(ctx, 0, "")
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	activeCount := 0
	for _, tpl := range all {
		if tpl.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("expected exactly 1 active template, got %d", activeCount)
	}
}

func TestCreateTemplateTakesOverActiveFlag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleTemplate("tpl-1")
	first.IsActive = true
	if err := repo.CreateTemplate(ctx, first); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	second := sampleTemplate("tpl-2")
	second.IsActive = true
	if err := repo.CreateTemplate(ctx, second); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	active, err := repo.GetActiveTemplate(ctx)
	if err != nil {
		t.Fatalf("GetActiveTemplate failed: %v", err)
	}
	if active.ID != "tpl-2" {
		t.Errorf("expected tpl-2 active, got %s", active.ID)
	}
}

func TestSetActiveTemplateNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateTemplate(ctx, sampleTemplate("tpl-1")); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if err := repo.SetActiveTemplate(ctx, "tpl-1"); err != nil {
		t.Fatalf("SetActiveTemplate failed: %v", err)
	}

	if err := repo.SetActiveTemplate(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The failed activation must not have cleared the existing flag
	active, err := repo.GetActiveTemplate(ctx)
	if err != nil {
		t.Fatalf("GetActiveTemplate failed: %v", err)
	}
	if active.ID != "tpl-1" {
		t.Errorf("active template changed after failed activation: %s", active.ID)
	}
}

func TestUpdateTemplateArchivesVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tpl := sampleTemplate("tpl-1")
	if err := repo.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	archived := *tpl
	updated := *tpl
	updated.Name = "Pre-Match revised"
	updated.Version = "1.0.1"
	updated.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateTemplate(ctx, &updated, &archived); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}

	got, err := repo.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Name != "Pre-Match revised" || got.Version != "1.0.1" {
		t.Errorf("live row not updated: %+v", got)
	}

	versions, err := repo.ListTemplateVersions(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("ListTemplateVersions failed: %v", err)
	}
	// Initial create snapshot plus the pre-update archive
	if len(versions) != 2 {
		t.Fatalf("expected 2 archived versions, got %d", len(versions))
	}
	if versions[0].Version != "1.0.0" {
		t.Errorf("expected newest archive to be the pre-update 1.0.0, got %s", versions[0].Version)
	}
}

func TestUpdateTemplateNotFound(t *testing.T) {
	repo := newTestRepo(t)

	tpl := sampleTemplate("missing")
	err := repo.UpdateTemplate(context.Background(), tpl, tpl)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTemplatesFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := sampleTemplate("tpl-2024")
	a.Year = 2024
	a.Type = models.TemplateGeneral
	b := sampleTemplate("tpl-2025")
	for _, tpl := range []*models.ChecklistTemplate{a, b} {
		if err := repo.CreateTemplate(ctx, tpl); err != nil {
			t.Fatalf("CreateTemplate failed: %v", err)
		}
	}

	byYear, err := repo.ListTemplates(ctx, 2024, "")
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(byYear) != 1 || byYear[0].ID != "tpl-2024" {
		t.Errorf("year filter returned %+v", byYear)
	}

	byType, err := repo.ListTemplates(ctx, 0, string(models.TemplateMatch))
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(byType) != 1 || byType[0].ID != "tpl-2025" {
		t.Errorf("type filter returned %+v", byType)
	}
}

func TestCreateInspectionAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := sampleSession("insp-1", "team-1", "2025casd_qm1", "B-01")
	if err := repo.CreateInspection(ctx, session); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	got, err := repo.GetInspection(ctx, "team-1", "insp-1")
	if err != nil {
		t.Fatalf("GetInspection failed: %v", err)
	}
	if got.MatchKey != "2025casd_qm1" || got.BatteryNumber != "B-01" {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.Status != models.StatusInProgress {
		t.Errorf("expected in-progress, got %s", got.Status)
	}
	if !got.IsLatest {
		t.Error("expected new session to be latest")
	}
}

func TestCreateInspectionMatchConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleSession("insp-1", "team-1", "2025casd_qm1", "")
	if err := repo.CreateInspection(ctx, first); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	second := sampleSession("insp-2", "team-1", "2025casd_qm1", "")
	second.StartTime = first.StartTime.Add(time.Minute)
	if err := repo.CreateInspection(ctx, second); err != ErrMatchInProgress {
		t.Fatalf("expected ErrMatchInProgress, got %v", err)
	}

	// The rejected request must leave no trace and the first session alive
	active, err := repo.GetActiveInspection(ctx, "team-1")
	if err != nil {
		t.Fatalf("GetActiveInspection failed: %v", err)
	}
	if active.ID != "insp-1" {
		t.Errorf("expected insp-1 still active, got %s", active.ID)
	}
	if _, err := repo.GetInspection(ctx, "team-1", "insp-2"); err != ErrNotFound {
		t.Errorf("rejected session was persisted: %v", err)
	}
}

func TestCreateInspectionMatchConflictClearsAfterTerminal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleSession("insp-1", "team-1", "2025casd_qm1", "")
	if err := repo.CreateInspection(ctx, first); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}
	if err := repo.UpdateInspectionStatus(ctx, "team-1", "insp-1", models.StatusCompleted); err != nil {
		t.Fatalf("UpdateInspectionStatus failed: %v", err)
	}

	second := sampleSession("insp-2", "team-1", "2025casd_qm1", "")
	second.StartTime = first.StartTime.Add(time.Minute)
	if err := repo.CreateInspection(ctx, second); err != nil {
		t.Fatalf("expected second session after completion, got %v", err)
	}
}

func TestCreateInspectionBatteryReuse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleSession("insp-1", "team-1", "2025casd_qm1", "B-01")
	if err := repo.CreateInspection(ctx, first); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}
	if err := repo.UpdateInspectionStatus(ctx, "team-1", "insp-1", models.StatusCompleted); err != nil {
		t.Fatalf("UpdateInspectionStatus failed: %v", err)
	}

	reuse := sampleSession("insp-2", "team-1", "2025casd_qm2", "B-01")
	reuse.StartTime = first.StartTime.Add(time.Minute)
	if err := repo.CreateInspection(ctx, reuse); err != ErrBatteryUsed {
		t.Fatalf("expected ErrBatteryUsed, got %v", err)
	}

	fresh := sampleSession("insp-3", "team-1", "2025casd_qm2", "B-02")
	fresh.StartTime = first.StartTime.Add(2 * time.Minute)
	if err := repo.CreateInspection(ctx, fresh); err != nil {
		t.Fatalf("expected fresh battery to be accepted, got %v", err)
	}
}

func TestCreateInspectionBatteryLimitWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	// Six distinct batteries; the first falls out of the 5-battery window
	for i := 1; i <= 6; i++ {
		s := sampleSession(
			fmt.Sprintf("insp-%d", i), "team-1",
			fmt.Sprintf("2025casd_qm%d", i),
			fmt.Sprintf("B-%02d", i))
		s.StartTime = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateInspection(ctx, s); err != nil {
			t.Fatalf("CreateInspection(%d) failed: %v", i, err)
		}
		if err := repo.UpdateInspectionStatus(ctx, "team-1", s.ID, models.StatusCompleted); err != nil {
			t.Fatalf("UpdateInspectionStatus(%d) failed: %v", i, err)
		}
	}

	// B-01 is outside the window now, so it may be used again
	again := sampleSession("insp-7", "team-1", "2025casd_qm7", "B-01")
	again.StartTime = base.Add(10 * time.Minute)
	if err := repo.CreateInspection(ctx, again); err != nil {
		t.Fatalf("expected battery outside window to be accepted, got %v", err)
	}

	// B-06 is still inside it
	blocked := sampleSession("insp-8", "team-1", "2025casd_qm8", "B-06")
	blocked.StartTime = base.Add(11 * time.Minute)
	if err := repo.CreateInspection(ctx, blocked); err != ErrBatteryUsed {
		t.Errorf("expected ErrBatteryUsed for recent battery, got %v", err)
	}
}

func TestCreateInspectionAbandonsActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleSession("insp-1", "team-1", "", "")
	if err := repo.CreateInspection(ctx, first); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	second := sampleSession("insp-2", "team-1", "", "")
	second.StartTime = first.StartTime.Add(time.Minute)
	if err := repo.CreateInspection(ctx, second); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	old, err := repo.GetInspection(ctx, "team-1", "insp-1")
	if err != nil {
		t.Fatalf("GetInspection failed: %v", err)
	}
	if old.Status != models.StatusAbandoned {
		t.Errorf("expected first session abandoned, got %s", old.Status)
	}

	active, err := repo.GetActiveInspection(ctx, "team-1")
	if err != nil {
		t.Fatalf("GetActiveInspection failed: %v", err)
	}
	if active.ID != "insp-2" {
		t.Errorf("expected insp-2 active, got %s", active.ID)
	}
}

func TestCreateInspectionDemotesIsLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleSession("insp-1", "team-1", "2025casd_qm1", "")
	if err := repo.CreateInspection(ctx, first); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}
	if err := repo.UpdateInspectionStatus(ctx, "team-1", "insp-1", models.StatusFailed); err != nil {
		t.Fatalf("UpdateInspectionStatus failed: %v", err)
	}

	second := sampleSession("insp-2", "team-1", "2025casd_qm1", "")
	second.StartTime = first.StartTime.Add(time.Minute)
	if err := repo.CreateInspection(ctx, second); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	sessions, err := repo.ListMatchInspections(ctx, "team-1", "2025casd_qm1")
	if err != nil {
		t.Fatalf("ListMatchInspections failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	for _, s := range sessions {
		want := s.ID == "insp-2"
		if s.IsLatest != want {
			t.Errorf("session %s: is_latest = %v, want %v", s.ID, s.IsLatest, want)
		}
	}
}

func TestCreateInspectionSnapshotsPreviousBatteries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 1; i <= 2; i++ {
		s := sampleSession(
			fmt.Sprintf("insp-%d", i), "team-1",
			fmt.Sprintf("2025casd_qm%d", i),
			fmt.Sprintf("B-%02d", i))
		s.StartTime = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateInspection(ctx, s); err != nil {
			t.Fatalf("CreateInspection(%d) failed: %v", i, err)
		}
		if err := repo.UpdateInspectionStatus(ctx, "team-1", s.ID, models.StatusCompleted); err != nil {
			t.Fatalf("UpdateInspectionStatus(%d) failed: %v", i, err)
		}
	}

	third := sampleSession("insp-3", "team-1", "2025casd_qm3", "B-03")
	third.StartTime = base.Add(5 * time.Minute)
	if err := repo.CreateInspection(ctx, third); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	got, err := repo.GetInspection(ctx, "team-1", "insp-3")
	if err != nil {
		t.Fatalf("GetInspection failed: %v", err)
	}
	if len(got.PreviousBatteryNumbers) != 2 {
		t.Fatalf("expected 2 previous batteries, got %v", got.PreviousBatteryNumbers)
	}
	if got.PreviousBatteryNumbers[0] != "B-02" || got.PreviousBatteryNumbers[1] != "B-01" {
		t.Errorf("expected newest-first order, got %v", got.PreviousBatteryNumbers)
	}
}

func TestListInspectionsPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 1; i <= 5; i++ {
		s := sampleSession(fmt.Sprintf("insp-%d", i), "team-1", "", "")
		s.StartTime = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateInspection(ctx, s); err != nil {
			t.Fatalf("CreateInspection(%d) failed: %v", i, err)
		}
	}

	page, total, err := repo.ListInspections(ctx, "team-1", InspectionListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListInspections failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(page))
	}
	if page[0].ID != "insp-5" {
		t.Errorf("expected newest first, got %s", page[0].ID)
	}

	page3, total, err := repo.ListInspections(ctx, "team-1", InspectionListOptions{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("ListInspections failed: %v", err)
	}
	if total != 5 || len(page3) != 1 {
		t.Errorf("expected final page of 1/5, got %d/%d", len(page3), total)
	}
}

func TestListInspectionsStatusFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 1; i <= 3; i++ {
		s := sampleSession(fmt.Sprintf("insp-%d", i), "team-1", "", "")
		s.StartTime = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateInspection(ctx, s); err != nil {
			t.Fatalf("CreateInspection(%d) failed: %v", i, err)
		}
	}
	if err := repo.UpdateInspectionStatus(ctx, "team-1", "insp-3", models.StatusCompleted); err != nil {
		t.Fatalf("UpdateInspectionStatus failed: %v", err)
	}

	completed, total, err := repo.ListInspections(ctx, "team-1",
		InspectionListOptions{Page: 1, Limit: 10, Status: models.StatusCompleted})
	if err != nil {
		t.Fatalf("ListInspections failed: %v", err)
	}
	if total != 1 || len(completed) != 1 || completed[0].ID != "insp-3" {
		t.Errorf("status filter returned %d/%d", len(completed), total)
	}
}

func TestFinalizeInspectionWithPreparation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := sampleSession("insp-1", "team-1", "2025casd_qm1", "B-01")
	if err := repo.CreateInspection(ctx, session); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	end := time.Now().UTC()
	session.Status = models.StatusCompleted
	session.EndTime = &end
	session.UpdatedAt = end
	session.Results = []models.StepResult{
		{StepID: "item-bolts", Passed: true, Timestamp: end, CheckedBy: "inspector-1"},
	}
	session.Responses = checklist.Responses{
		"item-bolts": {Value: true, Timestamp: end, Inspector: "inspector-1"},
	}
	prep := &models.MatchPreparation{
		TeamID:              "team-1",
		MatchKey:            "2025casd_qm1",
		InspectionCompleted: true,
		InspectionID:        "insp-1",
		BatteryNumber:       "B-01",
		LastUpdated:         end,
	}
	if err := repo.FinalizeInspection(ctx, session, prep); err != nil {
		t.Fatalf("FinalizeInspection failed: %v", err)
	}

	got, err := repo.GetInspection(ctx, "team-1", "insp-1")
	if err != nil {
		t.Fatalf("GetInspection failed: %v", err)
	}
	if got.Status != models.StatusCompleted || got.EndTime == nil {
		t.Errorf("session not finalized: %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].StepID != "item-bolts" {
		t.Errorf("results not persisted: %+v", got.Results)
	}
	if _, ok := got.Responses["item-bolts"]; !ok {
		t.Errorf("responses not persisted: %+v", got.Responses)
	}

	gotPrep, err := repo.GetMatchPreparation(ctx, "team-1", "2025casd_qm1")
	if err != nil {
		t.Fatalf("GetMatchPreparation failed: %v", err)
	}
	if !gotPrep.InspectionCompleted || gotPrep.InspectionID != "insp-1" || gotPrep.BatteryNumber != "B-01" {
		t.Errorf("unexpected preparation: %+v", gotPrep)
	}
}

func TestFinalizeInspectionUpsertsPreparation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	session := sampleSession("insp-1", "team-1", "2025casd_qm1", "B-01")
	if err := repo.CreateInspection(ctx, session); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	session.Status = models.StatusCompleted
	prep := &models.MatchPreparation{
		TeamID: "team-1", MatchKey: "2025casd_qm1",
		InspectionCompleted: true, InspectionID: "insp-1", LastUpdated: now,
	}
	if err := repo.FinalizeInspection(ctx, session, prep); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}

	// Second finalize for the same match replaces the summary row
	prep.InspectionID = "insp-1"
	prep.BatteryNumber = "B-09"
	prep.LastUpdated = now.Add(time.Minute)
	if err := repo.FinalizeInspection(ctx, session, prep); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}

	got, err := repo.GetMatchPreparation(ctx, "team-1", "2025casd_qm1")
	if err != nil {
		t.Fatalf("GetMatchPreparation failed: %v", err)
	}
	if got.BatteryNumber != "B-09" {
		t.Errorf("upsert did not replace row: %+v", got)
	}
}

func TestUpdateInspectionResponses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := sampleSession("insp-1", "team-1", "", "")
	if err := repo.CreateInspection(ctx, session); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	responses := checklist.Responses{
		"item-bolts": {Value: false, Timestamp: time.Now().UTC(), Inspector: "inspector-1"},
	}
	if err := repo.UpdateInspectionResponses(ctx, "team-1", "insp-1", responses); err != nil {
		t.Fatalf("UpdateInspectionResponses failed: %v", err)
	}

	got, err := repo.GetInspection(ctx, "team-1", "insp-1")
	if err != nil {
		t.Fatalf("GetInspection failed: %v", err)
	}
	resp, ok := got.Responses["item-bolts"]
	if !ok {
		t.Fatalf("response missing: %+v", got.Responses)
	}
	if v, ok := resp.Value.(bool); !ok || v {
		t.Errorf("expected false value, got %v", resp.Value)
	}
}

func TestInspectionNotFoundPaths(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetInspection(ctx, "team-1", "missing"); err != ErrNotFound {
		t.Errorf("GetInspection: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetActiveInspection(ctx, "team-1"); err != ErrNotFound {
		t.Errorf("GetActiveInspection: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateInspectionStatus(ctx, "team-1", "missing", models.StatusCancelled); err != ErrNotFound {
		t.Errorf("UpdateInspectionStatus: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetMatchPreparation(ctx, "team-1", "2025casd_qm1"); err != ErrNotFound {
		t.Errorf("GetMatchPreparation: expected ErrNotFound, got %v", err)
	}
}

func TestTeamIsolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s1 := sampleSession("insp-1", "team-1", "2025casd_qm1", "")
	if err := repo.CreateInspection(ctx, s1); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	// Same match key for a different team is not a conflict
	s2 := sampleSession("insp-2", "team-2", "2025casd_qm1", "")
	if err := repo.CreateInspection(ctx, s2); err != nil {
		t.Fatalf("expected no cross-team conflict, got %v", err)
	}

	if _, err := repo.GetInspection(ctx, "team-2", "insp-1"); err != ErrNotFound {
		t.Errorf("expected cross-team read to miss, got %v", err)
	}
}

func TestTeamsCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	team := &models.Team{ID: "team-1", Number: "5526", Name: "Pitons"}
	if err := repo.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if err := repo.SetCurrentEvent(ctx, "team-1", "2025casd"); err != nil {
		t.Fatalf("SetCurrentEvent failed: %v", err)
	}

	got, err := repo.GetTeam(ctx, "team-1")
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	if got.Number != "5526" || got.CurrentEventKey != "2025casd" {
		t.Errorf("unexpected team: %+v", got)
	}

	byNumber, err := repo.GetTeamByNumber(ctx, "5526")
	if err != nil {
		t.Fatalf("GetTeamByNumber failed: %v", err)
	}
	if byNumber.ID != "team-1" {
		t.Errorf("unexpected team by number: %+v", byNumber)
	}
	if _, err := repo.GetTeamByNumber(ctx, "9999"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown number, got %v", err)
	}

	got.Name = "Pit Crew"
	if err := repo.UpdateTeam(ctx, got); err != nil {
		t.Fatalf("UpdateTeam failed: %v", err)
	}

	teams, err := repo.ListTeams(ctx)
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "Pit Crew" {
		t.Errorf("unexpected list: %+v", teams)
	}

	if err := repo.DeleteTeam(ctx, "team-1"); err != nil {
		t.Fatalf("DeleteTeam failed: %v", err)
	}
	if _, err := repo.GetTeam(ctx, "team-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTeam(ctx, "team-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestUsersUpsertAndLastTeam(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	user := &models.User{UID: "uid-1", DisplayName: "Sam", Email: "sam@example.com", UpdatedAt: now}
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	if err := repo.SetLastTeam(ctx, "uid-1", "team-1"); err != nil {
		t.Fatalf("SetLastTeam failed: %v", err)
	}

	// Upsert refreshes the profile but must not clobber last_team_id
	user.DisplayName = "Samantha"
	user.UpdatedAt = now.Add(time.Minute)
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("second UpsertUser failed: %v", err)
	}

	got, err := repo.GetUser(ctx, "uid-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.DisplayName != "Samantha" {
		t.Errorf("profile not refreshed: %+v", got)
	}
	if got.LastTeamID != "team-1" {
		t.Errorf("last team lost on upsert: %+v", got)
	}

	// A uid that never logged in gets a profile row created on the spot
	if err := repo.SetLastTeam(ctx, "uid-2", "team-2"); err != nil {
		t.Fatalf("SetLastTeam for new uid failed: %v", err)
	}
	fresh, err := repo.GetUser(ctx, "uid-2")
	if err != nil {
		t.Fatalf("GetUser after SetLastTeam failed: %v", err)
	}
	if fresh.LastTeamID != "team-2" {
		t.Errorf("last team not recorded for new uid: %+v", fresh)
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, "simulate_time"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.SetSetting(ctx, "simulate_time", "middle"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := repo.SetSetting(ctx, "simulate_time", "end"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	value, err := repo.GetSetting(ctx, "simulate_time")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "end" {
		t.Errorf("expected end, got %s", value)
	}
}
