package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// Audit rule names.
const (
	AuditAvailability      = "availability"
	AuditDanglingReference = "dangling_reference"
	AuditMaterialLifecycle = "material_lifecycle"
	AuditProgressRange     = "progress_range"
	AuditDuplicateFinance  = "duplicate_finance"
)

// Finding is one stored document that breaks a consistency rule.
type Finding struct {
	Entity string    `json:"entity"`
	ID     uuid.UUID `json:"id"`
	Rule   string    `json:"rule"`
	Detail string    `json:"detail"`
}

// AuditReport is the result of a full scan.
type AuditReport struct {
	CheckedAt time.Time      `json:"checkedAt"`
	Scanned   map[string]int `json:"scanned"`
	Findings  []Finding      `json:"findings"`
}

// Clean reports whether the scan found nothing.
func (r *AuditReport) Clean() bool {
	return len(r.Findings) == 0
}

func (r *AuditReport) add(entity string, id uuid.UUID, rule, format string, args ...interface{}) {
	r.Findings = append(r.Findings, Finding{
		Entity: entity,
		ID:     id,
		Rule:   rule,
		Detail: fmt.Sprintf(format, args...),
	})
}

// Audit scans every collection and re-checks the rules the engine enforces
// on write. Dangling references are expected after a project delete and
// are reported, not repaired.
func (s *Service) Audit(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{CheckedAt: s.timestamp(), Scanned: map[string]int{}, Findings: []Finding{}}

	projects, err := s.store.ListProjects(ctx, models.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	report.Scanned["project"] = len(projects)
	known := make(map[uuid.UUID]bool, len(projects))
	for i := range projects {
		p := &projects[i]
		known[p.ID] = true
		if err := rules.ValidatePercent("project", "progress", p.Progress); err != nil {
			report.add("project", p.ID, AuditProgressRange, "progress is %d", p.Progress)
		}
	}

	workers, err := s.store.ListManpower(ctx, models.ManpowerFilter{})
	if err != nil {
		return nil, err
	}
	report.Scanned["manpower"] = len(workers)
	for i := range workers {
		m := &workers[i]
		assigned := m.AssignedProjectID != nil
		if m.IsAvailable == assigned {
			report.add("manpower", m.ID, AuditAvailability, "isAvailable=%t with assignedProject set=%t", m.IsAvailable, assigned)
		}
		if assigned && !known[*m.AssignedProjectID] {
			report.add("manpower", m.ID, AuditDanglingReference, "assigned to missing project %s", m.AssignedProjectID)
		}
	}

	materials, err := s.store.ListMaterials(ctx, models.MaterialFilter{})
	if err != nil {
		return nil, err
	}
	report.Scanned["material"] = len(materials)
	for i := range materials {
		m := &materials[i]
		if !known[m.ProjectID] {
			report.add("material", m.ID, AuditDanglingReference, "references missing project %s", m.ProjectID)
		}
		if detail := materialDrift(m); detail != "" {
			report.add("material", m.ID, AuditMaterialLifecycle, "%s", detail)
		}
	}

	reports, err := s.store.ListProgress(ctx, nil)
	if err != nil {
		return nil, err
	}
	report.Scanned["progress"] = len(reports)
	for i := range reports {
		r := &reports[i]
		if !known[r.ProjectID] {
			report.add("progress", r.ID, AuditDanglingReference, "references missing project %s", r.ProjectID)
		}
	}

	finances, err := s.store.ListFinances(ctx)
	if err != nil {
		return nil, err
	}
	report.Scanned["finance"] = len(finances)
	perProject := map[uuid.UUID]int{}
	for i := range finances {
		f := &finances[i]
		if !known[f.ProjectID] {
			report.add("finance", f.ID, AuditDanglingReference, "references missing project %s", f.ProjectID)
		}
		perProject[f.ProjectID]++
		if perProject[f.ProjectID] == 2 {
			report.add("project", f.ProjectID, AuditDuplicateFinance, "project has more than one finance record")
		}
	}

	for _, f := range report.Findings {
		s.metrics.RuleDecision("audit", f.Rule)
		s.log.Warn().Str("entity", f.Entity).Str("id", f.ID.String()).Str("rule", f.Rule).Msg(f.Detail)
	}
	s.log.Info().Int("findings", len(report.Findings)).Msg("audit complete")
	return report, nil
}

// materialDrift describes how a stored material differs from what the
// lifecycle policy would make of it, or "" when it matches.
func materialDrift(m *models.Material) string {
	state, err := rules.ClassifyMaterial(rules.FieldsOf(m))
	if err != nil {
		return apperr.As(err).Message
	}
	want := *m
	state.Apply(&want)
	switch {
	case want.Status != m.Status:
		return fmt.Sprintf("status %q should be %q", m.Status, want.Status)
	case (want.Priority == nil) != (m.Priority == nil):
		return "priority does not match type " + string(m.Type)
	case (want.NeededBy == nil) != (m.NeededBy == nil):
		return "neededBy does not match type " + string(m.Type)
	}
	return ""
}
