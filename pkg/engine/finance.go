package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// ExpenseInput is a cost line to append.
type ExpenseInput struct {
	Description string                 `json:"description"`
	Amount      float64                `json:"amount"`
	Category    models.ExpenseCategory `json:"category"`
	Date        *models.JSONTime       `json:"date"`
}

// RevenueInput is an income line to append.
type RevenueInput struct {
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
	Date        *models.JSONTime `json:"date"`
}

// FinanceInput creates a finance record.
type FinanceInput struct {
	Project       uuid.UUID      `json:"project"`
	TotalInvested float64        `json:"totalInvested"`
	AbleToBill    float64        `json:"ableToBill"`
	Expenses      []ExpenseInput `json:"expenses"`
	Revenue       []RevenueInput `json:"revenue"`
}

// FinancePatch updates the totals and appends line items. Existing lines
// are never edited or removed.
type FinancePatch struct {
	TotalInvested *float64       `json:"totalInvested"`
	AbleToBill    *float64       `json:"ableToBill"`
	Expenses      []ExpenseInput `json:"expenses"`
	Revenue       []RevenueInput `json:"revenue"`
}

func nonNegative(field string, v float64) error {
	if v < 0 {
		return apperr.Validation("finance", field, "must not be negative")
	}
	return nil
}

func (s *Service) lineDate(d *models.JSONTime) models.JSONTime {
	if d == nil || d.Time().IsZero() {
		return models.JSONTime(s.timestamp())
	}
	return *d
}

func (s *Service) buildExpenses(in []ExpenseInput) ([]models.Expense, error) {
	out := make([]models.Expense, 0, len(in))
	for i, e := range in {
		if err := nonNegative(fmt.Sprintf("expenses[%d].amount", i), e.Amount); err != nil {
			return nil, err
		}
		category := e.Category
		if category == "" {
			category = models.ExpenseOther
		}
		if !category.Valid() {
			return nil, apperr.Validation("finance", fmt.Sprintf("expenses[%d].category", i), "must be one of Material, Labor, Equipment, Other")
		}
		out = append(out, models.Expense{
			Description: e.Description,
			Amount:      e.Amount,
			Category:    category,
			Date:        s.lineDate(e.Date).Time().UTC(),
		})
	}
	return out, nil
}

func (s *Service) buildRevenue(in []RevenueInput) ([]models.Revenue, error) {
	out := make([]models.Revenue, 0, len(in))
	for i, r := range in {
		if err := nonNegative(fmt.Sprintf("revenue[%d].amount", i), r.Amount); err != nil {
			return nil, err
		}
		out = append(out, models.Revenue{
			Description: r.Description,
			Amount:      r.Amount,
			Date:        s.lineDate(r.Date).Time().UTC(),
		})
	}
	return out, nil
}

// CreateFinance stores a finance record for an existing project.
func (s *Service) CreateFinance(ctx context.Context, actor Actor, in FinanceInput) (*models.Finance, error) {
	if err := nonNegative("totalInvested", in.TotalInvested); err != nil {
		return nil, err
	}
	if err := nonNegative("ableToBill", in.AbleToBill); err != nil {
		return nil, err
	}
	expenses, err := s.buildExpenses(in.Expenses)
	if err != nil {
		return nil, err
	}
	revenue, err := s.buildRevenue(in.Revenue)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireProject(ctx, in.Project); err != nil {
		return nil, err
	}

	now := s.timestamp()
	f := &models.Finance{
		ID:            uuid.New(),
		ProjectID:     in.Project,
		TotalInvested: in.TotalInvested,
		AbleToBill:    in.AbleToBill,
		Expenses:      expenses,
		Revenue:       revenue,
		UpdatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateFinance(ctx, f); err != nil {
		return nil, err
	}
	s.metrics.Write("finance", "create")
	s.log.Info().Str("finance", f.ID.String()).Str("project", f.ProjectID.String()).Str("user", actor.UserID).Msg("finance record created")
	return f, nil
}

// UpdateFinance replaces the totals given and appends new line items.
func (s *Service) UpdateFinance(ctx context.Context, actor Actor, id uuid.UUID, patch FinancePatch) (*models.Finance, error) {
	if patch.TotalInvested != nil {
		if err := nonNegative("totalInvested", *patch.TotalInvested); err != nil {
			return nil, err
		}
	}
	if patch.AbleToBill != nil {
		if err := nonNegative("ableToBill", *patch.AbleToBill); err != nil {
			return nil, err
		}
	}
	expenses, err := s.buildExpenses(patch.Expenses)
	if err != nil {
		return nil, err
	}
	revenue, err := s.buildRevenue(patch.Revenue)
	if err != nil {
		return nil, err
	}

	f, err := s.store.UpdateFinance(ctx, id, func(f *models.Finance) error {
		if patch.TotalInvested != nil {
			f.TotalInvested = *patch.TotalInvested
		}
		if patch.AbleToBill != nil {
			f.AbleToBill = *patch.AbleToBill
		}
		f.Expenses = append(f.Expenses, expenses...)
		f.Revenue = append(f.Revenue, revenue...)
		f.UpdatedBy = actor.UserID
		f.UpdatedAt = s.timestamp()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Write("finance", "update")
	s.log.Info().
		Str("finance", id.String()).
		Int("expensesAdded", len(expenses)).
		Int("revenueAdded", len(revenue)).
		Str("user", actor.UserID).
		Msg("finance record updated")
	return f, nil
}

// ListFinances returns every finance record, most recently updated first.
func (s *Service) ListFinances(ctx context.Context) ([]models.Finance, error) {
	return s.store.ListFinances(ctx)
}

// GetFinanceSummary folds the finance records visible right now into one
// portfolio summary.
func (s *Service) GetFinanceSummary(ctx context.Context) (rules.FinanceSummary, error) {
	records, err := s.store.ListFinances(ctx)
	if err != nil {
		return rules.FinanceSummary{}, err
	}
	summary := rules.AggregateFinances(records)
	s.log.Debug().Int("records", summary.ProjectCount).Str("efficiency", summary.Efficiency).Msg("finance summary computed")
	return summary, nil
}

// GetOrCreateProjectFinance returns the project's finance record, creating a
// zero one owned by actor on first access. Two first reads racing each
// other can both create; later reads return the oldest.
func (s *Service) GetOrCreateProjectFinance(ctx context.Context, actor Actor, projectID uuid.UUID) (*models.Finance, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	f, err := s.store.FindFinanceByProject(ctx, projectID)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	now := s.timestamp()
	f = &models.Finance{
		ID:        uuid.New(),
		ProjectID: projectID,
		Expenses:  []models.Expense{},
		Revenue:   []models.Revenue{},
		UpdatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateFinance(ctx, f); err != nil {
		return nil, err
	}
	s.metrics.Write("finance", "lazy-create")
	s.log.Info().Str("finance", f.ID.String()).Str("project", projectID.String()).Str("user", actor.UserID).Msg("finance record created on first access")
	return f, nil
}
