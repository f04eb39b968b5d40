package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/engine"
)

var seedActor = engine.Actor{UserID: "seed", Role: engine.RoleAdmin}

// RunAllSeeding loads a small demo portfolio through the engine so every
// seeded record passes the same rules as live traffic. It does nothing
// when projects already exist.
func RunAllSeeding(ctx context.Context, svc *engine.Service) error {
	existing, err := svc.ListProjects(ctx, models.ProjectFilter{})
	if err != nil {
		return fmt.Errorf("seed: list projects: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("projects", len(existing)).Msg("seed: data present, skipping")
		return nil
	}

	log.Info().Msg("=== Starting Demo Seeding ===")

	log.Info().Msg("[1/4] Seeding Projects...")
	tower, err := svc.CreateProject(ctx, seedActor, engine.ProjectInput{
		ProjectID: "TWR-001", Name: "Riverside Tower", Location: "Pune", ClientName: "Riverside Developers", Budget: 12500000,
		Timeline: []engine.MilestoneInput{{Title: "Site cleared"}, {Title: "Foundation"}},
	})
	if err != nil {
		return fmt.Errorf("seed: project: %w", err)
	}
	if _, err := svc.CreateProject(ctx, seedActor, engine.ProjectInput{
		ProjectID: "BRG-002", Name: "Canal Bridge", Location: "Nashik", Budget: 4800000,
	}); err != nil {
		return fmt.Errorf("seed: project: %w", err)
	}

	log.Info().Msg("[2/4] Seeding Manpower...")
	crew := []engine.ManpowerInput{
		{EmployeeID: "EMP-001", Name: "Suresh Patil", Role: "Site Engineer", AssignedProject: models.SomeID(tower.ID)},
		{EmployeeID: "EMP-002", Name: "Anita Rao", Role: "Mason"},
		{EmployeeID: "EMP-003", Name: "Imran Shaikh", Role: "Electrician"},
	}
	for _, in := range crew {
		if _, err := svc.CreateManpower(ctx, seedActor, in); err != nil {
			return fmt.Errorf("seed: manpower %s: %w", in.EmployeeID, err)
		}
	}

	log.Info().Msg("[3/4] Seeding Materials...")
	materials := []engine.MaterialInput{
		{Project: tower.ID, Name: "Cement", Quantity: "200 bags", Type: models.MaterialAvailable, Status: models.MaterialInStock},
		{Project: tower.ID, Name: "TMT bars", Quantity: "12 t", Type: models.MaterialRequired, Priority: models.PriorityHigh},
	}
	for _, in := range materials {
		if _, err := svc.CreateMaterial(ctx, seedActor, in); err != nil {
			return fmt.Errorf("seed: material %s: %w", in.Name, err)
		}
	}

	log.Info().Msg("[4/4] Seeding Progress and Finance...")
	if _, err := svc.SubmitProgress(ctx, seedActor, engine.ProgressInput{
		Project: tower.ID, WorkCompleted: 15, Status: models.WorkStarted, Notes: "Excavation complete",
	}); err != nil {
		return fmt.Errorf("seed: progress: %w", err)
	}
	if _, err := svc.CreateFinance(ctx, seedActor, engine.FinanceInput{
		Project: tower.ID, TotalInvested: 1500000, AbleToBill: 900000,
		Expenses: []engine.ExpenseInput{{Description: "Excavation", Amount: 350000, Category: models.ExpenseLabor}},
	}); err != nil {
		return fmt.Errorf("seed: finance: %w", err)
	}

	log.Info().Msg("=== Demo Seeding Complete ===")
	return nil
}
