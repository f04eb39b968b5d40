package main

import (
	"context"
	"fmt"
	"os"

	"p9e.in/sitecore/config"
	"p9e.in/sitecore/pkg/engine"
	"p9e.in/sitecore/pkg/store/gormstore"
)

// quick_verify runs the consistency audit against the configured database
// and exits non-zero when anything is found.
func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	log := config.InitLogger(settings)

	db, err := config.Connect(settings.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	svc := engine.New(gormstore.New(db), engine.WithLogger(log))

	report, err := svc.Audit(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("audit failed")
	}

	fmt.Println("========================================")
	fmt.Println("VERIFICATION: Site data consistency")
	fmt.Println("========================================")
	for _, entity := range []string{"project", "manpower", "material", "progress", "finance"} {
		fmt.Printf("%-10s %d scanned\n", entity, report.Scanned[entity])
	}
	fmt.Println("----------------------------------------")

	if report.Clean() {
		fmt.Println("OK: no findings")
		return
	}
	for _, f := range report.Findings {
		fmt.Printf("[%s] %s %s: %s\n", f.Rule, f.Entity, f.ID, f.Detail)
	}
	fmt.Printf("\nTotal findings: %d\n", len(report.Findings))
	os.Exit(1)
}
