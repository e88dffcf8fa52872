package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/inventory"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/store"
	"computer-inventory-api/pkg/importer"
)

func main() {
	var (
		filePath    = flag.String("file", "", "Path of the .xlsx workbook")
		mappingPath = flag.String("mapping", "", "YAML header mapping (default: built-in)")
		dryRun      = flag.Bool("dry-run", false, "Validate rows without writing")
		maxErrors   = flag.Int("max-errors", importer.DefaultMaxErrors, "Abort after this many row errors")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_excel --file=path.xlsx [--mapping=mapping.yaml] [--dry-run] [--max-errors=50]")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer logger.Sync()

	opts := importer.ImportOptions{DryRun: *dryRun, MaxErrors: *maxErrors}
	if *mappingPath != "" {
		if opts.Mapping, err = importer.LoadMapping(*mappingPath); err != nil {
			log.Fatalf("Invalid mapping: %v", err)
		}
	}

	ctx := context.Background()
	db, err := store.Open(ctx, store.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if _, err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open Excel file: %v", err)
	}
	defer file.Close()

	fmt.Printf("Importing from %s into %s (dry_run=%v)\n", *filePath, db.Driver(), *dryRun)
	fmt.Println(strings.Repeat("=", 60))

	summary, err := importer.ImportExcel(ctx, inventory.NewService(db), file, opts)

	// Print summary
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Total created: %d\n", summary.Created)
	fmt.Printf("Total updated: %d\n", summary.Updated)
	fmt.Printf("Total unchanged: %d\n", summary.Unchanged)
	fmt.Printf("Total valid: %d\n", summary.Valid)
	fmt.Printf("Total skipped: %d\n", summary.Skipped)
	fmt.Printf("Total errors: %d\n", summary.Errors)
	fmt.Printf("Dry run: %v\n", summary.DryRun)

	if len(summary.Sheets) > 0 {
		fmt.Println("\nSheet Details:")
		for _, sheet := range summary.Sheets {
			fmt.Printf("  %s: created=%d, updated=%d, unchanged=%d, skipped=%d, errors=%d\n",
				sheet.Name, sheet.Created, sheet.Updated, sheet.Unchanged, sheet.Skipped, sheet.Errors)

			if len(sheet.Samples) > 0 {
				fmt.Printf("    Error samples:\n")
				for _, sample := range sheet.Samples {
					fmt.Printf("      Row %d: %s\n", sample.Row, sample.Message)
				}
			}
		}
	}

	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}
