// AngelaMos | 2026
// reconciler.go

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/sheet"
)

var (
	licenseColumns  = []string{"Licence Number", "license_number", "License_No"}
	stallColumns    = []string{"Business Name", "Stall_Name", "stall_name"}
	licenseeColumns = []string{"Licensee Name", "Licensee_Name", "licensee_name"}
	addressColumns  = []string{"Establishment Address", "Establishment_Address", "establishment_address"}
	postalColumns   = []string{"Postal Code", "Postal_Code", "postal_code"}
)

type ManifestEntry struct {
	HawkerCentre string `json:"hawker_centre"`
	File         string `json:"file"`
}

// Report counts what one run did. Skipped is set when the store already
// held data or the manifest could not be loaded.
type Report struct {
	Skipped           bool
	CentresCreated    int
	BusinessesCreated int
	EntriesSkipped    int
	RowsSkipped       int
}

type Reconciler struct {
	store  Store
	logger *slog.Logger
	open   func(path string) (*sheet.Table, error)
}

func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:  store,
		logger: logger.With("component", "seed"),
		open:   sheet.Open,
	}
}

// Run seeds hawker centres and placeholder businesses from the manifest,
// once, into an empty store. A missing or malformed manifest skips the
// run without error. Store failures roll the whole run back and are
// returned.
func (r *Reconciler) Run(ctx context.Context, manifestPath string) (*Report, error) {
	ctx, span := core.StartSpan(ctx, "seed.run",
		attribute.String("seed.manifest", manifestPath))
	defer span.End()

	report := &Report{}

	hasData, err := r.store.HasData(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}
	if hasData {
		r.logger.Info("store already populated, skipping seed")
		report.Skipped = true
		return report, nil
	}

	entries, err := loadManifest(manifestPath)
	if err != nil {
		r.logger.Error("seed manifest unusable, skipping seed",
			"path", manifestPath,
			"error", err,
		)
		report.Skipped = true
		return report, nil
	}

	baseDir := filepath.Dir(manifestPath)

	err = r.store.WithinTx(ctx, func(w Writer) error {
		for _, entry := range entries {
			if err := r.seedEntry(ctx, w, baseDir, entry, report); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("seed: %w", err)
	}

	core.RecordCounts(ctx, map[string]int{
		"seed.centres_created":    report.CentresCreated,
		"seed.businesses_created": report.BusinessesCreated,
		"seed.entries_skipped":    report.EntriesSkipped,
		"seed.rows_skipped":       report.RowsSkipped,
	})

	r.logger.Info("seed complete",
		"centres_created", report.CentresCreated,
		"businesses_created", report.BusinessesCreated,
		"entries_skipped", report.EntriesSkipped,
		"rows_skipped", report.RowsSkipped,
	)
	return report, nil
}

func (r *Reconciler) seedEntry(
	ctx context.Context,
	w Writer,
	baseDir string,
	entry ManifestEntry,
	report *Report,
) error {
	centre := strings.TrimSpace(entry.HawkerCentre)
	file := strings.TrimSpace(entry.File)
	if centre == "" || file == "" {
		r.logger.Warn("skipping incomplete manifest entry", "entry", entry)
		report.EntriesSkipped++
		return nil
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, file)
	}

	table, err := r.open(path)
	if err != nil {
		r.logger.Warn("skipping unreadable spreadsheet",
			"hawker_centre", centre,
			"path", path,
			"error", err,
		)
		report.EntriesSkipped++
		return nil
	}

	created, err := w.EnsureCentre(ctx, centre)
	if err != nil {
		return err
	}
	if created {
		report.CentresCreated++
	}

	for _, row := range table.Rows {
		license := table.Value(row, licenseColumns...)
		if license == "" {
			report.RowsSkipped++
			continue
		}

		exists, err := w.LicenseExists(ctx, license)
		if err != nil {
			return err
		}
		if exists {
			report.RowsSkipped++
			continue
		}

		err = w.CreatePlaceholder(ctx, Placeholder{
			LicenseNumber:        license,
			StallName:            table.Value(row, stallColumns...),
			LicenseeName:         table.Value(row, licenseeColumns...),
			EstablishmentAddress: table.Value(row, addressColumns...),
			PostalCode:           table.Value(row, postalColumns...),
			HawkerCentre:         centre,
		})
		if err != nil {
			return err
		}
		report.BusinessesCreated++
	}

	r.logger.Debug("seeded hawker centre", "hawker_centre", centre, "rows", len(table.Rows))
	return nil
}

func loadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return entries, nil
}
