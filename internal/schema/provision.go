package schema

import (
	"context"
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/progress"
)

// Backend is the part of the backend API provisioning needs.
type Backend interface {
	ListCollections(ctx context.Context) ([]pocketbase.Collection, error)
	ImportCollections(ctx context.Context, defs []pocketbase.Collection, deleteMissing bool) error
}

// Failure is one collection whose import was rejected.
type Failure struct {
	Name string
	Err  error
}

// Summary reports what a run did with every collection.
type Summary struct {
	DryRun          bool
	Imported        []string
	SkippedExisting []string
	SkippedAuth     []string
	SkippedExcluded []string
	// Missing are ordered names absent from the schema file.
	Missing []string
	// Unordered are file collections absent from the import order; they are
	// never imported.
	Unordered []string
	Failed    []Failure
}

// Provisioner imports a schema into a backend.
type Provisioner struct {
	Backend  Backend
	Order    []string
	Exclude  []string
	DryRun   bool
	Logger   *zap.Logger
	Reporter progress.Reporter
}

// Run imports defs in p.Order. Only the initial listing of existing
// collections is fatal; a rejected import is recorded and the run goes on.
func (p *Provisioner) Run(ctx context.Context, defs []pocketbase.Collection) (*Summary, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := p.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	order := p.Order
	if order == nil {
		order = ImportOrder
	}
	for _, pattern := range p.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	existingCols, err := p.Backend.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing existing collections: %w", err)
	}
	existing := make(map[string]bool, len(existingCols))
	for _, c := range existingCols {
		existing[c.Name] = true
	}

	byName := make(map[string]pocketbase.Collection, len(defs))
	sum := &Summary{DryRun: p.DryRun}
	for _, d := range defs {
		byName[d.Name] = d
		if !slices.Contains(order, d.Name) {
			sum.Unordered = append(sum.Unordered, d.Name)
			logger.Warn("collection not in import order, ignoring", zap.String("collection", d.Name))
		}
	}

	reporter.Start(len(order))
	defer reporter.Finish()

	for i, name := range order {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		reporter.Update(i+1, name)
		log := logger.With(zap.String("collection", name))

		def, ok := byName[name]
		switch {
		case !ok:
			sum.Missing = append(sum.Missing, name)
			log.Warn("collection not found in schema file")
			continue
		case def.Type == pocketbase.CollectionTypeAuth:
			sum.SkippedAuth = append(sum.SkippedAuth, name)
			log.Info("skipping auth collection")
			continue
		case existing[name]:
			sum.SkippedExisting = append(sum.SkippedExisting, name)
			log.Info("collection already exists, skipping")
			continue
		case p.excluded(name):
			sum.SkippedExcluded = append(sum.SkippedExcluded, name)
			log.Info("collection excluded by pattern, skipping")
			continue
		}

		if p.DryRun {
			sum.Imported = append(sum.Imported, name)
			log.Info("would import collection")
			continue
		}

		if err := p.Backend.ImportCollections(ctx, []pocketbase.Collection{def}, false); err != nil {
			sum.Failed = append(sum.Failed, Failure{Name: name, Err: err})
			log.Error("import failed", zap.Error(err))
			continue
		}
		existing[name] = true
		sum.Imported = append(sum.Imported, name)
		log.Info("imported collection")
	}

	return sum, nil
}

func (p *Provisioner) excluded(name string) bool {
	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
