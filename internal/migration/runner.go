package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Report counts the outcome of one collection.
type Report struct {
	Collection string `json:"collection"`
	Table      string `json:"table"`
	Read       int    `json:"read"`
	Written    int    `json:"written"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// Options tunes a run.
type Options struct {
	// DryRun reads and maps every record without writing.
	DryRun bool
}

// Runner copies Firebase collections into Postgres one record at a time.
type Runner struct {
	source Source
	sink   Sink
	logger *zap.Logger
	opts   Options
}

// NewRunner wires a source and a sink.
func NewRunner(source Source, sink Sink, logger *zap.Logger, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{source: source, sink: sink, logger: logger, opts: opts}
}

// Run migrates each collection in order. Unknown collections are rejected
// before anything is read. A failed source read aborts the run; a failed
// record write is counted and the run continues.
func (r *Runner) Run(ctx context.Context, collections []string) ([]Report, error) {
	tables := make([]Table, 0, len(collections))
	for _, name := range collections {
		table, ok := TableFor(name)
		if !ok {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
		tables = append(tables, table)
	}

	reports := make([]Report, 0, len(tables))
	for _, table := range tables {
		report, err := r.migrate(ctx, table)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
		r.logger.Info("collection migrated",
			zap.String("collection", report.Collection),
			zap.String("table", report.Table),
			zap.Int("read", report.Read),
			zap.Int("written", report.Written),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
			zap.Bool("dry_run", r.opts.DryRun),
		)
	}
	return reports, nil
}

func (r *Runner) migrate(ctx context.Context, table Table) (Report, error) {
	report := Report{Collection: table.Collection, Table: table.Name}

	records, err := r.source.Read(ctx, table.Collection)
	if err != nil {
		return report, err
	}
	report.Read = len(records)

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		values, err := table.MapRecord(key, records[key])
		if err != nil {
			var skip errSkip
			if errors.As(err, &skip) {
				report.Skipped++
				r.logger.Debug("record skipped", zap.String("collection", table.Collection), zap.String("reason", skip.reason))
				continue
			}
			report.Failed++
			r.logger.Warn("record mapping failed", zap.String("collection", table.Collection), zap.Error(err))
			continue
		}

		if r.opts.DryRun {
			continue
		}
		if err := r.sink.Upsert(ctx, table, values); err != nil {
			report.Failed++
			r.logger.Warn("record write failed", zap.String("collection", table.Collection), zap.String("key", key), zap.Error(err))
			continue
		}
		report.Written++
	}
	return report, nil
}
