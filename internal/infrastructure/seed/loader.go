package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultBatchSize = 500

// TableResult reports what happened to one table
type TableResult struct {
	Table   string `json:"table"`
	File    string `json:"file"`
	Rows    int    `json:"rows"`
	Skipped bool   `json:"skipped"`
}

// Result summarizes a load
type Result struct {
	Tables []TableResult `json:"tables"`
	DryRun bool          `json:"dry_run"`
}

// Rows returns the number of rows loaded (or validated on a dry run)
func (r *Result) Rows() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Loader validates a directory of CSV files and inserts them in one transaction
type Loader struct {
	db        *gorm.DB
	logger    *zap.Logger
	tables    []Table
	batchSize int
	maxErrors int
	dryRun    bool
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithBatchSize sets the rows per INSERT statement
func WithBatchSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithMaxErrors caps the row errors reported per file
func WithMaxErrors(n int) LoaderOption {
	return func(l *Loader) {
		l.maxErrors = n
	}
}

// WithDryRun validates without writing
func WithDryRun(dryRun bool) LoaderOption {
	return func(l *Loader) {
		l.dryRun = dryRun
	}
}

// NewLoader creates a Loader for the dataset tables
func NewLoader(db *gorm.DB, logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		db:        db,
		logger:    logger,
		tables:    Tables(),
		batchSize: defaultBatchSize,
		maxErrors: defaultMaxErrors,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// pending is a validated file waiting to be inserted
type pending struct {
	table  Table
	models any
	rows   int
}

// Load reads "<table>.csv" for every dataset table found in fsys. Missing
// files are skipped. All files are validated before anything is written, and
// references may point at rows in an earlier file or already in the database.
func (l *Loader) Load(ctx context.Context, fsys fs.FS) (*Result, error) {
	db := l.db.WithContext(ctx)
	keys := KeySet{}
	known := make(map[string]bool)
	result := &Result{DryRun: l.dryRun}
	var batches []pending

	for _, table := range l.tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := readTable(fsys, table)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Info("Seed file not found, skipping", zap.String("file", table.File()))
			result.Tables = append(result.Tables, TableResult{Table: table.Name, File: table.File(), Skipped: true})
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, rule := range table.Rules {
			if rule.RefTable == "" || known[rule.RefTable] {
				continue
			}
			if err := l.loadKeys(db, rule.RefTable, keys); err != nil {
				return nil, err
			}
			known[rule.RefTable] = true
		}

		// self references may point forward in the same file
		for _, r := range rows {
			if id, err := strconv.ParseInt(r.Get(table.Key), 10, 64); err == nil {
				keys.Add(table.Name, id)
			}
		}

		v := NewRowValidator(table.Rules, keys, l.maxErrors)
		for _, r := range rows {
			v.Validate(r)
		}
		if v.Errors().HasErrors() {
			return nil, &ValidationError{Table: table.Name, File: table.File(), Errors: v.Errors()}
		}

		batches = append(batches, pending{table: table, models: table.build(rows), rows: len(rows)})
		result.Tables = append(result.Tables, TableResult{Table: table.Name, File: table.File(), Rows: len(rows)})
		l.logger.Debug("Seed file validated", zap.String("file", table.File()), zap.Int("rows", len(rows)))
	}

	if l.dryRun {
		l.logger.Info("Seed dry run complete", zap.Int("rows", result.Rows()))
		return result, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, b := range batches {
			if b.rows == 0 {
				continue
			}
			if err := tx.CreateInBatches(b.models, l.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert %s: %w", b.table.Name, err)
			}
			if err := resetSequence(tx, b.table); err != nil {
				return err
			}
			l.logger.Info("Seeded table", zap.String("table", b.table.Name), zap.Int("rows", b.rows))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadKeys adds the primary keys already stored in table to keys
func (l *Loader) loadKeys(db *gorm.DB, table string, keys KeySet) error {
	key := ""
	for _, t := range l.tables {
		if t.Name == table {
			key = t.Key
		}
	}
	if key == "" {
		return fmt.Errorf("unknown reference table %q", table)
	}

	var ids []int64
	if err := db.Table(table).Pluck(key, &ids).Error; err != nil {
		return fmt.Errorf("failed to load %s keys: %w", table, err)
	}
	for _, id := range ids {
		keys.Add(table, id)
	}
	return nil
}

// resetSequence moves a postgres serial past the explicitly inserted ids
func resetSequence(tx *gorm.DB, table Table) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	sql := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 1))",
		table.Name, table.Key, table.Key, table.Name,
	)
	if err := tx.Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to reset %s sequence: %w", table.Name, err)
	}
	return nil
}

// readTable opens and parses a table's file, checking its header
func readTable(fsys fs.FS, table Table) ([]*Row, error) {
	f, err := fsys.Open(table.File())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.File(), err)
	}
	if missing := rd.MissingColumns(table.RequiredColumns()); len(missing) > 0 {
		return nil, &MissingColumnsError{File: table.File(), Columns: missing}
	}

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.File(), err)
	}
	return rows, nil
}
