// Package store reads experiment logs left behind by marketplace
// simulation runs. Each experiment is an isolated namespace: a SQLite
// file under the configured directory, or a database of the same name
// on a MySQL-protocol server. The store is read-only; it never writes
// back to the log tables.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zulandar/marketlens/internal/config"
	"github.com/zulandar/marketlens/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// experimentNameRe guards against SQL injection through experiment
// names, which are interpolated into database and file names.
var experimentNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidExperimentName reports whether name is safe to use as an
// experiment namespace (alphanumeric and underscore, no leading digit).
func ValidExperimentName(name string) bool {
	return experimentNameRe.MatchString(name)
}

// Store is a read handle on one experiment's log tables. Each pipeline
// invocation opens its own Store and closes it when done; handles are
// never shared through package-level state.
type Store struct {
	db         *gorm.DB
	experiment string
}

// DSN builds a MySQL-compatible DSN for one experiment database.
func DSN(cfg config.StorageConfig, experiment string) string {
	cred := cfg.User
	if cfg.Password != "" {
		cred += ":" + cfg.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, cfg.Host, cfg.Port, experiment)
}

// SQLitePath returns the file path for an exported experiment.
func SQLitePath(cfg config.StorageConfig, experiment string) string {
	return filepath.Join(cfg.Dir, experiment+".db")
}

// Open opens a read handle on the named experiment.
func Open(cfg config.StorageConfig, experiment string) (*Store, error) {
	if !ValidExperimentName(experiment) {
		return nil, fmt.Errorf("store: invalid experiment name %q", experiment)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		path := SQLitePath(cfg, experiment)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("store: experiment %s: %w", experiment, err)
		}
		dialector = sqlite.Open(path)
	case "mysql":
		dialector = mysql.Open(DSN(cfg, experiment))
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open experiment %s: %w", experiment, err)
	}
	return &Store{db: db, experiment: experiment}, nil
}

// Experiment returns the experiment name this store reads.
func (s *Store) Experiment() string { return s.experiment }

// AllAgents fetches the full agent roster, oldest first. This is a
// bulk snapshot read bounded by ctx; a failure here means the whole
// invocation fails (no partial roster is returned).
func (s *Store) AllAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("store: fetch agents for %s: %w", s.experiment, err)
	}
	return agents, nil
}

// AllActions fetches the full action log, oldest first. Same snapshot
// semantics as AllAgents.
func (s *Store) AllActions(ctx context.Context) ([]models.Action, error) {
	var actions []models.Action
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("store: fetch actions for %s: %w", s.experiment, err)
	}
	return actions, nil
}

// Logs fetches diagnostic log entries recorded after since, oldest
// first, at most limit rows. A zero since means no lower bound; a
// non-positive limit means no cap.
func (s *Store) Logs(ctx context.Context, since time.Time, limit int) ([]models.Log, error) {
	q := s.db.WithContext(ctx).Model(&models.Log{})
	if !since.IsZero() {
		q = q.Where("created_at > ?", since)
	}
	q = q.Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.Log
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("store: fetch logs for %s: %w", s.experiment, err)
	}
	return logs, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close %s: %w", s.experiment, err)
	}
	return sqlDB.Close()
}
