package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/marketlens/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ExperimentInfo summarizes one stored experiment for listings.
type ExperimentInfo struct {
	Name          string    `json:"name"`
	AgentsCount   int64     `json:"agents_count"`
	ActionsCount  int64     `json:"actions_count"`
	LogsCount     int64     `json:"logs_count"`
	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
}

// ListExperiments enumerates stored experiments with row counts and
// activity timestamps, most recently started first. A non-positive
// limit returns everything. Experiments missing any of the agents,
// actions, or logs tables are skipped.
func ListExperiments(cfg config.StorageConfig, limit int) ([]ExperimentInfo, error) {
	var names []string
	var err error
	switch cfg.Driver {
	case "sqlite":
		names, err = sqliteExperimentNames(cfg)
	case "mysql":
		names, err = mysqlExperimentNames(cfg)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]ExperimentInfo, 0, len(names))
	for _, name := range names {
		s, err := Open(cfg, name)
		if err != nil {
			continue
		}
		info, err := s.inspect()
		s.Close()
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].FirstActivity.After(infos[j].FirstActivity)
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// sqliteExperimentNames lists exported experiment files in cfg.Dir.
func sqliteExperimentNames(cfg config.StorageConfig) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.Dir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", cfg.Dir, err)
	}
	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".db")
		if ValidExperimentName(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// mysqlExperimentNames lists candidate experiment databases on the server.
func mysqlExperimentNames(cfg config.StorageConfig) ([]string, error) {
	cred := cfg.User
	if cfg.Password != "" {
		cred += ":" + cfg.Password
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/?parseTime=true", cred, cfg.Host, cfg.Port)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var names []string
	err = db.Raw(`SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
		ORDER BY schema_name`).Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("store: list databases: %w", err)
	}

	var valid []string
	for _, name := range names {
		if ValidExperimentName(name) {
			valid = append(valid, name)
		}
	}
	return valid, nil
}

// inspect collects row counts and activity bounds for one experiment.
// Experiments that lack any required table report an error and are
// skipped by ListExperiments.
func (s *Store) inspect() (ExperimentInfo, error) {
	info := ExperimentInfo{Name: s.experiment}

	for _, table := range []string{"agents", "actions", "logs"} {
		if !s.db.Migrator().HasTable(table) {
			return info, fmt.Errorf("store: experiment %s: missing table %s", s.experiment, table)
		}
	}

	type tableCount struct {
		table string
		dst   *int64
	}
	for _, tc := range []tableCount{
		{"agents", &info.AgentsCount},
		{"actions", &info.ActionsCount},
		{"logs", &info.LogsCount},
	} {
		if err := s.db.Table(tc.table).Count(tc.dst).Error; err != nil {
			return info, fmt.Errorf("store: count %s for %s: %w", tc.table, s.experiment, err)
		}
	}

	var first sql.NullTime
	if err := s.db.Table("agents").Select("MIN(created_at)").Scan(&first).Error; err != nil {
		return info, fmt.Errorf("store: first activity for %s: %w", s.experiment, err)
	}
	if first.Valid {
		info.FirstActivity = first.Time
	}

	for _, table := range []string{"agents", "actions", "logs"} {
		var last sql.NullTime
		if err := s.db.Table(table).Select("MAX(created_at)").Scan(&last).Error; err != nil {
			return info, fmt.Errorf("store: last activity for %s: %w", s.experiment, err)
		}
		if last.Valid && last.Time.After(info.LastActivity) {
			info.LastActivity = last.Time
		}
	}

	return info, nil
}
