package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"agora/internal/middleware"

	"gorm.io/gorm"
)

// Migration is one versioned schema change with up and down SQL.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

func init() {
	if err := registerMigrations(migrationFS); err != nil {
		panic(fmt.Sprintf("failed to register migrations: %v", err))
	}
}

// registerMigrations loads NNNN_name.up.sql / NNNN_name.down.sql pairs from
// the embedded filesystem into the package migration list.
func registerMigrations(efs embed.FS) error {
	entries, err := efs.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".sql")
		down := strings.HasSuffix(base, ".down")
		base = strings.TrimSuffix(strings.TrimSuffix(base, ".down"), ".up")

		var version int
		var migName string
		if _, err := fmt.Sscanf(base, "%d_", &version); err != nil {
			return fmt.Errorf("migration file %q has no numeric version prefix", name)
		}
		if idx := strings.Index(base, "_"); idx >= 0 {
			migName = base[idx+1:]
		}

		content, err := efs.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("failed to read migration %q: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: migName}
			byVersion[version] = m
		}
		if down {
			m.DownScript = string(content)
		} else {
			m.UpScript = string(content)
		}
	}

	migrations = migrations[:0]
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return nil
}

// Migrations returns the registered migrations in version order.
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	return out
}

// MigrationLog is a record of an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// AppliedVersions returns the versions recorded in migration_logs, ascending.
func AppliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return nil, fmt.Errorf("failed to ensure migration log table: %w", err)
	}

	var versions []int
	if err := db.WithContext(ctx).
		Model(&MigrationLog{}).
		Order("version asc").
		Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	return versions, nil
}

// RunMigrations applies every pending migration in version order, each in
// its own transaction together with its log record.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return err
	}
	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		start := time.Now()
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
		}
		middleware.Logger.Info("Applied migration",
			slog.Int("version", m.Version),
			slog.String("name", m.Name),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}

// RollbackMigration reverts a single applied migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	var target *Migration
	for i := range migrations {
		if migrations[i].Version == version {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown migration version %d", version)
	}
	if target.DownScript == "" {
		return fmt.Errorf("migration %04d_%s has no down script", target.Version, target.Name)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.DownScript).Error; err != nil {
			return err
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
	if err != nil {
		return fmt.Errorf("rollback of %04d_%s failed: %w", target.Version, target.Name, err)
	}

	middleware.Logger.Info("Rolled back migration",
		slog.Int("version", target.Version),
		slog.String("name", target.Name),
	)
	return nil
}
