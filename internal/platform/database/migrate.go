package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SchemaVersion은 schema.sql이 만드는 refresh_events 스키마 버전. PRAGMA user_version에 남긴다
const SchemaVersion = 1

var ErrSchemaTooNew = errors.New("journal database was written by a newer schema")

//go:embed queries/schema.sql
var schemaDDL string

// Migrate는 스키마를 적용하고 user_version을 올린다.
// 더 새로운 버전으로 기록된 파일이면 건드리지 않고 실패한다
func Migrate(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("%w: found %d, supported %d", ErrSchemaTooNew, current, SchemaVersion)
	}

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if current == SchemaVersion {
		return nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	log.Info().Int("from", current).Int("to", SchemaVersion).Msg("[Database] journal schema migrated")
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
