package migrate

import (
	"context"
	"database/sql"

	"hospital-access/internal/logger"
)

// 背景：首次运行自动创建结果表；每次运行写入一条 run 记录，明细表以 run_id 关联
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS hosp_runs (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		radius_m DOUBLE PRECISION NOT NULL,
		rows_total INT NOT NULL,
		rows_kept INT NOT NULL,
		matched INT NOT NULL,
		unmatched INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hosp_department_summary (
		run_id BIGINT NOT NULL REFERENCES hosp_runs(id) ON DELETE CASCADE,
		department TEXT NOT NULL,
		districts INT NOT NULL,
		hospitals INT NOT NULL,
		PRIMARY KEY (run_id, department)
	)`,
	`CREATE TABLE IF NOT EXISTS hosp_district_counts (
		run_id BIGINT NOT NULL REFERENCES hosp_runs(id) ON DELETE CASCADE,
		iddist TEXT NOT NULL,
		department TEXT NOT NULL,
		hospitals INT NOT NULL,
		PRIMARY KEY (run_id, iddist)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_district_counts_zero ON hosp_district_counts(run_id) WHERE hospitals = 0`,
	`CREATE TABLE IF NOT EXISTS hosp_proximity (
		run_id BIGINT NOT NULL REFERENCES hosp_runs(id) ON DELETE CASCADE,
		region TEXT NOT NULL,
		role TEXT NOT NULL,
		center TEXT NOT NULL,
		hospitals INT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		placeholder BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (run_id, region, role)
	)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
