// 包 store：运行结果写入 PostgreSQL（省级汇总、区县计数、邻近记录），以及最近运行的查询
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hospital-access/internal/domain"
	"hospital-access/internal/logger"
	"hospital-access/internal/pipeline"

	sq "github.com/Masterminds/squirrel"
)

const (
	tableRuns        = "hosp_runs"
	tableDepartments = "hosp_department_summary"
	tableDistricts   = "hosp_district_counts"
	tableProximity   = "hosp_proximity"

	// 单条 INSERT 的行数上限，避免超过 65535 个占位符
	batchRows = 1000
)

// Store：数据库访问入口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func exec(ctx context.Context, tx *sql.Tx, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func runInsert(res *pipeline.Result) sq.InsertBuilder {
	return builder().Insert(tableRuns).
		Columns("radius_m", "rows_total", "rows_kept", "matched", "unmatched").
		Values(res.RadiusM, res.Validation.Total, res.Validation.Kept, res.Districts.Matched, res.Districts.Unmatched).
		Suffix("RETURNING id")
}

func departmentInserts(runID int64, ds domain.DepartmentSet) []sq.InsertBuilder {
	var out []sq.InsertBuilder
	for start := 0; start < len(ds.Departments); start += batchRows {
		end := min(start+batchRows, len(ds.Departments))
		q := builder().Insert(tableDepartments).Columns("run_id", "department", "districts", "hospitals")
		for _, d := range ds.Departments[start:end] {
			q = q.Values(runID, d.Name, d.Districts, d.HospitalCount)
		}
		out = append(out, q)
	}
	return out
}

func districtInserts(runID int64, ds []domain.District) []sq.InsertBuilder {
	var out []sq.InsertBuilder
	for start := 0; start < len(ds); start += batchRows {
		end := min(start+batchRows, len(ds))
		q := builder().Insert(tableDistricts).Columns("run_id", "iddist", "department", "hospitals")
		for _, d := range ds[start:end] {
			q = q.Values(runID, d.ID, d.Department, d.HospitalCount)
		}
		out = append(out, q)
	}
	return out
}

func proximityInsert(runID int64, rs []domain.ProximityResult) (sq.InsertBuilder, bool) {
	if len(rs) == 0 {
		return sq.InsertBuilder{}, false
	}
	q := builder().Insert(tableProximity).
		Columns("run_id", "region", "role", "center", "hospitals", "lon", "lat", "placeholder")
	for _, r := range rs {
		for _, c := range []struct {
			role string
			cc   domain.CenterCount
		}{{"isolated", r.Isolated}, {"concentrated", r.Concentrated}} {
			q = q.Values(runID, r.Region, c.role, c.cc.Center.Name, c.cc.Count, c.cc.LonLat.Lon(), c.cc.LonLat.Lat(), r.Placeholder)
		}
	}
	return q, true
}

// 文档注释：在单个事务中写入一次运行的全部结果
// 返回：新 run 的 id；任一语句失败则整体回滚
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := runInsert(res).ToSql()
	if err != nil {
		return 0, err
	}
	var runID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	for _, q := range departmentInserts(runID, res.Departments) {
		if err := exec(ctx, tx, q); err != nil {
			return 0, fmt.Errorf("insert departments: %w", err)
		}
	}
	for _, q := range districtInserts(runID, res.Districts.Districts) {
		if err := exec(ctx, tx, q); err != nil {
			return 0, fmt.Errorf("insert districts: %w", err)
		}
	}
	if q, ok := proximityInsert(runID, res.Proximity); ok {
		if err := exec(ctx, tx, q); err != nil {
			return 0, fmt.Errorf("insert proximity: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Info("db_save_ok", "run_id", runID, "departments", len(res.Departments.Departments), "districts", len(res.Districts.Districts))
	return runID, nil
}

// Run：hosp_runs 的一行
type Run struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RadiusM   float64   `json:"radius_m"`
	RowsTotal int       `json:"rows_total"`
	RowsKept  int       `json:"rows_kept"`
	Matched   int       `json:"matched"`
	Unmatched int       `json:"unmatched"`
}

func recentRunsQuery(limit uint64) sq.SelectBuilder {
	return builder().Select("id", "created_at", "radius_m", "rows_total", "rows_kept", "matched", "unmatched").
		From(tableRuns).
		OrderBy("id DESC").
		Limit(limit)
}

// RecentRuns：最近 limit 次运行，新的在前
func (s *Store) RecentRuns(ctx context.Context, limit uint64) ([]Run, error) {
	query, args, err := recentRunsQuery(limit).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.RadiusM, &r.RowsTotal, &r.RowsKept, &r.Matched, &r.Unmatched); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func pruneRunsQuery(keep uint64) sq.DeleteBuilder {
	return builder().Delete(tableRuns).
		Where(sq.Expr("id NOT IN (SELECT id FROM "+tableRuns+" ORDER BY id DESC LIMIT ?)", keep))
}

// PruneRuns：只保留最近 keep 次运行；明细表随 ON DELETE CASCADE 删除
func (s *Store) PruneRuns(ctx context.Context, keep uint64) (int64, error) {
	query, args, err := pruneRunsQuery(keep).ToSql()
	if err != nil {
		return 0, err
	}
	r, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return r.RowsAffected()
}
