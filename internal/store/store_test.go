package store

import (
	"fmt"
	"testing"

	"hospital-access/internal/aggregate"
	"hospital-access/internal/domain"
	"hospital-access/internal/pipeline"
	"hospital-access/internal/proximity"
	"hospital-access/internal/validate"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInsert(t *testing.T) {
	res := &pipeline.Result{
		RadiusM:    10000,
		Validation: validate.Stats{Total: 10, Kept: 7},
		Districts:  aggregate.DistrictCounts{Matched: 6, Unmatched: 1},
	}
	query, args, err := runInsert(res).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO hosp_runs (radius_m,rows_total,rows_kept,matched,unmatched) VALUES ($1,$2,$3,$4,$5) RETURNING id", query)
	assert.Equal(t, []interface{}{10000.0, 10, 7, 6, 1}, args)
}

func TestDistrictInsertsBatch(t *testing.T) {
	ds := make([]domain.District, batchRows+5)
	for i := range ds {
		ds[i] = domain.District{ID: fmt.Sprint(i), Department: "X", HospitalCount: i % 3}
	}
	qs := districtInserts(42, ds)
	require.Len(t, qs, 2)

	_, args, err := qs[0].ToSql()
	require.NoError(t, err)
	assert.Len(t, args, batchRows*4)

	query, args, err := qs[1].ToSql()
	require.NoError(t, err)
	assert.Len(t, args, 20)
	assert.Contains(t, query, "INSERT INTO hosp_district_counts (run_id,iddist,department,hospitals) VALUES ($1,$2,$3,$4),")
	assert.Equal(t, int64(42), args[0])

	assert.Empty(t, districtInserts(1, nil))
}

func TestDepartmentInserts(t *testing.T) {
	qs := departmentInserts(7, domain.DepartmentSet{Departments: []domain.Department{
		{Name: "LIMA", Districts: 43, HospitalCount: 120},
		{Name: "LORETO", Districts: 53, HospitalCount: 20},
	}})
	require.Len(t, qs, 1)
	query, args, err := qs[0].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO hosp_department_summary (run_id,department,districts,hospitals) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)", query)
	assert.Equal(t, []interface{}{int64(7), "LIMA", 43, 120, int64(7), "LORETO", 53, 20}, args)
}

func TestProximityInsert(t *testing.T) {
	_, ok := proximityInsert(1, nil)
	assert.False(t, ok)

	q, ok := proximityInsert(3, []domain.ProximityResult{
		{Region: "LIMA", Isolated: domain.CenterCount{Center: domain.PopulationCenter{Name: "A"}, LonLat: orb.Point{-77, -12}},
			Concentrated: domain.CenterCount{Center: domain.PopulationCenter{Name: "B"}, Count: 9}},
		proximity.Placeholder("UCAYALI", 10000),
	})
	require.True(t, ok)
	_, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Len(t, args, 4*8)
	assert.Equal(t, []interface{}{int64(3), "LIMA", "isolated", "A", 0, -77.0, -12.0, false}, args[:8])
	assert.Equal(t, true, args[31])
}

func TestRecentRunsQuery(t *testing.T) {
	query, args, err := recentRunsQuery(5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, created_at, radius_m, rows_total, rows_kept, matched, unmatched FROM hosp_runs ORDER BY id DESC LIMIT 5", query)
	assert.Empty(t, args)
}

func TestPruneRunsQuery(t *testing.T) {
	query, args, err := pruneRunsQuery(10).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM hosp_runs WHERE id NOT IN (SELECT id FROM hosp_runs ORDER BY id DESC LIMIT $1)", query)
	assert.Equal(t, []interface{}{uint64(10)}, args)
}
