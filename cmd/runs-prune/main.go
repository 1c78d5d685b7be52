package main

import (
	"context"
	"os"
	"strconv"

	"hospital-access/internal/config"
	"hospital-access/internal/logger"
	"hospital-access/internal/store"
	"hospital-access/internal/utils"
)

// 文档注释：运行结果保留窗口
// 背景：每次流水线运行都会在 hosp_runs 追加一条记录及其明细；保留最近 N 次，其余删除。
// 约束：N 来自 RUNS_KEEP_N（默认 10）；仅作用于 hosp_* 结果表。
func main() {
	config.LoadEnvFiles()
	l := logger.Setup()
	keepN := uint64(10)
	if s := os.Getenv("RUNS_KEEP_N"); s != "" {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil && n > 0 {
			keepN = n
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	n, err := store.AttachDB(db).PruneRuns(context.Background(), keepN)
	if err != nil {
		l.Error("runs_prune_error", "err", err)
		os.Exit(1)
	}
	l.Info("runs_prune_done", "keep", keepN, "deleted", n)
}
