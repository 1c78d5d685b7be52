// 程序入口：读取配置、运行分析流水线、写出产物；可选写库与启动只读产物服务
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hospital-access/internal/api"
	"hospital-access/internal/config"
	"hospital-access/internal/export"
	"hospital-access/internal/logger"
	"hospital-access/internal/memo"
	"hospital-access/internal/middleware"
	"hospital-access/internal/migrate"
	"hospital-access/internal/pipeline"
	"hospital-access/internal/store"
	"hospital-access/internal/utils"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadEnvFiles()
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg, err := config.FromEnv()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_paths", "hospitals", cfg.HospitalsPath, "districts", cfg.DistrictsPath, "centers", cfg.CentersPath, "out", cfg.OutputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(memo.New())
	res, err := p.Run(ctx, pipeline.Inputs{
		HospitalsPath: cfg.HospitalsPath,
		DistrictsPath: cfg.DistrictsPath,
		CentersPath:   cfg.CentersPath,
		Regions:       cfg.Regions,
		RadiusM:       cfg.RadiusM,
	})
	if err != nil {
		l.Error("pipeline_error", "err", err)
		os.Exit(1)
	}

	art, err := export.Build(res, cfg.TopDistricts)
	if err != nil {
		l.Error("export_build_error", "err", err)
		os.Exit(1)
	}
	if err := art.WriteDir(cfg.OutputDir); err != nil {
		l.Error("export_write_error", "err", err)
		os.Exit(1)
	}

	var st *store.Store
	if cfg.PGEnable {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := utils.PingWithRetry(ctx, "postgres", db, 30*time.Second); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		if _, err := st.SaveRun(ctx, res); err != nil {
			l.Error("db_save_error", "err", err)
			os.Exit(1)
		}
	} else {
		l.Info("db_disabled")
	}

	if !cfg.Serve {
		return
	}

	var rc *redis.Client
	if cfg.RedisEnable {
		rc = utils.OpenRedisFromEnv()
		if err := utils.PingWithRetry(ctx, "redis", utils.RedisPinger{C: rc}, 10*time.Second); err != nil {
			// Redis 只是读穿缓存，不可用时继续服务
			l.Error("redis_ping_error", "err", err)
			rc = nil
		} else {
			l.Info("redis_ping_ok")
			defer rc.Close()
		}
	} else {
		l.Info("redis_disabled")
	}

	routes := api.NewServer(p, res, art, cfg.TopDistricts, rc, st).Routes()
	mux := http.NewServeMux()
	base := cfg.APIBase
	if base == "" || !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	mux.Handle(strings.TrimRight(base, "/")+"/", http.StripPrefix(strings.TrimRight(base, "/"), routes))

	var h http.Handler = mux
	h = middleware.RateLimit(h, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	h = logger.AccessMiddleware(l)(h)
	srv := &http.Server{Addr: cfg.Addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	l.Info("server_listen", "addr", cfg.Addr, "base", base)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}
