// 包 config：运行配置；先加载 .env 与 data/env/.env，再读取环境变量并填默认值
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HospitalsPath string
	DistrictsPath string
	CentersPath   string
	OutputDir     string

	Regions      []string
	RadiusM      float64
	TopDistricts int

	Serve   bool
	Addr    string
	APIBase string

	PGEnable    bool
	RedisEnable bool

	RateLimitEnabled bool
	RateLimitQPS     int
}

// LoadEnvFiles：与入口约定的两个 .env 位置；文件不存在时忽略
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolean(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}

// FromEnv：读取环境变量；数值格式错误返回错误而不是静默回退
func FromEnv() (Config, error) {
	c := Config{
		HospitalsPath:    str("HOSPITALS_PATH", filepath.Join("data", "IPRESS.csv")),
		DistrictsPath:    str("DISTRICTS_PATH", filepath.Join("data", "DISTRITOS.shp")),
		CentersPath:      str("CCPP_PATH", filepath.Join("data", "CCPP_IGN100K.shp")),
		OutputDir:        str("OUTPUT_DIR", "out"),
		Serve:            boolean("SERVE"),
		Addr:             str("ADDR", ":8080"),
		APIBase:          strings.TrimRight(str("API_BASE", "/api"), "/"),
		PGEnable:         boolean("PG_ENABLE"),
		RedisEnable:      boolean("REDIS_ENABLE"),
		RateLimitEnabled: boolean("RATE_LIMIT_ENABLED"),
	}
	// 重复地区只保留首次出现；落库主键含 region
	seen := make(map[string]struct{})
	for _, r := range strings.Split(str("PROXIMITY_REGIONS", "LIMA,LORETO"), ",") {
		r = strings.TrimSpace(r)
		if _, dup := seen[r]; r == "" || dup {
			continue
		}
		seen[r] = struct{}{}
		c.Regions = append(c.Regions, r)
	}
	var err error
	if c.RadiusM, err = strconv.ParseFloat(str("PROXIMITY_RADIUS_M", "10000"), 64); err != nil || !(c.RadiusM > 0) || math.IsInf(c.RadiusM, 1) {
		return Config{}, fmt.Errorf("PROXIMITY_RADIUS_M: want positive number, got %q", os.Getenv("PROXIMITY_RADIUS_M"))
	}
	if c.TopDistricts, err = strconv.Atoi(str("TOP_DISTRICTS", "10")); err != nil || c.TopDistricts < 0 {
		return Config{}, fmt.Errorf("TOP_DISTRICTS: want non-negative integer, got %q", os.Getenv("TOP_DISTRICTS"))
	}
	c.RateLimitQPS = 200
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			c.RateLimitQPS = n
		}
	}
	return c, nil
}
