package utils

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
		t.Setenv(k, "")
	}
	assert.Equal(t, "postgres://postgres@localhost:5432/hospital_access?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_USER", "minsa")
	t.Setenv("PG_PASSWORD", "s3cret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_DB", "ipress")
	assert.Equal(t, "postgres://minsa:s3cret@db:5432/ipress?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_PASSWORD", "p@ss/w:rd")
	dsn := BuildPostgresDSNFromEnv()
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss/w:rd", pass)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/ipress", u.Path)
}

type flakyPinger struct{ failures, calls int }

func (f *flakyPinger) PingContext(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry(t *testing.T) {
	p := &flakyPinger{failures: 2}
	assert.NoError(t, PingWithRetry(context.Background(), "pg", p, 10*time.Second))
	assert.Equal(t, 3, p.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, PingWithRetry(ctx, "pg", &flakyPinger{failures: 100}, time.Second))
}
