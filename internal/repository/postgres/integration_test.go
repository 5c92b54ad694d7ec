//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/grabtik/grabtik-bot/internal/model"
	repo "github.com/grabtik/grabtik-bot/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "grabtik_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/grabtik_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	t.Run("user_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)

		_, err := ur.GetByID(ctx, 1001)
		require.ErrorIs(t, err, model.ErrNotFound)

		saved, err := ur.Create(ctx, model.User{ID: 1001, Username: "alice"})
		require.NoError(t, err)
		require.Equal(t, int64(1001), saved.ID)
		require.False(t, saved.Premium)
		require.Zero(t, saved.DownloadCount)

		since := time.Now().UTC()
		expiry := since.Add(30 * 24 * time.Hour)
		require.NoError(t, ur.SetPremium(ctx, 1001, since, expiry))

		got, err := ur.GetByID(ctx, 1001)
		require.NoError(t, err)
		require.True(t, got.Premium)
		require.NotNil(t, got.PremiumExpiry)
		require.WithinDuration(t, expiry, *got.PremiumExpiry, time.Second)

		require.NoError(t, ur.ClearPremium(ctx, 1001))
		got, err = ur.GetByID(ctx, 1001)
		require.NoError(t, err)
		require.False(t, got.Premium)

		total, err := ur.Count(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, total, int64(1))

		require.ErrorIs(t, ur.IncrementDownloads(ctx, 9999), model.ErrNotFound)
	})

	t.Run("increment_is_atomic", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		_, err := ur.Create(ctx, model.User{ID: 1002, Username: "bob"})
		require.NoError(t, err)

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, ur.IncrementDownloads(ctx, 1002))
			}()
		}
		wg.Wait()

		got, err := ur.GetByID(ctx, 1002)
		require.NoError(t, err)
		require.Equal(t, int64(n), got.DownloadCount)
	})

	t.Run("ad_repository", func(t *testing.T) {
		ar := repo.NewAdRepository(conn)

		_, err := ar.PickActive(ctx)
		require.ErrorIs(t, err, model.ErrNotFound)

		ad, err := ar.Create(ctx, "https://ads.example.com/1")
		require.NoError(t, err)
		require.True(t, ad.Active)

		picked, err := ar.PickActive(ctx)
		require.NoError(t, err)
		require.Equal(t, ad.URL, picked.URL)

		ads, err := ar.List(ctx)
		require.NoError(t, err)
		require.Len(t, ads, 1)

		require.NoError(t, ar.Delete(ctx, ad.ID))
		require.ErrorIs(t, ar.Delete(ctx, ad.ID), model.ErrNotFound)
	})

	t.Run("payment_repository_grants_once", func(t *testing.T) {
		pr := repo.NewPaymentRepository(conn)
		ur := repo.NewUserRepository(conn)

		p := model.Payment{
			ChargeID: "charge-abc",
			UserID:   1003,
			Provider: "telegram-stars",
			Currency: "XTR",
			Amount:   50,
		}
		since := time.Now().UTC()
		expiry := since.Add(30 * 24 * time.Hour)

		// No account row yet: the grant fails and takes the dedupe row
		// down with it, so the charge id is not burned.
		_, err := pr.RecordAndGrant(ctx, p, since, expiry)
		require.ErrorIs(t, err, model.ErrNotFound)

		_, err = ur.Create(ctx, model.User{ID: 1003, Username: "carol"})
		require.NoError(t, err)

		fresh, err := pr.RecordAndGrant(ctx, p, since, expiry)
		require.NoError(t, err)
		require.True(t, fresh)

		got, err := ur.GetByID(ctx, 1003)
		require.NoError(t, err)
		require.True(t, got.Premium)
		require.NotNil(t, got.PremiumExpiry)
		require.WithinDuration(t, expiry, *got.PremiumExpiry, time.Second)

		fresh, err = pr.RecordAndGrant(ctx, p, since, expiry)
		require.NoError(t, err)
		require.False(t, fresh)
	})
}
