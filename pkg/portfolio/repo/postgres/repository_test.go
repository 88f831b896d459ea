package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/migrations"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	tests := []struct {
		name string
		err  error
		kind portfolio.Kind
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "portfolio_settings_singleton"}, portfolio.KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, portfolio.KindConflict},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, portfolio.KindInvalid},
		{"missing table", &pgconn.PgError{Code: "42P01"}, portfolio.KindTransport},
		{"other server error", &pgconn.PgError{Code: "XX000", Message: "boom"}, portfolio.KindUnknown},
		{"network", errors.New("dial tcp: connection refused"), portfolio.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, portfolio.KindOf(r.handlePostgresError("op", tt.err)))
		})
	}
}

func TestCodecsCoverEveryCollection(t *testing.T) {
	for _, c := range append([]portfolio.Collection{portfolio.CollectionSettings}, portfolio.ItemCollections...) {
		cd, err := codecFor(c)
		require.NoError(t, err, c)

		rec, err := portfolio.NewBlank(c)
		require.NoError(t, err)
		assert.Len(t, cd.fields(rec), len(cd.columns), c)
		assert.Equal(t, string(c), cd.table)
	}

	_, err := codecFor("nope")
	assert.ErrorIs(t, err, portfolio.ErrUnknownCollection)
}

func TestOrderBy(t *testing.T) {
	faq := codecs[portfolio.CollectionFAQ]
	assert.Equal(t, " ORDER BY order_index ASC, created_at ASC, id ASC", orderBy(faq, false))
	assert.Equal(t, " ORDER BY order_index DESC, created_at DESC, id DESC", orderBy(faq, true))

	settings := codecs[portfolio.CollectionSettings]
	assert.Equal(t, " ORDER BY updated_at ASC, id ASC", orderBy(settings, false))
}

// TestRepository_Integration runs against a real database when
// TEST_DATABASE_URL is set.
func TestRepository_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	require.NoError(t, migrations.MigrateUp(db, ""))

	repo := NewWithPool(pool)
	require.NoError(t, repo.Ping(ctx))

	pkg := &portfolio.PricingPackage{NameEN: "Basic", Price: 99, FeaturesEN: []string{"1 video"}, IsActive: true}
	require.NoError(t, repo.Insert(ctx, pkg))
	t.Cleanup(func() { _ = repo.Delete(ctx, portfolio.CollectionPricing, pkg.ID) })
	assert.NotEqual(t, uuid.Nil, pkg.ID)

	got, err := repo.Get(ctx, portfolio.CollectionPricing, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 video"}, got.(*portfolio.PricingPackage).FeaturesEN)

	pkg.Price = 149
	require.NoError(t, repo.Update(ctx, pkg))

	err = repo.Update(ctx, &portfolio.PricingPackage{ID: uuid.New()})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)

	err = repo.Delete(ctx, portfolio.CollectionPricing, uuid.New())
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}
