package data_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/catalogs/internal/data"
)

// openTestDB connects to the database named by CATALOG_TEST_DSN and empties
// both catalog tables. Tests using it are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("CATALOG_TEST_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_DSN not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, data.EnsureSchema(ctx, db))
	_, err = db.ExecContext(ctx, "TRUNCATE minerals, games")
	require.NoError(t, err)

	return db
}

func Test_PostgresCatalog_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	models := data.NewModels(db, nil)

	_, err := models.Minerals.Create(ctx, quartz())
	require.NoError(t, err)

	_, err = models.Minerals.Create(ctx, quartz())
	var conflict *data.ConflictError
	require.ErrorAs(t, err, &conflict)

	got, err := models.Minerals.Get(ctx, "AB-1234")
	require.NoError(t, err)
	assert.Equal(t, quartz(), got)

	m := quartz()
	m.Hardness = 6.5
	_, err = models.Minerals.Update(ctx, m.CatalogID, m)
	require.NoError(t, err)

	q := data.NewQuery()
	q.Filters["hardness"] = "6.5"
	list, err := models.Minerals.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB-1234"}, ids(list))

	_, err = models.Minerals.Delete(ctx, m.CatalogID)
	require.NoError(t, err)

	var notFound *data.NotFoundError
	_, err = models.Minerals.Delete(ctx, m.CatalogID)
	assert.ErrorAs(t, err, &notFound)
	_, err = models.Minerals.Update(ctx, m.CatalogID, m)
	assert.ErrorAs(t, err, &notFound)
}

func Test_PostgresCatalog_GameReleaseDate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	games := data.NewModels(db, nil).Games

	_, err := games.Create(ctx, portal())
	require.NoError(t, err)

	got, err := games.Get(ctx, "AB-0001")
	require.NoError(t, err)
	assert.True(t, portal().ReleaseDate.Equal(got.ReleaseDate))

	q := data.NewQuery()
	q.Filters["release_date"] = "2007-10-10T00:00:00Z"
	list, err := games.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func Test_PostgresCatalog_MatchesMemoryPipeline(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pg := data.NewModels(db, nil).Minerals
	mem := data.NewMemoryModels().Minerals

	seedMinerals(t, pg, 23)
	seedMinerals(t, mem, 23)

	queries := []data.Query{data.NewQuery()}

	q := data.NewQuery()
	q.Search = "specimen 1"
	q.Sort = "-hardness"
	q.PerPage = 4
	q.Page = 2
	queries = append(queries, q)

	q = data.NewQuery()
	q.Filters["rarity"] = string(data.RarityRare)
	q.Sort = "specimens_count"
	queries = append(queries, q)

	for _, q := range queries {
		want, err := mem.List(ctx, q)
		require.NoError(t, err)
		got, err := pg.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, ids(want), ids(got))
	}
}

func Test_PostgresCatalog_ConcurrentCreateHasOneWinner(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	minerals := data.NewModels(db, nil).Minerals

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = minerals.Create(ctx, quartz())
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *data.ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, succeeded)
}
