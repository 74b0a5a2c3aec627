package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arkadiv/storefront/internal/domain/catalog"
)

const skipIntegrationTests = "SHOP_SKIP_INTEGRATION_TESTS"

// CatalogRepositorySuite exercises the PostgreSQL-backed repositories against
// a real database in a container.
type CatalogRepositorySuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	repo        *CatalogRepository
	apikeys     *APIKeyRepository
	pool        *pgxpool.Pool
	ctx         context.Context

	apparelID     int64
	accessoriesID int64
}

func TestCatalogRepositoryIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(CatalogRepositorySuite))
}

func (s *CatalogRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "run postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "container connection string")

	pool, err := NewPool(s.ctx, connStr)
	require.NoError(s.T(), err, "create pool")
	s.pool = pool

	require.NoError(s.T(), RunMigrations(s.ctx, pool), "run migrations")

	s.repo = NewCatalogRepository(pool)
	s.apikeys = NewAPIKeyRepository(pool)

	require.NoError(s.T(), pool.QueryRow(s.ctx,
		`INSERT INTO categories (name) VALUES ('Apparel') RETURNING id`).Scan(&s.apparelID))
	require.NoError(s.T(), pool.QueryRow(s.ctx,
		`INSERT INTO categories (name) VALUES ('Accessories') RETURNING id`).Scan(&s.accessoriesID))
}

func (s *CatalogRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *CatalogRepositorySuite) createProduct(name, price string, categoryID int64) *catalog.Product {
	s.T().Helper()
	p := &catalog.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Color:       "black",
		Image:       "/images/" + name + ".jpg",
		CategoryID:  categoryID,
	}
	require.NoError(s.T(), s.repo.Create(s.ctx, p))
	require.NotZero(s.T(), p.ID)
	return p
}

func (s *CatalogRepositorySuite) TestCreateAndGetByID() {
	created := s.createProduct("Oxford Shirt", "20.00", s.apparelID)

	fetched, err := s.repo.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, fetched.ID)
	assert.Equal(s.T(), "Oxford Shirt", fetched.Name)
	assert.True(s.T(), decimal.RequireFromString("20.00").Equal(fetched.Price), "price survives the NUMERIC round trip")
	assert.Equal(s.T(), "Apparel", fetched.CategoryName)
}

func (s *CatalogRepositorySuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(s.ctx, 99999)
	require.ErrorIs(s.T(), err, catalog.ErrNotFound)
}

func (s *CatalogRepositorySuite) TestGetByIDs_SkipsMissing() {
	a := s.createProduct("Fedora Hat", "10.00", s.accessoriesID)
	b := s.createProduct("Tote Bag", "15.50", s.accessoriesID)

	products, err := s.repo.GetByIDs(s.ctx, []int64{a.ID, 99999, b.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2, "missing ids are simply absent from the batch result")
}

func (s *CatalogRepositorySuite) TestList_Filters() {
	s.createProduct("Linen Shirt", "25.00", s.apparelID)
	s.createProduct("Leather Belt", "18.00", s.accessoriesID)

	bySearch, err := s.repo.List(s.ctx, catalog.Filter{Search: "linen"})
	require.NoError(s.T(), err)
	require.Len(s.T(), bySearch, 1)
	assert.Equal(s.T(), "Linen Shirt", bySearch[0].Name)

	byCategory, err := s.repo.List(s.ctx, catalog.Filter{Category: "Accessories"})
	require.NoError(s.T(), err)
	for _, p := range byCategory {
		assert.Equal(s.T(), "Accessories", p.CategoryName)
	}
}

func (s *CatalogRepositorySuite) TestUpdateAndDelete() {
	p := s.createProduct("Chinos", "34.90", s.apparelID)

	p.Price = decimal.RequireFromString("29.90")
	p.Description = "on sale"
	require.NoError(s.T(), s.repo.Update(s.ctx, p))

	fetched, err := s.repo.GetByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), decimal.RequireFromString("29.90").Equal(fetched.Price))
	assert.Equal(s.T(), "on sale", fetched.Description)

	require.NoError(s.T(), s.repo.Delete(s.ctx, p.ID))
	_, err = s.repo.GetByID(s.ctx, p.ID)
	require.ErrorIs(s.T(), err, catalog.ErrNotFound)

	require.ErrorIs(s.T(), s.repo.Delete(s.ctx, p.ID), catalog.ErrNotFound)
	require.ErrorIs(s.T(), s.repo.Update(s.ctx, p), catalog.ErrNotFound)
}

func (s *CatalogRepositorySuite) TestCategories() {
	categories, err := s.repo.Categories(s.ctx)
	require.NoError(s.T(), err)
	require.GreaterOrEqual(s.T(), len(categories), 2)
	assert.Equal(s.T(), "Accessories", categories[0].Name, "ordered by name")
}

func (s *CatalogRepositorySuite) TestAPIKeyFindByHash() {
	mac := hmac.New(sha256.New, []byte("pepper"))
	mac.Write([]byte("admin-key"))
	hash := hex.EncodeToString(mac.Sum(nil))

	_, err := s.pool.Exec(s.ctx,
		`INSERT INTO api_keys (id, key_hash, name, scopes, active) VALUES ($1, $2, $3, $4, $5)`,
		"it-key", hash, "integration key", []string{"catalog_admin"}, true)
	require.NoError(s.T(), err)

	info, err := s.apikeys.FindByHash(s.ctx, hash)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "it-key", info.ID)
	assert.Equal(s.T(), []string{"catalog_admin"}, info.Scopes)

	_, err = s.apikeys.FindByHash(s.ctx, "deadbeef")
	require.Error(s.T(), err)

	_, err = s.pool.Exec(s.ctx, `UPDATE api_keys SET active = FALSE WHERE id = 'it-key'`)
	require.NoError(s.T(), err)
	_, err = s.apikeys.FindByHash(s.ctx, hash)
	require.Error(s.T(), err, "inactive keys are not returned")
}
