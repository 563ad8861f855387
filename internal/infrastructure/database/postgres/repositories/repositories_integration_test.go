package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres/repositories"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// startPostgres brings up a disposable postgres container and returns a
// migrated connection.  Skipped in -short runs and wherever Docker is
// unavailable.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "parency",
			"POSTGRES_PASSWORD": "parency",
			"POSTGRES_DB":       "parency_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:          host,
		Port:          port.Int(),
		User:          "parency",
		Password:      "parency",
		DBName:        "parency_test",
		SSLMode:       "disable",
		MigrationPath: "../../../../../migrations",
	}
	logger := logging.NewNopLogger()
	require.NoError(t, postgres.RunMigrations(cfg, logger))

	conn, err := postgres.NewConnection(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

func seedRequest(t *testing.T, repo *repositories.RequestRepository, caseID common.CaseID, number int) *request.DiscoveryRequest {
	t.Helper()
	req, err := request.NewDiscoveryRequest(caseID, "user-001", dtypes.RequestTypeRFP, number,
		fmt.Sprintf("All bank statements, request %d.", number))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), req))
	return req
}

func TestRequestRepository_RoundTrip(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewRequestRepository(conn.Pool())
	ctx := context.Background()

	req := seedRequest(t, repo, "case-rt", 1)

	got, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, req.Text, got.Text)
	assert.Equal(t, dtypes.StatusIncomplete, got.Status)

	// Unique (case, type, number) is enforced by the schema.
	dup, err := request.NewDiscoveryRequest("case-rt", "user-001", dtypes.RequestTypeRFP, 1, "Duplicate.")
	require.NoError(t, err)
	err = repo.Save(ctx, dup)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRequestNumberTaken))

	_, err = repo.FindByID(ctx, common.NewID())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRequestNotFound))
}

func TestRequestRepository_CaseQueries(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewRequestRepository(conn.Pool())
	ctx := context.Background()

	seedRequest(t, repo, "case-q", 2)
	seedRequest(t, repo, "case-q", 1)

	reqs, err := repo.FindByCase(ctx, "case-q")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, 1, reqs[0].Number)

	max, err := repo.MaxNumber(ctx, "case-q", dtypes.RequestTypeRFP)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	exists, err := repo.NumberExists(ctx, "case-q", dtypes.RequestTypeRFP, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	stats, err := repo.Stats(ctx, "case-q")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 2, stats.RFPs)
	assert.Equal(t, 2, stats.Incomplete)
}

func TestMappingRepository_LifecycleAndCascade(t *testing.T) {
	conn := startPostgres(t)
	reqRepo := repositories.NewRequestRepository(conn.Pool())
	mapRepo := repositories.NewMappingRepository(conn.Pool())
	ctx := context.Background()

	req := seedRequest(t, reqRepo, "case-m", 1)

	_, err := conn.Pool().Exec(ctx, `
		INSERT INTO documents (id, case_id, owner_id, file_name, metadata, created_at, updated_at)
		VALUES ('doc-001', 'case-m', 'user-001', 'Bank statement.pdf', '{}', now(), now())`)
	require.NoError(t, err)

	m, err := mapping.NewMapping("doc-001", req.ID, dtypes.SourceAISuggestion, 70, "Keyword match.", "user-001")
	require.NoError(t, err)
	require.NoError(t, mapRepo.Save(ctx, m))

	err = mapRepo.Save(ctx, mustMapping(t, "doc-001", req.ID))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMappingAlreadyExists))

	require.NoError(t, m.Review(dtypes.MappingAccepted, "user-001"))
	require.NoError(t, mapRepo.Update(ctx, m))

	count, err := mapRepo.CountAccepted(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Deleting the request cascades to its mappings.
	require.NoError(t, reqRepo.Delete(ctx, req.ID))
	_, err = mapRepo.FindByID(ctx, m.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMappingNotFound))
}

func TestDocumentRepository_UnmappedFilter(t *testing.T) {
	conn := startPostgres(t)
	reqRepo := repositories.NewRequestRepository(conn.Pool())
	docRepo := repositories.NewDocumentRepository(conn.Pool())
	mapRepo := repositories.NewMappingRepository(conn.Pool())
	ctx := context.Background()

	req := seedRequest(t, reqRepo, "case-d", 1)
	for _, id := range []string{"doc-a", "doc-b"} {
		_, err := conn.Pool().Exec(ctx, `
			INSERT INTO documents (id, case_id, owner_id, file_name, metadata, created_at, updated_at)
			VALUES ($1, 'case-d', 'user-001', $2, '{}', now(), now())`, id, id+".pdf")
		require.NoError(t, err)
	}

	require.NoError(t, mapRepo.Save(ctx, mustMapping(t, "doc-a", req.ID)))

	docs, err := docRepo.FindUnmappedForRequest(ctx, "case-d", req.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, common.ID("doc-b"), docs[0].ID)
}

func mustMapping(t *testing.T, docID, reqID common.ID) *mapping.Mapping {
	t.Helper()
	m, err := mapping.NewMapping(docID, reqID, dtypes.SourceAISuggestion, 50, "", "user-001")
	require.NoError(t, err)
	return m
}
