//go:build e2e

package authmodes_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for the end-to-end tests. The
 * service image is built once from cmd/authmodes/Dockerfile and every test
 * gets its own container with an empty sqlite database.
 */

const (
	testImageName = "authmodes-test:latest"
	testPassword  = "pw123456"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building authmodes Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up authmodes Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/authmodes/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupContainer starts the service and returns its base URL.
func setupContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"AUTH_STATELESS_SECRET": "e2e-stateless-secret",
			"AUTH_ACCESS_SECRET":    "e2e-access-secret",
			"AUTH_REFRESH_SECRET":   "e2e-refresh-secret",
			"ENV":                   "test",
			"LOG_LEVEL":             "info",
			"LOG_FORMAT":            "json",
		},
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

func newClient(t *testing.T, baseURL string) *authsdk.Client {
	t.Helper()
	client, err := authsdk.NewClient(baseURL)
	require.NoError(t, err)
	return client
}

// assertUnauthorized verifies that err is a 401 from the service.
func assertUnauthorized(t *testing.T, err error, context string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "%s: expected APIError, got %v", context, err)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode, "%s: %s", context, apiErr.Reason)
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
