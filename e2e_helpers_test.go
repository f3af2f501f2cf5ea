//go:build !ci

package pinboard_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	dockerImage           = "chromedp/headless-shell:stable"
	chromeContainerPrefix = "chrome-e2e-pinboard-"
)

// setupDockerChrome starts a headless Chrome container and returns a chromedp
// context bounded by timeout. The test is skipped when Docker is unavailable.
func setupDockerChrome(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	if _, err := exec.Command("docker", "version").CombinedOutput(); err != nil {
		t.Skip("Docker not available, skipping E2E test")
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("Failed to allocate Chrome port: %v", err)
	}
	if err := startDockerChrome(t, port); err != nil {
		t.Fatalf("Failed to start Docker Chrome: %v", err)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), fmt.Sprintf("http://localhost:%d", port))
	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(t.Logf))
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)

	t.Cleanup(func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
		removeContainer(t, fmt.Sprintf("%s%d", chromeContainerPrefix, port))
	})
	return ctx
}

// getFreePort asks the kernel for a free open port that is ready to use.
func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func startDockerChrome(t *testing.T, debugPort int) error {
	t.Helper()

	name := fmt.Sprintf("%s%d", chromeContainerPrefix, debugPort)
	_, _ = exec.Command("docker", "rm", "-f", name).CombinedOutput()

	if _, err := exec.Command("docker", "image", "inspect", dockerImage).CombinedOutput(); err != nil {
		t.Log("Pulling chromedp/headless-shell Docker image...")
		pullCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if output, err := exec.CommandContext(pullCtx, "docker", "pull", dockerImage).CombinedOutput(); err != nil {
			return fmt.Errorf("failed to pull %s: %w\n%s", dockerImage, err, output)
		}
	}

	// Linux shares the host network; elsewhere Docker runs in a VM and the
	// container's default debugging port is mapped instead.
	args := []string{"run", "-d", "--rm", "--memory", "512m", "--name", name}
	if runtime.GOOS == "linux" {
		args = append(args, "--network", "host", dockerImage, fmt.Sprintf("--remote-debugging-port=%d", debugPort))
	} else {
		args = append(args, "-p", fmt.Sprintf("%d:9222", debugPort), dockerImage)
	}
	if output, err := exec.Command("docker", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("failed to start Chrome container: %w\n%s", err, output)
	}

	versionURL := fmt.Sprintf("http://localhost:%d/json/version", debugPort)
	client := &http.Client{Timeout: 2 * time.Second}
	var lastErr error
	for i := 0; i < 120; i++ {
		resp, err := client.Get(versionURL)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}

	if output, err := exec.Command("docker", "logs", "--tail", "50", name).CombinedOutput(); err == nil {
		t.Logf("Chrome container logs:\n%s", output)
	}
	removeContainer(t, name)
	return fmt.Errorf("Chrome failed to start within 60 seconds: %w", lastErr)
}

func removeContainer(t *testing.T, name string) {
	t.Helper()
	output, err := exec.Command("docker", "rm", "-f", name).CombinedOutput()
	if err != nil && !strings.Contains(string(output), "No such container") {
		t.Logf("Warning: Failed to remove Docker container: %v (output: %s)", err, output)
	}
}

// chromeURL rewrites an httptest URL so the Chrome container can reach it.
func chromeURL(httptestURL string) string {
	host := "localhost"
	if runtime.GOOS != "linux" {
		host = "host.docker.internal"
	}
	url := strings.Replace(httptestURL, "127.0.0.1", host, 1)
	return strings.Replace(url, "[::1]", host, 1)
}
