//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const e2eSecret = "e2e-jwt-secret-0123456789abcdef0"

// ideaforgeServer manages a running IdeaForge server process.
type ideaforgeServer struct {
	cmd     *exec.Cmd
	env     []string
	dataDir string
	address string
	logFile string
}

// startIdeaforge launches the binary against llm and waits for it to become
// healthy. extraEnv entries are appended after the defaults and win.
func startIdeaforge(t *testing.T, llm *fakeLLM, extraEnv ...string) *ideaforgeServer {
	t.Helper()

	if ideaforgeBin == "" {
		t.Skip("ideaforge binary not available")
	}

	dataDir := t.TempDir()
	port := freePort(t)
	s := &ideaforgeServer{
		dataDir: dataDir,
		address: fmt.Sprintf("127.0.0.1:%d", port),
		logFile: filepath.Join(dataDir, "ideaforge.log"),
	}
	s.env = append(os.Environ(),
		fmt.Sprintf("IDEAFORGE_PORT=%d", port),
		"IDEAFORGE_DB_PATH="+filepath.Join(dataDir, "ideaforge.db"),
		"IDEAFORGE_CONFIG_PATH="+filepath.Join(dataDir, "nonexistent.yaml"),
		"IDEAFORGE_LLM_BASE_URL="+llm.baseURL(),
		"IDEAFORGE_LLM_MODEL=e2e-model",
		"IDEAFORGE_LOG_LEVEL=debug",
		"OPENAI_API_KEY=sk-e2e",
		"IDEAFORGE_JWT_SECRET="+e2eSecret,
	)
	s.env = append(s.env, extraEnv...)

	lf, err := os.Create(s.logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	s.cmd = exec.Command(ideaforgeBin)
	s.cmd.Env = s.env
	s.cmd.Stdout = lf
	s.cmd.Stderr = lf
	if err := s.cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start ideaforge: %v", err)
	}

	t.Cleanup(func() {
		s.stop()
		lf.Close()
		if t.Failed() {
			if logs, err := os.ReadFile(s.logFile); err == nil {
				t.Logf("server log:\n%s", logs)
			}
		}
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		t.Fatalf("ideaforge not healthy: %v", err)
	}
	return s
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func (s *ideaforgeServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *ideaforgeServer) baseURL() string {
	return "http://" + s.address
}

func (s *ideaforgeServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.baseURL() + "/api/v1/health"

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("ideaforge not healthy after %s", timeout)
}

// token mints a bearer token with the binary's token subcommand.
func (s *ideaforgeServer) token(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	args := []string{"token", "--user", userID, "--ttl", "1h"}
	for _, r := range roles {
		args = append(args, "--role", r)
	}
	out := s.run(t, args...)
	return strings.TrimSpace(out)
}

// run executes an offline subcommand with the server's environment.
func (s *ideaforgeServer) run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(ideaforgeBin, args...)
	cmd.Env = s.env
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("ideaforge %s: %v", strings.Join(args, " "), err)
	}
	return string(out)
}

// call sends a JSON request and returns the status and raw body.
func (s *ideaforgeServer) call(t *testing.T, method, path, token string, body any) (int, []byte, http.Header) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.baseURL()+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data, resp.Header
}

// mustCall is call that fails the test unless the status matches and decodes into out.
func (s *ideaforgeServer) mustCall(t *testing.T, method, path, token string, body any, want int, out any) {
	t.Helper()
	status, data, _ := s.call(t, method, path, token, body)
	if status != want {
		t.Fatalf("%s %s status = %d, want %d; body: %s", method, path, status, want, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, data)
		}
	}
}
