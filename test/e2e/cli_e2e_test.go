package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("units run through a POSIX shell")
	}

	tmpDir := t.TempDir()
	binPath := filepath.Join(tmpDir, "autotime")

	// go test runs in the package directory; build from the module root.
	rootDir := "../.."

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/autotime")
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build autotime: %v", err)
	}

	script := filepath.Join(tmpDir, "units.sh")
	if err := os.WriteFile(script, []byte("echo first\n# skipped\nexit 1\necho never\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Single Command",
			args:     []string{"--display", "plain", "--", "echo", "hello"},
			wantOut:  "hello",
			wantCode: 0,
		},
		{
			name:     "Completed Line",
			args:     []string{"--display", "plain", "--", "true"},
			wantOut:  "✔️",
			wantCode: 0,
		},
		{
			name:     "Command Exit Status",
			args:     []string{"--display", "plain", "--", "sh", "-c", "exit 3"},
			wantCode: 3,
		},
		{
			name:     "Timeout",
			args:     []string{"--timeout", "50ms", "--", "sleep", "5"},
			wantOut:  "timed out",
			wantCode: 2,
		},
		{
			name:     "Script Stops At Failure",
			args:     []string{"--script", script},
			wantOut:  "first",
			wantCode: 3,
		},
		{
			name:     "Interactive Session",
			args:     []string{"--no-autoload"},
			stdin:    "echo from-repl\n%exit\n",
			wantOut:  "from-repl",
			wantCode: 0,
		},
		{
			name:     "Invalid Display",
			args:     []string{"--display", "fancy"},
			wantOut:  "display",
			wantCode: 4,
		},
		{
			name:     "Bash Completion",
			args:     []string{"--completion", "bash"},
			wantOut:  "_autotime_completions",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "autotime",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1", "SHELL=/bin/sh")
			cmd.Stdin = strings.NewReader(tt.stdin)
			output, err := cmd.CombinedOutput()

			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("Command did not run: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("Exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}

			if tt.wantOut != "" {
				if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
					t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
				}
			}
		})
	}
}
