package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Output is one entry of `terraform output -json`.
type Output struct {
	Sensitive bool            `json:"sensitive"`
	Type      json.RawMessage `json:"type,omitempty"`
	Value     json.RawMessage `json:"value"`
}

// Outputs maps Terraform output names to their values.
type Outputs map[string]Output

// String returns the named output as a string. Missing, null and
// non-string values yield "".
func (o Outputs) String(name string) string {
	out, ok := o[name]
	if !ok || len(out.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(out.Value, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Source yields Terraform outputs.
type Source interface {
	Outputs(ctx context.Context) (Outputs, error)
}

// TerraformSource runs `terraform -chdir=<Dir> output -json`.
type TerraformSource struct {
	Bin     string
	Dir     string
	Timeout time.Duration
}

// Outputs runs terraform and decodes its JSON output.
func (t TerraformSource) Outputs(ctx context.Context) (Outputs, error) {
	bin := t.Bin
	if bin == "" {
		bin = "terraform"
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	args := []string{"output", "-json"}
	if t.Dir != "" {
		args = append([]string{"-chdir=" + t.Dir}, args...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Bound the wait for stray children still holding the output pipes.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s output timed out: %w", bin, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s output: %w: %s", bin, err, msg)
		}
		return nil, fmt.Errorf("%s output: %w", bin, err)
	}

	var outputs Outputs
	if err := json.Unmarshal(stdout.Bytes(), &outputs); err != nil {
		return nil, fmt.Errorf("decode terraform outputs: %w", err)
	}
	return outputs, nil
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
