package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tfOutputs = `{"instance_public_ip":{"sensitive":false,"type":"string","value":"1.2.3.4"},` +
	`"instance_public_dns":{"sensitive":false,"type":"string","value":"x.example.com"}}`

// inventoryEnv points the inventory at a fake terraform printing outputs.
func inventoryEnv(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "terraform")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755))

	t.Setenv("TERRAFORM_BIN", bin)
	t.Setenv("ANSIBLE_SSH_USER", "deploy")
	t.Setenv("ANSIBLE_SSH_KEY", "/keys/infratrack")
	t.Setenv("INFRATRACK_INVENTORY_TERRAFORM_DIR", dir)
	return filepath.Join(dir, "missing.yaml")
}

func runInventoryCmd(t *testing.T, args ...string) (string, string) {
	t.Helper()
	cmd := NewInventoryCommand("infratrack-inventory")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return stdout.String(), stderr.String()
}

func TestInventoryCommand_List(t *testing.T) {
	cfgPath := inventoryEnv(t, "echo '"+tfOutputs+"'\n")

	want := `{"_meta":{"hostvars":{"infratrack":{"ansible_host":"1.2.3.4","ansible_user":"deploy",` +
		`"ansible_ssh_private_key_file":"/keys/infratrack","public_dns":"x.example.com"}}},` +
		`"all":{"hosts":["infratrack"],"vars":{}},"web":{"hosts":["infratrack"]}}` + "\n"

	for _, args := range [][]string{
		{"--list"},
		{},
		{"--list", "--bogus", "extra"},
	} {
		out, _ := runInventoryCmd(t, append(args, "--config", cfgPath)...)
		assert.Equal(t, want, out, "args %v", args)
	}
}

func TestInventoryCommand_Host(t *testing.T) {
	cfgPath := inventoryEnv(t, "echo '"+tfOutputs+"'\n")

	out, _ := runInventoryCmd(t, "--config", cfgPath, "--host", "infratrack")
	assert.JSONEq(t, `{"ansible_host":"1.2.3.4","ansible_user":"deploy",
		"ansible_ssh_private_key_file":"/keys/infratrack","public_dns":"x.example.com"}`, out)

	out, _ = runInventoryCmd(t, "--config", cfgPath, "--host", "unknown")
	assert.Equal(t, "{}\n", out)
}

func TestInventoryCommand_TerraformFailure(t *testing.T) {
	cfgPath := inventoryEnv(t, "echo 'no state' >&2\nexit 1\n")

	out, logs := runInventoryCmd(t, "--config", cfgPath, "--list")
	assert.Equal(t, `{"_meta":{"hostvars":{}},"all":{"hosts":[],"vars":{}},"web":{"hosts":[]}}`+"\n", out)
	assert.Contains(t, logs, "no state")
}

func TestInventoryCommand_BrokenConfig(t *testing.T) {
	inventoryEnv(t, "echo '"+tfOutputs+"'\n")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: [unclosed\n"), 0o644))

	out, logs := runInventoryCmd(t, "--config", cfgPath)
	assert.Equal(t, `{"_meta":{"hostvars":{}},"all":{"hosts":[],"vars":{}},"web":{"hosts":[]}}`+"\n", out)
	assert.Contains(t, logs, "configuration unavailable")
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := executeRoot(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "url: sqlite://infratrack.db")
	assert.Contains(t, string(data), "port: 5000")

	_, err = executeRoot(t, "config", "init", "--output", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestConfigShow_RedactsSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "very-secret-value")

	out, err := executeRoot(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "secret_key: "+redacted)
	assert.NotContains(t, out, "very-secret-value")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "InfraTrack")
}
