package inventory

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	outputs Outputs
	err     error
}

func (f fakeSource) Outputs(context.Context) (Outputs, error) {
	return f.outputs, f.err
}

func stringOutput(v string) Output {
	return Output{Value: []byte(`"` + v + `"`)}
}

var testSettings = Settings{HostName: "infratrack", SSHUser: "ubuntu", SSHKey: "/keys/infratrack"}

func encode(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))
	return strings.TrimSpace(buf.String())
}

func TestEmptyInventoryDocument(t *testing.T) {
	want := `{"_meta":{"hostvars":{}},"all":{"hosts":[],"vars":{}},"web":{"hosts":[]}}`

	assert.Equal(t, want, encode(t, Empty()))
	assert.Equal(t, want, encode(t, Build(context.Background(), fakeSource{outputs: Outputs{}}, testSettings, nil)))
	assert.Equal(t, want, encode(t, Build(context.Background(), fakeSource{err: errors.New("boom")}, testSettings, nil)))
}

func TestBuild_WithAddressAndDNS(t *testing.T) {
	src := fakeSource{outputs: Outputs{
		OutputPublicIP:  stringOutput("1.2.3.4"),
		OutputPublicDNS: stringOutput("x.example.com"),
	}}

	inv := Build(context.Background(), src, testSettings, nil)

	assert.Equal(t, []string{"infratrack"}, inv.All.Hosts)
	assert.Equal(t, []string{"infratrack"}, inv.Web.Hosts)
	assert.Equal(t, HostVars{
		AnsibleHost:       "1.2.3.4",
		AnsibleUser:       "ubuntu",
		SSHPrivateKeyFile: "/keys/infratrack",
		PublicDNS:         "x.example.com",
	}, inv.Meta.HostVars["infratrack"])

	want := `{"_meta":{"hostvars":{"infratrack":{"ansible_host":"1.2.3.4","ansible_user":"ubuntu",` +
		`"ansible_ssh_private_key_file":"/keys/infratrack","public_dns":"x.example.com"}}},` +
		`"all":{"hosts":["infratrack"],"vars":{}},"web":{"hosts":["infratrack"]}}`
	assert.Equal(t, want, encode(t, inv))
}

func TestBuild_WithoutDNS(t *testing.T) {
	src := fakeSource{outputs: Outputs{
		OutputPublicIP:  stringOutput("1.2.3.4"),
		OutputPublicDNS: {Value: []byte("null")},
	}}

	inv := Build(context.Background(), src, testSettings, nil)
	assert.NotContains(t, encode(t, inv), "public_dns")
}

func TestBuild_NonStringAddress(t *testing.T) {
	src := fakeSource{outputs: Outputs{OutputPublicIP: {Value: []byte(`["1.2.3.4"]`)}}}

	inv := Build(context.Background(), src, testSettings, nil)
	assert.Empty(t, inv.All.Hosts)
}

func TestHostVarsFor(t *testing.T) {
	src := fakeSource{outputs: Outputs{OutputPublicIP: stringOutput("1.2.3.4")}}
	inv := Build(context.Background(), src, testSettings, nil)

	assert.Equal(t, `{"ansible_host":"1.2.3.4","ansible_user":"ubuntu","ansible_ssh_private_key_file":"/keys/infratrack"}`,
		encode(t, inv.HostVarsFor("infratrack")))
	assert.Equal(t, `{}`, encode(t, inv.HostVarsFor("unknown")))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh/infratrack"), ExpandHome("~/.ssh/infratrack"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/etc/key", ExpandHome("/etc/key"))
	assert.Equal(t, "~other/key", ExpandHome("~other/key"))
}

// fakeTerraform writes an executable shell script standing in for terraform.
func fakeTerraform(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "terraform")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestTerraformSource(t *testing.T) {
	bin := fakeTerraform(t, `
case "$1" in
  -chdir=/infra/terraform) ;;
  *) echo "unexpected args: $*" >&2; exit 2 ;;
esac
cat <<'JSON'
{"instance_public_ip":{"sensitive":false,"type":"string","value":"1.2.3.4"},
 "instance_public_dns":{"sensitive":false,"type":"string","value":"x.example.com"}}
JSON
`)

	src := TerraformSource{Bin: bin, Dir: "/infra/terraform", Timeout: 5 * time.Second}
	outputs, err := src.Outputs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", outputs.String(OutputPublicIP))
	assert.Equal(t, "x.example.com", outputs.String(OutputPublicDNS))
}

func TestTerraformSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		errPart string
	}{
		{name: "exit status", script: "echo 'No state file' >&2; exit 1", errPart: "No state file"},
		{name: "malformed json", script: "echo 'not json'", errPart: "decode terraform outputs"},
		{name: "timeout", script: "exec sleep 5", timeout: 100 * time.Millisecond, errPart: "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := TerraformSource{Bin: fakeTerraform(t, tt.script), Timeout: tt.timeout}

			_, err := src.Outputs(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)

			inv := Build(context.Background(), src, testSettings, nil)
			assert.Empty(t, inv.All.Hosts)
		})
	}
}

func TestTerraformSource_MissingBinary(t *testing.T) {
	src := TerraformSource{Bin: filepath.Join(t.TempDir(), "no-such-terraform")}

	_, err := src.Outputs(context.Background())
	assert.Error(t, err)

	inv := Build(context.Background(), src, testSettings, nil)
	assert.Equal(t, Empty(), inv)
}
