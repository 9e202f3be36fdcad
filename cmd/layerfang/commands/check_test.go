package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/layerfang/cmd/layerfang/commands"
	"github.com/Sumatoshi-tech/layerfang/internal/config"
	"github.com/Sumatoshi-tech/layerfang/pkg/rules"
)

// isolate keeps the config file search away from the developer's real CWD
// and HOME.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func newFixtureRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "mypkg")

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func runCheck(t *testing.T, args ...string) error {
	t.Helper()

	cmd := commands.NewCheckCommand()
	cmd.SetArgs(args)

	return cmd.Execute()
}

func TestCheck_ViolationsFound(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		"domain/foo.py": "import mypkg.adaptor.bar\n",
	})
	out := filepath.Join(t.TempDir(), "report.txt")

	err := runCheck(t, "--output", out, root)
	require.ErrorIs(t, err, commands.ErrViolationsFound)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)

	assert.Contains(t, string(data), "Layered-import violations:")
	assert.Contains(t, string(data), "[domain -> adaptor] mypkg.adaptor.bar")
}

func TestCheck_CleanRun(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		"service/api.py": "import mypkg.domain.user\n",
	})
	out := filepath.Join(t.TempDir(), "report.txt")

	require.NoError(t, runCheck(t, "--output", out, root))

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)

	assert.Contains(t, string(data), "OK: no layered-import violations found.")
}

func TestCheck_JSONOutput(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		"dataset/loader.py": "import mypkg.service.api\n",
	})
	out := filepath.Join(t.TempDir(), "report.json")

	err := runCheck(t, "--format", "json", "--output", out, root)
	require.ErrorIs(t, err, commands.ErrViolationsFound)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)

	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Count)
}

func TestCheck_ExplicitForbidOverridesDefault(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		// Forbidden by the default policy, but the explicit rule replaces it.
		"domain/foo.py":  "import mypkg.adaptor.bar\n",
		"adaptor/bar.py": "import mypkg.domain.user\n",
	})
	out := filepath.Join(t.TempDir(), "report.txt")

	err := runCheck(t, "--forbid", "adaptor:domain", "--output", out, root)
	require.ErrorIs(t, err, commands.ErrViolationsFound)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)

	assert.Contains(t, string(data), "[adaptor -> domain]")
	assert.NotContains(t, string(data), "[domain -> adaptor]")
}

func TestCheck_MissingRoot(t *testing.T) {
	isolate(t)

	err := runCheck(t, filepath.Join(t.TempDir(), "missing"))

	require.ErrorIs(t, err, config.ErrRootNotDirectory)
	require.NotErrorIs(t, err, commands.ErrViolationsFound)
}

func TestCheck_MalformedForbidFlag(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		"domain/foo.py": "import os\n",
	})

	err := runCheck(t, "--forbid", "domain", root)

	require.ErrorIs(t, err, rules.ErrMissingSeparator)
}

func TestCheck_ConfigFile(t *testing.T) {
	isolate(t)

	root := newFixtureRoot(t, map[string]string{
		"core/a.py":  "import mypkg.infra.db\n",
		"infra/b.py": "import mypkg.core.model\n",
	})

	configPath := filepath.Join(t.TempDir(), "layerfang.yaml")
	configBody := "layers:\n  - core\n  - infra\nforbid:\n  - \"core:infra\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configBody), 0o644))

	out := filepath.Join(t.TempDir(), "report.txt")

	err := runCheck(t, "--config", configPath, "--output", out, root)
	require.ErrorIs(t, err, commands.ErrViolationsFound)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)

	assert.Contains(t, string(data), "[core -> infra]")
	assert.NotContains(t, string(data), "[infra -> core]")
}
