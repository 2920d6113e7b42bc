package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DevLearnAcademy/internal/platform/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "academy", cmd.Use)
	assert.Contains(t, cmd.Long, "idle/incremental")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "status", "export", "import", "reset", "slots"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "slot", "catalog"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seed writes a save where the player has clicked once.
func seed(t *testing.T, dbPath, slot string) {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = dbPath
	cfg.SaveSlot = slot
	app, err := OpenApp(cfg, io.Discard)
	require.NoError(t, err)
	require.NoError(t, app.Engine.Click())
	require.True(t, app.Engine.Save(context.Background()))
	require.NoError(t, app.Close())
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "status", "--format", "xml", "--db", filepath.Join(t.TempDir(), "a.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestStatusWithoutSave(t *testing.T) {
	out, err := execute(t, "status", "--db", filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	assert.Equal(t, "No save found in slot \"main\".\n", out)
}

func TestStatusShowsSave(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	seed(t, db, "main")

	out, err := execute(t, "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Level 1 (6 XP)")
	assert.Contains(t, out, "Lines of code: 1")
	assert.Contains(t, out, "Achievements: 1/8")

	out, err = execute(t, "status", "--db", db, "--format", "json")
	require.NoError(t, err)
	var result StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Found)
	assert.Equal(t, "1", result.Version)
	require.NotNil(t, result.State)
	assert.Equal(t, int64(1), result.State.Clicks)
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	seed(t, src, "main")

	out, err := execute(t, "export", "--db", src)
	require.NoError(t, err)
	data := strings.TrimSpace(out)
	require.NotEmpty(t, data)

	out, err = execute(t, "import", data, "--db", dst, "--slot", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, `Imported into slot "bob"`)

	out, err = execute(t, "status", "--db", dst, "--slot", "bob", "--format", "json")
	require.NoError(t, err)
	var result StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.True(t, result.Found)
	assert.Equal(t, int64(1), result.State.Clicks)
}

func TestExportWithoutSaveFails(t *testing.T) {
	_, err := execute(t, "export", "--db", filepath.Join(t.TempDir(), "a.db"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestImportRejectsGarbageAndKeepsSave(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	seed(t, db, "main")

	_, err := execute(t, "import", "definitely-not-a-save", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Lines of code: 1")
}

func TestReset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")
	seed(t, db, "main")

	_, err := execute(t, "reset", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "reset", "--yes", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "reset")

	out, err = execute(t, "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No save found")
}

func TestSlots(t *testing.T) {
	db := filepath.Join(t.TempDir(), "a.db")

	out, err := execute(t, "slots", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No saves.\n", out)

	seed(t, db, "alice")
	seed(t, db, "bob")

	out, err = execute(t, "slots", "--db", db, "--format", "json")
	require.NoError(t, err)
	var slots []struct {
		Slot string `json:"slot"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &slots))
	require.Len(t, slots, 2)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
