package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"soloschedule/internal/database"
	"soloschedule/internal/models"
	"soloschedule/internal/repository"
	"soloschedule/internal/service"
	"soloschedule/internal/timegrid"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2030-01-07 is a Monday.
const monday = "2030-01-07"

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
storage:
  driver: sqlite
  sqlite:
    path: %q
backup:
  enabled: true
  storage_path: %q
logging:
  level: error
scheduling:
  timezone: UTC
  seed_default_schedule: true
exports:
  path: %q
monitoring:
  textfile_path: %q
`,
		filepath.Join(dir, "store.db"),
		filepath.Join(dir, "backups"),
		filepath.Join(dir, "exports"),
		filepath.Join(dir, "soloschedule.prom"),
	)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, dir
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	defer a.close()

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_BookingFlow(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := execute(t, cfgPath, "services", "set", "Trim", "--duration", "30", "--price", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "Trim")

	out, err = execute(t, cfgPath, "book", "--date", monday, "--time", "09:00", "--client", "Ana", "--service", "Trim")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana (Trim)")

	_, err = execute(t, cfgPath, "book", "--date", monday, "--time", "09:15", "--client", "Ben", "--service", "Trim")
	assert.ErrorIs(t, err, service.ErrSlotNoLongerAvailable)

	out, err = execute(t, cfgPath, "slots", "--date", monday, "--service", "Trim")
	require.NoError(t, err)
	assert.Contains(t, out, "* 09:30")
	assert.NotContains(t, out, " 09:00\n")

	out, err = execute(t, cfgPath, "block", "--date", monday, "--time", "10:00", "--minutes", "30", "--type", "Admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked 10:00-10:30 (Admin)")

	out, err = execute(t, cfgPath, "day", "--date", monday)
	require.NoError(t, err)
	assert.Contains(t, out, "2030-01-07 (mon)")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Admin")

	out, err = execute(t, cfgPath, "unblock", "--date", monday, "--start", "10:00", "--end", "10:30", "--type", "Admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")

	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)

	_, err = os.Stat(filepath.Join(dir, "soloschedule.prom"))
	assert.NoError(t, err)
}

func TestCLI_Schedule(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := execute(t, cfgPath, "schedule")
	require.NoError(t, err)
	assert.Contains(t, out, "mon: 09:00-12:00, 13:00-17:00")
	assert.Contains(t, out, "sat: off")

	out, err = execute(t, cfgPath, "schedule", "toggle", "sat", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "sat: 09:00-11:00")

	out, err = execute(t, cfgPath, "schedule", "add", "sat")
	require.NoError(t, err)
	assert.Contains(t, out, "sat: 09:00-11:00, 11:00-14:00")

	_, err = execute(t, cfgPath, "schedule", "set", "sat", "0", "09:00", "12:00")
	assert.ErrorIs(t, err, service.ErrOverlappingRange)

	_, err = execute(t, cfgPath, "schedule", "toggle", "sat", "maybe")
	assert.Error(t, err)

	_, err = execute(t, cfgPath, "schedule", "clear")
	require.NoError(t, err)
	out, err = execute(t, cfgPath, "schedule")
	require.NoError(t, err)
	assert.Contains(t, out, "mon: off")
}

func TestCLI_Earnings(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	_, err := execute(t, cfgPath, "services", "set", "Colour", "--duration", "90", "--price", "80")
	require.NoError(t, err)
	_, err = execute(t, cfgPath, "book", "--date", monday, "--time", "13:00", "--client", "Ana", "--service", "Colour")
	require.NoError(t, err)

	out, err := execute(t, cfgPath, "earnings")
	require.NoError(t, err)
	assert.Contains(t, out, "Total earned: 0.00")
	assert.Contains(t, out, "scheduled")

	out, err = execute(t, cfgPath, "earnings", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "exports"))
}

func TestCLI_UnblockUntilMidnight(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(dir, "store.db"), &logger)
	require.NoError(t, err)
	store := repository.NewStore(db, &logger)
	require.NoError(t, store.SaveBlockouts(context.Background(), models.DayBlockouts{
		monday: {{Type: models.BlockOther, Start: 23 * 60, End: timegrid.MinutesPerDay}},
	}))
	require.NoError(t, db.Close())

	out, err := execute(t, cfgPath, "unblock", "--date", monday, "--start", "23:00", "--end", "24:00", "--type", models.BlockOther)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2030-01-07 23:00-24:00 (Other)")

	_, err = execute(t, cfgPath, "unblock", "--date", monday, "--start", "23:00", "--end", "24:00", "--type", models.BlockOther)
	assert.ErrorIs(t, err, service.ErrBlockoutNotFound)

	_, err = execute(t, cfgPath, "unblock", "--date", monday, "--start", "24:00", "--end", "24:00")
	assert.ErrorIs(t, err, timegrid.ErrInvalidTime)
}

func TestCLI_BadConfig(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing.yaml"), "schedule")
	assert.Error(t, err)
}
