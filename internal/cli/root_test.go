package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbridge/internal/triage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAssessCommand(t *testing.T) {
	out, err := run(t, "assess", "--flag", "fever", "--flag", "cough", "--flag", "runnyNose", "--severity", "moderate")
	require.NoError(t, err)

	var result triage.AssessmentResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.PossibleConditions, 2)
	assert.Equal(t, "Common Cold", result.PossibleConditions[0].Title)
	assert.Equal(t, triage.UrgencySoon, result.OverallUrgency)
}

func TestAssessCommand_CommaSeparatedFlags(t *testing.T) {
	out, err := run(t, "assess", "-f", "chestPain,breathingDifficulty")
	require.NoError(t, err)

	var result triage.AssessmentResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, triage.UrgencyEmergency, result.OverallUrgency)
}

func TestAssessCommand_Errors(t *testing.T) {
	_, err := run(t, "assess")
	var empty *triage.EmptyInputError
	assert.ErrorAs(t, err, &empty)

	_, err = run(t, "assess", "--flag", "hiccups")
	var invalid *triage.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestChatCommand(t *testing.T) {
	out, err := run(t, "chat", "I", "feel", "breathless")
	require.NoError(t, err)

	assert.Contains(t, out, "Breathing Trouble")
	assert.Contains(t, out, "Urgency: routine")
	assert.Contains(t, out, "Book Emergency Appointment")

	_, err = run(t, "chat")
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	out, err := run(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog version 2024.1")
	assert.Contains(t, out, "Breathing Trouble")

	good := filepath.Join(t.TempDir(), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
version: "local"
conditions:
  - title: Hiccups
    keywords: [hiccup]
    urgency: low
`), 0o600))
	out, err = run(t, "catalog", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (version local, 1 conditions)")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
conditions:
  - title: Hiccups
    keywords: [hiccup]
    urgency: whenever
`), 0o600))
	_, err = run(t, "catalog", "validate", bad)
	assert.Error(t, err)
}

func TestCatalogFlagOverridesEmbeddedCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "local"
conditions:
  - title: Hiccups
    keywords: [hiccup]
    home_remedy: Hold your breath.
    danger_signs: Hiccups lasting more than two days.
    urgency: low
`), 0o600))

	out, err := run(t, "--catalog", path, "chat", "constant hiccups")
	require.NoError(t, err)
	assert.Contains(t, out, "Hiccups")
}

func TestSymptomsAndVersion(t *testing.T) {
	out, err := run(t, "symptoms")
	require.NoError(t, err)
	assert.Contains(t, out, "breathingDifficulty")

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "healthbridge dev\n", out)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:secret")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 8080")
	assert.NotContains(t, out, "123:secret")
}

func TestWatchRequiresRedis(t *testing.T) {
	_, err := run(t, "watch")
	assert.Error(t, err)
}
