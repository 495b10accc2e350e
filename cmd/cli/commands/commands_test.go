package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/synthetizer/cmd/cli/config"
	"github.com/inferloop/synthetizer/pkg/errors"
)

const bundle = `{
  "entry": [
    {"resource": {"gender": "female", "age": 34, "period": {"start": "2020-01-01T08:00:00", "end": "2020-01-01T09:30:00"}}},
    {"resource": {"gender": "male",   "age": 51, "period": {"start": "2020-02-03T10:00:00", "end": "2020-02-03T10:45:00"}}},
    {"resource": {"gender": "female", "age": 29, "period": {"start": "2020-03-05T14:15:00", "end": "2020-03-05T16:00:00"}}}
  ]
}`

func testLoader(t *testing.T) EnvironmentLoader {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := config.DefaultConfig()
	cfg.Sampling.Seed = 3
	return func() (*Environment, error) {
		return &Environment{Config: cfg, Logger: logger}, nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines(t *testing.T, output string) []any {
	t.Helper()
	var values []any
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		var v any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &v))
		values = append(values, v)
	}
	return values
}

func TestSampleCategoricalFromBundle(t *testing.T) {
	file := writeFile(t, "bundle.json", bundle)

	output, err := execute(NewSampleCmd(testLoader(t)), "--file", file, "--path", "entry.{}.resource.gender", "--count", "12")
	require.NoError(t, err)

	values := decodeLines(t, output)
	require.Len(t, values, 12)
	for _, v := range values {
		assert.Contains(t, []any{"female", "male"}, v)
	}
}

func TestSampleDurationMappings(t *testing.T) {
	file := writeFile(t, "bundle.json", bundle)

	output, err := execute(NewSampleCmd(testLoader(t)), "-f", file, "-p", "entry.{}.resource.period", "-n", "4")
	require.NoError(t, err)

	values := decodeLines(t, output)
	require.Len(t, values, 4)
	for _, v := range values {
		mapping, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, mapping, "start")
		assert.Contains(t, mapping, "end")
	}
}

func TestSampleUniqueFromYAMLList(t *testing.T) {
	file := writeFile(t, "codes.yaml", "- a\n- b\n- c\n- d\n")
	cmd := NewSampleCmd(testLoader(t))

	_, err := execute(cmd, "--file", file, "--unique")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	output, err := execute(NewSampleCmd(testLoader(t)), "--file", file, "--unique", "--size", "3", "--count", "2")
	require.NoError(t, err)

	values := decodeLines(t, output)
	require.Len(t, values, 2)
	for _, v := range values {
		subset := v.([]any)
		assert.Len(t, subset, 3)
	}
}

func TestSampleWritesOutputFile(t *testing.T) {
	file := writeFile(t, "ages.json", "[3, 5, 8, 13, 21]")
	target := filepath.Join(t.TempDir(), "out.jsonl")

	output, err := execute(NewSampleCmd(testLoader(t)), "--file", file, "--numeric", "--count", "5", "--output", target)
	require.NoError(t, err)
	assert.Empty(t, output)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	values := decodeLines(t, string(data))
	require.Len(t, values, 5)
	for _, v := range values {
		n := v.(float64)
		assert.GreaterOrEqual(t, n, 0.0)
		assert.Less(t, n, 21.0)
	}
}

func TestSampleRejectsBadInput(t *testing.T) {
	file := writeFile(t, "bundle.json", bundle)

	_, err := execute(NewSampleCmd(testLoader(t)), "--file", file, "--path", "entry.{}.resource.gender", "--count", "0")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = execute(NewSampleCmd(testLoader(t)), "--file", file)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = execute(NewSampleCmd(testLoader(t)), "--path", "x")
	assert.Error(t, err)
}

func TestDescribeTableForSeveralFields(t *testing.T) {
	file := writeFile(t, "bundle.json", bundle)

	output, err := execute(NewDescribeCmd(testLoader(t)),
		"--file", file,
		"--path", "entry.{}.resource.gender",
		"--path", "entry.{}.resource.period",
	)
	require.NoError(t, err)

	assert.Contains(t, output, "entry.{}.resource.gender")
	assert.Contains(t, output, "entry.{}.resource.period")
	assert.Contains(t, output, "female")
}

func TestDescribeJSONAndHTML(t *testing.T) {
	file := writeFile(t, "ages.json", "[3, 5, 8, 13, 21]")

	output, err := execute(NewDescribeCmd(testLoader(t)), "--file", file, "--numeric", "--format", "json")
	require.NoError(t, err)

	var descriptions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &descriptions))
	require.Len(t, descriptions, 1)
	assert.Equal(t, "continuous", descriptions[0]["kind"])
	assert.Equal(t, file, descriptions[0]["title"])

	output, err = execute(NewDescribeCmd(testLoader(t)), "--file", file, "--numeric", "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, output, "<html")

	_, err = execute(NewDescribeCmd(testLoader(t)), "--file", file, "--format", "pdf")
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}
