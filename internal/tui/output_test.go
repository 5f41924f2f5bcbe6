package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

func TestNewOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	out, err := NewOutput(&buf, "")
	require.NoError(t, err)
	assert.IsType(t, &TTYOutput{}, out)

	out, err = NewOutput(&buf, FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, out)

	_, err = NewOutput(&buf, "xml")
	require.ErrorIs(t, err, e2eerrors.ErrInvalidOutputFormat)
	assert.True(t, e2eerrors.IsExitCode2Error(err))
}

func TestTTYOutput_Messages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("migration idc_ingest_new_items done")
	out.Warning("1 row failed")
	out.Info("https://idc.test/admin/content")

	text := buf.String()
	assert.Contains(t, text, "✓ migration idc_ingest_new_items done")
	assert.Contains(t, text, "⚠ 1 row failed")
	assert.Contains(t, text, "https://idc.test/admin/content")
}

func TestTTYOutput_Error(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Error(fmt.Errorf("run: %w", e2eerrors.ErrUnknownMigrationKind))
	text := buf.String()
	assert.Contains(t, text, "✗ run: unknown migration kind")
	assert.Contains(t, text, "▸ Try: Run 'idce2e kinds'")

	buf.Reset()
	out.Error(e2eerrors.ErrUnexpectedStatus)
	assert.NotContains(t, buf.String(), "Try:", "no action, no hint")
}

func TestTTYOutput_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewTTYOutput(&buf).Table(
		[]string{"NAME", "TYPE", "USE"},
		[][]string{
			{"Derivative Image 01.jpg", "Image", "Original File"},
			{"thumb.jpg", "Image"},
		},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME                     TYPE   USE", lines[0])
	assert.Equal(t, "Derivative Image 01.jpg  Image  Original File", lines[1])
	assert.Equal(t, "thumb.jpg                Image", lines[2], "missing cells pad and trailing space is trimmed")

	buf.Reset()
	NewTTYOutput(&buf).Table(nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestJSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Success("done")
	out.Warning("careful")
	out.Info("fyi")
	out.Error(e2eerrors.Wrap(e2eerrors.ErrMigrationTimeout, "idc_ingest_new_items"))
	out.Table([]string{"url", "status"}, [][]string{{"https://s3.test/a.jpg", "403"}, {"https://s3.test/b.jpg"}})
	require.NoError(t, out.JSON(map[string]int{"count": 3}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.JSONEq(t, `{"type":"success","message":"done"}`, lines[0])
	assert.JSONEq(t, `{"type":"warning","message":"careful"}`, lines[1])
	assert.JSONEq(t, `{"type":"info","message":"fyi"}`, lines[2])

	var errLine jsonError
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &errLine))
	assert.Equal(t, "error", errLine.Type)
	assert.Equal(t, "idc_ingest_new_items: migration did not complete in time", errLine.Message)
	assert.Contains(t, errLine.Details, "did not report completion")
	assert.Contains(t, errLine.Suggestion, "TEST_OPERATION_TIMEOUT_MS")

	assert.JSONEq(t, `[{"url":"https://s3.test/a.jpg","status":"403"},{"url":"https://s3.test/b.jpg","status":""}]`, lines[4])
	assert.JSONEq(t, `{"count":3}`, lines[5])
}

func TestJSONOutput_ErrorWithoutInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewJSONOutput(&buf).Error(fmt.Errorf("boom"))
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, buf.String())
}
