package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/audioctl/internal/engine"
	"github.com/roach88/audioctl/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]bool{"supported": true}
	err := formatter.Success(data, "ignored in json")
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"supported": true}, resp.Data)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("WRITE_FAILURE", "no applicable main rule could be written", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "WRITE_FAILURE", resp.Error.Code)
	assert.Equal(t, "no applicable main rule could be written", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"state": "on"}
	err := formatter.Error("VERIFICATION_TIMEOUT", "not confirmed", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(map[string]bool{"supported": true}, "Speakers: supported")
	require.NoError(t, err)
	assert.Equal(t, "Speakers: supported\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("NOT_SUPPORTED", "no rule", map[string]string{"x": "y"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [NOT_SUPPORTED]")
	assert.Contains(t, buf.String(), "no rule")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("NOT_SUPPORTED", "no rule", map[string]string{"section": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [NOT_SUPPORTED]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"not_supported", engine.NewNotSupportedError("dev"), "NOT_SUPPORTED", ExitNotSupported},
		{"no_candidate", engine.NewNoCandidateError("no flip", nil), "NO_CANDIDATE", ExitFailure},
		{"write_failure", engine.NewWriteFailureError("denied", errors.New("access denied")), "WRITE_FAILURE", ExitFailure},
		{"verification_timeout", engine.NewVerificationTimeoutError(ir.On, ir.Off, time.Second), "VERIFICATION_TIMEOUT", ExitVerificationTimeout},
		{"catalog_io", engine.NewCatalogIOError("/x.ini", errors.New("read-only")), "CATALOG_IO", ExitCommandError},
		{"plain", errors.New("boom"), "ERROR", ExitFailure},
		{"exit_error", NewExitError(ExitCommandError, "bad flag"), "ERROR", ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.err, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_FailKeepsPartialResult(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	partial := map[string]string{"state": "off"}
	_ = formatter.Fail(engine.NewVerificationTimeoutError(ir.On, ir.Off, time.Second), partial)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, map[string]any{"state": "off"}, resp.Error.Details)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Wrote %s", "bundle.json")

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "Wrote bundle.json")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitNotSupported, GetExitCode(NewExitError(ExitNotSupported, "x")))

	wrapped := WrapExitError(ExitVerificationTimeout, "apply", errors.New("late"))
	assert.Equal(t, ExitVerificationTimeout, GetExitCode(wrapped))
	assert.Equal(t, "apply: late", wrapped.Error())
}

func TestReported(t *testing.T) {
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}

	assert.False(t, Reported(errors.New("flag parse")))
	assert.False(t, Reported(NewExitError(ExitCommandError, "invalid format")))
	assert.True(t, Reported(formatter.Fail(engine.NewNotSupportedError("dev"), nil)))
	assert.True(t, Reported(formatter.Fail(NewExitError(ExitFailure, "aborted"), nil)))
}
