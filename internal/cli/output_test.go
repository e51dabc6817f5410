package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nostrpow/internal/event"
	"github.com/roach88/nostrpow/internal/pow"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"id": "abc"}, func(io.Writer) {
		t.Fatal("text renderer must not run in json mode")
	})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("ignored", func(w io.Writer) {
		fmt.Fprint(w, "rendered")
	}))
	assert.Equal(t, "rendered", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeOutOfRange, "difficulty 65 cannot exceed 64", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E006", resp.Error.Code)
	assert.Equal(t, "difficulty 65 cannot exceed 64", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut, Verbose: true}

	require.NoError(t, formatter.Error("E001", "boom", map[string]string{"file": "x.json"}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E001]: boom")
	assert.Contains(t, errOut.String(), "Details:")
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
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Mining at difficulty %d", 8)

			assert.Empty(t, out.String(), "diagnostics must not corrupt JSON output")
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Mining at difficulty 8")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	_, cause := pow.NewDifficulty(65)
	err := formatter.Fail(cause)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrCodeOutOfRange, resp.Error.Code)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "x", nil))))
}

func TestClassify(t *testing.T) {
	_, outOfRange := pow.NewDifficulty(-1)
	_, invalidDifficulty := pow.ParseDifficulty("5")
	_, shape := event.Parse([]byte(`{}`))
	_, invalidEvent := pow.Prepare(nostrEventWithBadUTF8(), 1)
	_, finishErr := pow.Finish(nostrEventWithBadUTF8(), "1")

	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"missing file", &readError{err: fs.ErrNotExist}, ErrCodeNotFound, ExitCommandError},
		{"read failure", &readError{err: io.ErrUnexpectedEOF}, ErrCodeReadFailed, ExitCommandError},
		{"config", &configError{err: errors.New("bad key")}, ErrCodeConfig, ExitCommandError},
		{"out of range", outOfRange, ErrCodeOutOfRange, ExitCommandError},
		{"difficulty type", invalidDifficulty, ErrCodeInvalidParameter, ExitCommandError},
		{"shape error", shape, ErrCodeInvalidEvent, ExitCommandError},
		{"invalid event through pow", invalidEvent, ErrCodeInvalidEvent, ExitCommandError},
		{"finish without nonce tag", finishErr, ErrCodeInvalidParameter, ExitCommandError},
		{"timeout", fmt.Errorf("search: %w", context.DeadlineExceeded), ErrCodeTimeout, ExitFailure},
		{"engine", errors.New("gpu lost"), ErrCodeSearchFailed, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classify(tt.err)
			assert.Equal(t, tt.code, c.code)
			assert.Equal(t, tt.exit, c.exit)
		})
	}
}
