package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-tree/internal/model"
	"go-file-tree/pkg/apierror"
)

func TestParseSize(t *testing.T) {
	valid := map[string]int64{
		`0`:                     0,
		`2048`:                  2048,
		`"512"`:                 512,
		`" 7 "`:                 7,
		`1e3`:                   1000,
		`10.0`:                  10,
		`100e-2`:                1,
		`"1E+3"`:                1000,
		`9007199254740993`:      9007199254740993,
		`9223372036854775807`:   9223372036854775807,
		`"9223372036854775807"`: 9223372036854775807,
	}
	for raw, want := range valid {
		got, err := parseSize(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	invalid := []string{
		``, `null`, `-1`, `"-5"`, `1.5`, `"abc"`, `"NaN"`, `"Inf"`, `true`, `{}`, `[]`, `1e400`,
		`9223372036854775808`, `"9223372036854775808"`, `-9223372036854775808`, `9.3e18`,
		`"0x10"`, `"4/2"`, `1e-2`, `""`,
	}
	for _, raw := range invalid {
		_, err := parseSize(json.RawMessage(raw))
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr, raw)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus, raw)
		assert.Equal(t, msgSizeInvalid, apiErr.Message, raw)
	}
}

func TestParseOrderedIDs(t *testing.T) {
	ids, err := parseOrderedIDs(json.RawMessage(`["a", 3, "c"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, ids)

	ids, err = parseOrderedIDs(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, raw := range []string{``, `null`, `"a"`, `{"0":"a"}`, `[`} {
		_, err := parseOrderedIDs(json.RawMessage(raw))
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), msgOrderedIDsArray, raw)
	}
}

func TestRequireName(t *testing.T) {
	assert.NoError(t, requireName("Docs"))

	for _, name := range []string{"", "   ", "\t\n"} {
		err := requireName(name)
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, msgNameRequired, apiErr.Message)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "api error", err: apierror.BadRequest("name is required"), wantStatus: http.StatusBadRequest, wantBody: "name is required"},
		{name: "conflict", err: model.NewNameConflict(model.KindFolder, model.KindFolder, "Docs", false), wantStatus: http.StatusConflict, wantBody: `Folder "Docs" already exists in this directory`},
		{name: "wrapped conflict", err: fmt.Errorf("create: %w", model.NewNameConflict(model.KindFile, model.KindFolder, "a", false)), wantStatus: http.StatusConflict, wantBody: `A file named "a" already exists in this directory`},
		{name: "negative size from store", err: model.ErrNegativeSize, wantStatus: http.StatusBadRequest, wantBody: msgSizeInvalid},
		{name: "folder not found", err: model.ErrFolderNotFound, wantStatus: http.StatusNotFound, wantBody: "Folder not found"},
		{name: "file not found", err: fmt.Errorf("update: %w", model.ErrFileNotFound), wantStatus: http.StatusNotFound, wantBody: "File not found"},
		{name: "internal", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantBody: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Error)
		})
	}
}
