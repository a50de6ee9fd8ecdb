package core

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"docgen/internal/decode"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"unsupported type", &InputError{Kind: InputUnsupportedType}, "FILE001"},
		{"too large", &InputError{Kind: InputTooLarge}, "FILE002"},
		{"empty", &InputError{Kind: InputEmpty}, "FILE003"},
		{"missing file", &InputError{Kind: InputMissingFile}, "FILE003"},
		{"too many rows", &InputError{Kind: InputTooManyRows}, "FILE002"},
		{"bad mode", &InputError{Kind: InputBadMode, Detail: "weekly"}, "VAL003"},
		{"malformed", &decode.Error{Kind: decode.Malformed}, "FILE004"},
		{"duplicate header", &decode.Error{Kind: decode.DuplicateHeader, Detail: "Name"}, "FILE005"},
		{"decode unsupported", &decode.Error{Kind: decode.UnsupportedFormat}, "FILE001"},
		{"missing field", &NormalizeError{Kind: MissingField, Field: "importer_name"}, "VAL001"},
		{"invalid value", &NormalizeError{Kind: InvalidValue, Field: "duty_paid"}, "VAL002"},
		{"unknown placeholder", &BindError{Kind: UnknownPlaceholder, Token: "x"}, "TPL001"},
		{"template unavailable", &BindError{Kind: TemplateUnavailable}, "TPL001"},
		{"no documents", ErrNoDocuments, "GEN001"},
		{"unknown", errors.New("boom"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			assert.Equal(t, tt.wantCode, msg.Code)
			assert.NotEmpty(t, msg.Message)
		})
	}
}

func TestMapError_UnwrapsStage(t *testing.T) {
	err := &StageError{
		Stage: StageNormalize,
		Err:   &NormalizeError{Kind: MissingField, Field: "importer_name"},
	}

	msg := MapError(err)
	assert.Equal(t, "VAL001", msg.Code)
	assert.Contains(t, msg.Message, "importer_name")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input error", &InputError{Kind: InputEmpty}, http.StatusBadRequest},
		{"decode error", &decode.Error{Kind: decode.Malformed}, http.StatusBadRequest},
		{"normalize error", &NormalizeError{Kind: InvalidValue}, http.StatusBadRequest},
		{"no documents", &StageError{Stage: StagePack, Err: ErrNoDocuments}, http.StatusBadRequest},
		{"bind error", &BindError{Kind: UnknownPlaceholder}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
