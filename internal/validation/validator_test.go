package validation_test

import (
	"errors"
	"net/http"
	"testing"

	domainerrors "github.com/marginaliaapp/marginalia-server/internal/errors"
	"github.com/marginaliaapp/marginalia-server/internal/validation"
	"github.com/stretchr/testify/assert"
)

type TestRequest struct {
	Body       string `json:"body" validate:"required,max=5000"`
	AuthorName string `json:"authorName" validate:"omitempty,max=120"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Body:       "a perfectly fine memo",
		AuthorName: "Alex",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name        string
		req         TestRequest
		wantErrCode int
		wantErrMsg  string
	}{
		{
			name: "missing required field",
			req: TestRequest{
				Body: "", // Missing
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "body",
		},
		{
			name: "body too long",
			req: TestRequest{
				Body: string(make([]byte, 5001)),
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "body",
		},
		{
			name: "author name too long",
			req: TestRequest{
				Body:       "fine",
				AuthorName: string(make([]byte, 121)),
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "authorName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())
				fields, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok, "details should be a field error map") {
					assert.Contains(t, fields, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := TestRequest{Body: ""}

	err := v.Validate(req)
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	if assert.True(t, errors.As(err, &domainErr)) {
		fields, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use JSON tag name "body", not struct field name "Body"
			assert.Contains(t, fields, "body")
			assert.NotContains(t, fields, "Body")
		}
	}
}
