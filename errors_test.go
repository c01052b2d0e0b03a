package fluid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDefaultErrorTransformer(t *testing.T) {
	svc := NewError(CodeNotFound, "no such user")
	if got := DefaultErrorTransformer(fmt.Errorf("wrapped: %w", svc)); got.Code != CodeNotFound {
		t.Errorf("wrapped service error: code = %s, want %s", got.Code, CodeNotFound)
	}

	if got := DefaultErrorTransformer(context.DeadlineExceeded); got.Code != CodeDeadlineExceeded {
		t.Errorf("deadline: code = %s", got.Code)
	}
	if got := DefaultErrorTransformer(context.Canceled); got.Code != CodeCanceled {
		t.Errorf("canceled: code = %s", got.Code)
	}
	if got := DefaultErrorTransformer(errors.New("boom")); got.Code != CodeInternal {
		t.Errorf("unknown: code = %s", got.Code)
	}
	if got := DefaultErrorTransformer(nil); got != nil {
		t.Errorf("nil error: got %v", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeCanceled, 499},
		{CodeDeadlineExceeded, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.code); got != tt.want {
			t.Errorf("httpStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
