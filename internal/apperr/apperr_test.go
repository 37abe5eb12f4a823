package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := E(KindParse, "normalize.Extract", errors.New("unexpected end of JSON input"))
	wrapped := fmt.Errorf("generate workout: %w", base)

	assert.Equal(t, KindParse, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindParse))
	assert.False(t, Is(nil, KindParse))
	assert.Equal(t, KindInternal, KindOf(context.Canceled))
	assert.ErrorIs(t, E(KindTimeout, "op", context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthentication: http.StatusUnauthorized,
		KindValidation:     http.StatusBadRequest,
		KindNotFound:       http.StatusNotFound,
		KindExtraction:     http.StatusInternalServerError,
		KindParse:          http.StatusInternalServerError,
		KindNormalization:  http.StatusInternalServerError,
		KindDownstream:     http.StatusInternalServerError,
		KindTimeout:        http.StatusInternalServerError,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, Status(kind), kind.String())
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "auth.Verify: validation error", (&Error{Kind: KindValidation, Op: "auth.Verify"}).Error())
	assert.Equal(t, "op: boom", Errorf(KindDownstream, "op", "boom").Error())
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("handler: %w", Errorf(KindValidation, "quiz.Next", "question %q is not answered", "goal"))
	assert.Equal(t, `question "goal" is not answered`, Message(err))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Empty(t, Message(nil))
}
