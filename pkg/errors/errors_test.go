package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeNoResults, "naver_blog", "no blog results for keyword")
	assert.Equal(t, "no_results error (naver_blog): no blog results for keyword", err.Error())

	err = New(ErrorTypeUnknown, "", "something broke")
	assert.Equal(t, "unknown error: something broke", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrorTypeNavigation, "instagram", "search navigation failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "search navigation failed")
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeAuthTimeout, TypeOf(New(ErrorTypeAuthTimeout, "instagram", "login window timed out")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestTypeOfWrapped(t *testing.T) {
	inner := New(ErrorTypeSessionInvalid, "instagram", "saved session redirected to login")
	outer := fmt.Errorf("during startup: %w", inner)

	assert.Equal(t, ErrorTypeSessionInvalid, TypeOf(outer))
	assert.True(t, IsSessionInvalid(outer))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsAuthTimeout(New(ErrorTypeAuthTimeout, "instagram", "x")))
	assert.True(t, IsPageLoadTimeout(New(ErrorTypePageLoadTimeout, "naver_blog", "x")))
	assert.True(t, IsNoResults(New(ErrorTypeNoResults, "naver_blog", "x")))
	assert.False(t, IsAuthTimeout(New(ErrorTypeNoResults, "naver_blog", "x")))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(ErrorTypeSessionInvalid))
	assert.True(t, IsRecoverable(ErrorTypePageLoadTimeout))
	assert.False(t, IsRecoverable(ErrorTypeAuthTimeout))
	assert.False(t, IsRecoverable(ErrorTypeNoResults))
	assert.False(t, IsRecoverable(ErrorTypeUnknown))
}
