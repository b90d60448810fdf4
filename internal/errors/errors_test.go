package errors

import (
	stderrors "errors"
	"testing"

	"forecastbonus/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_ClassifiesDomainErrors(t *testing.T) {
	err := Wrap(core.ErrTooManyHorizons, "failed to score task 0")
	assert.Equal(t, CodeInvalidConfiguration, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrInvalidConfiguration))

	err = Wrap(core.NewMissingDataError("values", 45), "failed to score task 1")
	assert.Equal(t, CodeMissingData, GetCode(err))

	err = Wrap(core.ErrAssignmentNotFound, "lookup")
	assert.Equal(t, CodeNotFound, GetCode(err))

	err = Wrap(stderrors.New("boom"), "lookup")
	assert.Equal(t, CodeInternalError, GetCode(err))
}

func TestWrap_KeepsAppErrorCode(t *testing.T) {
	inner := InvalidInput("bad body")
	err := Wrapf(inner, "request %d", 7)
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "request 7: bad body", err.Error())
	assert.True(t, IsAppError(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestGetCode_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeMissingData, GetCode(core.ErrMissingData))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("connection refused"))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Equal(t, "connection refused", err.Error())
}
