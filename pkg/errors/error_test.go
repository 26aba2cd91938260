package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidBar, "bar close must be positive")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidBar, err.Code)
	suite.Equal("bar close must be positive", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeNonMonotonicTime, "bar %d is not after bar %d", 3, 2)
	suite.Equal(ErrCodeNonMonotonicTime, err.Code)
	suite.Equal("bar 3 is not after bar 2", err.Message)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("io failure")
	err := Wrapf(ErrCodeQueryFailed, cause, "failed to read %s", "bars.parquet")
	suite.Equal(ErrCodeQueryFailed, err.Code)
	suite.Equal("failed to read bars.parquet", err.Message)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[100] invalid parameter", New(ErrCodeInvalidParameter, "invalid parameter").Error())

	wrapped := Wrap(ErrCodeDataNotFound, "data not found", errors.New("underlying error"))
	suite.Equal("[200] data not found: underlying error", wrapped.Error())
}

func (suite *ErrorTestSuite) TestGetCode() {
	cause := New(ErrCodeInvalidBar, "bad bar")
	err := Wrap(ErrCodeStrategyRuntimeError, "strategy failed", cause)

	// outermost code wins
	suite.Equal(ErrCodeStrategyRuntimeError, GetCode(err))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestHasCodeWalksChain() {
	inner := New(ErrCodeInvalidConfiguration, "risk_fraction out of range")
	outer := Wrap(ErrCodeBacktestInitFailed, "failed to create engine", inner)

	suite.True(HasCode(outer, ErrCodeBacktestInitFailed))
	suite.True(HasCode(outer, ErrCodeInvalidConfiguration))
	suite.False(HasCode(outer, ErrCodeDataNotFound))
	suite.False(HasCode(nil, ErrCodeUnknown))
	suite.False(HasCode(errors.New("plain"), ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.True(Is(err, cause))

	var typed *Error
	suite.True(As(err, &typed))
	suite.Equal(ErrCodeDataNotFound, typed.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(400), ErrCodeStrategyConfigError)
	suite.Equal(ErrorCode(600), ErrCodeBacktestInitFailed)
	suite.Equal(ErrorCode(700), ErrCodeGridEmpty)
	suite.Equal(ErrorCode(800), ErrCodeCallbackFailed)
}

func (suite *ErrorTestSuite) TestValidationError() {
	err := NewValidationError("invalid configuration", "RiskFraction", "SpreadRate")
	suite.Equal("invalid configuration: [RiskFraction SpreadRate]", err.Error())
	suite.True(IsValidationError(err))
	suite.True(IsValidationError(Wrap(ErrCodeInvalidConfiguration, "config", err)))
	suite.False(IsValidationError(errors.New("plain")))
	suite.False(IsValidationError(nil))

	suite.Equal("no fields", NewValidationError("no fields").Error())
}
