package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanedUpSdkErrorPassesPlainErrors(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := CleanedUpSdkError{Err: base}
	assert.Equal(t, "dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
}
