package util

import (
	"errors"
	"fmt"

	"github.com/kernel/kernel-go-sdk"
	"github.com/tidwall/gjson"
)

// CleanedUpSdkError renders Kernel API errors as their message and status
// instead of the SDK's full request dump.
type CleanedUpSdkError struct {
	Err error
}

func (e CleanedUpSdkError) Error() string {
	var apiErr *kernel.Error
	if !errors.As(e.Err, &apiErr) {
		return e.Err.Error()
	}
	msg := gjson.Get(apiErr.RawJSON(), "message").String()
	if msg == "" {
		msg = gjson.Get(apiErr.RawJSON(), "error").String()
	}
	if msg == "" {
		return fmt.Sprintf("kernel API error (status %d)", apiErr.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, apiErr.StatusCode)
}

func (e CleanedUpSdkError) Unwrap() error {
	return e.Err
}
