package browser

import (
	"context"
	"time"

	"github.com/kernel/kernel-go-sdk"
	"github.com/kernel/kernel-go-sdk/option"

	"github.com/kernel/autopaste/pkg/util"
)

// KernelBrowserService defines the subset of the Kernel SDK browser client that we use.
type KernelBrowserService interface {
	New(ctx context.Context, body kernel.BrowserNewParams, opts ...option.RequestOption) (*kernel.BrowserNewResponse, error)
	DeleteByID(ctx context.Context, id string, opts ...option.RequestOption) error
}

// NewKernelBrowserService builds the SDK client for apiKey.
func NewKernelBrowserService(apiKey, baseURL string) KernelBrowserService {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := kernel.NewClient(opts...)
	svc := client.Browsers
	return &svc
}

// KernelSession is a cloud browser created for this process.
type KernelSession struct {
	ID          string
	CDPURL      string
	LiveViewURL string

	svc KernelBrowserService
}

// KernelOptions configures the cloud browser.
type KernelOptions struct {
	Timeout  time.Duration
	Stealth  bool
	Headless bool
}

// NewKernelSession creates a cloud browser.
func NewKernelSession(ctx context.Context, svc KernelBrowserService, opts KernelOptions) (*KernelSession, error) {
	params := kernel.BrowserNewParams{}
	if opts.Timeout > 0 {
		params.TimeoutSeconds = kernel.Opt(int64(opts.Timeout / time.Second))
	}
	if opts.Stealth {
		params.Stealth = kernel.Opt(true)
	}
	if opts.Headless {
		params.Headless = kernel.Opt(true)
	}
	b, err := svc.New(ctx, params)
	if err != nil {
		return nil, util.CleanedUpSdkError{Err: err}
	}
	return &KernelSession{
		ID:          b.SessionID,
		CDPURL:      b.CdpWsURL,
		LiveViewURL: b.BrowserLiveViewURL,
		svc:         svc,
	}, nil
}

// Delete tears the cloud browser down.
func (s *KernelSession) Delete(ctx context.Context) error {
	if err := s.svc.DeleteByID(ctx, s.ID); err != nil {
		return util.CleanedUpSdkError{Err: err}
	}
	return nil
}
