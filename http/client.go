package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/semaphore"

	"github.com/bcap/teachbook-harvester/log"
)

const DefaultUserAgent = "teachbook-harvester/1.0"

// maxBodySize caps how much of a single document is read into memory.
const maxBodySize = 32 << 20

type Client struct {
	client                  retryablehttp.Client
	ParallelismSem          *semaphore.Weighted
	ExtraStatusCodesToRetry []int
	UserAgent               string
}

// NewClient returns a client that does not retry unless RetryMax is raised.
func NewClient(
	parallelismSem *semaphore.Weighted,
	extraStatusCodesToRetry []int,
) *Client {
	c := Client{
		client:                  *retryablehttp.NewClient(),
		ParallelismSem:          parallelismSem,
		ExtraStatusCodesToRetry: extraStatusCodesToRetry,
		UserAgent:               DefaultUserAgent,
	}
	c.client.RetryMax = 0
	c.client.CheckRetry = c.checkRetry
	// hand the last response back instead of a "giving up" error so callers
	// can report the status code
	c.client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.client.Logger = debugLogger{}
	return &c
}

func (c *Client) RetryMax(retries int) {
	c.client.RetryMax = retries
}

func (c *Client) RetryWaitMin(duration time.Duration) {
	c.client.RetryWaitMin = duration
}

func (c *Client) RetryWaitMax(duration time.Duration) {
	c.client.RetryWaitMax = duration
}

func (c *Client) Timeout(duration time.Duration) {
	c.client.HTTPClient.Timeout = duration
}

// HTTPClient replaces the underlying transport client.
func (c *Client) HTTPClient(client *http.Client) {
	c.client.HTTPClient = client
}

func (c *Client) Request(ctx context.Context, method string, url string, header http.Header, body io.Reader) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if header != nil {
		req.Header = header
	}
	if req.Header.Get("User-Agent") == "" && c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.ParallelismSem != nil {
		if err := c.ParallelismSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.ParallelismSem.Release(1)
	}
	return c.client.Do(req)
}

// Get fetches url and returns its body. Any non 2xx answer is an ErrFetch.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.Request(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, ErrFetch{URL: url, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	log.Debugf("GET %s returned %d bytes", url, len(body))
	return body, nil
}

func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	// base policy retry + logging
	should, policyErr := retryablehttp.ErrorPropagatedRetryPolicy(ctx, resp, err)
	if policyErr != nil {
		return should, policyErr
	}
	if should {
		if err != nil {
			log.Warnf("retrying request: %s", err)
		} else {
			log.Warnf("retrying request to %s: got status code %d", resp.Request.URL, resp.StatusCode)
		}
		return true, nil
	}

	// custom retry logic
	if resp == nil || err != nil {
		return false, err
	}
	for _, code := range c.ExtraStatusCodesToRetry {
		if code == resp.StatusCode {
			log.Warnf("retrying request to %s: got status code %d", resp.Request.URL, code)
			return true, nil
		}
	}
	return false, nil
}

type debugLogger struct{}

func (debugLogger) Printf(msg string, v ...any) {
	log.Debugf(msg, v...)
}
