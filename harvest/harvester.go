package harvest

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	myhttp "github.com/bcap/teachbook-harvester/http"
	"github.com/bcap/teachbook-harvester/storage"
	"github.com/bcap/teachbook-harvester/storage/memory"
)

// DefaultMaxSectionDepth is how many levels of sections are kept below a
// chapter: section, subsection and subsubsection.
const DefaultMaxSectionDepth = 3

var extraStatusCodesToRetry = []int{
	429, // raw content hosts rate limit anonymous clients
}

type Harvester struct {
	Client  *myhttp.Client
	Storage storage.Storage

	maxSectionDepth int
	maxParallelism  int

	harvested *int32
	failed    *int32
}

func NewHarvester(options ...HarvesterOption) *Harvester {
	var harvested int32
	var failed int32
	var inMemoryStorage = &memory.Storage{}
	inMemoryStorage.Initialize(context.Background())
	harvester := &Harvester{
		Client:          myhttp.NewClient(semaphore.NewWeighted(1), extraStatusCodesToRetry),
		Storage:         inMemoryStorage,
		maxSectionDepth: DefaultMaxSectionDepth,
		maxParallelism:  1,
		harvested:       &harvested,
		failed:          &failed,
	}
	for _, option := range options {
		option(harvester)
	}
	return harvester
}

type HarvesterOption = func(*Harvester)

// WithMaxSectionDepth sets how many levels of sections below a chapter are
// kept. Deeper sections are dropped.
func WithMaxSectionDepth(maxSectionDepth int) HarvesterOption {
	return func(h *Harvester) {
		h.maxSectionDepth = maxSectionDepth
	}
}

func WithMaxParallelism(maxParallelism int) HarvesterOption {
	return func(h *Harvester) {
		if maxParallelism < 1 {
			maxParallelism = 1
		}
		h.maxParallelism = maxParallelism
		h.Client.ParallelismSem = semaphore.NewWeighted(int64(maxParallelism))
	}
}

func WithStorage(s storage.Storage) HarvesterOption {
	return func(h *Harvester) {
		h.Storage = s
	}
}

func WithRequestMaxRetries(maxRetries int) HarvesterOption {
	return func(h *Harvester) {
		h.Client.RetryMax(maxRetries)
	}
}

func WithRequestMaxRetryWait(maxWait time.Duration) HarvesterOption {
	return func(h *Harvester) {
		h.Client.RetryWaitMax(maxWait)
	}
}

func WithRequestMinRetryWait(minWait time.Duration) HarvesterOption {
	return func(h *Harvester) {
		h.Client.RetryWaitMin(minWait)
	}
}

func WithRequestTimeout(timeout time.Duration) HarvesterOption {
	return func(h *Harvester) {
		h.Client.Timeout(timeout)
	}
}

func WithUserAgent(userAgent string) HarvesterOption {
	return func(h *Harvester) {
		h.Client.UserAgent = userAgent
	}
}

// WithHTTPClient replaces the client requests are sent with.
func WithHTTPClient(client *http.Client) HarvesterOption {
	return func(h *Harvester) {
		h.Client.HTTPClient(client)
	}
}
