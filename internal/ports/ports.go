package ports

import (
	"context"
	"time"

	"FeedDigest/internal/domain"
)

// Fetcher retrieves raw content for a URL. Implementations own timeouts;
// any non-success surfaces as *domain.FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, source, url string) ([]byte, error)
}

// Dispatcher sends one composed digest through a messaging channel. The
// destination is fixed at construction time; failures surface as
// *domain.DispatchError and are never retried within a run.
type Dispatcher interface {
	Send(ctx context.Context, text string) error
}

// Scheduler triggers registered jobs at configured times.
type Scheduler interface {
	AddJob(spec string, job func(time.Time)) error
	Start()
	Stop(ctx context.Context) error
}

// DeliveryLog records dispatch attempts for audit.
type DeliveryLog interface {
	Record(ctx context.Context, rec domain.DeliveryRecord) error
}
