package domain

import "context"

// Update is a message from a producer to the aggregator. The set of
// implementations is closed; producers never mutate view state directly.
type Update interface {
	isUpdate()
}

// MetricsUpdate carries one scrape of the metrics endpoint.
type MetricsUpdate struct {
	Snapshot MetricSnapshot
}

// BlockUpdate carries one block notification.
type BlockUpdate struct {
	Event BlockEvent
}

// SystemUpdate carries one host resource sample.
type SystemUpdate struct {
	Stats SystemStats
}

// ConnectionUpdate reports a lifecycle transition of a feed.
type ConnectionUpdate struct {
	Source Source
	State  ConnectionState
}

// NodeInfoUpdate carries client version and gas price. Empty or zero
// fields leave the previous value in place.
type NodeInfoUpdate struct {
	Info NodeInfo
}

func (MetricsUpdate) isUpdate()    {}
func (BlockUpdate) isUpdate()      {}
func (SystemUpdate) isUpdate()     {}
func (ConnectionUpdate) isUpdate() {}
func (NodeInfoUpdate) isUpdate()   {}

// Send delivers u on out unless ctx is done first. Producers use it for
// every send so none of them blocks past cancellation.
func Send(ctx context.Context, out chan<- Update, u Update) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- u:
		return nil
	}
}
