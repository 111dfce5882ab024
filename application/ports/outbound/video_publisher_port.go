package outbound

import "context"

type PublishVideoRequest struct {
	VideoFileName string
	RunID         string
}

type PublishVideoResponse struct {
	VideoKey    string
	StoreRegion string
}

// VideoPublisherPort moves the assembled video into persistent storage.
type VideoPublisherPort interface {
	Publish(ctx context.Context, req PublishVideoRequest) (*PublishVideoResponse, error)
}
