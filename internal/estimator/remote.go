package estimator

import (
	"context"

	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/pkg/grassapi"
)

// Remote posts the multipart payload to the analysis service.
type Remote struct {
	client grassapi.Client
}

// NewRemote wraps a grassapi client.
func NewRemote(client grassapi.Client) *Remote {
	return &Remote{client: client}
}

// Submit implements Submitter.
func (r *Remote) Submit(ctx context.Context, p *request.Payload) (string, error) {
	resp, err := r.client.Upload(ctx, p.ContentType, p.Body)
	if err != nil {
		return "", failed(err, "upload")
	}
	return resp.Result, nil
}
