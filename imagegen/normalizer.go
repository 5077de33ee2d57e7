package imagegen

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ReplicateImage converts a successful invocation into the delivered
// candidate list: the image bytes become one data URL, replicated until the
// requested count is met. The hosted backends return a single image per
// invocation, so replication is how a one-image response satisfies a
// four-candidate request.
func ReplicateImage(result *InvokeResult, count int) []string {
	if count <= 0 {
		return []string{}
	}
	url := ToDataURL(result.ContentType, result.Data)
	images := make([]string, count)
	for i := range images {
		images[i] = url
	}
	return images
}

// FanOutImages produces count distinct candidates by running count backend
// invocations concurrently and awaiting all of them. All-or-nothing: a
// single failed invocation fails the whole fan-out, which the cascade then
// treats as one failed attempt against that model.
func FanOutImages(ctx context.Context, count int, invoke func(ctx context.Context) (*InvokeResult, error)) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	images := make([]string, count)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			result, err := invoke(ctx)
			if err != nil {
				return err
			}
			images[i] = ToDataURL(result.ContentType, result.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
