package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/codegangsta/chartbot/internal/types"
)

// NamedPublisher is a publisher labelled for error messages
type NamedPublisher struct {
	Name      string
	Publisher types.Publisher
}

// Broadcast publishes to every platform. It fails only when every platform failed.
type Broadcast []NamedPublisher

// Publish sends text to each publisher in order
func (b Broadcast) Publish(ctx context.Context, text string) error {
	if len(b) == 0 {
		return errors.New("no publishers configured")
	}
	var errs []error
	for _, p := range b {
		if err := p.Publisher.Publish(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("publishing to %s: %w", p.Name, err))
		}
	}
	if len(errs) == len(b) {
		return errors.Join(errs...)
	}
	return nil
}
