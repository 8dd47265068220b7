// internal/common/camunda/client.go
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client owns the gRPC connection to the Zeebe gateway.
type Client struct {
	zeebe          zbc.Client
	address        string
	requestTimeout time.Duration
}

// Backoff doubles the delay from Base up to Max between attempts.
type Backoff struct {
	Retries int
	Base    time.Duration
	Max     time.Duration
}

// DefaultBackoff is used for gateway commands sent on behalf of a job.
var DefaultBackoff = Backoff{
	Retries: 3,
	Base:    500 * time.Millisecond,
	Max:     5 * time.Second,
}

// CommandTimeout bounds the commands that report a job's outcome.
const CommandTimeout = 15 * time.Second

// CommandContext keeps the values of parent but not its deadline, so a job
// whose work used up its own timeout can still be completed or failed.
func CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), CommandTimeout)
}

func (b Backoff) delay(attempt int) time.Duration {
	if attempt > 30 {
		return b.Max
	}
	d := b.Base << attempt
	if d <= 0 || (b.Max > 0 && d > b.Max) {
		return b.Max
	}
	return d
}

// Connect dials the gateway and waits until it answers a topology request.
func Connect(ctx context.Context, cfg config.CamundaConfig, b Backoff) (*Client, error) {
	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: !cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}

	c := &Client{
		zeebe:          zb,
		address:        cfg.BrokerAddress,
		requestTimeout: config.GetDuration(cfg.RequestTimeout),
	}
	if err := Retry(ctx, b, "topology", func(ctx context.Context) error {
		_, err := c.Brokers(ctx)
		return err
	}); err != nil {
		_ = zb.Close()
		return nil, fmt.Errorf("zeebe gateway %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

// Zeebe returns the raw client used to open job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.zeebe
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}

// Brokers reports how many brokers the gateway currently sees.
func (c *Client) Brokers(ctx context.Context) (int, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	topo, err := c.zeebe.NewTopologyCommand().Send(ctx)
	if err != nil {
		return 0, fmt.Errorf("topology: %w", err)
	}
	return len(topo.GetBrokers()), nil
}

// Retry runs fn until it succeeds, returns a non-transient error or the
// retries run out. Failures come back as ENGINE_UNAVAILABLE or
// ENGINE_REJECTED standard errors.
func Retry(ctx context.Context, b Backoff, operation string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !isTransient(err) {
			return errors.NewEngineRejectedError(operation, err)
		}
		if attempt >= b.Retries {
			break
		}

		select {
		case <-time.After(b.delay(attempt)):
		case <-ctx.Done():
			return errors.NewEngineUnavailableError(operation, fmt.Errorf("cancelled after %d attempts: %w", attempt+1, ctx.Err()))
		}
	}
	return errors.NewEngineUnavailableError(operation, fmt.Errorf("after %d attempts: %w", b.Retries+1, err))
}

var transientCodes = map[codes.Code]bool{
	codes.Unavailable:       true,
	codes.DeadlineExceeded:  true,
	codes.ResourceExhausted: true,
	codes.Aborted:           true,
}

// isTransient classifies by gRPC status first and falls back to the
// message for errors that lost their status on the way up.
func isTransient(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return transientCodes[s.Code()]
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{"connection refused", "connection reset", "deadline exceeded", "unavailable", "broken pipe"} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
