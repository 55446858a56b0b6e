// Package eventstream publishes launch lifecycle events to a socket.io
// endpoint, so a dashboard can follow long training runs as they happen.
package eventstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the eventstream launcher.
type Input struct {
	URL                string            `tctl:"url"`
	Namespace          string            `tctl:"namespace"`
	Event              string            `tctl:"event"`
	Data               map[string]string `tctl:"data"`
	AckEvent           string            `tctl:"ack_event"`
	Timeout            string            `tctl:"timeout"`
	InsecureSkipVerify bool              `tctl:"insecure_skip_verify"`
}

// Output defines the data returned by the launcher.
type Output struct {
	Acknowledged bool `cty:"acknowledged"`
}

// Deps is empty because this launcher does not use any resources.
type Deps struct{}

// opResult passes results through the done channel from socket callbacks.
type opResult struct {
	value *Output
	err   error
}

// reportFirst delivers res if the channel has room and drops it otherwise.
// socket.io managers retry, so callbacks such as connect_error can fire more
// than once; only the first result matters and later sends must not block.
func reportFirst(done chan opResult, res opResult) {
	select {
	case done <- res:
	default:
	}
}

// OnRunEventStream is the handler for the 'eventstream' launcher's on_run event.
func OnRunEventStream(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("launcher", "eventstream", "url", input.URL, "event", input.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", input.Namespace, "sid", io.Id())
		jsonData, _ := json.Marshal(input.Data)
		logger.Info("Emitting event", "event", input.Event, "data", string(jsonData))
		io.Emit(input.Event, input.Data)
		if input.AckEvent == "" {
			reportFirst(done, opResult{value: &Output{Acknowledged: false}})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		reportFirst(done, opResult{err: errs[0].(error)})
	})

	if input.AckEvent != "" {
		io.On(types.EventName(input.AckEvent), func(...any) {
			reportFirst(done, opResult{value: &Output{Acknowledged: true}})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		var errMsg string
		if isConnected.Load() {
			errMsg = fmt.Sprintf("timed out after connecting while waiting for event '%s'", input.AckEvent)
		} else {
			errMsg = "timed out while waiting for initial connection"
		}
		return nil, fmt.Errorf("%s", errMsg)
	case res := <-done:
		return res.value, res.err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLauncher("OnRunEventStream", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunEventStream,
	})
}
