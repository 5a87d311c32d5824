package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout applies when the content sets no timeout or an invalid one.
const DefaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the content of an emit trigger.
type Input struct {
	URL       string      `json:"url"`
	Namespace string      `json:"namespace"`
	Event     string      `json:"event"`
	Data      value.Value `json:"data"`
	// WaitFor names a reply event. When empty, emit resolves once the event
	// has been sent.
	WaitFor            string `json:"waitFor"`
	Timeout            string `json:"timeout"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify"`
	// ComponentID routes the reply into the DataStore.
	ComponentID string `json:"componentId"`
}

func parseInput(content value.Value) (*Input, error) {
	in := &Input{}
	if err := content.Decode(in); err != nil {
		return nil, fmt.Errorf("invalid emit content: %w", err)
	}
	if in.URL == "" || in.Event == "" {
		return nil, fmt.Errorf("emit content needs a url and an event")
	}
	if in.Namespace == "" {
		in.Namespace = "/"
	}
	return in, nil
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value value.Value
	err   error
}

// Emit is the 'emit' action. It connects, emits one event and, if WaitFor
// is set, returns the first payload of the reply event.
func Emit(ctx context.Context, content value.Value, _ *trigger.Context) (value.Value, error) {
	in, err := parseInput(content)
	if err != nil {
		return value.Null(), err
	}

	logger := ctxlog.FromContext(ctx).With("action", "emit", "url", in.URL, "event", in.Event, "waitFor", in.WaitFor)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout := DefaultTimeout
	if in.Timeout != "" {
		if timeout, err = time.ParseDuration(in.Timeout); err != nil {
			logger.Warn("Failed to parse timeout, using default", "inputTimeout", in.Timeout, "default", DefaultTimeout, "error", err)
			timeout = DefaultTimeout
		}
	}

	done := make(chan opResult, 1)
	send := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return value.Null(), fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(in.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	payload := in.Data.Interface()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		jsonData, _ := json.Marshal(payload)
		logger.Info("Connected, emitting event", "namespace", in.Namespace, "sid", io.Id(), "data", string(jsonData))
		io.Emit(in.Event, payload)
		if in.WaitFor == "" {
			send(opResult{value: value.Object(map[string]value.Value{"emitted": value.String(in.Event)})})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		send(opResult{err: err})
	})

	if in.WaitFor != "" {
		io.On(types.EventName(in.WaitFor), func(data ...any) {
			reply := value.Null()
			if len(data) > 0 {
				v, err := value.FromGo(data[0])
				if err != nil {
					send(opResult{err: fmt.Errorf("failed to convert reply: %w", err)})
					return
				}
				reply = v
			}
			send(opResult{value: reply})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return value.Null(), fmt.Errorf("timed out after connecting while waiting for event '%s'", in.WaitFor)
		}
		return value.Null(), fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil || in.ComponentID == "" || in.WaitFor == "" {
			return res.value, res.err
		}
		return value.Object(map[string]value.Value{
			"componentId": value.String(in.ComponentID),
			"data":        res.value,
		}), nil
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("emit", Emit)
}
