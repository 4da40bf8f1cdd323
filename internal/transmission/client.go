// Package transmission speaks the Transmission daemon's JSON-RPC dialect:
// one POST endpoint, a rotating X-Transmission-Session-Id credential, and a
// {method, arguments, tag} envelope. All calls made through a Client are
// serialized, so the snapshot poller and user-issued mutations never race on
// the transport.
package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/atomicstack/trammel/internal/logging/events"
)

const (
	// DefaultPort and DefaultPath match the daemon's stock configuration.
	DefaultPort = 9091
	DefaultPath = "/transmission/rpc"

	// DefaultTimeout bounds every RPC exchange; exceeding it is Transient.
	DefaultTimeout = 10 * time.Second

	// MinRPCVersion is the oldest protocol this client handshakes with;
	// earlier daemons lack queue positions and the torrent-rename call.
	MinRPCVersion = 14

	sessionHeader = "X-Transmission-Session-Id"
)

// Endpoint locates the daemon's RPC listener.
type Endpoint struct {
	Host     string
	Port     int
	Path     string
	SSL      bool
	Username string
	Password string
}

// URL renders the endpoint as a request URL, without credentials.
func (e Endpoint) URL() string {
	scheme := "http"
	if e.SSL {
		scheme = "https"
	}
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	path := e.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(port)), path)
}

// String is the host:port form used in titles and logs.
func (e Endpoint) String() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Options tune a Client beyond its endpoint.
type Options struct {
	// Timeout bounds each exchange; zero means DefaultTimeout.
	Timeout time.Duration
	// MinInterval spaces consecutive calls to bound daemon load; zero
	// disables spacing.
	MinInterval time.Duration
}

// Client issues RPC exchanges against one daemon. The session credential is
// explicit client state with an acquired/refreshed/discarded lifecycle,
// never a process global.
type Client struct {
	endpoint Endpoint
	http     *http.Client
	limiter  *rate.Limiter

	// gate serializes all calls; capacity one, shared by polling and
	// mutations so at most one request is ever outstanding.
	gate chan struct{}
	tag  int64

	mu         sync.Mutex
	sessionID  string
	rpcVersion int
}

// New builds a Client for the endpoint. No connection is made until the
// first call.
func New(endpoint Endpoint, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  limiter,
		gate:     make(chan struct{}, 1),
	}
}

// Endpoint reports the endpoint the client was built for.
func (c *Client) Endpoint() Endpoint { return c.endpoint }

// SessionID reports the current session credential, empty before the first
// handshake.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// RPCVersion reports the protocol version the daemon advertised during the
// handshake, zero beforehand.
func (c *Client) RPCVersion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rpcVersion
}

func (c *Client) setRPCVersion(v int) {
	c.mu.Lock()
	c.rpcVersion = v
	c.mu.Unlock()
}

type request struct {
	Method    string      `json:"method"`
	Arguments interface{} `json:"arguments,omitempty"`
	Tag       int64       `json:"tag,omitempty"`
}

type response struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
	Tag       int64           `json:"tag"`
}

// call issues one exchange, decoding the response arguments into out when
// out is non-nil.
func (c *Client) call(ctx context.Context, method string, args interface{}, out interface{}) error {
	select {
	case c.gate <- struct{}{}:
	case <-ctx.Done():
		return &TransientError{Op: method, Err: ctx.Err()}
	}
	defer func() { <-c.gate }()

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransientError{Op: method, Err: err}
	}
	c.tag++
	payload, err := json.Marshal(request{Method: method, Arguments: args, Tag: c.tag})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	events.RPC.Request(method)
	start := time.Now()
	body, err := c.post(ctx, method, payload, false)
	if err != nil {
		events.RPC.Fault(method, faultClass(err), err)
		return err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		perr := &ProtocolError{Method: method, Reason: fmt.Sprintf("malformed response: %v", err)}
		events.RPC.Fault(method, faultClass(perr), perr)
		return perr
	}
	if resp.Result != "success" {
		perr := &ProtocolError{Method: method, Reason: resp.Result}
		events.RPC.Fault(method, faultClass(perr), perr)
		return perr
	}
	events.RPC.Response(method, time.Since(start))

	if out != nil && len(resp.Arguments) > 0 {
		if err := json.Unmarshal(resp.Arguments, out); err != nil {
			return &ProtocolError{Method: method, Reason: fmt.Sprintf("decode arguments: %v", err)}
		}
	}
	return nil
}

// post performs the HTTP exchange. A 409 carries a fresh session id and is
// retried exactly once; the first handshake takes this path too, so a lone
// 409 is never surfaced. A second consecutive 409 is an AuthError.
func (c *Client) post(ctx context.Context, method string, payload []byte, retried bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := c.SessionID(); id != "" {
		req.Header.Set(sessionHeader, id)
	}
	if c.endpoint.Username != "" || c.endpoint.Password != "" {
		req.SetBasicAuth(c.endpoint.Username, c.endpoint.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Op: method, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: method, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusConflict:
		fresh := resp.Header.Get(sessionHeader)
		if retried || fresh == "" {
			return nil, &AuthError{Status: resp.StatusCode}
		}
		c.setSessionID(fresh)
		events.RPC.SessionRotated()
		return c.post(ctx, method, payload, true)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode}
	default:
		return nil, &ProtocolError{Method: method, Reason: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)}
	}
}

func faultClass(err error) string {
	switch {
	case IsAuth(err):
		return "auth"
	case IsTransient(err):
		return "transient"
	case IsValidation(err):
		return "validation"
	default:
		return "protocol"
	}
}
