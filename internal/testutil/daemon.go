// Package testutil holds the fake Transmission daemon and the golden-file
// helper the package tests share.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/atomicstack/trammel/internal/transmission"
)

const sessionHeader = "X-Transmission-Session-Id"

// Call is one captured RPC exchange.
type Call struct {
	Method    string
	Arguments json.RawMessage
}

// Daemon fakes a Transmission RPC endpoint over httptest. It enforces the
// session-id handshake the way the real daemon does: any request without the
// current id bounces with a 409 carrying it, so every test exercises the
// client's retry path. Responses are scripted per method; unknown methods
// succeed with empty arguments.
type Daemon struct {
	srv *httptest.Server

	mu        sync.Mutex
	sessionID string
	rotations int
	calls     []Call
	arguments map[string]string
	failures  map[string]string
	status    map[string]int
}

// NewDaemon starts the fake and registers its shutdown with the test. The
// default script answers session-get with a current daemon so handshakes
// pass without further setup.
func NewDaemon(t *testing.T) *Daemon {
	t.Helper()
	d := &Daemon{
		sessionID: "session-1",
		arguments: map[string]string{
			"session-get":   `{"version":"4.0.5","rpc-version":17,"rpc-version-minimum":14,"download-dir":"/downloads"}`,
			"session-stats": `{"activeTorrentCount":0,"torrentCount":0}`,
			"torrent-get":   `{"torrents":[]}`,
			"free-space":    `{"path":"/downloads","size-bytes":1073741824}`,
		},
		failures: map[string]string{},
		status:   map[string]int{},
	}
	d.srv = httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(d.srv.Close)
	return d
}

// Endpoint locates the fake for a transmission.Client.
func (d *Daemon) Endpoint() transmission.Endpoint {
	u, err := url.Parse(d.srv.URL)
	if err != nil {
		panic(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		panic(err)
	}
	return transmission.Endpoint{Host: u.Hostname(), Port: port, Path: "/"}
}

// Stub sets the success arguments returned for a method.
func (d *Daemon) Stub(method, arguments string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.arguments[method] = arguments
}

// StubError makes a method fail with the given result string.
func (d *Daemon) StubError(method, result string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[method] = result
}

// StubStatus makes a method fail at the HTTP layer.
func (d *Daemon) StubStatus(method string, status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status[method] = status
}

// RotateSession invalidates the current session id; the next request per
// client bounces with a 409 exactly like a daemon restart.
func (d *Daemon) RotateSession() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotations++
	d.sessionID = fmt.Sprintf("session-%d", d.rotations+1)
}

// Calls returns the captured exchanges for a method, all of them when
// method is empty. 409 bounces are not exchanges and are not captured.
func (d *Daemon) Calls(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, 0, len(d.calls))
	for _, call := range d.calls {
		if method == "" || call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (d *Daemon) handle(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	current := d.sessionID
	d.mu.Unlock()

	if r.Header.Get(sessionHeader) != current {
		w.Header().Set(sessionHeader, current)
		w.WriteHeader(http.StatusConflict)
		return
	}

	var envelope struct {
		Method    string          `json:"method"`
		Arguments json.RawMessage `json:"arguments"`
		Tag       int64           `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{Method: envelope.Method, Arguments: envelope.Arguments})
	status := d.status[envelope.Method]
	result, failed := d.failures[envelope.Method]
	arguments, scripted := d.arguments[envelope.Method]
	d.mu.Unlock()

	switch {
	case status != 0:
		w.WriteHeader(status)
	case failed:
		fmt.Fprintf(w, `{"result":%q,"arguments":{},"tag":%d}`, result, envelope.Tag)
	case scripted:
		fmt.Fprintf(w, `{"result":"success","arguments":%s,"tag":%d}`, arguments, envelope.Tag)
	default:
		fmt.Fprintf(w, `{"result":"success","arguments":{},"tag":%d}`, envelope.Tag)
	}
}
