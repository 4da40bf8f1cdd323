package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/atomicstack/trammel/internal/app"
	"github.com/atomicstack/trammel/internal/config"
	"github.com/atomicstack/trammel/internal/testutil"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestKeysListing(t *testing.T) {
	testutil.Golden(t, "keys.golden", keysListing(ui.DefaultKeyMap()))
}

func TestKeysListingAppliesOverrides(t *testing.T) {
	keys := ui.DefaultKeyMap()
	if err := keys.Apply(map[string]string{"pause": "x"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	listing := keysListing(keys)
	if !strings.Contains(listing, "x              pause/resume") {
		t.Fatalf("expected the override in the listing:\n%s", listing)
	}
}

func TestSplitAddArgs(t *testing.T) {
	paused, rest := splitAddArgs([]string{"--paused", "-c", "seedbox", "a.torrent"})
	if !paused {
		t.Fatalf("expected --paused to be recognized")
	}
	want := []string{"-c", "seedbox", "a.torrent"}
	if len(rest) != len(want) {
		t.Fatalf("expected rest %#v, got %#v", want, rest)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("expected rest %#v, got %#v", want, rest)
		}
	}

	paused, rest = splitAddArgs([]string{"magnet:?xt=urn:btih:abc"})
	if paused {
		t.Fatalf("did not expect paused without the flag")
	}
	if len(rest) != 1 || rest[0] != "magnet:?xt=urn:btih:abc" {
		t.Fatalf("unexpected rest %#v", rest)
	}
}

func TestStartupTracePayloadOmitsCredentials(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Endpoint: transmission.Endpoint{
				Host:     "seedbox",
				Username: "alice",
				Password: "hunter2",
			},
		},
		Flags: map[string]string{"connect": "seedbox:9091"},
		// LoadArgs scrubs argv before it reaches the payload
		Args: []string{"-c", "***@seedbox:9091"},
	}

	payload := startupTracePayload(cfg)

	if payload["endpoint"] != "http://seedbox:9091/transmission/rpc" {
		t.Fatalf("unexpected endpoint %v", payload["endpoint"])
	}
	flags, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flags["connect"] != "seedbox:9091" {
		t.Fatalf("unexpected connect flag %v", flags["connect"])
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Fatalf("startup trace leaked a credential: %s", data)
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
}
