package app

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/team5526/pitcrew/internal/config"
	"github.com/team5526/pitcrew/internal/logger"
	"github.com/team5526/pitcrew/pkg/tba"
)

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":       {Data: []byte("<html>index</html>")},
		"login.html":       {Data: []byte("<html>login {{.CallbackURL}}</html>")},
		"pit-display.html": {Data: []byte("<html>display {{.TeamID}}</html>")},
	}
}

func createTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = ":memory:"
	a, err := New(logger.New(), cfg, tba.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewInitializesApp(t *testing.T) {
	a := createTestApp(t)

	if a.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if a.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if a.cancelAlerts == nil {
		t.Error("expected cancelAlerts to be set")
	}
}

func TestNewFailsWithBadDBPath(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	_, err := New(logger.New(), cfg, tba.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{})
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNewFailsWithMissingTemplates(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = ":memory:"

	_, err := New(logger.New(), cfg, tba.NewMockClient(), fstest.MapFS{}, fstest.MapFS{})
	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestRouterServesRequests(t *testing.T) {
	a := createTestApp(t)
	server := httptest.NewServer(a.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/login")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /login, got %d", resp.StatusCode)
	}

	// Unauthenticated API requests are rejected
	resp, err = http.Get(server.URL + "/api/checklists/templates")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated API, got %d", resp.StatusCode)
	}
}

type fakeInterface struct {
	flags net.Flags
	addrs []net.Addr
}

func (f fakeInterface) Flags() net.Flags           { return f.flags }
func (f fakeInterface) Addrs() ([]net.Addr, error) { return f.addrs, nil }

type fakeProvider struct {
	ifaces []networkInterface
}

func (f fakeProvider) Interfaces() ([]networkInterface, error) { return f.ifaces, nil }

func ipNet(addr string) net.Addr {
	ip, network, _ := net.ParseCIDR(addr)
	network.IP = ip
	return network
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider fakeProvider
		want     string
	}{
		{
			name: "prefers private over public",
			provider: fakeProvider{ifaces: []networkInterface{
				fakeInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8/24")}},
				fakeInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("192.168.1.20/24")}},
			}},
			want: "192.168.1.20",
		},
		{
			name: "172 private range recognized",
			provider: fakeProvider{ifaces: []networkInterface{
				fakeInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.20.0.5/16")}},
			}},
			want: "172.20.0.5",
		},
		{
			name: "skips down and loopback interfaces",
			provider: fakeProvider{ifaces: []networkInterface{
				fakeInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.1.20/24")}},
				fakeInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("127.0.0.1/8")}},
			}},
			want: "localhost",
		},
		{
			name: "public fallback",
			provider: fakeProvider{ifaces: []networkInterface{
				fakeInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8/24")}},
			}},
			want: "8.8.8.8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("getPreferredIP() = %s, want %s", got, tt.want)
			}
		})
	}
}
