package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		ip     string
		public bool
	}{
		{ip: "149.154.167.220", public: true},
		{ip: "2001:67c:4e8:f004::9", public: true},
		{ip: "127.0.0.1"},
		{ip: "::1"},
		{ip: "10.1.2.3"},
		{ip: "172.16.0.1"},
		{ip: "192.168.1.10"},
		{ip: "169.254.169.254"},
		{ip: "100.64.0.1"},
		{ip: "0.0.0.0"},
		{ip: "fe80::1"},
		{ip: "fd00::1"},
		{ip: "224.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPublicIP(net.ParseIP(tt.ip)); got != tt.public {
				t.Errorf("IsPublicIP(%s) = %v, want %v", tt.ip, got, tt.public)
			}
		})
	}
	if IsPublicIP(nil) {
		t.Errorf("nil ip must not be public")
	}
}

func TestPublicClientRefusesLoopback(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("instance metadata"))
	}))
	defer server.Close()

	n := &NetworkController{Client: NewPublicClient()}
	_, _, err := n.Get(context.Background(), server.URL+"/latest/meta-data", 1024)
	if !errors.Is(err, ErrForbiddenAddress) {
		t.Fatalf("expected ErrForbiddenAddress, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("the loopback server must never be reached")
	}
}
