package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPostSendsJSONAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images:annotate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("expected key query param")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %s", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(body["hello"]))
	}))
	defer server.Close()

	n := &NetworkController{BaseUrl: server.URL + "/"}
	res, status, err := n.Post(context.Background(), "/v1/images:annotate", nil, map[string]string{"hello": "world"}, &map[string]string{"key": "secret"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if *status != http.StatusOK || string(*res) != "world" {
		t.Errorf("unexpected response %d %s", *status, string(*res))
	}
}

func TestPostFormSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart, got %s", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(r.FormValue("api_key")))
	}))
	defer server.Close()

	n := &NetworkController{BaseUrl: server.URL}
	res, _, err := n.PostForm(context.Background(), "/facepp/v3/detect", map[string]string{"api_key": "k"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(*res) != "k" {
		t.Errorf("expected echoed api key, got %s", string(*res))
	}
}

func TestGetEnforcesLimitAndTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(200 * time.Millisecond)
		}
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	n := &NetworkController{Timeout: 50 * time.Millisecond}
	if _, _, err := n.Get(context.Background(), server.URL+"/big", 5); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("expected ErrResponseTooLarge, got %v", err)
	}
	if _, _, err := n.Get(context.Background(), server.URL+"/slow", 0); err == nil {
		t.Errorf("expected timeout error")
	}
	res, _, err := n.Get(context.Background(), server.URL+"/ok", 10)
	if err != nil || string(*res) != "0123456789" {
		t.Errorf("unexpected result %v %v", res, err)
	}
}
