package api

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/session"
)

func TestHandleSessionsListsRegisteredSessions(t *testing.T) {
	registry := session.NewRegistry(10)
	hub := broadcast.NewHub(registry)
	s, err := registry.Allocate(&net.TCPAddr{}, 4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	s.SetNickname("alice")
	s.SetIconID(3)

	srv := NewServer(config.DefaultConfig(), registry, hub)
	router := srv.buildRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions", nil)
	router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Count    int `json:"count"`
		Sessions []struct {
			Nickname string `json:"nickname"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 1 || body.Sessions[0].Nickname != "alice" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleHealthzReportsOk(t *testing.T) {
	registry := session.NewRegistry(10)
	hub := broadcast.NewHub(registry)
	srv := NewServer(config.DefaultConfig(), registry, hub)
	router := srv.buildRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
