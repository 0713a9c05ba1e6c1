package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

type mockEventService struct {
	listFn  func(ctx context.Context, limit int) []domain.Event
	clearFn func(ctx context.Context) error
}

func (m *mockEventService) List(ctx context.Context, limit int) []domain.Event {
	return m.listFn(ctx, limit)
}

func (m *mockEventService) Clear(ctx context.Context) error {
	return m.clearFn(ctx)
}

func setupEventRouter(svc eventService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewEventHandler(svc)
	h.Register(r.Group(""))
	return r
}

func TestListEvents_DefaultLimit(t *testing.T) {
	dist := 120.0
	svc := &mockEventService{
		listFn: func(_ context.Context, limit int) []domain.Event {
			if limit != 10 {
				t.Fatalf("expected default limit 10, got %d", limit)
			}
			return []domain.Event{{
				ID:             "e1",
				Type:           domain.EventExited,
				ZoneName:       "Depot A",
				ZoneCategory:   domain.CategoryDepot,
				Timestamp:      time.Unix(1715003456, 0),
				DistanceMeters: &dist,
			}}
		},
	}

	r := setupEventRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []eventResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 1 || resp[0].Type != "exited" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp[0].DistanceMeters == nil || *resp[0].DistanceMeters != 120 {
		t.Error("expected distance in response")
	}
}

func TestListEvents_ExplicitLimit(t *testing.T) {
	svc := &mockEventService{
		listFn: func(_ context.Context, limit int) []domain.Event {
			if limit != 50 {
				t.Fatalf("expected limit 50, got %d", limit)
			}
			return nil
		},
	}

	r := setupEventRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/events?limit=50", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestListEvents_InvalidLimit(t *testing.T) {
	svc := &mockEventService{
		listFn: func(_ context.Context, _ int) []domain.Event {
			t.Fatal("List should not be called")
			return nil
		},
	}

	r := setupEventRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/events?limit=abc", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestClearEvents(t *testing.T) {
	cleared := false
	svc := &mockEventService{
		clearFn: func(_ context.Context) error {
			cleared = true
			return nil
		},
	}

	r := setupEventRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if !cleared {
		t.Error("expected Clear to be called")
	}
}

func TestClearEvents_Error(t *testing.T) {
	svc := &mockEventService{
		clearFn: func(_ context.Context) error {
			return errors.New("storage down")
		},
	}

	r := setupEventRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
