package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/millennialbroker/broker-backend/internal/clients"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type stubClientService struct {
	dto       *clients.ClientDTO
	list      *clients.ClientList
	err       error
	gotInput  clients.CreateClientInput
	gotSearch string
	deletedID uuid.UUID
}

func (s *stubClientService) Create(_ context.Context, input clients.CreateClientInput) (*clients.ClientDTO, error) {
	s.gotInput = input
	return s.dto, s.err
}

func (s *stubClientService) Get(_ context.Context, _ uuid.UUID) (*clients.ClientDTO, error) {
	return s.dto, s.err
}

func (s *stubClientService) List(_ context.Context, _ pagination.Params, search string) (*clients.ClientList, error) {
	s.gotSearch = search
	return s.list, s.err
}

func (s *stubClientService) Update(_ context.Context, _ uuid.UUID, _ clients.UpdateClientInput) (*clients.ClientDTO, error) {
	return s.dto, s.err
}

func (s *stubClientService) Delete(_ context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func requestWithURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestClientCreateSuccess(t *testing.T) {
	clientID := uuid.New()
	svc := &stubClientService{dto: &clients.ClientDTO{
		ID:             clientID,
		Identification: "1712345678",
		FirstName:      "Ana",
		LastName:       "Reyes",
		CreatedAt:      time.Now(),
	}}
	handler := ClientCreate(svc, nil)

	body := bytes.NewBufferString(`{"identification":"1712345678","first_name":"Ana","last_name":"Reyes"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotInput.Identification != "1712345678" {
		t.Fatalf("unexpected input: %+v", svc.gotInput)
	}

	var envelope struct {
		Data clients.ClientDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != clientID {
		t.Fatalf("expected id %s got %s", clientID, envelope.Data.ID)
	}
}

func TestClientCreateRejectsMissingFields(t *testing.T) {
	handler := ClientCreate(&stubClientService{}, nil)

	body := bytes.NewBufferString(`{"first_name":"Ana"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestClientGetInvalidID(t *testing.T) {
	handler := ClientGet(&stubClientService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/not-a-uuid", nil)
	req = requestWithURLParam(req, "clientId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestClientDeleteBlockedMapsToConflict(t *testing.T) {
	svc := &stubClientService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "client has policies and cannot be deleted")}
	handler := ClientDelete(svc, nil)

	clientID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+clientID.String(), nil)
	req = requestWithURLParam(req, "clientId", clientID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if svc.deletedID != clientID {
		t.Fatalf("expected delete call with %s got %s", clientID, svc.deletedID)
	}
}

func TestClientListPassesSearch(t *testing.T) {
	svc := &stubClientService{list: &clients.ClientList{Items: []clients.ClientDTO{}}}
	handler := ClientList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?search=reyes&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotSearch != "reyes" {
		t.Fatalf("expected search reyes got %q", svc.gotSearch)
	}
}
