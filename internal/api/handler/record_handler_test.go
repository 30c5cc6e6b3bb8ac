package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
)

type stubRecordService struct {
	listFn   func(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error)
	createFn func(ctx context.Context, input ports.RecordInput, actingEmail string) (*domain.Record, error)
	updateFn func(ctx context.Context, id string, input ports.RecordInput, actingEmail string) (*domain.Record, error)
	deleteFn func(ctx context.Context, id string, actingEmail string) error
}

func (s *stubRecordService) List(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
	return s.listFn(ctx, input)
}

func (s *stubRecordService) Create(ctx context.Context, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
	return s.createFn(ctx, input, actingEmail)
}

func (s *stubRecordService) Update(ctx context.Context, id string, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
	return s.updateFn(ctx, id, input, actingEmail)
}

func (s *stubRecordService) Delete(ctx context.Context, id string, actingEmail string) error {
	return s.deleteFn(ctx, id, actingEmail)
}

type stubExporter struct {
	filename string
	content  []byte
	rendered []ports.RecordView
}

func (s *stubExporter) Render(_ context.Context, items []ports.RecordView) (string, []byte, error) {
	s.rendered = items
	return s.filename, s.content, nil
}

func newRecordContext(t *testing.T, method, target, body, email, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if email != "" {
		c.Set("email", email)
	}
	if role != "" {
		c.Set("role", role)
	}
	return c, rec
}

func TestRecordHandler_List_BindsFiltersAndIdentity(t *testing.T) {
	var captured ports.ListRecordsInput
	stub := &stubRecordService{
		listFn: func(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
			captured = input
			return &ports.ListRecordsResult{
				Items: []ports.RecordView{{ID: "id-1", NationalID: "A1"}},
				Total: 1,
			}, nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	target := "/v1/records?specialty=nursing&commune=Center&date_from=2025-03-01&date_to=2025-03-31&page=2&per_page=10"
	c, rec := newRecordContext(t, http.MethodGet, target, "", "user@example.com", domain.RoleUser)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if captured.RequesterEmail != "user@example.com" || captured.RequesterRole != domain.RoleUser {
		t.Fatalf("identity not forwarded: %+v", captured)
	}
	if captured.Specialty != "nursing" || captured.Commune != "Center" {
		t.Fatalf("filters not forwarded: %+v", captured)
	}
	if captured.DateFrom.IsZero() || captured.DateTo.IsZero() {
		t.Fatalf("date bounds not parsed: %+v", captured)
	}
	if captured.Page != 2 || captured.PerPage != 10 {
		t.Fatalf("pagination not forwarded: %+v", captured)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(1) {
		t.Fatalf("unexpected total: %v", resp["total"])
	}
}

func TestRecordHandler_List_MissingClaims(t *testing.T) {
	stub := &stubRecordService{
		listFn: func(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	c, _ := newRecordContext(t, http.MethodGet, "/v1/records", "", "", "")
	err := handler.List(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRecordHandler_List_BadDateParam(t *testing.T) {
	handler := NewRecordHandler(&stubRecordService{}, &stubExporter{})

	c, _ := newRecordContext(t, http.MethodGet, "/v1/records?date_from=March", "", "user@example.com", domain.RoleUser)
	err := handler.List(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRecordHandler_List_BadPageParam(t *testing.T) {
	handler := NewRecordHandler(&stubRecordService{}, &stubExporter{})

	for _, target := range []string{"/v1/records?page=0", "/v1/records?page=abc", "/v1/records?per_page=-1"} {
		c, _ := newRecordContext(t, http.MethodGet, target, "", "user@example.com", domain.RoleUser)
		err := handler.List(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", target, err)
		}
	}
}

func TestRecordHandler_List_EmptyResultIsAnArray(t *testing.T) {
	stub := &stubRecordService{
		listFn: func(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
			return &ports.ListRecordsResult{}, nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	c, rec := newRecordContext(t, http.MethodGet, "/v1/records", "", "user@example.com", domain.RoleUser)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("items should serialize as an empty array: %s", rec.Body.String())
	}
}

func TestRecordHandler_Create_Success(t *testing.T) {
	stub := &stubRecordService{
		createFn: func(ctx context.Context, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
			if actingEmail != "admin@example.com" {
				t.Fatalf("unexpected actor: %s", actingEmail)
			}
			if input.NationalID != "A1" || input.HoursCount != 4 {
				t.Fatalf("payload not forwarded: %+v", input)
			}
			return &domain.Record{ID: "id-1", Row: 1, NationalID: input.NationalID, OwnerEmail: actingEmail}, nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	body := `{"specialty":"nursing","group":"G1","full_name":"Someone","national_id":"A1","training_date":"2025-04-01","hours_count":4,"commune":"North","institution":"Clinic","supervisor_name":"Dr. L","supervisor_id":"S2"}`
	c, rec := newRecordContext(t, http.MethodPost, "/v1/records", body, "admin@example.com", domain.RoleAdmin)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRecordHandler_Create_ServiceErrorsPassThrough(t *testing.T) {
	for _, serviceErr := range []error{
		domain.ErrForbidden,
		domain.ErrDuplicateNationalID,
		domain.NewValidationError("hours_count", "hours count", "must be at least 1"),
	} {
		stub := &stubRecordService{
			createFn: func(ctx context.Context, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
				return nil, serviceErr
			},
		}
		handler := NewRecordHandler(stub, &stubExporter{})

		c, _ := newRecordContext(t, http.MethodPost, "/v1/records", `{"national_id":"A1"}`, "user@example.com", domain.RoleUser)
		if err := handler.Create(c); !errors.Is(err, serviceErr) {
			t.Fatalf("expected %v passed through, got %v", serviceErr, err)
		}
	}
}

func TestRecordHandler_Update_ForwardsPathID(t *testing.T) {
	stub := &stubRecordService{
		updateFn: func(ctx context.Context, id string, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
			if id != "id-42" {
				t.Fatalf("unexpected id: %s", id)
			}
			return &domain.Record{ID: id, OwnerEmail: actingEmail}, nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	c, rec := newRecordContext(t, http.MethodPut, "/v1/records/id-42", `{"national_id":"A1"}`, "admin@example.com", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("id-42")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecordHandler_Delete_NoContent(t *testing.T) {
	var deleted string
	stub := &stubRecordService{
		deleteFn: func(ctx context.Context, id string, actingEmail string) error {
			deleted = id
			return nil
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	c, rec := newRecordContext(t, http.MethodDelete, "/v1/records/id-7", "", "admin@example.com", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("id-7")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != "id-7" {
		t.Fatalf("unexpected id: %s", deleted)
	}
}

func TestRecordHandler_Delete_NotFoundPassesThrough(t *testing.T) {
	stub := &stubRecordService{
		deleteFn: func(ctx context.Context, id string, actingEmail string) error {
			return domain.ErrRecordNotFound
		},
	}
	handler := NewRecordHandler(stub, &stubExporter{})

	c, _ := newRecordContext(t, http.MethodDelete, "/v1/records/id-9", "", "admin@example.com", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("id-9")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordHandler_Export_CoversFullFilteredSet(t *testing.T) {
	var captured ports.ListRecordsInput
	stub := &stubRecordService{
		listFn: func(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
			captured = input
			return &ports.ListRecordsResult{
				Items: []ports.RecordView{{ID: "id-1"}, {ID: "id-2"}},
				Total: 2,
			}, nil
		},
	}
	exporter := &stubExporter{filename: "records-x.csv", content: []byte("csv-bytes")}
	handler := NewRecordHandler(stub, exporter)

	// pagination params are ignored: the artifact covers everything visible
	c, rec := newRecordContext(t, http.MethodGet, "/v1/records/export?page=3&per_page=5", "", "user@example.com", domain.RoleUser)
	if err := handler.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if captured.Page != 0 || captured.PerPage != 0 {
		t.Fatalf("export should disable pagination: %+v", captured)
	}
	if len(exporter.rendered) != 2 {
		t.Fatalf("renderer did not receive the full set: %d", len(exporter.rendered))
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, `records-x.csv`) {
		t.Fatalf("missing attachment filename: %q", got)
	}
	if rec.Body.String() != "csv-bytes" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
