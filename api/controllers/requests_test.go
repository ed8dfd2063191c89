package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/internal/facade"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

type stubRequestsFacade struct {
	getAllFn     func(ctx context.Context, query facade.RequestQuery) ([]requests.RequestDTO, error)
	getByIDFn    func(ctx context.Context, rawID any) (*requests.RequestDTO, error)
	createFn     func(ctx context.Context, input facade.CreateRequestInput, actor requests.Actor) (*requests.RequestDTO, error)
	updateFn     func(ctx context.Context, input facade.UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error)
	deleteFn     func(ctx context.Context, rawID any, actor requests.Actor) error
	addCommentFn func(ctx context.Context, input facade.CommentInput, actor requests.Actor) (*requests.CommentDTO, error)
}

func (s *stubRequestsFacade) GetAll(ctx context.Context, query facade.RequestQuery) ([]requests.RequestDTO, error) {
	if s.getAllFn != nil {
		return s.getAllFn(ctx, query)
	}
	return []requests.RequestDTO{}, nil
}

func (s *stubRequestsFacade) GetByID(ctx context.Context, rawID any) (*requests.RequestDTO, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, rawID)
	}
	return &requests.RequestDTO{}, nil
}

func (s *stubRequestsFacade) Create(ctx context.Context, input facade.CreateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input, actor)
	}
	return &requests.RequestDTO{}, nil
}

func (s *stubRequestsFacade) Update(ctx context.Context, input facade.UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, input, actor)
	}
	return &requests.RequestDTO{}, nil
}

func (s *stubRequestsFacade) Delete(ctx context.Context, rawID any, actor requests.Actor) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, rawID, actor)
	}
	return nil
}

func (s *stubRequestsFacade) AddComment(ctx context.Context, input facade.CommentInput, actor requests.Actor) (*requests.CommentDTO, error) {
	if s.addCommentFn != nil {
		return s.addCommentFn(ctx, input, actor)
	}
	return &requests.CommentDTO{}, nil
}

func TestRequestsActionRequiresActor(t *testing.T) {
	req := newJSONRequest(http.MethodPost, "/api/v1/requests", `{"action":"getAll"}`)
	resp := httptest.NewRecorder()
	RequestsAction(&stubRequestsFacade{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequestsActionGetAllPassesFilters(t *testing.T) {
	var captured facade.RequestQuery
	svc := &stubRequestsFacade{
		getAllFn: func(ctx context.Context, query facade.RequestQuery) ([]requests.RequestDTO, error) {
			captured = query
			return []requests.RequestDTO{{Title: "Printer paper"}}, nil
		},
	}

	req := newJSONRequest(http.MethodPost, "/api/v1/requests", `{"action":"getAll","userId":1,"status":"pending"}`)
	req = withActor(req, uuid.New(), enums.UserRoleManager)
	resp := httptest.NewRecorder()
	RequestsAction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.UserID != json.Number("1") {
		t.Fatalf("expected legacy user id passed as number, got %#v", captured.UserID)
	}
	if captured.Status != "pending" {
		t.Fatalf("unexpected status filter %q", captured.Status)
	}
	var out []requests.RequestDTO
	decodeData(t, resp, &out)
	if len(out) != 1 || out[0].Title != "Printer paper" {
		t.Fatalf("unexpected payload %+v", out)
	}
}

func TestRequestsActionCreateReturnsCreated(t *testing.T) {
	actorID := uuid.New()
	svc := &stubRequestsFacade{
		createFn: func(ctx context.Context, input facade.CreateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
			if actor.UserID != actorID || actor.Role != enums.UserRoleUser {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if input.Title != "Toner" || input.CategoryID != json.Number("3") {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.Quantity == nil || *input.Quantity != 2 {
				t.Fatalf("expected quantity 2, got %v", input.Quantity)
			}
			return &requests.RequestDTO{ID: uuid.New(), Title: input.Title, Status: enums.RequestStatusPending}, nil
		},
	}

	body := `{"action":"create","request":{"title":"Toner","categoryId":3,"quantity":2,"categoryName":"ignored"}}`
	req := withActor(newJSONRequest(http.MethodPost, "/api/v1/requests", body), actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	RequestsAction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestRequestsActionUpdateMapsTransitionError(t *testing.T) {
	svc := &stubRequestsFacade{
		updateFn: func(ctx context.Context, input facade.UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
			if input.ID != "7f1c9f0e-8a55-4b0e-9d4c-1f7c1b0c2d3e" {
				t.Fatalf("unexpected id %#v", input.ID)
			}
			if input.Status == nil || *input.Status != "fulfilled" {
				t.Fatalf("unexpected status %v", input.Status)
			}
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot move request from pending to fulfilled").
				WithDetails(map[string]any{"from": "pending", "to": "fulfilled"})
		},
	}

	body := `{"action":"update","request":{"id":"7f1c9f0e-8a55-4b0e-9d4c-1f7c1b0c2d3e","status":"fulfilled"}}`
	req := withActor(newJSONRequest(http.MethodPost, "/api/v1/requests", body), uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	RequestsAction(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	envelope := decodeError(t, resp)
	if envelope.Error.Code != string(pkgerrors.CodeInvalidTransition) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Details == nil {
		t.Fatal("expected transition details")
	}
}

func TestRequestsActionAddCommentAndDelete(t *testing.T) {
	requestID := uuid.New()
	deleted := false
	svc := &stubRequestsFacade{
		addCommentFn: func(ctx context.Context, input facade.CommentInput, actor requests.Actor) (*requests.CommentDTO, error) {
			if input.RequestID != requestID.String() || input.Content != "Any update?" {
				t.Fatalf("unexpected comment input %+v", input)
			}
			return &requests.CommentDTO{ID: uuid.New(), Content: input.Content}, nil
		},
		deleteFn: func(ctx context.Context, rawID any, actor requests.Actor) error {
			deleted = rawID == requestID.String()
			return nil
		},
	}
	actorID := uuid.New()

	body := `{"action":"addComment","comment":{"requestId":"` + requestID.String() + `","content":"Any update?"}}`
	resp := httptest.NewRecorder()
	RequestsAction(svc, testLogger())(resp, withActor(newJSONRequest(http.MethodPost, "/api/v1/requests", body), actorID, enums.UserRoleUser))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	body = `{"action":"delete","id":"` + requestID.String() + `"}`
	resp = httptest.NewRecorder()
	RequestsAction(svc, testLogger())(resp, withActor(newJSONRequest(http.MethodPost, "/api/v1/requests", body), actorID, enums.UserRoleAdmin))
	if resp.Code != http.StatusOK || !deleted {
		t.Fatalf("expected delete to succeed, status %d deleted=%v", resp.Code, deleted)
	}
}

func TestRequestsActionRejectsUnknownAndIncompleteActions(t *testing.T) {
	cases := []string{
		`{"action":"archive"}`,
		`{"action":"create"}`,
		`{"action":"addComment"}`,
		`{}`,
		`not json`,
	}
	for _, body := range cases {
		req := withActor(newJSONRequest(http.MethodPost, "/api/v1/requests", body), uuid.New(), enums.UserRoleAdmin)
		resp := httptest.NewRecorder()
		RequestsAction(&stubRequestsFacade{}, testLogger())(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", body, resp.Code)
		}
	}
}

func TestGetRequestUsesPathID(t *testing.T) {
	svc := &stubRequestsFacade{
		getByIDFn: func(ctx context.Context, rawID any) (*requests.RequestDTO, error) {
			if rawID != "abc" {
				t.Fatalf("unexpected id %#v", rawID)
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request abc not found")
		},
	}
	req := addRouteParam(newJSONRequest(http.MethodGet, "/api/v1/requests/abc", ""), "id", "abc")
	resp := httptest.NewRecorder()
	GetRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if msg := decodeError(t, resp).Error.Message; msg != "request abc not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUpdateRequestPrefersPathID(t *testing.T) {
	pathValue := uuid.NewString()
	svc := &stubRequestsFacade{
		updateFn: func(ctx context.Context, input facade.UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error) {
			if input.ID != pathValue {
				t.Fatalf("expected path id, got %#v", input.ID)
			}
			if input.RejectionReason == nil || *input.RejectionReason != "over budget" {
				t.Fatalf("unexpected reason %v", input.RejectionReason)
			}
			return &requests.RequestDTO{Status: enums.RequestStatusRejected}, nil
		},
	}
	body := `{"id":"ignored","status":"rejected","rejectionReason":"over budget"}`
	req := withActor(newJSONRequest(http.MethodPatch, "/api/v1/requests/"+pathValue, body), uuid.New(), enums.UserRoleManager)
	req = addRouteParam(req, "id", pathValue)
	resp := httptest.NewRecorder()
	UpdateRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestCreateRequestRejectsUnknownFields(t *testing.T) {
	req := withActor(newJSONRequest(http.MethodPost, "/api/v1/requests/create", `{"title":"x","bogus":true}`), uuid.New(), enums.UserRoleUser)
	resp := httptest.NewRecorder()
	CreateRequest(&stubRequestsFacade{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAddRequestCommentRequiresContent(t *testing.T) {
	req := withActor(newJSONRequest(http.MethodPost, "/api/v1/requests/x/comments", `{"content":""}`), uuid.New(), enums.UserRoleUser)
	req = addRouteParam(req, "id", "x")
	resp := httptest.NewRecorder()
	AddRequestComment(&stubRequestsFacade{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
