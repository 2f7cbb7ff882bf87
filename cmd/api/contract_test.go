package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// loadServedDocument fetches the document from the running API and builds
// a route matcher over it. Servers are cleared so paths match without the
// mount prefix.
func loadServedDocument(t *testing.T, baseURL string) routers.Router {
	t.Helper()

	resp, body := do(t, http.MethodGet, baseURL+"/api/schema/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schema status = %d", resp.StatusCode)
	}

	doc, err := openapi3.NewLoader().LoadFromData(body)
	if err != nil {
		t.Fatalf("failed to load served document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("served document is invalid: %v", err)
	}
	doc.Servers = nil

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("failed to build router from document: %v", err)
	}
	return router
}

func objectID(t *testing.T, body []byte) string {
	t.Helper()

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &obj); err != nil || obj.ID == "" {
		t.Fatalf("response has no id: %s", body)
	}
	return obj.ID
}

// exchange performs a call against the API and validates the request and
// the response against the document.
func exchange(t *testing.T, router routers.Router, baseURL, method, path, body string, validateRequest bool) ([]byte, error) {
	t.Helper()

	resp, respBody := do(t, method, baseURL+apiPrefix+path, body)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	route, params, err := router.FindRoute(req)
	if err != nil {
		t.Fatalf("%s %s is not documented: %v", method, path, err)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
	}
	if validateRequest {
		if err := openapi3filter.ValidateRequest(context.Background(), input); err != nil {
			t.Fatalf("request %s %s does not match the document: %v", method, path, err)
		}
	}

	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 resp.StatusCode,
		Header:                 resp.Header,
	}
	out.SetBodyBytes(respBody)

	return respBody, openapi3filter.ValidateResponse(context.Background(), out)
}

func TestContract_UserResponsesMatchDocument(t *testing.T) {
	srv := newTestServer(t)
	router := loadServedDocument(t, srv.URL)

	created, err := exchange(t, router, srv.URL, http.MethodPost, "/users/",
		`{"email":"bo@example.com","is_active":false,"phone":"555-0101"}`, true)
	if err != nil {
		t.Fatalf("create response does not match the document: %v", err)
	}

	id := objectID(t, created)

	if _, err := exchange(t, router, srv.URL, http.MethodGet, "/users/", "", false); err != nil {
		t.Errorf("list response does not match the document: %v", err)
	}
	if _, err := exchange(t, router, srv.URL, http.MethodPatch, "/users/"+id+"/", `{"first":"Bo"}`, true); err != nil {
		t.Errorf("partial update response does not match the document: %v", err)
	}
	if _, err := exchange(t, router, srv.URL, http.MethodDelete, "/users/"+id+"/", "", false); err != nil {
		t.Errorf("destroy response does not match the document: %v", err)
	}
}

// The nested user of a receiver is rendered with first and email only,
// while the document points at the full User component. Responses carrying
// a nested user therefore miss required properties.
func TestContract_NarrowedNestedUserDivergesFromDocument(t *testing.T) {
	srv := newTestServer(t)
	router := loadServedDocument(t, srv.URL)

	created, err := exchange(t, router, srv.URL, http.MethodPost, "/users/",
		`{"email":"cy@example.com","is_active":true,"phone":"555-0102"}`, true)
	if err != nil {
		t.Fatalf("create user response does not match the document: %v", err)
	}
	id := objectID(t, created)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/receivers/", `{"receiver":{"id":"`+id+`"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create receiver status = %d, body = %s", resp.StatusCode, body)
	}

	if _, err := exchange(t, router, srv.URL, http.MethodGet, "/receivers/", "", false); err == nil {
		t.Error("expected the narrowed nested user to fail validation against the User component")
	}
}
