package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/roster/internal/resource"
	"github.com/penshort/roster/internal/router"
	"github.com/penshort/roster/internal/serializer"
	"github.com/penshort/roster/internal/viewset"
)

// fakeViewSet answers every action with its own name.
type fakeViewSet struct {
	actions []viewset.Action
}

func (f *fakeViewSet) Serializer() *serializer.Serializer { return resource.NewUserSerializer() }

func (f *fakeViewSet) Actions() []viewset.Action { return f.actions }

func (f *fakeViewSet) Handler(action viewset.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Action", string(action))
		w.Header().Set("X-ID", chi.URLParam(r, viewset.LookupParam))
	}
}

var allActions = []viewset.Action{
	viewset.ActionList, viewset.ActionCreate, viewset.ActionRetrieve,
	viewset.ActionUpdate, viewset.ActionPartialUpdate, viewset.ActionDestroy,
}

func TestSimpleRouter_Routes(t *testing.T) {
	r := router.NewSimpleRouter()
	r.Register("y/", &fakeViewSet{actions: allActions}, "y/")
	r.Register("users", &fakeViewSet{actions: allActions}, "")

	routes := r.Routes()
	if len(routes) != 4 {
		t.Fatalf("len(Routes()) = %d, want 4", len(routes))
	}

	tests := []struct {
		path     string
		basename string
		detail   bool
		methods  int
	}{
		{"/y//", "y/", false, 2},
		{"/y//{id}/", "y/", true, 4},
		{"/users/", "users", false, 2},
		{"/users/{id}/", "users", true, 4},
	}

	for i, tt := range tests {
		got := routes[i]
		if got.Path != tt.path {
			t.Errorf("routes[%d].Path = %s, want %s", i, got.Path, tt.path)
		}
		if got.Basename != tt.basename {
			t.Errorf("routes[%d].Basename = %s, want %s", i, got.Basename, tt.basename)
		}
		if got.Detail != tt.detail {
			t.Errorf("routes[%d].Detail = %v, want %v", i, got.Detail, tt.detail)
		}
		if len(got.Methods) != tt.methods {
			t.Errorf("routes[%d] has %d methods, want %d", i, len(got.Methods), tt.methods)
		}
	}
}

func TestSimpleRouter_SkipsUnsupportedActions(t *testing.T) {
	r := router.NewSimpleRouter()
	r.Register("ro", &fakeViewSet{actions: []viewset.Action{viewset.ActionList}}, "")

	routes := r.Routes()
	if len(routes) != 1 {
		t.Fatalf("len(Routes()) = %d, want 1", len(routes))
	}
	if routes[0].Detail {
		t.Error("only the list route should remain")
	}
	if len(routes[0].Methods) != 1 || routes[0].Methods[0].Method != http.MethodGet {
		t.Errorf("Methods = %+v, want only GET", routes[0].Methods)
	}
}

func TestSimpleRouter_Mount(t *testing.T) {
	r := router.NewSimpleRouter()
	r.Register("users", &fakeViewSet{actions: allActions}, "")

	mux := chi.NewRouter()
	r.Mount(mux)

	tests := []struct {
		method string
		path   string
		action viewset.Action
		id     string
	}{
		{http.MethodGet, "/users/", viewset.ActionList, ""},
		{http.MethodPost, "/users/", viewset.ActionCreate, ""},
		{http.MethodGet, "/users/abc/", viewset.ActionRetrieve, "abc"},
		{http.MethodPut, "/users/abc/", viewset.ActionUpdate, "abc"},
		{http.MethodPatch, "/users/abc/", viewset.ActionPartialUpdate, "abc"},
		{http.MethodDelete, "/users/abc/", viewset.ActionDestroy, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if got := rec.Header().Get("X-Action"); got != string(tt.action) {
				t.Errorf("action = %q, want %q", got, tt.action)
			}
			if got := rec.Header().Get("X-ID"); got != tt.id {
				t.Errorf("id = %q, want %q", got, tt.id)
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /users/ status = %d, want 405", rec.Code)
	}
}
