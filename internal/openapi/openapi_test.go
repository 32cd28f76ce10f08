package openapi

import (
	"encoding/json"
	"testing"
)

func TestDocumentListsEveryRoute(t *testing.T) {
	doc := Document("1.2.3")

	want := map[string][]string{
		"/":                {"GET"},
		"/api/health":      {"GET"},
		"/api/users":       {"GET", "POST"},
		"/api/users/login": {"POST"},
		"/api/users/{id}":  {"GET", "PATCH", "DELETE"},
	}
	for path, methods := range want {
		item := doc.Paths.Value(path)
		if item == nil {
			t.Errorf("missing path %s", path)
			continue
		}
		for _, m := range methods {
			if item.GetOperation(m) == nil {
				t.Errorf("missing %s %s", m, path)
			}
		}
	}
	if doc.Info.Version != "1.2.3" {
		t.Errorf("Info.Version = %q", doc.Info.Version)
	}
}

func TestProtectedOperationsRequireToken(t *testing.T) {
	doc := Document("dev")
	item := doc.Paths.Value("/api/users/{id}")
	for _, op := range []string{"GET", "PATCH", "DELETE"} {
		o := item.GetOperation(op)
		if o.Security == nil || len(*o.Security) == 0 {
			t.Errorf("%s /api/users/{id} is not secured", op)
		}
		if o.Responses.Status(401) == nil {
			t.Errorf("%s /api/users/{id} does not document 401", op)
		}
	}

	login := doc.Paths.Value("/api/users/login").Post
	if login.Security != nil {
		t.Error("login must be public")
	}
}

func TestDocumentMarshalsJSON(t *testing.T) {
	raw, err := json.Marshal(Document("dev"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", decoded["openapi"])
	}
	schemas := decoded["components"].(map[string]any)["schemas"].(map[string]any)
	user := schemas["User"].(map[string]any)["properties"].(map[string]any)
	if _, ok := user["password"]; ok {
		t.Error("User schema must not expose password")
	}
}
