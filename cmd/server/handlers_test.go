package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatgraph"
	"chatgraph/graph"
)

// testServer builds the route mux around an analyzer with no LLM
// providers configured, so graph builds take the contact-only path and
// nothing dials out.
func testServer(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg := chatgraph.DefaultConfig()
	cfg.Oracle.Provider = ""
	cfg.Embedding.Provider = ""
	a, err := chatgraph.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return newMux(newHandler(a))
}

const graphRequestBody = `{"messages": [
	{"contact_id": "alice", "contact_name": "Alice", "direction": "incoming", "body": "the garden is full of tomatoes this year"},
	{"contact_id": "alice", "direction": "outgoing", "body": "save some for me"},
	{"contact_id": "bob", "contact_name": "Bob", "direction": "incoming", "body": "poker night friday?"}
]}`

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleGraphJSON(t *testing.T) {
	mux := testServer(t)

	rec := postJSON(t, mux, "/graph", graphRequestBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var g graph.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(g.Nodes))
	}
	if g.Nodes[0].ID != "self" || g.Nodes[0].Value != 3 {
		t.Errorf("self node = %+v", g.Nodes[0])
	}
	if g.Nodes[1].Name != "Alice" || g.Nodes[1].Value != 2 {
		t.Errorf("alice node = %+v", g.Nodes[1])
	}
	if len(g.Links) != 2 {
		t.Fatalf("links = %d, want 2", len(g.Links))
	}
	if g.Links[0].Source != "self" || g.Links[0].Target != "alice" || g.Links[0].Value != 2 {
		t.Errorf("first link = %+v", g.Links[0])
	}
}

func TestHandleGraphBadRequests(t *testing.T) {
	mux := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{broken"},
		{"no messages", `{"messages": []}`},
		{"wrong shape", `{"nodes": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "/graph", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleGraphMultipart(t *testing.T) {
	mux := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "backup.json")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(`[{"contact_id": "carol", "contact_name": "Carol", "direction": "incoming", "body": "the hiking trail opens in may"}]`))
	mw.WriteField("skip_topics", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/graph", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var g graph.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(g.Nodes))
	}
	if g.Nodes[1].ID != "carol" || g.Nodes[1].Name != "Carol" {
		t.Errorf("contact node = %+v", g.Nodes[1])
	}
}

func TestHandleGraphMultipartWithoutFiles(t *testing.T) {
	mux := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("skip_topics", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/graph", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSynonymsNoEmbedder(t *testing.T) {
	mux := testServer(t)

	body := `{"graph": {"nodes": [{"id": "topic:0", "name": "gardening", "group": 2, "value": 5}], "links": []}}`
	rec := postJSON(t, mux, "/synonyms", body)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503, body %s", rec.Code, rec.Body)
	}
}

func TestHandleSynonymsMissingGraph(t *testing.T) {
	mux := testServer(t)

	rec := postJSON(t, mux, "/synonyms", `{"limit": 5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleFormats(t *testing.T) {
	mux := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Import []string `json:"import"`
		Export []string `json:"export"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !contains(resp.Import, "xml") || !contains(resp.Import, "mbox") {
		t.Errorf("import formats = %v", resp.Import)
	}
	if !contains(resp.Export, "sqlite") || !contains(resp.Export, "parquet") {
		t.Errorf("export formats = %v", resp.Export)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q", resp["status"])
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
