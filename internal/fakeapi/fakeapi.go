// Package fakeapi serves canned GitHub search and Jira JQL responses over
// HTTP for tests and local dry runs.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Failure makes a backend answer a request with a fixed status and body.
// Page selects the 1-based request to fail; 0 fails every request.
type Failure struct {
	Page   int
	Status int
	Body   string
}

// GitHub serves GET /search/issues with page/per_page pagination.
type GitHub struct {
	Issues []map[string]any
	// TotalCount overrides the advertised total when non-zero.
	TotalCount int
	Failure    *Failure

	mu       sync.Mutex
	requests []*http.Request
}

// Requests returns the requests received so far.
func (g *GitHub) Requests() []*http.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*http.Request(nil), g.requests...)
}

func (g *GitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.requests = append(g.requests, r.Clone(r.Context()))
	n := len(g.requests)
	g.mu.Unlock()

	if r.Method != http.MethodGet || r.URL.Path != "/search/issues" {
		http.NotFound(w, r)
		return
	}
	if fail(w, g.Failure, n) {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 30)
	start := (page - 1) * perPage
	items := []map[string]any{}
	for i := start; i >= 0 && i < start+perPage && i < len(g.Issues); i++ {
		items = append(items, g.Issues[i])
	}

	total := len(g.Issues)
	if g.TotalCount != 0 {
		total = g.TotalCount
	}
	writeJSON(w, map[string]any{
		"total_count":        total,
		"incomplete_results": false,
		"items":              items,
	})
}

// Jira serves POST /rest/api/3/search/jql, one element of Pages per request.
// Page i>0 is reached with token "page-i".
type Jira struct {
	Pages   [][]map[string]any
	Failure *Failure

	mu     sync.Mutex
	bodies []string
	auth   []string
}

// Bodies returns the JSON request bodies received so far.
func (j *Jira) Bodies() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.bodies...)
}

// Auth returns the Authorization headers received so far.
func (j *Jira) Auth() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.auth...)
}

func (j *Jira) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/search/jql" {
		http.NotFound(w, r)
		return
	}
	data, _ := io.ReadAll(r.Body)

	j.mu.Lock()
	j.bodies = append(j.bodies, string(data))
	j.auth = append(j.auth, r.Header.Get("Authorization"))
	n := len(j.bodies)
	j.mu.Unlock()

	if fail(w, j.Failure, n) {
		return
	}

	index := 0
	if token := gjson.Get(string(data), "nextPageToken").String(); token != "" {
		parsed, err := strconv.Atoi(strings.TrimPrefix(token, "page-"))
		if err != nil || !strings.HasPrefix(token, "page-") || parsed <= 0 || parsed >= len(j.Pages) {
			http.Error(w, `{"errorMessages":["invalid nextPageToken"]}`, http.StatusBadRequest)
			return
		}
		index = parsed
	}

	resp := map[string]any{"issues": []map[string]any{}}
	if index < len(j.Pages) && j.Pages[index] != nil {
		resp["issues"] = j.Pages[index]
	}
	if index+1 < len(j.Pages) {
		resp["nextPageToken"] = "page-" + strconv.Itoa(index+1)
	}
	writeJSON(w, resp)
}

func fail(w http.ResponseWriter, f *Failure, n int) bool {
	if f == nil || (f.Page != 0 && f.Page != n) {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.Status)
	_, _ = io.WriteString(w, f.Body)
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
