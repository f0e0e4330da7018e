package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/repository"
)

type memoryDirectory struct {
	mu      sync.Mutex
	entries map[string]int64
}

func (d *memoryDirectory) GetByEmail(_ context.Context, email string) (*domain.ProfileDirectoryEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.entries[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.ProfileDirectoryEntry{Email: email, ProfileID: id}, nil
}

func (d *memoryDirectory) Create(_ context.Context, entry *domain.ProfileDirectoryEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.entries[entry.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	d.entries[entry.Email] = entry.ProfileID
	return nil
}

func (d *memoryDirectory) Delete(_ context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.entries[email]; !ok {
		return repository.ErrNotFound
	}
	delete(d.entries, email)
	return nil
}

type memoryActivity struct {
	mu      sync.Mutex
	streaks map[string]domain.StreakRecord
}

func (a *memoryActivity) RecordActivity(_ context.Context, email string, day time.Time) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var prev *domain.StreakRecord
	if record, ok := a.streaks[email]; ok {
		prev = &record
	}
	next, changed := domain.NextStreak(prev, email, day)
	if changed {
		a.streaks[email] = next
	}
	return next.CurrentStreak, nil
}

func (a *memoryActivity) GetStreak(_ context.Context, email string) (*domain.StreakRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	record, ok := a.streaks[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (a *memoryActivity) DeleteByEmail(_ context.Context, email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.streaks, email)
	return nil
}

// fakeIdentityProvider accepts the access token "live" and nothing else
func fakeIdentityProvider() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"live","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "live" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_description":"Invalid Value"}`))
			return
		}
		_, _ = w.Write([]byte(`{"expires_in":"3599"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer live" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.UserInfo{
			ID:            "1234",
			Email:         "ada@example.com",
			VerifiedEmail: true,
			Name:          "Ada Lovelace",
			GivenName:     "Ada",
			FamilyName:    "Lovelace",
		})
	})
	return httptest.NewServer(mux)
}

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type cannedResponse struct {
	status int
	body   string
}

// fakeFeatureService answers "METHOD /path" keys with canned responses (200 {} by default)
// and records every call
type fakeFeatureService struct {
	mu        sync.Mutex
	responses map[string][]cannedResponse
	calls     []recordedCall
}

func newFakeFeatureService() *fakeFeatureService {
	return &fakeFeatureService{responses: map[string][]cannedResponse{}}
}

// on queues responses for a route; the last one repeats
func (f *fakeFeatureService) on(route string, status int, body string) *fakeFeatureService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[route] = append(f.responses[route], cannedResponse{status: status, body: body})
	return f
}

func (f *fakeFeatureService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	route := r.Method + " " + r.URL.Path
	resp := cannedResponse{status: http.StatusOK, body: `{}`}
	if queued := f.responses[route]; len(queued) > 0 {
		resp = queued[0]
		if len(queued) > 1 {
			f.responses[route] = queued[1:]
		}
	}
	f.mu.Unlock()

	if strings.HasPrefix(resp.body, "{") || strings.HasPrefix(resp.body, "[") {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeFeatureService) called(method, path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []recordedCall
	for _, call := range f.calls {
		if call.Method == method && call.Path == path {
			matched = append(matched, call)
		}
	}
	return matched
}
