package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/repository"
	"github.com/trackmyoffer/bff/internal/upstream"
)

type fakeDirectoryRepo struct {
	mu      sync.Mutex
	entries map[string]domain.ProfileDirectoryEntry
	getErr  error
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{entries: map[string]domain.ProfileDirectoryEntry{}}
}

func (r *fakeDirectoryRepo) GetByEmail(_ context.Context, email string) (*domain.ProfileDirectoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	entry, ok := r.entries[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *fakeDirectoryRepo) Create(_ context.Context, entry *domain.ProfileDirectoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.Email]; ok {
		return fmt.Errorf("insert: %w", repository.ErrDuplicateEmail)
	}
	r.entries[entry.Email] = *entry
	return nil
}

func (r *fakeDirectoryRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[email]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, email)
	return nil
}

func (r *fakeDirectoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type fakeCreator struct {
	calls  atomic.Int64
	nextID atomic.Int64
	delay  time.Duration
	err    error
}

func (c *fakeCreator) CreateProfile(_ context.Context, _ dto.NewProfileRequest) (int64, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return 0, c.err
	}
	return 100 + c.nextID.Add(1), nil
}

type fakeLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	err   error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: map[string]*sync.Mutex{}}
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

type fakeProvider struct {
	live          map[string]bool
	introspectErr error
	introspected  atomic.Int64
	users         map[string]domain.UserInfo
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (string, error) {
	return "token-for-" + code, nil
}

func (p *fakeProvider) Introspect(_ context.Context, accessToken string) (bool, error) {
	p.introspected.Add(1)
	if p.introspectErr != nil {
		return false, p.introspectErr
	}
	return p.live[accessToken], nil
}

func (p *fakeProvider) UserInfo(_ context.Context, accessToken string) (*domain.UserInfo, error) {
	info, ok := p.users[accessToken]
	if !ok {
		return nil, errors.New("user info fetch failed with status 401")
	}
	return &info, nil
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (r *fakeRevocations) Revoke(_ context.Context, accessToken string, _ time.Duration) error {
	r.revoked[accessToken] = true
	return nil
}

func (r *fakeRevocations) IsRevoked(_ context.Context, accessToken string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.revoked[accessToken], nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	days    map[string]map[string]bool
	streaks map[string]domain.StreakRecord
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{
		days:    map[string]map[string]bool{},
		streaks: map[string]domain.StreakRecord{},
	}
}

func (r *fakeActivityRepo) RecordActivity(_ context.Context, email string, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day = domain.CalendarDay(day)
	if r.days[email] == nil {
		r.days[email] = map[string]bool{}
	}
	r.days[email][day.Format("2006-01-02")] = true

	var prev *domain.StreakRecord
	if record, ok := r.streaks[email]; ok {
		prev = &record
	}
	next, changed := domain.NextStreak(prev, email, day)
	if changed {
		r.streaks[email] = next
	}
	return next.CurrentStreak, nil
}

func (r *fakeActivityRepo) GetStreak(_ context.Context, email string) (*domain.StreakRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.streaks[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (r *fakeActivityRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.days, email)
	delete(r.streaks, email)
	return nil
}

// fakeUserDataClient serves canned responses keyed by operation and records every call
type fakeUserDataClient struct {
	responses map[string]*upstream.Response
	// failOn makes the n-th call (1-based) of an operation answer 500.
	failOn map[string]int
	counts map[string]int
	calls  []string
}

func newFakeUserDataClient() *fakeUserDataClient {
	return &fakeUserDataClient{
		responses: map[string]*upstream.Response{},
		failOn:    map[string]int{},
		counts:    map[string]int{},
	}
}

func (c *fakeUserDataClient) answer(op string, call string) (*upstream.Response, error) {
	c.counts[op]++
	c.calls = append(c.calls, call)
	if n, ok := c.failOn[op]; ok && n == c.counts[op] {
		return &upstream.Response{Status: 500, Body: []byte("boom")}, nil
	}
	if resp, ok := c.responses[op]; ok {
		return resp, nil
	}
	return &upstream.Response{Status: 200, Body: []byte(`{}`)}, nil
}

func (c *fakeUserDataClient) GetProfile(_ context.Context, profileID int64) (*upstream.Response, error) {
	return c.answer("get_profile", fmt.Sprintf("GET profile %d", profileID))
}

func (c *fakeUserDataClient) ListEducations(_ context.Context, profileID int64) (*upstream.Response, error) {
	return c.answer("list_educations", fmt.Sprintf("GET educations %d", profileID))
}

func (c *fakeUserDataClient) ListExperiences(_ context.Context, profileID int64) (*upstream.Response, error) {
	return c.answer("list_experiences", fmt.Sprintf("GET experiences %d", profileID))
}

func (c *fakeUserDataClient) DeleteEducation(_ context.Context, profileID, educationID int64) (*upstream.Response, error) {
	return c.answer("delete_education", fmt.Sprintf("DELETE education %d/%d", profileID, educationID))
}

func (c *fakeUserDataClient) DeleteExperience(_ context.Context, profileID, experienceID int64) (*upstream.Response, error) {
	return c.answer("delete_experience", fmt.Sprintf("DELETE experience %d/%d", profileID, experienceID))
}

func (c *fakeUserDataClient) DeleteProfile(_ context.Context, profileID int64) (*upstream.Response, error) {
	return c.answer("delete_profile", fmt.Sprintf("DELETE profile %d", profileID))
}
