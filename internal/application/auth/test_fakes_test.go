package auth

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	getErr    error
	createErr error
	listErr   error
	deleteErr error

	listCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email && u.Role == role {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) emailTaken(email, exceptID string) bool {
	for _, u := range f.byID {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if f.emailTaken(u.Email, "") {
		return domain.User{}, domain.ErrDuplicateEmail()
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Replace(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[u.ID]; !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if f.emailTaken(u.Email, u.ID) {
		return domain.User{}, domain.ErrDuplicateEmail()
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.User{}
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) DeleteByIDAndRole(ctx context.Context, id, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	u, ok := f.byID[id]
	if !ok || u.Role != role {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, id)
	return nil
}

// fakeHasher stores "hashed:" + password.
type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "hashed:" + pw, nil
}

func (h *fakeHasher) Verify(pw, hash string) bool {
	return hash == "hashed:"+pw
}

type fakeSigner struct {
	signErr error
	signed  []string
}

func (s *fakeSigner) SignAccessToken(userID, role string) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, userID)
	return "tok-" + userID + "-" + role, nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 3 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return TokenClaims{UserID: parts[1], Role: parts[2]}, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	err        error
	registered []StudentRegisteredEvent
	deleted    []StudentDeletedEvent
}

func (p *fakePublisher) PublishStudentRegistered(ctx context.Context, evt StudentRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, evt)
	return p.err
}

func (p *fakePublisher) PublishStudentDeleted(ctx context.Context, evt StudentDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, evt)
	return p.err
}

type fakeCache struct {
	users       []domain.User
	ok          bool
	gen         int64
	setGen      int64
	sets        int
	invalidated int

	// beforeSet runs once between the store read and the cache write, to
	// interleave a concurrent write.
	beforeSet func()
}

func (c *fakeCache) Get(ctx context.Context) ([]domain.User, int64, bool) {
	return c.users, c.gen, c.ok
}
func (c *fakeCache) Set(ctx context.Context, gen int64, users []domain.User) {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.sets++
	c.setGen = gen
	if gen != c.gen {
		return
	}
	c.users, c.ok = users, true
}
func (c *fakeCache) Invalidate(ctx context.Context) {
	c.users, c.ok = nil, false
	c.gen++
	c.invalidated++
}

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) add(action string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *fakeAuditor) LoginSuccess(ctx context.Context, userID, email, role string) {
	a.add("login_success", map[string]string{"user_id": userID, "role": role})
}
func (a *fakeAuditor) LoginFailed(ctx context.Context, email, role, reason string) {
	a.add("login_failed", map[string]string{"reason": reason, "role": role})
}
func (a *fakeAuditor) StudentRegistered(ctx context.Context, actorID, studentID, email string) {
	a.add("student_registered", map[string]string{"actor_id": actorID, "student_id": studentID})
}
func (a *fakeAuditor) StudentUpdated(ctx context.Context, actorID, studentID string) {
	a.add("student_updated", map[string]string{"actor_id": actorID, "student_id": studentID})
}
func (a *fakeAuditor) StudentDeleted(ctx context.Context, actorID, studentID string) {
	a.add("student_deleted", map[string]string{"actor_id": actorID, "student_id": studentID})
}

func (a *fakeAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

/*
Service builder
*/

type testRig struct {
	svc     *Service
	users   *fakeUserRepo
	hasher  *fakeHasher
	signer  *fakeSigner
	pub     *fakePublisher
	cache   *fakeCache
	audit   *fakeAuditor
	pubErrs []string
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newRig(t *testing.T) *testRig {
	t.Helper()

	r := &testRig{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		signer: &fakeSigner{},
		pub:    &fakePublisher{},
		cache:  &fakeCache{},
		audit:  &fakeAuditor{},
	}

	seq := 0
	r.svc = NewService(r.users, r.hasher, r.signer).
		WithPublisher(r.pub, func(event string, err error) { r.pubErrs = append(r.pubErrs, event) }).
		WithCache(r.cache).
		WithAudit(r.audit)
	r.svc.now = func() time.Time { return fixedNow }
	r.svc.newID = func() string {
		seq++
		return "s" + string(rune('0'+seq))
	}

	r.users.put(domain.User{
		ID:           "admin1",
		Username:     "admin",
		PasswordHash: "hashed:admin123",
		Role:         string(domain.RoleAdmin),
		Email:        "admin@iset.tn",
	})
	return r
}

var (
	adminActor   = Actor{UserID: "admin1", Role: "admin"}
	studentActor = Actor{UserID: "stu1", Role: "student"}
)

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()

	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *domain.Error, got %T (%v)", err, err)
	}
	if de.Code != wantCode {
		t.Fatalf("expected code %q, got %q (%v)", wantCode, de.Code, err)
	}
}
