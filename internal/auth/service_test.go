package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/domain"
)

// fakeRepo is an in-memory domain.UserRepository.
type fakeRepo struct {
	users  map[int64]*domain.StoredUser
	nextID int64
	down   bool
	// queries counts storage operations that actually ran.
	queries int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*domain.StoredUser), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, username, email, passwordHash string) (int64, error) {
	if r.down {
		return 0, domain.ErrNoDatabase
	}
	r.queries++
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return 0, domain.ErrDuplicateCredential
		}
	}
	id := r.nextID
	r.nextID++
	r.users[id] = &domain.StoredUser{
		User:         domain.User{ID: id, Username: username, Email: email},
		PasswordHash: passwordHash,
	}
	return id, nil
}

func (r *fakeRepo) FindByLogin(_ context.Context, login string) (*domain.StoredUser, error) {
	if r.down {
		return nil, domain.ErrNoDatabase
	}
	r.queries++
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.down {
		return nil, domain.ErrNoDatabase
	}
	r.queries++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := u.User
	return &user, nil
}

// fakeSession is an in-memory domain.Session.
type fakeSession struct {
	values map[string]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: make(map[string]string)}
}

func (s *fakeSession) ID() string { return "test-session" }

func (s *fakeSession) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeSession) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *fakeSession) Erase(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func newTestService(repo domain.UserRepository) *Service {
	// Minimal argon2 parameters keep the suite fast; production parameters
	// are covered in password_test.go.
	hasher := &Hasher{memory: 8 * 1024, time: 1, parallelism: 1, saltLength: 16, keyLength: 32}
	return NewService(repo, hasher)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	sess := newFakeSession()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	user, err := svc.Login(ctx, sess, "bob", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "bob@x.com", user.Email)
	assert.NotZero(t, user.ID)

	assert.Equal(t, "bob", sess.values[domain.SessionKeyUsername])
	assert.NotEmpty(t, sess.values[domain.SessionKeyUserID])
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	for _, creds := range []domain.Credentials{
		{},
		{Username: "bob"},
		{Username: "bob", Email: "bob@x.com"},
		{Email: "bob@x.com", Password: "pw1"},
	} {
		assert.ErrorIs(t, svc.Register(ctx, creds), domain.ErrMissingFields)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	err := svc.Register(ctx, domain.Credentials{Username: "bob", Email: "other@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCredential)
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	stored := repo.users[1]
	assert.NotContains(t, stored.PasswordHash, "pw1")
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

func TestLoginByEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	user, err := svc.Login(ctx, newFakeSession(), "bob@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	_, unknownErr := svc.Login(ctx, newFakeSession(), "nobody", "pw1")
	_, wrongErr := svc.Login(ctx, newFakeSession(), "bob", "wrong")

	assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Login(ctx, newFakeSession(), "", "pw1")
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = svc.Login(ctx, newFakeSession(), "bob", "")
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestLoginDoesNotTouchSessionOnFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	sess := newFakeSession()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))

	_, err := svc.Login(ctx, sess, "bob", "wrong")
	require.Error(t, err)
	assert.Empty(t, sess.values)
}

func TestLogoutIdempotent(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	assert.NoError(t, svc.Logout(ctx, nil))
	assert.NoError(t, svc.Logout(ctx, newFakeSession()))

	sess := newFakeSession()
	sess.values[domain.SessionKeyUserID] = "1"
	sess.values[domain.SessionKeyUsername] = "bob"
	sess.values["theme"] = "dark"

	require.NoError(t, svc.Logout(ctx, sess))
	assert.NotContains(t, sess.values, domain.SessionKeyUserID)
	assert.NotContains(t, sess.values, domain.SessionKeyUsername)
	assert.Equal(t, "dark", sess.values["theme"], "non-principal keys survive logout")
}

func TestMeWithoutSession(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Me(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = svc.Me(ctx, newFakeSession())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	assert.Zero(t, repo.queries, "no query may run before the session check")
}

func TestMeRefetchesFromStorage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	sess := newFakeSession()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))
	_, err := svc.Login(ctx, sess, "bob", "pw1")
	require.NoError(t, err)

	// Stale session username must not leak into the response.
	sess.values[domain.SessionKeyUsername] = "mallory"

	user, err := svc.Me(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}

func TestMeAfterAccountDeleted(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	sess := newFakeSession()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"}))
	_, err := svc.Login(ctx, sess, "bob", "pw1")
	require.NoError(t, err)

	// Account removed externally; the session stays as-is.
	delete(repo.users, 1)

	_, err = svc.Me(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NotEmpty(t, sess.values[domain.SessionKeyUserID], "session is not invalidated by Me")
}

func TestOperationsFailFastWithoutDatabase(t *testing.T) {
	repo := newFakeRepo()
	repo.down = true
	svc := newTestService(repo)
	ctx := context.Background()

	err := svc.Register(ctx, domain.Credentials{Username: "bob", Email: "bob@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrNoDatabase)

	_, err = svc.Login(ctx, newFakeSession(), "bob", "pw1")
	assert.ErrorIs(t, err, domain.ErrNoDatabase)

	sess := newFakeSession()
	sess.values[domain.SessionKeyUserID] = "1"
	_, err = svc.Me(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrNoDatabase)

	assert.Zero(t, repo.queries, "no query may be issued in degraded mode")
}

func TestStorageErrorsPassThroughWrapped(t *testing.T) {
	repo := &erroringRepo{err: errors.New("connection reset")}
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), newFakeSession(), "bob", "pw1")
	assert.ErrorContains(t, err, "connection reset")
}

type erroringRepo struct{ err error }

func (r *erroringRepo) Create(context.Context, string, string, string) (int64, error) {
	return 0, r.err
}

func (r *erroringRepo) FindByLogin(context.Context, string) (*domain.StoredUser, error) {
	return nil, r.err
}

func (r *erroringRepo) FindByID(context.Context, int64) (*domain.User, error) {
	return nil, r.err
}
