package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/iset-library/internal/domain"
)

func validStudent() RegisterStudentInput {
	return RegisterStudentInput{
		Username:   "fadwa",
		Password:   "student123",
		FirstName:  "Fadwa",
		LastName:   "Touati",
		Email:      "FadwaTouati58@gmail.com",
		StudentID:  "ST2024001",
		Department: "Informatique",
	}
}

func TestRegisterStudent_Success(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	u, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	assert.Equal(t, "s1", u.ID)
	assert.Equal(t, "student", u.Role)
	assert.Equal(t, "fadwatouati58@gmail.com", u.Email)
	assert.Equal(t, "hashed:student123", u.PasswordHash)
	assert.Equal(t, fixedNow, u.CreatedAt)

	assert.Equal(t, 1, r.cache.invalidated)
	require.Len(t, r.pub.registered, 1)
	assert.Equal(t, "s1", r.pub.registered[0].UserID)
	assert.Equal(t, []string{"student_registered"}, r.audit.actions())

	// the new student can log in as student only
	_, err = r.svc.Login(context.Background(), "fadwatouati58@gmail.com", "student123", "student")
	require.NoError(t, err)
	_, err = r.svc.Login(context.Background(), "fadwatouati58@gmail.com", "student123", "admin")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestRegisterStudent_RequiresAdmin(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	_, err := r.svc.RegisterStudent(context.Background(), studentActor, validStudent())
	requireDomainCode(t, err, "insufficient_role")

	_, err = r.svc.RegisterStudent(context.Background(), Actor{Role: "admin"}, validStudent())
	requireDomainCode(t, err, "forbidden")

	assert.Empty(t, r.pub.registered)
}

func TestRegisterStudent_MissingFields(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	in := validStudent()
	in.Username = " "
	in.Email = ""

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, in)
	requireDomainCode(t, err, "missing_fields")

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, map[string]string{"username": "required", "email": "required"}, de.Meta)
}

func TestRegisterStudent_ShortPassword(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	in := validStudent()
	in.Password = "123"
	_, err := r.svc.RegisterStudent(context.Background(), adminActor, in)
	requireDomainCode(t, err, "invalid_field")
}

func TestRegisterStudent_DuplicateEmail(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	_, err = r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	requireDomainCode(t, err, "duplicate_email")

	// email collides with the admin account too
	in := validStudent()
	in.Email = "admin@iset.tn"
	_, err = r.svc.RegisterStudent(context.Background(), adminActor, in)
	requireDomainCode(t, err, "duplicate_email")

	assert.Len(t, r.pub.registered, 1)
}

func TestRegisterStudent_HashFail(t *testing.T) {
	t.Parallel()
	r := newRig(t)
	r.hasher.hashFn = func(string) (string, error) { return "", errors.New("boom") }

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	requireDomainCode(t, err, "hash_failed")
}

func TestRegisterStudent_HasherDomainErrorKept(t *testing.T) {
	t.Parallel()
	r := newRig(t)
	r.hasher.hashFn = func(string) (string, error) {
		return "", domain.ErrInvalidField("password", "must be at most 72 bytes")
	}

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	requireDomainCode(t, err, "invalid_field")
	assert.Empty(t, r.pub.registered)
}

func TestRegisterStudent_PublishFailureDoesNotFail(t *testing.T) {
	t.Parallel()
	r := newRig(t)
	r.pub.err = errors.New("broker down")

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)
	assert.Equal(t, []string{"student.registered"}, r.pubErrs)
}

func TestListStudents_ReadThroughCache(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	_, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	got, err := r.svc.ListStudents(context.Background(), adminActor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, 1, r.users.listCalls)

	_, err = r.svc.ListStudents(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, 1, r.users.listCalls, "second call served from cache")

	_, err = r.svc.ListStudents(context.Background(), studentActor)
	requireDomainCode(t, err, "insufficient_role")
}

func TestListStudents_DeleteDuringListIsNotCached(t *testing.T) {
	t.Parallel()
	r := newRig(t)
	ctx := context.Background()

	created, err := r.svc.RegisterStudent(ctx, adminActor, validStudent())
	require.NoError(t, err)

	// the delete lands after the listing was read but before it is cached
	r.cache.beforeSet = func() {
		require.NoError(t, r.svc.DeleteStudent(ctx, adminActor, created.ID))
	}
	got, err := r.svc.ListStudents(ctx, adminActor)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = r.svc.ListStudents(ctx, adminActor)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, r.users.listCalls)
}

func TestListStudents_StorageError(t *testing.T) {
	t.Parallel()
	r := newRig(t)
	r.users.listErr = domain.ErrDBUnavailable(errors.New("down"))

	_, err := r.svc.ListStudents(context.Background(), adminActor)
	requireDomainCode(t, err, "db_unavailable")
	assert.Equal(t, 0, r.cache.sets)
}

func TestUpdateStudent(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	created, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	upd := UpdateStudentInput{
		Username:   "fadwa.t",
		Email:      "fadwa@iset.tn",
		FirstName:  "Fadwa",
		Department: "Gestion",
	}
	got, err := r.svc.UpdateStudent(context.Background(), adminActor, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "fadwa.t", got.Username)
	assert.Equal(t, "fadwa@iset.tn", got.Email)
	assert.Empty(t, got.LastName, "full replacement clears omitted fields")
	assert.Equal(t, "hashed:student123", got.PasswordHash, "empty password keeps hash")
	assert.Equal(t, "student", got.Role)

	upd.Password = "newpass1"
	got, err = r.svc.UpdateStudent(context.Background(), adminActor, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpass1", got.PasswordHash)

	assert.Equal(t, []string{"student_registered", "student_updated", "student_updated"}, r.audit.actions())
}

func TestUpdateStudent_Errors(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	created, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	ok := UpdateStudentInput{Username: "x", Email: "x@iset.tn"}

	_, err = r.svc.UpdateStudent(context.Background(), adminActor, "missing", ok)
	requireDomainCode(t, err, "student_not_found")

	_, err = r.svc.UpdateStudent(context.Background(), adminActor, "admin1", ok)
	requireDomainCode(t, err, "student_not_found")

	_, err = r.svc.UpdateStudent(context.Background(), adminActor, created.ID, UpdateStudentInput{Username: "x"})
	requireDomainCode(t, err, "missing_fields")

	_, err = r.svc.UpdateStudent(context.Background(), adminActor, created.ID,
		UpdateStudentInput{Username: "x", Email: "x@iset.tn", Password: "123"})
	requireDomainCode(t, err, "invalid_field")

	_, err = r.svc.UpdateStudent(context.Background(), adminActor, created.ID,
		UpdateStudentInput{Username: "x", Email: "admin@iset.tn"})
	requireDomainCode(t, err, "duplicate_email")

	_, err = r.svc.UpdateStudent(context.Background(), studentActor, created.ID, ok)
	requireDomainCode(t, err, "insufficient_role")
}

func TestDeleteStudent(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	created, err := r.svc.RegisterStudent(context.Background(), adminActor, validStudent())
	require.NoError(t, err)

	require.NoError(t, r.svc.DeleteStudent(context.Background(), adminActor, created.ID))
	require.Len(t, r.pub.deleted, 1)
	assert.Equal(t, "admin1", r.pub.deleted[0].DeletedBy)

	// second delete of the same id, and an id that never existed
	err = r.svc.DeleteStudent(context.Background(), adminActor, created.ID)
	requireDomainCode(t, err, "student_not_found")
	err = r.svc.DeleteStudent(context.Background(), adminActor, "does-not-exist")
	requireDomainCode(t, err, "student_not_found")

	_, err = r.svc.Login(context.Background(), "fadwatouati58@gmail.com", "student123", "student")
	requireDomainCode(t, err, "invalid_credentials")
}

func TestDeleteStudent_NeverDeletesAdmin(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	err := r.svc.DeleteStudent(context.Background(), adminActor, "admin1")
	requireDomainCode(t, err, "student_not_found")

	_, err = r.svc.Login(context.Background(), "admin@iset.tn", "admin123", "admin")
	require.NoError(t, err)
}

func TestDeleteStudent_RequiresAdmin(t *testing.T) {
	t.Parallel()
	r := newRig(t)

	err := r.svc.DeleteStudent(context.Background(), studentActor, "admin1")
	requireDomainCode(t, err, "insufficient_role")
}
