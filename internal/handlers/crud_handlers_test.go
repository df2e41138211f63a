package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/models"
)

func (env *testEnv) request(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) issueAccess(t *testing.T, subject string, role models.Role) string {
	t.Helper()
	signed, err := env.codec.Issue(subject, []string{role.Authority()}, keys.PurposeAccess, time.Hour)
	require.NoError(t, err)
	return signed
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, "/api/v1/courses", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteWithExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	past := time.Now().Add(-time.Hour)
	env.codec.Now = func() time.Time { return past }
	expired, err := env.codec.Issue("jane@example.com", []string{"ROLE_PROFESSOR"}, keys.PurposeAccess, time.Minute)
	require.NoError(t, err)
	env.codec.Now = nil

	rec := env.request(http.MethodGet, "/api/v1/courses", expired, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCourseLifecycle(t *testing.T) {
	env := newTestEnv(t)
	professor := env.issueAccess(t, "jane@example.com", models.RoleProfessor)
	student := env.issueAccess(t, "sam@example.com", models.RoleStudent)
	admin := env.issueAccess(t, "root@example.com", models.RoleAdmin)

	// Students cannot create courses.
	rec := env.request(http.MethodPost, "/api/v1/courses", student, map[string]any{
		"code": "CS101", "title": "Intro to CS",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/courses", professor, map[string]any{
		"code": "CS101", "title": "Intro to CS", "credits": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var course models.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &course))
	require.Equal(t, "CS101", course.Code)

	// Duplicate code conflicts.
	rec = env.request(http.MethodPost, "/api/v1/courses", professor, map[string]any{
		"code": "CS101", "title": "Intro again",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/courses", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":1`)

	rec = env.request(http.MethodPatch, "/api/v1/courses/1", professor, map[string]any{
		"title": "Introduction to Computer Science",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Introduction to Computer Science")

	// Deleting is admin-only.
	rec = env.request(http.MethodDelete, "/api/v1/courses/1", professor, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.request(http.MethodDelete, "/api/v1/courses/1", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.request(http.MethodDelete, "/api/v1/courses/1", admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrollmentAndGradeFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.issueAccess(t, "root@example.com", models.RoleAdmin)
	professor := env.issueAccess(t, "jane@example.com", models.RoleProfessor)
	student := env.issueAccess(t, "sam@example.com", models.RoleStudent)

	rec := env.request(http.MethodPost, "/api/v1/students", admin, map[string]any{
		"first_name": "Sam", "last_name": "Doe", "email": "sam@example.com", "enrollment_year": 2026,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/courses", professor, map[string]any{
		"code": "MATH201", "title": "Linear Algebra",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/enrollments", student, map[string]any{
		"student_id": 1, "course_id": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Enrolling twice in the same course conflicts.
	rec = env.request(http.MethodPost, "/api/v1/enrollments", student, map[string]any{
		"student_id": 1, "course_id": 1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Enrollment against a missing course is a 404, not a 500.
	rec = env.request(http.MethodPost, "/api/v1/enrollments", student, map[string]any{
		"student_id": 1, "course_id": 99,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Grading is staff-only.
	rec = env.request(http.MethodPost, "/api/v1/grades", student, map[string]any{
		"enrollment_id": 1, "value": 4.5,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(http.MethodPost, "/api/v1/grades", professor, map[string]any{
		"enrollment_id": 1, "value": 4.5, "comment": "solid work",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/grades?enrollment_id=1", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "solid work")

	rec = env.request(http.MethodPost, "/api/v1/attendance", professor, map[string]any{
		"enrollment_id": 1, "date": "2026-09-01", "present": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestAnnouncementsAndNotifications(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@example.com", "password", models.RoleProfessor)
	env.createUser(t, "sam@example.com", "password", models.RoleStudent)
	professor := env.issueAccess(t, "jane@example.com", models.RoleProfessor)
	student := env.issueAccess(t, "sam@example.com", models.RoleStudent)

	rec := env.request(http.MethodPost, "/api/v1/announcements", professor, map[string]any{
		"title": "Exam moved", "body": "Final exam moved to Friday.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/announcements", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Exam moved")

	// Notification for the student (user id 2), created by staff.
	rec = env.request(http.MethodPost, "/api/v1/notifications", professor, map[string]any{
		"user_id": 2, "title": "New grade posted",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/notifications", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "New grade posted")

	// The professor sees their own (empty) list, not the student's.
	rec = env.request(http.MethodGet, "/api/v1/notifications", professor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":0`)

	rec = env.request(http.MethodPatch, "/api/v1/notifications/1/read", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"read":true`)

	// Marking someone else's notification is forbidden.
	rec = env.request(http.MethodPatch, "/api/v1/notifications/1/read", professor, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
