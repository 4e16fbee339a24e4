package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classpad/classpad-backend/internal/middleware"
	"github.com/classpad/classpad-backend/internal/model"
	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type stubAssignmentStore struct {
	assignments map[int]*model.Assignment
}

func (s *stubAssignmentStore) GetByID(ctx context.Context, id int) (*model.Assignment, error) {
	a, ok := s.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (s *stubAssignmentStore) ListByClass(ctx context.Context, classID int) ([]model.Assignment, error) {
	return nil, nil
}

func (s *stubAssignmentStore) Create(ctx context.Context, a *model.Assignment) error { return nil }

func (s *stubAssignmentStore) Update(ctx context.Context, a *model.Assignment) error { return nil }

func (s *stubAssignmentStore) Deactivate(ctx context.Context, id int) (bool, error) {
	return false, nil
}

type stubClassStore struct {
	classes map[int]*model.Class
}

func (s *stubClassStore) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c, ok := s.classes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *stubClassStore) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubClassStore) CodeExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (s *stubClassStore) ListByTeacher(ctx context.Context, teacherID int, activeOnly bool) ([]model.Class, error) {
	return nil, nil
}

func (s *stubClassStore) ListByStudent(ctx context.Context, studentID int) ([]model.Class, error) {
	return nil, nil
}

func (s *stubClassStore) Create(ctx context.Context, c *model.Class) error { return nil }

func (s *stubClassStore) Update(ctx context.Context, c *model.Class) error { return nil }

func (s *stubClassStore) Deactivate(ctx context.Context, id int) (bool, error) { return false, nil }

func (s *stubClassStore) StudentCount(ctx context.Context, classID int) (int, error) {
	return 0, nil
}

// assignmentRouter serves the teacher read route as userID.
func assignmentRouter(userID int) *gin.Engine {
	assignments := &stubAssignmentStore{assignments: map[int]*model.Assignment{
		1: {ID: 1, ClassID: 1, AssignmentName: "Sorting",
			Deadline: time.Now().Add(24 * time.Hour).UTC(), IsActive: true},
	}}
	classes := &stubClassStore{classes: map[int]*model.Class{
		1: {ID: 1, TeacherID: 5, IsActive: true},
	}}
	svc := service.NewAssignmentService(assignments, classes, zerolog.Nop())
	h := NewAssignmentHandler(svc, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: userID, Role: model.RoleTeacher})
	})
	r.GET("/teacher/assignments/:assignment_id", h.GetAssignment)
	return r
}

func TestGetAssignmentOwner(t *testing.T) {
	r := assignmentRouter(5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher/assignments/1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("owner read status = %d, want 200", w.Code)
	}
}

func TestGetAssignmentForeignTeacher(t *testing.T) {
	r := assignmentRouter(9)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher/assignments/1", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign teacher read status = %d, want 403", w.Code)
	}

	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Error == nil || body.Error.Code != response.ErrNotResourceOwner {
		t.Errorf("error code = %v, want %q", body.Error, response.ErrNotResourceOwner)
	}
}

func TestGetAssignmentMissing(t *testing.T) {
	r := assignmentRouter(5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teacher/assignments/99", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("missing assignment status = %d, want 404", w.Code)
	}
}
