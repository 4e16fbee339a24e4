package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/rs/zerolog"
)

// fakeFileStore records Put/Remove calls in memory.
type fakeFileStore struct {
	objects map[string][]byte
	putErr  error
	removed []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: make(map[string][]byte)}
}

func (f *fakeFileStore) Put(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	if _, ok := f.objects[key]; ok {
		return 0, errors.New("key exists")
	}
	f.objects[key] = data
	return int64(len(data)), nil
}

func (f *fakeFileStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("missing object")
	}
	return fmt.Sprintf("http://files.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeFileStore) Remove(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

// submissionFixture wires a class (teacher 5), an open python assignment
// (ID 1) and an enrolled student (ID 10).
type submissionFixture struct {
	svc         *SubmissionService
	classes     *fakeClassStore
	assignments *fakeAssignmentStore
	enrollments *fakeEnrollmentStore
	submissions *fakeSubmissionStore
	files       *fakeFileStore
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	classes := newFakeClassStore()
	classes.add(model.Class{ID: 1, TeacherID: 5, IsActive: true})
	assignments := newFakeAssignmentStore()
	assignments.add(model.Assignment{
		ID: 1, ClassID: 1, AssignmentName: "Sorting",
		ProgrammingLanguage: model.LanguagePython,
		Deadline:            time.Now().Add(24 * time.Hour).UTC(),
		AllowResubmission:   true, IsActive: true,
	})
	enrollments := newFakeEnrollmentStore()
	if err := enrollments.Create(context.Background(), &model.Enrollment{StudentID: 10, ClassID: 1}); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	submissions := newFakeSubmissionStore()
	files := newFakeFileStore()
	users := newFakeUserStore()

	svc := NewSubmissionService(submissions, assignments, enrollments, classes, users, files, nil, time.Hour, zerolog.Nop())
	return &submissionFixture{
		svc:         svc,
		classes:     classes,
		assignments: assignments,
		enrollments: enrollments,
		submissions: submissions,
		files:       files,
	}
}

func TestSubmitFirstVersion(t *testing.T) {
	fx := newSubmissionFixture(t)

	sub, err := fx.svc.Submit(context.Background(), 1, 10, "solution.py", []byte("print(1)"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.SubmissionNumber != 1 {
		t.Errorf("number = %d, want 1", sub.SubmissionNumber)
	}
	if !sub.IsLatest {
		t.Error("first submission should be latest")
	}
	if sub.FileSize != int64(len("print(1)")) {
		t.Errorf("size = %d", sub.FileSize)
	}
	if len(fx.files.objects) != 1 {
		t.Errorf("stored %d objects, want 1", len(fx.files.objects))
	}
}

func TestSubmitVersioning(t *testing.T) {
	fx := newSubmissionFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Submit(ctx, 1, 10, "a.py", []byte("v1"))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := fx.svc.Submit(ctx, 1, 10, "b.py", []byte("v2"))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.SubmissionNumber != 2 {
		t.Errorf("second number = %d, want 2", second.SubmissionNumber)
	}

	history, err := fx.svc.History(ctx, 1, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ID != first.ID || history[0].IsLatest {
		t.Error("first version should lead the history and no longer be latest")
	}
	if !history[1].IsLatest {
		t.Error("second version should be latest")
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	ctx := context.Background()
	okFile := []byte("print(1)")

	t.Run("MissingAssignment", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 99, 10, "a.py", okFile); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("InactiveAssignment", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		fx.assignments.Deactivate(ctx, 1)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", okFile); !errors.Is(err, ErrAssignmentInactive) {
			t.Errorf("got %v, want ErrAssignmentInactive", err)
		}
	})

	t.Run("NotEnrolled", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 1, 11, "a.py", okFile); !errors.Is(err, ErrNotEnrolled) {
			t.Errorf("got %v, want ErrNotEnrolled", err)
		}
	})

	t.Run("EnrollmentBeatsDeadline", func(t *testing.T) {
		// A non-enrolled student past the deadline sees the enrollment
		// failure, not the deadline.
		fx := newSubmissionFixture(t)
		a, _ := fx.assignments.GetByID(ctx, 1)
		a.Deadline = time.Now().Add(-time.Hour).UTC()
		fx.assignments.Update(ctx, a)
		if _, err := fx.svc.Submit(ctx, 1, 11, "a.py", okFile); !errors.Is(err, ErrNotEnrolled) {
			t.Errorf("got %v, want ErrNotEnrolled", err)
		}
	})

	t.Run("DeadlinePassed", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		a, _ := fx.assignments.GetByID(ctx, 1)
		a.Deadline = time.Now().Add(-time.Hour).UTC()
		fx.assignments.Update(ctx, a)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", okFile); !errors.Is(err, ErrDeadlinePassed) {
			t.Errorf("got %v, want ErrDeadlinePassed", err)
		}
	})

	t.Run("ResubmissionDenied", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", okFile); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		a, _ := fx.assignments.GetByID(ctx, 1)
		a.AllowResubmission = false
		fx.assignments.Update(ctx, a)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", okFile); !errors.Is(err, ErrResubmissionNotAllowed) {
			t.Errorf("got %v, want ErrResubmissionNotAllowed", err)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", nil); !errors.Is(err, ErrFileEmpty) {
			t.Errorf("got %v, want ErrFileEmpty", err)
		}
	})

	t.Run("WrongExtension", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.java", okFile); !errors.Is(err, ErrInvalidFileType) {
			t.Errorf("got %v, want ErrInvalidFileType", err)
		}
	})

	t.Run("ExtensionCaseInsensitive", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		if _, err := fx.svc.Submit(ctx, 1, 10, "A.PY", okFile); err != nil {
			t.Errorf("uppercase extension rejected: %v", err)
		}
	})
}

func TestSubmitSizeBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactLimit", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		data := make([]byte, model.MaxSubmissionBytes)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", data); err != nil {
			t.Errorf("file at the limit rejected: %v", err)
		}
	})

	t.Run("OneOver", func(t *testing.T) {
		fx := newSubmissionFixture(t)
		data := make([]byte, model.MaxSubmissionBytes+1)
		if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", data); !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("got %v, want ErrFileTooLarge", err)
		}
	})
}

func TestSubmitStorageFailure(t *testing.T) {
	fx := newSubmissionFixture(t)
	fx.files.putErr = errors.New("disk full")

	_, err := fx.svc.Submit(context.Background(), 1, 10, "a.py", []byte("x"))
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("got %v, want ErrStorageFailure", err)
	}
	if exists, _ := fx.submissions.Exists(context.Background(), 1, 10); exists {
		t.Error("no row should exist after a storage failure")
	}
}

func TestSubmitInsertFailureRollsBackFile(t *testing.T) {
	fx := newSubmissionFixture(t)
	fx.submissions.createErrs = []error{errors.New("connection reset")}

	_, err := fx.svc.Submit(context.Background(), 1, 10, "a.py", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(fx.files.removed) != 1 {
		t.Errorf("stored file not rolled back (removed=%d)", len(fx.files.removed))
	}
	if len(fx.files.objects) != 0 {
		t.Errorf("%d orphan objects left behind", len(fx.files.objects))
	}
}

func TestSubmitRaceHonorsResubmissionPolicy(t *testing.T) {
	// Two first-ever submissions race. The loser's insert hits the
	// submission-number constraint after the winner committed; with
	// resubmission disabled it must not retry into version 2.
	fx := newSubmissionFixture(t)
	ctx := context.Background()
	a, _ := fx.assignments.GetByID(ctx, 1)
	a.AllowResubmission = false
	fx.assignments.Update(ctx, a)
	fx.submissions.winnerOnCreate = true

	_, err := fx.svc.Submit(ctx, 1, 10, "loser.py", []byte("x"))
	if !errors.Is(err, ErrResubmissionNotAllowed) {
		t.Fatalf("racing submit = %v, want ErrResubmissionNotAllowed", err)
	}

	history, err := fx.svc.History(ctx, 1, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].SubmissionNumber != 1 {
		t.Errorf("winner row disturbed: %d rows", len(history))
	}
	if len(fx.files.removed) != 1 {
		t.Errorf("loser's stored file not rolled back (removed=%d)", len(fx.files.removed))
	}
}

func TestSubmitRaceRetriesWhenResubmissionAllowed(t *testing.T) {
	fx := newSubmissionFixture(t)
	fx.submissions.winnerOnCreate = true

	sub, err := fx.svc.Submit(context.Background(), 1, 10, "loser.py", []byte("x"))
	if err != nil {
		t.Fatalf("racing submit with resubmission allowed: %v", err)
	}
	if sub.SubmissionNumber != 2 {
		t.Errorf("number = %d, want 2 after losing the race", sub.SubmissionNumber)
	}
	if !sub.IsLatest {
		t.Error("retried submission should be latest")
	}
}

func TestSubmitRetriesUniqueViolation(t *testing.T) {
	fx := newSubmissionFixture(t)
	fx.submissions.createErrs = []error{uniqueViolation()}

	sub, err := fx.svc.Submit(context.Background(), 1, 10, "a.py", []byte("x"))
	if err != nil {
		t.Fatalf("Submit should retry a number conflict: %v", err)
	}
	if sub.SubmissionNumber != 1 {
		t.Errorf("number = %d, want 1", sub.SubmissionNumber)
	}
}

func TestDownloadURLAuthorization(t *testing.T) {
	fx := newSubmissionFixture(t)
	ctx := context.Background()

	sub, err := fx.svc.Submit(ctx, 1, 10, "a.py", []byte("x"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Submitting student.
	if _, err := fx.svc.DownloadURL(ctx, sub.ID, 10); err != nil {
		t.Errorf("owner download: %v", err)
	}
	// Teacher owning the class.
	if _, err := fx.svc.DownloadURL(ctx, sub.ID, 5); err != nil {
		t.Errorf("class teacher download: %v", err)
	}
	// Unrelated user.
	if _, err := fx.svc.DownloadURL(ctx, sub.ID, 77); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger download = %v, want ErrUnauthorized", err)
	}
	// Missing submission.
	if _, err := fx.svc.DownloadURL(ctx, 999, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing submission = %v, want ErrNotFound", err)
	}
}

func TestListByAssignmentLatestOnly(t *testing.T) {
	fx := newSubmissionFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, 1, 10, "a.py", []byte("v1")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fx.svc.Submit(ctx, 1, 10, "b.py", []byte("v2")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	all, err := fx.svc.ListByAssignment(ctx, 1, false)
	if err != nil {
		t.Fatalf("ListByAssignment: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all versions = %d, want 2", len(all))
	}

	latest, err := fx.svc.ListByAssignment(ctx, 1, true)
	if err != nil {
		t.Fatalf("ListByAssignment latest: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("latest = %d rows, want 1", len(latest))
	}
	if latest[0].SubmissionNumber != 2 {
		t.Errorf("latest number = %d, want 2", latest[0].SubmissionNumber)
	}

	if _, err := fx.svc.ListByAssignment(ctx, 99, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing assignment = %v, want ErrNotFound", err)
	}
}

func TestListByStudentEmpty(t *testing.T) {
	fx := newSubmissionFixture(t)

	subs, err := fx.svc.ListByStudent(context.Background(), 10, false)
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if subs == nil {
		t.Error("empty listing should be a non-nil slice")
	}
}
