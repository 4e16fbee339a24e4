package service

import (
	"context"
	"sort"
	"time"

	"github.com/classpad/classpad-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory fakes for the store interfaces. Unique-constraint behavior is
// simulated with pgconn.PgError code 23505 so the services' conflict paths
// see the same error shape as with a real database.

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

// ─── users ──────────────────────────────────────────────────────────

type fakeUserStore struct {
	users  map[int]*model.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int]*model.User), nextID: 1}
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return uniqueViolation()
		}
	}
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.nextID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

// ─── classes ────────────────────────────────────────────────────────

type fakeClassStore struct {
	classes map[int]*model.Class
	counts  map[int]int
	// enrolledBy backs ListByStudent: studentID to ordered class IDs.
	enrolledBy map[int][]int
	nextID     int
	// failNextCreate injects one unique violation on the next Create to
	// exercise the code-collision retry path.
	failNextCreate bool
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{
		classes:    make(map[int]*model.Class),
		counts:     make(map[int]int),
		enrolledBy: make(map[int][]int),
		nextID:     1,
	}
}

func (f *fakeClassStore) add(c model.Class) *model.Class {
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	} else if c.ID >= f.nextID {
		f.nextID = c.ID + 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	f.classes[c.ID] = &c
	return &c
}

func (f *fakeClassStore) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClassStore) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	for _, c := range f.classes {
		if c.ClassCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClassStore) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, c := range f.classes {
		if c.ClassCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClassStore) ListByTeacher(ctx context.Context, teacherID int, activeOnly bool) ([]model.Class, error) {
	var out []model.Class
	for _, c := range f.classes {
		if c.TeacherID != teacherID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeClassStore) ListByStudent(ctx context.Context, studentID int) ([]model.Class, error) {
	var out []model.Class
	for _, classID := range f.enrolledBy[studentID] {
		if c, ok := f.classes[classID]; ok && c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClassStore) Create(ctx context.Context, c *model.Class) error {
	if f.failNextCreate {
		f.failNextCreate = false
		return uniqueViolation()
	}
	for _, existing := range f.classes {
		if existing.ClassCode == c.ClassCode {
			return uniqueViolation()
		}
	}
	c.ID = f.nextID
	c.IsActive = true
	c.CreatedAt = time.Now()
	f.nextID++
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) Update(ctx context.Context, c *model.Class) error {
	if _, ok := f.classes[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) Deactivate(ctx context.Context, id int) (bool, error) {
	c, ok := f.classes[id]
	if !ok || !c.IsActive {
		return false, nil
	}
	c.IsActive = false
	return true, nil
}

func (f *fakeClassStore) StudentCount(ctx context.Context, classID int) (int, error) {
	return f.counts[classID], nil
}

// ─── enrollments ────────────────────────────────────────────────────

type enrollKey struct{ studentID, classID int }

type fakeEnrollmentStore struct {
	rows   map[enrollKey]*model.Enrollment
	nextID int
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{rows: make(map[enrollKey]*model.Enrollment), nextID: 1}
}

func (f *fakeEnrollmentStore) Exists(ctx context.Context, studentID, classID int) (bool, error) {
	_, ok := f.rows[enrollKey{studentID, classID}]
	return ok, nil
}

func (f *fakeEnrollmentStore) Create(ctx context.Context, e *model.Enrollment) error {
	key := enrollKey{e.StudentID, e.ClassID}
	if _, ok := f.rows[key]; ok {
		return uniqueViolation()
	}
	e.ID = f.nextID
	e.EnrolledAt = time.Now()
	f.nextID++
	cp := *e
	f.rows[key] = &cp
	return nil
}

func (f *fakeEnrollmentStore) Delete(ctx context.Context, studentID, classID int) (bool, error) {
	key := enrollKey{studentID, classID}
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeEnrollmentStore) ListStudents(ctx context.Context, classID int) ([]model.EnrolledStudent, error) {
	var out []model.EnrolledStudent
	for key, e := range f.rows {
		if key.classID == classID {
			out = append(out, model.EnrolledStudent{ID: key.studentID, EnrolledAt: e.EnrolledAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, nil
}

// ─── assignments ────────────────────────────────────────────────────

type fakeAssignmentStore struct {
	assignments map[int]*model.Assignment
	nextID      int
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: make(map[int]*model.Assignment), nextID: 1}
}

func (f *fakeAssignmentStore) add(a model.Assignment) *model.Assignment {
	if a.ID == 0 {
		a.ID = f.nextID
		f.nextID++
	} else if a.ID >= f.nextID {
		f.nextID = a.ID + 1
	}
	f.assignments[a.ID] = &a
	return &a
}

func (f *fakeAssignmentStore) GetByID(ctx context.Context, id int) (*model.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignmentStore) ListByClass(ctx context.Context, classID int) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range f.assignments {
		if a.ClassID == classID && a.IsActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAssignmentStore) Create(ctx context.Context, a *model.Assignment) error {
	a.ID = f.nextID
	a.IsActive = true
	a.CreatedAt = time.Now()
	f.nextID++
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeAssignmentStore) Update(ctx context.Context, a *model.Assignment) error {
	if _, ok := f.assignments[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeAssignmentStore) Deactivate(ctx context.Context, id int) (bool, error) {
	a, ok := f.assignments[id]
	if !ok || !a.IsActive {
		return false, nil
	}
	a.IsActive = false
	return true, nil
}

// ─── submissions ────────────────────────────────────────────────────

type fakeSubmissionStore struct {
	rows   []*model.Submission
	nextID int
	// createErr injects failures into Create; consumed one at a time.
	createErrs []error
	// winnerOnCreate simulates a concurrent first submission: the next
	// Create commits a competing row for the same pair and then reports
	// the unique violation the loser's insert hits.
	winnerOnCreate bool
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{nextID: 1}
}

// Create mirrors the transactional insert: next number for the pair,
// previous latest flipped off.
func (f *fakeSubmissionStore) Create(ctx context.Context, s *model.Submission) error {
	if f.winnerOnCreate {
		f.winnerOnCreate = false
		winner := &model.Submission{
			ID:               f.nextID,
			AssignmentID:     s.AssignmentID,
			StudentID:        s.StudentID,
			FileName:         "winner.py",
			FileKey:          "submissions/winner.py",
			FileSize:         1,
			SubmissionNumber: 1,
			IsLatest:         true,
			SubmittedAt:      time.Now(),
		}
		f.nextID++
		f.rows = append(f.rows, winner)
		return uniqueViolation()
	}
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}

	count := 0
	for _, row := range f.rows {
		if row.AssignmentID == s.AssignmentID && row.StudentID == s.StudentID {
			count++
			row.IsLatest = false
		}
	}

	s.ID = f.nextID
	s.SubmissionNumber = count + 1
	s.IsLatest = true
	s.SubmittedAt = time.Now()
	f.nextID++
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id int) (*model.Submission, error) {
	for _, row := range f.rows {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissionStore) Exists(ctx context.Context, assignmentID, studentID int) (bool, error) {
	for _, row := range f.rows {
		if row.AssignmentID == assignmentID && row.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionStore) History(ctx context.Context, assignmentID, studentID int) ([]model.Submission, error) {
	var out []model.Submission
	for _, row := range f.rows {
		if row.AssignmentID == assignmentID && row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionNumber < out[j].SubmissionNumber })
	return out, nil
}

func (f *fakeSubmissionStore) ListByAssignment(ctx context.Context, assignmentID int, latestOnly bool) ([]model.SubmissionWithStudent, error) {
	var out []model.SubmissionWithStudent
	for _, row := range f.rows {
		if row.AssignmentID != assignmentID {
			continue
		}
		if latestOnly && !row.IsLatest {
			continue
		}
		out = append(out, model.SubmissionWithStudent{Submission: *row})
	}
	return out, nil
}

func (f *fakeSubmissionStore) ListByStudent(ctx context.Context, studentID int, latestOnly bool) ([]model.SubmissionWithAssignment, error) {
	var out []model.SubmissionWithAssignment
	for _, row := range f.rows {
		if row.StudentID != studentID {
			continue
		}
		if latestOnly && !row.IsLatest {
			continue
		}
		out = append(out, model.SubmissionWithAssignment{Submission: *row})
	}
	return out, nil
}
