// Package memstore is an in-memory storage.Store for tests. Tx snapshots the
// whole state and restores it when the callback fails.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

type pair struct{ a, b uint }

type state struct {
	seq         uint
	users       map[uint]models.User
	courses     map[uint]models.Course
	lessons     map[uint]models.Lesson
	requests    map[uint]models.EnrollRequest
	enrollments map[pair]models.Enrollment
	progress    map[pair]models.UserProgress
	slides      map[uint]models.HeroSlide
	activity    []models.ActivityLog
}

func newState() *state {
	return &state{
		users:       map[uint]models.User{},
		courses:     map[uint]models.Course{},
		lessons:     map[uint]models.Lesson{},
		requests:    map[uint]models.EnrollRequest{},
		enrollments: map[pair]models.Enrollment{},
		progress:    map[pair]models.UserProgress{},
		slides:      map[uint]models.HeroSlide{},
	}
}

func (s *state) next() uint {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := &state{seq: s.seq, activity: append([]models.ActivityLog(nil), s.activity...)}
	c.users = copyMap(s.users)
	c.courses = copyMap(s.courses)
	c.lessons = copyMap(s.lessons)
	c.requests = copyMap(s.requests)
	c.enrollments = copyMap(s.enrollments)
	c.progress = copyMap(s.progress)
	c.slides = copyMap(s.slides)
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store implements storage.Store in memory.
type Store struct {
	mu   *sync.Mutex
	st   **state
	inTx bool

	// FailOn makes the named method return the error, for rollback tests.
	FailOn map[string]error
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, st: &st, FailOn: map[string]error{}}
}

func (s *Store) do(method string, fn func(d *state) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.FailOn[method]; err != nil {
		return err
	}
	return fn(*s.st)
}

func (s *Store) Tx(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := (*s.st).clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, FailOn: s.FailOn}
	if err := fn(tx); err != nil {
		*s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.do("Ping", func(*state) error { return nil })
}

func (s *Store) LogActivity(ctx context.Context, entry models.ActivityLog) error {
	return s.do("LogActivity", func(d *state) error {
		entry.ID = d.next()
		entry.CreatedAt = time.Now()
		d.activity = append(d.activity, entry)
		return nil
	})
}

// Activity returns a copy of the logged entries.
func (s *Store) Activity() []models.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityLog(nil), (*s.st).activity...)
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.do("CreateUser", func(d *state) error {
		for _, other := range d.users {
			if strings.EqualFold(other.Username, u.Username) || strings.EqualFold(other.Email, u.Email) {
				return storage.ErrDuplicate
			}
		}
		u.ID = d.next()
		u.CreatedAt = time.Now()
		d.users[u.ID] = *u
		return nil
	})
}

func (s *Store) UserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.do("UserByID", func(d *state) error {
		var ok bool
		if u, ok = d.users[id]; !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	return u, err
}

func (s *Store) UserByLogin(ctx context.Context, login string) (models.User, error) {
	var u models.User
	login = strings.TrimSpace(login)
	err := s.do("UserByLogin", func(d *state) error {
		for _, candidate := range d.users {
			if candidate.Username == login || candidate.Email == login {
				u = candidate
				return nil
			}
		}
		return storage.ErrNotFound
	})
	return u, err
}

func (s *Store) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.do("UpdatePassword", func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		u.Password = hash
		d.users[id] = u
		return nil
	})
}

func (s *Store) SaveOAuthUser(ctx context.Context, info models.User) (models.User, error) {
	var out models.User
	err := s.do("SaveOAuthUser", func(d *state) error {
		for id, u := range d.users {
			sameGoogle := u.GoogleID != nil && info.GoogleID != nil && *u.GoogleID == *info.GoogleID
			if sameGoogle || u.Email == info.Email {
				u.GoogleID = info.GoogleID
				if info.FullName != "" {
					u.FullName = info.FullName
				}
				d.users[id] = u
				out = u
				return nil
			}
		}
		info.ID = d.next()
		info.IsAdmin = false
		if info.Username == "" {
			info.Username = info.Email
		}
		d.users[info.ID] = info
		out = info
		return nil
	})
	return out, err
}

// Courses

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	return s.do("CreateCourse", func(d *state) error {
		c.ID = d.next()
		c.CreatedAt = time.Now()
		stored := *c
		stored.Lessons = nil
		d.courses[c.ID] = stored
		return nil
	})
}

func (s *Store) UpdateCourse(ctx context.Context, c *models.Course) error {
	return s.do("UpdateCourse", func(d *state) error {
		old, ok := d.courses[c.ID]
		if !ok {
			return storage.ErrNotFound
		}
		old.Title, old.ShortDesc, old.FullDesc, old.Image = c.Title, c.ShortDesc, c.FullDesc, c.Image
		d.courses[c.ID] = old
		return nil
	})
}

func (s *Store) DeleteCourse(ctx context.Context, id uint) error {
	return s.do("DeleteCourse", func(d *state) error {
		if _, ok := d.courses[id]; !ok {
			return storage.ErrNotFound
		}
		for lid, l := range d.lessons {
			if l.CourseID != id {
				continue
			}
			for k := range d.progress {
				if k.b == lid {
					delete(d.progress, k)
				}
			}
			delete(d.lessons, lid)
		}
		for k := range d.enrollments {
			if k.b == id {
				delete(d.enrollments, k)
			}
		}
		for rid, r := range d.requests {
			if r.CourseID == id {
				delete(d.requests, rid)
			}
		}
		delete(d.courses, id)
		return nil
	})
}

func (s *Store) CourseByID(ctx context.Context, id uint) (models.Course, error) {
	var c models.Course
	err := s.do("CourseByID", func(d *state) error {
		var ok bool
		if c, ok = d.courses[id]; !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	return c, err
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	err := s.do("ListCourses", func(d *state) error {
		out = values(d.courses)
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		return nil
	})
	return out, err
}

func (s *Store) CoursesNotApproved(ctx context.Context, userID uint) ([]models.Course, error) {
	var out []models.Course
	err := s.do("CoursesNotApproved", func(d *state) error {
		for _, c := range sorted(d.courses, func(c models.Course) uint { return c.ID }) {
			if !d.enrollments[pair{userID, c.ID}].Approved {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) ApprovedCourses(ctx context.Context, userID uint) ([]models.Course, error) {
	var out []models.Course
	err := s.do("ApprovedCourses", func(d *state) error {
		for _, c := range sorted(d.courses, func(c models.Course) uint { return c.ID }) {
			if d.enrollments[pair{userID, c.ID}].Approved {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

// Lessons

func (s *Store) CreateLesson(ctx context.Context, l *models.Lesson) error {
	return s.do("CreateLesson", func(d *state) error {
		if _, ok := d.courses[l.CourseID]; !ok {
			return storage.ErrNotFound
		}
		l.ID = d.next()
		l.CreatedAt = time.Now()
		d.lessons[l.ID] = *l
		return nil
	})
}

func (s *Store) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	return s.do("UpdateLesson", func(d *state) error {
		old, ok := d.lessons[l.ID]
		if !ok || old.CourseID != l.CourseID {
			return storage.ErrNotFound
		}
		l.CreatedAt = old.CreatedAt
		d.lessons[l.ID] = *l
		return nil
	})
}

func (s *Store) DeleteLesson(ctx context.Context, id uint) error {
	return s.do("DeleteLesson", func(d *state) error {
		if _, ok := d.lessons[id]; !ok {
			return storage.ErrNotFound
		}
		for k := range d.progress {
			if k.b == id {
				delete(d.progress, k)
			}
		}
		delete(d.lessons, id)
		return nil
	})
}

func (s *Store) LessonByID(ctx context.Context, id uint) (models.Lesson, error) {
	var l models.Lesson
	err := s.do("LessonByID", func(d *state) error {
		var ok bool
		if l, ok = d.lessons[id]; !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	return l, err
}

func (s *Store) LessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var out []models.Lesson
	err := s.do("LessonsByCourse", func(d *state) error {
		out = lessonsOf(d, courseID)
		return nil
	})
	return out, err
}

func (s *Store) CountLessons(ctx context.Context, courseID uint) (int, error) {
	var n int
	err := s.do("CountLessons", func(d *state) error {
		n = len(lessonsOf(d, courseID))
		return nil
	})
	return n, err
}

func lessonsOf(d *state, courseID uint) []models.Lesson {
	var out []models.Lesson
	for _, l := range d.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Enrollment

func (s *Store) EnrollRequestByID(ctx context.Context, id uint) (models.EnrollRequest, error) {
	var r models.EnrollRequest
	err := s.do("EnrollRequestByID", func(d *state) error {
		var ok bool
		if r, ok = d.requests[id]; !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	return r, err
}

func (s *Store) EnrollRequestFor(ctx context.Context, userID, courseID uint) (models.EnrollRequest, error) {
	var r models.EnrollRequest
	err := s.do("EnrollRequestFor", func(d *state) error {
		for _, candidate := range d.requests {
			if candidate.UserID == userID && candidate.CourseID == courseID {
				r = candidate
				return nil
			}
		}
		return storage.ErrNotFound
	})
	return r, err
}

func (s *Store) CreateEnrollRequest(ctx context.Context, r *models.EnrollRequest) error {
	return s.do("CreateEnrollRequest", func(d *state) error {
		for _, other := range d.requests {
			if other.UserID == r.UserID && other.CourseID == r.CourseID {
				return storage.ErrDuplicate
			}
		}
		if r.Status == "" {
			r.Status = models.StatusPending
		}
		r.ID = d.next()
		r.CreatedAt = time.Now()
		d.requests[r.ID] = *r
		return nil
	})
}

func (s *Store) SetEnrollRequestStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	return s.do("SetEnrollRequestStatus", func(d *state) error {
		r, ok := d.requests[id]
		if !ok {
			return storage.ErrNotFound
		}
		r.Status = status
		d.requests[id] = r
		return nil
	})
}

func (s *Store) DeleteEnrollRequest(ctx context.Context, id uint) error {
	return s.do("DeleteEnrollRequest", func(d *state) error {
		if _, ok := d.requests[id]; !ok {
			return storage.ErrNotFound
		}
		delete(d.requests, id)
		return nil
	})
}

func (s *Store) PendingEnrollRequests(ctx context.Context) ([]models.PendingRequest, error) {
	var out []models.PendingRequest
	err := s.do("PendingEnrollRequests", func(d *state) error {
		reqs := values(d.requests)
		sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID > reqs[j].ID })
		for _, r := range reqs {
			if r.Status != models.StatusPending && r.Status != "" {
				continue
			}
			u, uok := d.users[r.UserID]
			c, cok := d.courses[r.CourseID]
			if !uok || !cok {
				continue
			}
			out = append(out, models.PendingRequest{
				ID:          r.ID,
				UserID:      u.ID,
				CourseID:    c.ID,
				Username:    u.Username,
				FullName:    u.FullName,
				Email:       u.Email,
				CourseTitle: c.Title,
				CreatedAt:   r.CreatedAt,
			})
		}
		return nil
	})
	return out, err
}

func (s *Store) ApproveEnrollment(ctx context.Context, userID, courseID uint) error {
	return s.do("ApproveEnrollment", func(d *state) error {
		k := pair{userID, courseID}
		e, ok := d.enrollments[k]
		if !ok {
			e = models.Enrollment{ID: d.next(), UserID: userID, CourseID: courseID}
		}
		e.Approved = true
		d.enrollments[k] = e
		return nil
	})
}

func (s *Store) IsApproved(ctx context.Context, userID, courseID uint) (bool, error) {
	var ok bool
	err := s.do("IsApproved", func(d *state) error {
		ok = d.enrollments[pair{userID, courseID}].Approved
		return nil
	})
	return ok, err
}

func (s *Store) ApprovedUserIDs(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := s.do("ApprovedUserIDs", func(d *state) error {
		for k, e := range d.enrollments {
			if k.b == courseID && e.Approved {
				ids = append(ids, k.a)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return nil
	})
	return ids, err
}

// Enrollments returns every enrollment row for the pair, used to check uniqueness.
func (s *Store) Enrollments(userID, courseID uint) []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Enrollment
	for k, e := range (*s.st).enrollments {
		if k.a == userID && k.b == courseID {
			out = append(out, e)
		}
	}
	return out
}

// Progress

func (s *Store) SeedProgress(ctx context.Context, rows []models.UserProgress) (int, error) {
	var n int
	err := s.do("SeedProgress", func(d *state) error {
		for _, row := range rows {
			k := pair{row.UserID, row.LessonID}
			if _, ok := d.progress[k]; ok {
				continue
			}
			d.progress[k] = models.UserProgress{ID: d.next(), UserID: row.UserID, LessonID: row.LessonID}
			n++
		}
		return nil
	})
	return n, err
}

func (s *Store) MarkCompleted(ctx context.Context, userID, lessonID uint) error {
	return s.do("MarkCompleted", func(d *state) error {
		k := pair{userID, lessonID}
		p, ok := d.progress[k]
		if !ok {
			p = models.UserProgress{ID: d.next(), UserID: userID, LessonID: lessonID}
		}
		p.Completed = true
		d.progress[k] = p
		return nil
	})
}

func (s *Store) CountCompleted(ctx context.Context, userID, courseID uint) (int, error) {
	var n int
	err := s.do("CountCompleted", func(d *state) error {
		for _, l := range lessonsOf(d, courseID) {
			if d.progress[pair{userID, l.ID}].Completed {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *Store) ProgressRows(ctx context.Context, userID, courseID uint) (map[uint]models.UserProgress, error) {
	out := map[uint]models.UserProgress{}
	err := s.do("ProgressRows", func(d *state) error {
		for _, l := range lessonsOf(d, courseID) {
			if p, ok := d.progress[pair{userID, l.ID}]; ok {
				out[l.ID] = p
			}
		}
		return nil
	})
	return out, err
}

// Slides

func (s *Store) CreateSlide(ctx context.Context, sl *models.HeroSlide) error {
	return s.do("CreateSlide", func(d *state) error {
		sl.ID = d.next()
		d.slides[sl.ID] = *sl
		return nil
	})
}

func (s *Store) UpdateSlide(ctx context.Context, sl *models.HeroSlide) error {
	return s.do("UpdateSlide", func(d *state) error {
		if _, ok := d.slides[sl.ID]; !ok {
			return storage.ErrNotFound
		}
		d.slides[sl.ID] = *sl
		return nil
	})
}

func (s *Store) DeleteSlide(ctx context.Context, id uint) error {
	return s.do("DeleteSlide", func(d *state) error {
		if _, ok := d.slides[id]; !ok {
			return storage.ErrNotFound
		}
		delete(d.slides, id)
		return nil
	})
}

func (s *Store) SlideByID(ctx context.Context, id uint) (models.HeroSlide, error) {
	var sl models.HeroSlide
	err := s.do("SlideByID", func(d *state) error {
		var ok bool
		if sl, ok = d.slides[id]; !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	return sl, err
}

func (s *Store) ListSlides(ctx context.Context) ([]models.HeroSlide, error) {
	var out []models.HeroSlide
	err := s.do("ListSlides", func(d *state) error {
		out = sorted(d.slides, func(sl models.HeroSlide) uint { return sl.ID })
		return nil
	})
	return out, err
}

func values[V any](m map[uint]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func sorted[V any](m map[uint]V, id func(V) uint) []V {
	out := values(m)
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
