package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/sakif/lab-records/internal/apperror"
	"github.com/sakif/lab-records/internal/ident"
	"github.com/sakif/lab-records/internal/model"
	"github.com/sakif/lab-records/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. They keep copies,
// not pointers, so a test cannot reach into stored state by accident. err,
// when set, is returned from every call to simulate a database failure.

var errDatabaseDown = errors.New("database is down")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func assertKind(t *testing.T, err error, want apperror.Kind) {
	t.Helper()
	if got := apperror.KindOf(err); got != want {
		t.Fatalf("error = %v (kind %q), want kind %q", err, got, want)
	}
}

type fakeUserRepo struct {
	users map[string]model.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = ident.New()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	return &u, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User", username)
}

func (f *fakeUserRepo) UserExists(_ context.Context, username, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	u.PasswordHash = hash
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

type fakeMouseRepo struct {
	mice  map[string]model.Mouse
	order []string // insertion order, oldest first
	err   error
}

func newFakeMouseRepo() *fakeMouseRepo {
	return &fakeMouseRepo{mice: make(map[string]model.Mouse)}
}

var _ repository.MouseRepository = (*fakeMouseRepo)(nil)

func (f *fakeMouseRepo) CreateMouse(_ context.Context, m *model.Mouse) error {
	if f.err != nil {
		return f.err
	}
	m.ID = ident.New()
	f.mice[m.ID] = *m
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeMouseRepo) MouseNameTaken(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, m := range f.mice {
		if m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMouseRepo) GetMouseByID(_ context.Context, id string) (*model.Mouse, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.mice[id]
	if !ok {
		return nil, apperror.NotFound("Mouse", id)
	}
	return &m, nil
}

func (f *fakeMouseRepo) GetMouseByName(_ context.Context, name string) (*model.Mouse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.mice {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, apperror.NotFound("Mouse", name)
}

func (f *fakeMouseRepo) ListMice(_ context.Context, filter repository.MouseFilter) ([]model.Mouse, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []model.Mouse{}
	for i := len(f.order) - 1; i >= 0; i-- {
		m, ok := f.mice[f.order[i]]
		if !ok {
			continue
		}
		if filter.LabID != "" && (m.LabID == nil || *m.LabID != filter.LabID) {
			continue
		}
		if filter.UserID != "" && m.UserID != filter.UserID {
			continue
		}
		if filter.AvailableOnly && !m.Available {
			continue
		}
		result = append(result, m)
	}
	if filter.Order == repository.OrderByName {
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	}
	return result, nil
}

func (f *fakeMouseRepo) UpdateMouseAvailability(_ context.Context, id string, available bool) (*model.Mouse, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.mice[id]
	if !ok {
		return nil, apperror.NotFound("Mouse", id)
	}
	m.Available = available
	f.mice[id] = m
	return &m, nil
}

func (f *fakeMouseRepo) UpdateMouseNotes(_ context.Context, id, notes string) (*model.Mouse, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.mice[id]
	if !ok {
		return nil, apperror.NotFound("Mouse", id)
	}
	m.Notes = &notes
	f.mice[id] = m
	return &m, nil
}

func (f *fakeMouseRepo) DeleteMouse(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.mice[id]; !ok {
		return false, nil
	}
	delete(f.mice, id)
	return true, nil
}

type fakeLogEntryRepo struct {
	entries map[string]model.LogEntry
	order   []string
	err     error
}

func newFakeLogEntryRepo() *fakeLogEntryRepo {
	return &fakeLogEntryRepo{entries: make(map[string]model.LogEntry)}
}

var _ repository.LogEntryRepository = (*fakeLogEntryRepo)(nil)

func (f *fakeLogEntryRepo) CreateLogEntry(_ context.Context, e *model.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	e.ID = ident.New()
	f.entries[e.ID] = *e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeLogEntryRepo) GetLogEntry(_ context.Context, id string) (*model.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.NotFound("Log entry", id)
	}
	return &e, nil
}

func (f *fakeLogEntryRepo) ListLogEntries(_ context.Context, filter repository.LogEntryFilter) ([]model.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []model.LogEntry{}
	for i := len(f.order) - 1; i >= 0; i-- {
		e, ok := f.entries[f.order[i]]
		if !ok {
			continue
		}
		if filter.LabID != "" && e.LabID != filter.LabID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.MouseID != "" && !mentions(e, filter.MouseID) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func mentions(e model.LogEntry, mouseID string) bool {
	for _, ref := range e.Mice {
		if ref.ID == mouseID {
			return true
		}
	}
	return false
}

func (f *fakeLogEntryRepo) UpdateLogEntryContent(_ context.Context, id, content string) (*model.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.NotFound("Log entry", id)
	}
	e.Content = content
	f.entries[id] = e
	return &e, nil
}

func (f *fakeLogEntryRepo) DeleteLogEntry(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.entries[id]; !ok {
		return false, nil
	}
	delete(f.entries, id)
	return true, nil
}

type fakeLabRepo struct {
	labs      map[string]model.Lab
	protocols map[string]model.Protocol
	err       error
}

func newFakeLabRepo() *fakeLabRepo {
	return &fakeLabRepo{
		labs:      make(map[string]model.Lab),
		protocols: make(map[string]model.Protocol),
	}
}

var _ repository.LabRepository = (*fakeLabRepo)(nil)

func (f *fakeLabRepo) CreateLab(_ context.Context, lab *model.Lab) error {
	if f.err != nil {
		return f.err
	}
	lab.ID = ident.New()
	f.labs[lab.ID] = *lab
	return nil
}

func (f *fakeLabRepo) GetLab(_ context.Context, id string) (*model.Lab, error) {
	if f.err != nil {
		return nil, f.err
	}
	lab, ok := f.labs[id]
	if !ok {
		return nil, apperror.NotFound("Lab", id)
	}
	return &lab, nil
}

func (f *fakeLabRepo) ListLabs(_ context.Context) ([]model.Lab, error) {
	if f.err != nil {
		return nil, f.err
	}
	labs := []model.Lab{}
	for _, lab := range f.labs {
		labs = append(labs, lab)
	}
	sort.Slice(labs, func(i, j int) bool { return labs[i].Name < labs[j].Name })
	return labs, nil
}

func (f *fakeLabRepo) CreateProtocol(_ context.Context, p *model.Protocol) error {
	if f.err != nil {
		return f.err
	}
	p.ID = ident.New()
	f.protocols[p.ID] = *p
	return nil
}

func (f *fakeLabRepo) GetProtocol(_ context.Context, id string) (*model.Protocol, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.protocols[id]
	if !ok {
		return nil, apperror.NotFound("Protocol", id)
	}
	return &p, nil
}
