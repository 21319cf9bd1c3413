package photo_usecases

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
	"sync"
	"testing"

	"matchbox.io/application/repository"
	"matchbox.io/application/utils"
	"matchbox.io/entities"
	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/imaging"
	"matchbox.io/infrastructure/locker"
	"matchbox.io/infrastructure/photostore"
	relaytypes "matchbox.io/infrastructure/relay/types"
)

type memoryUsers struct {
	mu        sync.Mutex
	users     map[string]entities.User
	updateErr error
}

func newMemoryUsers(users ...entities.User) *memoryUsers {
	m := &memoryUsers{users: map[string]entities.User{}}
	for _, user := range users {
		m.users[user.ID] = user
	}
	return m
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *memoryUsers) Create(ctx context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) modify(id string, fn func(user *entities.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&user)
	m.users[id] = user
	return nil
}

func (m *memoryUsers) UpdatePhotos(ctx context.Context, id string, update entities.PhotoUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	return m.modify(id, func(user *entities.User) {
		user.SetSlots(update.Slots)
		if update.NeedPhoto != nil {
			user.NeedPhoto = *update.NeedPhoto
		}
	})
}

func (m *memoryUsers) SetGender(ctx context.Context, id string, gender string) error {
	return m.modify(id, func(user *entities.User) { user.Gender = &gender })
}

func (m *memoryUsers) ForEach(ctx context.Context, fn func(user *entities.User) error) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	for _, id := range ids {
		user, _ := m.FindByID(ctx, id)
		if user == nil {
			continue
		}
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryUsers) get(t *testing.T, id string) *entities.User {
	t.Helper()
	user, _ := m.FindByID(context.Background(), id)
	if user == nil {
		t.Fatalf("user %s missing", id)
	}
	return user
}

type fakeFaces struct {
	count int
	err   error
	calls int
}

func (f *fakeFaces) DetectFaces(ctx context.Context, image []byte) (int, error) {
	f.calls++
	return f.count, f.err
}

type fakeAuthenticity struct {
	result *types.AuthenticityResult
	err    error
	calls  int
}

func (f *fakeAuthenticity) CheckAuthenticity(ctx context.Context, image []byte) (*types.AuthenticityResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &types.AuthenticityResult{}, nil
	}
	return f.result, nil
}

type fakeGender struct {
	result *types.GenderResult
	err    error
	calls  int
}

func (f *fakeGender) ClassifyGender(ctx context.Context, image []byte) (*types.GenderResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRelay struct {
	echo      []byte
	sendErr   error
	fetchErr  error
	deleteErr error
	sent      [][]byte
	deleted   []relaytypes.MessageRef
}

func (r *fakeRelay) Send(ctx context.Context, name string, data []byte) (*relaytypes.Delivery, error) {
	r.sent = append(r.sent, data)
	if r.sendErr != nil {
		return nil, r.sendErr
	}
	return &relaytypes.Delivery{
		FileID:   "file-1",
		Messages: []relaytypes.MessageRef{{ChatID: -100, MessageID: len(r.sent)}},
	}, nil
}

func (r *fakeRelay) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return r.echo, nil
}

func (r *fakeRelay) Delete(ctx context.Context, ref relaytypes.MessageRef) error {
	r.deleted = append(r.deleted, ref)
	return r.deleteErr
}

type fakeScheduler struct {
	scheduled []relaytypes.MessageRef
}

func (s *fakeScheduler) ScheduleRelayCleanup(ctx context.Context, ref relaytypes.MessageRef) error {
	s.scheduled = append(s.scheduled, ref)
	return nil
}

type fakeFetcher struct {
	data   []byte
	status int
	err    error
}

func (f *fakeFetcher) Get(ctx context.Context, path string, maxBytes int64) (*[]byte, *int, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &f.data, &f.status, nil
}

var errVendor = errors.New("vendor exploded")

func jpegBytes(t *testing.T, shade uint8, quality int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{shade, uint8(x * 8), uint8(y * 8), 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type harness struct {
	pipeline     *Pipeline
	users        *memoryUsers
	store        *photostore.Store
	faces        *fakeFaces
	authenticity *fakeAuthenticity
	gender       *fakeGender
}

func newUser(id string, gender string) entities.User {
	user := entities.User{ID: id, NeedPhoto: true}
	if gender != "" {
		user.Gender = utils.GetStringPointer(gender)
	}
	return user
}

func newHarness(t *testing.T, users ...entities.User) *harness {
	t.Helper()
	h := &harness{
		users:        newMemoryUsers(users...),
		store:        photostore.New(t.TempDir()),
		faces:        &fakeFaces{count: 1},
		authenticity: &fakeAuthenticity{},
		gender:       &fakeGender{result: &types.GenderResult{Success: true, Gender: "Female", Confidence: 0.95}},
	}
	h.pipeline = &Pipeline{
		Users:        h.users,
		Store:        h.store,
		Normalizer:   imaging.NewNormalizer(95),
		Faces:        h.faces,
		Authenticity: h.authenticity,
		Gender:       h.gender,
		Locker:       locker.NewLocalLocker(),
		Policies:     DefaultPolicies(),
	}
	return h
}
