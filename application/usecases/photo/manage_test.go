package photo_usecases

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"matchbox.io/entities"
	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/network"
)

func fillSlots(t *testing.T, h *harness, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if _, err := h.pipeline.Process(context.Background(), Upload{UserID: "42", Data: jpegBytes(t, uint8(i), 90)}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDeletePhoto(t *testing.T) {
	h := newHarness(t, newUser("42", entities.GenderFemale))
	fillSlots(t, h, 2)

	user, err := h.pipeline.DeletePhoto(context.Background(), "42", "/data/img/42/Photo1.jpg?t=123")
	if err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if user.Photo1 != "" || user.Photo2 == "" || user.NeedPhoto {
		t.Errorf("unexpected user after delete %+v", user)
	}
	if _, err := os.Stat(h.store.SlotPath("42", 0)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file should be removed")
	}

	if _, err := h.pipeline.DeletePhoto(context.Background(), "42", "/data/img/42/Photo1.jpg"); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("expected ErrPhotoNotFound, got %v", err)
	}

	user, err = h.pipeline.DeletePhoto(context.Background(), "42", "/data/img/42/Photo2.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if !user.NeedPhoto || !h.users.get(t, "42").NeedPhoto {
		t.Errorf("needPhoto should be set once the last photo is gone")
	}
}

func TestClearPhotos(t *testing.T) {
	h := newHarness(t, newUser("42", entities.GenderFemale))
	fillSlots(t, h, 3)

	if _, err := h.pipeline.ClearPhotos(context.Background(), "42"); err != nil {
		t.Fatalf("ClearPhotos: %v", err)
	}
	user := h.users.get(t, "42")
	if user.OccupiedSlots() != 0 || !user.NeedPhoto {
		t.Errorf("unexpected user after clear %+v", user)
	}
	if _, err := os.Stat(h.store.UserDir("42")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("user directory should be removed")
	}
	if _, err := h.pipeline.ClearPhotos(context.Background(), "99"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestClearPhotosKeepsFilesWhenPersistFails(t *testing.T) {
	h := newHarness(t, newUser("42", entities.GenderFemale))
	fillSlots(t, h, 2)
	h.users.updateErr = errors.New("database is down")

	_, err := h.pipeline.ClearPhotos(context.Background(), "42")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if h.users.get(t, "42").OccupiedSlots() != 2 {
		t.Errorf("slots must be untouched, got %v", h.users.get(t, "42").Slots())
	}
	for _, name := range []string{"Photo1.jpg", "Photo2.jpg"} {
		if _, err := os.Stat(filepath.Join(h.store.UserDir("42"), name)); err != nil {
			t.Errorf("%s should survive a failed clear: %v", name, err)
		}
	}
}

func TestCheckPhotoURL(t *testing.T) {
	avatar := "https://t.me/i/userpic/320/avatar.jpg"
	tests := []struct {
		name          string
		faces         *fakeFaces
		wantFace      bool
		wantNeedPhoto bool
		wantPhoto1    string
	}{
		{name: "face found", faces: &fakeFaces{count: 1}, wantFace: true, wantPhoto1: avatar},
		{name: "no face", faces: &fakeFaces{count: 0}, wantNeedPhoto: true},
		{name: "detector unconfigured", faces: &fakeFaces{err: types.ErrServiceUnavailable}, wantNeedPhoto: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newUser("42", ""))
			h.pipeline.Faces = tt.faces
			h.pipeline.Fetcher = &fakeFetcher{data: jpegBytes(t, 1, 90), status: 200}

			result, err := h.pipeline.CheckPhotoURL(context.Background(), "42", avatar, entities.GenderMale)
			if err != nil {
				t.Fatalf("CheckPhotoURL: %v", err)
			}
			if result.FaceFound != tt.wantFace || result.NeedPhoto != tt.wantNeedPhoto {
				t.Errorf("result %+v", result)
			}
			user := h.users.get(t, "42")
			if user.DeclaredGender() != entities.GenderMale {
				t.Errorf("gender should be stored on first check, got %q", user.DeclaredGender())
			}
			if user.Photo1 != tt.wantPhoto1 || user.NeedPhoto != tt.wantNeedPhoto {
				t.Errorf("unexpected user %+v", user)
			}
		})
	}
}

func TestCheckPhotoURLRefusesInternalAddresses(t *testing.T) {
	var hits int32
	image := jpegBytes(t, 1, 90)
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write(image)
	}))
	defer internal.Close()

	h := newHarness(t, newUser("42", entities.GenderFemale))
	h.pipeline.Fetcher = &network.NetworkController{Client: network.NewPublicClient()}

	_, err := h.pipeline.CheckPhotoURL(context.Background(), "42", internal.URL+"/latest/meta-data", "")
	var downloadErr *DownloadError
	if !errors.As(err, &downloadErr) || !errors.Is(err, network.ErrForbiddenAddress) {
		t.Fatalf("expected a refused download, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("internal server must not be contacted")
	}
	if user := h.users.get(t, "42"); user.Photo1 != "" || !user.NeedPhoto {
		t.Errorf("nothing may be stored for a refused url, got %+v", user)
	}
}

func TestCheckPhotoURLKeepsGenderAndPhotos(t *testing.T) {
	user := newUser("42", entities.GenderFemale)
	h := newHarness(t, user)
	fillSlots(t, h, 1)
	h.pipeline.Fetcher = &fakeFetcher{data: jpegBytes(t, 1, 90), status: 200}

	if _, err := h.pipeline.CheckPhotoURL(context.Background(), "42", "https://example.com/a.jpg", entities.GenderMale); err != nil {
		t.Fatal(err)
	}
	stored := h.users.get(t, "42")
	if stored.DeclaredGender() != entities.GenderFemale {
		t.Errorf("gender must never be overwritten")
	}
	if stored.Photo1 != "/data/img/42/Photo1.jpg" {
		t.Errorf("existing photos must be kept, got %v", stored.Slots())
	}
}

func TestDownloadErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name    string
		url     string
		fetcher *fakeFetcher
	}{
		{name: "relative url", url: "/data/img/42/Photo1.jpg", fetcher: &fakeFetcher{status: 200}},
		{name: "file scheme", url: "file:///etc/passwd", fetcher: &fakeFetcher{status: 200}},
		{name: "not found", url: "https://example.com/a.jpg", fetcher: &fakeFetcher{status: 404, data: []byte("x")}},
		{name: "network", url: "https://example.com/a.jpg", fetcher: &fakeFetcher{err: errVendor}},
		{name: "empty body", url: "https://example.com/a.jpg", fetcher: &fakeFetcher{status: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.pipeline.Fetcher = tt.fetcher
			_, err := h.pipeline.Download(context.Background(), tt.url)
			var downloadErr *DownloadError
			if !errors.As(err, &downloadErr) {
				t.Errorf("expected DownloadError, got %v", err)
			}
		})
	}
}

func TestHealAll(t *testing.T) {
	stale := newUser("1", entities.GenderMale)
	stale.Photo1 = "/data/img/1/Photo1.jpg"
	stale.NeedPhoto = false
	healthy := newUser("2", entities.GenderFemale)
	healthy.Photo1 = "https://example.com/avatar.jpg"
	h := newHarness(t, stale, healthy)

	report, err := h.pipeline.HealAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 2 || report.Healed != 1 || report.Cleared != 1 {
		t.Errorf("report %+v", report)
	}
	user := h.users.get(t, "1")
	if user.Photo1 != "" || !user.NeedPhoto {
		t.Errorf("stale user after heal %+v", user)
	}
	if h.users.get(t, "2").Photo1 == "" {
		t.Errorf("foreign urls are never healed")
	}
}
