package photo_usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"matchbox.io/application/utils"
	"matchbox.io/entities"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/photostore"
)

// Download fetches a remote image for the url based entry points.
func (p *Pipeline) Download(ctx context.Context, fileURL string) ([]byte, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &DownloadError{URL: fileURL, Err: errors.New("only absolute http(s) urls are supported")}
	}
	if p.Fetcher == nil {
		return nil, &DownloadError{URL: fileURL, Err: errors.New("no http client configured")}
	}
	response, statusCode, err := p.Fetcher.Get(ctx, fileURL, p.MaxDownloadBytes)
	if err != nil {
		return nil, &DownloadError{URL: fileURL, Err: err}
	}
	if statusCode == nil || *statusCode != 200 {
		return nil, &DownloadError{URL: fileURL, Err: fmt.Errorf("unexpected status %v", statusCode)}
	}
	if response == nil || len(*response) == 0 {
		return nil, &DownloadError{URL: fileURL, Err: ErrEmptyImage}
	}
	return *response, nil
}

func (p *Pipeline) lockedUser(ctx context.Context, userID string) (*entities.User, func(), error) {
	if err := photostore.ValidateUserID(userID); err != nil {
		return nil, nil, ErrInvalidUserID
	}
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	user, err := p.Users.FindByID(ctx, userID)
	if err != nil {
		unlock()
		return nil, nil, &StorageError{Op: "load user", Err: err}
	}
	if user == nil {
		unlock()
		return nil, nil, ErrUserNotFound
	}
	return user, unlock, nil
}

func sameURL(store *photostore.Store, userID string, a string, b string) bool {
	if a == b {
		return true
	}
	pathA, okA := store.LocalPath(userID, a)
	pathB, okB := store.LocalPath(userID, b)
	return okA && okB && pathA == pathB
}

// DeletePhoto clears the slot holding photoURL and removes its file. The
// user needs a photo again once no slot is left.
func (p *Pipeline) DeletePhoto(ctx context.Context, userID string, photoURL string) (*entities.User, error) {
	user, unlock, err := p.lockedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	slots := user.Slots()
	found := -1
	for i, slot := range slots {
		if slot != "" && sameURL(p.Store, userID, slot, photoURL) {
			found = i
			break
		}
	}
	if found < 0 {
		return nil, ErrPhotoNotFound
	}
	removed := slots[found]
	slots[found] = ""

	update := entities.PhotoUpdate{Slots: slots}
	user.SetSlots(slots)
	if user.OccupiedSlots() == 0 {
		update.NeedPhoto = utils.GetBooleanPointer(true)
		user.NeedPhoto = true
	}
	if err := p.Users.UpdatePhotos(ctx, userID, update); err != nil {
		return nil, &StorageError{Op: "persist slots", Err: err}
	}

	if err := p.Store.Remove(userID, removed); err != nil && !errors.Is(err, photostore.ErrNotLocal) {
		// the slot is already cleared, an orphan file is overwritten later
		logger.Warning("could not delete photo file", logger.LoggerOptions{
			Key:  "userId",
			Data: userID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
	}
	return user, nil
}

// ClearPhotos removes every stored photo of the user, archive included.
func (p *Pipeline) ClearPhotos(ctx context.Context, userID string) (*entities.User, error) {
	user, unlock, err := p.lockedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	empty := [3]string{}
	if err := p.Users.UpdatePhotos(ctx, userID, entities.PhotoUpdate{
		Slots:     empty,
		NeedPhoto: utils.GetBooleanPointer(true),
	}); err != nil {
		return nil, &StorageError{Op: "persist slots", Err: err}
	}
	user.SetSlots(empty)
	user.NeedPhoto = true

	// slots are already empty, leftover files are swept by the next Clear or overwritten
	if err := p.Store.Clear(userID); err != nil {
		logger.Warning("could not clear photo directory", logger.LoggerOptions{
			Key:  "userId",
			Data: userID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
	}
	return user, nil
}

type CheckResult struct {
	FaceFound bool
	NeedPhoto bool
}

// CheckPhotoURL runs the face check against a remote image, typically the
// messenger avatar during onboarding. A found face clears needPhoto and the
// url becomes the first photo of a user without photos.
func (p *Pipeline) CheckPhotoURL(ctx context.Context, userID string, photoURL string, gender string) (*CheckResult, error) {
	if err := photostore.ValidateUserID(userID); err != nil {
		return nil, ErrInvalidUserID
	}
	user, err := p.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "load user", Err: err}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.DeclaredGender() == "" && (gender == entities.GenderMale || gender == entities.GenderFemale) {
		if err := p.Users.SetGender(ctx, userID, gender); err != nil {
			return nil, &StorageError{Op: "persist gender", Err: err}
		}
	}

	data, err := p.Download(ctx, photoURL)
	if err != nil {
		return nil, err
	}
	image := p.Normalizer.Normalize(data).Data

	faceFound, err := p.checkFace(ctx, image)
	if err != nil {
		var rejection *RejectionError
		if errors.As(err, &rejection) {
			return &CheckResult{NeedPhoto: true}, nil
		}
		return nil, err
	}
	if !faceFound {
		// detector skipped, the flag stays as it was
		return &CheckResult{NeedPhoto: user.NeedPhoto}, nil
	}

	user, unlock, err := p.lockedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	slots, _ := p.Store.Heal(userID, user.Slots())
	if slots == [3]string{} {
		slots[0] = photoURL
	}
	if err := p.Users.UpdatePhotos(ctx, userID, entities.PhotoUpdate{
		Slots:     slots,
		NeedPhoto: utils.GetBooleanPointer(false),
	}); err != nil {
		return nil, &StorageError{Op: "persist slots", Err: err}
	}
	return &CheckResult{FaceFound: true, NeedPhoto: false}, nil
}

type HealReport struct {
	Scanned int
	Healed  int
	Cleared int
}

// HealAll clears stale slot pointers of every user.
func (p *Pipeline) HealAll(ctx context.Context) (*HealReport, error) {
	report := &HealReport{}
	err := p.Users.ForEach(ctx, func(user *entities.User) error {
		report.Scanned++
		if photostore.ValidateUserID(user.ID) != nil {
			return nil
		}
		if _, cleared := p.Store.Heal(user.ID, user.Slots()); len(cleared) == 0 {
			return nil
		}

		// recheck under the lock, an upload may have moved files meanwhile
		current, unlock, err := p.lockedUser(ctx, user.ID)
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		defer unlock()
		slots, cleared := p.Store.Heal(user.ID, current.Slots())
		if len(cleared) == 0 {
			return nil
		}
		update := entities.PhotoUpdate{Slots: slots}
		if slots == [3]string{} {
			update.NeedPhoto = utils.GetBooleanPointer(true)
		}
		if err := p.Users.UpdatePhotos(ctx, user.ID, update); err != nil {
			return &StorageError{Op: "persist slots", Err: err}
		}
		report.Healed++
		report.Cleared += len(cleared)
		return nil
	})
	if err != nil {
		return report, err
	}
	logger.Info("photo slot heal completed", logger.LoggerOptions{
		Key:  "scanned",
		Data: report.Scanned,
	}, logger.LoggerOptions{
		Key:  "healed",
		Data: report.Healed,
	}, logger.LoggerOptions{
		Key:  "cleared",
		Data: report.Cleared,
	})
	return report, nil
}
