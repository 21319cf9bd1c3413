package photo_usecases

import (
	"context"
	"errors"

	"matchbox.io/application/constants"
	"matchbox.io/application/repository"
	"matchbox.io/application/utils"
	"matchbox.io/entities"
	"matchbox.io/infrastructure/biometric/types"
	"matchbox.io/infrastructure/imaging"
	"matchbox.io/infrastructure/locker"
	"matchbox.io/infrastructure/logger"
	"matchbox.io/infrastructure/photostore"
)

// Fetcher downloads remote images. network.NetworkController satisfies it.
type Fetcher interface {
	Get(ctx context.Context, path string, maxBytes int64) (*[]byte, *int, error)
}

type Upload struct {
	UserID   string
	Data     []byte
	FileName string
	// multipart, relay, base64...; only logged
	Source string
}

type Outcome struct {
	URL          string
	Slot         photostore.Slot
	User         *entities.User
	FaceVerified bool
}

// Processor runs an upload end to end.
type Processor interface {
	Process(ctx context.Context, upload Upload) (*Outcome, error)
}

// Pipeline checks a photo and stores it in the next free slot of the user.
type Pipeline struct {
	Users        repository.UserRepository
	Store        *photostore.Store
	Normalizer   *imaging.Normalizer
	Faces        types.FaceDetector
	Authenticity types.AuthenticityChecker
	Gender       types.GenderClassifier
	Locker       locker.Locker
	Fetcher      Fetcher
	Policies     Policies

	// mismatches below this vendor confidence are let through
	GenderMinConfidence float64
	MaxDownloadBytes    int64
}

func (p *Pipeline) Process(ctx context.Context, upload Upload) (*Outcome, error) {
	if err := photostore.ValidateUserID(upload.UserID); err != nil {
		return nil, ErrInvalidUserID
	}
	if len(upload.Data) == 0 {
		return nil, ErrEmptyImage
	}
	user, err := p.Users.FindByID(ctx, upload.UserID)
	if err != nil {
		return nil, &StorageError{Op: "load user", Err: err}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	declared := user.DeclaredGender()
	if declared == "" {
		return nil, ErrGenderRequired
	}

	normalized := p.Normalizer.Normalize(upload.Data)
	image := normalized.Data

	faceVerified, err := p.checkFace(ctx, image)
	if err != nil {
		return nil, p.logVerdict(upload, err)
	}
	if err := p.checkAuthenticity(ctx, image); err != nil {
		return nil, p.logVerdict(upload, err)
	}
	if err := p.checkGender(ctx, image, declared); err != nil {
		return nil, p.logVerdict(upload, err)
	}

	outcome, err := p.store(ctx, upload.UserID, image, faceVerified)
	if err != nil {
		return nil, err
	}
	logger.Info("photo stored", logger.LoggerOptions{
		Key:  "userId",
		Data: upload.UserID,
	}, logger.LoggerOptions{
		Key:  "slot",
		Data: outcome.Slot,
	}, logger.LoggerOptions{
		Key:  "source",
		Data: upload.Source,
	}, logger.LoggerOptions{
		Key:  "faceVerified",
		Data: faceVerified,
	})
	return outcome, nil
}

func (p *Pipeline) logVerdict(upload Upload, err error) error {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		logger.Info("photo rejected", logger.LoggerOptions{
			Key:  "userId",
			Data: upload.UserID,
		}, logger.LoggerOptions{
			Key:  "check",
			Data: rejection.Check,
		}, logger.LoggerOptions{
			Key:  "reason",
			Data: rejection.Reason,
		})
	}
	return err
}

// applyPolicy turns a vendor error into the configured outcome. A nil
// return means the check is skipped.
func (p *Pipeline) applyPolicy(check string, err error, rejection *RejectionError) error {
	unavailable := errors.Is(err, types.ErrServiceUnavailable)
	policy := p.Policies.For(check)
	action := policy.OnError
	if unavailable {
		action = policy.OnUnavailable
	}
	switch action {
	case ActionSkip:
		logger.Warning("moderation check skipped", logger.LoggerOptions{
			Key:  "check",
			Data: check,
		}, logger.LoggerOptions{
			Key:  "unavailable",
			Data: unavailable,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil
	case ActionReject:
		rejection.Reason = err.Error()
		return rejection
	default:
		return &ServiceError{Service: check, Unavailable: unavailable, Err: err}
	}
}

func noFace(reason string) *RejectionError {
	return &RejectionError{Check: CheckFace, Reason: reason, Message: constants.MsgNoFace, NeedPhoto: true}
}

// checkFace reports whether a reachable detector confirmed a face.
func (p *Pipeline) checkFace(ctx context.Context, image []byte) (bool, error) {
	if p.Faces == nil {
		return false, p.applyPolicy(CheckFace, types.ErrServiceUnavailable, noFace(""))
	}
	count, err := p.Faces.DetectFaces(ctx, image)
	if err != nil {
		return false, p.applyPolicy(CheckFace, err, noFace(""))
	}
	if count == 0 {
		return false, noFace("no face detected")
	}
	return true, nil
}

func (p *Pipeline) checkAuthenticity(ctx context.Context, image []byte) error {
	rejection := &RejectionError{Check: CheckAuthenticity, Message: constants.MsgMeme}
	if p.Authenticity == nil {
		return p.applyPolicy(CheckAuthenticity, types.ErrServiceUnavailable, rejection)
	}
	result, err := p.Authenticity.CheckAuthenticity(ctx, image)
	if err != nil {
		return p.applyPolicy(CheckAuthenticity, err, rejection)
	}
	if result != nil && result.IsMeme {
		rejection.Reason = result.Reason
		return rejection
	}
	return nil
}

// vendorGender maps the declared gender onto the labels the classifier uses.
func vendorGender(declared string) string {
	switch declared {
	case entities.GenderMale:
		return "Male"
	case entities.GenderFemale:
		return "Female"
	}
	return declared
}

func (p *Pipeline) checkGender(ctx context.Context, image []byte, declared string) error {
	unverified := &RejectionError{Check: CheckGender, Message: constants.MsgGenderUnverified, NeedPhoto: true}
	if p.Gender == nil {
		return p.applyPolicy(CheckGender, types.ErrServiceUnavailable, unverified)
	}
	result, err := p.Gender.ClassifyGender(ctx, image)
	if err != nil {
		return p.applyPolicy(CheckGender, err, unverified)
	}
	if !result.Success {
		reason := "classifier found no face"
		if result.Error != nil {
			reason = *result.Error
		}
		return noFace(reason)
	}
	expected := vendorGender(declared)
	if result.Gender != expected && result.Confidence >= p.GenderMinConfidence {
		return &RejectionError{
			Check:     CheckGender,
			Reason:    "classified " + result.Gender + ", declared " + expected,
			Message:   constants.MsgGenderMismatch,
			NeedPhoto: true,
		}
	}
	return nil
}

func (p *Pipeline) lock(ctx context.Context, userID string) (func(), error) {
	unlock, err := p.Locker.Lock(ctx, "photos:"+userID)
	if err != nil {
		return nil, &StorageError{Op: "lock", Err: err}
	}
	return unlock, nil
}

// store runs under the user lock: reload, heal, allocate, write files, then
// persist all slots at once. Files are rolled back if the write fails.
func (p *Pipeline) store(ctx context.Context, userID string, image []byte, faceVerified bool) (*Outcome, error) {
	unlock, err := p.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, err := p.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "load user", Err: err}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	slots, _ := p.Store.Heal(userID, user.Slots())
	slot := photostore.Allocate(slots)

	var commit *photostore.Commit
	if slot == photostore.SlotRotate {
		commit, err = p.Store.Rotate(userID, slots, image)
	} else {
		commit, err = p.Store.Place(userID, slot, slots, image)
	}
	if err != nil {
		return nil, &StorageError{Op: "write file", Err: err}
	}

	update := entities.PhotoUpdate{Slots: commit.Slots}
	if faceVerified {
		update.NeedPhoto = utils.GetBooleanPointer(false)
	}
	if err := p.Users.UpdatePhotos(ctx, userID, update); err != nil {
		commit.Rollback()
		return nil, &StorageError{Op: "persist slots", Err: err}
	}
	commit.Finalize()

	user.SetSlots(commit.Slots)
	if faceVerified {
		user.NeedPhoto = false
	}
	return &Outcome{URL: commit.URL, Slot: commit.Slot, User: user, FaceVerified: faceVerified}, nil
}
