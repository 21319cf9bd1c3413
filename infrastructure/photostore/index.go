package photostore

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"matchbox.io/application/constants"
	"matchbox.io/application/utils"
	"matchbox.io/infrastructure/logger"
)

type Slot string

const (
	Slot1      Slot = "photo1"
	Slot2      Slot = "photo2"
	Slot3      Slot = "photo3"
	SlotRotate Slot = "rotate"
)

var slotOrder = [constants.MaxPhotoSlots]Slot{Slot1, Slot2, Slot3}

// Index returns the zero based column index, -1 for rotate.
func (s Slot) Index() int {
	for i, slot := range slotOrder {
		if slot == s {
			return i
		}
	}
	return -1
}

const archiveDir = "archive"

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrNotLocal      = errors.New("url does not point at a stored photo of this user")
	validUserID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// FileName is the fixed file name of a slot: Photo1.jpg, Photo2.jpg, Photo3.jpg.
// Public urls are built from it directly.
func FileName(index int) string {
	return fmt.Sprintf("Photo%d.jpg", index+1)
}

// Store keeps user photos under <Root>/<userId>/PhotoN.jpg and serves them
// as <URLPrefix>/<userId>/PhotoN.jpg.
type Store struct {
	Root      string
	URLPrefix string

	rename func(from string, to string) error
}

func New(root string) *Store {
	return &Store{Root: root, URLPrefix: constants.PhotoURLPrefix, rename: os.Rename}
}

func ValidateUserID(userID string) error {
	if !validUserID.MatchString(userID) {
		return ErrInvalidUserID
	}
	return nil
}

func (s *Store) UserDir(userID string) string {
	return filepath.Join(s.Root, userID)
}

func (s *Store) ArchivePath(userID string, file string) string {
	return filepath.Join(s.UserDir(userID), archiveDir, file)
}

func (s *Store) SlotPath(userID string, index int) string {
	return filepath.Join(s.UserDir(userID), FileName(index))
}

func (s *Store) URL(userID string, file string) string {
	return path.Join(s.URLPrefix, userID, file)
}

func (s *Store) SlotURL(userID string, index int) string {
	return s.URL(userID, FileName(index))
}

// LocalPath maps a public url of this user to its file. Urls of other hosts
// or other users are not local.
func (s *Store) LocalPath(userID string, url string) (string, bool) {
	if url == "" {
		return "", false
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	prefix := strings.TrimRight(s.URLPrefix, "/") + "/" + userID + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(url, prefix)
	if rest == "" || strings.Contains(rest, "..") {
		return "", false
	}
	return filepath.Join(s.UserDir(userID), filepath.FromSlash(rest)), true
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Heal clears every local slot whose file is gone and returns the cleaned
// slots together with the cleared indexes.
func (s *Store) Heal(userID string, slots [constants.MaxPhotoSlots]string) ([constants.MaxPhotoSlots]string, []int) {
	cleared := []int{}
	for i, url := range slots {
		localPath, ok := s.LocalPath(userID, url)
		if !ok || exists(localPath) {
			continue
		}
		logger.Warning("photo slot points at a missing file, clearing it", logger.LoggerOptions{
			Key:  "userId",
			Data: userID,
		}, logger.LoggerOptions{
			Key:  "slot",
			Data: slotOrder[i],
		}, logger.LoggerOptions{
			Key:  "url",
			Data: url,
		})
		slots[i] = ""
		cleared = append(cleared, i)
	}
	return slots, cleared
}

// Allocate picks the first empty slot in order, or rotate when all are full.
func Allocate(slots [constants.MaxPhotoSlots]string) Slot {
	for i, url := range slots {
		if url == "" {
			return slotOrder[i]
		}
	}
	return SlotRotate
}

func (s *Store) stage(userID string, data []byte) (string, error) {
	dir := s.UserDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	staged := filepath.Join(dir, fmt.Sprintf(".upload-%s.tmp", utils.GenerateUULDString()))
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		os.Remove(staged)
		return "", err
	}
	return staged, nil
}

// Place stores data in an empty slot. The returned commit must be finalized
// after the database write, or rolled back if it failed.
func (s *Store) Place(userID string, slot Slot, slots [constants.MaxPhotoSlots]string, data []byte) (*Commit, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	index := slot.Index()
	if index < 0 {
		return nil, fmt.Errorf("cannot place into slot %q", slot)
	}
	staged, err := s.stage(userID, data)
	if err != nil {
		return nil, err
	}
	commit := &Commit{store: s, staged: staged, Slot: slot, Slots: slots}
	if err := commit.move(staged, s.SlotPath(userID, index)); err != nil {
		commit.Rollback()
		return nil, err
	}
	commit.URL = s.SlotURL(userID, index)
	commit.Slots[index] = commit.URL
	return commit, nil
}

// Remove deletes the stored file behind url. Missing files are not an error.
func (s *Store) Remove(userID string, url string) error {
	localPath, ok := s.LocalPath(userID, url)
	if !ok {
		return ErrNotLocal
	}
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes the whole photo directory of a user, archive included.
func (s *Store) Clear(userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}
	return os.RemoveAll(s.UserDir(userID))
}
