package photostore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"matchbox.io/application/constants"
	"matchbox.io/infrastructure/logger"
)

type move struct {
	from string
	to   string
}

// Commit is a set of renames already applied on disk. Rollback undoes them
// in reverse order; Finalize drops the backups kept for rollback.
type Commit struct {
	URL   string
	Slot  Slot
	Slots [constants.MaxPhotoSlots]string

	store   *Store
	staged  string
	done    []move
	backups []string
}

func (c *Commit) move(from string, to string) error {
	if err := c.store.rename(from, to); err != nil {
		return fmt.Errorf("moving %s to %s: %w", filepath.Base(from), filepath.Base(to), err)
	}
	c.done = append(c.done, move{from: from, to: to})
	return nil
}

func (c *Commit) Rollback() error {
	var errs []error
	for i := len(c.done) - 1; i >= 0; i-- {
		step := c.done[i]
		if err := c.store.rename(step.to, step.from); err != nil {
			errs = append(errs, err)
		}
	}
	c.done = nil
	if c.staged != "" {
		if err := os.Remove(c.staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	c.backups = nil
	if err := errors.Join(errs...); err != nil {
		logger.Error("photo rollback incomplete", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	return nil
}

func (c *Commit) Finalize() {
	for _, backup := range c.backups {
		if err := os.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warning("could not remove archive backup", logger.LoggerOptions{
				Key:  "path",
				Data: backup,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err.Error(),
			})
		}
	}
	c.done = nil
	c.backups = nil
}

// Rotate makes room when all three slots are taken: the slot 1 file goes to
// archive/, slot 2 and 3 shift down by one and data lands in Photo3.jpg.
// Slots that hold foreign urls shift as plain values.
func (s *Store) Rotate(userID string, slots [constants.MaxPhotoSlots]string, data []byte) (*Commit, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(s.UserDir(userID), archiveDir), 0o755); err != nil {
		return nil, err
	}
	staged, err := s.stage(userID, data)
	if err != nil {
		return nil, err
	}
	commit := &Commit{store: s, staged: staged, Slot: SlotRotate}

	fail := func(err error) (*Commit, error) {
		commit.Rollback()
		logger.Error("photo rotation failed, rolled back", logger.LoggerOptions{
			Key:  "userId",
			Data: userID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}

	if oldest, ok := s.LocalPath(userID, slots[0]); ok {
		archived := s.ArchivePath(userID, filepath.Base(oldest))
		if exists(archived) {
			backup := archived + ".prev"
			if err := commit.move(archived, backup); err != nil {
				return fail(err)
			}
			commit.backups = append(commit.backups, backup)
		}
		if err := commit.move(oldest, archived); err != nil {
			return fail(err)
		}
	}

	for i := 1; i < constants.MaxPhotoSlots; i++ {
		current, ok := s.LocalPath(userID, slots[i])
		if !ok {
			commit.Slots[i-1] = slots[i]
			continue
		}
		target := s.SlotPath(userID, i-1)
		if current != target {
			if err := commit.move(current, target); err != nil {
				return fail(err)
			}
		}
		commit.Slots[i-1] = s.SlotURL(userID, i-1)
	}

	last := constants.MaxPhotoSlots - 1
	if err := commit.move(staged, s.SlotPath(userID, last)); err != nil {
		return fail(err)
	}
	commit.URL = s.SlotURL(userID, last)
	commit.Slots[last] = commit.URL
	return commit, nil
}
