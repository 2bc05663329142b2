// Package flock acquires exclusive locks backed by the filesystem without
// ever blocking: acquisition attempts are retried on a timer and the caller
// observes the outcome through a future. It adds no coordination mechanism
// of its own; it is a consumer of the timer and future packages.
package flock

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/google/uuid"
)

// LockFile is an exclusive lock backed by a file created with O_EXCL. The
// file records the holder's pid and a unique token. A lock whose pid no
// longer exists is considered stale and is broken on the next TryLock.
type LockFile struct {
	path  string
	token string
	held  bool
}

// New creates a lock backed by the file at path. The lock is not taken yet.
func New(path string) *LockFile {
	return &LockFile{
		path:  path,
		token: uuid.NewString(),
	}
}

// Path returns the path of the lock file.
func (l *LockFile) Path() string {
	return l.path
}

// Held reports whether this LockFile currently holds the lock.
func (l *LockFile) Held() bool {
	return l.held
}

// TryLock attempts to take the lock without waiting. It reports whether the
// lock is now held; a held lock stays held. Errors are filesystem failures,
// not contention.
func (l *LockFile) TryLock() (bool, error) {
	if l.held {
		return true, nil
	}

	ok, err := l.create()
	if err != nil || ok {
		l.held = ok
		return ok, err
	}

	stale, err := l.stale()
	if err != nil || !stale {
		return false, err
	}

	// Break the stale lock and retry once. Losing the race to another
	// process here is contention, not an error.
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	ok, err = l.create()
	l.held = ok
	return ok, err
}

func (l *LockFile) create() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(f, "%d %s\n", os.Getpid(), l.token); err != nil {
		f.Close()
		os.Remove(l.path)
		return false, err
	}

	if err := f.Close(); err != nil {
		os.Remove(l.path)
		return false, err
	}

	return true, nil
}

// stale reports whether the lock file on disk belongs to a process that no
// longer exists. A file with unreadable contents counts as stale.
func (l *LockFile) stale() (bool, error) {
	b, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	var pid int
	var token string
	if _, err := fmt.Sscanf(string(b), "%d %s", &pid, &token); err != nil {
		return true, nil
	}

	if pid == os.Getpid() {
		// Held by another LockFile in this process.
		return false, nil
	}

	if err := syscall.Kill(pid, 0); errors.Is(err, syscall.ESRCH) {
		return true, nil
	}

	return false, nil
}

// Unlock releases the lock. Unlocking a lock that is not held is an error.
func (l *LockFile) Unlock() error {
	if !l.held {
		return errors.New("flock: unlock of unheld lock")
	}

	if err := os.Remove(l.path); err != nil {
		return err
	}

	l.held = false
	return nil
}
