package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	errSymlink     = errors.New("path is a symlink")
	errSpecialFile = errors.New("refusing to delete special file")
)

// IsSpecialFile checks if a path is a special file (device, socket, pipe).
// Symlinks are not followed.
func IsSpecialFile(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return specialKind(info.Mode())
}

func specialKind(mode fs.FileMode) (bool, error) {
	switch {
	case mode&fs.ModeCharDevice != 0:
		return true, fmt.Errorf("is a character device")
	case mode&fs.ModeDevice != 0:
		return true, fmt.Errorf("is a device file")
	case mode&fs.ModeSocket != 0:
		return true, fmt.Errorf("is a socket")
	case mode&fs.ModeNamedPipe != 0:
		return true, fmt.Errorf("is a named pipe (FIFO)")
	}
	return false, nil
}

// IsSafeToDelete re-checks an entry right before removal. It refuses
// symlinks and special files; a missing path is returned as fs.ErrNotExist.
func IsSafeToDelete(path string) (fs.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, errSymlink
	}
	if special, reason := specialKind(info.Mode()); special {
		return nil, fmt.Errorf("%w: %v", errSpecialFile, reason)
	}
	return info, nil
}
