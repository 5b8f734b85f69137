//go:build darwin

package scanner

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func birthTime(path string, _ os.FileInfo) (time.Time, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}
	// Birthtimespec carries the creation time on macOS.
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true
}
