package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks the scratch files of in-progress note writes. The watcher and
// ListAll skip them.
const TempFilePrefix = "stickies-tmp-"

const notePerm os.FileMode = 0o644

// replaceNote swaps the content of path in one rename, so a reader or a crash never
// sees a half-written note. The scratch file lives next to path.
func replaceNote(path, content string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	scratch := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(scratch)
		}
	}()

	if _, err = tmp.WriteString(content); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("write scratch file: %w", err)
	}

	if err = os.Chmod(scratch, notePerm); err != nil {
		return fmt.Errorf("chmod scratch file: %w", err)
	}
	if err = os.Rename(scratch, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
