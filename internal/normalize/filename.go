package normalize

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMalformedFileName is returned when a file name does not carry both codes.
var ErrMalformedFileName = errors.New("malformed file name")

// FileCodes are the group and subject codes encoded in a source file name.
type FileCodes struct {
	Group   string
	Subject string
}

// ParseFileName strips the directory, extension and suffix from path and
// splits the remainder on "-": "TUR01-MAT Notas.ods" yields TUR01 and MAT.
// Extra segments are ignored.
func ParseFileName(path, suffix string) (FileCodes, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, suffix)

	parts := strings.Split(stem, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return FileCodes{}, fmt.Errorf("%w: %q needs <group>-<subject>%s", ErrMalformedFileName, base, suffix)
	}

	return FileCodes{Group: parts[0], Subject: parts[1]}, nil
}
