package upload

import (
	"fmt"
	"time"
)

// folderFor derives the shared key prefix for all renditions of one upload.
// Month and day are deliberately not zero-padded; existing object paths and
// their CDN cache entries depend on this exact format.
func folderFor(t time.Time, id string) string {
	return fmt.Sprintf("%s/%d/%d/%d/%s", folderPrefix, t.Year(), int(t.Month()), t.Day(), id)
}
