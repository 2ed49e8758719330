package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/langpatch/pkg/archive"
	"github.com/matzehuels/langpatch/pkg/langs"
)

// ClassifyFile lists the members of the archive at path and classifies
// them. Every member is logged at debug level as "path:member".
// It returns archive.ErrNotContainer for files that are neither tar nor zip.
func ClassifyFile(path string, logger *log.Logger) (langs.Set, int, error) {
	c, err := archive.InspectFile(path)
	if err != nil {
		return 0, 0, err
	}
	if logger != nil {
		c.OnSkip = func(err error) { logger.Debug("skipping member", "archive", path, "err", err) }
	}
	n := 0
	members := func(yield func(string) bool) {
		for m := range c.Members() {
			n++
			if logger != nil {
				logger.Debugf("%s:%s", path, m)
			}
			if !yield(m) {
				return
			}
		}
	}
	return langs.Classify(members), n, nil
}
