package file

import (
	"path/filepath"
	"strings"

	"github.com/jsphweid/tapchord/model"
)

func CreateFileNumMap(paths []string) model.FileNumToMidiPath {
	res := make(model.FileNumToMidiPath)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}

// ScoreName is the file name without directory or extension. It keys score
// metadata.
func ScoreName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
