package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nigm-lab/ppgprep/internal/wfdb"
)

const (
	wfdbSuffix   = "_PPG"
	headerExt    = ".hea"
	waveformExt  = ".dat"
	digitCharset = "0123456789"
)

// WFDB is a recording stored as a WFDB header/waveform pair.
type WFDB struct {
	Name       string
	HeaderPath string
	DataPath   string
	Channel    wfdb.ChannelSpec
}

// ID implements Recording.
func (r *WFDB) ID() string { return r.Name }

// Samples implements Recording.
func (r *WFDB) Samples() ([]float64, error) {
	return wfdb.ReadRecord(r.HeaderPath, r.DataPath, r.Channel)
}

// DiscoverWFDB lists the subject directories below root. A subject
// directory has an all-digit name and holds <id>_PPG.hea and <id>_PPG.dat.
// Directories missing either file are returned in skipped. Results are
// sorted by identifier.
func DiscoverWFDB(root string, channel wfdb.ChannelSpec) (recs []*WFDB, skipped []string, err error) {
	if err := requireDir(root); err != nil {
		return nil, nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", root, err)
	}

	for _, e := range entries {
		id := e.Name()
		if !e.IsDir() || !isSubjectID(id) {
			continue
		}
		base := filepath.Join(root, id, id+wfdbSuffix)
		rec := &WFDB{
			Name:       id,
			HeaderPath: base + headerExt,
			DataPath:   base + waveformExt,
			Channel:    channel,
		}
		if !isFile(rec.HeaderPath) || !isFile(rec.DataPath) {
			skipped = append(skipped, id)
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	sort.Strings(skipped)
	return recs, skipped, nil
}

func isSubjectID(name string) bool {
	return name != "" && strings.Trim(name, digitCharset) == ""
}
