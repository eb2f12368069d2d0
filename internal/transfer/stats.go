package transfer

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stats are display hints scraped from the tool's summary lines. They are
// best-effort only: success and failure always come from the exit status,
// never from here.
type Stats struct {
	FilesTransferred int    `json:"files_transferred"`
	TotalSize        uint64 `json:"total_size"`
}

// HumanSize renders the transferred volume for status output.
func (s *Stats) HumanSize() string {
	return humanize.Bytes(s.TotalSize)
}

// observe scans one output line for rsync summary hints:
//
//	Number of regular files transferred: 42
//	total size is 1,234,567  speedup is 3.14
func (s *Stats) observe(line string) {
	lower := strings.ToLower(line)

	if strings.Contains(lower, "files transferred") {
		if _, after, ok := strings.Cut(line, ":"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(after)); err == nil {
				s.FilesTransferred += n
			}
		}
		return
	}

	if strings.Contains(lower, "total size is") {
		fields := strings.Fields(line)
		for i, f := range fields {
			if f == "is" && i+1 < len(fields) {
				raw := strings.ReplaceAll(fields[i+1], ",", "")
				if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
					s.TotalSize = n
				} else if n, err := humanize.ParseBytes(raw); err == nil {
					// -h output prints humanized sizes
					s.TotalSize = n
				}
				return
			}
		}
	}
}
