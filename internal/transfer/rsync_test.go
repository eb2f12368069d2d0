package transfer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsArchiveDeleteMode(t *testing.T) {
	r := NewRsync()
	args := r.args(Spec{
		Source: "/home/user/photos",
		Dest:   "/mnt/nas/backup/photos",
	})

	assert.Equal(t, []string{
		"-avh", "--progress", "--delete",
		"/home/user/photos/", "/mnt/nas/backup/photos",
	}, args)
}

func TestArgsSourceTrailingSlashNotDoubled(t *testing.T) {
	r := NewRsync()
	args := r.args(Spec{Source: "/home/user/photos/", Dest: "/mnt/nas/photos"})

	assert.Equal(t, "/home/user/photos/", args[len(args)-2])
}

func TestArgsExcludesInOrder(t *testing.T) {
	r := NewRsync()
	args := r.args(Spec{
		Source:   "/src",
		Dest:     "/dst",
		Excludes: []string{"*.tmp", ".cache/**"},
	})

	assert.Equal(t, []string{
		"-avh", "--progress", "--delete",
		"--exclude=*.tmp", "--exclude=.cache/**",
		"/src/", "/dst",
	}, args)
}

func TestMirrorMissingSource(t *testing.T) {
	r := NewRsync()
	_, err := r.Mirror(context.Background(), Spec{
		Source: "/does/not/exist",
		Dest:   t.TempDir() + "/dst",
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "source does not exist")
}

func TestStatsObserveSummaryLines(t *testing.T) {
	s := &Stats{}
	s.observe("sending incremental file list")
	s.observe("Number of regular files transferred: 42")
	s.observe("total size is 1,234,567  speedup is 3.14")

	assert.Equal(t, 42, s.FilesTransferred)
	assert.Equal(t, uint64(1234567), s.TotalSize)
}

func TestStatsObserveHumanizedSize(t *testing.T) {
	s := &Stats{}
	s.observe("total size is 1.15M  speedup is 1.00")

	assert.Equal(t, uint64(1150000), s.TotalSize)
}

func TestStatsObserveIgnoresProgressLines(t *testing.T) {
	s := &Stats{}
	s.observe("photos/img_0001.jpg")
	s.observe("      1,024 100%    1.02MB/s    0:00:00 (xfr#1, to-chk=5/10)")

	assert.Zero(t, s.FilesTransferred)
	assert.Zero(t, s.TotalSize)
}

func TestCapBufferKeepsFirstBytes(t *testing.T) {
	b := newCapBuffer(8)
	n, err := b.Write([]byte("0123456789"))

	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "01234567", string(b.buf))
}

func TestExcerptFirstLineCapped(t *testing.T) {
	b := newCapBuffer(maxStderr)
	b.Write([]byte("rsync: some error\nsecond line\n"))
	assert.Equal(t, "rsync: some error", b.Excerpt())

	long := newCapBuffer(maxStderr)
	long.Write([]byte(strings.Repeat("x", 500)))
	assert.Len(t, long.Excerpt(), 200)

	empty := newCapBuffer(maxStderr)
	assert.Equal(t, "no error output", empty.Excerpt())
}
