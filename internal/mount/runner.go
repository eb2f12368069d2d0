package mount

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// runner executes one external command and captures its output. Tests swap
// this out to script mount-tool behavior.
type runner func(ctx context.Context, stdin string, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, stdin string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}
