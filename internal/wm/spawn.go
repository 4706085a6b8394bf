package wm

import (
	"fmt"
	"os/exec"
	"strings"
)

// Spawner launches an external program without waiting for it.
type Spawner interface {
	Spawn(command string) error
}

// ExecSpawner starts commands as child processes. Exited children are reaped
// in the background.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(command string) error {
	argv, err := splitCommand(command)
	if err != nil {
		return fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", argv[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// splitCommand splits a command line into arguments, honoring single and
// double quotes and backslash escapes.
func splitCommand(s string) ([]string, error) {
	var out []string

	var buf strings.Builder
	inSingle := false
	inDouble := false
	escaped := false
	quoted := false

	flush := func() {
		if buf.Len() == 0 && !quoted {
			return
		}
		out = append(out, buf.String())
		buf.Reset()
		quoted = false
	}

	for _, r := range s {
		if escaped {
			buf.WriteRune(r)
			escaped = false
			continue
		}

		if !inSingle && r == '\\' {
			escaped = true
			continue
		}

		if !inDouble && r == '\'' {
			inSingle = !inSingle
			quoted = true
			continue
		}
		if !inSingle && r == '"' {
			inDouble = !inDouble
			quoted = true
			continue
		}

		if !inSingle && !inDouble {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				flush()
				continue
			}
		}

		buf.WriteRune(r)
	}

	if escaped {
		return nil, fmt.Errorf("unfinished escape")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote")
	}

	flush()
	return out, nil
}
