package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoTerminal is returned by --prompt when typed input cannot be hidden.
var ErrNoTerminal = errors.New("password prompt needs a terminal")

const maxPasswordInput = 1024

// promptPassword reads one line from in with echo switched off.
func promptPassword(in *os.File) ([]byte, error) {
	if in == nil {
		return nil, ErrNoTerminal
	}

	restoreEcho, err := disableEcho(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoTerminal, in.Name(), err)
	}
	defer restoreEcho()

	line, err := bufio.NewReader(io.LimitReader(in, maxPasswordInput)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
