// io.go provides source reading and output writing. VSLC's Writer used a channel-and-goroutine
// fan-in so multiple worker threads (one per function, during parallel optimise/validate/codegen)
// could share a single output destination. spec.md ch.5 fixes the core pipeline as single-threaded,
// so the emitter now just appends to one strings.Builder directly (src/emit) and this file is reduced
// to what VSLC's Writer did NOT itself own: opening the destination and reading the source.

package util

import (
	"bufio"
	"errors"
	"io/ioutil"
	"os"
	"time"
)

// ReadSource reads source code from file or stdin.
// If the Options structure holds a string for source the file will be opened and read.
// Else the function waits for a short period for input on stdin. If no input on stdin is
// provided the function returns an error.
func ReadSource(opt Options) (string, error) {
	if len(opt.Src) > 0 {
		// Read from file.
		b, err := ioutil.ReadFile(opt.Src)
		return string(b), err
	}

	// Read stdin.
	c := make(chan string)
	cerr := make(chan error)

	// Wait for input on stdin without blocking forever if none arrives.
	go func(c chan string, cerr chan error) {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err == nil {
			c <- text
		} else {
			cerr <- err
		}
	}(c, cerr)

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	}
}

// OpenOutput opens the destination for the compiler's output: the named file if opt.Out is set, or
// stdout otherwise. The caller is responsible for closing the returned file when it is non-nil.
func OpenOutput(opt Options) (*bufio.Writer, *os.File, error) {
	if len(opt.Out) == 0 {
		return bufio.NewWriter(os.Stdout), nil, nil
	}
	f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return bufio.NewWriter(f), f, nil
}
