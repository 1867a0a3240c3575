//go:build linux

package stderr

import (
	"bufio"
	"os"
	"sync"
	"syscall"
)

var (
	mu       sync.Mutex
	started  bool
	origFd   int
	pipeR    *os.File
	pipeW    *os.File
	doneWait sync.WaitGroup
)

// Start redirects file descriptor 2 (stderr) to an internal pipe and
// begins forwarding each line written to it onto Messages. ALSA and its
// codec plugins write xrun/underrun chatter straight to fd 2, bypassing
// os.Stderr entirely; without this redirection that chatter lands
// directly on the terminal and corrupts a TUI's layout.
func Start() error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}

	dup, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		return err
	}
	r, w, err := os.Pipe()
	if err != nil {
		_ = syscall.Close(dup)
		return err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		_ = w.Close()
		_ = r.Close()
		_ = syscall.Close(dup)
		return err
	}

	origFd = dup
	pipeR = r
	pipeW = w
	started = true

	doneWait.Add(1)
	go forward(r)
	return nil
}

func forward(r *os.File) {
	defer doneWait.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case Messages <- scanner.Text():
		default:
		}
	}
}

// WriteOriginal writes msg to the real stderr, bypassing the capture
// pipe, for this process's own diagnostics.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origFd
	active := started
	mu.Unlock()
	if !active {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(fd, []byte(msg))
}

// Stop restores the original stderr file descriptor and stops
// forwarding captured lines.
func Stop() {
	mu.Lock()
	if !started {
		mu.Unlock()
		return
	}
	_ = syscall.Dup2(origFd, int(os.Stderr.Fd()))
	_ = syscall.Close(origFd)
	_ = pipeW.Close()
	started = false
	mu.Unlock()

	doneWait.Wait()
	_ = pipeR.Close()
}
