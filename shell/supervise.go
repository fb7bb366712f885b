package shell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shovelware/shovel/common"
)

var (
	ErrTimeout   = errors.New("child process timeout")
	ErrCancelled = errors.New("cancelled")

	registry      = make(map[int]*os.Process)
	registryMutex sync.Mutex
	cancelFlag    int32
)

// ExitError carries a deterministic child failure together with both
// captured streams. It is never retried.
type ExitError struct {
	Command string
	Code    int
	Stdout  string
	Stderr  string
}

func (it *ExitError) Error() string {
	return fmt.Sprintf("Command %q exited with %d, stderr: %s", it.Command, it.Code, it.Stderr)
}

func register(process *os.Process) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[process.Pid] = process
}

func unregister(process *os.Process) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	delete(registry, process.Pid)
}

func ActiveChildren() int {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	return len(registry)
}

func Cancelled() bool {
	return atomic.LoadInt32(&cancelFlag) != 0
}

// Reset clears the cancellation flag before a fresh run. Safe only
// while no children are in flight.
func Reset() {
	atomic.StoreInt32(&cancelFlag, 0)
}

// Cancel sets the cooperative stop flag and forcibly kills every
// registered child. Safe to call from any goroutine, more than once.
func Cancel() {
	atomic.StoreInt32(&cancelFlag, 1)
	registryMutex.Lock()
	defer registryMutex.Unlock()
	for pid, process := range registry {
		common.Debug("Killing child process %d on cancel.", pid)
		err := process.Kill()
		if err != nil {
			common.Trace("Kill of %d failed, reason: %v", pid, err)
		}
	}
}

// Timed runs the child to completion with a wall-clock limit. On
// timeout the child is killed and ErrTimeout returned. Deterministic
// child failures come back as *ExitError. When the global cancel flag
// is up, the sentinel ErrCancelled is returned instead of an error
// worth reporting.
func (it *Task) Timed(timeout time.Duration) (err error) {
	if Cancelled() {
		return ErrCancelled
	}
	var stdout, stderr bytes.Buffer
	command := it.command(&stdout, &stderr)
	common.Trace("Spawning %q in %q with timeout %v.", it.Command(), it.directory, timeout)
	err = command.Start()
	if err != nil {
		return fmt.Errorf("Failed to start %q, reason: %v", it.Command(), err)
	}
	process := command.Process
	register(process)
	defer unregister(process)

	done := make(chan error, 1)
	go func() {
		done <- command.Wait()
	}()

	select {
	case err = <-done:
	case <-time.After(timeout):
		process.Kill()
		<-done
		if Cancelled() {
			return ErrCancelled
		}
		return fmt.Errorf("%w after %v on %q", ErrTimeout, timeout, it.Command())
	}
	if Cancelled() {
		return ErrCancelled
	}
	if err != nil {
		code := command.ProcessState.ExitCode()
		return &ExitError{
			Command: it.Command(),
			Code:    code,
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
		}
	}
	return nil
}

// TimedWithRetry repeats Timed over timeouts only. Nonzero exits are
// deterministic and fail immediately.
func (it *Task) TimedWithRetry(timeout time.Duration, retries int) (err error) {
	for attempt := 0; attempt < retries; attempt += 1 {
		err = it.Timed(timeout)
		if err == nil || !errors.Is(err, ErrTimeout) {
			return err
		}
		common.Debug("Retry %d of %q after timeout.", attempt+1, it.Command())
	}
	return err
}

// CaptureOutput runs the child without a deadline and gives the
// standard output back, for probing tool versions and the like.
func (it *Task) CaptureOutput() (string, int, error) {
	var stdout, stderr bytes.Buffer
	command := it.command(&stdout, &stderr)
	err := command.Start()
	if err != nil {
		return "", -1, err
	}
	register(command.Process)
	defer unregister(command.Process)
	err = command.Wait()
	code := command.ProcessState.ExitCode()
	if err != nil {
		return stdout.String(), code, fmt.Errorf("Command %q failed, reason: %v, stderr: %s", it.Command(), err, stderr.String())
	}
	return stdout.String(), code, nil
}
