package llm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/pkg/model"
)

const defaultSubprocessTimeout = 120 * time.Second

// SubprocessWorker shells out to an external CLI coding assistant,
// piping the prompt on stdin and reading markdown from stdout. Exit
// code != 0 or empty output is a retryable failure.
type SubprocessWorker struct {
	command []string
	timeout time.Duration
}

// NewSubprocessWorker builds a SubprocessWorker from config.
func NewSubprocessWorker(cfg model.SubprocessLLMConfig) *SubprocessWorker {
	timeout := defaultSubprocessTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &SubprocessWorker{command: cfg.Command, timeout: timeout}
}

func (w *SubprocessWorker) Render(tmpl string, data any) (string, error) {
	return renderTemplate(tmpl, data)
}

func (w *SubprocessWorker) Timeout() time.Duration {
	return w.timeout
}

func (w *SubprocessWorker) Invoke(ctx context.Context, prompt string) (string, error) {
	if len(w.command) == 0 {
		return "", fmt.Errorf("llm: subprocess backend has no command configured")
	}

	cmdCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, w.command[0], w.command[1:]...)
	cmd.Stdin = bytes.NewBufferString(prompt)
	cmd.Env = os.Environ()
	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmdCtx.Err() != nil {
		w.killGroup(cmd)
		return "", fmt.Errorf("%w: %s", distillerr.LLMTimeout, w.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", distillerr.LLMUnavailable, err, stderr.String())
	}

	out := stdout.String()
	if out == "" {
		return "", fmt.Errorf("%w: empty output", distillerr.LLMUnavailable)
	}
	return out, nil
}

// killGroup terminates the command's whole process group, matching the
// synthesizer's cancellation contract: aborts happen between retries,
// never leaving an orphaned child process running.
func (w *SubprocessWorker) killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if runtime.GOOS == "windows" {
		_ = exec.Command("taskkill", "/pid", fmt.Sprint(cmd.Process.Pid), "/f", "/t").Run()
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	time.Sleep(200 * time.Millisecond)
	if cmd.ProcessState == nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
