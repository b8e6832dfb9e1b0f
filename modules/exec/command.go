package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/callable"
	"github.com/vk/actorgrid/internal/options"
	"golang.org/x/sync/errgroup"
)

// Command is a standalone running an external process. Every line the
// process writes is forwarded, as it arrives, to the callable sink named
// for its stream; without one the line is logged. In background mode
// Execute returns once the process started and WrapUp waits for it.
type Command struct {
	actor.Base

	Args       []string
	Dir        string
	Stdout     string
	Stderr     string
	Background bool
	Timeout    time.Duration

	stdout *callable.Reference
	stderr *callable.Reference

	mu      sync.Mutex
	pending chan error
	cancel  context.CancelFunc
}

func (c *Command) Configure(o *options.Options) error {
	var err error
	if c.Args, err = o.Strings("command"); err != nil {
		return err
	}
	if c.Dir, err = o.String("dir", ""); err != nil {
		return err
	}
	if c.Stdout, err = o.String("stdout", ""); err != nil {
		return err
	}
	if c.Stderr, err = o.String("stderr", ""); err != nil {
		return err
	}
	if c.Background, err = o.Bool("background", false); err != nil {
		return err
	}
	c.Timeout, err = o.Duration("timeout", 0)
	return err
}

func (c *Command) SetUp(context.Context) error {
	if len(c.Args) == 0 {
		return errors.New("no command configured")
	}
	var err error
	if c.stdout, err = c.resolve(c.Stdout); err != nil {
		return fmt.Errorf("stdout: %w", err)
	}
	if c.stderr, err = c.resolve(c.Stderr); err != nil {
		return fmt.Errorf("stderr: %w", err)
	}
	return nil
}

func (c *Command) resolve(name string) (*callable.Reference, error) {
	if name == "" {
		return nil, nil
	}
	ref := callable.NewReference(name, actor.RoleSink)
	if _, err := ref.Resolve(c); err != nil {
		return nil, err
	}
	return ref, nil
}

func (c *Command) Execute(ctx context.Context) error {
	if err := c.await(); err != nil {
		return err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if c.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = c.Expand(a)
	}
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = c.Expand(c.Dir)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return err
	}

	logger := c.Logger(ctx).With("command", args[0])
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	logger.Debug("Process started.", "pid", cmd.Process.Pid, "background", c.Background)

	outRef, errRef := c.stdout, c.stderr
	var g errgroup.Group
	g.Go(func() error { return c.forward(runCtx, cancel, stdout, outRef, "stdout") })
	g.Go(func() error { return c.forward(runCtx, cancel, stderr, errRef, "stderr") })

	wait := func() error {
		defer cancel()
		ferr := g.Wait()
		werr := cmd.Wait()
		if ferr != nil {
			return ferr
		}
		if werr != nil {
			return fmt.Errorf("command %s failed: %w", args[0], werr)
		}
		logger.Debug("Process finished.")
		return nil
	}

	if !c.Background {
		return wait()
	}
	done := make(chan error, 1)
	c.mu.Lock()
	c.pending = done
	c.cancel = cancel
	c.mu.Unlock()
	go func() { done <- wait() }()
	return nil
}

// forward hands every line of r to the referenced sink. A failing sink
// kills the process.
func (c *Command) forward(ctx context.Context, kill context.CancelFunc, r io.Reader, ref *callable.Reference, stream string) error {
	var target actor.Actor
	if ref != nil {
		var err error
		if target, err = ref.Resolve(c); err != nil {
			kill()
			return err
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if target == nil {
			c.Logger(ctx).Info("Process output.", "stream", stream, "line", line)
			continue
		}
		if _, err := callable.Invoke(ctx, target, c.NewToken(line)); err != nil {
			kill()
			// Drain so the process is not blocked on a full pipe.
			_, _ = io.Copy(io.Discard, r)
			return fmt.Errorf("%s: %w", stream, err)
		}
	}
	return sc.Err()
}

// await waits for a background process started by a previous execution.
func (c *Command) await() error {
	c.mu.Lock()
	done := c.pending
	c.pending = nil
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	return <-done
}

func (c *Command) WrapUp(ctx context.Context) {
	if err := c.await(); err != nil {
		c.Logger(ctx).Warn("Background process failed.", "error", err)
	}
}

func (c *Command) CleanUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.stdout, c.stderr = nil, nil
}
