package runner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/packsmith/packsmith/internal/store"
)

type fakeSource struct {
	spec *store.BuildSpec
	err  error
}

func (f *fakeSource) Get() (*store.BuildSpec, error) {
	return f.spec, f.err
}

type fakeValidator struct {
	err error
}

func (f *fakeValidator) Validate(ctx context.Context, spec *store.BuildSpec) error {
	return f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	states []bool
}

func (n *recordingNotifier) NotifyBusy(busy bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, busy)
}

func (n *recordingNotifier) snapshot() []bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bool(nil), n.states...)
}

func testRunner(t *testing.T, command func(string) *exec.Cmd, validator SpecValidator) (*Runner, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	source := &fakeSource{spec: &store.BuildSpec{Versions: []store.VersionEntry{{Name: "main"}}}}
	r := New(Options{
		BuilderBinary: "instance_builder",
		SpecDir:       t.TempDir(),
		GeneratedDir:  t.TempDir(),
		WorkDir:       t.TempDir(),
	}, source, validator, notifier, hclog.NewNullLogger(), WithCommand(command))
	return r, notifier
}

func waitIdle(t *testing.T, r *Runner) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		busy, message := r.Status()
		if !busy {
			return message
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("runner never became idle")
	return ""
}

func TestSubmitSuccess(t *testing.T) {
	r, notifier := testRunner(t, func(specPath string) *exec.Cmd {
		return exec.Command("true")
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))
	message := waitIdle(t, r)
	require.Equal(t, "ok", message)

	// The idle notification trails the status flip slightly.
	require.Eventually(t, func() bool {
		states := notifier.snapshot()
		return len(states) == 2 && states[0] && !states[1]
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitWritesSpecSnapshot(t *testing.T) {
	var gotPath string
	r, _ := testRunner(t, func(specPath string) *exec.Cmd {
		gotPath = specPath
		return exec.Command("true")
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))
	waitIdle(t, r)

	require.Equal(t, "spec.json", filepath.Base(gotPath))
	require.FileExists(t, gotPath)
}

func TestSubmitFailedBuild(t *testing.T) {
	r, _ := testRunner(t, func(specPath string) *exec.Cmd {
		return exec.Command("false")
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))
	message := waitIdle(t, r)
	require.Equal(t, "failed (code 1)", message)
}

func TestSubmitMissingBinary(t *testing.T) {
	r, _ := testRunner(t, func(specPath string) *exec.Cmd {
		return exec.Command("definitely-not-a-real-binary-4b1d")
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))
	message := waitIdle(t, r)
	require.Contains(t, message, "command not found")
}

func TestSubmitConflict(t *testing.T) {
	release := make(chan struct{})
	r, notifier := testRunner(t, func(specPath string) *exec.Cmd {
		cmd := exec.Command("cat")
		stdin, _ := cmd.StdinPipe()
		go func() {
			<-release
			_ = stdin.Close()
		}()
		return cmd
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))

	busy, message := r.Status()
	require.True(t, busy)
	require.Equal(t, "running", message)

	// A second submission while the first runs is rejected and the
	// in-flight build is untouched.
	require.ErrorIs(t, r.Submit(context.Background()), ErrBuildInProgress)
	busy, _ = r.Status()
	require.True(t, busy)

	close(release)
	waitIdle(t, r)
	require.Eventually(t, func() bool {
		return len(notifier.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitValidationFailure(t *testing.T) {
	wantErr := errors.New("bad spec")
	r, notifier := testRunner(t, func(specPath string) *exec.Cmd {
		t.Fatal("build must not start on validation failure")
		return nil
	}, &fakeValidator{err: wantErr})

	require.ErrorIs(t, r.Submit(context.Background()), wantErr)

	busy, _ := r.Status()
	require.False(t, busy)
	require.Empty(t, notifier.snapshot())
}

func TestSubmitSourceFailure(t *testing.T) {
	wantErr := errors.New("read failed")
	notifier := &recordingNotifier{}
	r := New(Options{SpecDir: t.TempDir()}, &fakeSource{err: wantErr}, &fakeValidator{}, notifier, hclog.NewNullLogger())

	require.ErrorIs(t, r.Submit(context.Background()), wantErr)
	busy, _ := r.Status()
	require.False(t, busy)
}

func TestSequentialBuilds(t *testing.T) {
	r, _ := testRunner(t, func(specPath string) *exec.Cmd {
		return exec.Command("true")
	}, &fakeValidator{})

	require.NoError(t, r.Submit(context.Background()))
	waitIdle(t, r)

	// Once idle, the slot is free again.
	require.NoError(t, r.Submit(context.Background()))
	require.Equal(t, "ok", waitIdle(t, r))
}
