package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
)

func project(name string, boxes ...string) model.Project {
	p := model.NewProject()
	p.Name = name
	for _, id := range boxes {
		b := model.NewBox(id)
		b.ID = id
		p.Boxes = append(p.Boxes, b)
	}
	return p
}

// scripted returns results named after the project and blocks on "slow"
// projects until release is closed. started receives the project name of
// every request that begins running.
func scripted(started chan<- string, release <-chan struct{}) GenerateFunc {
	return func(ctx context.Context, p model.Project, boxIndex int, opts generate.Options) (*generate.BoxResult, error) {
		started <- p.Name
		if p.Name == "slow" {
			<-release
		}
		res := &generate.BoxResult{Box: p.Boxes[boxIndex], Stage: generate.StageReady, Warnings: []string{p.Name}}
		if p.Name == "fail" {
			res.Stage = generate.StageError
			return res, errors.New("boom")
		}
		return res, nil
	}
}

func recv(t *testing.T, ch <-chan Response) Response {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
		return Response{}
	}
}

func TestWorker_DropsSupersededResult(t *testing.T) {
	started := make(chan string, 8)
	release := make(chan struct{})
	w := New(Options{Workers: 2, Generate: scripted(started, release)})
	defer w.Close()
	ctx := context.Background()

	oldID, oldCh := w.Submit(ctx, project("slow", "b1"), 0)
	require.Equal(t, "slow", <-started)

	newID, newCh := w.Submit(ctx, project("fast", "b1"), 0)
	assert.Greater(t, newID, oldID)

	fresh := recv(t, newCh)
	require.NoError(t, fresh.Err)
	assert.Equal(t, []string{"fast"}, fresh.Result.Warnings)

	close(release)
	stale := recv(t, oldCh)
	assert.ErrorIs(t, stale.Err, ErrSuperseded)
	assert.Nil(t, stale.Result)
	require.NotNil(t, stale.LastGood)
	assert.Equal(t, []string{"fast"}, stale.LastGood.Warnings)
}

func TestWorker_FailureKeepsLastGood(t *testing.T) {
	started := make(chan string, 8)
	w := New(Options{Generate: scripted(started, nil)})
	defer w.Close()
	ctx := context.Background()

	_, ch := w.Submit(ctx, project("ok", "b1"), 0)
	good := recv(t, ch)
	require.NoError(t, good.Err)

	_, ch = w.Submit(ctx, project("fail", "b1"), 0)
	bad := recv(t, ch)
	require.Error(t, bad.Err)
	assert.Equal(t, generate.StageError, bad.Result.Stage)
	assert.Same(t, good.Result, bad.LastGood)
	assert.Same(t, good.Result, w.LastGood("b1"))
}

func TestWorker_BoxesAreIndependent(t *testing.T) {
	started := make(chan string, 8)
	release := make(chan struct{})
	w := New(Options{Workers: 2, Generate: scripted(started, release)})
	defer w.Close()
	ctx := context.Background()

	_, slowCh := w.Submit(ctx, project("slow", "b1"), 0)
	<-started
	_, fastCh := w.Submit(ctx, project("fast", "b2"), 0)
	require.NoError(t, recv(t, fastCh).Err)

	close(release)
	r := recv(t, slowCh)
	require.NoError(t, r.Err)
	assert.Equal(t, "b1", r.BoxID)
}

func TestWorker_SubmitAfterClose(t *testing.T) {
	w := New(Options{Generate: scripted(make(chan string, 1), nil)})
	w.Close()
	w.Close()

	_, ch := w.Submit(context.Background(), project("x", "b1"), 0)
	assert.ErrorIs(t, recv(t, ch).Err, ErrClosed)
}

func TestWorker_IDsIncrease(t *testing.T) {
	w := New(Options{Generate: scripted(make(chan string, 8), nil)})
	defer w.Close()
	var last uint64
	for range 3 {
		id, ch := w.Submit(context.Background(), project("ok", "b1"), 0)
		assert.Greater(t, id, last)
		last = id
		recv(t, ch)
	}
}

func TestWorker_RealPipeline(t *testing.T) {
	w := New(Options{Pipeline: generate.Options{LayoutOnly: true}})
	defer w.Close()

	p := model.NewProject()
	box := model.NewBox("Real")
	tray := model.NewTray("T", 0)
	tray.Params.TopLoaded = []model.StackSpec{model.NewTopStack("hex", 6, "")}
	box.Trays = []model.Tray{tray}
	p.Boxes = []model.Box{box}

	_, ch := w.Submit(context.Background(), p, 0)
	r := recv(t, ch)
	require.NoError(t, r.Err)
	assert.Equal(t, generate.StageReady, r.Result.Stage)
	assert.Len(t, r.Result.Trays, 1)
}

func TestWorker_SubmitDetachesProject(t *testing.T) {
	release := make(chan struct{})
	seen := make(chan int, 1)
	gen := func(ctx context.Context, p model.Project, boxIndex int, opts generate.Options) (*generate.BoxResult, error) {
		<-release
		seen <- p.Boxes[boxIndex].Trays[0].Params.TopLoaded[0].Count
		return &generate.BoxResult{Box: p.Boxes[boxIndex], Stage: generate.StageReady}, nil
	}
	w := New(Options{Workers: 1, Generate: gen})
	defer w.Close()

	p := project("edit", "b1")
	tray := model.NewTray("T", 0)
	tray.Params.TopLoaded = []model.StackSpec{model.NewTopStack("square", 10, "")}
	p.Boxes[0].Trays = []model.Tray{tray}

	_, ch := w.Submit(context.Background(), p, 0)
	// The caller keeps editing while the request is queued.
	p.Boxes[0].Trays[0].Params.TopLoaded[0].Count = 99
	p.Boxes[0].Trays[0].Name = "renamed"
	close(release)

	require.NoError(t, recv(t, ch).Err)
	assert.Equal(t, 10, <-seen)
}
