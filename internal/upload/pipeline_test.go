package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sharetome/internal/apiclient"
	"sharetome/internal/model"
	"sharetome/internal/storage"
	storeMocks "sharetome/internal/storage/mocks"
	"sharetome/internal/storage/storagetest"
)

type uploaderFunc func(ctx context.Context, sess *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error)

func (fn uploaderFunc) Upload(ctx context.Context, sess *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error) {
	return fn(ctx, sess, f, progress)
}

// echoUploader reads the body, reports progress in two steps and returns a path derived from the name.
func echoUploader() uploaderFunc {
	return func(_ context.Context, _ *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error) {
		data, err := io.ReadAll(f.Body)
		if err != nil {
			return "", err
		}
		n := int64(len(data))
		progress(n/2, n)
		progress(n, n)
		return "uploads/dev@example.com/" + f.Name, nil
	}
}

type recordingTables struct {
	mu    sync.Mutex
	calls []model.CreateTableInput
	err   error
}

func (r *recordingTables) CreateTable(_ context.Context, _ *model.Session, in model.CreateTableInput) (*model.CreateTableResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, in)
	if r.err != nil {
		return nil, r.err
	}
	return &model.CreateTableResult{TableID: "t-1"}, nil
}

func testSession() *model.Session {
	return &model.Session{Email: "dev@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func textFile(name, body string) Incoming {
	return Incoming{Name: name, ContentType: TypeText, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func stageAll(t *testing.T, p *Pipeline, batchID string, files ...Incoming) []*File {
	t.Helper()
	out := make([]*File, 0, len(files))
	for _, in := range files {
		f, err := p.Stage(context.Background(), testSession(), batchID, in)
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func TestPipeline_SubmitSuccess(t *testing.T) {
	store := storagetest.NewMemory()
	tables := &recordingTables{}
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	p := NewPipeline(store, echoUploader(), tables, Options{Logger: zerolog.Nop(), Metrics: m})
	b, err := p.Open(testSession(), " Reports ")
	require.NoError(t, err)
	assert.Equal(t, "Reports", b.TableName())
	assert.Equal(t, StateEmpty, b.State())

	stageAll(t, p, b.ID(), textFile("a.txt", "alpha"), textFile("b.txt", "bravo"), textFile("c.txt", "charlie"))
	assert.Equal(t, StateStaged, b.State())
	assert.Equal(t, 3, store.Len())

	res, err := p.Submit(context.Background(), testSession(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, "t-1", res.TableID)

	require.Len(t, tables.calls, 1)
	call := tables.calls[0]
	assert.Equal(t, "Reports", call.TableName)
	assert.True(t, call.SkipTableCreation)
	assert.False(t, call.IsPublic)
	assert.Equal(t, []model.DocumentRef{
		{FileName: "a.txt", FilePath: "uploads/dev@example.com/a.txt"},
		{FileName: "b.txt", FilePath: "uploads/dev@example.com/b.txt"},
		{FileName: "c.txt", FilePath: "uploads/dev@example.com/c.txt"},
	}, call.Documents)

	snap := b.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, DialogClosed, snap.Dialog)
	for _, f := range snap.Files {
		assert.Equal(t, 100, f.Progress)
	}

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, p.Len())
	_, err = p.Batch(testSession(), b.ID())
	assert.ErrorIs(t, err, ErrBatchNotFound)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.files.WithLabelValues(resultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.batches.WithLabelValues(resultSuccess)))
}

func TestPipeline_SubmitSecondFileFails(t *testing.T) {
	store := storagetest.NewMemory()
	tables := &recordingTables{}

	uploader := uploaderFunc(func(ctx context.Context, _ *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error) {
		io.Copy(io.Discard, f.Body)
		if f.Name == "b.txt" {
			return "", &apiclient.NetworkError{Err: errors.New("connection reset")}
		}
		return "uploads/" + f.Name, nil
	})

	p := NewPipeline(store, uploader, tables, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	stageAll(t, p, b.ID(), textFile("a.txt", "alpha"), textFile("b.txt", "bravo"), textFile("c.txt", "charlie"))

	_, err = p.Submit(context.Background(), testSession(), b.ID())
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrNetwork)
	assert.Contains(t, err.Error(), "b.txt")

	assert.Empty(t, tables.calls)
	snap := b.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, DialogError, snap.Dialog)
	assert.NotEmpty(t, snap.Error)

	// The batch is kept for a retry without re-selecting files.
	assert.Len(t, snap.Files, 3)
	assert.Equal(t, 3, store.Len())
	_, err = p.Batch(testSession(), b.ID())
	assert.NoError(t, err)
}

func TestPipeline_RetryAfterFailure(t *testing.T) {
	store := storagetest.NewMemory()
	tables := &recordingTables{err: &apiclient.RequestFailedError{StatusCode: 500, Message: "ingest down"}}

	p := NewPipeline(store, echoUploader(), tables, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	stageAll(t, p, b.ID(), textFile("a.txt", "alpha"))

	_, err = p.Submit(context.Background(), testSession(), b.ID())
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
	assert.Equal(t, StateFailed, b.State())

	tables.err = nil
	res, err := p.Submit(context.Background(), testSession(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, "t-1", res.TableID)
	assert.Len(t, tables.calls, 2)
}

func TestPipeline_ConcurrentUploads(t *testing.T) {
	const files = 3
	var (
		inFlight atomic.Int32
		peak     atomic.Int32
		arrived  sync.WaitGroup
	)
	arrived.Add(files)

	uploader := uploaderFunc(func(ctx context.Context, _ *model.Session, f apiclient.UploadFile, _ apiclient.ProgressFunc) (string, error) {
		n := inFlight.Add(1)
		for {
			cur := peak.Load()
			if n <= cur || peak.CompareAndSwap(cur, n) {
				break
			}
		}
		arrived.Done()
		// Every upload waits for the others, which only completes if they run in parallel.
		arrived.Wait()
		inFlight.Add(-1)
		return "uploads/" + f.Name, nil
	})

	p := NewPipeline(storagetest.NewMemory(), uploader, &recordingTables{}, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	stageAll(t, p, b.ID(), textFile("a.txt", "a"), textFile("b.txt", "b"), textFile("c.txt", "c"))

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), testSession(), b.ID())
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("uploads did not run concurrently")
	}
	assert.Equal(t, int32(files), peak.Load())
}

func TestPipeline_ProgressMonotonic(t *testing.T) {
	for _, fail := range []bool{false, true} {
		name := "success"
		if fail {
			name = "failure"
		}
		t.Run(name, func(t *testing.T) {
			var (
				b    *Batch
				seen []int
			)
			record := func() {
				seen = append(seen, b.Snapshot().Files[0].Progress)
			}
			uploader := uploaderFunc(func(_ context.Context, _ *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error) {
				io.Copy(io.Discard, f.Body)
				for _, loaded := range []int64{10, 40, 30, 99, 100} {
					progress(loaded, 100)
					record()
				}
				if fail {
					return "", &apiclient.InvalidResponseError{Err: errors.New("missing filePath")}
				}
				return "uploads/a.txt", nil
			})

			p := NewPipeline(storagetest.NewMemory(), uploader, &recordingTables{}, Options{Logger: zerolog.Nop()})
			var err error
			b, err = p.Open(testSession(), "Reports")
			require.NoError(t, err)
			stageAll(t, p, b.ID(), textFile("a.txt", "alpha"))

			_, err = p.Submit(context.Background(), testSession(), b.ID())
			final := b.Snapshot().Files[0].Progress

			assert.Equal(t, []int{10, 40, 40, 99, 99}, seen)
			if fail {
				require.Error(t, err)
				assert.Equal(t, 99, final)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 100, final)
		})
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, progressPercent(0, 0))
	assert.Equal(t, 0, progressPercent(0, 10))
	assert.Equal(t, 33, progressPercent(1, 3))
	assert.Equal(t, 67, progressPercent(2, 3))
	assert.Equal(t, 50, progressPercent(1, 2))
	assert.Equal(t, 100, progressPercent(10, 10))
}

func TestPipeline_Stage(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects before storing", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		p := NewPipeline(store, echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
		b, err := p.Open(testSession(), "Reports")
		require.NoError(t, err)

		_, err = p.Stage(ctx, testSession(), b.ID(), Incoming{Name: "pic.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrUnsupportedType)

		_, err = p.Stage(ctx, testSession(), b.ID(), Incoming{Name: "big.pdf", ContentType: TypePDF, Size: 51 * 1024 * 1024, Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrFileTooLarge)

		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, StateEmpty, b.State())
	})

	t.Run("sniffs generic type", func(t *testing.T) {
		p := NewPipeline(storagetest.NewMemory(), echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
		b, err := p.Open(testSession(), "Reports")
		require.NoError(t, err)

		body := "%PDF-1.4\n1 0 obj\n<< >>\nendobj\n"
		f, err := p.Stage(ctx, testSession(), b.ID(), Incoming{Name: "Scan.PDF", ContentType: "application/octet-stream", Size: int64(len(body)), Body: strings.NewReader(body)})
		require.NoError(t, err)
		assert.Equal(t, TypePDF, f.ContentType)
		assert.True(t, strings.HasPrefix(f.key, "staging/"+b.ID()+"/"))
		assert.True(t, strings.HasSuffix(f.key, ".pdf"))
	})

	t.Run("storage error", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("bucket gone"))

		p := NewPipeline(store, echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
		b, err := p.Open(testSession(), "Reports")
		require.NoError(t, err)

		_, err = p.Stage(ctx, testSession(), b.ID(), textFile("a.txt", "alpha"))
		assert.EqualError(t, err, "stage a.txt: bucket gone")
		assert.Equal(t, StateEmpty, b.State())
	})

	t.Run("other principals cannot see the batch", func(t *testing.T) {
		p := NewPipeline(storagetest.NewMemory(), echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
		b, err := p.Open(testSession(), "Reports")
		require.NoError(t, err)

		other := &model.Session{Email: "eve@example.com"}
		_, err = p.Stage(ctx, other, b.ID(), textFile("a.txt", "alpha"))
		assert.ErrorIs(t, err, ErrBatchNotFound)

		_, err = p.Batch(nil, b.ID())
		assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
	})
}

func TestPipeline_RemoveAndDiscard(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewMemory()
	p := NewPipeline(store, echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})

	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	staged := stageAll(t, p, b.ID(), textFile("a.txt", "alpha"), textFile("b.txt", "bravo"), textFile("c.txt", "charlie"))

	require.NoError(t, p.Remove(ctx, testSession(), b.ID(), staged[1].ID))
	snap := b.Snapshot()
	require.Len(t, snap.Files, 2)
	assert.Equal(t, "a.txt", snap.Files[0].Name)
	assert.Equal(t, "c.txt", snap.Files[1].Name)
	assert.Equal(t, 2, store.Len())

	assert.ErrorIs(t, p.Remove(ctx, testSession(), b.ID(), staged[1].ID), ErrFileNotFound)

	require.NoError(t, p.Discard(ctx, testSession(), b.ID()))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, p.Len())
	assert.ErrorIs(t, p.Discard(ctx, testSession(), b.ID()), ErrBatchNotFound)
}

func TestPipeline_BusyWhileUploading(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})

	uploader := uploaderFunc(func(_ context.Context, _ *model.Session, f apiclient.UploadFile, _ apiclient.ProgressFunc) (string, error) {
		close(started)
		<-release
		return "uploads/" + f.Name, nil
	})
	p := NewPipeline(storagetest.NewMemory(), uploader, &recordingTables{}, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	staged := stageAll(t, p, b.ID(), textFile("a.txt", "alpha"))

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(ctx, testSession(), b.ID())
		done <- err
	}()
	<-started

	assert.Equal(t, DialogSubmitting, b.Snapshot().Dialog)
	assert.ErrorIs(t, p.Discard(ctx, testSession(), b.ID()), ErrBatchBusy)
	assert.ErrorIs(t, p.Remove(ctx, testSession(), b.ID(), staged[0].ID), ErrBatchBusy)
	_, err = p.Stage(ctx, testSession(), b.ID(), textFile("b.txt", "bravo"))
	assert.ErrorIs(t, err, ErrBatchBusy)
	_, err = p.Submit(ctx, testSession(), b.ID())
	assert.ErrorIs(t, err, ErrBatchBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestPipeline_SubmitEmpty(t *testing.T) {
	p := NewPipeline(storagetest.NewMemory(), echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), testSession(), b.ID())
	assert.ErrorIs(t, err, ErrBatchEmpty)
	assert.Equal(t, StateEmpty, b.State())

	_, err = p.Open(testSession(), "  ")
	assert.ErrorIs(t, err, ErrTableNameRequired)
}

func TestPipeline_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := storagetest.NewMemory()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	p := NewPipeline(store, echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop(), Metrics: m, Now: clock})

	old, err := p.Open(testSession(), "Old")
	require.NoError(t, err)
	stageAll(t, p, old.ID(), textFile("a.txt", "alpha"))

	now = now.Add(2 * time.Hour)
	fresh, err := p.Open(testSession(), "Fresh")
	require.NoError(t, err)

	n, err := p.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, store.Len())

	_, err = p.Batch(testSession(), old.ID())
	assert.ErrorIs(t, err, ErrBatchNotFound)
	_, err = p.Batch(testSession(), fresh.ID())
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.batches.WithLabelValues(resultExpired)))
}

// gatedStore holds every Put until release is closed.
type gatedStore struct {
	*storagetest.Memory
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	close(s.entered)
	<-s.release
	return s.Memory.Put(ctx, key, r, opt)
}

func TestPipeline_StageRacingDiscard(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{Memory: storagetest.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	p := NewPipeline(store, echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.Stage(ctx, testSession(), b.ID(), textFile("late.txt", "too late"))
		done <- err
	}()
	<-store.entered

	require.NoError(t, p.Discard(ctx, testSession(), b.ID()))
	close(store.release)

	assert.ErrorIs(t, <-done, ErrBatchNotFound)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, b.Snapshot().Files)
}

func TestPipeline_ClosedAfterSubmit(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(storagetest.NewMemory(), echoUploader(), &recordingTables{}, Options{Logger: zerolog.Nop()})
	b, err := p.Open(testSession(), "Reports")
	require.NoError(t, err)
	staged := stageAll(t, p, b.ID(), textFile("a.txt", "alpha"))

	_, err = p.Submit(ctx, testSession(), b.ID())
	require.NoError(t, err)

	assert.ErrorIs(t, b.stage(&File{ID: "x", Name: "b.txt"}), ErrBatchNotFound)
	_, err = b.remove(staged[0].ID)
	assert.ErrorIs(t, err, ErrBatchNotFound)
	_, err = b.beginSubmit()
	assert.ErrorIs(t, err, ErrBatchNotFound)
	assert.Equal(t, StateSucceeded, b.State())
}
