package upload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sharetome/internal/apiclient"
	"sharetome/internal/model"
	"sharetome/internal/storage"
)

var ErrTableNameRequired = errors.New("table name is required")

// Uploader sends one file to the backend and returns the path it was stored under.
type Uploader interface {
	Upload(ctx context.Context, sess *model.Session, f apiclient.UploadFile, progress apiclient.ProgressFunc) (string, error)
}

// TableCreator registers uploaded files against a table.
type TableCreator interface {
	CreateTable(ctx context.Context, sess *model.Session, in model.CreateTableInput) (*model.CreateTableResult, error)
}

// Incoming is a file received from the browser, not yet staged.
type Incoming struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Options configures a Pipeline. Zero values are usable.
type Options struct {
	// MaxConcurrency caps in-flight uploads per submit. Zero means no cap.
	MaxConcurrency int
	Logger         zerolog.Logger
	Metrics        *Metrics
	Now            func() time.Time
}

// Pipeline owns upload batches from the first staged file until the files are
// attached to a table or the batch is discarded. File bodies wait in staging
// storage in between.
type Pipeline struct {
	store    storage.Storage
	uploader Uploader
	tables   TableCreator
	batches  *registry

	maxConcurrency int
	log            zerolog.Logger
	metrics        *Metrics
	now            func() time.Time
}

func NewPipeline(store storage.Storage, uploader Uploader, tables TableCreator, opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:          store,
		uploader:       uploader,
		tables:         tables,
		batches:        newRegistry(),
		maxConcurrency: opts.MaxConcurrency,
		log:            opts.Logger.With().Str("component", "upload").Logger(),
		metrics:        opts.Metrics,
		now:            now,
	}
}

// Open starts an empty batch that will attach its files to tableName.
func (p *Pipeline) Open(sess *model.Session, tableName string) (*Batch, error) {
	if sess == nil || sess.Email == "" {
		return nil, apiclient.ErrUnauthenticated
	}
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, ErrTableNameRequired
	}
	b := newBatch(uuid.NewString(), sess.Email, tableName, p.now)
	p.batches.add(b)
	return b, nil
}

// Batch returns an open batch owned by the session principal.
func (p *Pipeline) Batch(sess *model.Session, batchID string) (*Batch, error) {
	if sess == nil || sess.Email == "" {
		return nil, apiclient.ErrUnauthenticated
	}
	return p.batches.get(sess.Email, batchID)
}

// Stage validates in and copies it into staging storage as a new file of the batch.
func (p *Pipeline) Stage(ctx context.Context, sess *model.Session, batchID string, in Incoming) (*File, error) {
	b, err := p.Batch(sess, batchID)
	if err != nil {
		return nil, err
	}
	if b.State() == StateUploading {
		return nil, ErrBatchBusy
	}
	if in.Body == nil {
		return nil, &FileError{FileName: in.Name, Err: errors.New("empty body")}
	}

	br := bufio.NewReaderSize(in.Body, SniffLen)
	head, _ := br.Peek(SniffLen)
	contentType := DetectContentType(in.ContentType, head)
	if err := ValidateFile(in.Name, contentType, in.Size); err != nil {
		return nil, err
	}

	f := &File{
		ID:          uuid.NewString(),
		Name:        in.Name,
		ContentType: contentType,
		Size:        in.Size,
	}
	f.key = stagingKey(b.id, f.ID, in.Name)

	info, err := p.store.Put(ctx, f.key, io.LimitReader(br, MaxFileSize+1), storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": in.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", in.Name, err)
	}
	if info.Size > MaxFileSize {
		p.deleteBlob(ctx, f.key)
		return nil, &FileError{FileName: in.Name, Err: ErrFileTooLarge}
	}
	if info.Size > 0 {
		f.Size = info.Size
	}

	if err := b.stage(f); err != nil {
		p.deleteBlob(ctx, f.key)
		return nil, err
	}
	return f, nil
}

// Remove drops one file from a batch that is not uploading.
func (p *Pipeline) Remove(ctx context.Context, sess *model.Session, batchID, fileID string) error {
	b, err := p.Batch(sess, batchID)
	if err != nil {
		return err
	}
	f, err := b.remove(fileID)
	if err != nil {
		return err
	}
	p.deleteBlob(ctx, f.key)
	return nil
}

// Discard throws away a batch and its staged files. Batches that are
// uploading cannot be discarded.
func (p *Pipeline) Discard(ctx context.Context, sess *model.Session, batchID string) error {
	b, err := p.Batch(sess, batchID)
	if err != nil {
		return err
	}
	if err := p.release(ctx, b); err != nil {
		return err
	}
	p.metrics.observeBatch(resultDiscarded)
	return nil
}

// Submit uploads every staged file concurrently and, once all of them are
// stored by the backend, attaches them to the batch's table. Any failure
// leaves the batch Failed with its files still staged.
func (p *Pipeline) Submit(ctx context.Context, sess *model.Session, batchID string) (*model.CreateTableResult, error) {
	b, err := p.Batch(sess, batchID)
	if err != nil {
		return nil, err
	}
	files, err := b.beginSubmit()
	if err != nil {
		return nil, err
	}

	start := p.now()
	log := p.log.With().
		Str("batch_id", b.id).
		Str("table_name", b.tableName).
		Int("files", len(files)).
		Logger()

	res, err := p.submit(ctx, sess, b, files)
	b.finish(err)
	if err != nil {
		p.metrics.observeBatch(resultFailure)
		log.Warn().Err(err).Dur("elapsed", p.now().Sub(start)).Msg("upload batch failed")
		return nil, err
	}

	p.metrics.observeBatch(resultSuccess)
	log.Info().Str("table_id", res.TableID).Dur("elapsed", p.now().Sub(start)).Msg("upload batch attached")

	p.batches.delete(b.id)
	if err := p.store.DeletePrefix(context.WithoutCancel(ctx), batchPrefix(b.id)); err != nil {
		log.Warn().Err(err).Msg("clear staged files")
	}
	return res, nil
}

func (p *Pipeline) submit(ctx context.Context, sess *model.Session, b *Batch, files []File) (*model.CreateTableResult, error) {
	if err := Validate(files); err != nil {
		return nil, err
	}

	refs := make([]model.DocumentRef, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if p.maxConcurrency > 0 {
		g.SetLimit(p.maxConcurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			filePath, err := p.send(gctx, sess, b, f)
			p.metrics.observeFile(err)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			refs[i] = model.DocumentRef{FileName: f.Name, FilePath: filePath}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := p.tables.CreateTable(ctx, sess, model.CreateTableInput{
		TableName:         b.tableName,
		IsPublic:          false,
		SkipTableCreation: true,
		Documents:         refs,
	})
	if err != nil {
		return nil, fmt.Errorf("attach documents to %s: %w", b.tableName, err)
	}
	return res, nil
}

func (p *Pipeline) send(ctx context.Context, sess *model.Session, b *Batch, f File) (string, error) {
	rc, info, err := p.store.Get(ctx, f.key)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer rc.Close()

	size := f.Size
	if info.Size > 0 {
		size = info.Size
	}
	filePath, err := p.uploader.Upload(ctx, sess, apiclient.UploadFile{
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        size,
		Body:        rc,
	}, func(loaded, total int64) {
		b.setProgress(f.ID, progressPercent(loaded, total))
	})
	if err != nil {
		return "", err
	}
	b.completeFile(f.ID)
	return filePath, nil
}

// Sweep discards batches idle for longer than ttl. Batches that are uploading are left alone.
func (p *Pipeline) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	var (
		n    int
		errs []error
	)
	for _, b := range p.batches.stale(p.now().Add(-ttl)) {
		if err := p.release(ctx, b); err != nil {
			if !errors.Is(err, ErrBatchBusy) {
				errs = append(errs, err)
			}
			continue
		}
		p.metrics.observeBatch(resultExpired)
		n++
	}
	return n, errors.Join(errs...)
}

// Len returns the number of open batches.
func (p *Pipeline) Len() int { return p.batches.len() }

func (p *Pipeline) release(ctx context.Context, b *Batch) error {
	if err := b.claimForDiscard(); err != nil {
		return err
	}
	p.batches.delete(b.id)
	if err := p.store.DeletePrefix(ctx, batchPrefix(b.id)); err != nil {
		return fmt.Errorf("clear staged files of %s: %w", b.id, err)
	}
	return nil
}

func (p *Pipeline) deleteBlob(ctx context.Context, key string) {
	if err := p.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("delete staged file")
	}
}

func batchPrefix(batchID string) string { return "staging/" + batchID + "/" }

func stagingKey(batchID, fileID, name string) string {
	return batchPrefix(batchID) + fileID + strings.ToLower(path.Ext(name))
}
