package upload

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrBatchNotFound = errors.New("upload batch not found")
	ErrBatchBusy     = errors.New("upload batch is uploading")
	ErrBatchEmpty    = errors.New("upload batch has no files")
	ErrFileNotFound  = errors.New("file not found in batch")
)

// State is the lifecycle position of a batch.
type State int

const (
	StateEmpty State = iota
	StateStaged
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateStaged:
		return "staged"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DialogState is the single state an upload dialog renders from.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogStaging
	DialogSubmitting
	DialogError
)

func (d DialogState) String() string {
	switch d {
	case DialogClosed:
		return "closed"
	case DialogStaging:
		return "staging"
	case DialogSubmitting:
		return "submitting"
	case DialogError:
		return "error"
	}
	return "unknown"
}

func (d DialogState) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Dialog maps a batch state onto the dialog that presents it.
func Dialog(s State) DialogState {
	switch s {
	case StateEmpty, StateStaged:
		return DialogStaging
	case StateUploading:
		return DialogSubmitting
	case StateFailed:
		return DialogError
	}
	return DialogClosed
}

// File is one staged file. Progress is a percentage in [0, 100].
type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Progress    int    `json:"progress"`

	key string
}

// Snapshot is a consistent copy of a batch taken under its lock.
type Snapshot struct {
	ID        string      `json:"id"`
	TableName string      `json:"table_name"`
	State     State       `json:"state"`
	Dialog    DialogState `json:"dialog"`
	Files     []File      `json:"files"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Batch is an ordered set of files waiting to be attached to one table.
// All methods are safe for concurrent use.
type Batch struct {
	id        string
	owner     string
	tableName string

	mu        sync.Mutex
	state     State
	files     []*File
	err       error
	updatedAt time.Time
	now       func() time.Time

	// closed is set once the batch is discarded or attached; it takes no more files.
	closed bool
}

func newBatch(id, owner, tableName string, now func() time.Time) *Batch {
	return &Batch{
		id:        id,
		owner:     owner,
		tableName: tableName,
		state:     StateEmpty,
		updatedAt: now(),
		now:       now,
	}
}

func (b *Batch) ID() string        { return b.id }
func (b *Batch) TableName() string { return b.tableName }

func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Batch) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]File, len(b.files))
	for i, f := range b.files {
		files[i] = *f
	}
	s := Snapshot{
		ID:        b.id,
		TableName: b.tableName,
		State:     b.state,
		Dialog:    Dialog(b.state),
		Files:     files,
		UpdatedAt: b.updatedAt,
	}
	if b.err != nil {
		s.Error = b.err.Error()
	}
	return s
}

// stage appends f. A failed batch returns to Staged so it can be resubmitted.
func (b *Batch) stage(f *File) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBatchNotFound
	}
	if b.state == StateUploading {
		return ErrBatchBusy
	}
	b.files = append(b.files, f)
	b.state = StateStaged
	b.err = nil
	b.touch()
	return nil
}

func (b *Batch) remove(fileID string) (*File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBatchNotFound
	}
	if b.state == StateUploading {
		return nil, ErrBatchBusy
	}
	i := slices.IndexFunc(b.files, func(f *File) bool { return f.ID == fileID })
	if i < 0 {
		return nil, ErrFileNotFound
	}
	f := b.files[i]
	b.files = slices.Delete(b.files, i, i+1)
	if len(b.files) == 0 {
		b.state = StateEmpty
	} else {
		b.state = StateStaged
	}
	b.err = nil
	b.touch()
	return f, nil
}

// beginSubmit moves the batch to Uploading and returns its files in staged order.
func (b *Batch) beginSubmit() ([]File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBatchNotFound
	}
	if b.state == StateUploading {
		return nil, ErrBatchBusy
	}
	if len(b.files) == 0 {
		return nil, ErrBatchEmpty
	}
	files := make([]File, len(b.files))
	for i, f := range b.files {
		f.Progress = 0
		files[i] = *f
	}
	b.state = StateUploading
	b.err = nil
	b.touch()
	return files, nil
}

// setProgress records upload progress for one file. Values never move backwards
// and stay below 100 until completeFile is called.
func (b *Batch) setProgress(fileID string, pct int) {
	pct = min(pct, 99)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.files {
		if f.ID == fileID {
			if pct > f.Progress {
				f.Progress = pct
			}
			return
		}
	}
}

func (b *Batch) completeFile(fileID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.files {
		if f.ID == fileID {
			f.Progress = 100
			return
		}
	}
}

func (b *Batch) finish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateFailed
		b.err = err
	} else {
		b.state = StateSucceeded
		b.closed = true
	}
	b.touch()
}

// claimForDiscard empties and closes the batch unless an upload is in flight.
func (b *Batch) claimForDiscard() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBatchNotFound
	}
	if b.state == StateUploading {
		return ErrBatchBusy
	}
	b.state = StateEmpty
	b.files = nil
	b.closed = true
	b.touch()
	return nil
}

func (b *Batch) idleSince() (time.Time, State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updatedAt, b.state
}

func (b *Batch) touch() { b.updatedAt = b.now() }

func progressPercent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	if loaded >= total {
		return 100
	}
	return int((loaded*100 + total/2) / total)
}
