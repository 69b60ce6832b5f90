package diagnostics

import (
	"context"
	"encoding/json"
	"image"
	// registered so DecodeConfig understands the panels we write.
	_ "image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.viam.com/navviz/logging"
)

// Image is a reference to an image file that has been handed to a Sink.
type Image struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// A Sink is an experiment tracker that accepts batches of images.
type Sink interface {
	// ImageFromFile builds a loggable image from a file on disk.
	ImageFromFile(path string) (Image, error)
	// LogImages logs images under key for the current step. The step only advances when commit
	// is true.
	LogImages(ctx context.Context, key string, images []Image, commit bool) error
}

// Record is one LogImages call as stored by the sinks in this package.
type Record struct {
	RunID  string    `json:"run_id"`
	Step   int       `json:"step"`
	Time   time.Time `json:"time"`
	Key    string    `json:"key"`
	Images []Image   `json:"images"`
	Commit bool      `json:"commit"`
}

// imageFromFile reads just enough of path to know its dimensions.
func imageFromFile(path string) (Image, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return Image{}, errors.Wrapf(err, "couldn't open image %q", path)
	}
	defer func() {
		//nolint:errcheck,gosec
		f.Close()
	}()
	conf, _, err := image.DecodeConfig(f)
	if err != nil {
		return Image{}, errors.Wrapf(err, "couldn't decode image %q", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Image{Path: abs, Width: conf.Width, Height: conf.Height}, nil
}

// FileSink writes one JSON record per LogImages call to a size-rotated file.
type FileSink struct {
	mu     sync.Mutex
	out    *lumberjack.Logger
	runID  string
	step   int
	logger logging.Logger
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink appending records to path under a fresh run id.
func NewFileSink(path string, logger logging.Logger) *FileSink {
	runID := uuid.NewString()
	logger.Debugw("opened run log", "path", path, "run_id", runID)
	return &FileSink{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 3,
			Compress:   true,
		},
		runID:  runID,
		logger: logger,
	}
}

// RunID identifies the records written by this sink.
func (s *FileSink) RunID() string {
	return s.runID
}

// ImageFromFile implements Sink.
func (s *FileSink) ImageFromFile(path string) (Image, error) {
	return imageFromFile(path)
}

// LogImages implements Sink.
func (s *FileSink) LogImages(ctx context.Context, key string, images []Image, commit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(Record{
		RunID:  s.runID,
		Step:   s.step,
		Time:   time.Now().UTC(),
		Key:    key,
		Images: images,
		Commit: commit,
	})
	if err != nil {
		return err
	}
	if _, err := s.out.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "couldn't write run log record")
	}
	if commit {
		s.step++
	}
	return nil
}

// Close releases the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}

// MemorySink keeps every record in memory.
type MemorySink struct {
	mu      sync.Mutex
	step    int
	records []Record
}

var _ Sink = (*MemorySink)(nil)

// ImageFromFile implements Sink.
func (s *MemorySink) ImageFromFile(path string) (Image, error) {
	return imageFromFile(path)
}

// LogImages implements Sink.
func (s *MemorySink) LogImages(ctx context.Context, key string, images []Image, commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		Step:   s.step,
		Time:   time.Now().UTC(),
		Key:    key,
		Images: append([]Image(nil), images...),
		Commit: commit,
	})
	if commit {
		s.step++
	}
	return nil
}

// Records returns a copy of everything logged so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}
