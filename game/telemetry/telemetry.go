package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// DefaultBatchSize is the number of ticks buffered before a batch file is written
const DefaultBatchSize = 512

// Tick is one autopilot decision and its outcome in the simulator
type Tick struct {
	Session     string `parquet:"session,dict"`
	Scenario    string `parquet:"scenario,dict"`
	Tick        int32  `parquet:"tick"`
	X           int32  `parquet:"x"`
	Y           int32  `parquet:"y"`
	Orientation string `parquet:"orientation,dict"`
	Health      int32  `parquet:"health"`
	Keys        int32  `parquet:"keys"`
	Mode        string `parquet:"mode,dict"`
	Command     string `parquet:"command,dict"`
	Throttle    string `parquet:"throttle,dict"`
	Remaining   int32  `parquet:"remaining"`
	Thrashing   bool   `parquet:"thrashing"`
	Fallback    bool   `parquet:"fallback"`
	Success     bool   `parquet:"success"`
	GameOver    bool   `parquet:"game_over"`
	Victory     bool   `parquet:"victory"`
	UnixMillis  int64  `parquet:"unix_ms"`
}

// Recorder receives autopilot ticks
type Recorder interface {
	Record(t Tick) error
}

// Writer buffers ticks and writes them as zstd compressed parquet batches.
// It is safe for concurrent use.
type Writer struct {
	outDir    string
	batchSize int

	mu    sync.Mutex
	buf   []Tick
	files []string
	seq   int
}

var _ Recorder = (*Writer)(nil)

// NewWriter creates outDir and returns a writer flushing every batchSize ticks
func NewWriter(outDir string, batchSize int) (*Writer, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if err := os.MkdirAll(filepath.Join(outDir, "tmp"), 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}
	return &Writer{outDir: outDir, batchSize: batchSize}, nil
}

// Record buffers t, writing a batch once the buffer is full
func (w *Writer) Record(t Tick) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t.UnixMillis == 0 {
		t.UnixMillis = time.Now().UnixMilli()
	}
	w.buf = append(w.buf, t)
	if len(w.buf) < w.batchSize {
		return nil
	}
	_, err := w.flushLocked()
	return err
}

// Flush writes the buffered ticks and returns the new file, or "" when nothing was buffered
func (w *Writer) Flush() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// Close flushes the remaining ticks
func (w *Writer) Close() error {
	_, err := w.Flush()
	return err
}

// Files returns the batch files written so far
func (w *Writer) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.files...)
}

// Buffered returns the number of ticks not yet written
func (w *Writer) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buf)
}

func (w *Writer) flushLocked() (string, error) {
	if len(w.buf) == 0 {
		return "", nil
	}
	w.seq++
	name := fmt.Sprintf("ticks_%d_%04d.parquet", time.Now().UnixNano(), w.seq)
	path, err := writeBatch(w.outDir, name, w.buf)
	if err != nil {
		return "", err
	}
	w.buf = w.buf[:0]
	w.files = append(w.files, path)
	return path, nil
}

// writeBatch writes rows to tmp/ and renames the file into outDir
func writeBatch(outDir, name string, rows []Tick) (string, error) {
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(outDir, "tmp", name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "autopilot_tick_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadFile loads every tick of a batch file
func ReadFile(path string) ([]Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[Tick](f)
	defer reader.Close()

	ticks := make([]Tick, 0, reader.NumRows())
	buf := make([]Tick, 256)
	for {
		n, err := reader.Read(buf)
		ticks = append(ticks, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return ticks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
}
