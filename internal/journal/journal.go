// Package journal ingests the launcher's foreground-event log. The launcher
// shell appends one line per app foreground/background transition; the watch
// daemon tails that file and batch-inserts parsed events into the store,
// where the aggregator reads them back as the "real data" path.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/store"
)

const maxLinesPerFlush = 10_000

// Tailer follows the journal file and flushes parsed events to the store.
// It reacts to file writes via fsnotify and keeps a slow ticker as a
// fallback for missed notifications.
type Tailer struct {
	store    *store.Store
	path     string
	interval time.Duration
	logger   zerolog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewTailer creates a Tailer for the journal at path, flushing at least
// every interval.
func NewTailer(st *store.Store, path string, interval time.Duration, logger zerolog.Logger) (*Tailer, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Tailer{
		store:    st,
		path:     path,
		interval: interval,
		logger:   logger.With().Str("component", "journal").Logger(),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start processes any backlog immediately, then follows the journal until
// Stop is called.
func (t *Tailer) Start() error {
	if err := t.flush(); err != nil {
		t.logger.Error().Err(err).Msg("Initial journal flush failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the containing directory: the journal file itself may not exist
	// yet, and editors/loggers often replace files rather than append.
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch journal directory: %w", err)
	}

	t.wg.Add(1)
	go t.run(watcher)

	return nil
}

func (t *Tailer) run(watcher *fsnotify.Watcher) {
	defer t.wg.Done()
	defer watcher.Close()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != t.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := t.flush(); err != nil {
				t.logger.Error().Err(err).Msg("Journal flush failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.logger.Warn().Err(err).Msg("Journal watch error")
		case <-ticker.C:
			if err := t.flush(); err != nil {
				t.logger.Error().Err(err).Msg("Journal flush failed")
			}
		case <-t.stopCh:
			// Final flush so no tail entries are lost on shutdown.
			if err := t.flush(); err != nil {
				t.logger.Error().Err(err).Msg("Final journal flush failed")
			}
			return
		}
	}
}

// Stop halts the tailer after a final flush.
func (t *Tailer) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}

func (t *Tailer) flush() error {
	n, err := Process(t.store, t.path)
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.Debug().Int("events", n).Msg("Journal events flushed")
	}
	return nil
}

// Process reads journal entries appended since the last processed byte
// offset and batch-inserts them into the store in one transaction. The
// offset is kept in a sibling file ("<journal>.offset"). Returns the number
// of events inserted.
//
// Journal line format, one entry per line:
//
//	<unix_nano>,<fg|bg>,<package>
//
// Example:
//
//	1779012345678901234,fg,com.instagram.android
//
// Malformed lines are skipped, not fatal. A final line without a trailing
// newline is still being written and is left for a later flush. A missing
// journal file is a no-op.
func Process(st *store.Store, path string) (int, error) {
	offsetPath := path + ".offset"

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("journal: open: %w", err)
	}
	defer f.Close()

	offset, err := readOffset(offsetPath)
	if err != nil {
		return 0, fmt.Errorf("journal: read offset: %w", err)
	}

	// The journal was truncated or rotated: start over.
	if info, err := f.Stat(); err == nil && info.Size() < offset {
		offset = 0
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("journal: seek: %w", err)
	}

	var (
		events   []*store.ForegroundEvent
		consumed int64
	)

	// Only lines terminated by a newline are consumed. A half-written final
	// line (writer mid-append, or a crash) is left for the next flush, so the
	// offset never runs past what was actually parsed.
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("journal: read: %w", err)
		}
		consumed += int64(len(line))

		// Malformed lines are skipped; they still advance the offset since
		// they will never parse.
		ev, perr := parseLine(line)
		if perr != nil {
			continue
		}
		events = append(events, ev)

		if len(events) >= maxLinesPerFlush {
			break
		}
	}

	if err := st.InsertForegroundEvents(events); err != nil {
		return 0, fmt.Errorf("journal: insert events: %w", err)
	}

	if err := writeOffset(offsetPath, offset+consumed); err != nil {
		return 0, fmt.Errorf("journal: write offset: %w", err)
	}

	return len(events), nil
}

func parseLine(line string) (*store.ForegroundEvent, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, fmt.Errorf("blank or comment line")
	}

	parts := strings.SplitN(line, ",", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 3 fields, got %d", len(parts))
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", parts[0], err)
	}

	var eventType string
	switch parts[1] {
	case "fg":
		eventType = store.EventForeground
	case "bg":
		eventType = store.EventBackground
	default:
		return nil, fmt.Errorf("unknown event type %q", parts[1])
	}

	pkg := strings.TrimSpace(parts[2])
	if pkg == "" {
		return nil, fmt.Errorf("empty package")
	}

	return &store.ForegroundEvent{
		Package:   pkg,
		EventType: eventType,
		Timestamp: time.Unix(0, nanos),
	}, nil
}

func readOffset(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	offset, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || offset < 0 {
		// Corrupt offset file: reprocess from the start.
		return 0, nil
	}
	return offset, nil
}

func writeOffset(path string, offset int64) error {
	return os.WriteFile(path, []byte(strconv.FormatInt(offset, 10)+"\n"), 0644)
}
