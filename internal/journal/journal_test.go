package journal

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	if err := st.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func writeJournal(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "events.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write journal: %v", err)
	}
	return path
}

func TestProcess_ParsesAndInserts(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	content := strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.instagram.android\n" +
		strconv.FormatInt(base.Add(5*time.Minute).UnixNano(), 10) + ",bg,com.instagram.android\n"
	path := writeJournal(t, t.TempDir(), content)

	n, err := Process(st, path)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Process() inserted %d events; want 2", n)
	}

	events, err := st.GetForegroundEvents(base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetForegroundEvents() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events; want 2", len(events))
	}
	if events[0].EventType != store.EventForeground || events[0].Package != "com.instagram.android" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if !events[0].Timestamp.Equal(base) {
		t.Errorf("first event timestamp = %v; want %v", events[0].Timestamp, base)
	}
}

func TestProcess_OffsetSkipsProcessedEntries(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	base := time.Now()
	line1 := strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.whatsapp\n"
	path := writeJournal(t, dir, line1)

	if n, err := Process(st, path); err != nil || n != 1 {
		t.Fatalf("first Process() = (%d, %v); want (1, nil)", n, err)
	}

	// Reprocessing with no new lines inserts nothing.
	if n, err := Process(st, path); err != nil || n != 0 {
		t.Fatalf("second Process() = (%d, %v); want (0, nil)", n, err)
	}

	// Appending one line yields exactly one new event.
	line2 := strconv.FormatInt(base.Add(time.Minute).UnixNano(), 10) + ",bg,com.whatsapp\n"
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open journal for append: %v", err)
	}
	if _, err := f.WriteString(line2); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	f.Close()

	if n, err := Process(st, path); err != nil || n != 1 {
		t.Fatalf("third Process() = (%d, %v); want (1, nil)", n, err)
	}

	count, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("event count = %d; want 2", count)
	}
}

func TestProcess_MalformedLinesSkipped(t *testing.T) {
	st := newTestStore(t)

	base := time.Now()
	content := "garbage line\n" +
		"123,unknown,com.whatsapp\n" +
		",fg,com.whatsapp\n" +
		strconv.FormatInt(base.UnixNano(), 10) + ",fg,\n" +
		strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.whatsapp\n"
	path := writeJournal(t, t.TempDir(), content)

	n, err := Process(st, path)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Process() inserted %d events; want 1 (malformed lines skipped)", n)
	}

	// Malformed lines advanced the offset; nothing is reprocessed.
	if n, err := Process(st, path); err != nil || n != 0 {
		t.Errorf("second Process() = (%d, %v); want (0, nil)", n, err)
	}
}

func TestProcess_UnterminatedLineWaitsForNewline(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	base := time.Now()
	// The writer is mid-append: no trailing newline yet.
	partial := strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.whatsapp"
	path := writeJournal(t, dir, partial)

	// Repeated flushes must not ingest the half-written line, and must not
	// push the offset past the file size (which would look like a rotation
	// and re-ingest everything).
	for i := 0; i < 3; i++ {
		if n, err := Process(st, path); err != nil || n != 0 {
			t.Fatalf("Process() #%d = (%d, %v); want (0, nil)", i+1, n, err)
		}
	}

	// The writer finishes the line.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open journal for append: %v", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		t.Fatalf("failed to append newline: %v", err)
	}
	f.Close()

	if n, err := Process(st, path); err != nil || n != 1 {
		t.Fatalf("Process() after newline = (%d, %v); want (1, nil)", n, err)
	}

	// The completed line is ingested exactly once.
	for i := 0; i < 3; i++ {
		if n, err := Process(st, path); err != nil || n != 0 {
			t.Fatalf("Process() after ingest = (%d, %v); want (0, nil)", n, err)
		}
	}
	count, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("event count = %d; want 1 (no duplicate ingestion)", count)
	}
}

func TestProcess_PartialTailAfterCompleteLines(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	base := time.Now()
	complete := strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.whatsapp\n"
	partial := strconv.FormatInt(base.Add(time.Minute).UnixNano(), 10) + ",bg,com.what"
	path := writeJournal(t, dir, complete+partial)

	// The complete line is ingested, the tail is not.
	if n, err := Process(st, path); err != nil || n != 1 {
		t.Fatalf("Process() = (%d, %v); want (1, nil)", n, err)
	}

	// Completing the tail yields one more event, not a truncated duplicate.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open journal for append: %v", err)
	}
	if _, err := f.WriteString("sapp\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	f.Close()

	if n, err := Process(st, path); err != nil || n != 1 {
		t.Fatalf("Process() after completion = (%d, %v); want (1, nil)", n, err)
	}

	events, err := st.GetForegroundEvents(base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetForegroundEvents() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events; want 2", len(events))
	}
	if events[1].Package != "com.whatsapp" {
		t.Errorf("completed tail parsed as %q; want com.whatsapp", events[1].Package)
	}
}

func TestProcess_MissingFileIsNoOp(t *testing.T) {
	st := newTestStore(t)

	n, err := Process(st, filepath.Join(t.TempDir(), "missing.log"))
	if err != nil {
		t.Fatalf("Process() on missing file failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Process() = %d; want 0", n)
	}
}

func TestProcess_TruncatedJournalRestartsFromZero(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	base := time.Now()
	long := ""
	for i := 0; i < 5; i++ {
		long += strconv.FormatInt(base.Add(time.Duration(i)*time.Minute).UnixNano(), 10) + ",fg,com.whatsapp\n"
	}
	path := writeJournal(t, dir, long)

	if _, err := Process(st, path); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	// Rotate: replace with a single fresh line, shorter than the old offset.
	fresh := strconv.FormatInt(base.Add(time.Hour).UnixNano(), 10) + ",fg,com.whatsapp\n"
	if err := os.WriteFile(path, []byte(fresh), 0644); err != nil {
		t.Fatalf("failed to rewrite journal: %v", err)
	}

	n, err := Process(st, path)
	if err != nil {
		t.Fatalf("Process() after truncation failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Process() after truncation = %d; want 1", n)
	}
}

func TestTailer_StartStop_FlushesBacklog(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	base := time.Now()
	content := strconv.FormatInt(base.UnixNano(), 10) + ",fg,com.whatsapp\n"
	path := writeJournal(t, dir, content)

	tailer, err := NewTailer(st, path, time.Minute, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTailer() failed: %v", err)
	}
	if err := tailer.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	tailer.Stop()

	count, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("event count = %d; want 1", count)
	}
}

func TestNewTailer_Validation(t *testing.T) {
	st := newTestStore(t)

	if _, err := NewTailer(nil, "/tmp/x", time.Second, zerolog.Nop()); err == nil {
		t.Error("NewTailer(nil store) should fail")
	}
	if _, err := NewTailer(st, "", time.Second, zerolog.Nop()); err == nil {
		t.Error("NewTailer(empty path) should fail")
	}
}

func TestStoreSource_ForegroundTotals(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	events := []*store.ForegroundEvent{
		{Package: "com.whatsapp", EventType: store.EventForeground, Timestamp: base},
		{Package: "com.whatsapp", EventType: store.EventBackground, Timestamp: base.Add(10 * time.Minute)},
		{Package: "com.whatsapp", EventType: store.EventForeground, Timestamp: base.Add(time.Hour)},
		{Package: "com.whatsapp", EventType: store.EventBackground, Timestamp: base.Add(time.Hour + 20*time.Minute)},
		// Background without a foreground: ignored.
		{Package: "com.instagram.android", EventType: store.EventBackground, Timestamp: base.Add(2 * time.Hour)},
	}
	if err := st.InsertForegroundEvents(events); err != nil {
		t.Fatalf("InsertForegroundEvents() failed: %v", err)
	}

	src := NewStoreSource(st, true)
	totals, err := src.ForegroundTotals(base.Add(-time.Hour), base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ForegroundTotals() failed: %v", err)
	}

	if totals["com.whatsapp"] != 30*time.Minute {
		t.Errorf("whatsapp total = %v; want 30m", totals["com.whatsapp"])
	}
	if _, ok := totals["com.instagram.android"]; ok {
		t.Error("unpaired background event should not produce a total")
	}
}

func TestStoreSource_Granted(t *testing.T) {
	st := newTestStore(t)

	if !NewStoreSource(st, true).Granted() {
		t.Error("enabled source over initialized store should be granted")
	}
	if NewStoreSource(st, false).Granted() {
		t.Error("disabled source should not be granted")
	}

	// Uninitialized store: not granted.
	raw, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	defer raw.Close()
	if NewStoreSource(raw, true).Granted() {
		t.Error("source over uninitialized store should not be granted")
	}
}
