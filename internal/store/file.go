package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/roach88/cmdvault/internal/record"
)

// seqSuffix names the sidecar file holding the highest id ever allocated.
const seqSuffix = ".seq"

// FileStore is the flat-file Backend: one CSV row per record, no header.
//
// Every operation is a scoped open-read-close of the file; writes other than
// Add rewrite the whole file, sorted by usage count descending, through a
// temporary file and a rename.
type FileStore struct {
	fs   afero.Fs
	path string
}

// OpenFile opens the CSV store at path on fs, creating the file and its
// directory if needed.
func OpenFile(fs afero.Fs, path string) (*FileStore, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StorageError{Backend: "csv", Op: "open", Err: err}
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &StorageError{Backend: "csv", Op: "open", Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &StorageError{Backend: "csv", Op: "open", Err: err}
	}
	return &FileStore{fs: fs, path: path}, nil
}

// Name implements Backend.
func (s *FileStore) Name() string {
	return "csv"
}

// Close implements Backend. The store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// Add implements Backend. The new row is appended without a rewrite.
func (s *FileStore) Add(ctx context.Context, text string) error {
	text = record.Normalize(text)
	records, err := s.readAll()
	if err != nil {
		return s.fail("add", err)
	}
	if len(record.WithText(records, text)) > 0 {
		return duplicate(text)
	}

	id, err := s.nextID(records)
	if err != nil {
		return s.fail("add", err)
	}

	f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return s.fail("add", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(encodeRow(record.Record{ID: id, Text: text})); err != nil {
		f.Close()
		return s.fail("add", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return s.fail("add", err)
	}
	if err := f.Close(); err != nil {
		return s.fail("add", err)
	}
	return nil
}

// Upsert implements Backend.
func (s *FileStore) Upsert(ctx context.Context, rec record.Record) error {
	return s.write("upsert", rec, 1)
}

// InsertOrReplace implements Backend.
func (s *FileStore) InsertOrReplace(ctx context.Context, rec record.Record) error {
	return s.write("insert or replace", rec, rec.UsageCount)
}

// write sets the usage count of every row with rec's text, or appends a new
// row carrying firstCount.
func (s *FileStore) write(op string, rec record.Record, firstCount int64) error {
	if rec.UsageCount < 0 {
		return s.fail(op, fmt.Errorf("negative usage count %d for %q", rec.UsageCount, rec.Text))
	}
	text := record.Normalize(rec.Text)

	records, err := s.readAll()
	if err != nil {
		return s.fail(op, err)
	}

	found := false
	for i := range records {
		if records[i].Text == text {
			records[i].UsageCount = rec.UsageCount
			found = true
		}
	}
	if !found {
		id, err := s.nextID(records)
		if err != nil {
			return s.fail(op, err)
		}
		records = append(records, record.Record{ID: id, Text: text, UsageCount: firstCount})
	}

	if err := s.rewrite(records); err != nil {
		return s.fail(op, err)
	}
	return nil
}

// Query implements Backend. Rows come back in file order.
func (s *FileStore) Query(ctx context.Context, f record.Filter) ([]record.Record, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, s.fail("query", err)
	}
	return f.Apply(records), nil
}

// Delete implements Backend.
func (s *FileStore) Delete(ctx context.Context, rec record.Record) error {
	text := record.Normalize(rec.Text)
	records, err := s.readAll()
	if err != nil {
		return s.fail("delete", err)
	}

	kept := records[:0]
	for _, r := range records {
		if r.Text != text {
			kept = append(kept, r)
		}
	}
	if err := s.rewrite(kept); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

// Clear implements Backend. The id sidecar survives so ids are not reused.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := s.rewrite(nil); err != nil {
		return s.fail("clear", err)
	}
	return nil
}

// Summary implements Backend.
func (s *FileStore) Summary(ctx context.Context) ([]UsageGroup, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, s.fail("summary", err)
	}

	counts := make(map[int64]int64)
	for _, r := range records {
		counts[r.UsageCount]++
	}
	groups := make([]UsageGroup, 0, len(counts))
	for used, n := range counts {
		groups = append(groups, UsageGroup{UsageCount: used, Commands: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].UsageCount > groups[j].UsageCount
	})
	return groups, nil
}

// readAll loads every row. A missing file reads as an empty store.
func (s *FileStore) readAll() ([]record.Record, error) {
	f, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	var records []record.Record
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", s.path, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// rewrite replaces the store contents with records sorted by usage count
// descending. Ties keep their current order.
func (s *FileStore) rewrite(records []record.Record) (err error) {
	sorted := make([]record.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := afero.TempFile(s.fs, dir, base+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			s.fs.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	for _, r := range sorted {
		if err := w.Write(encodeRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp.Name(), s.path)
}

// nextID allocates an id above every id in records and every id handed out
// before, and persists the new high-water mark.
func (s *FileStore) nextID(records []record.Record) (int64, error) {
	high, err := s.readSeq()
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		high = max(high, r.ID)
	}
	id := high + 1
	if err := afero.WriteFile(s.fs, s.path+seqSuffix, []byte(strconv.FormatInt(id, 10)), 0o644); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *FileStore) readSeq() (int64, error) {
	data, err := afero.ReadFile(s.fs, s.path+seqSuffix)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", s.path, seqSuffix, err)
	}
	return seq, nil
}

func (s *FileStore) fail(op string, err error) error {
	return &StorageError{Backend: s.Name(), Op: op, Err: err}
}

func encodeRow(r record.Record) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Text,
		strconv.FormatInt(r.UsageCount, 10),
	}
}

func decodeRow(row []string) (record.Record, error) {
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("parse id: %w", err)
	}
	used, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("parse usage count: %w", err)
	}
	if used < 0 {
		return record.Record{}, fmt.Errorf("negative usage count %d", used)
	}
	return record.Record{ID: id, Text: row[1], UsageCount: used}, nil
}
