package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"minigolf/internal/course"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1

	// op, key length, payload size
	diskHeaderSize = 9

	snapshotEncodingVersion = 1
)

type snapshotRecord struct {
	Version  int
	StoredAt time.Time
	Snapshot course.Snapshot
}

type diskRecordMeta struct {
	offset  int64
	keySize uint32
	size    uint32
}

// DiskStore is an append-only log of gob-encoded snapshots. Each record is a
// fixed header, the course id and the payload; deletes append a tombstone.
// The in-memory index is rebuilt by scanning the log on open.
type DiskStore struct {
	file    *os.File
	logger  *log.Logger
	mu      sync.RWMutex
	records map[string]diskRecordMeta
}

// OpenDiskStore opens or creates the log at path.
func OpenDiskStore(path string, logger *log.Logger) (*DiskStore, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open course log: %w", err)
	}
	s := &DiskStore{
		file:    f,
		logger:  logger,
		records: make(map[string]diskRecordMeta),
	}
	if err := s.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	logger.Printf("course store %s: %d courses indexed", path, len(s.records))
	return s, nil
}

func (s *DiskStore) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind course log: %w", err)
	}

	header := make([]byte, diskHeaderSize)
	var offset int64
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("truncated record header at %d: %w", offset, err)
			}
			return fmt.Errorf("read record header: %w", err)
		}
		op := header[0]
		keySize := binary.LittleEndian.Uint32(header[1:5])
		size := binary.LittleEndian.Uint32(header[5:9])

		key := make([]byte, keySize)
		if _, err := io.ReadFull(s.file, key); err != nil {
			return fmt.Errorf("read record key at %d: %w", offset, err)
		}
		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}

		id := string(key)
		if op == diskOpSet {
			s.records[id] = diskRecordMeta{offset: offset, keySize: keySize, size: size}
		} else {
			delete(s.records, id)
		}
		offset += int64(diskHeaderSize) + int64(keySize) + int64(size)
	}
	return nil
}

func (s *DiskStore) append(op byte, id string, payload []byte) (int64, error) {
	header := make([]byte, diskHeaderSize)
	header[0] = op
	binary.LittleEndian.PutUint32(header[1:5], uint32(len(id)))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(payload)))

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek log end: %w", err)
	}
	record := make([]byte, 0, len(header)+len(id)+len(payload))
	record = append(record, header...)
	record = append(record, id...)
	record = append(record, payload...)
	if _, err := s.file.Write(record); err != nil {
		return 0, fmt.Errorf("write record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return 0, fmt.Errorf("sync course log: %w", err)
	}
	return offset, nil
}

func (s *DiskStore) Save(snapshot course.Snapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot has no id")
	}
	var payload bytes.Buffer
	record := snapshotRecord{Version: snapshotEncodingVersion, StoredAt: time.Now().UTC(), Snapshot: snapshot}
	if err := gob.NewEncoder(&payload).Encode(&record); err != nil {
		return fmt.Errorf("encode course %s: %w", snapshot.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	offset, err := s.append(diskOpSet, snapshot.ID, payload.Bytes())
	if err != nil {
		return err
	}
	s.records[snapshot.ID] = diskRecordMeta{offset: offset, keySize: uint32(len(snapshot.ID)), size: uint32(payload.Len())}
	return nil
}

func (s *DiskStore) Load(id string) (course.Snapshot, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return course.Snapshot{}, false, nil
	}

	payload := make([]byte, meta.size)
	at := meta.offset + int64(diskHeaderSize) + int64(meta.keySize)
	if _, err := s.file.ReadAt(payload, at); err != nil {
		return course.Snapshot{}, false, fmt.Errorf("read course %s payload: %w", id, err)
	}
	var record snapshotRecord
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&record); err != nil {
		return course.Snapshot{}, false, fmt.Errorf("decode course %s: %w", id, err)
	}
	if record.Version != snapshotEncodingVersion {
		return course.Snapshot{}, false, fmt.Errorf("course %s: unsupported encoding version %d", id, record.Version)
	}
	return record.Snapshot, true, nil
}

func (s *DiskStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return nil
	}
	if _, err := s.append(diskOpDelete, id, nil); err != nil {
		return err
	}
	delete(s.records, id)
	return nil
}

// ForEach visits snapshots in id order. Records that fail to decode are
// logged and skipped.
func (s *DiskStore) ForEach(fn func(snapshot course.Snapshot) bool) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		snapshot, ok, err := s.Load(id)
		if err != nil {
			s.logger.Printf("course store load %s: %v", id, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(snapshot) {
			break
		}
	}
	return nil
}

func (s *DiskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
