package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const documentFileName = "db.json"

// UserRecord is the persisted form of a user account.
type UserRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// DeviceRecord is the persisted form of a trusted device.
type DeviceRecord struct {
	ID            string    `json:"id"`
	FingerprintID string    `json:"fingerprint_id"`
	OwnerUserID   string    `json:"owner_user_id"`
	LastUsedAt    time.Time `json:"last_used_at"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// Document is the single JSON document holding all application state.
type Document struct {
	Users   []UserRecord   `json:"users"`
	Devices []DeviceRecord `json:"devices"`
}

// Store is a file-backed document store. Every mutation rewrites the whole
// document and persists it before returning. All access goes through a
// single RWMutex, so concurrent writers are serialized instead of racing on
// the backing file.
type Store struct {
	dataDir string
	doc     Document
	mutex   sync.RWMutex
}

// Open creates the data directory if needed and loads the existing document.
// A missing or empty file yields an empty document.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dataDir: dataDir}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return s, nil
}

// View runs fn with read access to the document.
func (s *Store) View(fn func(doc *Document)) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	fn(&s.doc)
}

// Update runs fn with exclusive access to the document and persists the
// result. If fn returns an error the document is rolled back and nothing is
// written.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev := s.doc.clone()
	if err := fn(&s.doc); err != nil {
		s.doc = prev
		return err
	}

	if err := s.save(); err != nil {
		s.doc = prev
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

func (d Document) clone() Document {
	out := Document{
		Users:   make([]UserRecord, len(d.Users)),
		Devices: make([]DeviceRecord, len(d.Devices)),
	}
	copy(out.Users, d.Users)
	copy(out.Devices, d.Devices)
	return out
}

func (s *Store) load() error {
	filePath := filepath.Join(s.dataDir, documentFileName)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	s.doc = doc
	return nil
}

// save writes the document atomically via a temp file and rename.
func (s *Store) save() error {
	jsonData, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(s.dataDir, documentFileName+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalFile := filepath.Join(s.dataDir, documentFileName)
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
