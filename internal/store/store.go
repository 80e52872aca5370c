// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the server-side state as a single JSON
// document holding the four top-level collections. The document is
// rewritten wholesale on every mutation; there are no transactional
// guarantees beyond the atomic rename.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/olegiv/metalmaster-go/internal/model"
)

// Store owns the data document. All access goes through the mutex; a
// mutation callback runs under the lock and the document is saved
// before the lock is released.
type Store struct {
	path string
	mu   sync.Mutex
	data model.Data
	log  *slog.Logger
}

// Open loads the data file at path, creating it with defaults when it
// does not exist yet.
func Open(path string, log *slog.Logger) (*Store, error) {
	s := &Store{path: path, data: model.DefaultData(), log: log}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.save(); err != nil {
			return nil, err
		}
		log.Info("created new data file", "path", path)
	case err != nil:
		return nil, fmt.Errorf("reading data file: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parsing data file %s: %w", path, err)
		}
		s.data = normalize(s.data)
	}

	return s, nil
}

// Data returns a deep copy of the whole document.
func (s *Store) Data() model.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Update runs fn against the document under the lock and rewrites the
// file. If fn returns an error nothing is saved.
func (s *Store) Update(fn func(*model.Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.data); err != nil {
		return err
	}
	return s.save()
}

// save writes the document via a temp file and rename so a crashed
// write never leaves a half-written data file. Callers must hold the
// mutex.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("creating temp data file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing data file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

func (s *Store) copyLocked() model.Data {
	cp := model.Data{
		Products: make([]model.Product, len(s.data.Products)),
		Users:    make([]model.User, len(s.data.Users)),
		Contacts: make([]model.Contact, len(s.data.Contacts)),
		Settings: s.data.Settings,
	}
	for i, p := range s.data.Products {
		cp.Products[i] = p.Clone()
	}
	copy(cp.Users, s.data.Users)
	copy(cp.Contacts, s.data.Contacts)
	return cp
}

func normalize(data model.Data) model.Data {
	if data.Products == nil {
		data.Products = []model.Product{}
	}
	if data.Users == nil {
		data.Users = []model.User{}
	}
	if data.Contacts == nil {
		data.Contacts = []model.Contact{}
	}
	if (data.Settings == model.Settings{}) {
		data.Settings = model.DefaultSettings()
	}
	return data
}
