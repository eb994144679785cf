// Package filestore keeps contacts, groups and templates in indented JSON
// files under a data directory.
//
// Every change is a read-modify-write of the whole file under an in-process
// lock. Nothing guards against a second process writing the same files.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nimasrn/wa-messenger/internal/seed"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
)

type Store struct {
	mu            sync.Mutex
	contactsFile  string
	groupsFile    string
	templatesFile string
}

// Open prepares dir and writes the seed data for every file that does not
// exist yet.
func Open(dir string) (*Store, error) {
	s := &Store{
		contactsFile:  filepath.Join(dir, "contacts", "contacts.json"),
		groupsFile:    filepath.Join(dir, "contacts", "groups.json"),
		templatesFile: filepath.Join(dir, "templates", "templates.json"),
	}
	for _, d := range []string{filepath.Dir(s.contactsFile), filepath.Dir(s.templatesFile)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create data dir %s", d)
		}
	}

	data, err := seed.Load(time.Now())
	if err != nil {
		return nil, err
	}
	if err := seedFile(s.contactsFile, data.Contacts); err != nil {
		return nil, err
	}
	if err := seedFile(s.groupsFile, data.Groups); err != nil {
		return nil, err
	}
	if err := seedFile(s.templatesFile, data.Templates); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Contacts() *ContactStore {
	return &ContactStore{s}
}

func (s *Store) Groups() *GroupStore {
	return &GroupStore{s}
}

func (s *Store) Templates() *TemplateStore {
	return &TemplateStore{s}
}

func seedFile[T any](path string, records []T) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}
	logger.Info("[filestore] seeding data file", "path", path, "records", len(records))
	return writeFile(path, records)
}

// readFile returns an empty list when the file has gone missing.
func readFile[T any](path string) ([]T, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// writeFile replaces path atomically through a temp file in the same directory.
func writeFile[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
