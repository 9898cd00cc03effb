// Package store persists DNS tasks and the monitoring flag to a YAML file.
package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/user/dnskeeper/internal/dnstask"
)

type document struct {
	Monitoring bool           `yaml:"monitoring"`
	Tasks      []dnstask.Task `yaml:"tasks"`
}

// FileStore keeps the whole document in one file and rewrites it on every
// change.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// Open creates the store file and its directory if they do not exist.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create store directory")
	}

	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(&document{Tasks: []dnstask.Task{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to stat store")
	}

	// Fail early on a corrupt file.
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, errors.Wrap(err, "failed to read store")
	}

	doc := &document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse store %s", s.path)
	}
	return doc, nil
}

func (s *FileStore) write(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write store")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to replace store")
	}
	return nil
}

func (s *FileStore) modify(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

// LoadTasks returns every stored task. A stored interval of zero reads as one.
func (s *FileStore) LoadTasks() ([]dnstask.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Interval == 0 {
			doc.Tasks[i].Interval = 1
		}
	}
	return doc.Tasks, nil
}

// SaveTask appends task. Saving an id twice is an error.
func (s *FileStore) SaveTask(task dnstask.Task) error {
	return s.modify(func(doc *document) error {
		for _, t := range doc.Tasks {
			if t.ID == task.ID {
				return errors.Errorf("task %s already stored", task.ID)
			}
		}
		doc.Tasks = append(doc.Tasks, task)
		return nil
	})
}

// DeleteTask removes the task with id, if present.
func (s *FileStore) DeleteTask(id string) error {
	return s.modify(func(doc *document) error {
		kept := doc.Tasks[:0]
		for _, t := range doc.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		doc.Tasks = kept
		return nil
	})
}

// UpdateTask overwrites the stored task with the same id, if present.
func (s *FileStore) UpdateTask(task dnstask.Task) error {
	return s.modify(func(doc *document) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == task.ID {
				doc.Tasks[i] = task
			}
		}
		return nil
	})
}

// LoadMonitoring returns the persisted monitoring flag.
func (s *FileStore) LoadMonitoring() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}
	return doc.Monitoring, nil
}

// SaveMonitoring persists the monitoring flag.
func (s *FileStore) SaveMonitoring(enabled bool) error {
	return s.modify(func(doc *document) error {
		doc.Monitoring = enabled
		return nil
	})
}

// Opener adapts Open to dnstask.OpenFunc.
func Opener(path string) dnstask.OpenFunc {
	return func() (dnstask.Store, error) {
		s, err := Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
