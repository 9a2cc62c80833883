package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tradebump/tradebump/internal/types"
	"gopkg.in/yaml.v3"
)

const credentialsFilename = "credentials.yaml"

// FileStore keeps the credentials in a yaml file, keyed by the application
// identifier so that a shared file does not clash with other tools.
type FileStore struct {
	path string
	key  string
}

// NewFileStore returns a FileStore for the file at path. If path is empty,
// the file is placed in the user's configuration directory.
func NewFileStore(appName, path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine user config directory: %w", err)
		}
		path = filepath.Join(dir, appName, credentialsFilename)
	}
	return &FileStore{path: path, key: appName}, nil
}

// Path returns the location of the credentials file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() (types.Credentials, error) {
	records, err := s.read()
	if err != nil {
		return types.Credentials{}, err
	}
	c, ok := records[s.key]
	if !ok {
		return types.Credentials{}, ErrNotFound
	}
	return c, nil
}

func (s *FileStore) Set(c types.Credentials) error {
	records, err := s.read()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if records == nil {
		records = map[string]types.Credentials{}
	}
	records[s.key] = c

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("error while marshalling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(s.path), err)
	}
	// write to a temporary file first so that an interrupted write never leaves a truncated record
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("error writing credentials to file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) read() (map[string]types.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file %s: %w", s.path, err)
	}
	records := map[string]types.Credentials{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error while unmarshalling credentials file %s: %w", s.path, err)
	}
	return records, nil
}
