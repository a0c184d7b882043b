package store

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"sync"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// ExportKey is the key Write stores exported transactions under.
const ExportKey = "export"

// JSONFile keeps every key in one JSON object on disk.
type JSONFile struct {
	lock     sync.Mutex
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) load() (map[string]string, error) {
	all := map[string]string{}

	data, err := ioutil.ReadFile(f.filename)
	if os.IsNotExist(err) {
		return all, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return all, nil
	}

	err = json.Unmarshal(data, &all)
	return all, err
}

func (f *JSONFile) Get(key string) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	all, err := f.load()
	if err != nil {
		return nil, err
	}
	value, ok := all[key]
	if !ok {
		return nil, ErrNoKey
	}
	return []byte(value), nil
}

// Put rewrites the whole file. We write to a temp file first and rename it over
// the old one so a crash mid-write can't leave a half written file behind.
func (f *JSONFile) Put(key string, value []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	all, err := f.load()
	if err != nil {
		// unreadable content is replaced, not fatal
		all = map[string]string{}
	}
	all[key] = string(value)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.filename + ".tmp"
	err = ioutil.WriteFile(tmp, data, 0600)
	if err != nil {
		return err
	}
	return os.Rename(tmp, f.filename)
}

// Write stores txns under ExportKey.
func (f *JSONFile) Write(txns []*domain.Transaction) error {
	data, err := json.Marshal(txns)
	if err != nil {
		return err
	}
	return f.Put(ExportKey, data)
}
