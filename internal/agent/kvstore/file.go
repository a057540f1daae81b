package kvstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// fileDump — формат файла локального хранилища.
//
// Файл содержит объект вида:
//
//	{ "entries": { "user-<uuid>": {...}, ... } }
type fileDump struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

// FileBackend хранит все ключи в одном JSON-файле.
//
// Каждая запись перечитывает и перезаписывает файл целиком под мьютексом,
// поэтому несколько Persistent поверх одного FileBackend безопасны.
// Директория создаётся с правами 0700, файл пишется с правами 0600.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// DefaultFilePath возвращает путь по умолчанию для файла настроек.
//
// Путь формируется как:
//
//	$HOME/.gophadmin/preferences.json
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gophadmin", "preferences.json"), nil
}

// NewFileBackend создаёт FileBackend для файла path. Файл не обязан существовать.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load возвращает сырое значение по ключу или ErrNotFound.
func (f *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dump, err := f.read()
	if err != nil {
		return nil, err
	}
	raw, ok := dump.Entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

// Save заменяет значение по ключу и перезаписывает файл.
func (f *FileBackend) Save(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dump, err := f.read()
	if err != nil {
		return err
	}
	dump.Entries[key] = json.RawMessage(value)

	return f.write(dump)
}

// Ping проверяет, что директорию можно создать, а существующий файл читается.
func (f *FileBackend) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	_, err := f.read()
	return err
}

// read читает файл. Отсутствие файла — пустой dump без ошибки (первый запуск).
func (f *FileBackend) read() (fileDump, error) {
	dump := fileDump{Entries: make(map[string]json.RawMessage)}

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return dump, nil
		}
		return dump, err
	}
	if err := json.Unmarshal(b, &dump); err != nil {
		return dump, err
	}
	if dump.Entries == nil {
		dump.Entries = make(map[string]json.RawMessage)
	}
	return dump, nil
}

func (f *FileBackend) write(dump fileDump) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}
