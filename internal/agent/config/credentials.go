package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Credentials содержит токен сессии, который агент передаёт серверу
// в заголовке Authorization.
type Credentials struct {
	SessionToken string `json:"session_token"`
}

// CredentialsPath возвращает путь к файлу учётных данных в домашней директории пользователя.
//
// Формат пути:
//
//	<home>/.gophadmin/credentials.json
func CredentialsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// LoadCredentials загружает учётные данные из указанного файла.
//
// Если файл не существует, возвращает пустые учётные данные без ошибки.
// Если файл существует, но содержит некорректный JSON, возвращает ошибку.
func LoadCredentials(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCredentials сохраняет учётные данные в указанный файл в JSON формате.
//
// При необходимости создаёт директорию назначения с правами 0700.
// Файл записывается с правами 0600.
func SaveCredentials(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
