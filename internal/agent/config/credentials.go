// Package config содержит функции для работы с локальной конфигурацией CLI-клиента.
//
// Конфигурация хранит bearer-токен и сведения о сессии и размещается
// в домашней директории пользователя в файле:
//
//	~/.expensetracker/credentials.json
//
// Путь можно переопределить переменной окружения EXPENSETRACKER_CREDENTIALS.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// EnvCredentialsPath — переменная окружения с альтернативным путём к файлу.
const EnvCredentialsPath = "EXPENSETRACKER_CREDENTIALS"

// Credentials содержит учётные данные, используемые CLI-клиентом.
type Credentials struct {
	// Token — bearer-токен, выданный при регистрации или входе.
	Token string `json:"token"`
	// ServerURL — адрес API, на котором был получен токен.
	ServerURL string `json:"server_url,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

// LoggedIn сообщает, есть ли сохранённый токен.
func (c *Credentials) LoggedIn() bool {
	return c != nil && c.Token != ""
}

// DefaultPath возвращает путь к файлу учётных данных.
//
// Формат пути:
//
//	<home>/.expensetracker/credentials.json
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvCredentialsPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".expensetracker", "credentials.json"), nil
}

// Load загружает учётные данные из указанного файла.
//
// Если файл не существует, возвращает пустые учётные данные без ошибки.
func Load(path string) (*Credentials, error) {
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

// Save сохраняет учётные данные в JSON.
//
// Директория создаётся с правами 0700, файл пишется с правами 0600.
func Save(path string, c *Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Remove удаляет файл учётных данных. Отсутствие файла не ошибка.
func Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
