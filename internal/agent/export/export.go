// Package export сохраняет расходы пользователя в локальный JSON-файл.
//
// Файл содержит объект вида:
//
//	{ "exported_at": "...", "count": N, "total": 123.45, "expenses": [ ... ] }
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Dump — формат файла экспорта.
type Dump struct {
	ExportedAt time.Time              `json:"exported_at"`
	Count      int                    `json:"count"`
	Total      decimal.Decimal        `json:"total"`
	Expenses   []sharedModels.Expense `json:"expenses"`
}

// NewDump собирает Dump и считает итоговую сумму. Порядок расходов сохраняется.
func NewDump(expenses []sharedModels.Expense, now time.Time) Dump {
	if expenses == nil {
		expenses = []sharedModels.Expense{}
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return Dump{
		ExportedAt: now.UTC(),
		Count:      len(expenses),
		Total:      total,
		Expenses:   expenses,
	}
}

// SaveToFile записывает dump в path.
//
// Поведение:
//   - создаёт директорию файла (MkdirAll) с правами 0700;
//   - пишет во временный файл рядом и переименовывает его, чтобы
//     прерванная запись не оставила наполовину записанный файл;
//   - итоговый файл имеет права 0600.
func SaveToFile(path string, dump Dump) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".export-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после Rename ничего не удалит

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadFromFile читает ранее сохранённый экспорт.
func LoadFromFile(path string) (Dump, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dump{}, err
	}
	var dump Dump
	if err := json.Unmarshal(b, &dump); err != nil {
		return Dump{}, fmt.Errorf("parse export %s: %w", path, err)
	}
	return dump, nil
}
