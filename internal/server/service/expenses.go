package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

// ExpensesService реализует CRUD расходов с проверкой владельца.
//
// Сервис:
//   - сам проставляет владельца (клиентское поле user игнорируется);
//   - на каждом чтении/изменении/удалении сверяет владельца с вызывающим;
//   - ничего не кэширует.
type ExpensesService struct {
	repo          ExpensesRepo
	defaultBudget decimal.Decimal
	now           func() time.Time
}

// NewExpensesService создаёт ExpensesService.
// defaultBudget используется в Summary, если клиент не передал бюджет.
func NewExpensesService(repo ExpensesRepo, defaultBudget decimal.Decimal) *ExpensesService {
	return &ExpensesService{
		repo:          repo,
		defaultBudget: defaultBudget,
		now:           time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *ExpensesService) SetClock(now func() time.Time) {
	s.now = now
}

// Create создаёт расход от имени userID.
func (s *ExpensesService) Create(ctx context.Context, userID uuid.UUID, draft models.ExpenseDraft) (models.Expense, error) {
	if userID == uuid.Nil {
		return models.Expense{}, serr.ErrUserIDEmpty
	}

	now := s.timestamp()
	e := models.Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     draft.Title,
		Amount:    draft.Amount,
		Category:  draft.Category,
		Date:      draft.Date.UTC().Truncate(time.Microsecond),
		Notes:     draft.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// List возвращает только расходы userID, новые сначала.
func (s *ExpensesService) List(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	if userID == uuid.Nil {
		return nil, serr.ErrUserIDEmpty
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get возвращает расход, если он принадлежит userID.
//
// Ошибки: ErrNotFound (нет такой записи), ErrForbidden (чужая запись).
func (s *ExpensesService) Get(ctx context.Context, userID, id uuid.UUID) (models.Expense, error) {
	return s.owned(ctx, userID, id)
}

// Update частично обновляет расход владельца и возвращает новую версию.
func (s *ExpensesService) Update(ctx context.Context, userID, id uuid.UUID, patch models.ExpensePatch) (models.Expense, error) {
	if patch.Empty() {
		return models.Expense{}, serr.NewValidationError("body", "at least one field must be provided")
	}

	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return models.Expense{}, err
	}

	patch.Apply(&e)
	e.Date = e.Date.UTC().Truncate(time.Microsecond)
	e.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// Delete удаляет расход владельца. Мягкого удаления нет.
func (s *ExpensesService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

// owned загружает расход и проверяет владельца.
// Порядок важен: сначала 404, потом 403.
func (s *ExpensesService) owned(ctx context.Context, userID, id uuid.UUID) (models.Expense, error) {
	if userID == uuid.Nil {
		return models.Expense{}, serr.ErrUserIDEmpty
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.Expense{}, serr.ErrNotFound
		}
		return models.Expense{}, err
	}

	if !e.OwnedBy(userID) {
		return models.Expense{}, serr.ErrForbidden
	}
	return e, nil
}

// timestamp — текущее время в UTC с точностью, которую хранит PostgreSQL.
func (s *ExpensesService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
