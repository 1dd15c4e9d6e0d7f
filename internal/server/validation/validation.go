// Package validation проверяет и нормализует входные данные HTTP-запросов.
//
// Пакет:
//   - превращает сырое тело запроса в типизированную модель (models.ExpenseDraft,
//     models.ExpensePatch, models.Registration);
//   - собирает ВСЕ нарушенные правила в *errors.ValidationError
//     (кроме логина — там возвращается только первое нарушение);
//   - никогда не обращается к хранилищу.
//
// Правила описаны тегами github.com/go-playground/validator/v10,
// нестандартные проверки зарегистрированы как собственные теги
// (password, amount, isodate, category).
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/utils"
)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.RequireFromString("999999999999.99")
)

// Границы для денежных чисел из запроса. Сравнение decimal приводит
// операнды к общему показателю, поэтому 1e-40000000 нельзя пускать дальше разбора.
const (
	maxDecimalLen      = 32
	minDecimalExponent = -10
	maxDecimalExponent = 12
)

// ErrDecimalOutOfRange — число слишком длинное или с недопустимым показателем.
var ErrDecimalOutOfRange = errors.New("decimal out of range")

// допустимые форматы даты расхода
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в ошибках хотим видеть имя поля из JSON, а не из Go
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "password", isStrongPassword)
	mustRegister(v, "amount", isAmount)
	mustRegister(v, "isodate", isISODate)
	mustRegister(v, "category", isCategory)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ExpenseInput — сырое тело запроса создания/обновления расхода.
//
// Amount намеренно any: клиент может прислать число или строку,
// решение о корректности принимает валидатор, а не json-декодер.
// Поле user, если клиент его прислал, игнорируется.
type ExpenseInput struct {
	Title    *string `json:"title"`
	Amount   any     `json:"amount"`
	Category *string `json:"category"`
	Date     *string `json:"date"`
	Notes    *string `json:"notes"`
}

type expenseRule struct {
	field   string
	tag     string
	message string
}

var expenseRules = []expenseRule{
	{field: "title", tag: "min=1,max=100", message: "title must be between 1-100 characters"},
	{field: "amount", tag: "amount", message: "amount must be a positive number"},
	{field: "category", tag: "category", message: "invalid category"},
	{field: "date", tag: "isodate", message: "invalid date format"},
	{field: "notes", tag: "max=500", message: "notes cannot exceed 500 characters"},
}

// Expense валидирует тело запроса создания расхода.
//
// Отсутствующая категория заменяется на Other, отсутствующая дата — на now.
func Expense(in ExpenseInput, now time.Time) (models.ExpenseDraft, error) {
	values := map[string]string{
		"title":    strings.TrimSpace(utils.Deref(in.Title)),
		"amount":   amountString(in.Amount),
		"category": string(sharedModels.CategoryOther),
		"notes":    strings.TrimSpace(utils.Deref(in.Notes)),
	}
	if in.Category != nil {
		values["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Date != nil {
		values["date"] = strings.TrimSpace(*in.Date)
	}

	verr := &serr.ValidationError{}
	for _, rule := range expenseRules {
		v, ok := values[rule.field]
		if !ok {
			continue
		}
		if err := validate.Var(v, rule.tag); err != nil {
			verr.Add(rule.field, rule.message)
		}
	}
	if err := verr.OrNil(); err != nil {
		return models.ExpenseDraft{}, err
	}

	draft := models.ExpenseDraft{
		Title:    values["title"],
		Amount:   mustDecimal(values["amount"]).Round(2),
		Category: sharedModels.Category(values["category"]),
		Date:     now,
		Notes:    values["notes"],
	}
	if d, ok := values["date"]; ok {
		draft.Date, _ = parseDate(d)
	}
	return draft, nil
}

// ExpensePatch валидирует тело запроса частичного обновления расхода.
//
// Проверяются только присланные поля. Пустой патч — ошибка валидации.
func ExpensePatch(in ExpenseInput) (models.ExpensePatch, error) {
	values := map[string]string{}
	if in.Title != nil {
		values["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Amount != nil {
		values["amount"] = amountString(in.Amount)
	}
	if in.Category != nil {
		values["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Date != nil {
		values["date"] = strings.TrimSpace(*in.Date)
	}
	if in.Notes != nil {
		values["notes"] = strings.TrimSpace(*in.Notes)
	}

	if len(values) == 0 {
		return models.ExpensePatch{}, serr.NewValidationError("body", "at least one field must be provided")
	}

	verr := &serr.ValidationError{}
	for _, rule := range expenseRules {
		v, ok := values[rule.field]
		if !ok {
			continue
		}
		if err := validate.Var(v, rule.tag); err != nil {
			verr.Add(rule.field, rule.message)
		}
	}
	if err := verr.OrNil(); err != nil {
		return models.ExpensePatch{}, err
	}

	var patch models.ExpensePatch
	if v, ok := values["title"]; ok {
		patch.Title = &v
	}
	if v, ok := values["amount"]; ok {
		amount := mustDecimal(v).Round(2)
		patch.Amount = &amount
	}
	if v, ok := values["category"]; ok {
		c := sharedModels.Category(v)
		patch.Category = &c
	}
	if v, ok := values["date"]; ok {
		d, _ := parseDate(v)
		patch.Date = &d
	}
	if v, ok := values["notes"]; ok {
		patch.Notes = &v
	}
	return patch, nil
}

type registration struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"password"`
}

var registrationMessages = map[string]string{
	"name":     "name must be between 2-50 characters",
	"email":    "invalid email format",
	"password": "password must be 8+ chars with uppercase, lowercase, and number",
}

// Registration валидирует данные регистрации и нормализует email.
func Registration(in sharedModels.RegisterRequest) (models.Registration, error) {
	r := registration{
		Name:     strings.TrimSpace(in.Name),
		Email:    NormalizeEmail(in.Email),
		Password: in.Password,
	}

	if err := validate.Struct(r); err != nil {
		verr := &serr.ValidationError{}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return models.Registration{}, serr.ErrInvalidInput
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), registrationMessages[fe.Field()])
		}
		return models.Registration{}, verr
	}

	return models.Registration{Name: r.Name, Email: r.Email, Password: r.Password}, nil
}

// Login валидирует данные входа. Возвращает только первое нарушение,
// чтобы не раскрывать лишнего о причинах отказа.
func Login(in sharedModels.LoginRequest) (email, password string, err error) {
	email = NormalizeEmail(in.Email)
	if validate.Var(email, "required,email") != nil {
		return "", "", serr.NewValidationError("email", "invalid email format")
	}
	if in.Password == "" {
		return "", "", serr.NewValidationError("password", "password is required")
	}
	return email, in.Password, nil
}

// NormalizeEmail приводит email к каноническому виду: trim + lower case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDate разбирает дату расхода в одном из допустимых форматов.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// amountString приводит присланное значение суммы к строке.
// Неподдерживаемые типы превращаются в пустую строку и не проходят проверку amount.
func amountString(v any) string {
	switch a := v.(type) {
	case json.Number:
		return a.String()
	case float64:
		return strconv.FormatFloat(a, 'f', -1, 64)
	case string:
		return strings.TrimSpace(a)
	default:
		return ""
	}
}

// mustDecimal — для строк, уже прошедших проверку amount.
func mustDecimal(s string) decimal.Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal разбирает денежное число из запроса.
//
// Строки длиннее maxDecimalLen и показатели вне
// [minDecimalExponent, maxDecimalExponent] отклоняются до любой арифметики.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxDecimalLen {
		return decimal.Decimal{}, ErrDecimalOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := d.Exponent(); exp < minDecimalExponent || exp > maxDecimalExponent {
		return decimal.Decimal{}, ErrDecimalOutOfRange
	}
	return d, nil
}

func isStrongPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if utf8.RuneCountInString(p) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func isAmount(fl validator.FieldLevel) bool {
	d, err := ParseDecimal(fl.Field().String())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(minAmount) && d.LessThanOrEqual(maxAmount)
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

func isCategory(fl validator.FieldLevel) bool {
	return sharedModels.Category(fl.Field().String()).Valid()
}

