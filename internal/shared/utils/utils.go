// Утилитарные функции общего назначения
package utils

func Ptr[T any](v T) *T {
	return &v
}

func StrPtr(s string) *string {
	return &s
}

// Deref возвращает значение указателя или zero value.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
