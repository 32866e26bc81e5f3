// Утилитарные функции общего назначения
package utils

// FirstNonEmpty возвращает первую непустую строку.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
