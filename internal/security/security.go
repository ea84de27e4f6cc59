// Package security holds the pure validation and sanitization rules applied
// to every user-supplied string before it reaches persistence or outbound
// rendering. Each validator returns a validity flag plus a human-readable
// reason; nothing here logs or touches I/O.
package security

import (
	"fmt"
	"strings"
	"unicode"
)

// Field length caps.
const (
	MinFullNameLength   = 3
	MaxFullNameLength   = 200
	MaxPhoneLength      = 20
	MaxPlotNumberLength = 50
	MaxQueryLength      = 100
)

// MaxFileSize caps uploaded proof-of-residency files at 20 MiB.
const MaxFileSize = 20 * 1024 * 1024

var allowedPhotoExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var allowedDocumentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx"}

// SanitizeText strips C0/C1 control characters, escapes HTML-reserved
// characters, truncates to maxLength and trims surrounding whitespace.
// Idempotent: applying twice yields the same result as once. maxLength <= 0
// disables truncation.
func SanitizeText(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isControl(r) {
			continue
		}
		switch r {
		case '&':
			// Already-escaped input must not be escaped again.
			b.WriteRune(r)
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if maxLength > 0 {
		runes := []rune(out)
		if len(runes) > maxLength {
			out = string(runes[:maxLength])
		}
	}
	return strings.TrimSpace(out)
}

// ValidateFullName checks a full name: 3-200 characters drawn from Latin and
// Cyrillic letters, spaces, hyphens and apostrophes.
func ValidateFullName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "ФИО не может быть пустым"
	}
	if len([]rune(name)) < MinFullNameLength {
		return false, fmt.Sprintf("ФИО слишком короткое (минимум %d символа)", MinFullNameLength)
	}
	if len([]rune(name)) > MaxFullNameLength {
		return false, fmt.Sprintf("ФИО слишком длинное (максимум %d символов)", MaxFullNameLength)
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false, "ФИО может содержать только буквы, пробелы, дефисы и апострофы"
		}
	}
	return true, ""
}

// NormalizePhone strips whitespace, parentheses and hyphens and enforces a
// leading "+": a leading 8 with length >= 11 becomes +7, a leading 7 with
// length >= 11 gains a plus, anything else is prefixed as-is. Total and
// idempotent.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '\t', '-', '(', ')':
		default:
			b.WriteRune(r)
		}
	}
	phone = b.String()
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	switch {
	case strings.HasPrefix(phone, "8") && len(phone) >= 11:
		return "+7" + phone[1:]
	default:
		return "+" + phone
	}
}

// ValidatePhone normalizes first, then requires "+" followed by 7-15 digits.
func ValidatePhone(phone string) (bool, string) {
	if strings.TrimSpace(phone) == "" {
		return false, "Номер телефона не может быть пустым"
	}
	phone = NormalizePhone(phone)
	if len(phone) > MaxPhoneLength {
		return false, fmt.Sprintf("Номер телефона слишком длинный (максимум %d символов)", MaxPhoneLength)
	}
	if !phoneFormatOK(phone) {
		return false, "Неверный формат номера телефона. Используйте формат: +7XXXXXXXXXX"
	}
	return true, ""
}

// ValidatePlotNumber checks a plot identifier: 1-50 characters drawn from
// letters, digits, ':', '-', '.' and spaces.
func ValidatePlotNumber(plot string) (bool, string) {
	plot = strings.TrimSpace(plot)
	if plot == "" {
		return false, "Номер участка не может быть пустым"
	}
	if len([]rune(plot)) > MaxPlotNumberLength {
		return false, fmt.Sprintf("Номер участка слишком длинный (максимум %d символов)", MaxPlotNumberLength)
	}
	for _, r := range plot {
		if !isPlotRune(r) {
			return false, "Номер участка содержит недопустимые символы"
		}
	}
	return true, ""
}

// ValidateFileExtension checks the filename suffix against the photo or
// document allow-list, case-insensitively. An absent filename passes
// vacuously: photos arrive without one.
func ValidateFileExtension(filename string, isDocument bool) (bool, string) {
	if filename == "" {
		return true, ""
	}
	lower := strings.ToLower(filename)
	allowed := allowedPhotoExtensions
	kind := "изображение"
	if isDocument {
		allowed = allowedDocumentExtensions
		kind = "документ"
	}
	for _, ext := range allowed {
		if strings.HasSuffix(lower, ext) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("Недопустимый формат (%s). Разрешенные форматы: %s", kind, strings.Join(allowed, ", "))
}

// ValidateFileSize rejects empty files and files over MaxFileSize. A zero
// size is "empty"; callers pass -1 when the platform did not report a size.
func ValidateFileSize(size int64) (bool, string) {
	if size < 0 {
		return true, ""
	}
	if size == 0 {
		return false, "Файл пустой"
	}
	if size > MaxFileSize {
		return false, fmt.Sprintf("Файл слишком большой. Максимальный размер: %d МБ", MaxFileSize/(1024*1024))
	}
	return true, ""
}

// SanitizeSearchQuery strips characters outside the allowed set and returns
// the cleaned query for subsequent lookups.
func SanitizeSearchQuery(query string) (bool, string, string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return false, "Запрос не может быть пустым", ""
	}
	if len([]rune(query)) > MaxQueryLength {
		return false, fmt.Sprintf("Запрос слишком длинный (максимум %d символов)", MaxQueryLength), ""
	}
	var b strings.Builder
	for _, r := range query {
		if isQueryRune(r) {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()
	if strings.TrimSpace(sanitized) == "" {
		return false, "Запрос содержит только недопустимые символы", ""
	}
	return true, "", sanitized
}

func isControl(r rune) bool {
	// C0 minus \t \n \r, DEL, and C1.
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20:
		return true
	case r >= 0x7f && r <= 0x9f:
		return true
	}
	return false
}

func isNameRune(r rune) bool {
	if r == ' ' || r == '-' || r == '\'' {
		return true
	}
	return isLatinLetter(r) || isCyrillicLetter(r)
}

func isPlotRune(r rune) bool {
	switch r {
	case ':', '-', '.', ' ':
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	return isLatinLetter(r) || isCyrillicLetter(r)
}

func isQueryRune(r rune) bool {
	switch r {
	case ' ', '-', '+', '(', ')', ':', '.', '_':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isCyrillicLetter(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}

func phoneFormatOK(phone string) bool {
	if !strings.HasPrefix(phone, "+") {
		return false
	}
	digits := phone[1:]
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
