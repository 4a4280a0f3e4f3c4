package generator

import (
	"fmt"
	"regexp"
	"strings"
)

const notAvailableSuffix = "' not available"

// Validator проверяет план от LLM против каталога. Ошибки собираются, не бросаются.
type Validator struct {
	catalog       *Catalog
	ignoreVariant bool
}

// NewValidator создаёт валидатор; ignoreVariant - см. Config.DuplicatesIgnoreVariant
func NewValidator(catalog *Catalog, ignoreVariant bool) *Validator {
	return &Validator{catalog: catalog, ignoreVariant: ignoreVariant}
}

// Validate возвращает (valid, errors)
func (v *Validator) Validate(plan map[string]any) (bool, []string) {
	var errs []string

	if _, ok := plan["plan_name"]; !ok {
		errs = append(errs, "missing key 'plan_name'")
	}
	rawSessions, ok := plan["sessions"]
	if !ok {
		errs = append(errs, "missing key 'sessions'")
		return false, errs
	}
	sessions, ok := rawSessions.([]any)
	if !ok {
		errs = append(errs, "'sessions' must be a list")
		return false, errs
	}
	if len(sessions) == 0 {
		errs = append(errs, "'sessions' is empty")
	}

	seenInPlan := map[string]int{} // ключ -> номер сессии (с 1)
	for si, rawSession := range sessions {
		label := fmt.Sprintf("session %d", si+1)
		session, ok := rawSession.(map[string]any)
		if !ok {
			errs = append(errs, label+": must be an object")
			continue
		}
		if day := stringField(session, "day_name", "name"); day != "" {
			label = fmt.Sprintf("session %d (%s)", si+1, day)
		}

		exercises, ok := session["exercises"].([]any)
		if !ok {
			errs = append(errs, label+": missing 'exercises' list")
			continue
		}

		seenInSession := map[string]bool{}
		for ei, rawEx := range exercises {
			exLabel := fmt.Sprintf("%s, exercise %d", label, ei+1)
			ex, ok := rawEx.(map[string]any)
			if !ok {
				errs = append(errs, exLabel+": must be an object")
				continue
			}
			for _, key := range []string{"sets", "reps", "order"} {
				if _, ok := ex[key]; !ok {
					errs = append(errs, fmt.Sprintf("%s: missing '%s'", exLabel, key))
				}
			}

			name, _ := ex["exercise_name"].(string)
			if strings.TrimSpace(name) == "" {
				errs = append(errs, exLabel+": missing 'exercise_name'")
				continue
			}
			if !v.catalog.Contains(name) {
				errs = append(errs, notAvailableError(name))
			}

			key := v.duplicateKey(name)
			if seenInSession[key] {
				errs = append(errs, fmt.Sprintf("%s: duplicate exercise '%s' within the session", label, name))
				continue
			}
			seenInSession[key] = true

			if first, dup := seenInPlan[key]; dup {
				errs = append(errs, fmt.Sprintf("duplicate exercise '%s' across sessions %d and %d", name, first, si+1))
				continue
			}
			seenInPlan[key] = si + 1
		}
	}

	return len(errs) == 0, errs
}

var variantSuffix = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

func (v *Validator) duplicateKey(name string) string {
	key := strings.TrimSpace(name)
	if v.ignoreVariant {
		key = variantSuffix.ReplaceAllString(key, "")
	}
	return strings.ToLower(key)
}

func notAvailableError(name string) string {
	return "exercise '" + name + notAvailableSuffix
}

// IsNameError ошибка о названии вне каталога
func IsNameError(msg string) bool {
	return strings.HasPrefix(msg, "exercise '") && strings.HasSuffix(msg, notAvailableSuffix)
}

// UnavailableNames извлекает названия из ошибок "not available" без повторов
func UnavailableNames(errs []string) []string {
	var names []string
	seen := map[string]bool{}
	for _, e := range errs {
		if !IsNameError(e) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(e, "exercise '"), notAvailableSuffix)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// OnlyNameErrors все ошибки относятся к названиям (и есть хотя бы одна)
func OnlyNameErrors(errs []string) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !IsNameError(e) {
			return false
		}
	}
	return true
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
