package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"liftplan/internal/models"
)

// Catalog упражнения, доступные пользователю, в порядке названий
type Catalog struct {
	Exercises []models.Exercise
	Names     []string

	byName map[string]models.Exercise // ключ - models.NormalizeName
}

// NewCatalog строит каталог из списка упражнений
func NewCatalog(exercises []models.Exercise) *Catalog {
	exercises = append([]models.Exercise(nil), exercises...)
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].Name < exercises[j].Name
	})

	c := &Catalog{
		Exercises: exercises,
		Names:     make([]string, 0, len(exercises)),
		byName:    make(map[string]models.Exercise, len(exercises)),
	}
	for _, e := range exercises {
		c.Names = append(c.Names, e.Name)
		c.byName[models.NormalizeName(e.Name)] = e
	}
	return c
}

// Contains точное совпадение названия
func (c *Catalog) Contains(name string) bool {
	e, ok := c.byName[models.NormalizeName(name)]
	return ok && e.Name == name
}

// Lookup поиск без учёта регистра и крайних пробелов
func (c *Catalog) Lookup(name string) (models.Exercise, bool) {
	e, ok := c.byName[models.NormalizeName(name)]
	return e, ok
}

// Len размер каталога
func (c *Catalog) Len() int {
	return len(c.Names)
}

// InputError ошибка входных данных: генерация прекращается без вызова LLM
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// ResolveCatalog возвращает каталог пользователя и предупреждения.
// *InputError - неизвестный пользователь, пустой инвентарь или пустой каталог.
func ResolveCatalog(ctx context.Context, reader CatalogReader, userID int64, minSize int) (*Catalog, []string, error) {
	inventory, err := reader.UserEquipment(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, nil, &InputError{Msg: fmt.Sprintf("user %d not found", userID)}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения оборудования: %w", err)
	}
	if len(inventory) == 0 {
		return nil, nil, &InputError{Msg: fmt.Sprintf("user %d has no equipment configured", userID)}
	}

	exercises, err := reader.ListAvailableExercises(ctx, inventory)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	if len(exercises) == 0 {
		return nil, nil, &InputError{Msg: "no exercises available for the user's equipment"}
	}

	var warnings []string
	if minSize > 0 && len(exercises) < minSize {
		warnings = append(warnings, fmt.Sprintf(
			"only %d exercises match the available equipment (recommended at least %d); the plan may lack variety",
			len(exercises), minSize))
	}
	return NewCatalog(exercises), warnings, nil
}
