package models

import (
	"errors"
	"strings"
	"time"
)

// ErrUserNotFound возвращается, когда пользователь не найден в базе
var ErrUserNotFound = errors.New("пользователь не найден")

// MuscleGroup основная группа мышц упражнения
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleLats       MuscleGroup = "lats"
	MuscleTraps      MuscleGroup = "traps"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleRearDelts  MuscleGroup = "rear_delts"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleQuads      MuscleGroup = "quads"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleAbs        MuscleGroup = "abs"
	MuscleLowerBack  MuscleGroup = "lower_back"
)

// PushMuscleGroups группы, которые считаются в Push-объём
var PushMuscleGroups = map[MuscleGroup]bool{
	MuscleChest:     true,
	MuscleShoulders: true,
	MuscleTriceps:   true,
}

// PullMuscleGroups группы, которые считаются в Pull-объём
var PullMuscleGroups = map[MuscleGroup]bool{
	MuscleBack:      true,
	MuscleLats:      true,
	MuscleTraps:     true,
	MuscleRearDelts: true,
	MuscleBiceps:    true,
}

// Label возвращает читаемое название группы
func (m MuscleGroup) Label() string {
	switch m {
	case MuscleRearDelts:
		return "rear delts"
	case MuscleLowerBack:
		return "lower back"
	default:
		return string(m)
	}
}

// WeightType как вводится вес упражнения
type WeightType string

const (
	WeightTotal      WeightType = "TOTAL"
	WeightPerSide    WeightType = "PER_SIDE"
	WeightBodyweight WeightType = "BODYWEIGHT"
	WeightTime       WeightType = "TIME"
)

// MovementPattern паттерн движения
type MovementPattern string

const (
	PatternPush      MovementPattern = "PUSH"
	PatternPull      MovementPattern = "PULL"
	PatternSquat     MovementPattern = "SQUAT"
	PatternHinge     MovementPattern = "HINGE"
	PatternIsolation MovementPattern = "ISOLATION"
)

// Equipment тег оборудования
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbells  Equipment = "dumbbells"
	EquipmentCable      Equipment = "cable"
	EquipmentRack       Equipment = "rack"
	EquipmentBench      Equipment = "bench"
	EquipmentPullUpBar  Equipment = "pull_up_bar"
	EquipmentDipStation Equipment = "dip_station"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentMachine    Equipment = "machine"
	EquipmentBands      Equipment = "bands"
	EquipmentEZBar      Equipment = "ez_bar"
)

// EquipmentSet набор оборудования пользователя
type EquipmentSet map[Equipment]bool

// NewEquipmentSet собирает набор из списка тегов
func NewEquipmentSet(items ...Equipment) EquipmentSet {
	set := make(EquipmentSet, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// Exercise represents an exercise from the catalog
type Exercise struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	MuscleGroup       MuscleGroup     `json:"muscle_group"`
	WeightType        WeightType      `json:"weight_type"`
	MovementPattern   MovementPattern `json:"movement_pattern"`
	RequiredEquipment []Equipment     `json:"required_equipment"`
	BodyweightFactor  *float64        `json:"bodyweight_factor,omitempty"`

	// Ориентиры 1ПМ по уровням подготовки
	Reference1RM Reference1RM `json:"reference_1rm"`

	CreatedAt time.Time `json:"created_at"`
}

// Reference1RM ориентировочные значения 1ПМ для четырёх уровней
type Reference1RM struct {
	Beginner     *float64 `json:"beginner,omitempty"`
	Intermediate *float64 `json:"intermediate,omitempty"`
	Advanced     *float64 `json:"advanced,omitempty"`
	Elite        *float64 `json:"elite,omitempty"`
}

// AvailableWith проверяет, что всё нужное оборудование есть у пользователя.
// Упражнение без требований доступно всегда.
func (e Exercise) AvailableWith(inventory EquipmentSet) bool {
	for _, eq := range e.RequiredEquipment {
		if !inventory[eq] {
			return false
		}
	}
	return true
}

// NormalizeName ключ для нечёткого сравнения названий: без регистра и крайних пробелов
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
