package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"liftplan/internal/generator"
)

// encodeResult JSON по умолчанию, YAML для .yaml/.yml
func encodeResult(path string, res *generator.Result) ([]byte, error) {
	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// через JSON, чтобы ключи совпадали с json-тегами
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	default:
		return append(raw, '\n'), nil
	}
}

func writeResult(path string, res *generator.Result) error {
	data, err := encodeResult(path, res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(res *generator.Result) {
	if res.Success {
		if len(res.PlanIDs) > 0 {
			fmt.Printf("✅ План создан: %d дн., id %v\n", len(res.PlanIDs), res.PlanIDs)
		} else {
			fmt.Println("✅ План сгенерирован (без сохранения)")
		}
	} else {
		fmt.Println("❌ План не создан")
	}
	if name, ok := res.PlanData["plan_name"].(string); ok {
		fmt.Printf("📋 %s\n", name)
	}
	for _, e := range res.Errors {
		fmt.Printf("  ❌ %s\n", e)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  ⚠️ %s\n", w)
	}
	fmt.Printf("🤖 Вызовов LLM: %d, стоимость: %.6f EUR\n", res.LLMCalls, res.CostEUR)
}
