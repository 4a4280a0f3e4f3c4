package generator

import (
	"fmt"
	"strings"

	"liftplan/clients/ai"
	"liftplan/internal/training"
)

// PlanTypeInfo описание типа плана для промпта
type PlanTypeInfo struct {
	Label       string
	Sessions    int
	Instruction string
}

// PlanTypes закрытый набор типов планов
var PlanTypes = map[string]PlanTypeInfo{
	"ganzkoerper": {
		Label:       "Full body",
		Sessions:    1,
		Instruction: "Full-body plan with exactly 1 session that trains every major muscle group (chest, back, legs, shoulders, arms, core). The session is repeated 2-3 times per week.",
	},
	"2er-split": {
		Label:       "2-split",
		Sessions:    2,
		Instruction: "2-split with exactly 2 sessions: session A trains the upper body, session B trains the lower body and core.",
	},
	"upper-lower": {
		Label:       "Upper/Lower",
		Sessions:    2,
		Instruction: "Upper/lower split with exactly 2 sessions named \"Upper\" and \"Lower\". Upper covers chest, back, shoulders and arms; Lower covers quads, hamstrings, glutes, calves and core. Each is trained twice per week.",
	},
	"3er-split": {
		Label:       "3-split",
		Sessions:    3,
		Instruction: "3-split with exactly 3 sessions: day 1 chest, shoulders and triceps; day 2 back, rear delts and biceps; day 3 legs and core.",
	},
	"4er-split": {
		Label:       "4-split",
		Sessions:    4,
		Instruction: "4-split with exactly 4 sessions: day 1 chest and triceps; day 2 back and biceps; day 3 legs; day 4 shoulders, rear delts and core.",
	},
	"ppl": {
		Label:       "Push/Pull/Legs",
		Sessions:    3,
		Instruction: "Push/Pull/Legs with exactly 3 sessions named \"Push\", \"Pull\" and \"Legs\". Push: chest, shoulders, triceps. Pull: back, lats, rear delts, biceps. Legs: quads, hamstrings, glutes, calves, core.",
	},
	"push-pull-legs": {
		Label:       "Push/Pull/Legs",
		Sessions:    3,
		Instruction: "Push/Pull/Legs with exactly 3 sessions named \"Push\", \"Pull\" and \"Legs\". Push: chest, shoulders, triceps. Pull: back, lats, rear delts, biceps. Legs: quads, hamstrings, glutes, calves, core.",
	},
}

// ValidPlanType входит ли тип в закрытый набор
func ValidPlanType(planType string) bool {
	_, ok := PlanTypes[planType]
	return ok
}

// PlanTypeNames отсортированный список типов для CLI
func PlanTypeNames() []string {
	return []string{"ganzkoerper", "2er-split", "upper-lower", "3er-split", "4er-split", "ppl", "push-pull-legs"}
}

const systemPrompt = `You are an experienced strength coach. You create structured gym training plans.

Respond with ONE JSON object and nothing else. Schema:
{
  "plan_name": "specific descriptive name, at least 10 characters",
  "description": "2-3 sentences on the goal and structure of the plan",
  "sessions": [
    {
      "day_name": "Push A",
      "focus": "chest, shoulders, triceps",
      "exercises": [
        {"order": 1, "exercise_name": "<copied from the list>", "sets": 4, "reps": "6-8", "rest_seconds": 120, "notes": ""}
      ]
    }
  ]
}

STRICT RULES:
1. Use ONLY exercises from the provided list. Copy exercise names EXACTLY, character by character: no variations, no translations, no added equipment or grip details.
2. Never repeat an exercise within a session or across sessions of the plan.
3. Every exercise has "order", "exercise_name", "sets", "reps" and "rest_seconds".
4. 5-6 exercises per session, compound movements first.
5. Stay within the sets-per-session budget.
6. No markdown, no comments, no text outside the JSON object.`

// BuildMessages собирает системное и пользовательское сообщения
func BuildMessages(planType string, setsPerSession int, analysis *training.Analysis, catalog *Catalog, profile training.TargetProfile) []ai.Message {
	return []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(planType, setsPerSession, analysis, catalog, profile)},
	}
}

func buildUserPrompt(planType string, setsPerSession int, analysis *training.Analysis, catalog *Catalog, profile training.TargetProfile) string {
	var sb strings.Builder

	sb.WriteString("## TASK\n\n")
	if info, ok := PlanTypes[planType]; ok {
		sb.WriteString(fmt.Sprintf("Plan type: %s. %s\n", info.Label, info.Instruction))
	} else {
		sb.WriteString(fmt.Sprintf("Plan type: %s. Choose a sensible number of sessions for this split.\n", planType))
	}
	if profile.Valid() {
		sb.WriteString(fmt.Sprintf("Goal: %s (%s).\n", profile.Label(), training.MicrocycleFor(profile)))
	}
	sb.WriteString(fmt.Sprintf("Sets per session budget: %d working sets.\n", setsPerSession))

	sb.WriteString("\n## TRAINING HISTORY\n\n")
	if analysis == nil || !analysis.HasData() {
		sb.WriteString(fmt.Sprintf("- No training logged in the last %d days. Start conservatively with basic compound movements.\n", windowOf(analysis)))
	} else {
		sb.WriteString(fmt.Sprintf("- Weekly frequency: %.1f sessions/week (%d sessions in %d days)\n",
			analysis.SessionsPerWeek, analysis.Sessions, analysis.WindowDays))

		pp := analysis.PushPull
		sb.WriteString(fmt.Sprintf("- Push/pull balance: push %.0f vs pull %.0f effective reps, ratio %.2f (%s)\n",
			pp.PushReps, pp.PullReps, pp.Ratio, strings.ReplaceAll(pp.Status, "_", " ")))

		sb.WriteString("- Top muscle groups by volume:\n")
		for _, g := range analysis.TopMuscleGroups(5) {
			sb.WriteString(fmt.Sprintf("  - %s: %.0f effective reps, avg RPE %.1f\n", g.MuscleGroup.Label(), g.EffectiveReps, g.AvgRPE))
		}
	}

	if analysis != nil && len(analysis.Weaknesses) > 0 {
		sb.WriteString("\n## WEAKNESSES TO ADDRESS\n\n")
		for i, w := range analysis.Weaknesses {
			if i == training.MaxWeaknesses {
				break
			}
			sb.WriteString("- " + w.String() + "\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n## AVAILABLE EXERCISES (%d)\n\n", catalog.Len()))
	for _, name := range catalog.Names {
		sb.WriteString("- " + name + "\n")
	}

	sb.WriteString("\n## NAME EXAMPLES (copy exactly like this)\n\n")
	for _, name := range exemplars(catalog.Names) {
		sb.WriteString(fmt.Sprintf("\"exercise_name\": %q\n", name))
	}

	sb.WriteString("\nReturn ONLY the JSON object.")
	return sb.String()
}

// exemplars первый, средний и последний элементы каталога без повторов
func exemplars(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	var out []string
	seen := map[int]bool{}
	for _, i := range []int{0, len(names) / 2, len(names) - 1} {
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, names[i])
	}
	return out
}

func windowOf(a *training.Analysis) int {
	if a == nil || a.WindowDays == 0 {
		return training.DefaultWindowDays
	}
	return a.WindowDays
}
