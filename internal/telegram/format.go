package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/metrics"
)

// esc escapes AI-provided text for Telegram's legacy Markdown.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatWorkoutMarkdown(plan *fitness.WorkoutPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏋️ *%s*\n", esc(plan.Name))
	if plan.Description != "" {
		fmt.Fprintf(&sb, "_%s_\n", esc(plan.Description))
	}
	sb.WriteString("\n")

	for i, ex := range plan.Exercises {
		fmt.Fprintf(&sb, "%d. *%s*: %d x %d", i+1, esc(ex.Name), ex.Sets, ex.Reps)
		if ex.WeightKg != nil {
			fmt.Fprintf(&sb, " @ %s kg", num(*ex.WeightKg))
		}
		if ex.RestSeconds > 0 {
			fmt.Fprintf(&sb, " (rest %ds)", ex.RestSeconds)
		}
		sb.WriteString("\n")
		if ex.Notes != "" {
			fmt.Fprintf(&sb, "   _%s_\n", esc(ex.Notes))
		}
	}
	return sb.String()
}

func formatMealPlanMarkdown(plan *fitness.MealPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🥗 *%s*\n", esc(plan.Name))
	if plan.Description != "" {
		fmt.Fprintf(&sb, "_%s_\n", esc(plan.Description))
	}
	if m := plan.TargetMacros; m != nil {
		fmt.Fprintf(&sb, "🎯 Targets: %dg protein | %dg carbs | %dg fat\n", m.Protein, m.Carbs, m.Fat)
	}

	var total float64
	for _, meal := range plan.Meals {
		total += meal.Calories
		sb.WriteString("\n")
		if meal.MealType != "" {
			fmt.Fprintf(&sb, "*%s*: %s (%s kcal)\n", esc(meal.MealType), esc(meal.Name), num(meal.Calories))
		} else {
			fmt.Fprintf(&sb, "*%s* (%s kcal)\n", esc(meal.Name), num(meal.Calories))
		}
		for _, ing := range meal.Ingredients {
			fmt.Fprintf(&sb, "• %s\n", esc(ing))
		}
	}
	fmt.Fprintf(&sb, "\n🔥 *Total:* %s kcal", num(total))
	return sb.String()
}

// formatNutritionMarkdownParts renders the weekly plan and the shopping list
// as separate messages. The shopping list part is empty when the plan has
// none.
func formatNutritionMarkdownParts(plan *fitness.NutritionPlan) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Nutrition Plan*\n")
	fmt.Fprintf(&pb, "_%s_", esc(plan.DietType))
	if plan.DailyCalories > 0 {
		fmt.Fprintf(&pb, " | %s kcal/day", num(plan.DailyCalories))
	}
	pb.WriteString("\n")

	for _, day := range plan.WeeklyPlan {
		fmt.Fprintf(&pb, "\n*%s*", esc(day.Day))
		if day.Focus != "" {
			fmt.Fprintf(&pb, " (%s)", esc(day.Focus))
		}
		pb.WriteString("\n")
		for _, meal := range day.Meals {
			pb.WriteString("• ")
			if meal.Type != "" {
				fmt.Fprintf(&pb, "%s: ", esc(meal.Type))
			}
			pb.WriteString(esc(meal.Name))
			if meal.Calories != nil {
				fmt.Fprintf(&pb, " (%s kcal)", num(*meal.Calories))
			}
			pb.WriteString("\n")
		}
		if len(day.Snacks) > 0 {
			fmt.Fprintf(&pb, "_Snacks: %s_\n", esc(strings.Join(day.Snacks, ", ")))
		}
	}
	for _, note := range plan.Notes {
		fmt.Fprintf(&pb, "\n💡 %s", esc(note))
	}

	if len(plan.ShoppingList) == 0 {
		return pb.String(), ""
	}
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	for _, cat := range plan.ShoppingList {
		fmt.Fprintf(&sb, "\n*%s*\n", esc(cat.Category))
		for _, item := range cat.Items {
			sb.WriteString("• " + esc(item.Name))
			if item.Quantity != "" {
				fmt.Fprintf(&sb, " (%s)", esc(item.Quantity))
			}
			sb.WriteString("\n")
		}
	}
	return pb.String(), sb.String()
}

func formatRecipeMarkdown(r *fitness.RecipeRecommendation, sourceURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *%s*\n", esc(r.Title))
	if r.Summary != "" {
		fmt.Fprintf(&sb, "_%s_\n", esc(r.Summary))
	}
	fmt.Fprintf(&sb, "\n%s kcal | %sg protein | %sg carbs | %sg fat\n",
		num(r.Macros.Calories), num(r.Macros.Protein), num(r.Macros.Carbs), num(r.Macros.Fats))

	sb.WriteString("\n*Ingredients*\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "• %s\n", esc(ing))
	}
	sb.WriteString("\n*Instructions*\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, esc(step))
	}
	fmt.Fprintf(&sb, "\nImported from: %s", esc(sourceURL))
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}

// splitMessage cuts text into chunks of at most limit bytes, preferring line
// breaks. It always returns at least one chunk.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
			// Do not split a multi-byte rune.
			for cut > 0 && !isRuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
