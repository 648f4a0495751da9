package planner

import "yourkitchen/internal/llm"

func stringList(description string) *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}, Description: description}
}

func mealSchema(ingredients *llm.Schema) *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"type":           llm.String("Breakfast, Lunch, or Dinner"),
		"name":           {Type: llm.TypeString},
		"timeEstimate":   llm.String("Total active time, e.g. '25 min'"),
		"description":    {Type: llm.TypeString},
		"techniqueFocus": llm.String("The specific culinary skill taught in this recipe"),
		"ingredients":    ingredients,
		"instructions":   stringList("Step-by-step cooking instructions (keep concise)"),
	}, "type", "name", "timeEstimate", "description", "techniqueFocus", "ingredients", "instructions")
}

// weeklyPlanSchema is the response schema of a plan generation call.
var weeklyPlanSchema = llm.Object(map[string]*llm.Schema{
	"weekTitle": llm.String("A catchy title for the week's menu"),
	"theme":     llm.String("The culinary theme or focus of the week"),
	"dailyPlans": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
		"day":   {Type: llm.TypeString},
		"meals": llm.ArrayOf(mealSchema(stringList("Complete list of ingredients with quantities"))),
	}, "day", "meals")),
	"groceryList": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
		"item":     {Type: llm.TypeString},
		"category": llm.String("Produce, Protein, Pantry, etc."),
		"note":     llm.String("Specifics like 'family pack' or substitutions"),
	}, "item", "category")),
	"sundayPrep": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
		"task": {Type: llm.TypeString},
		"time": {Type: llm.TypeString},
		"why":  {Type: llm.TypeString},
	}, "task", "time", "why")),
	"sustainabilityTip": {Type: llm.TypeString},
}, "weekTitle", "theme", "dailyPlans", "groceryList", "sundayPrep", "sustainabilityTip")

// swapMealSchema is the response schema of a meal swap call. Ingredients come
// back as name and amount pairs.
var swapMealSchema = mealSchema(llm.ArrayOf(llm.Object(map[string]*llm.Schema{
	"name":   {Type: llm.TypeString},
	"amount": llm.String("Quantity with unit, e.g. '200 g'"),
}, "name", "amount")))
