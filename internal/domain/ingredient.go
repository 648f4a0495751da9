package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// IngredientKind tells which shape an Ingredient holds.
type IngredientKind int

const (
	// PlainText is a free-text ingredient line such as "2 cups rice".
	PlainText IngredientKind = iota
	// Measured is a name with a separate amount.
	Measured
)

// Ingredient is either a plain text line or a measured name/amount pair.
// The zero value is an empty plain text ingredient.
type Ingredient struct {
	kind   IngredientKind
	text   string
	name   string
	amount string
}

// TextIngredient returns a PlainText ingredient.
func TextIngredient(text string) Ingredient {
	return Ingredient{kind: PlainText, text: strings.TrimSpace(text)}
}

// MeasuredIngredient returns a Measured ingredient. An empty amount is kept
// as Measured so it round-trips in the same shape.
func MeasuredIngredient(name, amount string) Ingredient {
	return Ingredient{kind: Measured, name: strings.TrimSpace(name), amount: strings.TrimSpace(amount)}
}

// Kind reports the ingredient shape.
func (i Ingredient) Kind() IngredientKind { return i.kind }

// Name returns the ingredient name. For plain text it is the whole line.
func (i Ingredient) Name() string {
	if i.kind == Measured {
		return i.name
	}
	return i.text
}

// Amount returns the amount of a measured ingredient, or "" for plain text.
func (i Ingredient) Amount() string {
	if i.kind == Measured {
		return i.amount
	}
	return ""
}

// String renders the ingredient as one display line.
func (i Ingredient) String() string {
	if i.kind == Measured && i.amount != "" {
		return i.amount + " " + i.name
	}
	return i.Name()
}

// IsZero reports whether the ingredient carries no text.
func (i Ingredient) IsZero() bool {
	return i.Name() == ""
}

type measuredJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
}

// MarshalJSON writes plain text as a JSON string and measured ingredients as
// a {"name","amount"} object.
func (i Ingredient) MarshalJSON() ([]byte, error) {
	if i.kind == Measured {
		return json.Marshal(measuredJSON{Name: i.name, Amount: i.amount})
	}
	return json.Marshal(i.text)
}

// UnmarshalJSON accepts a bare string or an object with name (or item) and
// an optional amount (or quantity).
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Ingredient{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = TextIngredient(s)
		return nil
	}

	var obj struct {
		Name     string          `json:"name"`
		Item     string          `json:"item"`
		Amount   json.RawMessage `json:"amount"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ingredient must be a string or an object: %w", err)
	}

	name := obj.Name
	if name == "" {
		name = obj.Item
	}
	amount := rawScalar(obj.Amount)
	if amount == "" {
		amount = rawScalar(obj.Quantity)
	}
	*i = MeasuredIngredient(name, amount)
	return nil
}

// rawScalar renders a JSON string or number as text. Models sometimes send
// amounts as numbers.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// IngredientNames returns the display names of the given ingredients,
// skipping empty ones.
func IngredientNames(list []Ingredient) []string {
	names := make([]string, 0, len(list))
	for _, ing := range list {
		if ing.IsZero() {
			continue
		}
		names = append(names, ing.Name())
	}
	return names
}
