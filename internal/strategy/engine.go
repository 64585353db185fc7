// Package strategy evaluates the active screening conditions against one ticker's bars.
package strategy

import (
	"SessionScreener/internal/activation"
	"SessionScreener/internal/barindex"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/model"
)

// Input is everything a condition may read for one ticker.
type Input struct {
	Index *barindex.Index
	Day   model.Date // screening date

	Prior    model.Date // DAY-1, the last prior day with bars
	HasPrior bool

	Anchor    float64 // Open of the 16h bar on the anchor day
	HasAnchor bool
}

// Contribution records how one active condition evaluated.
type Contribution struct {
	ID      int
	Mode    activation.Mode
	Raw     bool // predicate result before inversion
	Value   bool // result after applying the mode
	Left    float64
	Right   float64
	Missing bool // required data was absent
}

// Verdict is the conjunction of every active condition.
type Verdict struct {
	Pass          bool
	Contributions []Contribution
}

// Failed returns the ids of conditions that rejected the ticker.
func (v Verdict) Failed() []int {
	var out []int
	for _, c := range v.Contributions {
		if !c.Value {
			out = append(out, c.ID)
		}
	}
	return out
}

// Engine evaluates conditions using a catalog's comparators.
type Engine struct {
	cat *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

var defaultEngine = NewEngine(catalog.Default())

// Evaluate runs the default catalog.
func Evaluate(in Input, active activation.Set) Verdict {
	return defaultEngine.Evaluate(in, active)
}

// Evaluate returns the AND of every active condition. With nothing active
// the ticker passes. Absent data makes the raw predicate false, so an
// inverted condition over missing bars holds.
func (e *Engine) Evaluate(in Input, active activation.Set) Verdict {
	v := Verdict{Pass: true}
	for _, id := range active.IDs() {
		c := e.evaluate(in, id, active.Mode(id))
		v.Contributions = append(v.Contributions, c)
		if !c.Value {
			v.Pass = false
		}
	}
	return v
}

func (e *Engine) evaluate(in Input, id int, mode activation.Mode) Contribution {
	c := Contribution{ID: id, Mode: mode}

	def, known := e.cat.Get(id)
	ops, wired := predicates[id]
	if !known || !wired || in.Index == nil {
		c.Missing = true
		return c
	}

	a, b, ok := ops(in)
	if !ok {
		c.Missing = true
	} else {
		c.Left, c.Right = a, b
		c.Raw = def.Comparator.Apply(a, b)
	}

	switch mode {
	case activation.Normal:
		c.Value = c.Raw
	case activation.Inverted:
		c.Value = !c.Raw
	}
	return c
}
