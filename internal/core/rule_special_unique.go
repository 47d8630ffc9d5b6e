package core

import "fmt"

// NewSpecialUniqueRule blocks grids holding more than one cell of any special
// kind.
func NewSpecialUniqueRule() Rule {
	return specialUniqueRule{}
}

type specialUniqueRule struct{}

func (specialUniqueRule) Name() string { return "special_unique" }

func (specialUniqueRule) Evaluate(view GridView) Result {
	res := Result{}
	for _, kind := range view.Kinds().Special() {
		cells := view.OfType(kind.ID())
		if len(cells) < 2 {
			continue
		}
		first := cells[0].Coordinate()
		for _, cell := range cells[1:] {
			res.Violations = append(res.Violations, Violation{
				Rule:     "special_unique",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("%s at %s duplicates the one at %s (%d on grid)", kind.Name(), cell.Coordinate(), first, len(cells)),
				Cell:     cell.Coordinate(),
			})
		}
	}
	return res
}
