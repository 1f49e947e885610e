package command

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"go.viam.com/simpleplanner/referenceframe"
)

// Composite is an ordered list of move instructions, first to last in execution order.
type Composite []*MoveInstruction

// Last returns the final instruction, or nil for an empty composite.
func (c Composite) Last() *MoveInstruction {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

// Positions returns the joint values of every step.
func (c Composite) Positions() [][]referenceframe.Input {
	return lo.Map(c, func(mi *MoveInstruction, _ int) []referenceframe.Input {
		return mi.Waypoint().Position()
	})
}

// Instructions returns the composite as generic instructions.
func (c Composite) Instructions() []Instruction {
	return lo.Map(c, func(mi *MoveInstruction, _ int) Instruction { return mi })
}

// String prints out a table of each step, with columns of type, profile, manipulator and joint values.
func (c Composite) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Type", "Profile", "Manipulator", "Joints"})
	for i, mi := range c {
		values := lo.Map(mi.Waypoint().Position(), func(in referenceframe.Input, _ int) string {
			return fmt.Sprintf("%.4f", in.Value)
		})
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			mi.Type().String(),
			mi.Profile(),
			mi.ManipInfo().Manipulator,
			strings.Join(values, ", "),
		})
	}
	return t.Render()
}
