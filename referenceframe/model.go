package referenceframe

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "go.viam.com/simpleplanner/spatialmath"
)

// A Model is a Frame built from a serial chain of other frames, whose inputs are the concatenated inputs of its
// moveable frames in base-to-tip order.
type Model interface {
	Frame
	// JointNames returns the names of the moveable frames in input order.
	JointNames() []string
}

// SimpleModel is a serial kinematic chain.
// Generally speaking, a joint frame will attach a link to a parent link,
// and a static frame will place the next joint relative to the last one.
// SimpleModel is immutable once built and safe for concurrent use.
type SimpleModel struct {
	name string
	// OrdTransforms is the list of transforms ordered from base to end effector
	OrdTransforms []Frame
	limits        []Limit
	jointNames    []string
}

// NewSimpleModel constructs a new, empty model.
func NewSimpleModel(name string) *SimpleModel {
	return &SimpleModel{name: name, limits: []Limit{}}
}

// NewSerialModel constructs a model from frames ordered from base to end effector.
func NewSerialModel(name string, frames []Frame) (*SimpleModel, error) {
	if len(frames) == 0 {
		return nil, errors.Errorf("cannot build model %q from an empty list of frames", name)
	}
	m := NewSimpleModel(name)
	m.setOrdTransforms(frames)
	return m, nil
}

func (m *SimpleModel) setOrdTransforms(frames []Frame) {
	m.OrdTransforms = frames
	m.limits = make([]Limit, 0, len(frames))
	m.jointNames = nil
	for _, transform := range frames {
		dof := transform.DoF()
		if len(dof) == 0 {
			continue
		}
		m.limits = append(m.limits, dof...)
		if len(dof) == 1 {
			m.jointNames = append(m.jointNames, transform.Name())
			continue
		}
		for i := range dof {
			m.jointNames = append(m.jointNames, fmt.Sprintf("%s_%d", transform.Name(), i))
		}
	}
}

// Name returns the name of this model.
func (m *SimpleModel) Name() string {
	return m.name
}

// JointNames returns the names of the model's joints in input order.
func (m *SimpleModel) JointNames() []string {
	names := make([]string, len(m.jointNames))
	copy(names, m.jointNames)
	return names
}

// DoF returns the limits of every degree of freedom within the model.
func (m *SimpleModel) DoF() []Limit {
	return m.limits
}

// Transform takes a model and a list of joint angles in radians and computes the pose of the end effector.
// Out-of-bounds inputs still produce a pose, alongside a non-nil error containing OOBErrString.
func (m *SimpleModel) Transform(inputs []Input) (spatial.Pose, error) {
	if len(inputs) != len(m.limits) {
		return nil, NewIncorrectDoFError(len(inputs), len(m.limits))
	}
	var err error
	// Start at ((1+0i+0j+0k)+(+0+0i+0j+0k)ϵ)
	composedTransformation := spatial.NewZeroPose()
	posIdx := 0
	// get quaternions from the base outwards.
	for _, transform := range m.OrdTransforms {
		dof := len(transform.DoF()) + posIdx
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		// Fail if inputs are incorrect and pose is nil, but allow querying out-of-bounds positions
		if pose == nil {
			return nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composedTransformation = spatial.Compose(composedTransformation, pose)
	}
	return composedTransformation, err
}

// ValidInputs checks whether the given inputs are the right length and within the limits of the model.
func (m *SimpleModel) ValidInputs(inputs []Input) error {
	if len(inputs) != len(m.limits) {
		return NewIncorrectDoFError(len(inputs), len(m.limits))
	}
	var errAll error
	for i, limit := range m.limits {
		if inputs[i].Value < limit.Min || inputs[i].Value > limit.Max {
			multierr.AppendInto(&errAll, fmt.Errorf("joint %d: %.5f %s %v", i, inputs[i].Value, OOBErrString, limit))
		}
	}
	return errAll
}

// AlmostEquals returns true if the only difference between this model and another is floating point inprecision.
func (m *SimpleModel) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*SimpleModel)
	if !ok {
		return false
	}

	if m.name != other.name {
		return false
	}

	if len(m.OrdTransforms) != len(other.OrdTransforms) {
		return false
	}

	for idx, f := range m.OrdTransforms {
		if !f.AlmostEquals(other.OrdTransforms[idx]) {
			return false
		}
	}

	return true
}

// GenerateRandomConfiguration generates a list of inputs that are random but valid for each joint.
// Infinite limits are replaced with [-999, 999].
func GenerateRandomConfiguration(m Frame, randSeed *rand.Rand) []Input {
	limits := m.DoF()
	jointPos := make([]Input, 0, len(limits))

	for _, limit := range limits {
		l, u := limit.Min, limit.Max

		// Default to [-999,999] as range if limits are infinite
		if l == math.Inf(-1) {
			l = -999
		}
		if u == math.Inf(1) {
			u = 999
		}

		jRange := math.Abs(u - l)
		jointPos = append(jointPos, Input{randSeed.Float64()*jRange + l})
	}
	return jointPos
}
