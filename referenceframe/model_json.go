package referenceframe

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	spatial "go.viam.com/simpleplanner/spatialmath"
	"go.viam.com/simpleplanner/utils"
)

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name         string        `json:"name"`
	KinParamType string        `json:"kinematic_param_type,omitempty"`
	Links        []LinkConfig  `json:"links,omitempty"`
	Joints       []JointConfig `json:"joints,omitempty"`
}

// LinkConfig is a static transform from its parent frame.
type LinkConfig struct {
	ID          string                  `json:"id"`
	Parent      string                  `json:"parent"`
	Translation r3.Vector               `json:"translation"`
	Orientation *spatial.RawOrientation `json:"orientation,omitempty"`
}

// AxisConfig is the axis a joint moves along or about.
type AxisConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// JointConfig describes a single moveable joint. Revolute limits are given in degrees, prismatic limits in
// the model's length unit.
type JointConfig struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Parent string     `json:"parent"`
	Axis   AxisConfig `json:"axis"`
	Max    float64    `json:"max"`
	Min    float64    `json:"min"`
}

// The set of supported joint types.
const (
	RevoluteJoint  = "revolute"
	PrismaticJoint = "prismatic"
)

// ParseConfig converts a LinkConfig into a static frame.
func (cfg *LinkConfig) ParseConfig() (Frame, error) {
	orientation := spatial.NewZeroOrientation()
	if cfg.Orientation != nil {
		var err error
		orientation, err = spatial.ParseOrientation(*cfg.Orientation)
		if err != nil {
			return nil, errors.Wrapf(err, "link %q", cfg.ID)
		}
	}
	return NewStaticFrame(cfg.ID, spatial.NewPose(cfg.Translation, orientation))
}

// ToFrame converts a JointConfig into a moveable frame.
func (cfg *JointConfig) ToFrame() (Frame, error) {
	switch cfg.Type {
	case RevoluteJoint:
		return NewRotationalFrame(cfg.ID, spatial.R4AA{RX: cfg.Axis.X, RY: cfg.Axis.Y, RZ: cfg.Axis.Z},
			Limit{Min: utils.DegToRad(cfg.Min), Max: utils.DegToRad(cfg.Max)})
	case PrismaticJoint:
		return NewTranslationalFrame(cfg.ID, r3.Vector{X: cfg.Axis.X, Y: cfg.Axis.Y, Z: cfg.Axis.Z},
			Limit{Min: cfg.Min, Max: cfg.Max})
	default:
		return nil, NewUnsupportedJointTypeError(cfg.Type)
	}
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (Model, error) {
	m := &ModelConfigJSON{}

	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	err := json.Unmarshal(jsonData, m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}

	return m.ParseConfig(modelName)
}

// ParseConfig converts the ModelConfig struct into a full Model with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (Model, error) {
	var err error
	if modelName == "" {
		modelName = cfg.Name
	}

	model := NewSimpleModel(modelName)
	transforms := map[string]Frame{}

	// Make a map of parents for each element for post-process, to allow items to be processed out of order
	parentMap := map[string]string{}

	switch cfg.KinParamType {
	case "SVA", "":
		for _, link := range cfg.Links {
			if link.ID == World {
				return nil, NewReservedWordError("link", World)
			}
		}
		for _, joint := range cfg.Joints {
			if joint.ID == World {
				return nil, NewReservedWordError("joint", World)
			}
		}

		for _, link := range cfg.Links {
			parentMap[link.ID] = link.Parent
			transforms[link.ID], err = link.ParseConfig()
			if err != nil {
				return nil, err
			}
		}

		// Now we add all of the transforms. Will eventually support: "cylindrical|fixed|helical|prismatic|revolute|spherical"
		for _, joint := range cfg.Joints {
			parentMap[joint.ID] = joint.Parent
			transforms[joint.ID], err = joint.ToFrame()
			if err != nil {
				return nil, err
			}
		}

	default:
		return nil, errors.Errorf("unsupported param type: %s, supported params are SVA", cfg.KinParamType)
	}

	// Create an ordered list of transforms
	ot, err := sortTransforms(transforms, parentMap)
	if err != nil {
		return nil, err
	}

	model.setOrdTransforms(ot)

	return model, nil
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (Model, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// Create an ordered list of transforms given a mapping of child to parent frames.
func sortTransforms(transforms map[string]Frame, parents map[string]string) ([]Frame, error) {
	// find the end effector first - determine which transforms have no children
	// copy the map of children -> parents
	ees := map[string]string{}
	for child, parent := range parents {
		ees[child] = parent
	}
	// now remove all parents
	for _, parent := range parents {
		delete(ees, parent)
	}
	// ensure there is only on end effector
	if len(ees) != 1 {
		return nil, fmt.Errorf("%w, have %v", ErrNeedOneEndEffector, lo.Keys(ees))
	}

	// start the search from the end effector
	curr := lo.Keys(ees)[0]
	seen := map[string]bool{curr: true}
	orderedTransforms := []Frame{}
	for {
		frame, ok := transforms[curr]
		if !ok {
			return nil, NewFrameNotInListOfTransformsError(curr)
		}
		orderedTransforms = append(orderedTransforms, frame)

		// find the parent of the current transform
		parent, ok := parents[curr]
		if !ok || parent == "" {
			return nil, NewParentFrameNotInMapOfParentsError(curr)
		}
		if parent == World {
			break
		}

		// make sure it wasn't seen, mark it seen, then add it to the list
		if seen[parent] {
			return nil, ErrCircularReference
		}
		seen[parent] = true

		// update the frame to add next
		curr = parent
	}

	if len(orderedTransforms) != len(transforms) {
		return nil, errors.Errorf("kinematic chain is not serial: %d of %d frames reachable from the end effector",
			len(orderedTransforms), len(transforms))
	}

	// After the above loop, the transforms are in reverse order, so we reverse the list.
	for i, j := 0, len(orderedTransforms)-1; i < j; i, j = i+1, j-1 {
		orderedTransforms[i], orderedTransforms[j] = orderedTransforms[j], orderedTransforms[i]
	}

	return orderedTransforms, nil
}
