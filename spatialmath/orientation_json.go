package spatialmath

import (
	"encoding/json"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// OrientationType defines what orientation representations are known.
type OrientationType string

// The set of allowed representations for orientation.
const (
	NoOrientationType    = OrientationType("")
	AxisAnglesType       = OrientationType("axis_angles")
	EulerAnglesType      = OrientationType("euler_angles")
	QuaternionType       = OrientationType("quaternion")
	axisAnglesDegreeType = OrientationType("axis_angles_degrees")
)

// RawOrientation holds the underlying type of orientation, and the value.
type RawOrientation struct {
	Type  OrientationType `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// quaternionJSON is the serialized form of a quaternion.
type quaternionJSON struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParseOrientation will use the Type in RawOrientation to unmarshal the Value into the correct struct that implements Orientation.
func ParseOrientation(ro RawOrientation) (Orientation, error) {
	switch ro.Type {
	case NoOrientationType:
		return NewZeroOrientation(), nil
	case AxisAnglesType:
		var o R4AA
		if err := json.Unmarshal(ro.Value, &o); err != nil {
			return nil, err
		}
		return &o, nil
	case axisAnglesDegreeType:
		var o R4AA
		if err := json.Unmarshal(ro.Value, &o); err != nil {
			return nil, err
		}
		o.Theta = o.Theta * degToRad
		return &o, nil
	case EulerAnglesType:
		var o EulerAngles
		if err := json.Unmarshal(ro.Value, &o); err != nil {
			return nil, err
		}
		return &o, nil
	case QuaternionType:
		var o quaternionJSON
		if err := json.Unmarshal(ro.Value, &o); err != nil {
			return nil, err
		}
		q := quaternion(normalizeQuat(quat.Number{Real: o.W, Imag: o.X, Jmag: o.Y, Kmag: o.Z}))
		return &q, nil
	default:
		return nil, errors.Errorf("orientation type %s not recognized", ro.Type)
	}
}

// OrientationMap encodes the orientation interface to something serializable and human readable.
func OrientationMap(o Orientation) (map[string]interface{}, error) {
	switch v := o.(type) {
	case *R4AA:
		return map[string]interface{}{"type": string(AxisAnglesType), "value": v}, nil
	case *EulerAngles:
		return map[string]interface{}{"type": string(EulerAnglesType), "value": v}, nil
	case *quaternion:
		return map[string]interface{}{
			"type":  string(QuaternionType),
			"value": quaternionJSON{W: v.Real, X: v.Imag, Y: v.Jmag, Z: v.Kmag},
		}, nil
	default:
		return nil, errors.Errorf("do not know how to map Orientation type %T to json fields", o)
	}
}

// PoseConfig represents a pose in a configuration file: a translation and an optional orientation.
type PoseConfig struct {
	Translation r3.Vector       `json:"translation"`
	Orientation *RawOrientation `json:"orientation,omitempty"`
}

// ParseConfig converts a PoseConfig into a Pose.
func (cfg *PoseConfig) ParseConfig() (Pose, error) {
	if cfg == nil {
		return NewZeroPose(), nil
	}
	o := NewZeroOrientation()
	if cfg.Orientation != nil {
		var err error
		if o, err = ParseOrientation(*cfg.Orientation); err != nil {
			return nil, errors.Wrap(err, "failed to parse orientation")
		}
	}
	return NewPose(cfg.Translation, o), nil
}

// NewPoseConfig encodes a pose as a PoseConfig with a quaternion orientation.
func NewPoseConfig(p Pose) (*PoseConfig, error) {
	q := p.Orientation().Quaternion()
	raw, err := json.Marshal(quaternionJSON{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag})
	if err != nil {
		return nil, err
	}
	return &PoseConfig{
		Translation: p.Point(),
		Orientation: &RawOrientation{Type: QuaternionType, Value: raw},
	}, nil
}
