// Package environment holds the kinematic snapshot a planner queries: the manipulators, their joint ordering, the
// current joint state, and forward and inverse kinematics for each manipulator.
package environment

import (
	"context"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/ik"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
	"go.viam.com/simpleplanner/utils"
)

// ErrEnvironmentClosed is returned by every lookup on a closed environment.
var ErrEnvironmentClosed = errors.New("environment is closed")

// Manipulator is a named kinematic chain with a default tool center point offset.
type Manipulator struct {
	name      string
	model     referenceframe.Model
	tcpOffset spatial.Pose
}

// NewManipulator returns a manipulator. A nil tcpOffset means the tool point is the model's end effector.
func NewManipulator(name string, model referenceframe.Model, tcpOffset spatial.Pose) (*Manipulator, error) {
	if name == "" {
		return nil, errors.New("manipulator name cannot be empty")
	}
	if model == nil {
		return nil, errors.Errorf("manipulator %q has no model", name)
	}
	if tcpOffset == nil {
		tcpOffset = spatial.NewZeroPose()
	}
	return &Manipulator{name: name, model: model, tcpOffset: tcpOffset}, nil
}

// Name returns the manipulator's name.
func (m *Manipulator) Name() string {
	return m.name
}

// Model returns the manipulator's kinematic model.
func (m *Manipulator) Model() referenceframe.Model {
	return m.model
}

// TCPOffset returns the default tool center point offset from the end effector.
func (m *Manipulator) TCPOffset() spatial.Pose {
	return m.tcpOffset
}

// JointNames returns the joint names in input order.
func (m *Manipulator) JointNames() []string {
	return m.model.JointNames()
}

// CalcFwdKin returns the pose of the tool point for the inputs. tcp overrides the default offset when non-nil.
// Inputs outside the joint limits still produce a pose alongside an error.
func (m *Manipulator) CalcFwdKin(inputs []referenceframe.Input, tcp spatial.Pose) (spatial.Pose, error) {
	if tcp == nil {
		tcp = m.tcpOffset
	}
	pose, err := m.model.Transform(inputs)
	if pose == nil {
		return nil, err
	}
	return spatial.Compose(pose, tcp), err
}

// CalcInvKin returns inputs placing the tool point at goal, starting the search from seed.
func (m *Manipulator) CalcInvKin(
	ctx context.Context,
	solver ik.Solver,
	goal spatial.Pose,
	seed []referenceframe.Input,
	tcp spatial.Pose,
) ([]referenceframe.Input, error) {
	if tcp == nil {
		tcp = m.tcpOffset
	}
	flange := spatial.Compose(goal, spatial.PoseInverse(tcp))
	return solver.Solve(ctx, m.model, flange, seed)
}

// Environment is a read-only kinematic snapshot. It is safe for concurrent use.
type Environment struct {
	logger       logging.Logger
	manipulators map[string]*Manipulator
	state        map[string]float64
	solver       ik.Solver
	closed       atomic.Bool
}

// NewEnvironment builds an environment from already constructed manipulators. Every joint named in state must belong
// to one of the manipulators. A nil solver selects the damped least squares solver with default settings.
func NewEnvironment(logger logging.Logger, manipulators []*Manipulator, state map[string]float64, solver ik.Solver) (*Environment, error) {
	if len(manipulators) == 0 {
		return nil, errors.New("environment needs at least one manipulator")
	}
	byName := make(map[string]*Manipulator, len(manipulators))
	allJoints := []string{}
	for _, m := range manipulators {
		if _, ok := byName[m.Name()]; ok {
			return nil, errors.Errorf("duplicate manipulator name %q", m.Name())
		}
		byName[m.Name()] = m
		allJoints = append(allJoints, m.JointNames()...)
	}

	if unknown := lo.Without(lo.Keys(state), allJoints...); len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Errorf("state names joints not in any manipulator: %v", unknown)
	}
	if solver == nil {
		solver = ik.CreateDampedLeastSquaresSolver(logger.Sublogger("ik"), 0, -1, 0)
	}

	env := &Environment{
		logger:       logger,
		manipulators: byName,
		state:        lo.Assign(state),
		solver:       solver,
	}
	logger.Debugw("environment ready", "manipulators", env.ManipulatorNames(), "joints", len(allJoints))
	return env, nil
}

// NewEnvironmentFromConfig loads every manipulator model through the locator and builds the environment. Models are
// loaded concurrently, so the locator must be safe for concurrent use. When locator is nil, a PackageLocator rooted at
// baseDir with the config's packages is used.
func NewEnvironmentFromConfig(cfg *Config, baseDir string, locator ResourceLocator, logger logging.Logger) (*Environment, error) {
	if err := cfg.Validate("environment"); err != nil {
		return nil, err
	}
	if locator == nil {
		locator = NewPackageLocator(baseDir, cfg.Packages)
	}

	manipulators := make([]*Manipulator, len(cfg.Manipulators))
	var group errgroup.Group
	for idx, mc := range cfg.Manipulators {
		idx, mc := idx, mc
		group.Go(func() error {
			m, err := loadManipulator(mc, locator)
			if err != nil {
				return err
			}
			manipulators[idx] = m
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var solver ik.Solver
	if cfg.IK != nil {
		restarts := cfg.IK.Restarts
		if restarts == 0 {
			restarts = -1
		}
		solver = ik.CreateDampedLeastSquaresSolver(logger.Sublogger("ik"), cfg.IK.MaxIterations, restarts, cfg.IK.GoalThreshold)
	}
	return NewEnvironment(logger, manipulators, cfg.State, solver)
}

func loadManipulator(mc ManipulatorConfig, locator ResourceLocator) (*Manipulator, error) {
	path, err := locator.LocateResource(mc.Model)
	if err != nil {
		return nil, errors.Wrapf(err, "manipulator %q", mc.Name)
	}
	model, err := referenceframe.ParseModelJSONFile(path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "manipulator %q model %s", mc.Name, filepath.Base(path))
	}
	tcp, err := mc.TCPOffset.ParseConfig()
	if err != nil {
		return nil, err
	}
	return NewManipulator(mc.Name, model, tcp)
}

// Manipulator returns the named manipulator.
func (e *Environment) Manipulator(name string) (*Manipulator, error) {
	if e.closed.Load() {
		return nil, ErrEnvironmentClosed
	}
	m, ok := e.manipulators[name]
	if !ok {
		return nil, utils.NewManipulatorNotFoundError(name)
	}
	return m, nil
}

// ManipulatorNames returns the sorted names of all manipulators.
func (e *Environment) ManipulatorNames() []string {
	names := lo.Keys(e.manipulators)
	sort.Strings(names)
	return names
}

// JointNames returns the joint names of the named manipulator in input order.
func (e *Environment) JointNames(name string) ([]string, error) {
	m, err := e.Manipulator(name)
	if err != nil {
		return nil, err
	}
	return m.JointNames(), nil
}

// CurrentState returns a copy of the current joint values by joint name.
func (e *Environment) CurrentState() (map[string]float64, error) {
	if e.closed.Load() {
		return nil, ErrEnvironmentClosed
	}
	return lo.Assign(e.state), nil
}

// CurrentInputs returns the current joint values of the named manipulator in input order.
func (e *Environment) CurrentInputs(name string) ([]referenceframe.Input, error) {
	m, err := e.Manipulator(name)
	if err != nil {
		return nil, err
	}
	return lo.Map(m.JointNames(), func(joint string, _ int) referenceframe.Input {
		return referenceframe.Input{Value: e.state[joint]}
	}), nil
}

// CalcFwdKin returns the tool point pose of the named manipulator. tcp overrides the default offset when non-nil.
func (e *Environment) CalcFwdKin(name string, inputs []referenceframe.Input, tcp spatial.Pose) (spatial.Pose, error) {
	m, err := e.Manipulator(name)
	if err != nil {
		return nil, err
	}
	return m.CalcFwdKin(inputs, tcp)
}

// CalcInvKin returns inputs of the named manipulator placing its tool point at goal.
func (e *Environment) CalcInvKin(
	ctx context.Context,
	name string,
	goal spatial.Pose,
	seed []referenceframe.Input,
	tcp spatial.Pose,
) ([]referenceframe.Input, error) {
	m, err := e.Manipulator(name)
	if err != nil {
		return nil, err
	}
	return m.CalcInvKin(ctx, e.solver, goal, seed, tcp)
}

// Close marks the environment closed. It is safe to call more than once.
func (e *Environment) Close(ctx context.Context) error {
	if e.closed.Swap(true) {
		return nil
	}
	e.logger.CDebugw(ctx, "environment closed")
	return nil
}
