// Package ik contains distance metrics over poses and configurations, and the inverse kinematics solver used to
// turn Cartesian goals into joint configurations.
package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

const (
	// DefaultGoalThreshold is the norm of the combined translation/rotation error below which a solution is accepted.
	DefaultGoalThreshold = 1e-8
	// DefaultMaxIterations is the number of damped least squares steps taken from a single seed.
	DefaultMaxIterations = 300
	// DefaultRestarts is the number of random seeds tried after the provided seed fails.
	DefaultRestarts = 40

	jacobianStep   = 1e-7
	maxJointStep   = 0.5
	initialDamping = 1e-2
	minDamping     = 1e-9
	maxDamping     = 1e4
	poseDims       = 6
)

// ErrNoSolution is returned when no seed converged on the goal.
var ErrNoSolution = errors.New("inverse kinematics found no solution")

// Solver finds a configuration of a frame whose pose matches a goal.
type Solver interface {
	Solve(ctx context.Context, frame referenceframe.Frame, goal spatial.Pose, seed []referenceframe.Input) ([]referenceframe.Input, error)
}

// DampedLeastSquaresIK is a deterministic Levenberg-Marquardt style solver over a numerical Jacobian. The first attempt
// starts from the caller's seed; later attempts start from random configurations drawn from a fixed seed, so identical
// calls return identical answers.
type DampedLeastSquaresIK struct {
	logger        logging.Logger
	maxIterations int
	restarts      int
	goalThreshold float64
	randSeed      int64
}

// CreateDampedLeastSquaresSolver creates a solver. Non-positive values select the defaults.
func CreateDampedLeastSquaresSolver(logger logging.Logger, maxIterations, restarts int, goalThreshold float64) *DampedLeastSquaresIK {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if restarts < 0 {
		restarts = DefaultRestarts
	}
	if goalThreshold <= 0 {
		goalThreshold = DefaultGoalThreshold
	}
	return &DampedLeastSquaresIK{
		logger:        logger,
		maxIterations: maxIterations,
		restarts:      restarts,
		goalThreshold: goalThreshold,
		randSeed:      1,
	}
}

// Solve searches for inputs to frame which place it at goal.
func (ik *DampedLeastSquaresIK) Solve(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatial.Pose,
	seed []referenceframe.Input,
) ([]referenceframe.Input, error) {
	limits := frame.DoF()
	if len(seed) != len(limits) {
		return nil, referenceframe.NewIncorrectDoFError(len(seed), len(limits))
	}
	if len(limits) == 0 {
		return nil, errors.New("cannot solve for a frame with no degrees of freedom")
	}
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(ik.randSeed))
	metric := NewSquaredNormMetric(goal)

	for attempt := 0; attempt <= ik.restarts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := seed
		if attempt > 0 {
			start = referenceframe.GenerateRandomConfiguration(frame, randSeed)
		}
		solution, residual, err := ik.descend(frame, goal, clampToLimits(start, limits))
		if err != nil {
			return nil, err
		}
		if residual <= ik.goalThreshold {
			pose, err := frame.Transform(solution)
			if err != nil {
				return nil, err
			}
			ik.logger.Debugw("ik converged", "attempt", attempt, "residual", residual,
				"score", metric(&State{Position: pose, Configuration: solution, Frame: frame}))
			return solution, nil
		}
	}
	return nil, errors.Wrapf(ErrNoSolution, "goal %s after %d seeds", spatial.PoseString(goal), ik.restarts+1)
}

// descend runs damped least squares from a single start and returns the best configuration found and its error norm.
func (ik *DampedLeastSquaresIK) descend(
	frame referenceframe.Frame,
	goal spatial.Pose,
	start []referenceframe.Input,
) ([]referenceframe.Input, float64, error) {
	limits := frame.DoF()
	dof := len(limits)
	q := referenceframe.CopyInputs(start)

	pose, err := transformAllowOOB(frame, q)
	if err != nil {
		return nil, math.Inf(1), err
	}
	errVec := poseError(goal, pose)
	residual := floats.Norm(errVec, 2)
	damping := initialDamping

	jac := mat.NewDense(poseDims, dof, nil)
	for iter := 0; iter < ik.maxIterations && residual > ik.goalThreshold; iter++ {
		if err := jacobian(frame, q, pose, jac); err != nil {
			return nil, math.Inf(1), err
		}

		accepted := false
		for !accepted && damping <= maxDamping {
			dq, err := dampedStep(jac, errVec, damping)
			if err != nil {
				damping *= 10
				continue
			}
			if n := floats.Norm(dq, 2); n > maxJointStep {
				floats.Scale(maxJointStep/n, dq)
			}
			candidate := make([]referenceframe.Input, dof)
			for i := range q {
				candidate[i] = referenceframe.Input{Value: q[i].Value + dq[i]}
			}
			candidate = clampToLimits(candidate, limits)

			candidatePose, err := transformAllowOOB(frame, candidate)
			if err != nil {
				return nil, math.Inf(1), err
			}
			candidateErr := poseError(goal, candidatePose)
			if candidateResidual := floats.Norm(candidateErr, 2); candidateResidual < residual {
				q, pose, errVec, residual = candidate, candidatePose, candidateErr, candidateResidual
				damping = math.Max(damping/3, minDamping)
				accepted = true
			} else {
				damping *= 4
			}
		}
		if !accepted {
			// stuck in a local minimum or at a limit
			break
		}
	}
	return q, residual, nil
}

// poseError is the 6-vector of translation and rotation (as an R3 axis angle) taking from onto to, in the parent frame.
func poseError(to, from spatial.Pose) []float64 {
	dp := to.Point().Sub(from.Point())
	dr := spatial.QuatToR3AA(quat.Mul(to.Orientation().Quaternion(), quat.Conj(from.Orientation().Quaternion())))
	return []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z}
}

// jacobian fills jac with the forward difference Jacobian of the frame's pose at q.
func jacobian(frame referenceframe.Frame, q []referenceframe.Input, pose spatial.Pose, jac *mat.Dense) error {
	perturbed := referenceframe.CopyInputs(q)
	for j := range q {
		perturbed[j].Value = q[j].Value + jacobianStep
		stepped, err := transformAllowOOB(frame, perturbed)
		if err != nil {
			return err
		}
		perturbed[j].Value = q[j].Value
		col := poseError(stepped, pose)
		for i, v := range col {
			jac.Set(i, j, v/jacobianStep)
		}
	}
	return nil
}

// dampedStep solves dq = J^T (J J^T + λ²I)^-1 e.
func dampedStep(jac *mat.Dense, errVec []float64, damping float64) ([]float64, error) {
	var jjt mat.Dense
	jjt.Mul(jac, jac.T())
	for i := 0; i < poseDims; i++ {
		jjt.Set(i, i, jjt.At(i, i)+damping*damping)
	}
	var y mat.VecDense
	if err := y.SolveVec(&jjt, mat.NewVecDense(poseDims, errVec)); err != nil {
		return nil, err
	}
	var dq mat.VecDense
	dq.MulVec(jac.T(), &y)
	return dq.RawVector().Data, nil
}

// transformAllowOOB returns the pose of the frame, ignoring out of bounds errors.
func transformAllowOOB(frame referenceframe.Frame, q []referenceframe.Input) (spatial.Pose, error) {
	pose, err := frame.Transform(q)
	if pose == nil {
		return nil, err
	}
	return pose, nil
}

func clampToLimits(q []referenceframe.Input, limits []referenceframe.Limit) []referenceframe.Input {
	out := make([]referenceframe.Input, len(q))
	for i, in := range q {
		out[i] = referenceframe.Input{Value: math.Min(math.Max(in.Value, limits[i].Min), limits[i].Max)}
	}
	return out
}
