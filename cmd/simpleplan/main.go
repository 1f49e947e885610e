// Package main is the simpleplan command: it plans a program of plan instructions against an environment of
// kinematic models and prints the resulting joint states.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/simpleplanner/environment"
	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
	"go.viam.com/simpleplanner/motionplan/ik"
	"go.viam.com/simpleplanner/motionplan/simple"
	"go.viam.com/simpleplanner/utils"
)

const (
	// Flags.
	planFlagEnv     = "env"
	planFlagRequest = "request"
	planFlagFormat  = "format"
	flagDebug       = "debug"

	// debugEnvVar turns on debug logging of planning decisions only.
	debugEnvVar = "SIMPLEPLAN_DEBUG"

	formatTable = "table"
	formatJSON  = "json"
)

// requestConfig is the contents of a request file.
type requestConfig struct {
	DefaultProfile string                          `json:"default_profile"`
	Profiles       map[string]simple.ProfileConfig `json:"profiles"`
	State          map[string]float64              `json:"state,omitempty"`
	Program        command.ProgramConfig           `json:"program"`
}

func readRequestConfig(path string) (*requestConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg requestConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse request %s", path)
	}
	return &cfg, nil
}

func newApp(out io.Writer) *cli.App {
	var logger logging.Logger

	return &cli.App{
		Name:      "simpleplan",
		Usage:     "interpolate motion programs into joint states",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("simpleplan")
			} else {
				logger = logging.NewLogger("simpleplan")
			}
			logging.ReplaceGlobal(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "print the JSON schema of each profile type's attributes",
				Action: func(c *cli.Context) error {
					data, err := json.MarshalIndent(simple.ProfileAttributeSchemas, "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(data))
					return nil
				},
			},
			{
				Name:      "plan",
				Usage:     "plan a program",
				UsageText: "simpleplan plan --env <env.json> --request <request.json> [--format table|json]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     planFlagEnv,
						Required: true,
						Usage:    "environment config `FILE`",
					},
					&cli.PathFlag{
						Name:     planFlagRequest,
						Required: true,
						Usage:    "request `FILE` holding profiles and the program",
					},
					&cli.StringFlag{
						Name:  planFlagFormat,
						Value: formatTable,
						Usage: "output format, one of table or json",
					},
				},
				Action: func(c *cli.Context) error {
					return planAction(c, logger)
				},
			},
		},
	}
}

func planAction(c *cli.Context, logger logging.Logger) (err error) {
	format := c.String(planFlagFormat)
	if format != formatTable && format != formatJSON {
		return errors.Errorf("unknown format %q", format)
	}

	envPath := c.Path(planFlagEnv)
	envCfg, err := environment.ReadConfig(envPath)
	if err != nil {
		return err
	}
	env, err := environment.NewEnvironmentFromConfig(envCfg, filepath.Dir(envPath), nil, logger.Sublogger("environment"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, env.Close(c.Context))
	}()

	reqCfg, err := readRequestConfig(c.Path(planFlagRequest))
	if err != nil {
		return err
	}
	planID := uuid.NewString()
	ctx := c.Context
	if utils.EnvFlagSet(debugEnvVar) {
		ctx = logging.EnableDebugMode(ctx, planID)
	}
	composite, err := plan(ctx, env, reqCfg, logger)
	if err != nil {
		return errors.Wrapf(err, "plan %s", planID)
	}
	logger.CDebugw(ctx, "planned", "states", len(composite))

	if format == formatJSON {
		data, err := json.MarshalIndent(composite, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}
	fmt.Fprintln(c.App.Writer, composite.String())
	summary, err := summarize(composite)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, summary)
	return nil
}

func plan(ctx context.Context, env *environment.Environment, reqCfg *requestConfig, logger logging.Logger) (command.Composite, error) {
	profiles, err := simple.ProfilesFromConfig(reqCfg.Profiles, logger.Sublogger("profiles"))
	if err != nil {
		return nil, err
	}
	var defaultProfile simple.PlanProfile
	if reqCfg.DefaultProfile != "" {
		var ok bool
		if defaultProfile, ok = profiles[reqCfg.DefaultProfile]; !ok {
			return nil, errors.Errorf("default profile %q is not configured", reqCfg.DefaultProfile)
		}
	}
	program, err := reqCfg.Program.ParseConfig()
	if err != nil {
		return nil, err
	}
	planner := simple.NewPlanner(logger.Sublogger("planner"), defaultProfile, profiles)
	return planner.Solve(ctx, &simple.PlannerRequest{Env: env, EnvState: reqCfg.State}, program)
}

// summarize reports how far the joints move between consecutive states.
func summarize(composite command.Composite) (string, error) {
	if len(composite) < 2 {
		return fmt.Sprintf("%d states", len(composite)), nil
	}
	deltas := make([]float64, 0, len(composite)-1)
	var pathLength float64
	positions := composite.Positions()
	for i := 1; i < len(positions); i++ {
		step := &ik.Segment{StartConfiguration: positions[i-1], EndConfiguration: positions[i]}
		deltas = append(deltas, ik.JointMaxDelta(step))
		pathLength += ik.L2InputMetric(step)
	}
	mean, err := stats.Mean(deltas)
	if err != nil {
		return "", err
	}
	largest, err := stats.Max(deltas)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d states, joint step mean %.4f max %.4f, joint path length %.4f",
		len(composite), mean, largest, pathLength), nil
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logging.Global().Fatalw("simpleplan failed", "error", err)
	}
}
