// Package cli contains the dqkin command line tool for inspecting serial manipulator models.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagDebug           = "debug"
	flagModel           = "model"
	flagRobot           = "robot"
	flagJoints          = "joints"
	flagJointVelocities = "joint-velocities"
	flagToLink          = "to-link"
	flagDegrees         = "degrees"
	flagRaw             = "raw"
	flagOutput          = "output"
)

var modelFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    flagModel,
		Aliases: []string{"m"},
		Usage:   "load the arm from a json or yaml model `FILE`",
	},
	&cli.StringFlag{
		Name:    flagRobot,
		Aliases: []string{"r"},
		Usage:   "use one of the built in robot models, see `dqkin robots`",
	},
}

var configurationFlags = append([]cli.Flag{
	&cli.Float64SliceFlag{
		Name:     flagJoints,
		Aliases:  []string{"q"},
		Usage:    "joint values of the actuated links, comma separated",
		Required: true,
	},
	&cli.IntFlag{
		Name:  flagToLink,
		Usage: "stop at this link, 0 is the base frame; defaults to the end effector",
		Value: -1,
	},
	&cli.BoolFlag{
		Name:  flagDegrees,
		Usage: "joint values and velocities are given in degrees",
	},
	&cli.BoolFlag{
		Name:  flagRaw,
		Usage: "ignore the base and effector transforms",
	},
}, modelFlags...)

var app = &cli.App{
	Name:            "dqkin",
	Usage:           "dual quaternion kinematics of serial manipulators",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Before: BeforeAction,
	Commands: []*cli.Command{
		{
			Name:   "robots",
			Usage:  "list the built in robot models",
			Action: RobotsAction,
		},
		{
			Name:      "describe",
			Usage:     "print the DH table, base and effector of a model",
			UsageText: "dqkin describe (--model FILE | --robot NAME)",
			Flags:     modelFlags,
			Action:    DescribeAction,
		},
		{
			Name:      "fkm",
			Usage:     "compute the forward kinematics of a model",
			UsageText: "dqkin fkm (--model FILE | --robot NAME) --joints q1,q2,... [--to-link N]",
			Flags:     configurationFlags,
			Action:    FKMAction,
		},
		{
			Name:      "jacobian",
			Usage:     "compute the pose Jacobian of a model, or its time derivative",
			UsageText: "dqkin jacobian (--model FILE | --robot NAME) --joints q1,q2,... [--joint-velocities v1,v2,...]",
			Flags: append([]cli.Flag{
				&cli.Float64SliceFlag{
					Name:  flagJointVelocities,
					Usage: "joint velocities; when set the time derivative of the Jacobian is printed",
				},
			}, configurationFlags...),
			Action: JacobianAction,
		},
		{
			Name:      "pinv",
			Usage:     "compute the pseudo-inverse of the pose Jacobian of a model",
			UsageText: "dqkin pinv (--model FILE | --robot NAME) --joints q1,q2,...",
			Flags:     configurationFlags,
			Action:    PseudoInverseAction,
		},
		{
			Name:      "convert",
			Usage:     "rewrite a model file as json or yaml",
			UsageText: "dqkin convert (--model FILE | --robot NAME) --output FILE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     flagOutput,
					Aliases:  []string{"o"},
					Usage:    "write the model to `FILE`, the extension picks the format",
					Required: true,
				},
			}, modelFlags...),
			Action: ConvertAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
