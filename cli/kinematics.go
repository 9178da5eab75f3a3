package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"

	"go.viam.com/dqkin/kinematics"
	"go.viam.com/dqkin/logging"
	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

const loggerKey = "logger"

var poseRowLabels = []string{"P.w", "P.x", "P.y", "P.z", "D.w", "D.x", "D.y", "D.z"}

// BeforeAction sets up the logger shared by every command. Logs go to the error writer.
func BeforeAction(c *cli.Context) error {
	logger := logging.NewBlankLogger("dqkin")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.WARN)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[loggerKey] = logger
	return nil
}

func loggerFromContext(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerKey].(logging.Logger); ok {
		return logger
	}
	return logging.NewBlankLogger("dqkin")
}

// loadModel builds the arm named by exactly one of --model and --robot, along with a name for it.
func loadModel(c *cli.Context) (*kinematics.SerialManipulator, string, error) {
	logger := loggerFromContext(c)
	file, robot := c.String(flagModel), c.String(flagRobot)
	switch {
	case file != "" && robot != "":
		return nil, "", errors.Errorf("--%s and --%s are mutually exclusive", flagModel, flagRobot)
	case file != "":
		m, err := kinematics.ParseModelFile(file, logger)
		return m, strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)), err
	case robot != "":
		m, err := kinematics.RobotModel(robot, logger)
		return m, robot, err
	default:
		return nil, "", errors.Errorf("one of --%s or --%s is required", flagModel, flagRobot)
	}
}

// configuration reads a joint vector flag, converting it to radians if --degrees is set.
func configuration(c *cli.Context, name string) []float64 {
	values := c.Float64Slice(name)
	if c.Bool(flagDegrees) {
		values = lo.Map(values, func(v float64, _ int) float64 { return utils.DegToRad(v) })
	}
	return values
}

func toLink(c *cli.Context, m *kinematics.SerialManipulator) int {
	if link := c.Int(flagToLink); link >= 0 {
		return link
	}
	return m.NLinks()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// renderMatrix prints m as a table with labelled rows and columns.
func renderMatrix(m mat.Matrix, rowLabels, colLabels []string) string {
	t := table.NewWriter()
	header := table.Row{""}
	for _, label := range colLabels {
		header = append(header, label)
	}
	t.AppendHeader(header)
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := table.Row{rowLabels[i]}
		for j := 0; j < cols; j++ {
			row = append(row, formatFloat(m.At(i, j)))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func jointLabels(n int) []string {
	return lo.Times(n, func(i int) string { return fmt.Sprintf("q%d", i+1) })
}

func renderPose(x dualquat.Number) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Quantity", "Value"})
	t.AppendRow(table.Row{"Dual quaternion", strings.Join(lo.Map(spatialmath.Vec8(x), func(v float64, _ int) string {
		return formatFloat(v)
	}), ", ")})
	tra := spatialmath.TranslationVector(x)
	t.AppendRow(table.Row{"Translation", fmt.Sprintf("X:%.6f, Y:%.6f, Z:%.6f", tra.X, tra.Y, tra.Z)})
	aa := spatialmath.QuatToR4AA(spatialmath.Rotation(x))
	t.AppendRow(table.Row{"Orientation", fmt.Sprintf(
		"Theta:%.4f°, RX:%.6f, RY:%.6f, RZ:%.6f", utils.RadToDeg(aa.Theta), aa.RX, aa.RY, aa.RZ,
	)})
	return t.Render()
}

// RobotsAction lists the built in robot models.
func RobotsAction(c *cli.Context) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Convention", "Links", "DoF"})
	for _, name := range kinematics.RobotModelNames() {
		m, err := kinematics.RobotModel(name, loggerFromContext(c))
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, m.Convention(), m.NLinks(), m.DoF()})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// DescribeAction prints the DH table of a model along with its base and effector.
func DescribeAction(c *cli.Context) error {
	m, name, err := loadModel(c)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Link", "Theta", "D", "A", "Alpha", "Dummy"})
	dummy := m.Dummy()
	for i := 0; i < m.NLinks(); i++ {
		t.AppendRow(table.Row{
			i + 1,
			formatFloat(m.Theta()[i]),
			formatFloat(m.D()[i]),
			formatFloat(m.A()[i]),
			formatFloat(m.Alpha()[i]),
			dummy[i],
		})
	}
	printf(c.App.Writer, "%s: %s convention, %d links, %d degrees of freedom", name, m.Convention(), m.NLinks(), m.DoF())
	printf(c.App.Writer, "%s", t.Render())
	printf(c.App.Writer, "Base:\n%s", renderPose(m.Base()))
	printf(c.App.Writer, "Effector:\n%s", renderPose(m.Effector()))
	return nil
}

// FKMAction prints the pose of a model at the given joint values.
func FKMAction(c *cli.Context) error {
	m, _, err := loadModel(c)
	if err != nil {
		return err
	}
	q, link := configuration(c, flagJoints), toLink(c, m)
	var x dualquat.Number
	if c.Bool(flagRaw) {
		x, err = m.RawFKMTo(q, link)
	} else {
		x, err = m.FKMTo(q, link)
	}
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", renderPose(x))
	return nil
}

func poseJacobian(c *cli.Context, m *kinematics.SerialManipulator) (*mat.Dense, error) {
	q, link := configuration(c, flagJoints), toLink(c, m)
	if c.Bool(flagRaw) {
		return m.RawPoseJacobian(q, link)
	}
	return m.PoseJacobianTo(q, link)
}

// JacobianAction prints the pose Jacobian of a model, or its time derivative when joint velocities are
// given.
func JacobianAction(c *cli.Context) error {
	m, _, err := loadModel(c)
	if err != nil {
		return err
	}
	var jac *mat.Dense
	if c.IsSet(flagJointVelocities) {
		q, qdot, link := configuration(c, flagJoints), configuration(c, flagJointVelocities), toLink(c, m)
		if c.Bool(flagRaw) {
			jac, err = m.RawPoseJacobianDerivative(q, qdot, link)
		} else {
			jac, err = m.PoseJacobianDerivative(q, qdot, link)
		}
	} else {
		jac, err = poseJacobian(c, m)
	}
	if err != nil {
		return err
	}
	if jac.IsEmpty() {
		printf(c.App.Writer, "no actuated joints up to link %d", toLink(c, m))
		return nil
	}
	_, cols := jac.Dims()
	printf(c.App.Writer, "%s", renderMatrix(jac, poseRowLabels, jointLabels(cols)))
	return nil
}

// PseudoInverseAction prints the pseudo-inverse of the pose Jacobian of a model.
func PseudoInverseAction(c *cli.Context) error {
	m, _, err := loadModel(c)
	if err != nil {
		return err
	}
	jac, err := poseJacobian(c, m)
	if err != nil {
		return err
	}
	if jac.IsEmpty() {
		printf(c.App.Writer, "no actuated joints up to link %d", toLink(c, m))
		return nil
	}
	pinv := utils.PseudoInverse(jac)
	rows, _ := pinv.Dims()
	printf(c.App.Writer, "%s", renderMatrix(pinv, jointLabels(rows), poseRowLabels))
	return nil
}

// ConvertAction writes a model to a json or yaml file.
func ConvertAction(c *cli.Context) error {
	m, name, err := loadModel(c)
	if err != nil {
		return err
	}
	cfg := kinematics.NewModelConfig(name, m)
	output := c.String(flagOutput)
	var data []byte
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json":
		data, err = cfg.ToJSON()
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	default:
		return errors.Errorf("unsupported output extension %q, expected .json, .yaml or .yml", filepath.Ext(output))
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode model %q", name)
	}
	//nolint:gosec
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", output)
	}
	loggerFromContext(c).Infow("model written", "name", name, "output", output)
	printf(c.App.Writer, "Wrote %s", output)
	return nil
}
