package kinematics

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/dqkin/logging"
)

//go:embed models/*.json
var robotModels embed.FS

// RobotModelNames lists the robot models shipped with the package.
func RobotModelNames() []string {
	entries, err := fs.ReadDir(robotModels, "models")
	if err != nil {
		return nil
	}
	names := lo.Map(entries, func(entry fs.DirEntry, _ int) string {
		return strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
	})
	sort.Strings(names)
	return names
}

// RobotModel builds one of the shipped robot models by name, e.g. "kuka_lw4".
func RobotModel(name string, logger logging.Logger) (*SerialManipulator, error) {
	if !lo.Contains(RobotModelNames(), name) {
		return nil, errors.Errorf("unknown robot model %q, known models are %s", name, strings.Join(RobotModelNames(), ", "))
	}
	data, err := robotModels.ReadFile(path.Join("models", name+".json"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read robot model %q", name)
	}
	return UnmarshalModelJSON(data, logger)
}
