package kinematics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gopkg.in/yaml.v3"

	"go.viam.com/dqkin/logging"
	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ModelConfig represents all supported fields in a kinematics model file.
type ModelConfig struct {
	Name       string          `json:"name" yaml:"name"`
	Convention string          `json:"convention" yaml:"convention"`
	DHParams   []DHParamConfig `json:"dhParams" yaml:"dhParams"`
	Base       *PoseConfig     `json:"base,omitempty" yaml:"base,omitempty"`
	Effector   *PoseConfig     `json:"effector,omitempty" yaml:"effector,omitempty"`
}

// DHParamConfig is one column of a DH table.
type DHParamConfig struct {
	ID    string  `json:"id,omitempty" yaml:"id,omitempty"`
	Theta float64 `json:"theta" yaml:"theta"`
	D     float64 `json:"d" yaml:"d"`
	A     float64 `json:"a" yaml:"a"`
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Dummy bool    `json:"dummy,omitempty" yaml:"dummy,omitempty"`
}

// PoseConfig is a translation followed by an axis angle orientation.
type PoseConfig struct {
	Translation r3.Vector         `json:"translation" yaml:"translation"`
	Orientation *spatialmath.R4AA `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// UnmarshalModelJSON parses the given JSON data into a SerialManipulator.
func UnmarshalModelJSON(jsonData []byte, logger logging.Logger) (*SerialManipulator, error) {
	// empty data probably means that the file has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}
	cfg := &ModelConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(logger)
}

// UnmarshalModelYAML parses the given YAML data into a SerialManipulator.
func UnmarshalModelYAML(yamlData []byte, logger logging.Logger) (*SerialManipulator, error) {
	if len(yamlData) == 0 {
		return nil, ErrNoModelInformation
	}
	cfg := &ModelConfig{}
	if err := yaml.Unmarshal(yamlData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml file")
	}
	return cfg.ParseConfig(logger)
}

// ParseModelFile reads a .json, .yaml or .yml model file.
func ParseModelFile(filename string, logger logging.Logger) (*SerialManipulator, error) {
	//nolint:gosec
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file %q", filename)
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		return UnmarshalModelJSON(data, logger)
	case ".yaml", ".yml":
		return UnmarshalModelYAML(data, logger)
	default:
		return nil, errors.Errorf("unsupported model file extension %q, supported extensions are .json, .yaml and .yml", ext)
	}
}

// Validate returns every problem with the config at once.
func (cfg *ModelConfig) Validate() error {
	var errs error
	if _, err := ParseConvention(cfg.Convention); err != nil {
		multierr.AppendInto(&errs, err)
	}
	if len(cfg.DHParams) == 0 {
		multierr.AppendInto(&errs, utils.NewInvalidArgumentError("model %q has no dhParams", cfg.Name))
	}
	for i, dh := range cfg.DHParams {
		if !utils.IsFinite(dh.Theta, dh.D, dh.A, dh.Alpha) {
			multierr.AppendInto(&errs, utils.NewInvalidArgumentError("dhParams[%d] (%s) has a value that is not finite", i, dh.ID))
		}
	}
	if _, err := cfg.Base.dualQuaternion(); err != nil {
		multierr.AppendInto(&errs, errors.Wrap(err, "invalid base"))
	}
	if _, err := cfg.Effector.dualQuaternion(); err != nil {
		multierr.AppendInto(&errs, errors.Wrap(err, "invalid effector"))
	}
	return errs
}

// ParseConfig converts the ModelConfig into a SerialManipulator.
func (cfg *ModelConfig) ParseConfig(logger logging.Logger) (*SerialManipulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	convention, err := ParseConvention(cfg.Convention)
	if err != nil {
		return nil, err
	}

	table := mat.NewDense(5, len(cfg.DHParams), nil)
	for i, dh := range cfg.DHParams {
		dummy := 0.
		if dh.Dummy {
			dummy = 1
		}
		table.SetCol(i, []float64{dh.Theta, dh.D, dh.A, dh.Alpha, dummy})
	}

	if logger == nil {
		logger = logging.NewLogger("kinematics")
	}
	if cfg.Name != "" {
		logger = logger.Sublogger(cfg.Name)
	}
	m, err := NewSerialManipulator(table, convention, logger)
	if err != nil {
		return nil, err
	}
	// Already validated.
	base, _ := cfg.Base.dualQuaternion()
	effector, _ := cfg.Effector.dualQuaternion()
	m.SetBase(base)
	m.SetEffector(effector)

	logger.Debugw("parsed kinematic model", "name", cfg.Name, "convention", convention.String(),
		"links", m.NLinks(), "dof", m.DoF())
	return m, nil
}

// NewModelConfig describes an existing chain, such that ParseConfig rebuilds an equivalent one.
func NewModelConfig(name string, m *SerialManipulator) *ModelConfig {
	table := m.DHTable()
	_, cols := table.Dims()
	cfg := &ModelConfig{
		Name:       name,
		Convention: m.Convention().String(),
		DHParams:   make([]DHParamConfig, cols),
		Base:       newPoseConfig(m.Base()),
		Effector:   newPoseConfig(m.Effector()),
	}
	for i := range cfg.DHParams {
		cfg.DHParams[i] = DHParamConfig{
			Theta: table.At(ThetaRow, i),
			D:     table.At(DRow, i),
			A:     table.At(ARow, i),
			Alpha: table.At(AlphaRow, i),
			Dummy: table.At(DummyRow, i) == 1,
		}
	}
	return cfg
}

// ToYAML writes the config as YAML.
func (cfg *ModelConfig) ToYAML() ([]byte, error) {
	return yaml.Marshal(cfg)
}

// ToJSON writes the config as indented JSON.
func (cfg *ModelConfig) ToJSON() ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

func newPoseConfig(x dualquat.Number) *PoseConfig {
	aa := spatialmath.QuatToR4AA(spatialmath.Rotation(x))
	return &PoseConfig{Translation: spatialmath.TranslationVector(x), Orientation: &aa}
}

// A nil config is the identity.
func (pc *PoseConfig) dualQuaternion() (dualquat.Number, error) {
	if pc == nil {
		return spatialmath.Identity(), nil
	}
	if !utils.IsFinite(pc.Translation.X, pc.Translation.Y, pc.Translation.Z) {
		return dualquat.Number{}, utils.NewInvalidArgumentError("translation is not finite")
	}
	orientation := spatialmath.NewR4AA()
	if pc.Orientation != nil {
		orientation = pc.Orientation
	}
	rotation, err := orientation.ToQuat()
	if err != nil {
		return dualquat.Number{}, utils.NewInvalidArgumentError("orientation: %v", err)
	}
	return spatialmath.NewPose(pc.Translation, rotation), nil
}
