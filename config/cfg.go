package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// LabelsConfig holds literal strings placed into generated tables.
	LabelsConfig struct {
		And      string `yaml:"and" validate:"required"`
		From     string `yaml:"from" validate:"required"`
		Marriage string `yaml:"marriage" validate:"required"`
		Unknown  string `yaml:"unknown" validate:"required"`
	}

	ReportConfig struct {
		RootPerson            string       `yaml:"root_person"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		PageBreak             bool         `yaml:"page_break"`
		GenerationOffset      int          `yaml:"generation_offset" validate:"gte=0,lte=100"`
		Labels                LabelsConfig `yaml:"labels"`
	}

	SourceConfig struct {
		Format      SourceFmt `yaml:"format" validate:"gte=0"`
		PlaceLevels int       `yaml:"place_levels" validate:"min=1,max=10"`
	}

	// ColumnsConfig defines widths of table columns, values are LaTeX lengths.
	ColumnsConfig struct {
		Name      string `yaml:"name" validate:"required"`
		Symbol    string `yaml:"symbol" validate:"required"`
		Date      string `yaml:"date" validate:"required"`
		Location  string `yaml:"location" validate:"required"`
		Gap       string `yaml:"gap" validate:"required"`
		Reference string `yaml:"reference" validate:"required"`
	}

	DocumentConfig struct {
		Class          string        `yaml:"class" validate:"required"`
		FontSize       string        `yaml:"font_size" validate:"required"`
		Paper          string        `yaml:"paper" validate:"required"`
		Landscape      bool          `yaml:"landscape"`
		LeftMargin     string        `yaml:"left_margin"`
		FloatPlacement string        `yaml:"float_placement" validate:"omitempty,excludesall=[]{}"`
		TableSkip      string        `yaml:"table_skip"`
		Columns        ColumnsConfig `yaml:"columns"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Report    ReportConfig   `yaml:"report"`
		Source    SourceConfig   `yaml:"source"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, template is expanded later
	// when report values are known
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template and
// validates the result. Empty path means defaults only.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
