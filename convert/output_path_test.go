package convert

import (
	"path/filepath"
	"reflect"
	"testing"

	"famchron/config"
	"famchron/gramps"
	"famchron/state"
)

func setupTestEnvForOutputPath(t *testing.T, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Report.FileNameTransliterate = transliterate
	cfg.Report.OutputNameTemplate = template
	return &state.LocalEnv{Log: testLogger(t), Cfg: cfg}
}

func testRoot() *gramps.Person {
	return &gramps.Person{Handle: "_i0", ID: "I0000", Name: gramps.Name{First: "Jürgen", Surname: "Müller"}}
}

func TestBuildOutputPath(t *testing.T) {
	out := string(filepath.Separator) + "output"

	tests := []struct {
		name          string
		transliterate bool
		template      string
		want          string
	}{
		{
			name: "default",
			want: filepath.Join(out, "family-I0000.tex"),
		},
		{
			name:     "template",
			template: `{{ .Surname }}, {{ .GivenName }}`,
			want:     filepath.Join(out, "Müller, Jürgen.tex"),
		},
		{
			name:     "template with directories",
			template: `{{ .Surname }}/{{ .RootID }}-{{ .SourceFile }}`,
			want:     filepath.Join(out, "Müller", "I0000-family.tex"),
		},
		{
			name:     "template with extension",
			template: `{{ .RootID }}.tex`,
			want:     filepath.Join(out, "I0000.tex"),
		},
		{
			name:          "transliterated template",
			transliterate: true,
			template:      `{{ .Surname }}/{{ .GivenName }}`,
			want:          filepath.Join(out, "muller", "jurgen.tex"),
		},
		{
			name:          "transliterated default",
			transliterate: true,
			want:          filepath.Join(out, "family-i0000.tex"),
		},
		{
			name:     "escaping destination",
			template: `../../{{ .RootID }}`,
			want:     filepath.Join(out, "I0000.tex"),
		},
		{
			name:     "broken template",
			template: `{{ .Surname `,
			want:     filepath.Join(out, "family-I0000.tex"),
		},
		{
			name:     "unknown field",
			template: `{{ .Title }}`,
			want:     filepath.Join(out, "family-I0000.tex"),
		},
		{
			name:     "forbidden characters",
			template: `{{ .RootID }}:{{ .Surname }}`,
			want:     filepath.Join(out, "I0000Müller.tex"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, tt.template)
			got := buildOutputPath(testRoot(), filepath.Join("trees", "family.gramps"), out, env)
			if got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{filepath.Join("a", "b", "c"), []string{"a", "b", "c"}},
		{"a" + string(filepath.Separator) + ".." + string(filepath.Separator) + "b", []string{"a", "b"}},
		{filepath.Join(".", "a") + string(filepath.Separator), []string{"a"}},
	}
	for _, tt := range tests {
		if got := splitPath(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
