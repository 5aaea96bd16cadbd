package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"famchron/config"
	"famchron/gramps"
	"famchron/state"
)

const outputExt = ".tex"

// buildOutputPath returns output file path for the report of root person.
// Name is either "<source>-<root id>" or produced by user template which may
// contain subdirectories. Every segment is cleaned and, if requested,
// transliterated.
func buildOutputPath(root *gramps.Person, src, dst string, env *state.LocalEnv) string {
	defaultFile := buildDefaultFileName(root, src, env)

	if env.Cfg.Report.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(root, src, env)
	if expandedName == "" {
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, expandedName, env)
}

func buildDefaultFileName(root *gramps.Person, src string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + "-" + root.ID
	if env.Cfg.Report.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + outputExt
}

func expandOutputNameTemplate(root *gramps.Person, src string, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(root, src, config.OutputNameTemplateFieldName, env.Cfg.Report.OutputNameTemplate)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(strings.TrimSpace(expandedName))
}

func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	pathSegments := splitPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(pathSegments)+1)
	parts = append(parts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	last := strings.TrimSuffix(pathSegments[len(pathSegments)-1], outputExt)
	parts = append(parts, cleanPathSegment(last, env)+outputExt)
	return filepath.Join(parts...)
}

// splitPath returns path segments, ".." and "." are dropped so template
// cannot point outside of destination.
func splitPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); ; head, tail = filepath.Split(head) {
		if tail != "" && tail != ".." && tail != "." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Report.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
