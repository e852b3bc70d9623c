package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/logger"
	"github.com/simonhull/lambda-doctor/pkg/manifest"
)

var bundlerPackages = []string{
	"esbuild", "webpack", "rollup", "tsup", "parcel",
	"@rsbuild/core", "rspack", "@rspack/core",
	"turbopack", "swc", "@swc/core", "bun",
	"vite",
}

var bundlerConfigs = []string{
	"webpack.config.*",
	"rollup.config.*",
	"tsup.config.*",
	"esbuild.config.*",
	".parcelrc",
	"rsbuild.config.*",
	"rspack.config.*",
	"vite.config.*",
	".swcrc",
}

var bundlerKeywords = []string{
	"esbuild", "webpack", "rollup", "tsup", "parcel", "bundle",
	"rsbuild", "rspack", "turbopack", "swc", "vite",
}

// serverlessPlugins in the order they are reported when several match.
var serverlessPlugins = []string{"serverless-esbuild", "serverless-webpack", "serverless-bundle"}

const noBundlerImpactMs = 500

// BundlerDetection checks for a build step that bundles the function.
type BundlerDetection struct {
	base
}

// NewBundlerDetection creates the bundler-detection analyzer.
func NewBundlerDetection(log logger.Logger) *BundlerDetection {
	return &BundlerDetection{
		base: newBase(diagnosis.BundlerDetection,
			"Detects whether a bundler is configured and checks ESM/bundler setup",
			nil, log),
	}
}

// Analyze implements Analyzer.
func (a *BundlerDetection) Analyze(_ context.Context, targetPath string, _ []string) diagnosis.AnalyzerResult {
	start := time.Now()

	m, err := manifest.Load(targetPath)
	if err != nil {
		return a.degrade(start, err, nil)
	}

	deps := m.AllDependencies()
	detected := []string{}
	for _, b := range bundlerPackages {
		if deps.Has(b) {
			detected = append(detected, b)
		}
	}

	configFiles, err := filesystem.GlobRoot(targetPath, bundlerConfigs)
	if err != nil {
		return a.degrade(start, err, nil)
	}
	if configFiles == nil {
		configFiles = []string{}
	}

	scripts := []string{}
	for _, s := range m.Scripts {
		for _, kw := range bundlerKeywords {
			if strings.Contains(s.Command, kw) {
				scripts = append(scripts, s.Name)
				break
			}
		}
	}

	plugin, err := serverlessPlugin(targetPath)
	if err != nil {
		a.logger.Debug("ignoring unreadable serverless config", logger.Analyzer(a.name), logger.Err(err))
	}
	markers := deploymentMarkers(targetPath)

	isESM := m.IsModule()
	hasBundler := len(detected) > 0 || len(configFiles) > 0 || plugin != "" || len(markers) > 0

	c := diagnosis.NewCollector(a.name)

	if !hasBundler {
		c.Add(diagnosis.Diagnostic{
			Severity: diagnosis.SeverityCritical,
			Title:    "No bundler detected",
			Description: "No bundler (esbuild, webpack, rollup, etc.) was found in this project. Without a bundler, " +
				"the entire node_modules directory is deployed, causing large bundle sizes and slow cold starts.",
			Recommendation: "Add esbuild (fastest) or webpack to bundle your Lambda function. " +
				"This is typically the single biggest cold start improvement you can make.",
			EstimatedImpactMs: noBundlerImpactMs,
		})
	} else {
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityInfo,
			Title:             "Bundler detected: " + bundlerLabel(detected, plugin, markers),
			Description:       bundlerSummary(detected, configFiles, plugin, markers),
			Recommendation:    "Ensure your bundler is configured for tree-shaking and minification.",
			EstimatedImpactMs: 0,
		})
	}

	if !isESM {
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityInfo,
			Title:             "Project is not using ESM",
			Description:       `"type": "module" is not set in package.json. ESM enables better tree-shaking with bundlers.`,
			Recommendation:    `Consider setting "type": "module" in package.json for better tree-shaking support.`,
			EstimatedImpactMs: 20,
		})
	}

	var pluginMeta any
	if plugin != "" {
		pluginMeta = plugin
	}
	return c.Result(diagnosis.Metadata{
		"detectedBundlers":  detected,
		"configFiles":       configFiles,
		"bundlerScripts":    scripts,
		"serverlessPlugin":  pluginMeta,
		"deploymentMarkers": markers,
		"isESM":             isESM,
		"hasBundler":        hasBundler,
	})
}

func bundlerLabel(detected []string, plugin string, markers []string) string {
	switch {
	case len(detected) > 0:
		return strings.Join(detected, ", ")
	case plugin != "":
		return plugin
	case len(markers) > 0:
		return strings.Join(markers, ", ")
	default:
		return "config found"
	}
}

func bundlerSummary(detected, configFiles []string, plugin string, markers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found bundler setup: packages=[%s], configs=[%s]",
		strings.Join(detected, ", "), strings.Join(configFiles, ", "))
	if plugin != "" {
		fmt.Fprintf(&b, ", serverless plugin=%s", plugin)
	}
	if len(markers) > 0 {
		fmt.Fprintf(&b, ", deployment=[%s]", strings.Join(markers, ", "))
	}
	b.WriteString(".")
	return b.String()
}

// serverlessPlugin returns the bundling plugin declared in the
// Serverless Framework config, or "" when there is none.
func serverlessPlugin(root string) (string, error) {
	for _, name := range []string{"serverless.yml", "serverless.yaml"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
		return pluginFromServerless(data), nil
	}
	return "", nil
}

func pluginFromServerless(data []byte) string {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err == nil {
		if list := declaredPlugins(&doc); list != nil {
			for _, p := range serverlessPlugins {
				if slices.Contains(list, p) {
					return p
				}
			}
			return ""
		}
	}

	// Unparseable or templated configs fall back to a plain search.
	content := string(data)
	for _, p := range serverlessPlugins {
		if strings.Contains(content, p) {
			return p
		}
	}
	return ""
}

// declaredPlugins reads the top-level plugins key, which is either a
// list or a map with a modules list. It returns nil when absent.
func declaredPlugins(doc *yaml.Node) []string {
	root := documentRoot(doc)
	plugins := mappingValue(root, "plugins")
	if plugins == nil {
		return nil
	}
	if plugins.Kind == yaml.MappingNode {
		plugins = mappingValue(plugins, "modules")
		if plugins == nil {
			return []string{}
		}
	}
	if plugins.Kind != yaml.SequenceNode {
		return nil
	}
	names := make([]string, 0, len(plugins.Content))
	for _, n := range plugins.Content {
		if n.Kind == yaml.ScalarNode {
			names = append(names, n.Value)
		}
	}
	return names
}

// deploymentMarkers reports bundling configured through a deployment
// framework rather than a bundler package.
func deploymentMarkers(root string) []string {
	markers := []string{}
	if samBuildsWithEsbuild(root) {
		markers = append(markers, "sam:esbuild")
	}
	if bundler := netlifyBundler(root); bundler == "esbuild" {
		markers = append(markers, "netlify:esbuild")
	}
	return markers
}

// samBuildsWithEsbuild reports whether any resource in an AWS SAM
// template sets Metadata.BuildMethod to esbuild.
func samBuildsWithEsbuild(root string) bool {
	for _, name := range []string{"template.yaml", "template.yml"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			continue
		}
		resources := mappingValue(documentRoot(&doc), "Resources")
		if resources == nil || resources.Kind != yaml.MappingNode {
			continue
		}
		for i := 1; i < len(resources.Content); i += 2 {
			meta := mappingValue(resources.Content[i], "Metadata")
			method := mappingValue(meta, "BuildMethod")
			if method != nil && method.Kind == yaml.ScalarNode && method.Value == "esbuild" {
				return true
			}
		}
	}
	return false
}

type netlifyConfig struct {
	Functions struct {
		NodeBundler string `toml:"node_bundler"`
	} `toml:"functions"`
}

// netlifyBundler returns functions.node_bundler from netlify.toml.
func netlifyBundler(root string) string {
	var cfg netlifyConfig
	if _, err := toml.DecodeFile(filepath.Join(root, "netlify.toml"), &cfg); err != nil {
		return ""
	}
	return cfg.Functions.NodeBundler
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
