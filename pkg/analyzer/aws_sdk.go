package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/logger"
	"github.com/simonhull/lambda-doctor/pkg/manifest"
)

const (
	awsSDKv2Package    = "aws-sdk"
	awsSDKv3Prefix     = "@aws-sdk/client-"
	awsSSOClient       = "@aws-sdk/client-sso"
	awsSDKv2ImpactMs   = 400
	awsSSOImpactMs     = 15
	awsClientImpactMs  = 5
	awsClientNoteCount = 5
)

// AWSSDK checks which AWS SDK generation a project depends on.
type AWSSDK struct {
	base
}

// NewAWSSDK creates the aws-sdk analyzer.
func NewAWSSDK(log logger.Logger) *AWSSDK {
	return &AWSSDK{
		base: newBase(diagnosis.AWSSDK,
			"Checks AWS SDK version usage and migration status",
			nil, log),
	}
}

// Analyze implements Analyzer.
func (a *AWSSDK) Analyze(ctx context.Context, targetPath string, exclude []string) diagnosis.AnalyzerResult {
	start := time.Now()
	if exclude == nil {
		exclude = filesystem.DefaultExcludePatterns
	}

	m, err := manifest.Load(targetPath)
	if err != nil {
		return a.degrade(start, err, nil)
	}

	deps := m.AllDependencies()
	hasV2 := deps.Has(awsSDKv2Package)
	var clients []string
	for _, dep := range deps {
		if strings.HasPrefix(dep.Name, awsSDKv3Prefix) {
			clients = append(clients, dep.Name)
		}
	}
	hasV3 := len(clients) > 0

	c := diagnosis.NewCollector(a.name)

	switch {
	case hasV2 && !hasV3:
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityCritical,
			Title:             "Using AWS SDK v2 (aws-sdk)",
			Description:       "AWS SDK v2 is 65MB+ and loads all service clients. It adds 400ms+ to cold starts.",
			Recommendation:    "Migrate to AWS SDK v3 (@aws-sdk/client-*). Only import the clients you need.",
			EstimatedImpactMs: awsSDKv2ImpactMs,
			FilePath:          manifest.FileName,
		})
	case hasV2 && hasV3:
		c.Add(diagnosis.Diagnostic{
			Severity: diagnosis.SeverityWarning,
			Title:    "Incomplete AWS SDK v2 to v3 migration",
			Description: "Both aws-sdk (v2) and @aws-sdk/client-* (v3) are present. " +
				"This means v2 is still bundled alongside v3.",
			Recommendation:    `Complete the migration to SDK v3 and remove the "aws-sdk" dependency.`,
			EstimatedImpactMs: awsSDKv2ImpactMs,
			FilePath:          manifest.FileName,
		})
	}

	if len(clients) > awsClientNoteCount {
		c.Add(diagnosis.Diagnostic{
			Severity: diagnosis.SeverityInfo,
			Title:    fmt.Sprintf("%d AWS SDK v3 clients detected", len(clients)),
			Description: fmt.Sprintf("This Lambda uses %d AWS SDK clients: %s. Each client adds to bundle size.",
				len(clients), strings.Join(clients, ", ")),
			Recommendation:    "Verify all clients are necessary. Consider splitting into multiple Lambdas if responsibilities are too broad.",
			EstimatedImpactMs: float64(len(clients) * awsClientImpactMs),
		})
	}

	file, err := findSSOImport(ctx, targetPath, exclude)
	if err != nil {
		return a.degrade(start, err, nil)
	}
	if file != "" {
		c.Add(diagnosis.Diagnostic{
			Severity:          diagnosis.SeverityWarning,
			Title:             "Unnecessary SSO client in Lambda",
			Description:       "@aws-sdk/client-sso is imported but Lambda functions use IAM roles, not SSO authentication.",
			Recommendation:    "Remove the @aws-sdk/client-sso import. Lambda uses IAM execution roles for authentication.",
			EstimatedImpactMs: awsSSOImpactMs,
			FilePath:          file,
		})
	}

	return c.Result(diagnosis.Metadata{
		"hasV2":         hasV2,
		"hasV3":         hasV3,
		"v3ClientCount": len(clients),
	})
}

// findSSOImport returns the first source file mentioning the SSO
// client, or "" when none does.
func findSSOImport(ctx context.Context, root string, exclude []string) (string, error) {
	files, err := filesystem.SourceFiles(ctx, root, exclude)
	if err != nil {
		return "", err
	}
	needle := []byte(awsSSOClient)
	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(file)))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		if bytes.Contains(data, needle) {
			return file, nil
		}
	}
	return "", nil
}
