package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
)

func TestAWSSDK_V2Only(t *testing.T) {
	dir := newProject(t, `{"dependencies": {"aws-sdk": "^2.1500.0"}}`)

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, diagnosis.SeverityCritical, d.Severity)
	assert.Contains(t, d.Title, "AWS SDK v2")
	assert.Equal(t, 400.0, d.EstimatedImpactMs)
	assert.Equal(t, "package.json", d.FilePath)

	assert.Equal(t, true, res.Metadata["hasV2"])
	assert.Equal(t, false, res.Metadata["hasV3"])
}

func TestAWSSDK_IncompleteMigration(t *testing.T) {
	dir := newProject(t, `{
		"dependencies": {"@aws-sdk/client-dynamodb": "^3.0.0"},
		"devDependencies": {"aws-sdk": "^2.0.0"}
	}`)

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnosis.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, "Incomplete AWS SDK v2 to v3 migration", res.Diagnostics[0].Title)
	assert.Equal(t, 400.0, res.Diagnostics[0].EstimatedImpactMs)
}

func TestAWSSDK_ManyClients(t *testing.T) {
	dir := newProject(t, `{"dependencies": {
		"@aws-sdk/client-s3": "^3.0.0",
		"@aws-sdk/client-sqs": "^3.0.0",
		"@aws-sdk/client-sns": "^3.0.0",
		"@aws-sdk/client-dynamodb": "^3.0.0",
		"@aws-sdk/lib-dynamodb": "^3.0.0",
		"@aws-sdk/client-ssm": "^3.0.0",
		"@aws-sdk/client-kms": "^3.0.0"
	}}`)

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, diagnosis.SeverityInfo, d.Severity)
	assert.Equal(t, "6 AWS SDK v3 clients detected", d.Title)
	assert.Equal(t, 30.0, d.EstimatedImpactMs)
	assert.Contains(t, d.Description, "@aws-sdk/client-s3, @aws-sdk/client-sqs")
	assert.NotContains(t, d.Description, "lib-dynamodb")

	count, _ := res.Metadata.Int("v3ClientCount")
	assert.Equal(t, 6, count)
}

func TestAWSSDK_FiveClientsIsQuiet(t *testing.T) {
	dir := newProject(t, `{"dependencies": {
		"@aws-sdk/client-s3": "^3.0.0",
		"@aws-sdk/client-sqs": "^3.0.0",
		"@aws-sdk/client-sns": "^3.0.0",
		"@aws-sdk/client-dynamodb": "^3.0.0",
		"@aws-sdk/client-ssm": "^3.0.0"
	}}`)

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	assert.Empty(t, res.Diagnostics)
}

func TestAWSSDK_SSOClient(t *testing.T) {
	dir := newProject(t, `{"dependencies": {"@aws-sdk/client-s3": "^3.0.0"}}`)
	writeFile(t, dir, "src/a.ts", "import { SSOClient } from '@aws-sdk/client-sso';\n")
	writeFile(t, dir, "src/b.ts", "import { SSOClient } from '@aws-sdk/client-sso';\n")
	writeFile(t, dir, "src/a.test.ts", "import { SSOClient } from '@aws-sdk/client-sso';\n")

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	require.Len(t, res.Diagnostics, 1, "the scan stops at the first file")
	d := res.Diagnostics[0]
	assert.Equal(t, "Unnecessary SSO client in Lambda", d.Title)
	assert.Equal(t, diagnosis.SeverityWarning, d.Severity)
	assert.Equal(t, 15.0, d.EstimatedImpactMs)
	assert.Equal(t, "src/a.ts", d.FilePath)
}

func TestAWSSDK_SSOClientInExcludedFile(t *testing.T) {
	dir := newProject(t, `{"dependencies": {}}`)
	writeFile(t, dir, "src/__tests__/auth.ts", "import { SSOClient } from '@aws-sdk/client-sso';\n")

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	assert.Empty(t, res.Diagnostics)
}

func TestAWSSDK_MalformedManifest(t *testing.T) {
	dir := newProject(t, `not json`)
	writeFile(t, dir, "src/a.ts", "import { SSOClient } from '@aws-sdk/client-sso';\n")

	res := NewAWSSDK(silent()).Analyze(context.Background(), dir, nil)

	assert.Equal(t, diagnosis.AWSSDK, res.Analyzer)
	assert.Empty(t, res.Diagnostics)
}
