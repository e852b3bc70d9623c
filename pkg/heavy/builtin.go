package heavy

// builtin is the default table. Sizes are approximate on-disk sizes of
// a typical install.
var builtin = []Package{
	{
		Name:               "aws-sdk",
		TypicalSizeBytes:   65_000_000,
		Reason:             "AWS SDK v2 is 65MB+ and loads all service clients. Lambda runtime includes it, but it's slow.",
		Alternative:        "Use @aws-sdk/client-* (v3) with selective imports. Only import clients you need.",
		EstimatedSavingsMs: 400,
	},
	{
		Name:               "moment",
		TypicalSizeBytes:   4_800_000,
		Reason:             "Moment.js is 4.8MB with locales. Not tree-shakeable.",
		Alternative:        "Use dayjs (2KB) or date-fns with tree-shaking.",
		EstimatedSavingsMs: 50,
	},
	{
		Name:               "moment-timezone",
		TypicalSizeBytes:   8_200_000,
		Reason:             "Moment-timezone adds 8MB+ of timezone data on top of Moment.",
		Alternative:        "Use dayjs/plugin/timezone or Intl.DateTimeFormat (built-in).",
		EstimatedSavingsMs: 80,
	},
	{
		Name:               "lodash",
		TypicalSizeBytes:   1_400_000,
		Reason:             "Full lodash is 1.4MB. Not tree-shakeable with CommonJS.",
		Alternative:        "Use lodash-es (tree-shakeable) or individual packages like lodash.get.",
		EstimatedSavingsMs: 30,
	},
	{
		Name:               "axios",
		TypicalSizeBytes:   450_000,
		Reason:             "Axios is 450KB. Overkill for Lambda where you can use native fetch (Node 18+).",
		Alternative:        "Use native fetch (Node 18+) or undici.",
		EstimatedSavingsMs: 15,
	},
	{
		Name:               "express",
		TypicalSizeBytes:   550_000,
		Reason:             "Express has 30+ dependencies. Heavy for a single Lambda function.",
		Alternative:        "Use lambda-api (zero deps) or direct API Gateway event parsing.",
		EstimatedSavingsMs: 20,
	},
	{
		Name:               "bluebird",
		TypicalSizeBytes:   350_000,
		Reason:             "Bluebird is unnecessary in Node 18+ which has native Promise with good performance.",
		Alternative:        "Use native Promise (built-in).",
		EstimatedSavingsMs: 10,
	},
	{
		Name:               "uuid",
		TypicalSizeBytes:   150_000,
		Reason:             "UUID package is 150KB. Node 18+ has crypto.randomUUID() built-in.",
		Alternative:        "Use crypto.randomUUID() (built-in Node 18+).",
		EstimatedSavingsMs: 5,
	},
	{
		Name:               "winston",
		TypicalSizeBytes:   2_500_000,
		Reason:             "Winston is 2.5MB with many transports. Too heavy for Lambda.",
		Alternative:        "Use @aws-lambda-powertools/logger or pino.",
		EstimatedSavingsMs: 40,
	},
	{
		Name:               "joi",
		TypicalSizeBytes:   950_000,
		Reason:             "Joi is ~1MB. Heavy for Lambda validation.",
		Alternative:        "Use zod (lighter, TypeScript-native) or ajv.",
		EstimatedSavingsMs: 20,
	},
	{
		Name:               "mongoose",
		TypicalSizeBytes:   3_800_000,
		Reason:             "Mongoose is 3.8MB. Extremely heavy for Lambda.",
		Alternative:        "Use native MongoDB driver or Dynamoose for DynamoDB.",
		EstimatedSavingsMs: 100,
	},
	{
		Name:               "typescript",
		TypicalSizeBytes:   65_000_000,
		Reason:             "TypeScript compiler in production bundle is 65MB. Should only be a devDependency.",
		Alternative:        "Move to devDependencies. Deploy compiled JavaScript only.",
		EstimatedSavingsMs: 500,
	},
	{
		Name:               "ts-node",
		TypicalSizeBytes:   3_500_000,
		Reason:             "ts-node adds 200-500ms cold start. Should not be in production.",
		Alternative:        "Transpile to JavaScript before deployment.",
		EstimatedSavingsMs: 350,
	},
	{
		Name:               "@nestjs/core",
		TypicalSizeBytes:   5_200_000,
		Reason:             "NestJS is a heavy framework (5MB+). Decorator metadata and DI container add cold start overhead.",
		Alternative:        "Use lighter patterns for Lambda: plain handlers or lambda-api.",
		EstimatedSavingsMs: 150,
	},
	{
		Name:               "puppeteer",
		TypicalSizeBytes:   300_000_000,
		Reason:             "Puppeteer bundles Chromium (300MB+). Exceeds Lambda package limits.",
		Alternative:        "Use @sparticuz/chromium with puppeteer-core for Lambda.",
		EstimatedSavingsMs: 2000,
	},
}
