package signature

import "github.com/strata-dev/strata/internal/types"

// builtin is the default technology registry. Pure data: file globs, content
// regexes, and optional disambiguators. Extend via YAML registry files
// rather than editing detection code.
var builtin = []Signature{
	// Languages
	{ID: "go", Category: types.CatLanguage, FilePatterns: []string{"**/*.go", "go.mod"}},
	{ID: "python", Category: types.CatLanguage, FilePatterns: []string{"**/*.py"}},
	{ID: "javascript", Category: types.CatLanguage, FilePatterns: []string{"**/*.js", "**/*.jsx"}},
	{ID: "typescript", Category: types.CatLanguage, FilePatterns: []string{"**/*.ts", "**/*.tsx", "tsconfig.json"}},
	{ID: "java", Category: types.CatLanguage, FilePatterns: []string{"**/*.java"}},
	{ID: "ruby", Category: types.CatLanguage, FilePatterns: []string{"**/*.rb", "Gemfile"}},
	{ID: "rust", Category: types.CatLanguage, FilePatterns: []string{"**/*.rs", "Cargo.toml"}},

	// Frameworks
	{ID: "gin", Category: types.CatFramework, FilePatterns: []string{"**/*.go", "go.mod"},
		ContentPatterns: []string{`github\.com/gin-gonic/gin`}},
	{ID: "echo", Category: types.CatFramework, FilePatterns: []string{"**/*.go", "go.mod"},
		ContentPatterns: []string{`github\.com/labstack/echo`}},
	{ID: "django", Category: types.CatFramework, FilePatterns: []string{"**/settings.py", "manage.py", "**/*.py", "requirements.txt"},
		ContentPatterns: []string{`\bdjango\b`, `DJANGO_SETTINGS_MODULE`}},
	{ID: "flask", Category: types.CatFramework, FilePatterns: []string{"**/*.py", "requirements.txt"},
		ContentPatterns: []string{`from flask import`, `(?i)^flask[=><]`}},
	{ID: "rails", Category: types.CatFramework, FilePatterns: []string{"Gemfile", "config/application.rb"},
		ContentPatterns: []string{`gem ['"]rails['"]`, `Rails::Application`}},
	{ID: "express", Category: types.CatFramework, FilePatterns: []string{"package.json", "**/*.js", "**/*.ts"},
		ContentPatterns: []string{`"express"\s*:`, `require\(['"]express['"]\)`, `from ['"]express['"]`}},
	{ID: "spring", Category: types.CatFramework, FilePatterns: []string{"pom.xml", "build.gradle", "**/*.java"},
		ContentPatterns: []string{`org\.springframework`, `@SpringBootApplication`}},
	{ID: "react", Category: types.CatFramework, FilePatterns: []string{"package.json", "**/*.jsx", "**/*.tsx"},
		ContentPatterns: []string{`"react"\s*:`, `from ['"]react['"]`}},

	// Databases
	{ID: "postgres", Category: types.CatDatabase, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.env", "**/*.go", "**/*.py", "**/*.rb", "**/*.js", "**/*.ts", "**/*.ini", "**/*.toml", "**/*.properties", "docker-compose*.yml"},
		ContentPatterns: []string{`postgres(ql)?://`, `(?i)adapter:\s*postgresql`, `github\.com/(lib/pq|jackc/pgx)`, `\bpsycopg2?\b`, `"pg"\s*:`}},
	{ID: "mysql", Category: types.CatDatabase, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.env", "**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.ini", "**/*.properties", "docker-compose*.yml"},
		ContentPatterns: []string{`mysql://`, `github\.com/go-sql-driver/mysql`, `(?i)adapter:\s*mysql2?`, `"mysql2?"\s*:`}},
	{ID: "sqlite", Category: types.CatDatabase, FilePatterns: []string{"**/*.go", "**/*.py", "**/*.yml", "**/*.rb"},
		ContentPatterns: []string{`(?i)sqlite3?`}},
	{ID: "mongodb", Category: types.CatDatabase, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.env", "**/*.go", "**/*.py", "**/*.js", "**/*.ts", "docker-compose*.yml"},
		ContentPatterns: []string{`mongodb(\+srv)?://`, `go\.mongodb\.org/mongo-driver`, `\bpymongo\b`, `"mongoose"\s*:`}},

	// ORMs
	{ID: "gorm", Category: types.CatORM, FilePatterns: []string{"**/*.go", "go.mod"},
		ContentPatterns: []string{`gorm\.io/gorm`, `github\.com/jinzhu/gorm`}},
	{ID: "sqlalchemy", Category: types.CatORM, FilePatterns: []string{"**/*.py", "requirements.txt", "pyproject.toml"},
		ContentPatterns: []string{`(?i)\bsqlalchemy\b`}},
	{ID: "prisma", Category: types.CatORM, FilePatterns: []string{"**/schema.prisma", "package.json"},
		ContentPatterns: []string{`"@prisma/client"\s*:`, `generator client`}},
	{ID: "hibernate", Category: types.CatORM, FilePatterns: []string{"pom.xml", "build.gradle", "**/*.java"},
		ContentPatterns: []string{`org\.hibernate`, `javax\.persistence`, `jakarta\.persistence`}},
	{ID: "activerecord", Category: types.CatORM, FilePatterns: []string{"**/*.rb", "config/database.yml"},
		ContentPatterns: []string{`ActiveRecord::Base`, `ApplicationRecord`},
		Disambiguator:   &Disambiguator{RequireFile: "Gemfile"}},

	// Caching
	{ID: "redis", Category: types.CatCaching, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.env", "**/*.go", "**/*.py", "**/*.js", "**/*.ts", "docker-compose*.yml"},
		ContentPatterns: []string{`redis://`, `github\.com/redis/go-redis`, `github\.com/go-redis/redis`, `(?i)\bredis\b`}},
	{ID: "memcached", Category: types.CatCaching, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.go", "**/*.py", "docker-compose*.yml"},
		ContentPatterns: []string{`(?i)\bmemcached?\b`}},

	// Messaging
	{ID: "kafka", Category: types.CatMessaging, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.go", "**/*.py", "**/*.java", "**/*.properties", "docker-compose*.yml"},
		ContentPatterns: []string{`(?i)\bkafka\b`, `github\.com/segmentio/kafka-go`, `github\.com/confluentinc/confluent-kafka-go`}},
	{ID: "rabbitmq", Category: types.CatMessaging, FilePatterns: []string{"**/*.yml", "**/*.yaml", "**/*.env", "**/*.go", "**/*.py", "docker-compose*.yml"},
		ContentPatterns: []string{`amqps?://`, `(?i)\brabbitmq\b`, `github\.com/rabbitmq/amqp091-go`}},
	{ID: "nats", Category: types.CatMessaging, FilePatterns: []string{"**/*.go", "**/*.yml", "**/*.yaml", "go.mod"},
		ContentPatterns: []string{`nats://`, `github\.com/nats-io/nats\.go`}},
	{ID: "sqs", Category: types.CatMessaging, FilePatterns: []string{"**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.tf", "**/*.yml"},
		ContentPatterns: []string{`sqs\.[a-z0-9-]+\.amazonaws\.com`, `aws_sqs_queue`, `(?i)\bsqs\b`}},

	// Auth
	{ID: "jwt", Category: types.CatAuth, FilePatterns: []string{"**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.java", "**/*.rb"},
		ContentPatterns: []string{`github\.com/golang-jwt/jwt`, `\bjsonwebtoken\b`, `\bpyjwt\b`, `(?i)bearer token`, `\bjwt\.`}},
	{ID: "oauth2", Category: types.CatAuth, FilePatterns: []string{"**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.yml", "**/*.yaml"},
		ContentPatterns: []string{`golang\.org/x/oauth2`, `(?i)oauth2?`, `client_secret`}},
	{ID: "passport", Category: types.CatAuth, FilePatterns: []string{"package.json", "**/*.js", "**/*.ts"},
		ContentPatterns: []string{`"passport"\s*:`, `require\(['"]passport['"]\)`}},
	{ID: "devise", Category: types.CatAuth, FilePatterns: []string{"Gemfile", "**/*.rb"},
		ContentPatterns: []string{`gem ['"]devise['"]`, `devise_for`}},

	// API styles
	{ID: "rest-openapi", Category: types.CatAPIStyle, FilePatterns: []string{"**/openapi.yaml", "**/openapi.yml", "**/openapi.json", "**/swagger.yaml", "**/swagger.yml", "**/swagger.json"},
		ContentPatterns: []string{`(?i)openapi`, `(?i)swagger`}},
	{ID: "graphql", Category: types.CatAPIStyle, FilePatterns: []string{"**/*.graphql", "**/*.gql", "package.json", "**/*.go"},
		ContentPatterns: []string{`(?i)graphql`, `type Query`}},
	{ID: "grpc", Category: types.CatAPIStyle, FilePatterns: []string{"**/*.proto", "**/*.go", "go.mod"},
		ContentPatterns: []string{`google\.golang\.org/grpc`, `service \w+ \{`, `\brpc \w+\(`}},

	// Testing
	{ID: "go-test", Category: types.CatTesting, FilePatterns: []string{"**/*_test.go"}},
	{ID: "pytest", Category: types.CatTesting, FilePatterns: []string{"**/test_*.py", "**/conftest.py", "pytest.ini", "pyproject.toml"},
		ContentPatterns: []string{`(?i)\bpytest\b`, `import pytest`}},
	{ID: "jest", Category: types.CatTesting, FilePatterns: []string{"package.json", "jest.config.js", "jest.config.ts", "**/*.test.js", "**/*.test.ts"},
		ContentPatterns: []string{`"jest"\s*:`, `(?m)^\s*(describe|it|test)\(`}},
	{ID: "junit", Category: types.CatTesting, FilePatterns: []string{"pom.xml", "build.gradle", "**/*Test.java"},
		ContentPatterns: []string{`org\.junit`, `@Test`}},
	{ID: "rspec", Category: types.CatTesting, FilePatterns: []string{"**/*_spec.rb", ".rspec", "Gemfile"},
		ContentPatterns: []string{`gem ['"]rspec['"]`, `RSpec\.describe`}},
	{ID: "testify", Category: types.CatTesting, FilePatterns: []string{"**/*_test.go", "go.mod"},
		ContentPatterns: []string{`github\.com/stretchr/testify`}},

	// Build tools
	{ID: "make", Category: types.CatBuildTool, FilePatterns: []string{"Makefile", "**/*.mk"}},
	{ID: "gradle", Category: types.CatBuildTool, FilePatterns: []string{"build.gradle", "build.gradle.kts", "settings.gradle"}},
	{ID: "maven", Category: types.CatBuildTool, FilePatterns: []string{"pom.xml"}},
	{ID: "npm", Category: types.CatBuildTool, FilePatterns: []string{"package.json", "package-lock.json"}},
	{ID: "cargo", Category: types.CatBuildTool, FilePatterns: []string{"Cargo.toml", "Cargo.lock"}},

	// Infrastructure as code
	{ID: "terraform", Category: types.CatIaC, FilePatterns: []string{"**/*.tf", "**/*.tfvars"}},
	{ID: "docker", Category: types.CatIaC, FilePatterns: []string{"Dockerfile", "**/Dockerfile", "**/Dockerfile.*", ".dockerignore"}},
	{ID: "docker-compose", Category: types.CatIaC, FilePatterns: []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml", "docker-compose.*.yml"},
		ContentPatterns: []string{`(?m)^services:`}},
	// Plain *.yaml is shared with docker-compose and CI configs; only count
	// a manifest as Kubernetes when it carries apiVersion.
	{ID: "kubernetes", Category: types.CatIaC, FilePatterns: []string{"**/*.yaml", "**/*.yml"},
		ContentPatterns: []string{`(?m)^apiVersion:`, `(?m)^kind:\s*(Deployment|Service|StatefulSet|ConfigMap|Ingress)`},
		Disambiguator:   &Disambiguator{RequireToken: "apiVersion:"}},
	{ID: "helm", Category: types.CatIaC, FilePatterns: []string{"**/Chart.yaml", "**/values.yaml"},
		ContentPatterns: []string{`(?m)^apiVersion: v[12]`, `(?m)^name:`},
		Disambiguator:   &Disambiguator{RequireFile: "**/Chart.yaml"}},

	// CI
	{ID: "github-actions", Category: types.CatCI, FilePatterns: []string{".github/workflows/*.yml", ".github/workflows/*.yaml"}},
	{ID: "gitlab-ci", Category: types.CatCI, FilePatterns: []string{".gitlab-ci.yml"}},
}
