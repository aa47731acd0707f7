package fs

// BuiltinExcludes contains the default patterns layered into a remote
// repository's info/exclude file by internal/remoterepo, unless the
// caller opts out (Options.SkipBuiltinExcludes). These are ordinary
// gitignore glob patterns (git is the only consumer — there is no
// rsync/tar transport in this system), targeting common build
// artifacts, dependency caches, and sensitive files across major
// development ecosystems.
var BuiltinExcludes = []string{
	// === Package managers & dependencies ===
	"node_modules/",     // Node.js
	"vendor/",           // Go, PHP, Ruby
	".pnpm-store/",      // pnpm
	"bower_components/", // Bower (legacy)

	// === Build outputs ===
	"target/",      // Rust, Scala, Java (Maven)
	"dist/",        // Generic build output
	"build/",       // Generic build output
	"out/",         // Generic build output
	"bin/",         // Go, generic binaries
	"obj/",         // .NET, C++
	"_build/",      // Elixir, Erlang
	".output/",     // Nuxt.js
	".nuxt/",       // Nuxt.js
	".next/",       // Next.js
	".svelte-kit/", // SvelteKit
	".vercel/",     // Vercel
	".netlify/",    // Netlify

	// === Test & coverage ===
	"coverage/",    // Generic coverage reports
	".nyc_output/", // NYC (Istanbul)
	"htmlcov/",     // Python coverage.py
	".tox/",        // Python tox
	".nox/",        // Python nox

	// === Caches ===
	".cache/",         // Generic cache
	"__pycache__/",    // Python bytecode
	".pytest_cache/",  // pytest
	".mypy_cache/",    // mypy
	".ruff_cache/",    // ruff
	"*.pyc",           // Python compiled
	".turbo/",         // Turborepo
	".parcel-cache/",  // Parcel
	".webpack/",       // Webpack
	".eslintcache",    // ESLint
	".stylelintcache", // Stylelint

	// === Virtual environments ===
	".venv/",       // Python venv
	"venv/",        // Python venv (alternate)
	".virtualenv/", // virtualenv

	// === IDE & editors ===
	".idea/",     // JetBrains IDEs
	"*.swp",      // Vim swap
	"*.swo",      // Vim swap
	"*~",         // Emacs backup
	".project",   // Eclipse
	".classpath", // Eclipse
	".settings/", // Eclipse

	// === OS artifacts ===
	".DS_Store",   // macOS
	"Thumbs.db",   // Windows
	"Desktop.ini", // Windows

	// === Logs ===
	"*.log",           // Log files
	"logs/",           // Log directories
	"npm-debug.log*",  // npm
	"yarn-debug.log*", // Yarn
	"yarn-error.log*", // Yarn
	"pnpm-debug.log*", // pnpm

	// === Secrets & sensitive ===
	".env",     // Environment files
	".env.*",   // Environment variants
	"secrets/", // Secrets directory
	"*.pem",    // Certificates
	"*.key",    // Private keys
	".secret*", // Secret files

	// === Terraform & IaC ===
	".terraform/", // Terraform providers
	"*.tfstate",   // Terraform state
	"*.tfstate.*", // Terraform state backups
}
