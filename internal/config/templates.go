package config

// ProjectType represents the type of JavaScript/TypeScript project being
// integrated into, used only to pick sensible scan include/exclude
// patterns for `refit init`.
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeVue         ProjectType = "vue"
	ProjectTypeNodeBackend ProjectType = "node"
)

// Strictness represents how cautiously `refit init` configures the
// merge policy: how much the engine is trusted to act without asking.
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds scan presets for different project types
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// MergePreset holds merge-policy defaults for a strictness level
type MergePreset struct {
	RequestUserInput bool
	StopOnError      bool
	VerifyAfterEach  bool
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.jsx",
				"**/*.tsx",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/*.min.js",
			},
		},
		ProjectTypeReact: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.jsx",
				"**/*.tsx",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/.next/**",
				"**/coverage/**",
				"**/*.min.js",
			},
		},
		ProjectTypeVue: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.vue",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/.nuxt/**",
				"**/*.min.js",
			},
		},
		ProjectTypeNodeBackend: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.mjs",
				"**/*.cjs",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/test/**",
				"**/__tests__/**",
			},
		},
	}
}

// GetMergePresets returns merge-policy defaults for each strictness level
func GetMergePresets() map[Strictness]MergePreset {
	return map[Strictness]MergePreset{
		StrictnessRelaxed: {
			RequestUserInput: false,
			StopOnError:      false,
			VerifyAfterEach:  false,
		},
		StrictnessStandard: {
			RequestUserInput: true,
			StopOnError:      false,
			VerifyAfterEach:  true,
		},
		StrictnessStrict: {
			RequestUserInput: true,
			StopOnError:      true,
			VerifyAfterEach:  true,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as JSONC
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	projectPresets := GetProjectPresets()
	mergePresets := GetMergePresets()

	preset := projectPresets[projectType]
	merge := mergePresets[strictness]

	includePatterns := formatJSONArray(preset.IncludePatterns)
	excludePatterns := formatJSONArray(preset.ExcludePatterns)

	return `{
  // refit Configuration
  // Documentation: https://github.com/ludo-technologies/refit

  // ============================================================================
  // INTEGRATION
  // ============================================================================
  // Controls how staged reference files are merged into the project
  "integration": {
    // Directory of untyped reference files to integrate
    "sourceDirectory": "staging",

    // Canonical project source directory files are merged into
    "targetDirectory": "src",

    "mergeStrategy": {
      // Keep an existing destination file's body when merging
      "preserveExisting": true,

      // Append exports the staged file has that the destination lacks
      "addNewExports": true,

      // Rewrite staged files' relative imports to their resolved destinations
      "updateImports": true,

      // Ask interactively before resolving a conflicting export
      "requestUserInput": ` + formatBool(merge.RequestUserInput) + `
    },

    // Run the build gate after each file is integrated
    "verifyAfterEach": ` + formatBool(merge.VerifyAfterEach) + `,

    // Delete a staged file once it has been successfully integrated
    "deleteAfterSuccess": false,

    // Snapshot any destination file before overwriting or removing it
    "createBackups": true,

    // Stop the run on the first per-file failure instead of continuing
    "stopOnError": ` + formatBool(merge.StopOnError) + `,

    "buildGate": {
      // Type-check command invoked to verify a merge didn't break the build
      "command": "npx",
      "args": ["tsc", "--noEmit"]
    },

    "stateStore": {
      // Where the resumable run state is persisted
      "path": ".refit-state.json"
    }
  },

  // ============================================================================
  // SCAN
  // ============================================================================
  // Controls which staged files the engine considers
  "scan": {
    // File patterns to include (glob patterns)
    "includePatterns": ` + includePatterns + `,

    // File patterns to exclude (glob patterns)
    "excludePatterns": ` + excludePatterns + `,

    // Not read by any command: the staging directory is always
    // scanned one level deep
    "recursive": true
  }
}
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `{
  // refit Configuration (minimal)
  // See full options: https://github.com/ludo-technologies/refit

  "integration": {
    "sourceDirectory": "staging",
    "targetDirectory": "src"
  },

  "scan": {
    "includePatterns": ["**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx"],
    "excludePatterns": ["**/node_modules/**", "**/dist/**"]
  }
}
`
}

// formatJSONArray formats a string slice as a JSON array with proper indentation
func formatJSONArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	result := "[\n"
	for i, item := range items {
		result += `      "` + item + `"`
		if i < len(items)-1 {
			result += ","
		}
		result += "\n"
	}
	result += "    ]"
	return result
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
