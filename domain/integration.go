package domain

import (
	"fmt"
	"math"
)

// Role is the classifier's verdict for a staged source file.
type Role string

const (
	RoleComponent Role = "component"
	RoleHook      Role = "hook"
	RoleService   Role = "service"
	RoleUtility   Role = "utility"
	RoleTypeDefs  Role = "typedefs"
	RoleUnknown   Role = "unknown"
)

// ExportKind narrows an Export's declaration shape for comparison and
// merge purposes.
type ExportKind string

const (
	ExportKindFunction  ExportKind = "function"
	ExportKindClass     ExportKind = "class"
	ExportKindConst     ExportKind = "const"
	ExportKindType      ExportKind = "type"
	ExportKindInterface ExportKind = "interface"
)

// NamedExport is one exported symbol from a SourceFile: a name, a kind,
// and whether it is the file's default export.
type NamedExport struct {
	Name      string     `json:"name"`
	Kind      ExportKind `json:"kind"`
	IsDefault bool       `json:"is_default"`
}

// SourceFile is a single file discovered in the staging directory, plus
// everything the Syntax Analyzer derived from it.
type SourceFile struct {
	Path       string        `json:"path"`
	Extension  string        `json:"extension"`
	Content    []byte        `json:"-"`
	Imports    []string      `json:"imports"`
	Exports    []NamedExport `json:"exports"`
	HasJSX     bool          `json:"has_jsx"`
	InvalidAST bool          `json:"invalid_ast"`

	Role        Role         `json:"role"`
	Destination string       `json:"destination,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	DestExists  bool         `json:"dest_exists"`
}

// Stem returns the filename without its extension.
func (s *SourceFile) Stem() string {
	base := s.Path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// HasFunctionLikeExport reports whether any export is function, class or
// const (the "function/class/const" family used by classification rules).
func (s *SourceFile) HasFunctionLikeExport() bool {
	for _, e := range s.Exports {
		if e.Kind == ExportKindFunction || e.Kind == ExportKindClass || e.Kind == ExportKindConst {
			return true
		}
	}
	return false
}

// AllExportsAreTypes reports whether every export (and there is at least
// one) is a type or interface declaration.
func (s *SourceFile) AllExportsAreTypes() bool {
	if len(s.Exports) == 0 {
		return false
	}
	for _, e := range s.Exports {
		if e.Kind != ExportKindType && e.Kind != ExportKindInterface {
			return false
		}
	}
	return true
}

// Dependency is a resolved or unresolved import specifier relationship
// for a staged file.
type Dependency struct {
	Specifier  string `json:"specifier"`
	External   bool   `json:"external"`
	Resolved   bool   `json:"resolved"`
	SourceFile string `json:"source_file,omitempty"`
}

// ConflictKind enumerates the ways a staged export can collide with an
// existing destination file's export.
type ConflictKind string

const (
	ConflictDuplicateExport       ConflictKind = "duplicate_export"
	ConflictIncompatibleKind      ConflictKind = "incompatible_kind"
	ConflictDefaultExportCollision ConflictKind = "default_export_collision"
)

// Conflict records one colliding export name between a staged and an
// existing file, carrying both raw code slices as owned strings.
type Conflict struct {
	Kind         ConflictKind `json:"kind"`
	Name         string       `json:"name"`
	StagedCode   string       `json:"staged_code"`
	ExistingCode string       `json:"existing_code"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %q", c.Kind, c.Name)
}

// IntegrationStatus is the per-file state-machine value.
type IntegrationStatus string

const (
	StatusPending    IntegrationStatus = "pending"
	StatusInProgress IntegrationStatus = "in_progress"
	StatusCompleted  IntegrationStatus = "completed"
	StatusFailed     IntegrationStatus = "failed"
	StatusSkipped    IntegrationStatus = "skipped"
)

// BackupRecord names an on-disk backup copy of a file that existed
// before the engine overwrote or removed it.
type BackupRecord struct {
	ID           string `json:"id"`
	OriginalPath string `json:"original_path"`
	BackupPath   string `json:"backup_path"`
	Timestamp    int64  `json:"timestamp"`
}

// IntegrationAction is the outcome of integrating one staged file.
type IntegrationAction string

const (
	ActionCreated IntegrationAction = "created"
	ActionMerged  IntegrationAction = "merged"
	ActionSkipped IntegrationAction = "skipped"
)

// IntegrationResult is the per-file outcome recorded in the
// OrchestrationResult's PerFileResults slice.
type IntegrationResult struct {
	Success    bool              `json:"success"`
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Action     IntegrationAction `json:"action"`
	Conflicts  []Conflict        `json:"conflicts,omitempty"`
	Error      string            `json:"error,omitempty"`
	ActionsLog []string          `json:"actions_log,omitempty"`
}

// MergePolicy configures how the Merger and Orchestrator treat an
// existing destination file.
type MergePolicy struct {
	PreserveExisting bool `json:"preserveExisting" mapstructure:"preserveExisting" yaml:"preserveExisting"`
	AddNewExports    bool `json:"addNewExports" mapstructure:"addNewExports" yaml:"addNewExports"`
	UpdateImports    bool `json:"updateImports" mapstructure:"updateImports" yaml:"updateImports"`
	RequestUserInput bool `json:"requestUserInput" mapstructure:"requestUserInput" yaml:"requestUserInput"`
}

// DefaultMergePolicy mirrors the teacher's DefaultConfig habit of giving
// every nested section a conservative, additive-only default.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{
		PreserveExisting: true,
		AddNewExports:    true,
		UpdateImports:    true,
		RequestUserInput: true,
	}
}

// IntegrationConfig is the engine's full external configuration surface
// (spec.md §6), nested the way the teacher's Config sections are.
type IntegrationConfig struct {
	SourceDirectory    string      `json:"sourceDirectory" mapstructure:"sourceDirectory" yaml:"sourceDirectory"`
	TargetDirectory    string      `json:"targetDirectory" mapstructure:"targetDirectory" yaml:"targetDirectory"`
	MergeStrategy      MergePolicy `json:"mergeStrategy" mapstructure:"mergeStrategy" yaml:"mergeStrategy"`
	VerifyAfterEach    bool        `json:"verifyAfterEach" mapstructure:"verifyAfterEach" yaml:"verifyAfterEach"`
	DeleteAfterSuccess bool        `json:"deleteAfterSuccess" mapstructure:"deleteAfterSuccess" yaml:"deleteAfterSuccess"`
	CreateBackups      bool        `json:"createBackups" mapstructure:"createBackups" yaml:"createBackups"`
	StopOnError        bool        `json:"stopOnError" mapstructure:"stopOnError" yaml:"stopOnError"`
	BuildGate          BuildGateConfig   `json:"buildGate" mapstructure:"buildGate" yaml:"buildGate"`
	StateStore         StateStoreConfig  `json:"stateStore" mapstructure:"stateStore" yaml:"stateStore"`
}

// BuildGateConfig names the external type-check subprocess contract.
type BuildGateConfig struct {
	Command string   `json:"command" mapstructure:"command" yaml:"command"`
	Args    []string `json:"args" mapstructure:"args" yaml:"args"`
	Dir     string   `json:"dir,omitempty" mapstructure:"dir" yaml:"dir,omitempty"`
}

// StateStoreConfig names where C11 persists its JSON document.
type StateStoreConfig struct {
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// DefaultIntegrationConfig returns the conservative defaults: additive
// merges, backups on, build-gating on, stop-on-error off (per-file
// failures are isolated unless the operator asks otherwise).
func DefaultIntegrationConfig() *IntegrationConfig {
	return &IntegrationConfig{
		SourceDirectory:    "staging",
		TargetDirectory:    "src",
		MergeStrategy:      DefaultMergePolicy(),
		VerifyAfterEach:    true,
		DeleteAfterSuccess: false,
		CreateBackups:      true,
		StopOnError:        false,
		BuildGate: BuildGateConfig{
			Command: "npx",
			Args:    []string{"tsc", "--noEmit"},
		},
		StateStore: StateStoreConfig{
			Path: ".refit-state.json",
		},
	}
}

// OrchestrationResult is the engine's single exported-surface return
// value (spec.md §6).
type OrchestrationResult struct {
	Success        bool                `json:"success"`
	TotalFiles     int                 `json:"total_files"`
	CompletedFiles int                 `json:"completed_files"`
	FailedFiles    int                 `json:"failed_files"`
	SkippedFiles   int                 `json:"skipped_files"`
	PerFileResults []IntegrationResult `json:"per_file_results"`
	Errors         []string            `json:"errors,omitempty"`
}

// IntegrationRequest drives a single Orchestrator.Execute invocation.
// IncludePatterns/ExcludePatterns filter staged-file discovery: each is
// matched with filepath.Match against a staged file's base name, after
// any leading "**/" is dropped. They
// live here rather than on IntegrationConfig because they come from the
// caller's scan configuration, while spec.md §4.12 phase 1 always scans
// the staging directory non-recursively.
type IntegrationRequest struct {
	Config          *IntegrationConfig
	IncludePatterns []string
	ExcludePatterns []string
}

// KV is a single key-value pair, used in place of a map wherever a
// persisted field needs reproducible, sorted-by-key serialization
// (spec.md §9, "map-valued fields serialized as sorted key-value
// sequences for reproducibility").
type KV struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// IntegrationState is C11's persisted document: everything the
// Orchestrator needs to resume a run across process invocations
// (spec.md §3/§4.11).
type IntegrationState struct {
	RunID     string  `json:"run_id"`
	Total     int     `json:"total"`
	Processed int     `json:"processed"`
	Completed []string `json:"completed"`
	Failed    []KV    `json:"failed"`
	Skipped   []KV    `json:"skipped"`
	Current   string  `json:"current,omitempty"`
	Backups   []BackupRecord `json:"backups,omitempty"`
	StartTime int64   `json:"start_time"`
	EndTime   int64   `json:"end_time,omitempty"`
}

// IsCompleted reports whether path is already recorded as completed.
func (s *IntegrationState) IsCompleted(path string) bool {
	for _, p := range s.Completed {
		if p == path {
			return true
		}
	}
	return false
}

// ProgressPercent is processed/total rounded to the nearest integer
// percentage; an empty run (total 0) is reported as 100% (spec.md
// §4.11).
func (s *IntegrationState) ProgressPercent() int {
	if s.Total == 0 {
		return 100
	}
	return int(math.Round(float64(s.Processed) * 100.0 / float64(s.Total)))
}

// Summary renders the one-line textual status `refit status` prints.
func (s *IntegrationState) Summary() string {
	return fmt.Sprintf("%d%% complete (%d/%d processed, %d completed, %d failed, %d skipped)",
		s.ProgressPercent(), s.Processed, s.Total, len(s.Completed), len(s.Failed), len(s.Skipped))
}
