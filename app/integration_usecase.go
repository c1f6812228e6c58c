package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ludo-technologies/refit/domain"
	"github.com/ludo-technologies/refit/internal/analyzer"
	"github.com/ludo-technologies/refit/service"
)

// stagedExtensions are the only source extensions phase 1 (Discover)
// admits from the staging directory (spec.md §4.12 step 1).
var stagedExtensions = map[string]bool{".ts": true, ".tsx": true, ".js": true, ".jsx": true}

// IntegrationUseCase orchestrates the full reference-file integration
// pipeline: discover, analyze, graph, order, a per-file
// integrate/verify/optionally-delete loop, and finalize (spec.md
// §4.12, C12). The loop is strictly sequential — no goroutines — per
// the single-threaded execution model of spec.md §5.
type IntegrationUseCase struct {
	fileHelper  *FileHelper
	resolverCfg analyzer.DependencyResolverConfig
	fs          *service.TransactionalFS
	progress    domain.ProgressManager
}

// NewIntegrationUseCase creates a use case with default dependencies.
func NewIntegrationUseCase() *IntegrationUseCase {
	uc, _ := NewIntegrationUseCaseBuilder().Build()
	return uc
}

// Execute runs the full six-phase pipeline against req.Config and
// returns the run's OrchestrationResult (spec.md §6, exported engine
// surface).
func (uc *IntegrationUseCase) Execute(ctx context.Context, req domain.IntegrationRequest) (*domain.OrchestrationResult, error) {
	cfg := req.Config
	if cfg == nil {
		return nil, domain.NewUnknownError("", "integration request missing configuration", nil)
	}

	// Phase 1: Discover.
	staged, err := uc.discover(cfg, req)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return &domain.OrchestrationResult{Success: true}, nil
	}

	// Phase 2: Analyze.
	files, err := uc.analyze(staged, cfg)
	if err != nil {
		return nil, err
	}

	// updateImports pre-pass (SPEC_FULL.md open question 1): rewrite
	// every staged file's relative specifiers before anything compares
	// or merges its content.
	uc.rewriteImports(files, cfg)

	// Phase 3: Graph.
	graph := analyzer.BuildGraph(files)
	var runErrs service.RunErrors
	cycles := graph.DetectCycles()
	for _, c := range cycles {
		runErrs.Add("", domain.NewDependencyError("", fmt.Sprintf("circular dependency: %s", c.Description), nil))
	}
	if len(cycles) > 0 && cfg.StopOnError {
		return &domain.OrchestrationResult{
			Success:    false,
			TotalFiles: len(files),
			Errors:     runErrs.Strings(),
		}, nil
	}

	// Phase 4: Order.
	order, err := graph.TopologicalSort()
	if err != nil {
		return &domain.OrchestrationResult{
			Success:    false,
			TotalFiles: len(files),
			Errors:     append(runErrs.Strings(), err.Error()),
		}, nil
	}

	byID := make(map[string]*domain.SourceFile, len(files))
	for _, sf := range files {
		byID[filepath.Clean(sf.Path)] = sf
	}

	store := service.NewStateStore(cfg.StateStore.Path, len(files))
	var gate *service.BuildGate
	if cfg.VerifyAfterEach {
		gate = service.NewBuildGate(cfg.BuildGate)
	}
	snapshots := make(map[string][]byte)

	result := &domain.OrchestrationResult{TotalFiles: len(files)}
	task := uc.progress.StartTask("integrating reference files", len(order))
	defer uc.progress.Close()

	// Phase 5: per-file loop, in topological order.
	for _, id := range order {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, runErrs.Strings()...)
			return result, ctx.Err()
		default:
		}

		sf := byID[id]
		if sf == nil {
			task.Increment(1)
			continue
		}
		task.Describe(sf.Path)

		if store.State().IsCompleted(sf.Path) {
			task.Increment(1)
			continue
		}
		_ = store.MarkCurrent(sf.Path)

		fr, fe := uc.integrateOne(sf, cfg, store, gate, snapshots)
		result.PerFileResults = append(result.PerFileResults, fr)

		switch {
		case fr.Success:
			result.CompletedFiles++
			_ = store.MarkCompleted(sf.Path)
		case fe == nil:
			result.SkippedFiles++
			_ = store.MarkSkipped(sf.Path, fr.Error)
		default:
			result.FailedFiles++
			_ = store.MarkFailed(sf.Path, fr.Error)
			runErrs.Add(sf.Path, fe)

			decision := service.Decide(fe, cfg.StopOnError)
			if decision.RequireRollback {
				rb := uc.fs.Rollback(store.State().Backups, snapshots)
				result.Errors = append(result.Errors, runErrs.Strings()...)
				result.Errors = append(result.Errors, fmt.Sprintf(
					"rolled back %d file(s), %d failure(s) during rollback",
					len(rb.RestoredFiles)+len(rb.RestoredReferences), len(rb.Failures)))
				result.Success = false
				task.Complete()
				return result, nil
			}
			if decision.HaltRun {
				task.Increment(1)
				result.Errors = append(result.Errors, runErrs.Strings()...)
				result.Success = false
				return result, nil
			}
		}
		task.Increment(1)
	}

	// Phase 6: Finalize.
	if cfg.DeleteAfterSuccess {
		uc.cleanupStagingDir(cfg.SourceDirectory, staged)
	}
	_ = store.MarkComplete()

	result.Errors = append(result.Errors, runErrs.Strings()...)
	result.Success = result.FailedFiles == 0 && len(cycles) == 0
	task.Complete()
	return result, nil
}

// Status loads the persisted state document at path without driving
// the pipeline — the secondary query surface spec.md §6 names.
func (uc *IntegrationUseCase) Status(path string) *domain.IntegrationState {
	return service.NewStateStore(path, 0).State()
}

// Graph runs phases 1–4 (discover, analyze, build, order) without
// touching the destination tree, for `refit graph`'s read-only
// diagnostic view over the same domain.DependencyGraph phase 3 builds.
func (uc *IntegrationUseCase) Graph(req domain.IntegrationRequest) (*domain.GraphReport, error) {
	cfg := req.Config
	if cfg == nil {
		return nil, domain.NewUnknownError("", "integration request missing configuration", nil)
	}

	staged, err := uc.discover(cfg, req)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return &domain.GraphReport{Graph: domain.NewDependencyGraph(), Sortable: true}, nil
	}

	files, err := uc.analyze(staged, cfg)
	if err != nil {
		return nil, err
	}
	uc.rewriteImports(files, cfg)

	graph := analyzer.BuildGraph(files)
	cycles := graph.DetectCycles()

	report := &domain.GraphReport{Graph: graph, Cycles: cycles}
	if order, err := graph.TopologicalSort(); err == nil {
		report.Order = order
		report.Sortable = true
	}
	return report, nil
}

// discover enumerates cfg.SourceDirectory non-recursively, admitting
// only regular files with a source extension in stagedExtensions
// (spec.md §4.12 step 1). A missing staging directory yields a clean
// empty result rather than an error: nothing to integrate is success.
func (uc *IntegrationUseCase) discover(cfg *domain.IntegrationConfig, req domain.IntegrationRequest) ([]string, error) {
	entries, err := os.ReadDir(cfg.SourceDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.NewFilesystemError(cfg.SourceDirectory, "failed to read staging directory", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		if !stagedExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		if matchesAny(entry.Name(), req.ExcludePatterns) {
			continue
		}
		if len(req.IncludePatterns) > 0 && !matchesAny(entry.Name(), req.IncludePatterns) {
			continue
		}
		files = append(files, filepath.Join(cfg.SourceDirectory, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// matchesAny reports whether name matches one of patterns. Discovery
// reads a single directory level, so a leading "**/" (any directory
// prefix) is dropped before the rest is matched against name.
func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		for len(p) > 3 && p[:3] == "**/" {
			p = p[3:]
		}
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// analyze runs C1 (syntax), C2 (classification), C3 (target
// resolution) and C4 (dependency resolution) over every discovered
// path (spec.md §4.12 step 2).
func (uc *IntegrationUseCase) analyze(paths []string, cfg *domain.IntegrationConfig) ([]*domain.SourceFile, error) {
	resolver := analyzer.NewDependencyResolver(uc.resolverCfg)
	files := make([]*domain.SourceFile, 0, len(paths))

	for _, p := range paths {
		content, err := uc.fileHelper.ReadFile(p)
		if err != nil {
			return nil, domain.NewFilesystemError(p, "failed to read staged file", err)
		}

		sf := analyzer.AnalyzeSyntax(p, content)
		sf.Role = analyzer.ClassifyRole(sf)

		destDir := analyzer.ResolveTarget(analyzer.Role{Role: sf.Role, Stem: sf.Stem()})
		sf.Destination = analyzer.DestinationPath(cfg.TargetDirectory, destDir, filepath.Base(p))
		if sf.Destination != "" {
			exists, _ := uc.fileHelper.FileExists(sf.Destination)
			sf.DestExists = exists
		}

		resolver.Resolve(sf)
		files = append(files, sf)
	}
	return files, nil
}

// rewriteImports applies the updateImports pre-pass: every staged
// file's relative import specifiers are rewritten to stay correct
// relative to its resolved destination directory, before any
// comparison or merge sees the content.
func (uc *IntegrationUseCase) rewriteImports(files []*domain.SourceFile, cfg *domain.IntegrationConfig) {
	if !cfg.MergeStrategy.UpdateImports {
		return
	}
	for _, sf := range files {
		if sf.Destination == "" {
			continue
		}
		oldDir := filepath.Dir(sf.Path)
		newDir := filepath.Dir(sf.Destination)
		sf.Content = analyzer.RewriteRelativeImports(sf.Content, oldDir, newDir)
	}
}

// integrateOne drives phase 5's steps b–g for a single staged file,
// returning the per-file IntegrationResult and, on failure, the
// classified *domain.EngineError the caller uses to decide recovery.
func (uc *IntegrationUseCase) integrateOne(
	sf *domain.SourceFile,
	cfg *domain.IntegrationConfig,
	store *service.StateStore,
	gate *service.BuildGate,
	snapshots map[string][]byte,
) (domain.IntegrationResult, *domain.EngineError) {
	fr := domain.IntegrationResult{Source: sf.Path, Target: sf.Destination}

	if sf.Destination == "" {
		fr.Action = domain.ActionSkipped
		fr.Error = "no role-appropriate destination directory could be resolved"
		return fr, nil
	}

	if sf.DestExists && cfg.CreateBackups {
		rec, err := uc.fs.Backup(sf.Destination)
		if err != nil {
			fe := classifyFSError(err, sf.Destination)
			fr.Error = fe.Error()
			return fr, fe
		}
		if err := store.AppendBackup(*rec); err != nil {
			fe := classifyFSError(err, cfg.StateStore.Path)
			fr.Error = fe.Error()
			return fr, fe
		}
	}

	if !sf.DestExists {
		if err := uc.fs.Write(sf.Destination, sf.Content); err != nil {
			fe := classifyFSError(err, sf.Destination)
			fr.Error = fe.Error()
			return fr, fe
		}
		fr.Action = domain.ActionCreated
	} else {
		existing, err := uc.fileHelper.ReadFile(sf.Destination)
		if err != nil {
			fe := domain.NewFilesystemError(sf.Destination, "failed to read existing destination file", err)
			fr.Error = fe.Error()
			return fr, fe
		}

		existingSF := analyzer.AnalyzeSyntax(sf.Destination, existing)
		report := service.CompareExports(sf.Content, existing, sf.Exports, existingSF.Exports)
		merged := service.Merge(sf.Content, existing, report, cfg.MergeStrategy)

		if merged.Refused {
			fr.Action = domain.ActionSkipped
			fr.Conflicts = merged.Conflicts
			fr.Error = "merge refused: conflicting exports require user input"
			return fr, nil
		}

		if err := uc.fs.Write(sf.Destination, merged.Content); err != nil {
			fe := classifyFSError(err, sf.Destination)
			fr.Error = fe.Error()
			return fr, fe
		}
		fr.Action = domain.ActionMerged
		fr.Conflicts = merged.Conflicts
	}

	if cfg.VerifyAfterEach && gate != nil {
		res, err := gate.Run()
		if err != nil {
			fe := domain.NewUnknownError(sf.Destination, "failed to invoke build gate", err)
			fr.Error = fe.Error()
			return fr, fe
		}
		if !res.Success {
			fe := buildErrorFrom(sf.Destination, res)
			fr.Error = fe.Error()
			fr.ActionsLog = append(fr.ActionsLog, res.Summary)
			return fr, fe
		}
		fr.ActionsLog = append(fr.ActionsLog, res.Summary)
	}

	if cfg.DeleteAfterSuccess {
		if snap, err := uc.fs.Snapshot([]string{sf.Path}); err == nil {
			for p, c := range snap {
				snapshots[p] = c
			}
		}
		if err := uc.fs.Delete(sf.Path); err != nil {
			fe := classifyFSError(err, sf.Path)
			fr.Error = fe.Error()
			return fr, fe
		}
	}

	fr.Success = true
	return fr, nil
}

// cleanupStagingDir removes cfg's staging directory only when every
// originally-discovered file is gone (spec.md §4.12 step 6).
func (uc *IntegrationUseCase) cleanupStagingDir(dir string, staged []string) {
	for _, p := range staged {
		if exists, _ := uc.fileHelper.FileExists(p); exists {
			return
		}
	}
	_ = uc.fs.DeleteIfEmpty(dir)
}

// classifyFSError recovers the *domain.EngineError a TransactionalFS
// primitive already constructed, falling back to message-based
// classification for anything unexpected.
func classifyFSError(err error, path string) *domain.EngineError {
	if fe, ok := err.(*domain.EngineError); ok {
		return fe
	}
	return domain.ClassifyMessage(path, err.Error())
}

// buildErrorFrom converts a failed BuildGateResult into the
// EngineError C10's recovery table classifies on.
func buildErrorFrom(path string, res *service.BuildGateResult) *domain.EngineError {
	code := ""
	if len(res.Diagnostics) > 0 {
		code = res.Diagnostics[0].Code
	}
	return domain.NewBuildError(path, code, res.Summary, nil)
}

// IntegrationUseCaseBuilder provides a builder pattern for creating
// IntegrationUseCase, matching the teacher's use-case construction
// idiom.
type IntegrationUseCaseBuilder struct {
	fileHelper  *FileHelper
	resolverCfg analyzer.DependencyResolverConfig
	progress    domain.ProgressManager
}

// NewIntegrationUseCaseBuilder creates a new builder.
func NewIntegrationUseCaseBuilder() *IntegrationUseCaseBuilder {
	return &IntegrationUseCaseBuilder{}
}

// WithFileHelper sets the file helper.
func (b *IntegrationUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *IntegrationUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// WithPackageCacheDir sets the external-dependency resolution root
// (typically a node_modules directory).
func (b *IntegrationUseCaseBuilder) WithPackageCacheDir(dir string) *IntegrationUseCaseBuilder {
	b.resolverCfg.PackageCacheDir = dir
	return b
}

// WithProgressManager sets the progress reporter.
func (b *IntegrationUseCaseBuilder) WithProgressManager(pm domain.ProgressManager) *IntegrationUseCaseBuilder {
	b.progress = pm
	return b
}

// Build creates the IntegrationUseCase with the configured
// dependencies, filling in defaults for anything unset.
func (b *IntegrationUseCaseBuilder) Build() (*IntegrationUseCase, error) {
	uc := &IntegrationUseCase{
		fileHelper:  b.fileHelper,
		resolverCfg: b.resolverCfg,
		fs:          service.NewTransactionalFS(),
		progress:    b.progress,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	if uc.progress == nil {
		uc.progress = service.NewProgressManager(false)
	}
	return uc, nil
}
