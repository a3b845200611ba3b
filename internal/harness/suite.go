package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult summarizes a run over several scenario files.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure records one failed or unloadable scenario.
type SuiteFailure struct {
	Path     string   `json:"path"`
	Scenario string   `json:"scenario,omitempty"`
	Errors   []string `json:"errors"`
}

// FindScenarios returns the .yaml and .yml files under path, sorted. A
// file path is returned as is.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// RunSuite loads and runs every scenario in paths. A scenario that cannot
// be loaded or run counts as a failure; the suite never stops early.
func RunSuite(paths []string) *SuiteResult {
	res := &SuiteResult{Total: len(paths)}
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			res.fail(path, "", err.Error())
			continue
		}
		result, err := Run(scenario)
		if err != nil {
			res.fail(path, scenario.Name, err.Error())
			continue
		}
		if !result.Pass {
			res.fail(path, scenario.Name, result.Errors...)
			continue
		}
		res.Passed++
	}
	return res
}

func (r *SuiteResult) fail(path, name string, errs ...string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{Path: path, Scenario: name, Errors: errs})
}

// Summary is a one-line description of the suite outcome.
func (r *SuiteResult) Summary() string {
	return fmt.Sprintf("%d scenarios: %d passed, %d failed", r.Total, r.Passed, r.Failed)
}
