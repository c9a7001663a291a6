package core

import "path/filepath"

// ResolvePathFromWorkflow resolves a path from a workflow file.
// If the provided path is already absolute, it's returned as is.
// If it's relative, it's joined with the workflowDir.
func ResolvePathFromWorkflow(workflowDir, pathFromYAML string) string {
	if pathFromYAML == "" || filepath.IsAbs(pathFromYAML) {
		return pathFromYAML
	}
	return filepath.Join(workflowDir, pathFromYAML)
}
