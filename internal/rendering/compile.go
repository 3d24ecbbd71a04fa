package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CompilationTimeout is the maximum time to wait for one pdflatex pass.
const CompilationTimeout = 30 * time.Second

// Compile writes texContent to a scratch directory, runs pdflatex over it
// twice so cross-references resolve, and moves the PDF into outputDir as
// baseName.pdf. The combined stdout and stderr of the passes is returned as
// logOutput either way.
func Compile(ctx context.Context, texContent, outputDir, baseName string) (pdfPath string, logOutput string, err error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return "", "", &CompilationError{
			Message: "pdflatex not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to create output directory: %s", outputDir),
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "cvforge-latex-*")
	if err != nil {
		return "", "", &CompilationError{
			Message: "failed to create temporary working directory",
			Cause:   err,
		}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, baseName+".tex")
	if err := os.WriteFile(texPath, []byte(texContent), 0o644); err != nil {
		return "", "", &CompilationError{
			Message: "failed to write LaTeX source",
			Cause:   err,
		}
	}

	// Two passes: the first collects references, the second resolves them.
	var runErr error
	for pass := 0; pass < 2; pass++ {
		passLog, err := runPdflatex(ctx, workDir, texPath)
		logOutput += passLog
		if err != nil {
			runErr = err
			break
		}
	}

	workPDF := filepath.Join(workDir, baseName+".pdf")
	if _, statErr := os.Stat(workPDF); os.IsNotExist(statErr) {
		return "", logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	pdfPath = filepath.Join(outputDir, baseName+".pdf")
	pdfContent, err := os.ReadFile(workPDF)
	if err != nil {
		return "", logOutput, &CompilationError{
			Message: "failed to read generated PDF",
			Cause:   err,
		}
	}
	if err := os.WriteFile(pdfPath, pdfContent, 0o644); err != nil {
		return "", logOutput, &CompilationError{
			Message: fmt.Sprintf("failed to write PDF to output directory: %s", outputDir),
			Cause:   err,
		}
	}

	// pdflatex can exit nonzero yet still emit a usable PDF.
	if runErr != nil {
		return pdfPath, logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	return pdfPath, logOutput, nil
}

func runPdflatex(ctx context.Context, workDir, texPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	// -interaction=nonstopmode prevents interactive prompts on errors.
	cmd := exec.CommandContext(ctx, "pdflatex",
		"-interaction=nonstopmode", "-output-directory", workDir, texPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String() + stderr.String(), err
}
