package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadDashboard Phase = iota
	LoadLookups
	DownloadFiles
)

func (p Phase) String() string {
	switch p {
	case LoadDashboard:
		return "load_dashboard"
	case LoadLookups:
		return "load_lookups"
	case DownloadFiles:
		return "download_files"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking; full or nil channels drop it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func sectionLoadedUpdate(phase Phase, step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d)", step, total, name, count),
	}
}

func sectionFailedUpdate(phase Phase, step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
		Data:    err,
	}
}

func downloadStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d files...", total),
	}
}

func downloadCompletedUpdate(step, total int, res DownloadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ⬇ %s (%d bytes)", step, total, res.Name, res.Bytes),
		Data:    res,
	}
}

func downloadFailedUpdate(step, total int, res DownloadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}
