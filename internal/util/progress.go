package util

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobGenerating JobStatus = "generating"
	JobPersisting JobStatus = "persisting"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

const jobProgressStepCount int32 = 3

// Terminal reports whether no further transitions follow s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobProgress is the client-facing view of a job.
type JobProgress struct {
	Status     JobStatus `json:"status"`
	Percentage int32     `json:"percentage"`
	Error      string    `json:"error,omitempty"`
}

// BuildJobProgress maps a status to a coarse completion percentage. A failed
// job keeps the percentage of the step it failed in.
func BuildJobProgress(status JobStatus, failedAt JobStatus, errMsg string) JobProgress {
	progress := JobProgress{Status: status}
	switch status {
	case JobPending:
		progress.Percentage = 0
	case JobGenerating:
		progress.Percentage = 100 / jobProgressStepCount
	case JobPersisting:
		progress.Percentage = 2 * 100 / jobProgressStepCount
	case JobCompleted:
		progress.Percentage = 100
	case JobFailed:
		if !failedAt.Terminal() {
			progress.Percentage = BuildJobProgress(failedAt, "", "").Percentage
		}
		progress.Error = errMsg
	}
	return progress
}
