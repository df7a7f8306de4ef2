package worker

// Log messages
const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgJobDropped      = "Job dropped, queue full"
)
