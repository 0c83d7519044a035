package enums

type QueueMode string

const (
	QueueModeDepth   QueueMode = "depth"
	QueueModeBreadth QueueMode = "breadth"
)

type OutcomeStatus string

const (
	OutcomeStatusOK     OutcomeStatus = "ok"
	OutcomeStatusSignal OutcomeStatus = "signal"
	OutcomeStatusError  OutcomeStatus = "error"
)

type DownloadResult string

const (
	DownloadResultDownloaded DownloadResult = "downloaded"
	DownloadResultSkipped    DownloadResult = "skipped"
	DownloadResultFailed     DownloadResult = "failed"
)
