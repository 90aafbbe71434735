package putio

import "strings"

// MP4Status is the server-reported state of an MP4 conversion.
type MP4Status string

const (
	MP4Unknown      MP4Status = "UNKNOWN"
	MP4NotAvailable MP4Status = "NOT_AVAILABLE"
	MP4InQueue      MP4Status = "IN_QUEUE"
	MP4Preparing    MP4Status = "PREPARING"
	MP4Converting   MP4Status = "CONVERTING"
	MP4Completed    MP4Status = "COMPLETED"
	MP4Error        MP4Status = "ERROR"
)

// ParseMP4Status maps a status string, case-insensitively. Anything it does
// not recognize is MP4Unknown.
func ParseMP4Status(s string) MP4Status {
	switch status := MP4Status(strings.ToUpper(strings.TrimSpace(s))); status {
	case MP4NotAvailable, MP4InQueue, MP4Preparing, MP4Converting, MP4Completed, MP4Error:
		return status
	}
	return MP4Unknown
}

// MP4 is one observation of a conversion job.
type MP4 struct {
	Status      MP4Status
	PercentDone int
}

// Done reports whether polling can stop.
func (m MP4) Done() bool {
	return m.Status == MP4Completed || m.Status == MP4Error
}

// DecodeMP4 decodes the "mp4" object of a conversion-status payload.
func DecodeMP4(m map[string]any) MP4 {
	return MP4{
		Status:      ParseMP4Status(stringField(m, "status", "")),
		PercentDone: int(intField(m, "percent_done")),
	}
}
