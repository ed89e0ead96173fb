package model

import "time"

// PrintType is the closed set of renderable job kinds. The integer codes are
// the storage representation and never change.
type PrintType int

const (
	PrintTypeUnknown PrintType = 0
	PrintTypeText    PrintType = 1
	PrintTypeImage   PrintType = 2
)

func (t PrintType) String() string {
	switch t {
	case PrintTypeText:
		return "TEXT"
	case PrintTypeImage:
		return "IMAGE"
	}
	return "UNKNOWN"
}

// Code returns the integer used at the storage boundary.
func (t PrintType) Code() int { return int(t) }

func PrintTypeFromCode(code int) PrintType {
	switch code {
	case 1:
		return PrintTypeText
	case 2:
		return PrintTypeImage
	}
	return PrintTypeUnknown
}

// PrintJob is one audit record: a rendering event that owns an artifact file.
// Records are append-only; a job is never updated or deleted.
type PrintJob struct {
	ID           string
	Username     string
	Type         PrintType
	ArtifactPath string
	Tags         string
	CreatedAt    time.Time
}
