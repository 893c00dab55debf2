package compliance

import (
	"strings"
	"time"
)

const deadlineSoonDays = 7

// IsExpired reports whether validUntil falls strictly before asOf's calendar
// date. Blank or malformed dates are never expired.
func IsExpired(validUntil string, asOf time.Time) bool {
	date, ok := ParseDate(validUntil, asOf.Location())
	if !ok {
		return false
	}
	return date.Before(startOfDay(asOf))
}

// DeadlineSoon reports whether deadline is today or within the next seven days.
// Advisory only; nothing blocks on it.
func DeadlineSoon(deadline string, asOf time.Time) bool {
	date, ok := ParseDate(deadline, asOf.Location())
	if !ok {
		return false
	}
	today := startOfDay(asOf)
	return !date.Before(today) && !date.After(today.AddDate(0, 0, deadlineSoonDays))
}

// CanValidate reports whether HR may record a decision on rec. A file must be
// on record, and it must be either never reviewed, a different file than the
// one last reviewed, or still awaiting its first decision. An ID number alone
// is not reviewable.
func (e *Evaluator) CanValidate(rec RequirementRecord, hasFile bool) bool {
	if !hasFile {
		return false
	}
	if strings.TrimSpace(rec.ValidatedAt) == "" && strings.TrimSpace(rec.ValidatedFilePath) == "" {
		return true
	}
	stored := effectiveStatus(rec.Status)
	if _, tracked := e.Paths.Normalize(rec.ValidatedFilePath); tracked {
		if !e.Paths.SameFile(rec.FilePath, rec.ValidatedFilePath) {
			return true
		}
		return stored == StatusPending || stored == StatusMissing
	}
	return (stored != StatusApproved && stored != StatusResubmit) || submittedSinceReview(rec)
}

// newUpload reports whether the file on record supersedes the last reviewed one.
func (e *Evaluator) newUpload(rec RequirementRecord) bool {
	if _, hasFile := e.Paths.Normalize(rec.FilePath); !hasFile {
		return false
	}
	if strings.TrimSpace(rec.ValidatedAt) == "" {
		return false
	}
	if _, tracked := e.Paths.Normalize(rec.ValidatedFilePath); tracked {
		return !e.Paths.SameFile(rec.FilePath, rec.ValidatedFilePath)
	}
	// Reviews recorded before validated_file_path existed fall back to timestamps.
	return NormalizeStatus(rec.Status) == StatusResubmit && submittedSinceReview(rec)
}

// submittedSinceReview compares the two stored timestamps. Both are read in
// the same zone, so zone-less values still order correctly.
func submittedSinceReview(rec RequirementRecord) bool {
	validated, okV := ParseTimestamp(rec.ValidatedAt, time.UTC)
	submitted, okS := ParseTimestamp(rec.SubmittedAt, time.UTC)
	return okV && okS && submitted.After(validated)
}
