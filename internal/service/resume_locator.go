package service

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

const publicObjectMarker = "/storage/v1/object/public/"

// LocateTrace records how a resume reference was resolved.
type LocateTrace struct {
	ObjectPath string
	Attempts   []domain.LocateAttempt
	// Key is the storage key that was downloaded, empty when none was.
	Key string
}

// ResumeLocator turns a stored-resume reference into PDF bytes, trying the
// key layouts that resumes have historically been saved under.
type ResumeLocator struct {
	storage port.ObjectStorage
	bucket  string
}

// NewResumeLocator creates a ResumeLocator reading from bucket.
func NewResumeLocator(storage port.ObjectStorage, bucket string) *ResumeLocator {
	return &ResumeLocator{storage: storage, bucket: bucket}
}

// Fetch downloads the first candidate key that exists. It returns
// domain.ErrResumeNotFound when every candidate fails; the trace is populated
// either way.
func (l *ResumeLocator) Fetch(ctx context.Context, ref, candidateID string) ([]byte, LocateTrace, error) {
	trace := LocateTrace{ObjectPath: ObjectPath(ref, l.bucket)}

	for _, key := range CandidateKeys(trace.ObjectPath, candidateID) {
		if err := ctx.Err(); err != nil {
			return nil, trace, err
		}
		data, err := l.storage.Download(ctx, l.bucket, key)
		if err != nil {
			trace.Attempts = append(trace.Attempts, domain.LocateAttempt{Key: key, Error: err.Error()})
			continue
		}
		trace.Attempts = append(trace.Attempts, domain.LocateAttempt{Key: key, Found: true})
		trace.Key = key
		slog.Debug("resumeLocator.Fetch: located resume", "key", key, "bytes", len(data), "attempts", len(trace.Attempts))
		return data, trace, nil
	}

	slog.Info("resumeLocator.Fetch: resume not found", "ref", ref, "attempts", len(trace.Attempts))
	return nil, trace, domain.ErrResumeNotFound
}

// ObjectPath extracts the object path from a public storage URL, a
// bucket-prefixed path or a bare path.
func ObjectPath(ref, bucket string) string {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if i := strings.Index(ref, publicObjectMarker); i >= 0 {
			ref = ref[i+len(publicObjectMarker):]
		} else if u, err := url.Parse(ref); err == nil {
			ref = strings.TrimPrefix(u.Path, "/")
		}
		if q := strings.IndexAny(ref, "?#"); q >= 0 {
			ref = ref[:q]
		}
		if unescaped, err := url.PathUnescape(ref); err == nil {
			ref = unescaped
		}
	}
	if bucket != "" {
		ref = strings.TrimPrefix(ref, bucket+"/")
	}
	return ref
}

// NormalizeCandidateID strips an optional "user_" prefix.
func NormalizeCandidateID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "user_")
}

// CandidateKeys lists the keys to try for objectPath, most likely first and
// without duplicates.
func CandidateKeys(objectPath, candidateID string) []string {
	fileName := ""
	if objectPath != "" {
		fileName = path.Base(objectPath)
	}
	userPrefix := ""
	if id := NormalizeCandidateID(candidateID); id != "" {
		userPrefix = "user_" + id
	}

	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k == "" || k == "." || k == "/" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}

	add(objectPath)
	add(strings.TrimLeft(objectPath, "/"))
	if userPrefix != "" && fileName != "" {
		add(userPrefix + "/resumes/" + fileName)
		add("resumes/" + userPrefix + "/" + fileName)
		add(userPrefix + "/resumes/" + userPrefix + "/" + fileName)
	}
	if fileName != "" {
		add("resumes/" + fileName)
	}
	if userPrefix != "" {
		add(strings.Replace(objectPath, userPrefix+"/", "", 1))
	}
	add(fileName)
	return keys
}
